package optimizer

import (
	"github.com/nickbutler25/FPLOptimizer/internal/types"
)

// applyConstraints runs every hard pre-search filter over the pool and
// records how much of the pool each active constraint removed. Include-
// list players survive every filter; they are forced in later.
func applyConstraints(pool []types.Player, c *types.Constraints) ([]types.Player, []types.ConstraintImpact) {
	if c == nil {
		return pool, nil
	}

	include := make(map[int]bool, len(c.IncludePlayers))
	for _, id := range c.IncludePlayers {
		include[id] = true
	}
	exclude := make(map[int]bool, len(c.ExcludePlayers))
	for _, id := range c.ExcludePlayers {
		exclude[id] = true
	}

	type filter struct {
		name string
		keep func(types.Player) bool
	}

	filters := []filter{}
	if len(c.ExcludePlayers) > 0 {
		filters = append(filters, filter{"exclude_players", func(p types.Player) bool {
			return !exclude[p.ID]
		}})
	}
	if c.ExcludeInjured {
		filters = append(filters, filter{"exclude_injured", func(p types.Player) bool {
			return p.InjuryStatus != types.StatusInjured &&
				p.InjuryStatus != types.StatusSuspended &&
				p.InjuryStatus != types.StatusUnavailable
		}})
	}
	if c.ExcludeDoubtful {
		filters = append(filters, filter{"exclude_doubtful", func(p types.Player) bool {
			return p.InjuryStatus != types.StatusDoubtful
		}})
	}
	if c.MinCost != nil {
		min := *c.MinCost
		filters = append(filters, filter{"min_cost", func(p types.Player) bool { return p.Cost >= min }})
	}
	if c.MaxCost != nil {
		max := *c.MaxCost
		filters = append(filters, filter{"max_cost", func(p types.Player) bool { return p.Cost <= max }})
	}
	if c.MinPoints != nil {
		min := *c.MinPoints
		filters = append(filters, filter{"min_points", func(p types.Player) bool { return p.TotalPoints >= min }})
	}
	if c.MaxPoints != nil {
		max := *c.MaxPoints
		filters = append(filters, filter{"max_points", func(p types.Player) bool { return p.TotalPoints <= max }})
	}
	if c.MinMinutes != nil {
		min := *c.MinMinutes
		filters = append(filters, filter{"min_minutes", func(p types.Player) bool { return p.Minutes >= min }})
	}
	if c.MinForm != nil {
		min := *c.MinForm
		filters = append(filters, filter{"min_form", func(p types.Player) bool { return p.Form >= min }})
	}
	if c.MaxFixtureDifficulty != nil {
		max := *c.MaxFixtureDifficulty
		filters = append(filters, filter{"max_fixture_difficulty", func(p types.Player) bool {
			return p.FixtureDifficulty == 0 || p.FixtureDifficulty <= max
		}})
	}

	var impacts []types.ConstraintImpact
	filtered := pool
	for _, f := range filters {
		before := len(filtered)
		next := make([]types.Player, 0, before)
		for _, p := range filtered {
			if include[p.ID] || f.keep(p) {
				next = append(next, p)
			}
		}
		impact := 0.0
		if before > 0 {
			impact = float64(before-len(next)) / float64(before)
		}
		impacts = append(impacts, types.ConstraintImpact{Name: f.name, Impact: impact})
		filtered = next
	}

	if c.MaxPlayersPerTeam != 0 && c.MaxPlayersPerTeam != types.DefaultMaxPlayersPerTeam {
		impacts = append(impacts, types.ConstraintImpact{Name: "max_players_per_team", Impact: 0.5})
	}
	if len(c.IncludePlayers) > 0 {
		impacts = append(impacts, types.ConstraintImpact{
			Name:   "include_players",
			Impact: float64(len(c.IncludePlayers)) / types.SquadSize,
		})
	}

	return filtered, impacts
}
