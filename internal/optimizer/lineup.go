package optimizer

import (
	"fmt"
	"sort"

	"github.com/nickbutler25/FPLOptimizer/internal/types"
)

// SelectStartingXI picks the best starting eleven from a roster of 11
// to 15 players. It enumerates the seven legal formations, fills each
// with the highest-expected players per position, and keeps the
// highest-scoring lineup; ties go to the first-enumerated formation.
// Captain and vice-captain are assigned among the starters. The input
// roster is not modified.
func SelectStartingXI(roster []types.RosterEntry, week int) (*types.Squad, error) {
	if len(roster) < types.SquadSize || len(roster) > types.MaxRosterSize {
		return nil, fmt.Errorf("roster must have between %d and %d players, got %d",
			types.SquadSize, types.MaxRosterSize, len(roster))
	}

	byPos := make(map[types.Position][]types.RosterEntry, 4)
	for _, e := range roster {
		byPos[e.Player.Position] = append(byPos[e.Player.Position], e)
	}
	for pos := range byPos {
		entries := byPos[pos]
		sort.SliceStable(entries, func(i, j int) bool {
			pi := entries[i].Player.ExpectedPointsAt(week)
			pj := entries[j].Player.ExpectedPointsAt(week)
			if pi != pj {
				return pi > pj
			}
			return entries[i].Player.ID < entries[j].Player.ID
		})
	}

	var best []types.RosterEntry
	bestFormation := types.Formation{}
	bestPoints := -1.0
	for _, formation := range types.ValidFormations {
		xi, ok := fillFormation(byPos, formation)
		if !ok {
			continue
		}
		points := 0.0
		for _, e := range xi {
			points += e.Player.ExpectedPointsAt(week)
		}
		if points > bestPoints {
			bestPoints = points
			best = xi
			bestFormation = formation
		}
	}
	if best == nil {
		return nil, fmt.Errorf("cannot field a valid formation: not enough %s players",
			shortestPosition(byPos))
	}

	starters := make(map[int]bool, len(best))
	for _, e := range best {
		starters[e.Player.ID] = true
	}

	entries := make([]types.RosterEntry, len(roster))
	totalCost := 0.0
	for i, e := range roster {
		e.IsStarting = starters[e.Player.ID]
		e.IsCaptain = false
		e.IsViceCaptain = false
		entries[i] = e
		totalCost += e.Player.Cost
	}
	assignCaptaincy(entries, week)

	return &types.Squad{
		Players:     entries,
		Formation:   bestFormation.String(),
		TotalCost:   totalCost,
		TotalPoints: bestPoints,
	}, nil
}

// fillFormation takes the top entries per position for one formation.
func fillFormation(byPos map[types.Position][]types.RosterEntry, formation types.Formation) ([]types.RosterEntry, bool) {
	var xi []types.RosterEntry
	for _, pos := range types.Positions {
		n := formation.Count(pos)
		if len(byPos[pos]) < n {
			return nil, false
		}
		xi = append(xi, byPos[pos][:n]...)
	}
	return xi, true
}

// shortestPosition names the position most responsible for the roster
// being unable to field any formation.
func shortestPosition(byPos map[types.Position][]types.RosterEntry) types.Position {
	// Minimum demand across the legal formations per position.
	minNeed := map[types.Position]int{
		types.PositionGKP: 1,
		types.PositionDEF: 3,
		types.PositionMID: 3,
		types.PositionFWD: 1,
	}
	worst := types.PositionGKP
	worstGap := 0
	for _, pos := range types.Positions {
		gap := minNeed[pos] - len(byPos[pos])
		if gap > worstGap {
			worstGap = gap
			worst = pos
		}
	}
	return worst
}

// assignCaptaincy sets the captain to the highest-expected starter and
// the vice-captain to the next-best distinct starter. Any previous
// flags are overwritten, so reapplying is a no-op.
func assignCaptaincy(entries []types.RosterEntry, week int) {
	captain, vice := -1, -1
	for i := range entries {
		entries[i].IsCaptain = false
		entries[i].IsViceCaptain = false
		if !entries[i].IsStarting {
			continue
		}
		if captain < 0 || betterCaptain(entries[i], entries[captain], week) {
			vice = captain
			captain = i
		} else if vice < 0 || betterCaptain(entries[i], entries[vice], week) {
			vice = i
		}
	}
	if captain >= 0 {
		entries[captain].IsCaptain = true
	}
	if vice >= 0 {
		entries[vice].IsViceCaptain = true
	}
}

func betterCaptain(a, b types.RosterEntry, week int) bool {
	pa := a.Player.ExpectedPointsAt(week)
	pb := b.Player.ExpectedPointsAt(week)
	if pa != pb {
		return pa > pb
	}
	return a.Player.ID < b.Player.ID
}
