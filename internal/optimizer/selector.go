package optimizer

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/nickbutler25/FPLOptimizer/internal/logger"
	"github.com/nickbutler25/FPLOptimizer/internal/types"
)

// Optimizer selects squads from a candidate pool. It is stateless and
// safe for concurrent use; per-run tuning comes in with the request.
type Optimizer struct {
	search SearchConfig
	log    *logrus.Logger
}

// New returns an Optimizer with the given search tuning. Zero-value
// fields fall back to defaults.
func New(search SearchConfig) *Optimizer {
	return &Optimizer{
		search: search,
		log:    logger.Get(),
	}
}

// Optimize runs squad selection over the pool and always returns a
// structured result: infeasible requests come back with status "error"
// and the binding constraint named, never as a Go error. Pass a
// deadline context to bound the search; an expired deadline yields the
// best squad found so far with status "partial".
func (o *Optimizer) Optimize(ctx context.Context, pool []types.Player, req types.OptimizationRequest) *types.OptimizationResult {
	start := time.Now()
	algo := req.Algorithm
	if algo == "" {
		algo = types.AlgorithmLinearProgramming
	}
	log := logger.WithOptimization(uuid.New().String(), string(algo))

	strat, err := newStrategy(algo, o.search)
	if err != nil {
		return errorResult(algo, err.Error())
	}

	// The forecast array is 0-based from the next gameweek; the request
	// gameweek is 1-based.
	week := req.Gameweek
	if week > 0 {
		week--
	}

	filtered, impacts := applyConstraints(pool, req.Constraints)
	scored := scorePool(filtered, req.Preferences, week)

	teamCap := types.DefaultMaxPlayersPerTeam
	if req.Constraints != nil && req.Constraints.MaxPlayersPerTeam > 0 {
		teamCap = req.Constraints.MaxPlayersPerTeam
	}
	seed := req.Seed
	if seed == 0 {
		seed = 1
	}
	var includeIDs []int
	if req.Constraints != nil {
		includeIDs = req.Constraints.IncludePlayers
	}

	formations := types.ValidFormations
	if req.Formation != "" {
		f, ok := types.ParseFormation(req.Formation)
		if !ok {
			return errorResult(algo, fmt.Sprintf("unknown formation %q", req.Formation))
		}
		formations = []types.Formation{f}
	}

	budgetT := types.Tenths(req.Budget)
	var best *solution
	var bestFormation types.Formation
	var firstInfeasible error
	for _, formation := range formations {
		prob, err := buildProblem(scored, formation, budgetT, teamCap, includeIDs, seed)
		if err != nil {
			if firstInfeasible == nil {
				firstInfeasible = err
			}
			continue
		}
		sol, err := strat.Solve(ctx, prob)
		if err != nil {
			if firstInfeasible == nil {
				firstInfeasible = err
			}
			continue
		}
		if best == nil || sol.objective > best.objective ||
			(sol.objective == best.objective && sol.costT < best.costT) {
			best = sol
			bestFormation = formation
		}
	}

	if best == nil {
		reason := "no feasible squad for the given constraints"
		if firstInfeasible != nil {
			reason = firstInfeasible.Error()
		}
		log.WithField("reason", reason).Warn("Optimization infeasible")
		return withImpacts(errorResult(algo, reason), impacts)
	}

	squad := assembleSquad(best, bestFormation, req.Budget, week)
	result := &types.OptimizationResult{
		Status:             types.StatusSuccess,
		Squad:              squad,
		TotalCost:          squad.TotalCost,
		TotalPoints:        squad.TotalPoints,
		ConfidenceScore:    best.confidence,
		AlgorithmUsed:      algo,
		ConstraintsApplied: impacts,
		Warnings:           collectWarnings(squad),
	}
	if best.partial {
		result.Status = types.StatusPartial
	}

	log.WithFields(logrus.Fields{
		"formation":    squad.Formation,
		"total_cost":   squad.TotalCost,
		"total_points": squad.TotalPoints,
		"confidence":   best.confidence,
		"duration_ms":  time.Since(start).Milliseconds(),
	}).Info("Optimization complete")
	return result
}

func errorResult(algo types.Algorithm, reason string) *types.OptimizationResult {
	return &types.OptimizationResult{
		Status:        types.StatusError,
		AlgorithmUsed: algo,
		Error:         reason,
	}
}

func withImpacts(r *types.OptimizationResult, impacts []types.ConstraintImpact) *types.OptimizationResult {
	r.ConstraintsApplied = impacts
	return r
}

// assembleSquad turns a raw solution into the immutable squad shape:
// position-ordered entries, everyone starting, captaincy assigned.
// TotalPoints is the unweighted expected-points sum; preference weights
// steer the search but never inflate reported points.
func assembleSquad(sol *solution, formation types.Formation, budget float64, week int) *types.Squad {
	players := append([]scoredPlayer{}, sol.players...)
	posRank := map[types.Position]int{
		types.PositionGKP: 0, types.PositionDEF: 1,
		types.PositionMID: 2, types.PositionFWD: 3,
	}
	sort.SliceStable(players, func(i, j int) bool {
		if posRank[players[i].Position] != posRank[players[j].Position] {
			return posRank[players[i].Position] < posRank[players[j].Position]
		}
		if players[i].score != players[j].score {
			return players[i].score > players[j].score
		}
		return players[i].ID < players[j].ID
	})

	entries := make([]types.RosterEntry, len(players))
	totalPoints := 0.0
	for i, sp := range players {
		entries[i] = types.RosterEntry{
			Player:        sp.Player,
			PurchasePrice: sp.Player.Cost,
			IsStarting:    true,
		}
		totalPoints += sp.Player.ExpectedPointsAt(week)
	}
	assignCaptaincy(entries, week)

	totalCost := types.FromTenths(sol.costT)
	return &types.Squad{
		Players:         entries,
		Formation:       formation.String(),
		TotalCost:       totalCost,
		TotalPoints:     totalPoints,
		RemainingBudget: budget - totalCost,
	}
}

// collectWarnings flags risk factors on the selected squad. These are
// advisory; none of them block a result.
func collectWarnings(squad *types.Squad) []types.Warning {
	var warnings []types.Warning
	for _, e := range squad.Players {
		p := e.Player
		switch p.InjuryStatus {
		case types.StatusDoubtful:
			warnings = append(warnings, types.Warning{
				Type:     types.WarningInjuryRisk,
				PlayerID: p.ID,
				Message:  fmt.Sprintf("%s is doubtful: %s", p.Name, p.News),
				Severity: types.SeverityWarning,
			})
		}
		if p.Minutes > 0 && p.Minutes < 900 {
			warnings = append(warnings, types.Warning{
				Type:     types.WarningRotationRisk,
				PlayerID: p.ID,
				Message:  fmt.Sprintf("%s has played only %d minutes", p.Name, p.Minutes),
				Severity: types.SeverityInfo,
			})
		}
		if p.FixtureDifficulty >= 4 {
			warnings = append(warnings, types.Warning{
				Type:     types.WarningFixtureDifficulty,
				PlayerID: p.ID,
				Message:  fmt.Sprintf("%s faces difficult upcoming fixtures", p.Name),
				Severity: types.SeverityInfo,
			})
		}
		if p.Form < 2.5 && p.TotalPoints > 50 {
			warnings = append(warnings, types.Warning{
				Type:     types.WarningFormDecline,
				PlayerID: p.ID,
				Message:  fmt.Sprintf("%s is underperforming recent form (%.1f)", p.Name, p.Form),
				Severity: types.SeverityInfo,
			})
		}
		if p.SelectedByPercent < 5 {
			warnings = append(warnings, types.Warning{
				Type:     types.WarningLowOwnership,
				PlayerID: p.ID,
				Message:  fmt.Sprintf("%s is a differential pick (%.1f%% owned)", p.Name, p.SelectedByPercent),
				Severity: types.SeverityInfo,
			})
		}
		if p.Form >= 6 && p.SelectedByPercent >= 20 {
			warnings = append(warnings, types.Warning{
				Type:     types.WarningPriceRise,
				PlayerID: p.ID,
				Message:  fmt.Sprintf("%s is likely to rise in price soon", p.Name),
				Severity: types.SeverityInfo,
			})
		}
	}
	return warnings
}
