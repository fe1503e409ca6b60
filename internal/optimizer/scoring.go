package optimizer

import (
	"math"

	"github.com/nickbutler25/FPLOptimizer/internal/types"
)

// scoredPlayer carries a candidate with its preference-weighted
// objective value and cost in tenths, precomputed once per run.
type scoredPlayer struct {
	types.Player
	score float64
	costT int
}

// poolStats holds pool-relative normalizers used by preference weights.
type poolStats struct {
	maxForm      float64
	maxOwnership float64
	maxMinutes   float64
	maxBonus     float64
	maxCleanProp float64
	maxBase      float64
}

func computePoolStats(pool []types.Player, gameweek int) poolStats {
	var s poolStats
	for _, p := range pool {
		s.maxForm = math.Max(s.maxForm, p.Form)
		s.maxOwnership = math.Max(s.maxOwnership, p.SelectedByPercent)
		s.maxMinutes = math.Max(s.maxMinutes, float64(p.Minutes))
		s.maxBonus = math.Max(s.maxBonus, float64(p.Bonus))
		s.maxCleanProp = math.Max(s.maxCleanProp, float64(p.CleanSheets))
		s.maxBase = math.Max(s.maxBase, basePoints(p, gameweek))
	}
	return s
}

// basePoints is the raw objective contribution of a player: the
// expected points forecast for the target gameweek, falling back to
// form when no forecast is present.
func basePoints(p types.Player, gameweek int) float64 {
	if len(p.ExpectedPoints) > 0 {
		return p.ExpectedPointsAt(gameweek)
	}
	return p.Form
}

// playerWeight computes the multiplicative preference weight for one
// player. Each active preference nudges the 1.0 baseline; none of them
// can reject a player outright.
func playerWeight(p types.Player, prefs *types.Preferences, stats poolStats, gameweek int) float64 {
	w := 1.0
	if prefs == nil {
		return w
	}

	formNorm := norm(p.Form, stats.maxForm)
	ownNorm := norm(p.SelectedByPercent, stats.maxOwnership)
	minutesNorm := norm(float64(p.Minutes), stats.maxMinutes)
	baseNorm := norm(basePoints(p, gameweek), stats.maxBase)

	if prefs.PreferForm {
		w *= 0.85 + 0.30*formNorm
	}
	if prefs.PreferPopular {
		w *= 1 + 0.10*ownNorm
	}
	if prefs.PreferDifferentials {
		w *= 1 - 0.10*ownNorm
	}
	if prefs.WeightBonusPoints > 0 {
		w *= 1 + (prefs.WeightBonusPoints/100)*norm(float64(p.Bonus), stats.maxBonus)
	}
	if prefs.WeightCleanSheets > 0 && (p.Position == types.PositionGKP || p.Position == types.PositionDEF) {
		w *= 1 + (prefs.WeightCleanSheets/100)*norm(float64(p.CleanSheets), stats.maxCleanProp)
	}
	if prefs.PrioritizeCaptaincy {
		w *= 1 + 0.08*baseNorm
	}

	// Low minutes is the variance proxy: rotation-risk players swing
	// hardest week to week.
	riskNorm := 1 - minutesNorm
	switch prefs.RiskTolerance {
	case types.RiskConservative:
		w *= 1 - 0.20*riskNorm
	case types.RiskAggressive:
		w *= 1 + 0.15*riskNorm
	}

	return w
}

func norm(v, max float64) float64 {
	if max <= 0 {
		return 0
	}
	return v / max
}

// scorePool produces the weighted candidate pool the strategies search.
func scorePool(pool []types.Player, prefs *types.Preferences, gameweek int) []scoredPlayer {
	stats := computePoolStats(pool, gameweek)
	scored := make([]scoredPlayer, len(pool))
	for i, p := range pool {
		scored[i] = scoredPlayer{
			Player: p,
			score:  basePoints(p, gameweek) * playerWeight(p, prefs, stats, gameweek),
			costT:  p.CostTenths(),
		}
	}
	return scored
}
