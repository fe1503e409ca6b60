// Package validator normalizes and checks optimization and transfer-plan
// requests before any search runs. It collects every problem it finds
// rather than stopping at the first, so a caller can fix all issues in
// one round trip. A non-empty error list is a hard stop upstream.
package validator

import (
	"fmt"

	"github.com/nickbutler25/FPLOptimizer/internal/types"
)

// Error codes surfaced in ValidationError.Code.
const (
	CodeOutOfRange     = "OUT_OF_RANGE"
	CodeInvalidValue   = "INVALID_VALUE"
	CodeRangeInverted  = "RANGE_INVERTED"
	CodeUnknownAlgo    = "UNKNOWN_ALGORITHM"
	CodeUnknownValue   = "UNKNOWN_VALUE"
	CodeMissingValue   = "MISSING_VALUE"
	CodeConflictingIDs = "CONFLICTING_IDS"
)

// ValidateOptimization checks an advanced optimization request.
// It never panics and always returns the (possibly empty) error list.
func ValidateOptimization(req types.OptimizationRequest) []types.ValidationError {
	var errs []types.ValidationError

	if req.Budget < types.MinBudget || req.Budget > types.MaxBudget {
		errs = append(errs, fieldError("budget", CodeOutOfRange,
			fmt.Sprintf("budget must be between %.1f and %.1f, got %.1f",
				types.MinBudget, types.MaxBudget, req.Budget)))
	}

	if req.Formation != "" {
		if _, ok := types.ParseFormation(req.Formation); !ok {
			errs = append(errs, fieldError("formation", CodeInvalidValue,
				fmt.Sprintf("formation %q is not one of the seven valid formations", req.Formation)))
		}
	}

	if req.Gameweek != 0 && (req.Gameweek < 1 || req.Gameweek > 38) {
		errs = append(errs, fieldError("gameweek", CodeOutOfRange,
			fmt.Sprintf("gameweek must be between 1 and 38, got %d", req.Gameweek)))
	}

	if req.Algorithm != "" && !req.Algorithm.Valid() {
		errs = append(errs, fieldError("algorithm", CodeUnknownAlgo,
			fmt.Sprintf("unknown algorithm %q", req.Algorithm)))
	}

	if req.Constraints != nil {
		errs = append(errs, validateConstraints(req.Constraints)...)
	}
	if req.Preferences != nil {
		errs = append(errs, validatePreferences(req.Preferences)...)
	}

	return errs
}

func validateConstraints(c *types.Constraints) []types.ValidationError {
	var errs []types.ValidationError

	if c.MaxPlayersPerTeam != 0 && (c.MaxPlayersPerTeam < 1 || c.MaxPlayersPerTeam > 3) {
		errs = append(errs, fieldError("constraints.max_players_per_team", CodeOutOfRange,
			fmt.Sprintf("max_players_per_team must be 1, 2 or 3, got %d", c.MaxPlayersPerTeam)))
	}

	if c.MinCost != nil && (*c.MinCost < types.MinPlayerCost || *c.MinCost > types.MaxPlayerCost) {
		errs = append(errs, fieldError("constraints.min_cost", CodeOutOfRange,
			fmt.Sprintf("min_cost must be between %.1f and %.1f", types.MinPlayerCost, types.MaxPlayerCost)))
	}
	if c.MaxCost != nil && (*c.MaxCost < types.MinPlayerCost || *c.MaxCost > types.MaxPlayerCost) {
		errs = append(errs, fieldError("constraints.max_cost", CodeOutOfRange,
			fmt.Sprintf("max_cost must be between %.1f and %.1f", types.MinPlayerCost, types.MaxPlayerCost)))
	}
	if c.MinCost != nil && c.MaxCost != nil && *c.MinCost > *c.MaxCost {
		errs = append(errs, fieldError("constraints.min_cost", CodeRangeInverted,
			"min_cost must not exceed max_cost"))
	}

	if c.MinPoints != nil && c.MaxPoints != nil && *c.MinPoints > *c.MaxPoints {
		errs = append(errs, fieldError("constraints.min_points", CodeRangeInverted,
			"min_points must not exceed max_points"))
	}

	if c.MinForm != nil && *c.MinForm < 0 {
		errs = append(errs, fieldError("constraints.min_form", CodeOutOfRange,
			"min_form must not be negative"))
	}
	if c.MinMinutes != nil && *c.MinMinutes < 0 {
		errs = append(errs, fieldError("constraints.min_minutes", CodeOutOfRange,
			"min_minutes must not be negative"))
	}
	if c.MaxFixtureDifficulty != nil && (*c.MaxFixtureDifficulty < 1 || *c.MaxFixtureDifficulty > 5) {
		errs = append(errs, fieldError("constraints.max_fixture_difficulty", CodeOutOfRange,
			"max_fixture_difficulty must be between 1 and 5"))
	}

	includes := make(map[int]bool, len(c.IncludePlayers))
	for _, id := range c.IncludePlayers {
		includes[id] = true
	}
	for _, id := range c.ExcludePlayers {
		if includes[id] {
			errs = append(errs, fieldError("constraints.exclude_players", CodeConflictingIDs,
				fmt.Sprintf("player %d is both included and excluded", id)))
		}
	}

	return errs
}

func validatePreferences(p *types.Preferences) []types.ValidationError {
	var errs []types.ValidationError

	switch p.RiskTolerance {
	case "", types.RiskConservative, types.RiskBalanced, types.RiskAggressive:
	default:
		errs = append(errs, fieldError("preferences.risk_tolerance", CodeUnknownValue,
			fmt.Sprintf("unknown risk_tolerance %q", p.RiskTolerance)))
	}

	if p.WeightBonusPoints < 0 || p.WeightBonusPoints > 100 {
		errs = append(errs, fieldError("preferences.weight_bonus_points", CodeOutOfRange,
			"weight_bonus_points must be between 0 and 100"))
	}
	if p.WeightCleanSheets < 0 || p.WeightCleanSheets > 100 {
		errs = append(errs, fieldError("preferences.weight_clean_sheets", CodeOutOfRange,
			"weight_clean_sheets must be between 0 and 100"))
	}

	return errs
}

// ValidateTransferPlan checks the inputs of a transfer-plan request.
func ValidateTransferPlan(numGameweeks, freeTransfers int, discountFactor float64) []types.ValidationError {
	var errs []types.ValidationError

	if numGameweeks <= 0 {
		errs = append(errs, fieldError("num_gameweeks", CodeOutOfRange,
			fmt.Sprintf("num_gameweeks must be positive, got %d", numGameweeks)))
	} else if numGameweeks > 38 {
		errs = append(errs, fieldError("num_gameweeks", CodeOutOfRange,
			fmt.Sprintf("num_gameweeks must not exceed 38, got %d", numGameweeks)))
	}

	if freeTransfers < 0 {
		errs = append(errs, fieldError("free_transfers", CodeOutOfRange,
			fmt.Sprintf("free_transfers must not be negative, got %d", freeTransfers)))
	}

	if discountFactor <= 0 || discountFactor > 1 {
		errs = append(errs, fieldError("discount_factor", CodeOutOfRange,
			fmt.Sprintf("discount_factor must be in (0, 1], got %g", discountFactor)))
	}

	return errs
}

func fieldError(field, code, message string) types.ValidationError {
	return types.ValidationError{
		Field:    field,
		Message:  message,
		Code:     code,
		Severity: types.SeverityError,
	}
}
