package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nickbutler25/FPLOptimizer/internal/types"
)

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }

func TestValidateOptimization_ValidRequest(t *testing.T) {
	req := types.OptimizationRequest{
		Budget:    100.0,
		Formation: "3-5-2",
		Gameweek:  10,
		Algorithm: types.AlgorithmLinearProgramming,
	}
	assert.Empty(t, ValidateOptimization(req))
}

func TestValidateOptimization_BudgetBounds(t *testing.T) {
	errs := ValidateOptimization(types.OptimizationRequest{Budget: 49.9})
	require.Len(t, errs, 1)
	assert.Equal(t, "budget", errs[0].Field)
	assert.Equal(t, CodeOutOfRange, errs[0].Code)

	errs = ValidateOptimization(types.OptimizationRequest{Budget: 120.1})
	require.Len(t, errs, 1)
	assert.Equal(t, "budget", errs[0].Field)

	assert.Empty(t, ValidateOptimization(types.OptimizationRequest{Budget: 50.0}))
	assert.Empty(t, ValidateOptimization(types.OptimizationRequest{Budget: 120.0}))
}

func TestValidateOptimization_CollectsAllErrors(t *testing.T) {
	req := types.OptimizationRequest{
		Budget:    40,
		Formation: "2-6-2",
		Algorithm: "quantum",
		Gameweek:  99,
	}
	errs := ValidateOptimization(req)
	assert.Len(t, errs, 4, "every problem should be reported in one pass")

	fields := make(map[string]bool)
	for _, e := range errs {
		fields[e.Field] = true
		assert.Equal(t, types.SeverityError, e.Severity)
	}
	assert.True(t, fields["budget"])
	assert.True(t, fields["formation"])
	assert.True(t, fields["algorithm"])
	assert.True(t, fields["gameweek"])
}

func TestValidateOptimization_ConstraintRanges(t *testing.T) {
	req := types.OptimizationRequest{
		Budget: 100,
		Constraints: &types.Constraints{
			MinCost:           floatPtr(9.0),
			MaxCost:           floatPtr(6.0),
			MinPoints:         intPtr(100),
			MaxPoints:         intPtr(50),
			MaxPlayersPerTeam: 5,
		},
	}
	errs := ValidateOptimization(req)
	codes := make(map[string]string)
	for _, e := range errs {
		codes[e.Field] = e.Code
	}
	assert.Equal(t, CodeRangeInverted, codes["constraints.min_cost"])
	assert.Equal(t, CodeRangeInverted, codes["constraints.min_points"])
	assert.Equal(t, CodeOutOfRange, codes["constraints.max_players_per_team"])
}

func TestValidateOptimization_ConflictingIncludeExclude(t *testing.T) {
	req := types.OptimizationRequest{
		Budget: 100,
		Constraints: &types.Constraints{
			IncludePlayers: []int{7, 9},
			ExcludePlayers: []int{9},
		},
	}
	errs := ValidateOptimization(req)
	require.Len(t, errs, 1)
	assert.Equal(t, CodeConflictingIDs, errs[0].Code)
}

func TestValidateOptimization_Preferences(t *testing.T) {
	req := types.OptimizationRequest{
		Budget: 100,
		Preferences: &types.Preferences{
			RiskTolerance:     "reckless",
			WeightBonusPoints: 150,
		},
	}
	errs := ValidateOptimization(req)
	assert.Len(t, errs, 2)
}

func TestValidateTransferPlan(t *testing.T) {
	assert.Empty(t, ValidateTransferPlan(5, 1, 0.9))
	assert.Empty(t, ValidateTransferPlan(1, 0, 1.0))

	errs := ValidateTransferPlan(0, -1, 1.5)
	assert.Len(t, errs, 3)

	errs = ValidateTransferPlan(39, 2, 0.5)
	require.Len(t, errs, 1)
	assert.Equal(t, "num_gameweeks", errs[0].Field)
}
