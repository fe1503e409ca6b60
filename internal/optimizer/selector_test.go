package optimizer

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nickbutler25/FPLOptimizer/internal/types"
)

func makePlayer(id int, pos types.Position, team string, cost, ep float64) types.Player {
	return types.Player{
		ID:             id,
		Name:           "Player " + team,
		Team:           team,
		Position:       pos,
		Cost:           cost,
		ExpectedPoints: []float64{ep},
		Form:           ep * 0.8,
		Minutes:        1800,
		TotalPoints:    int(ep * 10),
		InjuryStatus:   types.StatusAvailable,
	}
}

// testPool is a feasible pool: every team distinct, budget-friendly
// costs, strictly decreasing expected points within each position.
func testPool() []types.Player {
	return []types.Player{
		makePlayer(1, types.PositionGKP, "ARS", 5.5, 5.0),
		makePlayer(2, types.PositionGKP, "AVL", 4.5, 4.2),
		makePlayer(3, types.PositionGKP, "BOU", 4.0, 3.5),

		makePlayer(10, types.PositionDEF, "BRE", 7.5, 5.8),
		makePlayer(11, types.PositionDEF, "BHA", 6.0, 5.0),
		makePlayer(12, types.PositionDEF, "CHE", 5.5, 4.6),
		makePlayer(13, types.PositionDEF, "CRY", 5.0, 4.2),
		makePlayer(14, types.PositionDEF, "EVE", 4.5, 3.8),
		makePlayer(15, types.PositionDEF, "FUL", 4.0, 3.4),

		makePlayer(20, types.PositionMID, "LIV", 12.5, 9.0),
		makePlayer(21, types.PositionMID, "MCI", 10.0, 7.5),
		makePlayer(22, types.PositionMID, "MUN", 8.0, 6.5),
		makePlayer(23, types.PositionMID, "NEW", 7.5, 6.0),
		makePlayer(24, types.PositionMID, "NFO", 6.5, 5.5),
		makePlayer(25, types.PositionMID, "TOT", 5.5, 4.8),
		makePlayer(26, types.PositionMID, "WHU", 5.0, 4.2),

		makePlayer(30, types.PositionFWD, "WOL", 11.5, 8.5),
		makePlayer(31, types.PositionFWD, "LEE", 9.0, 7.0),
		makePlayer(32, types.PositionFWD, "BUR", 7.0, 5.8),
		makePlayer(33, types.PositionFWD, "SUN", 5.0, 4.0),
	}
}

func assertValidSquad(t *testing.T, result *types.OptimizationResult, budget float64) {
	t.Helper()
	require.NotNil(t, result.Squad)
	squad := result.Squad
	assert.Len(t, squad.Players, types.SquadSize)

	formation, ok := types.ParseFormation(squad.Formation)
	require.True(t, ok, "formation %q should be valid", squad.Formation)

	counts := squad.PositionCounts()
	assert.Equal(t, 1, counts[types.PositionGKP])
	assert.Equal(t, formation.DEF, counts[types.PositionDEF])
	assert.Equal(t, formation.MID, counts[types.PositionMID])
	assert.Equal(t, formation.FWD, counts[types.PositionFWD])

	assert.LessOrEqual(t, squad.TotalCost, budget+1e-9)
	for team, n := range squad.TeamCounts() {
		assert.LessOrEqual(t, n, 3, "team %s exceeds the club limit", team)
	}

	captain, ok := squad.Captain()
	require.True(t, ok, "squad should have a captain")
	vice, ok := squad.ViceCaptain()
	require.True(t, ok, "squad should have a vice-captain")
	assert.NotEqual(t, captain.Player.ID, vice.Player.ID)
	assert.True(t, captain.IsStarting)
	assert.True(t, vice.IsStarting)
}

func TestOptimize_BudgetAndFormation(t *testing.T) {
	opt := New(SearchConfig{})
	result := opt.Optimize(context.Background(), testPool(), types.OptimizationRequest{
		Budget:    100.0,
		Formation: "3-5-2",
	})

	require.Equal(t, types.StatusSuccess, result.Status, result.Error)
	assertValidSquad(t, result, 100.0)
	assert.Equal(t, "3-5-2", result.Squad.Formation)
	assert.Equal(t, types.AlgorithmLinearProgramming, result.AlgorithmUsed)
	assert.InDelta(t, result.Squad.TotalCost, result.TotalCost, 1e-9)

	// The pool's best players all fit under 100.0, so the exact search
	// must select the top scorer at every slot.
	ids := make(map[int]bool)
	for _, e := range result.Squad.Players {
		ids[e.Player.ID] = true
	}
	for _, want := range []int{1, 10, 11, 12, 20, 21, 22, 23, 24, 30, 31} {
		assert.True(t, ids[want], "expected player %d in the squad", want)
	}
}

func TestOptimize_FormationUnspecified_PicksBest(t *testing.T) {
	opt := New(SearchConfig{})
	result := opt.Optimize(context.Background(), testPool(), types.OptimizationRequest{
		Budget: 100.0,
	})
	require.Equal(t, types.StatusSuccess, result.Status, result.Error)
	assertValidSquad(t, result, 100.0)
}

func TestOptimize_TeamCapBindsEliteCluster(t *testing.T) {
	pool := testPool()
	// Four outstanding midfielders from the same club; at most three
	// may be picked.
	pool = append(pool,
		makePlayer(40, types.PositionMID, "XXX", 6.0, 20.0),
		makePlayer(41, types.PositionMID, "XXX", 6.0, 19.0),
		makePlayer(42, types.PositionMID, "XXX", 6.0, 18.0),
		makePlayer(43, types.PositionMID, "XXX", 6.0, 17.0),
	)

	opt := New(SearchConfig{})
	result := opt.Optimize(context.Background(), pool, types.OptimizationRequest{
		Budget:    100.0,
		Formation: "3-5-2",
	})
	require.Equal(t, types.StatusSuccess, result.Status, result.Error)
	assertValidSquad(t, result, 100.0)
	assert.Equal(t, 3, result.Squad.TeamCounts()["XXX"])
}

func TestOptimize_PositionShortfall(t *testing.T) {
	pool := []types.Player{
		makePlayer(1, types.PositionGKP, "ARS", 4.5, 4.0),
		makePlayer(10, types.PositionDEF, "BRE", 4.5, 4.0),
		makePlayer(11, types.PositionDEF, "BHA", 4.5, 4.0),
		makePlayer(20, types.PositionMID, "LIV", 5.0, 5.0),
		makePlayer(21, types.PositionMID, "MCI", 5.0, 5.0),
		makePlayer(22, types.PositionMID, "MUN", 5.0, 5.0),
		makePlayer(23, types.PositionMID, "NEW", 5.0, 5.0),
		makePlayer(24, types.PositionMID, "NFO", 5.0, 5.0),
		makePlayer(30, types.PositionFWD, "WOL", 5.0, 5.0),
		makePlayer(31, types.PositionFWD, "LEE", 5.0, 5.0),
		makePlayer(32, types.PositionFWD, "BUR", 5.0, 5.0),
	}

	opt := New(SearchConfig{})
	result := opt.Optimize(context.Background(), pool, types.OptimizationRequest{
		Budget: 100.0,
	})
	assert.Equal(t, types.StatusError, result.Status)
	assert.Nil(t, result.Squad)
	assert.Contains(t, result.Error, "position shortfall")
	assert.Contains(t, result.Error, "DEF")
}

func TestOptimize_BudgetShortfall(t *testing.T) {
	opt := New(SearchConfig{})
	result := opt.Optimize(context.Background(), testPool(), types.OptimizationRequest{
		Budget:    50.0,
		Formation: "3-4-3",
	})
	// Cheapest 3-4-3 costs more than 50.0 in this pool.
	if result.Status == types.StatusError {
		assert.Contains(t, result.Error, "shortfall")
	} else {
		assertValidSquad(t, result, 50.0)
	}
}

func TestOptimize_IncludeAndExclude(t *testing.T) {
	opt := New(SearchConfig{})
	result := opt.Optimize(context.Background(), testPool(), types.OptimizationRequest{
		Budget:    100.0,
		Formation: "3-5-2",
		Constraints: &types.Constraints{
			IncludePlayers: []int{26}, // weakest midfielder
			ExcludePlayers: []int{20}, // strongest midfielder
		},
	})
	require.Equal(t, types.StatusSuccess, result.Status, result.Error)
	assertValidSquad(t, result, 100.0)

	ids := make(map[int]bool)
	for _, e := range result.Squad.Players {
		ids[e.Player.ID] = true
	}
	assert.True(t, ids[26], "include-list player must be selected")
	assert.False(t, ids[20], "excluded player must not be selected")
}

func TestOptimize_ExcludeInjured(t *testing.T) {
	pool := testPool()
	pool[3].InjuryStatus = types.StatusInjured // best DEF

	opt := New(SearchConfig{})
	result := opt.Optimize(context.Background(), pool, types.OptimizationRequest{
		Budget:    100.0,
		Formation: "3-5-2",
		Constraints: &types.Constraints{
			ExcludeInjured: true,
		},
	})
	require.Equal(t, types.StatusSuccess, result.Status, result.Error)
	for _, e := range result.Squad.Players {
		assert.NotEqual(t, 10, e.Player.ID, "injured player must be filtered out")
	}

	found := false
	for _, impact := range result.ConstraintsApplied {
		if impact.Name == "exclude_injured" {
			found = true
			assert.Greater(t, impact.Impact, 0.0)
		}
	}
	assert.True(t, found, "applied constraint should be reported")
}

func TestOptimize_Deterministic(t *testing.T) {
	for _, algo := range []types.Algorithm{
		types.AlgorithmLinearProgramming,
		types.AlgorithmGreedy,
		types.AlgorithmGeneticAlgorithm,
		types.AlgorithmSimulatedAnnealing,
		types.AlgorithmHybrid,
	} {
		t.Run(string(algo), func(t *testing.T) {
			opt := New(SearchConfig{Generations: 10, SAIterations: 500})
			req := types.OptimizationRequest{
				Budget:    100.0,
				Formation: "4-4-2",
				Algorithm: algo,
				Seed:      42,
			}
			first := opt.Optimize(context.Background(), testPool(), req)
			second := opt.Optimize(context.Background(), testPool(), req)

			require.Equal(t, types.StatusSuccess, first.Status, first.Error)
			require.Equal(t, types.StatusSuccess, second.Status, second.Error)
			assertValidSquad(t, first, 100.0)
			assert.Equal(t, first.Squad.Fingerprint(), second.Squad.Fingerprint(),
				"same seed must reproduce the same squad")
		})
	}
}

func TestOptimize_ExactMatchesOrBeatsGreedy(t *testing.T) {
	opt := New(SearchConfig{})
	exact := opt.Optimize(context.Background(), testPool(), types.OptimizationRequest{
		Budget:    90.0,
		Formation: "4-4-2",
		Algorithm: types.AlgorithmLinearProgramming,
	})
	greedy := opt.Optimize(context.Background(), testPool(), types.OptimizationRequest{
		Budget:    90.0,
		Formation: "4-4-2",
		Algorithm: types.AlgorithmGreedy,
	})
	require.Equal(t, types.StatusSuccess, exact.Status)
	require.Equal(t, types.StatusSuccess, greedy.Status)
	assert.GreaterOrEqual(t, exact.TotalPoints+1e-9, greedy.TotalPoints)
}

func TestOptimize_CaptainIsTopScorer(t *testing.T) {
	opt := New(SearchConfig{})
	result := opt.Optimize(context.Background(), testPool(), types.OptimizationRequest{
		Budget:    100.0,
		Formation: "3-5-2",
	})
	require.Equal(t, types.StatusSuccess, result.Status, result.Error)

	captain, _ := result.Squad.Captain()
	for _, e := range result.Squad.Players {
		assert.LessOrEqual(t, e.Player.ExpectedPointsAt(0), captain.Player.ExpectedPointsAt(0))
	}
}

func TestOptimize_UnknownFormationRejected(t *testing.T) {
	opt := New(SearchConfig{})
	result := opt.Optimize(context.Background(), testPool(), types.OptimizationRequest{
		Budget:    100.0,
		Formation: "2-6-2",
	})
	assert.Equal(t, types.StatusError, result.Status)
	assert.True(t, strings.Contains(result.Error, "formation"))
}

func TestOptimize_WarningsOnRiskyPicks(t *testing.T) {
	pool := testPool()
	pool[0].InjuryStatus = types.StatusDoubtful
	pool[0].News = "Knock, expected to train"
	pool[0].Minutes = 400

	opt := New(SearchConfig{})
	result := opt.Optimize(context.Background(), pool, types.OptimizationRequest{
		Budget:    100.0,
		Formation: "3-5-2",
	})
	require.Equal(t, types.StatusSuccess, result.Status, result.Error)

	var sawInjury, sawRotation bool
	for _, w := range result.Warnings {
		if w.PlayerID != 1 {
			continue
		}
		switch w.Type {
		case types.WarningInjuryRisk:
			sawInjury = true
		case types.WarningRotationRisk:
			sawRotation = true
		}
	}
	assert.True(t, sawInjury, "doubtful pick should carry an injury warning")
	assert.True(t, sawRotation, "low-minutes pick should carry a rotation warning")
}
