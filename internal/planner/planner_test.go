package planner

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nickbutler25/FPLOptimizer/internal/types"
)

func plannerPlayer(id int, pos types.Position, team string, cost float64, weekly float64, weeks int) types.Player {
	eps := make([]float64, weeks)
	for i := range eps {
		eps[i] = weekly
	}
	return types.Player{
		ID:             id,
		Name:           "P" + team,
		Team:           team,
		Position:       pos,
		Cost:           cost,
		ExpectedPoints: eps,
		Form:           weekly,
		Minutes:        1800,
		InjuryStatus:   types.StatusAvailable,
	}
}

func plannerEntry(p types.Player, purchase float64) types.RosterEntry {
	return types.RosterEntry{Player: p, PurchasePrice: purchase}
}

// baseRoster is an eleven scoring 4 points per player per week.
func baseRoster(weeks int) ([]types.RosterEntry, []types.Player) {
	teams := []string{"ARS", "AVL", "BOU", "BRE", "BHA", "CHE", "CRY", "EVE", "FUL", "LIV", "MCI"}
	positions := []types.Position{
		types.PositionGKP,
		types.PositionDEF, types.PositionDEF, types.PositionDEF, types.PositionDEF,
		types.PositionMID, types.PositionMID, types.PositionMID, types.PositionMID,
		types.PositionFWD, types.PositionFWD,
	}
	roster := make([]types.RosterEntry, 0, 11)
	pool := make([]types.Player, 0, 11)
	for i := 0; i < 11; i++ {
		p := plannerPlayer(i+1, positions[i], teams[i], 5.0, 4.0, weeks)
		roster = append(roster, plannerEntry(p, 5.0))
		pool = append(pool, p)
	}
	return roster, pool
}

func TestPlan_HoldsWhenNoUpgradeExists(t *testing.T) {
	roster, pool := baseRoster(3)
	p := New(Config{})
	plan := p.Plan(context.Background(), pool, Request{
		Roster:          roster,
		Bank:            0,
		CurrentGameweek: 12,
		NumGameweeks:    3,
		FreeTransfers:   1,
		DiscountFactor:  1.0,
	})

	require.Equal(t, types.StatusSuccess, plan.Status)
	require.Len(t, plan.WeeklySolutions, 3)
	for i, week := range plan.WeeklySolutions {
		assert.Equal(t, 12+i, week.Gameweek)
		assert.Empty(t, week.TransfersIn)
		assert.Empty(t, week.TransfersOut)
		assert.InDelta(t, 44.0, week.ExpectedPoints, 1e-9)
	}
	assert.Equal(t, 0, plan.TotalTransferCost)
	assert.InDelta(t, plan.CurrentExpectedPoints, plan.TotalExpectedPoints, 1e-9)
	assert.InDelta(t, 0.0, plan.Improvement, 1e-9)
}

func TestPlan_TakesClearUpgradeWithFreeTransfer(t *testing.T) {
	roster, pool := baseRoster(3)
	star := plannerPlayer(99, types.PositionFWD, "NEW", 6.0, 10.0, 3)
	pool = append(pool, star)

	p := New(Config{})
	plan := p.Plan(context.Background(), pool, Request{
		Roster:         roster,
		Bank:           2.0,
		NumGameweeks:   3,
		FreeTransfers:  1,
		DiscountFactor: 1.0,
	})

	require.Equal(t, types.StatusSuccess, plan.Status)
	first := plan.WeeklySolutions[0]
	require.Len(t, first.TransfersIn, 1)
	assert.Equal(t, 99, first.TransfersIn[0].PlayerID)
	assert.Equal(t, 0, first.TransferCost, "one transfer is covered by the free allowance")
	assert.Equal(t, 1, first.FreeTransfersUsed)
	assert.InDelta(t, 50.0, first.ExpectedPoints, 1e-9)
	assert.Greater(t, plan.Improvement, 0.0)
	assert.Equal(t, 0, plan.TotalTransferCost)
}

func TestPlan_ExtraTransferCostsFourPoints(t *testing.T) {
	roster, pool := baseRoster(2)
	pool = append(pool,
		plannerPlayer(98, types.PositionFWD, "NEW", 5.0, 12.0, 2),
		plannerPlayer(99, types.PositionMID, "NFO", 5.0, 12.0, 2),
	)

	p := New(Config{})
	plan := p.Plan(context.Background(), pool, Request{
		Roster:         roster,
		Bank:           0,
		NumGameweeks:   2,
		FreeTransfers:  1,
		DiscountFactor: 1.0,
	})

	require.Equal(t, types.StatusSuccess, plan.Status)
	totalIn := 0
	for _, week := range plan.WeeklySolutions {
		totalIn += len(week.TransfersIn)
	}
	assert.Equal(t, 2, totalIn, "both upgrades are worth taking")

	first := plan.WeeklySolutions[0]
	if len(first.TransfersIn) == 2 {
		assert.Equal(t, 4, first.TransferCost)
		assert.Equal(t, 1, first.FreeTransfersUsed)
	} else {
		// One per week rides the rolling free allowance.
		assert.Equal(t, 0, plan.TotalTransferCost)
	}
}

func TestPlan_DiscountedTotalsAreConsistent(t *testing.T) {
	roster, pool := baseRoster(5)
	pool = append(pool, plannerPlayer(99, types.PositionFWD, "NEW", 6.0, 9.0, 5))

	gamma := 0.9
	p := New(Config{})
	plan := p.Plan(context.Background(), pool, Request{
		Roster:         roster,
		Bank:           2.0,
		NumGameweeks:   5,
		FreeTransfers:  1,
		DiscountFactor: gamma,
	})

	require.Equal(t, types.StatusSuccess, plan.Status)
	require.Len(t, plan.WeeklySolutions, 5)

	discounted := 0.0
	for i, week := range plan.WeeklySolutions {
		discounted += math.Pow(gamma, float64(i)) * (week.ExpectedPoints - float64(week.TransferCost))
	}
	assert.InDelta(t, discounted, plan.TotalExpectedPoints, 1e-9)

	baseline := 0.0
	for week := 0; week < 5; week++ {
		baseline += math.Pow(gamma, float64(week)) * 44.0
	}
	assert.InDelta(t, baseline, plan.CurrentExpectedPoints, 1e-9)
	assert.InDelta(t, plan.TotalExpectedPoints-plan.CurrentExpectedPoints, plan.Improvement, 1e-9)
}

func TestPlan_FreeTransfersRollUpToCap(t *testing.T) {
	roster, pool := baseRoster(6)
	p := New(Config{})
	plan := p.Plan(context.Background(), pool, Request{
		Roster:         roster,
		Bank:           0,
		NumGameweeks:   6,
		FreeTransfers:  1,
		DiscountFactor: 1.0,
	})

	require.Equal(t, types.StatusSuccess, plan.Status)
	// The allowance left after each untouched week, before the next
	// week's accrual.
	remaining := []int{1, 2, 3, 4, 5, 5}
	for i, week := range plan.WeeklySolutions {
		assert.Equal(t, remaining[i], week.FreeTransfersRemaining, "week %d", i+1)
	}
}

func TestPlan_TransferCostNetsOutOfTotals(t *testing.T) {
	roster, pool := baseRoster(2)
	pool = append(pool,
		plannerPlayer(98, types.PositionFWD, "NEW", 5.0, 34.0, 2),
		plannerPlayer(99, types.PositionMID, "NFO", 5.0, 34.0, 2),
	)

	p := New(Config{})
	plan := p.Plan(context.Background(), pool, Request{
		Roster:         roster,
		Bank:           0,
		NumGameweeks:   2,
		FreeTransfers:  1,
		DiscountFactor: 1.0,
	})

	require.Equal(t, types.StatusSuccess, plan.Status)
	first := plan.WeeklySolutions[0]
	require.Len(t, first.TransfersIn, 2, "both upgrades dwarf the penalty")
	assert.Equal(t, 4, first.TransferCost)
	assert.Equal(t, 0, first.FreeTransfersRemaining)
	assert.Equal(t, 4, plan.TotalTransferCost)

	// 44 - 8 + 68 = 104 per week; the 4-point hit nets out of the total.
	assert.InDelta(t, 104.0, first.ExpectedPoints, 1e-9)
	assert.InDelta(t, 204.0, plan.TotalExpectedPoints, 1e-9)
	assert.InDelta(t, 88.0, plan.CurrentExpectedPoints, 1e-9)
	assert.InDelta(t, 116.0, plan.Improvement, 1e-9)
}

func TestPlan_RejectsInvalidHorizonDiscountAndAllowance(t *testing.T) {
	roster, pool := baseRoster(2)
	p := New(Config{})

	tests := []struct {
		name string
		req  Request
	}{
		{"zero horizon", Request{Roster: roster, NumGameweeks: 0, DiscountFactor: 1.0}},
		{"discount above one", Request{Roster: roster, NumGameweeks: 2, DiscountFactor: 1.5}},
		{"zero discount", Request{Roster: roster, NumGameweeks: 2}},
		{"negative free transfers", Request{Roster: roster, NumGameweeks: 2, DiscountFactor: 1.0, FreeTransfers: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := p.Plan(context.Background(), pool, tt.req)
			assert.Equal(t, types.StatusError, plan.Status)
			assert.NotEmpty(t, plan.Error)
			assert.Empty(t, plan.WeeklySolutions)
		})
	}
}

func TestPlan_ForcesOutInjuredPlayer(t *testing.T) {
	roster, pool := baseRoster(3)
	roster[10].Player.InjuryStatus = types.StatusInjured
	replacement := plannerPlayer(99, types.PositionFWD, "NEW", 5.0, 3.0, 3)
	pool = append(pool, replacement)

	p := New(Config{})
	plan := p.Plan(context.Background(), pool, Request{
		Roster:         roster,
		Bank:           0,
		NumGameweeks:   3,
		FreeTransfers:  1,
		DiscountFactor: 1.0,
	})

	require.Equal(t, types.StatusSuccess, plan.Status)
	first := plan.WeeklySolutions[0]
	require.Len(t, first.TransfersOut, 1)
	assert.Equal(t, 11, first.TransfersOut[0].PlayerID,
		"the injured player leaves even though the replacement scores less")
	assert.Equal(t, 99, first.TransfersIn[0].PlayerID)
}

func TestPlan_SellingPriceFundsTheMove(t *testing.T) {
	weeks := 2
	roster, pool := baseRoster(weeks)
	// The forward was bought at 5.0 and has risen to 6.0: selling
	// recovers 5.5, funding a 5.5 signing with an empty bank.
	risen := roster[10].Player
	risen.Cost = 6.0
	roster[10] = types.RosterEntry{Player: risen, PurchasePrice: 5.0}
	pool[10] = risen

	affordable := plannerPlayer(99, types.PositionFWD, "NEW", 5.5, 9.0, weeks)
	tooDear := plannerPlayer(98, types.PositionFWD, "NFO", 5.6, 30.0, weeks)
	pool = append(pool, affordable, tooDear)

	p := New(Config{})
	plan := p.Plan(context.Background(), pool, Request{
		Roster:         roster,
		Bank:           0,
		NumGameweeks:   weeks,
		FreeTransfers:  1,
		DiscountFactor: 1.0,
	})

	require.Equal(t, types.StatusSuccess, plan.Status)
	first := plan.WeeklySolutions[0]
	require.Len(t, first.TransfersIn, 1)
	assert.Equal(t, 99, first.TransfersIn[0].PlayerID,
		"the stronger signing is out of reach at a 5.5 selling price")
	assert.InDelta(t, 5.5, first.TransfersOut[0].Cost, 1e-9,
		"half the price rise is kept on sale")
}

func TestPlan_RejectsBadRosterSize(t *testing.T) {
	roster, pool := baseRoster(2)
	p := New(Config{})
	plan := p.Plan(context.Background(), pool, Request{
		Roster:       roster[:5],
		NumGameweeks: 2,
	})
	assert.Equal(t, types.StatusError, plan.Status)
	assert.NotEmpty(t, plan.Error)
}
