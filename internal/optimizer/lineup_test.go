package optimizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nickbutler25/FPLOptimizer/internal/types"
)

func entry(id int, pos types.Position, team string, cost, ep float64) types.RosterEntry {
	return types.RosterEntry{
		Player:        makePlayer(id, pos, team, cost, ep),
		PurchasePrice: cost,
	}
}

// fullRoster is a 15-player squad: 2 GKP, 5 DEF, 5 MID, 3 FWD.
func fullRoster() []types.RosterEntry {
	return []types.RosterEntry{
		entry(1, types.PositionGKP, "ARS", 5.5, 5.0),
		entry(2, types.PositionGKP, "AVL", 4.0, 4.0),
		entry(10, types.PositionDEF, "BRE", 6.0, 5.5),
		entry(11, types.PositionDEF, "BHA", 5.5, 5.0),
		entry(12, types.PositionDEF, "CHE", 5.0, 4.5),
		entry(13, types.PositionDEF, "CRY", 4.5, 4.0),
		entry(14, types.PositionDEF, "EVE", 4.0, 3.5),
		entry(20, types.PositionMID, "LIV", 12.0, 8.0),
		entry(21, types.PositionMID, "MCI", 9.5, 7.0),
		entry(22, types.PositionMID, "MUN", 8.0, 6.0),
		entry(23, types.PositionMID, "NEW", 6.0, 5.0),
		entry(24, types.PositionMID, "TOT", 5.0, 4.5),
		entry(30, types.PositionFWD, "WOL", 10.0, 7.5),
		entry(31, types.PositionFWD, "LEE", 8.0, 6.0),
		entry(32, types.PositionFWD, "BUR", 5.0, 4.0),
	}
}

func TestSelectStartingXI_PicksBestFormation(t *testing.T) {
	squad, err := SelectStartingXI(fullRoster(), 0)
	require.NoError(t, err)

	// 3-5-2 maximizes expected points for this roster.
	assert.Equal(t, "3-5-2", squad.Formation)
	assert.InDelta(t, 64.0, squad.TotalPoints, 1e-9)

	starters := 0
	for _, e := range squad.Players {
		if e.IsStarting {
			starters++
		}
	}
	assert.Equal(t, types.SquadSize, starters)
	assert.Len(t, squad.Players, 15, "bench stays on the roster")
}

func TestSelectStartingXI_CaptainAndVice(t *testing.T) {
	squad, err := SelectStartingXI(fullRoster(), 0)
	require.NoError(t, err)

	captain, ok := squad.Captain()
	require.True(t, ok)
	assert.Equal(t, 20, captain.Player.ID, "top expected scorer is captain")

	vice, ok := squad.ViceCaptain()
	require.True(t, ok)
	assert.Equal(t, 30, vice.Player.ID, "second-best starter is vice")
	assert.NotEqual(t, captain.Player.ID, vice.Player.ID)
}

func TestSelectStartingXI_ElevenPlayersAllStart(t *testing.T) {
	roster := fullRoster()[:13]
	// Trim to exactly eleven: drop the backup keeper and weakest forward.
	eleven := make([]types.RosterEntry, 0, 11)
	for _, e := range roster {
		if e.Player.ID == 2 || e.Player.ID == 14 {
			continue
		}
		eleven = append(eleven, e)
	}
	require.Len(t, eleven, 11)

	squad, err := SelectStartingXI(eleven, 0)
	require.NoError(t, err)
	for _, e := range squad.Players {
		assert.True(t, e.IsStarting)
	}
}

func TestSelectStartingXI_RosterSizeBounds(t *testing.T) {
	_, err := SelectStartingXI(fullRoster()[:10], 0)
	assert.Error(t, err)

	oversized := append(fullRoster(), entry(99, types.PositionMID, "SUN", 4.5, 3.0))
	_, err = SelectStartingXI(oversized, 0)
	assert.Error(t, err)
}

func TestSelectStartingXI_NamesShortPosition(t *testing.T) {
	roster := fullRoster()
	// Replace both keepers with extra midfielders.
	roster[0] = entry(50, types.PositionMID, "SUN", 5.0, 4.0)
	roster[1] = entry(51, types.PositionMID, "WHU", 5.0, 4.0)

	_, err := SelectStartingXI(roster, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GKP")
}

func TestSelectStartingXI_Idempotent(t *testing.T) {
	first, err := SelectStartingXI(fullRoster(), 0)
	require.NoError(t, err)

	// Reapplying to a roster that already carries flags rebuilds the
	// same lineup.
	second, err := SelectStartingXI(first.Players, 0)
	require.NoError(t, err)
	assert.Equal(t, first.Formation, second.Formation)
	assert.Equal(t, first.TotalPoints, second.TotalPoints)

	firstCaptain, _ := first.Captain()
	secondCaptain, _ := second.Captain()
	assert.Equal(t, firstCaptain.Player.ID, secondCaptain.Player.ID)
}

func TestSelectStartingXI_DoesNotMutateInput(t *testing.T) {
	roster := fullRoster()
	_, err := SelectStartingXI(roster, 0)
	require.NoError(t, err)
	for _, e := range roster {
		assert.False(t, e.IsStarting)
		assert.False(t, e.IsCaptain)
	}
}
