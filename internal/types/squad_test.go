package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSellingPrice_HalfProfitRule(t *testing.T) {
	tests := []struct {
		name     string
		purchase float64
		current  float64
		want     float64
	}{
		{"price rise keeps half the profit", 5.0, 6.0, 5.5},
		{"price fall is borne in full", 5.0, 4.5, 4.5},
		{"odd profit rounds down", 5.0, 5.3, 5.1},
		{"no change", 5.0, 5.0, 5.0},
		{"single tenth rise rounds away", 5.0, 5.1, 5.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := RosterEntry{
				Player:        Player{Cost: tt.current},
				PurchasePrice: tt.purchase,
			}
			assert.Equal(t, tt.want, entry.SellingPrice())
		})
	}
}

func TestParseFormation(t *testing.T) {
	f, ok := ParseFormation("3-5-2")
	assert.True(t, ok)
	assert.Equal(t, Formation{DEF: 3, MID: 5, FWD: 2}, f)
	assert.Equal(t, "3-5-2", f.String())

	_, ok = ParseFormation("2-5-3")
	assert.False(t, ok, "2 defenders is not a legal formation")

	_, ok = ParseFormation("4-4")
	assert.False(t, ok)

	_, ok = ParseFormation("a-b-c")
	assert.False(t, ok)
}

func TestFormationCount(t *testing.T) {
	f := Formation{DEF: 4, MID: 4, FWD: 2}
	assert.Equal(t, 1, f.Count(PositionGKP))
	assert.Equal(t, 4, f.Count(PositionDEF))
	assert.Equal(t, 4, f.Count(PositionMID))
	assert.Equal(t, 2, f.Count(PositionFWD))
}

func TestSquadFingerprint_OrderIndependent(t *testing.T) {
	a := Squad{Players: []RosterEntry{
		{Player: Player{ID: 3}}, {Player: Player{ID: 1}}, {Player: Player{ID: 2}},
	}}
	b := Squad{Players: []RosterEntry{
		{Player: Player{ID: 1}}, {Player: Player{ID: 2}}, {Player: Player{ID: 3}},
	}}
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
	assert.Equal(t, "1,2,3", a.Fingerprint())
}

func TestPointsWithCaptain_DoublesCaptainOnly(t *testing.T) {
	squad := Squad{Players: []RosterEntry{
		{Player: Player{ID: 1, ExpectedPoints: []float64{6}}, IsStarting: true, IsCaptain: true},
		{Player: Player{ID: 2, ExpectedPoints: []float64{4}}, IsStarting: true},
		{Player: Player{ID: 3, ExpectedPoints: []float64{9}}, IsStarting: false},
	}}
	assert.InDelta(t, 16.0, squad.PointsWithCaptain(0), 1e-9)
}

func TestTenthsRoundTrip(t *testing.T) {
	assert.Equal(t, 55, Tenths(5.5))
	assert.Equal(t, 39, Tenths(3.9))
	assert.Equal(t, 5.5, FromTenths(55))
}
