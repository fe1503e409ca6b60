package types

import "math"

// Position is one of the four FPL player positions.
type Position string

const (
	PositionGKP Position = "GKP"
	PositionDEF Position = "DEF"
	PositionMID Position = "MID"
	PositionFWD Position = "FWD"
)

// Positions lists all positions in squad order (GKP first).
var Positions = []Position{PositionGKP, PositionDEF, PositionMID, PositionFWD}

// InjuryStatus is the availability flag derived from FPL news and
// chance-of-playing data.
type InjuryStatus string

const (
	StatusAvailable   InjuryStatus = "available"
	StatusDoubtful    InjuryStatus = "doubtful"
	StatusInjured     InjuryStatus = "injured"
	StatusSuspended   InjuryStatus = "suspended"
	StatusUnavailable InjuryStatus = "unavailable"
)

// Player is an immutable snapshot of a candidate player for one
// optimization run. Costs are in millions with one-decimal precision;
// ExpectedPoints is ordered by upcoming gameweek.
type Player struct {
	ID                int          `json:"id"`
	Name              string       `json:"name"`
	WebName           string       `json:"web_name,omitempty"`
	Team              string       `json:"team"`
	Position          Position     `json:"position"`
	Cost              float64      `json:"cost"`
	TotalPoints       int          `json:"total_points"`
	ExpectedPoints    []float64    `json:"expected_points"`
	Form              float64      `json:"form"`
	SelectedByPercent float64      `json:"selected_by_percent"`
	Minutes           int          `json:"minutes"`
	GoalsScored       int          `json:"goals_scored,omitempty"`
	Assists           int          `json:"assists,omitempty"`
	CleanSheets       int          `json:"clean_sheets,omitempty"`
	Bonus             int          `json:"bonus,omitempty"`
	FixtureDifficulty float64      `json:"fixture_difficulty,omitempty"`
	InjuryStatus      InjuryStatus `json:"injury_status"`
	News              string       `json:"news,omitempty"`
}

// ExpectedPointsAt returns the expected points for the given future
// gameweek offset (0 = next gameweek), or 0 when no forecast exists.
func (p Player) ExpectedPointsAt(week int) float64 {
	if week < 0 || week >= len(p.ExpectedPoints) {
		return 0
	}
	return p.ExpectedPoints[week]
}

// PointsPerCost is total season points per million, the basic value metric.
func (p Player) PointsPerCost() float64 {
	if p.Cost <= 0 {
		return 0
	}
	return float64(p.TotalPoints) / p.Cost
}

// CostTenths returns the cost in integer tenths of a million. All budget
// and selling-price arithmetic runs on tenths to avoid float drift.
func (p Player) CostTenths() int {
	return Tenths(p.Cost)
}

// Available reports whether the player can be fielded at all.
func (p Player) Available() bool {
	return p.InjuryStatus == StatusAvailable || p.InjuryStatus == StatusDoubtful
}

// Tenths converts a one-decimal money value to integer tenths.
func Tenths(m float64) int {
	return int(math.Round(m * 10))
}

// FromTenths converts integer tenths back to a money value.
func FromTenths(t int) float64 {
	return float64(t) / 10
}
