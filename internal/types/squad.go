package types

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// SquadSize is the number of players a selected squad fields.
const SquadSize = 11

// MaxRosterSize is the largest roster the lineup selector accepts.
const MaxRosterSize = 15

// Formation is the outfield shape of a starting XI, e.g. "3-5-2"
// (defenders-midfielders-forwards; the goalkeeper count is always 1).
type Formation struct {
	DEF int
	MID int
	FWD int
}

// ValidFormations lists the seven legal FPL formations in canonical
// enumeration order. First-enumerated wins ties everywhere.
var ValidFormations = []Formation{
	{3, 4, 3},
	{3, 5, 2},
	{4, 3, 3},
	{4, 4, 2},
	{4, 5, 1},
	{5, 3, 2},
	{5, 4, 1},
}

// String renders the wire label, e.g. "4-4-2".
func (f Formation) String() string {
	return fmt.Sprintf("%d-%d-%d", f.DEF, f.MID, f.FWD)
}

// Count returns the number of players the formation fields at a position.
func (f Formation) Count(pos Position) int {
	switch pos {
	case PositionGKP:
		return 1
	case PositionDEF:
		return f.DEF
	case PositionMID:
		return f.MID
	case PositionFWD:
		return f.FWD
	}
	return 0
}

// ParseFormation parses a "DEF-MID-FWD" label and reports whether it is
// one of the seven valid formations.
func ParseFormation(s string) (Formation, bool) {
	parts := strings.Split(s, "-")
	if len(parts) != 3 {
		return Formation{}, false
	}
	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return Formation{}, false
		}
		nums[i] = n
	}
	f := Formation{DEF: nums[0], MID: nums[1], FWD: nums[2]}
	for _, valid := range ValidFormations {
		if f == valid {
			return f, true
		}
	}
	return Formation{}, false
}

// RosterEntry binds a player to a roster with its acquisition price and
// role flags. Entries are value types; role changes build new entries.
type RosterEntry struct {
	Player        Player  `json:"player"`
	PurchasePrice float64 `json:"purchase_price"`
	IsStarting    bool    `json:"is_starting"`
	IsCaptain     bool    `json:"is_captain"`
	IsViceCaptain bool    `json:"is_vice_captain"`
}

// SellingPriceTenths applies the FPL profit-sharing rule in tenths:
// half of any price rise is kept, any price fall is borne in full.
func (e RosterEntry) SellingPriceTenths() int {
	current := e.Player.CostTenths()
	purchase := Tenths(e.PurchasePrice)
	if current >= purchase {
		return purchase + (current-purchase)/2
	}
	return current
}

// SellingPrice is SellingPriceTenths as a money value.
func (e RosterEntry) SellingPrice() float64 {
	return FromTenths(e.SellingPriceTenths())
}

// Squad is an immutable selected squad: exactly SquadSize entries in a
// valid formation, at most three per club, one captain and one distinct
// vice-captain among starters. Constructed by the engine, never mutated;
// downstream edits produce a new Squad value.
type Squad struct {
	Players         []RosterEntry `json:"players"`
	Formation       string        `json:"formation"`
	TotalCost       float64       `json:"total_cost"`
	TotalPoints     float64       `json:"total_points"`
	RemainingBudget float64       `json:"remaining_budget"`
	Bank            float64       `json:"bank,omitempty"`
}

// PositionCounts tallies entries per position.
func (s Squad) PositionCounts() map[Position]int {
	counts := make(map[Position]int, 4)
	for _, e := range s.Players {
		counts[e.Player.Position]++
	}
	return counts
}

// TeamCounts tallies entries per real-world club.
func (s Squad) TeamCounts() map[string]int {
	counts := make(map[string]int)
	for _, e := range s.Players {
		counts[e.Player.Team]++
	}
	return counts
}

// Captain returns the captained entry, if any.
func (s Squad) Captain() (RosterEntry, bool) {
	for _, e := range s.Players {
		if e.IsCaptain {
			return e, true
		}
	}
	return RosterEntry{}, false
}

// ViceCaptain returns the vice-captained entry, if any.
func (s Squad) ViceCaptain() (RosterEntry, bool) {
	for _, e := range s.Players {
		if e.IsViceCaptain {
			return e, true
		}
	}
	return RosterEntry{}, false
}

// PointsWithCaptain is the squad's expected points for the given week
// with the captain's contribution doubled.
func (s Squad) PointsWithCaptain(week int) float64 {
	total := 0.0
	for _, e := range s.Players {
		if !e.IsStarting {
			continue
		}
		pts := e.Player.ExpectedPointsAt(week)
		if e.IsCaptain {
			pts *= 2
		}
		total += pts
	}
	return total
}

// Fingerprint is a canonical identity for the set of rostered players,
// used as a memoization key component by the transfer planner.
func (s Squad) Fingerprint() string {
	ids := make([]int, len(s.Players))
	for i, e := range s.Players {
		ids[i] = e.Player.ID
	}
	sort.Ints(ids)
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}
