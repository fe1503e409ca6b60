package types

// Algorithm selects the squad-selection strategy. The wire value is a
// flat string; internally each value resolves to a concrete strategy
// implementation behind a shared interface.
type Algorithm string

const (
	AlgorithmLinearProgramming  Algorithm = "linear_programming"
	AlgorithmGreedy             Algorithm = "greedy"
	AlgorithmGeneticAlgorithm   Algorithm = "genetic_algorithm"
	AlgorithmSimulatedAnnealing Algorithm = "simulated_annealing"
	AlgorithmHybrid             Algorithm = "hybrid"
)

// Algorithms lists every selectable strategy.
var Algorithms = []Algorithm{
	AlgorithmLinearProgramming,
	AlgorithmGreedy,
	AlgorithmGeneticAlgorithm,
	AlgorithmSimulatedAnnealing,
	AlgorithmHybrid,
}

// Valid reports whether a is a known algorithm.
func (a Algorithm) Valid() bool {
	for _, known := range Algorithms {
		if a == known {
			return true
		}
	}
	return false
}

// RiskTolerance tunes the variance-sensitive portion of player weights.
type RiskTolerance string

const (
	RiskConservative RiskTolerance = "conservative"
	RiskBalanced     RiskTolerance = "balanced"
	RiskAggressive   RiskTolerance = "aggressive"
)

// Constraints are the optional hard filters and limits of an
// optimization request. Pointer fields distinguish "unset" from zero.
type Constraints struct {
	MaxPlayersPerTeam    int      `json:"max_players_per_team,omitempty"`
	IncludePlayers       []int    `json:"include_players,omitempty"`
	ExcludePlayers       []int    `json:"exclude_players,omitempty"`
	MinCost              *float64 `json:"min_cost,omitempty"`
	MaxCost              *float64 `json:"max_cost,omitempty"`
	MinPoints            *int     `json:"min_points,omitempty"`
	MaxPoints            *int     `json:"max_points,omitempty"`
	ExcludeInjured       bool     `json:"exclude_injured,omitempty"`
	ExcludeDoubtful      bool     `json:"exclude_doubtful,omitempty"`
	MinMinutes           *int     `json:"min_minutes,omitempty"`
	MinForm              *float64 `json:"min_form,omitempty"`
	MaxFixtureDifficulty *float64 `json:"max_fixture_difficulty,omitempty"`
}

// Preferences are the soft objective adjustments of a request. They
// reshape player weights multiplicatively; they never reject players.
type Preferences struct {
	RiskTolerance       RiskTolerance `json:"risk_tolerance,omitempty"`
	PreferForm          bool          `json:"prefer_form,omitempty"`
	PreferPopular       bool          `json:"prefer_popular,omitempty"`
	PreferDifferentials bool          `json:"prefer_differentials,omitempty"`
	PrioritizeCaptaincy bool          `json:"prioritize_captaincy,omitempty"`
	WeightBonusPoints   float64       `json:"weight_bonus_points,omitempty"`
	WeightCleanSheets   float64       `json:"weight_clean_sheets,omitempty"`
}

// OptimizationRequest is the full advanced-optimization request shape.
type OptimizationRequest struct {
	Budget      float64      `json:"budget"`
	Formation   string       `json:"formation,omitempty"`
	Gameweek    int          `json:"gameweek,omitempty"`
	Algorithm   Algorithm    `json:"algorithm,omitempty"`
	Seed        int64        `json:"seed,omitempty"`
	Constraints *Constraints `json:"constraints,omitempty"`
	Preferences *Preferences `json:"preferences,omitempty"`
}

// Budget bounds accepted by the validator, in millions.
const (
	MinBudget = 50.0
	MaxBudget = 120.0
)

// Per-player cost bounds accepted by the validator, in millions.
const (
	MinPlayerCost = 3.9
	MaxPlayerCost = 15.0
)

// DefaultMaxPlayersPerTeam is the FPL club limit.
const DefaultMaxPlayersPerTeam = 3
