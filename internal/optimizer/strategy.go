package optimizer

import (
	"context"
	"fmt"
	"sort"

	"github.com/nickbutler25/FPLOptimizer/internal/types"
)

// strategy is the contract every algorithm variant implements. All
// variants share the same scoring and constraint model; they differ
// only in how they search the feasible space.
type strategy interface {
	Name() types.Algorithm
	Solve(ctx context.Context, prob *problem) (*solution, error)
}

// problem is a fully normalized single-formation selection problem.
// Forced include-list players are already committed: need, budgetT and
// teamCount reflect the remaining open slots.
type problem struct {
	byPosition map[types.Position][]scoredPlayer // open candidates, score-desc
	need       map[types.Position]int            // open slots per position
	fixed      []scoredPlayer                    // forced-in players
	budgetT    int                               // remaining budget, tenths
	teamCap    int
	teamCount  map[string]int // counts contributed by fixed players
	seed       int64
}

// solution is a complete squad found by a strategy.
type solution struct {
	players    []scoredPlayer // the full eleven, fixed included
	objective  float64
	costT      int
	confidence float64
	partial    bool // deadline expired before the search finished
}

// infeasibleError names the first binding constraint when no valid
// squad exists. It distinguishes position shortfalls from budget
// shortfalls so the caller sees which constraint to relax.
type infeasibleError struct {
	reason string
}

func (e *infeasibleError) Error() string { return e.reason }

// buildProblem normalizes the scored pool into a per-position search
// problem for one formation, committing forced includes up front.
func buildProblem(pool []scoredPlayer, formation types.Formation, budgetT, teamCap int, includeIDs []int, seed int64) (*problem, error) {
	include := make(map[int]bool, len(includeIDs))
	for _, id := range includeIDs {
		include[id] = true
	}

	prob := &problem{
		byPosition: make(map[types.Position][]scoredPlayer, 4),
		need:       make(map[types.Position]int, 4),
		budgetT:    budgetT,
		teamCap:    teamCap,
		teamCount:  make(map[string]int),
		seed:       seed,
	}
	for _, pos := range types.Positions {
		prob.need[pos] = formation.Count(pos)
	}

	seen := make(map[int]bool, len(includeIDs))
	for _, sp := range pool {
		if include[sp.ID] {
			if seen[sp.ID] {
				continue
			}
			seen[sp.ID] = true
			if prob.need[sp.Position] == 0 {
				return nil, &infeasibleError{reason: fmt.Sprintf(
					"include list overfills position %s for formation %s",
					sp.Position, formation)}
			}
			prob.need[sp.Position]--
			prob.budgetT -= sp.costT
			prob.teamCount[sp.Team]++
			if prob.teamCount[sp.Team] > teamCap {
				return nil, &infeasibleError{reason: fmt.Sprintf(
					"include list exceeds the %d-player limit for team %s",
					teamCap, sp.Team)}
			}
			prob.fixed = append(prob.fixed, sp)
			continue
		}
		prob.byPosition[sp.Position] = append(prob.byPosition[sp.Position], sp)
	}

	for _, id := range includeIDs {
		if !seen[id] {
			return nil, &infeasibleError{reason: fmt.Sprintf(
				"include-list player %d is not in the candidate pool", id)}
		}
	}
	if prob.budgetT < 0 {
		return nil, &infeasibleError{reason: "include list alone exceeds the budget"}
	}

	for pos := range prob.byPosition {
		sortCandidates(prob.byPosition[pos])
	}

	return prob, prob.checkFeasible(formation)
}

// sortCandidates orders by score desc, then cost asc, then id asc, so
// every deterministic strategy visits players in a stable order.
func sortCandidates(players []scoredPlayer) {
	sort.Slice(players, func(i, j int) bool {
		if players[i].score != players[j].score {
			return players[i].score > players[j].score
		}
		if players[i].costT != players[j].costT {
			return players[i].costT < players[j].costT
		}
		return players[i].ID < players[j].ID
	})
}

// checkFeasible detects unsatisfiable problems up front: a position
// pool too small for its slots, or cheapest-possible cost over budget.
func (p *problem) checkFeasible(formation types.Formation) error {
	for _, pos := range types.Positions {
		if len(p.byPosition[pos]) < p.need[pos] {
			return &infeasibleError{reason: fmt.Sprintf(
				"position shortfall: need %d %s for formation %s, only %d available",
				p.need[pos], pos, formation, len(p.byPosition[pos]))}
		}
	}

	minCost := 0
	for _, pos := range types.Positions {
		if p.need[pos] == 0 {
			continue
		}
		costs := make([]int, len(p.byPosition[pos]))
		for i, sp := range p.byPosition[pos] {
			costs[i] = sp.costT
		}
		sort.Ints(costs)
		for i := 0; i < p.need[pos]; i++ {
			minCost += costs[i]
		}
	}
	if minCost > p.budgetT {
		return &infeasibleError{reason: fmt.Sprintf(
			"budget shortfall: cheapest valid squad costs %.1f, budget leaves %.1f",
			types.FromTenths(minCost), types.FromTenths(p.budgetT))}
	}

	return nil
}

// openSlots is the number of slots the strategies still have to fill.
func (p *problem) openSlots() int {
	total := 0
	for _, n := range p.need {
		total += n
	}
	return total
}

// fixedObjective is the committed score and cost of the include list.
func (p *problem) fixedObjective() (float64, int) {
	score, cost := 0.0, 0
	for _, sp := range p.fixed {
		score += sp.score
		cost += sp.costT
	}
	return score, cost
}

// upperBound is an admissible bound on the achievable open-slot
// objective: the smaller of a budget-blind top-k bound and a fractional
// knapsack bound over score density, both relaxing the team cap.
func (p *problem) upperBound() float64 {
	topK := 0.0
	type slotCand struct {
		score float64
		costT int
	}
	var all []slotCand
	for _, pos := range types.Positions {
		n := p.need[pos]
		for i, sp := range p.byPosition[pos] {
			if i < n {
				topK += sp.score
			}
			if n > 0 {
				all = append(all, slotCand{score: sp.score, costT: sp.costT})
			}
		}
	}

	sort.Slice(all, func(i, j int) bool {
		di := all[i].score / float64(max(all[i].costT, 1))
		dj := all[j].score / float64(max(all[j].costT, 1))
		return di > dj
	})
	frac := 0.0
	budget := p.budgetT
	slots := p.openSlots()
	for _, c := range all {
		if slots == 0 || budget <= 0 {
			break
		}
		if c.costT <= budget {
			frac += c.score
			budget -= c.costT
			slots--
		} else {
			frac += c.score * float64(budget) / float64(c.costT)
			budget = 0
		}
	}

	if frac < topK {
		return frac
	}
	return topK
}

// newStrategy resolves the tagged algorithm variant to its
// implementation. An empty algorithm defaults to linear programming.
func newStrategy(algo types.Algorithm, cfg SearchConfig) (strategy, error) {
	switch algo {
	case "", types.AlgorithmLinearProgramming:
		return &exactStrategy{}, nil
	case types.AlgorithmGreedy:
		return &greedyStrategy{}, nil
	case types.AlgorithmGeneticAlgorithm:
		return &geneticStrategy{cfg: cfg}, nil
	case types.AlgorithmSimulatedAnnealing:
		return &annealingStrategy{cfg: cfg}, nil
	case types.AlgorithmHybrid:
		return &hybridStrategy{}, nil
	default:
		return nil, fmt.Errorf("unknown algorithm %q", algo)
	}
}

// SearchConfig bounds the stochastic strategies. Zero values fall back
// to defaults so tests can construct it sparsely.
type SearchConfig struct {
	PopulationSize int
	Generations    int
	MutationRate   float64
	Restarts       int
	SAIterations   int
	SAInitialTemp  float64
	SACooling      float64
}

func (c SearchConfig) withDefaults() SearchConfig {
	if c.PopulationSize == 0 {
		c.PopulationSize = 40
	}
	if c.Generations == 0 {
		c.Generations = 60
	}
	if c.MutationRate == 0 {
		c.MutationRate = 0.15
	}
	if c.Restarts == 0 {
		c.Restarts = 3
	}
	if c.SAIterations == 0 {
		c.SAIterations = 4000
	}
	if c.SAInitialTemp == 0 {
		c.SAInitialTemp = 8.0
	}
	if c.SACooling == 0 {
		c.SACooling = 0.995
	}
	return c
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
