package optimizer

import (
	"context"
	"sort"

	"github.com/nickbutler25/FPLOptimizer/internal/types"
)

// greedyStrategy fills slots by repeatedly taking the affordable
// candidate with the highest weighted-points-per-cost among positions
// that still have open slots, reserving enough budget to fill the rest
// with the cheapest remaining options. Fast and deterministic, not
// guaranteed optimal; confidence is the achieved objective over the
// fractional relaxation bound.
type greedyStrategy struct{}

func (s *greedyStrategy) Name() types.Algorithm { return types.AlgorithmGreedy }

func (s *greedyStrategy) Solve(ctx context.Context, prob *problem) (*solution, error) {
	chosen, err := greedyFill(prob)
	if err != nil {
		return nil, err
	}

	fixedScore, fixedCost := prob.fixedObjective()
	objective, costT := fixedScore, fixedCost
	for _, sp := range chosen {
		objective += sp.score
		costT += sp.costT
	}

	bound := prob.upperBound() + fixedScore
	confidence := 1.0
	if bound > 0 {
		confidence = objective / bound
		if confidence > 1 {
			confidence = 1
		}
	}

	return &solution{
		players:    append(append([]scoredPlayer{}, prob.fixed...), chosen...),
		objective:  objective,
		costT:      costT,
		confidence: confidence,
	}, nil
}

// greedyFill produces a feasible open-slot selection or an infeasible
// error naming the position it could not fill.
func greedyFill(prob *problem) ([]scoredPlayer, error) {
	need := make(map[types.Position]int, len(prob.need))
	for pos, n := range prob.need {
		need[pos] = n
	}
	teamCount := make(map[string]int, len(prob.teamCount))
	for team, n := range prob.teamCount {
		teamCount[team] = n
	}
	used := make(map[int]bool)
	budget := prob.budgetT
	var chosen []scoredPlayer

	for slotsLeft := prob.openSlots(); slotsLeft > 0; slotsLeft-- {
		var best *scoredPlayer
		bestDensity := -1.0
		for _, pos := range types.Positions {
			if need[pos] == 0 {
				continue
			}
			for i := range prob.byPosition[pos] {
				sp := prob.byPosition[pos][i]
				if used[sp.ID] || teamCount[sp.Team] >= prob.teamCap {
					continue
				}
				reserve := cheapestFill(prob, need, used, teamCount, pos, sp)
				if sp.costT+reserve > budget {
					continue
				}
				density := sp.score / float64(max(sp.costT, 1))
				if density > bestDensity {
					bestDensity = density
					best = &prob.byPosition[pos][i]
				}
			}
		}
		if best == nil {
			for _, pos := range types.Positions {
				if need[pos] > 0 {
					return nil, &infeasibleError{reason: "no affordable candidate left for position " + string(pos)}
				}
			}
			break
		}
		chosen = append(chosen, *best)
		used[best.ID] = true
		teamCount[best.Team]++
		need[best.Position]--
		budget -= best.costT
	}

	return chosen, nil
}

// cheapestFill estimates the minimum cost of the remaining open slots
// assuming candidate picked fills one slot at pos. Team caps are
// relaxed here; the reserve only guards the budget.
func cheapestFill(prob *problem, need map[types.Position]int, used map[int]bool, teamCount map[string]int, pickedPos types.Position, picked scoredPlayer) int {
	total := 0
	for _, pos := range types.Positions {
		n := need[pos]
		if pos == pickedPos {
			n--
		}
		if n <= 0 {
			continue
		}
		var costs []int
		for _, sp := range prob.byPosition[pos] {
			if used[sp.ID] || sp.ID == picked.ID {
				continue
			}
			costs = append(costs, sp.costT)
		}
		sort.Ints(costs)
		for i := 0; i < n && i < len(costs); i++ {
			total += costs[i]
		}
	}
	return total
}

// hybridStrategy takes the greedy squad as a seed and refines it with
// strictly-improving single-player swaps until a local optimum.
type hybridStrategy struct{}

func (s *hybridStrategy) Name() types.Algorithm { return types.AlgorithmHybrid }

func (s *hybridStrategy) Solve(ctx context.Context, prob *problem) (*solution, error) {
	chosen, err := greedyFill(prob)
	if err != nil {
		return nil, err
	}

	chosen = localSearch(ctx, prob, chosen)

	fixedScore, fixedCost := prob.fixedObjective()
	objective, costT := fixedScore, fixedCost
	for _, sp := range chosen {
		objective += sp.score
		costT += sp.costT
	}

	bound := prob.upperBound() + fixedScore
	confidence := 1.0
	if bound > 0 {
		confidence = objective / bound
		if confidence > 1 {
			confidence = 1
		}
	}

	return &solution{
		players:    append(append([]scoredPlayer{}, prob.fixed...), chosen...),
		objective:  objective,
		costT:      costT,
		confidence: confidence,
	}, nil
}

// localSearch applies same-position single swaps while any swap
// strictly improves the objective and stays feasible.
func localSearch(ctx context.Context, prob *problem, squad []scoredPlayer) []scoredPlayer {
	squad = append([]scoredPlayer{}, squad...)
	for {
		select {
		case <-ctx.Done():
			return squad
		default:
		}

		improved := false
		for i, out := range squad {
			for _, in := range prob.byPosition[out.Position] {
				if in.score <= out.score+scoreEpsilon {
					break // candidates are score-desc; nothing better remains
				}
				if swapFeasible(prob, squad, i, in) {
					squad[i] = in
					improved = true
					break
				}
			}
			if improved {
				break
			}
		}
		if !improved {
			return squad
		}
	}
}

// swapFeasible checks budget, duplicate and team-cap constraints for
// replacing squad[i] with in.
func swapFeasible(prob *problem, squad []scoredPlayer, i int, in scoredPlayer) bool {
	if in.ID == squad[i].ID {
		return false
	}
	cost := 0
	teamCount := make(map[string]int, len(prob.teamCount))
	for team, n := range prob.teamCount {
		teamCount[team] = n
	}
	for j, sp := range squad {
		if j == i {
			continue
		}
		if sp.ID == in.ID {
			return false
		}
		cost += sp.costT
		teamCount[sp.Team]++
	}
	for _, fixed := range prob.fixed {
		if fixed.ID == in.ID {
			return false
		}
	}
	if cost+in.costT > prob.budgetT {
		return false
	}
	if teamCount[in.Team]+1 > prob.teamCap {
		return false
	}
	return true
}
