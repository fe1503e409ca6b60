package optimizer

import (
	"context"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/stat"

	"github.com/nickbutler25/FPLOptimizer/internal/types"
)

// The stochastic strategies search over flat slot encodings: slot i of
// an individual holds a candidate for slotLayout[i]'s position. After
// every crossover or mutation the individual is repaired back into the
// feasible region. Randomness always comes from a caller-seeded source;
// there is no package-level rand state anywhere in the engine.

// slotLayout expands the open-slot requirements into an ordered slot
// list, e.g. [GKP DEF DEF DEF MID ...].
func slotLayout(prob *problem) []types.Position {
	var layout []types.Position
	for _, pos := range types.Positions {
		for i := 0; i < prob.need[pos]; i++ {
			layout = append(layout, pos)
		}
	}
	return layout
}

// repair rebuilds an individual into a feasible squad, keeping as many
// of its picks as constraints allow. Returns false when the slot could
// not be filled at all.
func repair(prob *problem, layout []types.Position, squad []scoredPlayer) bool {
	used := make(map[int]bool, len(squad)+len(prob.fixed))
	teamCount := make(map[string]int, len(prob.teamCount))
	for team, n := range prob.teamCount {
		teamCount[team] = n
	}
	for _, sp := range prob.fixed {
		used[sp.ID] = true
	}
	budget := prob.budgetT

	for i, pos := range layout {
		sp := squad[i]
		reserve := cheapestSuffix(prob, layout, i+1, used, sp.ID)
		ok := sp.Position == pos && !used[sp.ID] &&
			teamCount[sp.Team] < prob.teamCap &&
			sp.costT+reserve <= budget
		if !ok {
			replacement, found := bestFeasible(prob, pos, used, teamCount, budget-cheapestSuffix(prob, layout, i+1, used, -1))
			if !found {
				return false
			}
			squad[i] = replacement
			sp = replacement
		}
		used[sp.ID] = true
		teamCount[sp.Team]++
		budget -= sp.costT
	}
	return true
}

// cheapestSuffix is the minimal cost of filling layout[from:] ignoring
// team caps, excluding used players and skipID.
func cheapestSuffix(prob *problem, layout []types.Position, from int, used map[int]bool, skipID int) int {
	need := make(map[types.Position]int, 4)
	for _, pos := range layout[from:] {
		need[pos]++
	}
	total := 0
	for pos, n := range need {
		count := 0
		// byPosition is score-sorted; scan all and track the n cheapest.
		cheapest := make([]int, 0, n)
		for _, sp := range prob.byPosition[pos] {
			if used[sp.ID] || sp.ID == skipID {
				continue
			}
			cheapest = insertCheapest(cheapest, sp.costT, n)
			count++
		}
		for _, c := range cheapest {
			total += c
		}
		if count < n {
			return math.MaxInt32 // unfillable suffix; caller's budget check fails
		}
	}
	return total
}

func insertCheapest(cheapest []int, cost, limit int) []int {
	if len(cheapest) < limit {
		cheapest = append(cheapest, cost)
	} else {
		worst := 0
		for i, c := range cheapest {
			if c > cheapest[worst] {
				worst = i
			}
		}
		if cost < cheapest[worst] {
			cheapest[worst] = cost
		}
	}
	return cheapest
}

// bestFeasible picks the highest-scoring candidate at pos that fits the
// running constraints.
func bestFeasible(prob *problem, pos types.Position, used map[int]bool, teamCount map[string]int, budget int) (scoredPlayer, bool) {
	for _, sp := range prob.byPosition[pos] {
		if used[sp.ID] || teamCount[sp.Team] >= prob.teamCap || sp.costT > budget {
			continue
		}
		return sp, true
	}
	return scoredPlayer{}, false
}

// randomIndividual builds a random feasible squad, falling back to the
// greedy squad when random placement keeps failing.
func randomIndividual(prob *problem, layout []types.Position, rng *rand.Rand) ([]scoredPlayer, error) {
	for attempt := 0; attempt < 8; attempt++ {
		squad := make([]scoredPlayer, len(layout))
		for i, pos := range layout {
			pool := prob.byPosition[pos]
			squad[i] = pool[rng.Intn(len(pool))]
		}
		if repair(prob, layout, squad) {
			return squad, nil
		}
	}
	chosen, err := greedyFill(prob)
	if err != nil {
		return nil, err
	}
	// Greedy picks arrive in density order; realign them with the slot
	// layout so repair can reason per slot.
	byPos := make(map[types.Position][]scoredPlayer, 4)
	for _, sp := range chosen {
		byPos[sp.Position] = append(byPos[sp.Position], sp)
	}
	squad := make([]scoredPlayer, len(layout))
	for i, pos := range layout {
		squad[i] = byPos[pos][0]
		byPos[pos] = byPos[pos][1:]
	}
	return squad, nil
}

func squadObjective(squad []scoredPlayer) (float64, int) {
	score, cost := 0.0, 0
	for _, sp := range squad {
		score += sp.score
		cost += sp.costT
	}
	return score, cost
}

// stochasticConfidence derives confidence from the stability of restart
// outcomes: tightly clustered bests mean the search converged.
func stochasticConfidence(restartBests []float64) float64 {
	if len(restartBests) < 2 {
		return 0.7
	}
	mean := stat.Mean(restartBests, nil)
	if mean <= 0 {
		return 0.5
	}
	spread := stat.StdDev(restartBests, nil) / mean
	conf := 0.95 - spread
	if conf < 0.5 {
		conf = 0.5
	}
	if conf > 0.95 {
		conf = 0.95
	}
	return conf
}

// geneticStrategy evolves a population of valid squads with tournament
// selection, uniform crossover and repair after every mutation.
type geneticStrategy struct {
	cfg SearchConfig
}

func (s *geneticStrategy) Name() types.Algorithm { return types.AlgorithmGeneticAlgorithm }

func (s *geneticStrategy) Solve(ctx context.Context, prob *problem) (*solution, error) {
	cfg := s.cfg.withDefaults()
	layout := slotLayout(prob)

	var overallBest []scoredPlayer
	overallScore := -1.0
	restartBests := make([]float64, 0, cfg.Restarts)
	partial := false

	for restart := 0; restart < cfg.Restarts; restart++ {
		rng := rand.New(rand.NewSource(prob.seed + int64(restart)))
		best, score, expired, err := s.evolve(ctx, prob, layout, rng, cfg)
		if err != nil {
			return nil, err
		}
		partial = partial || expired
		restartBests = append(restartBests, score)
		if score > overallScore {
			overallScore = score
			overallBest = best
		}
		if expired {
			break
		}
	}

	fixedScore, fixedCost := prob.fixedObjective()
	score, cost := squadObjective(overallBest)
	return &solution{
		players:    append(append([]scoredPlayer{}, prob.fixed...), overallBest...),
		objective:  fixedScore + score,
		costT:      fixedCost + cost,
		confidence: stochasticConfidence(restartBests),
		partial:    partial,
	}, nil
}

func (s *geneticStrategy) evolve(ctx context.Context, prob *problem, layout []types.Position, rng *rand.Rand, cfg SearchConfig) ([]scoredPlayer, float64, bool, error) {
	population := make([][]scoredPlayer, cfg.PopulationSize)
	for i := range population {
		ind, err := randomIndividual(prob, layout, rng)
		if err != nil {
			return nil, 0, false, err
		}
		population[i] = ind
	}

	var best []scoredPlayer
	bestScore := -1.0
	evaluate := func(ind []scoredPlayer) float64 {
		score, _ := squadObjective(ind)
		if score > bestScore {
			bestScore = score
			best = append([]scoredPlayer{}, ind...)
		}
		return score
	}

	fitness := make([]float64, len(population))
	for i, ind := range population {
		fitness[i] = evaluate(ind)
	}

	for gen := 0; gen < cfg.Generations; gen++ {
		select {
		case <-ctx.Done():
			return best, bestScore, true, nil
		default:
		}

		next := make([][]scoredPlayer, 0, len(population))
		next = append(next, append([]scoredPlayer{}, best...)) // elitism

		for len(next) < len(population) {
			a := tournament(population, fitness, rng)
			b := tournament(population, fitness, rng)
			child := make([]scoredPlayer, len(layout))
			for i := range layout {
				if rng.Float64() < 0.5 {
					child[i] = a[i]
				} else {
					child[i] = b[i]
				}
			}
			if rng.Float64() < cfg.MutationRate {
				slot := rng.Intn(len(layout))
				pool := prob.byPosition[layout[slot]]
				child[slot] = pool[rng.Intn(len(pool))]
			}
			if !repair(prob, layout, child) {
				continue
			}
			next = append(next, child)
		}

		population = next
		for i, ind := range population {
			fitness[i] = evaluate(ind)
		}
	}

	return best, bestScore, false, nil
}

func tournament(population [][]scoredPlayer, fitness []float64, rng *rand.Rand) []scoredPlayer {
	best := rng.Intn(len(population))
	for i := 0; i < 2; i++ {
		c := rng.Intn(len(population))
		if fitness[c] > fitness[best] {
			best = c
		}
	}
	return population[best]
}

// annealingStrategy walks the feasible space with same-position single
// swaps, accepting downhill moves with a temperature-decayed
// probability.
type annealingStrategy struct {
	cfg SearchConfig
}

func (s *annealingStrategy) Name() types.Algorithm { return types.AlgorithmSimulatedAnnealing }

func (s *annealingStrategy) Solve(ctx context.Context, prob *problem) (*solution, error) {
	cfg := s.cfg.withDefaults()
	layout := slotLayout(prob)

	var overallBest []scoredPlayer
	overallScore := -1.0
	restartBests := make([]float64, 0, cfg.Restarts)
	partial := false

	for restart := 0; restart < cfg.Restarts; restart++ {
		rng := rand.New(rand.NewSource(prob.seed + int64(restart)))
		current, err := randomIndividual(prob, layout, rng)
		if err != nil {
			return nil, err
		}
		currentScore, _ := squadObjective(current)
		best := append([]scoredPlayer{}, current...)
		bestScore := currentScore

		temp := cfg.SAInitialTemp
		expired := false
		for iter := 0; iter < cfg.SAIterations; iter++ {
			if iter%256 == 0 {
				select {
				case <-ctx.Done():
					expired = true
				default:
				}
				if expired {
					break
				}
			}

			neighbor := append([]scoredPlayer{}, current...)
			slot := rng.Intn(len(layout))
			pool := prob.byPosition[layout[slot]]
			neighbor[slot] = pool[rng.Intn(len(pool))]
			if !repair(prob, layout, neighbor) {
				continue
			}

			neighborScore, _ := squadObjective(neighbor)
			delta := neighborScore - currentScore
			if delta >= 0 || rng.Float64() < math.Exp(delta/temp) {
				current = neighbor
				currentScore = neighborScore
				if currentScore > bestScore {
					bestScore = currentScore
					best = append(best[:0], current...)
				}
			}
			temp *= cfg.SACooling
		}

		partial = partial || expired
		restartBests = append(restartBests, bestScore)
		if bestScore > overallScore {
			overallScore = bestScore
			overallBest = best
		}
		if expired {
			break
		}
	}

	fixedScore, fixedCost := prob.fixedObjective()
	score, cost := squadObjective(overallBest)
	return &solution{
		players:    append(append([]scoredPlayer{}, prob.fixed...), overallBest...),
		objective:  fixedScore + score,
		costT:      fixedCost + cost,
		confidence: stochasticConfidence(restartBests),
		partial:    partial,
	}, nil
}
