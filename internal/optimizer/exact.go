package optimizer

import (
	"context"
	"sort"

	"github.com/nickbutler25/FPLOptimizer/internal/types"
)

const scoreEpsilon = 1e-9

// exactStrategy solves the selection problem to proven optimality with
// depth-first branch and bound over binary inclusion decisions. Within
// each position candidates are taken in increasing index order, which
// removes permutation-equivalent branches; an admissible score bound
// and a minimum-remaining-cost bound prune the rest. Results are fully
// deterministic: identical inputs yield an identical squad.
type exactStrategy struct{}

func (s *exactStrategy) Name() types.Algorithm { return types.AlgorithmLinearProgramming }

type exactSearch struct {
	prob      *problem
	positions []types.Position
	pools     [][]scoredPlayer
	need      []int
	laterBest []float64 // laterBest[i]: top-need score sum of positions after i
	laterCost []int     // laterCost[i]: cheapest fill cost of positions after i

	best      []scoredPlayer
	bestScore float64
	bestCost  int

	chosen    []scoredPlayer
	teamCount map[string]int
	nodes     int
	expired   bool
	ctx       context.Context
}

func (s *exactStrategy) Solve(ctx context.Context, prob *problem) (*solution, error) {
	search := &exactSearch{
		prob:      prob,
		teamCount: make(map[string]int, len(prob.teamCount)),
		bestScore: -1,
		ctx:       ctx,
	}
	for team, n := range prob.teamCount {
		search.teamCount[team] = n
	}
	for _, pos := range types.Positions {
		if prob.need[pos] > 0 {
			search.positions = append(search.positions, pos)
			search.pools = append(search.pools, prob.byPosition[pos])
			search.need = append(search.need, prob.need[pos])
		}
	}
	search.precomputeBounds()
	search.descend(0, 0, search.needCopy(), prob.budgetT, 0)

	if search.bestScore < 0 {
		return nil, &infeasibleError{reason: "no squad satisfies the team limit within budget"}
	}

	fixedScore, fixedCost := prob.fixedObjective()
	players := append(append([]scoredPlayer{}, prob.fixed...), search.best...)
	confidence := 1.0
	if search.expired {
		confidence = 0.9
	}
	return &solution{
		players:    players,
		objective:  fixedScore + search.bestScore,
		costT:      fixedCost + search.bestCost,
		confidence: confidence,
		partial:    search.expired,
	}, nil
}

func (e *exactSearch) needCopy() []int {
	need := make([]int, len(e.need))
	copy(need, e.need)
	return need
}

// precomputeBounds fills laterBest/laterCost: for every position index,
// the best achievable score and cheapest possible cost of all positions
// after it, used for pruning without rescanning pools.
func (e *exactSearch) precomputeBounds() {
	n := len(e.positions)
	e.laterBest = make([]float64, n+1)
	e.laterCost = make([]int, n+1)
	for i := n - 1; i >= 0; i-- {
		top := 0.0
		for j := 0; j < e.need[i] && j < len(e.pools[i]); j++ {
			top += e.pools[i][j].score
		}
		costs := make([]int, len(e.pools[i]))
		for j, sp := range e.pools[i] {
			costs[j] = sp.costT
		}
		sort.Ints(costs)
		cheap := 0
		for j := 0; j < e.need[i] && j < len(costs); j++ {
			cheap += costs[j]
		}
		e.laterBest[i] = e.laterBest[i+1] + top
		e.laterCost[i] = e.laterCost[i+1] + cheap
	}
}

// descend fills position posIdx starting at candidate idx.
func (e *exactSearch) descend(posIdx, idx int, need []int, budgetT int, score float64) {
	e.nodes++
	if e.nodes%1024 == 0 {
		select {
		case <-e.ctx.Done():
			e.expired = true
		default:
		}
	}
	if e.expired {
		return
	}

	if posIdx == len(e.positions) {
		cost := e.prob.budgetT - budgetT
		if e.better(score, cost) {
			e.best = append(e.best[:0], e.chosen...)
			e.bestScore = score
			e.bestCost = cost
		}
		return
	}

	if need[posIdx] == 0 {
		e.descend(posIdx+1, 0, need, budgetT, score)
		return
	}

	pool := e.pools[posIdx]
	remaining := need[posIdx]
	if len(pool)-idx < remaining {
		return
	}

	// Score bound: the best this branch can reach is the next
	// `remaining` candidates here plus the unconstrained best of every
	// later position.
	bound := score + e.laterBest[posIdx+1]
	for j := idx; j < idx+remaining && j < len(pool); j++ {
		bound += pool[j].score
	}
	if bound < e.bestScore-scoreEpsilon {
		return
	}

	for i := idx; i <= len(pool)-remaining; i++ {
		sp := pool[i]
		if sp.costT > budgetT-e.laterCost[posIdx+1] {
			continue
		}
		if e.teamCount[sp.Team] >= e.prob.teamCap {
			continue
		}

		e.chosen = append(e.chosen, sp)
		e.teamCount[sp.Team]++
		need[posIdx]--

		if need[posIdx] == 0 {
			e.descend(posIdx+1, 0, need, budgetT-sp.costT, score+sp.score)
		} else {
			e.descend(posIdx, i+1, need, budgetT-sp.costT, score+sp.score)
		}

		need[posIdx]++
		e.teamCount[sp.Team]--
		e.chosen = e.chosen[:len(e.chosen)-1]

		if e.expired {
			return
		}
	}
}

// better applies the deterministic tie-break order: higher score, then
// lower cost, then the lexicographically smaller sorted id set.
func (e *exactSearch) better(score float64, cost int) bool {
	if score > e.bestScore+scoreEpsilon {
		return true
	}
	if score < e.bestScore-scoreEpsilon {
		return false
	}
	if cost != e.bestCost {
		return cost < e.bestCost
	}
	return lessIDs(e.chosen, e.best)
}

// lessIDs compares two selections by their sorted player-id sequences.
func lessIDs(a, b []scoredPlayer) bool {
	ai := sortedIDs(a)
	bi := sortedIDs(b)
	for i := 0; i < len(ai) && i < len(bi); i++ {
		if ai[i] != bi[i] {
			return ai[i] < bi[i]
		}
	}
	return len(ai) < len(bi)
}

func sortedIDs(players []scoredPlayer) []int {
	ids := make([]int, len(players))
	for i, sp := range players {
		ids[i] = sp.ID
	}
	sort.Ints(ids)
	return ids
}
