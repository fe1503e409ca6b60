package planner

import (
	"context"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/nickbutler25/FPLOptimizer/internal/logger"
	"github.com/nickbutler25/FPLOptimizer/internal/optimizer"
	"github.com/nickbutler25/FPLOptimizer/internal/types"
)

// Transfer economics. Every transfer beyond the banked free allowance
// costs TransferPenalty points; unused free transfers roll over up to
// MaxFreeTransfers.
const (
	TransferPenalty  = 4
	MaxFreeTransfers = 5
)

// Config tunes the beam search. Zero values fall back to defaults.
type Config struct {
	BeamWidth             int // states kept per gameweek
	MaxTransfersPerWeek   int // hard cap on moves in one week
	CandidatesPerPosition int // incoming candidates considered per position
}

func (c Config) withDefaults() Config {
	if c.BeamWidth == 0 {
		c.BeamWidth = 12
	}
	if c.MaxTransfersPerWeek == 0 {
		c.MaxTransfersPerWeek = 3
	}
	if c.CandidatesPerPosition == 0 {
		c.CandidatesPerPosition = 8
	}
	return c
}

// Request describes the current roster and the planning horizon.
// DiscountFactor weights week t (1-based) by DiscountFactor^(t-1);
// CurrentGameweek labels the first planned week in the output.
type Request struct {
	Roster          []types.RosterEntry `json:"roster"`
	Bank            float64             `json:"bank"`
	CurrentGameweek int                 `json:"current_gameweek"`
	NumGameweeks    int                 `json:"num_gameweeks"`
	FreeTransfers   int                 `json:"free_transfers"`
	DiscountFactor  float64             `json:"discount_factor"`
}

// Planner produces multi-gameweek transfer plans.
type Planner struct {
	cfg Config
	log *logrus.Logger
}

func New(cfg Config) *Planner {
	return &Planner{cfg: cfg.withDefaults(), log: logger.Get()}
}

// state is one node of the beam: a roster with its bank, banked free
// transfers and the plan that produced it.
type state struct {
	roster []types.RosterEntry
	bankT  int
	free   int
	value  float64 // discounted points net of penalty points
	paid   int     // raw penalty points
	weeks  []types.WeeklySolution
}

func (s *state) key(week int) string {
	ids := make([]int, len(s.roster))
	for i, e := range s.roster {
		ids[i] = e.Player.ID
	}
	sort.Ints(ids)
	var b []byte
	b = strconv.AppendInt(b, int64(week), 10)
	b = append(b, '|')
	for _, id := range ids {
		b = strconv.AppendInt(b, int64(id), 10)
		b = append(b, ',')
	}
	b = append(b, '|')
	b = strconv.AppendInt(b, int64(s.bankT), 10)
	b = append(b, '|')
	b = strconv.AppendInt(b, int64(s.free), 10)
	return string(b)
}

// move is one candidate swap considered during a week.
type move struct {
	out  types.RosterEntry
	in   types.Player
	gain float64 // expected-point gain this week
}

// Plan searches transfer sequences over the horizon and returns the
// best plan found. A deadline context bounds the search; on expiry the
// remaining weeks are filled with no-transfer weeks and the plan is
// marked partial. Infeasible input comes back with status "error".
func (p *Planner) Plan(ctx context.Context, pool []types.Player, req Request) *types.TransferPlan {
	start := time.Now()
	log := logger.WithPlanner(uuid.New().String(), req.NumGameweeks)

	if len(req.Roster) < types.SquadSize || len(req.Roster) > types.MaxRosterSize {
		return errorPlan(req, "roster must have between "+strconv.Itoa(types.SquadSize)+
			" and "+strconv.Itoa(types.MaxRosterSize)+" players")
	}
	if req.NumGameweeks <= 0 {
		return errorPlan(req, "planning horizon must be at least one gameweek")
	}
	gamma := req.DiscountFactor
	if gamma <= 0 || gamma > 1 {
		return errorPlan(req, "discount factor must be in (0, 1]")
	}
	if req.FreeTransfers < 0 {
		return errorPlan(req, "free transfers cannot be negative")
	}
	free := req.FreeTransfers
	if free > MaxFreeTransfers {
		free = MaxFreeTransfers
	}
	baseGW := req.CurrentGameweek

	candidates := p.buildCandidates(pool, req.Roster, req.NumGameweeks)

	baseline := 0.0
	for week := 0; week < req.NumGameweeks; week++ {
		baseline += math.Pow(gamma, float64(week)) * rosterPoints(req.Roster, week)
	}

	initial := &state{
		roster: append([]types.RosterEntry{}, req.Roster...),
		bankT:  types.Tenths(req.Bank),
		free:   free,
	}
	beam := []*state{initial}
	seen := make(map[string]bool)
	partial := false

	for week := 0; week < req.NumGameweeks; week++ {
		select {
		case <-ctx.Done():
			partial = true
		default:
		}
		if partial {
			for _, s := range beam {
				p.extendNoTransfer(s, week, req.NumGameweeks, baseGW, gamma)
			}
			break
		}

		var next []*state
		for _, s := range beam {
			for _, child := range p.expand(s, week, baseGW, gamma, candidates) {
				k := child.key(week + 1)
				if seen[k] {
					continue
				}
				seen[k] = true
				next = append(next, child)
			}
		}
		if len(next) == 0 {
			// Every successor collided with a seen state; hold instead.
			for _, s := range beam {
				next = append(next, p.applyMoves(s, week, baseGW, gamma, nil))
			}
		}
		sort.SliceStable(next, func(i, j int) bool { return next[i].value > next[j].value })
		if len(next) > p.cfg.BeamWidth {
			next = next[:p.cfg.BeamWidth]
		}
		beam = next
	}

	sort.SliceStable(beam, func(i, j int) bool { return beam[i].value > beam[j].value })
	best := beam[0]

	plan := &types.TransferPlan{
		Status:                types.StatusSuccess,
		Partial:               partial,
		CurrentGameweek:       req.CurrentGameweek,
		WeeklySolutions:       best.weeks,
		TotalExpectedPoints:   best.value,
		TotalTransferCost:     best.paid,
		CurrentExpectedPoints: baseline,
		Improvement:           best.value - baseline,
	}
	if partial {
		plan.Status = types.StatusPartial
	}

	log.WithFields(logrus.Fields{
		"improvement":   plan.Improvement,
		"transfer_cost": plan.TotalTransferCost,
		"duration_ms":   time.Since(start).Milliseconds(),
	}).Info("Transfer plan complete")
	return plan
}

func errorPlan(req Request, msg string) *types.TransferPlan {
	return &types.TransferPlan{
		Status:          types.StatusError,
		CurrentGameweek: req.CurrentGameweek,
		Error:           msg,
	}
}

// extendNoTransfer appends hold weeks from week to the horizon end.
func (p *Planner) extendNoTransfer(s *state, from, horizon, baseGW int, gamma float64) {
	for week := from; week < horizon; week++ {
		pts := rosterPoints(s.roster, week)
		discount := math.Pow(gamma, float64(week))
		s.value += discount * pts
		remaining := s.free
		s.free = rollFree(s.free, 0)
		s.weeks = append(s.weeks, types.WeeklySolution{
			Gameweek:               baseGW + week,
			TransfersIn:            []types.TransferredPlayer{},
			TransfersOut:           []types.TransferredPlayer{},
			ExpectedPoints:         pts,
			FreeTransfersRemaining: remaining,
		})
	}
}

// expand generates the successor states of s for one week: the hold
// state plus the best transfer combinations up to the per-week cap.
// Unavailable players are forced out before any discretionary move.
func (p *Planner) expand(s *state, week, baseGW int, gamma float64, candidates map[types.Position][]types.Player) []*state {
	var children []*state
	forced := forcedOut(s.roster)

	if len(forced) == 0 {
		children = append(children, p.applyMoves(s, week, baseGW, gamma, nil))
	}

	// Breadth-limited move composition: extend each kept combination
	// with one more swap until the weekly cap.
	combos := [][]move{nil}
	for depth := 0; depth < p.cfg.MaxTransfersPerWeek; depth++ {
		var extended [][]move
		for _, combo := range combos {
			roster := rosterAfter(s.roster, combo)
			bankT := bankAfter(s.bankT, combo)
			for _, m := range p.singleMoves(roster, bankT, week, forced, len(combo), candidates) {
				extended = append(extended, append(append([]move{}, combo...), m))
			}
		}
		sort.SliceStable(extended, func(i, j int) bool {
			return comboGain(extended[i]) > comboGain(extended[j])
		})
		if len(extended) > p.cfg.BeamWidth {
			extended = extended[:p.cfg.BeamWidth]
		}
		for _, combo := range extended {
			if len(combo) >= len(forced) {
				children = append(children, p.applyMoves(s, week, baseGW, gamma, combo))
			}
		}
		combos = extended
		if len(combos) == 0 {
			break
		}
	}

	if len(children) == 0 {
		// Forced players could not all be moved; hold and carry on.
		children = append(children, p.applyMoves(s, week, baseGW, gamma, nil))
	}
	return children
}

func comboGain(combo []move) float64 {
	total := 0.0
	for _, m := range combo {
		total += m.gain
	}
	return total
}

// singleMoves lists the legal single swaps on a roster. While forced
// outs remain unmet by the combination so far, only those outs are
// considered.
func (p *Planner) singleMoves(roster []types.RosterEntry, bankT, week int, forced []int, made int, candidates map[types.Position][]types.Player) []move {
	inRoster := make(map[int]bool, len(roster))
	teamCount := make(map[string]int)
	for _, e := range roster {
		inRoster[e.Player.ID] = true
		teamCount[e.Player.Team]++
	}
	forcedSet := make(map[int]bool, len(forced))
	for _, id := range forced {
		forcedSet[id] = true
	}
	forcedPending := len(forced) > made

	var moves []move
	for _, out := range roster {
		if forcedPending && !forcedSet[out.Player.ID] {
			continue
		}
		sellT := out.SellingPriceTenths()
		for _, in := range candidates[out.Player.Position] {
			if inRoster[in.ID] {
				continue
			}
			if bankT+sellT-in.CostTenths() < 0 {
				continue
			}
			sameTeam := teamCount[in.Team]
			if out.Player.Team == in.Team {
				sameTeam--
			}
			if sameTeam >= types.DefaultMaxPlayersPerTeam {
				continue
			}
			gain := in.ExpectedPointsAt(week) - out.Player.ExpectedPointsAt(week)
			if !forcedSet[out.Player.ID] && gain <= 0 {
				continue
			}
			moves = append(moves, move{out: out, in: in, gain: gain})
		}
	}
	sort.SliceStable(moves, func(i, j int) bool {
		if moves[i].gain != moves[j].gain {
			return moves[i].gain > moves[j].gain
		}
		return moves[i].in.ID < moves[j].in.ID
	})
	if len(moves) > p.cfg.BeamWidth {
		moves = moves[:p.cfg.BeamWidth]
	}
	return moves
}

// applyMoves produces the successor state after executing a move
// combination for one week and banking the free-transfer rollover.
// FreeTransfersRemaining reports the allowance left after this week's
// moves; the +1 accrual is internal state for the following week.
func (p *Planner) applyMoves(s *state, week, baseGW int, gamma float64, combo []move) *state {
	roster := rosterAfter(s.roster, combo)
	bankT := bankAfter(s.bankT, combo)

	made := len(combo)
	freeUsed := made
	if freeUsed > s.free {
		freeUsed = s.free
	}
	paid := (made - freeUsed) * TransferPenalty
	nextFree := rollFree(s.free, made)

	pts := rosterPoints(roster, week)
	discount := math.Pow(gamma, float64(week))

	transfersIn := make([]types.TransferredPlayer, 0, made)
	transfersOut := make([]types.TransferredPlayer, 0, made)
	for _, m := range combo {
		transfersIn = append(transfersIn, types.TransferredPlayer{
			PlayerID:   m.in.ID,
			PlayerName: m.in.Name,
			Position:   m.in.Position,
			Cost:       m.in.Cost,
		})
		transfersOut = append(transfersOut, types.TransferredPlayer{
			PlayerID:   m.out.Player.ID,
			PlayerName: m.out.Player.Name,
			Position:   m.out.Player.Position,
			Cost:       m.out.SellingPrice(),
		})
	}

	child := &state{
		roster: roster,
		bankT:  bankT,
		free:   nextFree,
		value:  s.value + discount*(pts-float64(paid)),
		paid:   s.paid + paid,
		weeks: append(append([]types.WeeklySolution{}, s.weeks...), types.WeeklySolution{
			Gameweek:               baseGW + week,
			TransfersIn:            transfersIn,
			TransfersOut:           transfersOut,
			ExpectedPoints:         pts,
			TransferCost:           paid,
			FreeTransfersUsed:      freeUsed,
			FreeTransfersRemaining: s.free - freeUsed,
		}),
	}
	return child
}

// rollFree is the free-transfer evolution: unused allowance carries
// over, one new transfer accrues, capped at MaxFreeTransfers.
func rollFree(free, made int) int {
	left := free - made
	if left < 0 {
		left = 0
	}
	next := left + 1
	if next > MaxFreeTransfers {
		next = MaxFreeTransfers
	}
	return next
}

func rosterAfter(roster []types.RosterEntry, combo []move) []types.RosterEntry {
	out := make(map[int]types.Player, len(combo))
	for _, m := range combo {
		out[m.out.Player.ID] = m.in
	}
	next := make([]types.RosterEntry, len(roster))
	for i, e := range roster {
		if in, ok := out[e.Player.ID]; ok {
			next[i] = types.RosterEntry{Player: in, PurchasePrice: in.Cost}
			continue
		}
		next[i] = e
	}
	return next
}

func bankAfter(bankT int, combo []move) int {
	for _, m := range combo {
		bankT += m.out.SellingPriceTenths() - m.in.CostTenths()
	}
	return bankT
}

// forcedOut lists roster players who cannot be fielded and must be
// transferred out at the first opportunity.
func forcedOut(roster []types.RosterEntry) []int {
	var ids []int
	for _, e := range roster {
		if !e.Player.Available() {
			ids = append(ids, e.Player.ID)
		}
	}
	return ids
}

// rosterPoints is the roster's expected points for a week. Rosters
// larger than a starting eleven are reduced to their best lineup.
func rosterPoints(roster []types.RosterEntry, week int) float64 {
	if len(roster) > types.SquadSize {
		if squad, err := optimizer.SelectStartingXI(roster, week); err == nil {
			return squad.TotalPoints
		}
	}
	total := 0.0
	for _, e := range roster {
		total += e.Player.ExpectedPointsAt(week)
	}
	return total
}

// buildCandidates picks the strongest incoming players per position:
// the union of the top performers by horizon points and by points per
// cost, available players only.
func (p *Planner) buildCandidates(pool []types.Player, roster []types.RosterEntry, horizon int) map[types.Position][]types.Player {
	horizonPoints := func(pl types.Player) float64 {
		total := 0.0
		for week := 0; week < horizon; week++ {
			total += pl.ExpectedPointsAt(week)
		}
		return total
	}

	byPos := make(map[types.Position][]types.Player, 4)
	for _, pl := range pool {
		if !pl.Available() {
			continue
		}
		byPos[pl.Position] = append(byPos[pl.Position], pl)
	}

	candidates := make(map[types.Position][]types.Player, 4)
	for pos, players := range byPos {
		byTotal := append([]types.Player{}, players...)
		sort.SliceStable(byTotal, func(i, j int) bool {
			pi, pj := horizonPoints(byTotal[i]), horizonPoints(byTotal[j])
			if pi != pj {
				return pi > pj
			}
			return byTotal[i].ID < byTotal[j].ID
		})
		byValue := append([]types.Player{}, players...)
		sort.SliceStable(byValue, func(i, j int) bool {
			vi := horizonPoints(byValue[i]) / math.Max(byValue[i].Cost, 0.1)
			vj := horizonPoints(byValue[j]) / math.Max(byValue[j].Cost, 0.1)
			if vi != vj {
				return vi > vj
			}
			return byValue[i].ID < byValue[j].ID
		})

		picked := make(map[int]bool)
		var merged []types.Player
		take := func(players []types.Player) {
			n := 0
			for _, pl := range players {
				if n >= p.cfg.CandidatesPerPosition {
					break
				}
				if picked[pl.ID] {
					continue
				}
				picked[pl.ID] = true
				merged = append(merged, pl)
				n++
			}
		}
		take(byTotal)
		take(byValue)
		candidates[pos] = merged
	}
	return candidates
}
