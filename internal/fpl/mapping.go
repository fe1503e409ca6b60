package fpl

import (
	"strconv"
	"strings"

	"github.com/nickbutler25/FPLOptimizer/internal/types"
)

// Projection factor weights. Each factor is centered on 1.0, so a
// player with neutral form, fixtures and minutes projects at their
// points-per-game.
const (
	weightForm        = 0.25
	weightFixture     = 0.20
	weightHomeAway    = 0.10
	weightMinutes     = 0.15
	weightUnderlying  = 0.20
	weightTeamForm    = 0.10
	neutralDifficulty = 3.0
)

// mapPlayers converts the raw bootstrap elements into the engine's
// player model, projecting expected points over the next horizon
// gameweeks from the fixture list.
func mapPlayers(bootstrap *bootstrapResponse, fixtures []Fixture, horizon int) []types.Player {
	teams := make(map[int]Team, len(bootstrap.Teams))
	for _, t := range bootstrap.Teams {
		teams[t.ID] = t
	}
	nextEvent := nextGameweek(bootstrap.Events)
	teamFixtures := indexFixtures(fixtures, nextEvent, horizon)
	maxMinutes := playedMinutesCeiling(bootstrap.Events)
	avgStrength := averageStrength(bootstrap.Teams)

	players := make([]types.Player, 0, len(bootstrap.Elements))
	for _, el := range bootstrap.Elements {
		team := teams[el.Team]
		p := types.Player{
			ID:                el.ID,
			Name:              strings.TrimSpace(el.FirstName + " " + el.SecondName),
			WebName:           el.WebName,
			Team:              team.ShortName,
			Position:          elementPosition(el.ElementType),
			Cost:              types.FromTenths(el.NowCost),
			TotalPoints:       el.TotalPoints,
			Form:              parseFloat(el.Form),
			SelectedByPercent: parseFloat(el.SelectedByPercent),
			Minutes:           el.Minutes,
			GoalsScored:       el.GoalsScored,
			Assists:           el.Assists,
			CleanSheets:       el.CleanSheets,
			Bonus:             el.Bonus,
			InjuryStatus:      injuryStatus(el),
			News:              el.News,
		}
		p.ExpectedPoints = projectPoints(el, team, teamFixtures[el.Team], horizon, maxMinutes, avgStrength)
		p.FixtureDifficulty = averageDifficulty(teamFixtures[el.Team])
		players = append(players, p)
	}
	return players
}

func elementPosition(elementType int) types.Position {
	switch elementType {
	case 1:
		return types.PositionGKP
	case 2:
		return types.PositionDEF
	case 3:
		return types.PositionMID
	case 4:
		return types.PositionFWD
	}
	return types.PositionMID
}

// injuryStatus derives availability from the FPL status flag and the
// chance-of-playing percentage.
func injuryStatus(el Element) types.InjuryStatus {
	switch el.Status {
	case "i":
		return types.StatusInjured
	case "s":
		return types.StatusSuspended
	case "u", "n":
		return types.StatusUnavailable
	case "d":
		return types.StatusDoubtful
	}
	if el.ChanceOfPlayingNextRound != nil && *el.ChanceOfPlayingNextRound < 75 {
		return types.StatusDoubtful
	}
	return types.StatusAvailable
}

// weekFixture is one team fixture in a forecast week. A blank week has
// none; a double gameweek has two.
type weekFixture struct {
	difficulty int
	home       bool
	opponent   int
}

// indexFixtures groups upcoming fixtures by team and forecast-week
// offset (0 = next gameweek).
func indexFixtures(fixtures []Fixture, nextEvent, horizon int) map[int][][]weekFixture {
	byTeam := make(map[int][][]weekFixture)
	ensure := func(team int) [][]weekFixture {
		if _, ok := byTeam[team]; !ok {
			byTeam[team] = make([][]weekFixture, horizon)
		}
		return byTeam[team]
	}
	for _, f := range fixtures {
		if f.Event == nil || f.Finished {
			continue
		}
		offset := *f.Event - nextEvent
		if offset < 0 || offset >= horizon {
			continue
		}
		h := ensure(f.TeamH)
		h[offset] = append(h[offset], weekFixture{difficulty: f.TeamHDifficulty, home: true, opponent: f.TeamA})
		a := ensure(f.TeamA)
		a[offset] = append(a[offset], weekFixture{difficulty: f.TeamADifficulty, home: false, opponent: f.TeamH})
	}
	return byTeam
}

// projectPoints builds the per-week expected-points forecast as a
// weighted blend of form, fixture difficulty, venue, expected minutes,
// underlying involvement and team strength, scaled by points per game.
// Blank weeks project zero; double gameweeks sum both fixtures.
func projectPoints(el Element, team Team, weeks [][]weekFixture, horizon, maxMinutes int, avgStrength float64) []float64 {
	ppg := parseFloat(el.PointsPerGame)
	if ppg == 0 {
		ppg = parseFloat(el.Form)
	}

	formFactor := clamp(safeDiv(parseFloat(el.Form), ppg), 0.5, 1.5)
	minutesFactor := clamp(safeDiv(float64(el.Minutes), float64(maxMinutes)), 0.2, 1.0)
	underlyingFactor := clamp(parseFloat(el.ICTIndex)/100.0, 0.5, 1.5)
	teamFormFactor := clamp(float64(team.Strength)/avgStrength, 0.7, 1.3)

	points := make([]float64, horizon)
	for week := 0; week < horizon; week++ {
		if week >= len(weeks) || len(weeks[week]) == 0 {
			continue // blank gameweek
		}
		for _, fixture := range weeks[week] {
			fixtureFactor := 1 + (neutralDifficulty-float64(fixture.difficulty))*0.15
			homeFactor := 0.95
			if fixture.home {
				homeFactor = 1.05
			}
			blend := weightForm*formFactor +
				weightFixture*fixtureFactor +
				weightHomeAway*homeFactor +
				weightMinutes*minutesFactor +
				weightUnderlying*underlyingFactor +
				weightTeamForm*teamFormFactor
			points[week] += ppg * blend
		}
	}
	return points
}

func averageDifficulty(weeks [][]weekFixture) float64 {
	total, count := 0.0, 0
	for _, week := range weeks {
		for _, fixture := range week {
			total += float64(fixture.difficulty)
			count++
		}
	}
	if count == 0 {
		return neutralDifficulty
	}
	return total / float64(count)
}

func nextGameweek(events []Event) int {
	for _, ev := range events {
		if ev.IsNext {
			return ev.ID
		}
	}
	for _, ev := range events {
		if ev.IsCurrent {
			return ev.ID
		}
	}
	return 1
}

// playedMinutesCeiling is the maximum minutes a player could have
// accrued so far, for normalizing expected minutes.
func playedMinutesCeiling(events []Event) int {
	played := 0
	for _, ev := range events {
		if ev.Finished {
			played++
		}
	}
	if played == 0 {
		played = 1
	}
	return played * 90
}

func averageStrength(teams []Team) float64 {
	if len(teams) == 0 {
		return 3
	}
	total := 0.0
	for _, t := range teams {
		total += float64(t.Strength)
	}
	return total / float64(len(teams))
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}

func safeDiv(a, b float64) float64 {
	if b == 0 {
		return 1
	}
	return a / b
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
