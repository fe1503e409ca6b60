package fpl

import "encoding/json"

// Raw wire shapes of the official FPL endpoints. Numeric-looking
// strings (form, selected_by_percent, points_per_game) stay strings on
// the wire; mapping converts them.

type bootstrapResponse struct {
	Events   []Event   `json:"events"`
	Teams    []Team    `json:"teams"`
	Elements []Element `json:"elements"`
}

// Event is one gameweek.
type Event struct {
	ID        int  `json:"id"`
	IsCurrent bool `json:"is_current"`
	IsNext    bool `json:"is_next"`
	Finished  bool `json:"finished"`
}

// Team is one club, with its strength ratings.
type Team struct {
	ID                  int    `json:"id"`
	Name                string `json:"name"`
	ShortName           string `json:"short_name"`
	Strength            int    `json:"strength"`
	StrengthOverallHome int    `json:"strength_overall_home"`
	StrengthOverallAway int    `json:"strength_overall_away"`
}

// Element is one player as served by bootstrap-static.
type Element struct {
	ID                       int     `json:"id"`
	FirstName                string  `json:"first_name"`
	SecondName               string  `json:"second_name"`
	WebName                  string  `json:"web_name"`
	Team                     int     `json:"team"`
	ElementType              int     `json:"element_type"`
	NowCost                  int     `json:"now_cost"`
	TotalPoints              int     `json:"total_points"`
	Form                     string  `json:"form"`
	PointsPerGame            string  `json:"points_per_game"`
	SelectedByPercent        string  `json:"selected_by_percent"`
	Minutes                  int     `json:"minutes"`
	GoalsScored              int     `json:"goals_scored"`
	Assists                  int     `json:"assists"`
	CleanSheets              int     `json:"clean_sheets"`
	Bonus                    int     `json:"bonus"`
	ICTIndex                 string  `json:"ict_index"`
	Status                   string  `json:"status"`
	News                     string  `json:"news"`
	ChanceOfPlayingNextRound *int    `json:"chance_of_playing_next_round"`
	CostChangeStart          int     `json:"cost_change_start"`
	EPNext                   *string `json:"ep_next"`
}

// Fixture is one scheduled match.
type Fixture struct {
	ID              int    `json:"id"`
	Event           *int   `json:"event"`
	TeamH           int    `json:"team_h"`
	TeamA           int    `json:"team_a"`
	TeamHDifficulty int    `json:"team_h_difficulty"`
	TeamADifficulty int    `json:"team_a_difficulty"`
	KickoffTime     string `json:"kickoff_time"`
	Finished        bool   `json:"finished"`
}

// picksResponse is the entry/{id}/event/{gw}/picks payload.
type picksResponse struct {
	Picks        []Pick       `json:"picks"`
	EntryHistory entryHistory `json:"entry_history"`
}

// Pick is one rostered player in a manager's squad.
type Pick struct {
	Element       int  `json:"element"`
	Position      int  `json:"position"`
	Multiplier    int  `json:"multiplier"`
	IsCaptain     bool `json:"is_captain"`
	IsViceCaptain bool `json:"is_vice_captain"`
}

type entryHistory struct {
	Bank  int `json:"bank"`
	Value int `json:"value"`
}

// transfersResponse entries carry the purchase price of each holding.
type transferEntry struct {
	ElementIn      int             `json:"element_in"`
	ElementInCost  int             `json:"element_in_cost"`
	ElementOut     int             `json:"element_out"`
	ElementOutCost int             `json:"element_out_cost"`
	Event          json.RawMessage `json:"event"`
}
