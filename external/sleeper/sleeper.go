// Package sleeper talks to the public Sleeper fantasy API. The API is
// read-only and unauthenticated; responses for slow-moving resources (league
// state, users) are cached to stay well inside the published rate limits.
package sleeper

import "strconv"

type matchupRow struct {
	RosterID     int                `json:"roster_id"`
	MatchupID    int64              `json:"matchup_id"`
	Points       float64            `json:"points"`
	CustomPoints *float64           `json:"custom_points"`
	Starters     []string           `json:"starters"`
	StartersPts  []float64          `json:"starters_points"`
	PlayersPts   map[string]float64 `json:"players_points"`
}

type rosterRow struct {
	RosterID int      `json:"roster_id"`
	OwnerID  string   `json:"owner_id"`
	Players  []string `json:"players"`
	Starters []string `json:"starters"`
	Settings struct {
		Wins           int `json:"wins"`
		Losses         int `json:"losses"`
		Ties           int `json:"ties"`
		FPTS           int `json:"fpts"`
		FPTSDecimal    int `json:"fpts_decimal"`
		FPTSAgainst    int `json:"fpts_against"`
		FPTSAgainstDec int `json:"fpts_against_decimal"`
	} `json:"settings"`
}

type userRow struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	Metadata    struct {
		TeamName string `json:"team_name"`
	} `json:"metadata"`
}

type stateRow struct {
	Week       int    `json:"week"`
	Season     string `json:"season"`
	SeasonType string `json:"season_type"`
}

func rosterKey(rosterID int) string {
	return strconv.Itoa(rosterID)
}

// settingsPoints reassembles Sleeper's split integer/decimal points fields.
func settingsPoints(whole, decimal int) float64 {
	return float64(whole) + float64(decimal)/100
}
