package teamrecord

import "time"

// Record is the derived won-loss-tied aggregate for one team in one season.
// It is a pure function of the completed matchup set and is regenerated
// wholesale on every recompute, never patched in place.
type Record struct {
	TeamID             int64
	ConferenceID       int64
	SeasonID           int64
	Wins               int
	Losses             int
	Ties               int
	PointsFor          float64
	PointsAgainst      float64
	WinPct             float64
	ConferenceRank     int
	OverallRank        int
	PlayoffEligible    bool
	ConferenceChampion bool
	UpdatedAt          time.Time
}

// GamesPlayed is wins+losses+ties.
func (r Record) GamesPlayed() int {
	return r.Wins + r.Losses + r.Ties
}
