package postgres

import (
	"time"

	"github.com/dvail/conferencesync/internal/domain/teamrecord"
)

type teamRecordTableModel struct {
	TeamID             int64      `db:"team_id"`
	ConferenceID       int64      `db:"conference_id"`
	SeasonID           int64      `db:"season_id"`
	Wins               int        `db:"wins"`
	Losses             int        `db:"losses"`
	Ties               int        `db:"ties"`
	PointsFor          float64    `db:"points_for"`
	PointsAgainst      float64    `db:"points_against"`
	WinPct             float64    `db:"win_pct"`
	ConferenceRank     int        `db:"conference_rank"`
	OverallRank        int        `db:"overall_rank"`
	PlayoffEligible    bool       `db:"playoff_eligible"`
	ConferenceChampion bool       `db:"conference_champion"`
	UpdatedAt          time.Time  `db:"updated_at"`
	DeletedAt          *time.Time `db:"deleted_at"`
}

type teamRecordInsertModel struct {
	TeamID             int64     `db:"team_id"`
	ConferenceID       int64     `db:"conference_id"`
	SeasonID           int64     `db:"season_id"`
	Wins               int       `db:"wins"`
	Losses             int       `db:"losses"`
	Ties               int       `db:"ties"`
	PointsFor          float64   `db:"points_for"`
	PointsAgainst      float64   `db:"points_against"`
	WinPct             float64   `db:"win_pct"`
	ConferenceRank     int       `db:"conference_rank"`
	OverallRank        int       `db:"overall_rank"`
	PlayoffEligible    bool      `db:"playoff_eligible"`
	ConferenceChampion bool      `db:"conference_champion"`
	UpdatedAt          time.Time `db:"updated_at"`
}

func mapTeamRecordRow(row teamRecordTableModel) teamrecord.Record {
	return teamrecord.Record{
		TeamID:             row.TeamID,
		ConferenceID:       row.ConferenceID,
		SeasonID:           row.SeasonID,
		Wins:               row.Wins,
		Losses:             row.Losses,
		Ties:               row.Ties,
		PointsFor:          row.PointsFor,
		PointsAgainst:      row.PointsAgainst,
		WinPct:             row.WinPct,
		ConferenceRank:     row.ConferenceRank,
		OverallRank:        row.OverallRank,
		PlayoffEligible:    row.PlayoffEligible,
		ConferenceChampion: row.ConferenceChampion,
		UpdatedAt:          row.UpdatedAt,
	}
}
