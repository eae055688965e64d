package postgres

import (
	"database/sql"
	"time"

	"github.com/dvail/conferencesync/internal/domain/matchup"
)

type matchupTableModel struct {
	ID             int64         `db:"id"`
	ConferenceID   int64         `db:"conference_id"`
	Week           int           `db:"week"`
	TeamAID        int64         `db:"team_a_id"`
	TeamBID        int64         `db:"team_b_id"`
	TeamAScore     float64       `db:"team_a_score"`
	TeamBScore     float64       `db:"team_b_score"`
	WinnerTeamID   sql.NullInt64 `db:"winner_team_id"`
	ManualOverride bool          `db:"manual_override"`
	ScoresFrozen   bool          `db:"scores_frozen"`
	Status         string        `db:"status"`
	Notes          string        `db:"notes"`
	CreatedAt      time.Time     `db:"created_at"`
	UpdatedAt      time.Time     `db:"updated_at"`
}

func mapMatchupRow(row matchupTableModel) matchup.Record {
	return matchup.Record{
		ID:             row.ID,
		ConferenceID:   row.ConferenceID,
		Week:           row.Week,
		TeamAID:        row.TeamAID,
		TeamBID:        row.TeamBID,
		TeamAScore:     row.TeamAScore,
		TeamBScore:     row.TeamBScore,
		WinnerTeamID:   nullInt64ToPtr(row.WinnerTeamID),
		ManualOverride: row.ManualOverride,
		ScoresFrozen:   row.ScoresFrozen,
		Status:         matchup.Status(row.Status),
		Notes:          row.Notes,
	}
}
