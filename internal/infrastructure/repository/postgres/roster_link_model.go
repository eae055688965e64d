package postgres

import "time"

type rosterLinkTableModel struct {
	ID               int64     `db:"id"`
	TeamID           int64     `db:"team_id"`
	ConferenceID     int64     `db:"conference_id"`
	ExternalRosterID string    `db:"external_roster_id"`
	Active           bool      `db:"active"`
	CreatedAt        time.Time `db:"created_at"`
	UpdatedAt        time.Time `db:"updated_at"`
}
