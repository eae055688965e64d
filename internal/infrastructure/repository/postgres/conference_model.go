package postgres

import "time"

type conferenceTableModel struct {
	ID               int64     `db:"id"`
	Name             string    `db:"name"`
	ExternalLeagueID string    `db:"external_league_id"`
	SeasonID         int64     `db:"season_id"`
	Active           bool      `db:"active"`
	CreatedAt        time.Time `db:"created_at"`
	UpdatedAt        time.Time `db:"updated_at"`
}
