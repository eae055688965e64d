package postgres

import "time"

type teamTableModel struct {
	ID              int64     `db:"id"`
	Name            string    `db:"name"`
	OwnerName       string    `db:"owner_name"`
	OwnerExternalID string    `db:"owner_external_id"`
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`
}
