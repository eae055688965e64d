package postgres

import "time"

type seasonTableModel struct {
	ID          int64     `db:"id"`
	Year        int       `db:"year"`
	CurrentWeek int       `db:"current_week"`
	Active      bool      `db:"active"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}
