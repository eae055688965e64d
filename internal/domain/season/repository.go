package season

import "context"

type Repository interface {
	GetActive(ctx context.Context) (Season, bool, error)
	GetByID(ctx context.Context, seasonID int64) (Season, bool, error)
	UpdateCurrentWeek(ctx context.Context, seasonID int64, week int) error
}
