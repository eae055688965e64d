package matchup

import "context"

type Repository interface {
	ListByConferenceWeek(ctx context.Context, conferenceID int64, week int) ([]Record, error)
	ListPendingByConferenceWeek(ctx context.Context, conferenceID int64, week int) ([]Record, error)
	ListCompleteBySeason(ctx context.Context, seasonID int64, conferenceID int64) ([]Record, error)
	GetByID(ctx context.Context, matchupID int64) (Record, bool, error)
	Update(ctx context.Context, record Record) error
}
