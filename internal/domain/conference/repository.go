package conference

import "context"

type Repository interface {
	ListActiveBySeason(ctx context.Context, seasonID int64) ([]Conference, error)
	GetByID(ctx context.Context, conferenceID int64) (Conference, bool, error)
}
