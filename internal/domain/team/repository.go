package team

import "context"

type Repository interface {
	ListByIDs(ctx context.Context, teamIDs []int64) ([]Team, error)
	GetByID(ctx context.Context, teamID int64) (Team, bool, error)
}
