package teamrecord

import "context"

type Repository interface {
	ListBySeason(ctx context.Context, seasonID int64, conferenceID int64) ([]Record, error)
	// ReplaceScope deletes and reinserts every record in the scope inside a
	// single transaction, so a recompute is all-or-nothing.
	ReplaceScope(ctx context.Context, seasonID int64, conferenceID int64, records []Record) error
	SetConferenceChampions(ctx context.Context, seasonID int64, championTeamIDs []int64) error
}
