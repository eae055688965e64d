package rosterlink

import "context"

type Repository interface {
	// List returns every link (active or not) for the given conferences.
	// An empty slice of ids means all conferences. Callers that need only
	// the active subset filter themselves; returning inactive rows lets
	// the mapper tell "conference has no teams yet" apart from
	// "conference has teams but no active links".
	List(ctx context.Context, conferenceIDs []int64) ([]Link, error)
}
