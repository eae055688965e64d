package syncrun

import "context"

// Repository persists the scheduler state blob. Implementations serialize
// State as a single value under a fixed name.
type Repository interface {
	Load(ctx context.Context) (State, bool, error)
	Save(ctx context.Context, state State) error
}
