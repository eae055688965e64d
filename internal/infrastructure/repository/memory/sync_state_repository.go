package memory

import (
	"context"
	"sync"

	"github.com/dvail/conferencesync/internal/domain/syncrun"
)

type SyncStateRepository struct {
	mu    sync.RWMutex
	state syncrun.State
	saved bool
}

func NewSyncStateRepository() *SyncStateRepository {
	return &SyncStateRepository{}
}

func (r *SyncStateRepository) Load(_ context.Context) (syncrun.State, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if !r.saved {
		return syncrun.State{}, false, nil
	}
	out := r.state
	out.Runs = append([]syncrun.Run(nil), r.state.Runs...)
	return out, true, nil
}

func (r *SyncStateRepository) Save(_ context.Context, state syncrun.State) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.state = state
	r.state.Runs = append([]syncrun.Run(nil), state.Runs...)
	r.saved = true
	return nil
}
