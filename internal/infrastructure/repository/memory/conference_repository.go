package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/dvail/conferencesync/internal/domain/conference"
)

type ConferenceRepository struct {
	mu          sync.RWMutex
	conferences map[int64]conference.Conference
}

func NewConferenceRepository(conferences []conference.Conference) *ConferenceRepository {
	byID := make(map[int64]conference.Conference, len(conferences))
	for _, item := range conferences {
		byID[item.ID] = item
	}
	return &ConferenceRepository{conferences: byID}
}

func (r *ConferenceRepository) ListActiveBySeason(_ context.Context, seasonID int64) ([]conference.Conference, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]conference.Conference, 0, len(r.conferences))
	for _, item := range r.conferences {
		if item.SeasonID == seasonID && item.Active {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *ConferenceRepository) GetByID(_ context.Context, conferenceID int64) (conference.Conference, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.conferences[conferenceID]
	return item, ok, nil
}
