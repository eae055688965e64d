package memory

import (
	"context"
	"sync"

	"github.com/dvail/conferencesync/internal/domain/rosterlink"
)

type RosterLinkRepository struct {
	mu    sync.RWMutex
	links []rosterlink.Link
}

func NewRosterLinkRepository(links []rosterlink.Link) *RosterLinkRepository {
	return &RosterLinkRepository{links: append([]rosterlink.Link(nil), links...)}
}

func (r *RosterLinkRepository) List(_ context.Context, conferenceIDs []int64) ([]rosterlink.Link, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(conferenceIDs) == 0 {
		return append([]rosterlink.Link(nil), r.links...), nil
	}

	wanted := make(map[int64]struct{}, len(conferenceIDs))
	for _, conferenceID := range conferenceIDs {
		wanted[conferenceID] = struct{}{}
	}
	out := make([]rosterlink.Link, 0, len(r.links))
	for _, item := range r.links {
		if _, ok := wanted[item.ConferenceID]; ok {
			out = append(out, item)
		}
	}
	return out, nil
}

// Upsert replaces the link for (team, conference) or appends a new one.
func (r *RosterLinkRepository) Upsert(_ context.Context, link rosterlink.Link) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for idx := range r.links {
		if r.links[idx].TeamID == link.TeamID && r.links[idx].ConferenceID == link.ConferenceID {
			r.links[idx] = link
			return nil
		}
	}
	r.links = append(r.links, link)
	return nil
}
