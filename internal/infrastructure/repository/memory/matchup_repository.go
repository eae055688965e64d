package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/dvail/conferencesync/internal/domain/matchup"
)

type MatchupRepository struct {
	mu       sync.RWMutex
	matchups map[int64]matchup.Record
	// seasonByConference mirrors the conference table's season scoping so
	// season-wide listings work without a conference repository reference.
	seasonByConference map[int64]int64
}

func NewMatchupRepository(records []matchup.Record, seasonByConference map[int64]int64) *MatchupRepository {
	byID := make(map[int64]matchup.Record, len(records))
	for _, item := range records {
		byID[item.ID] = item
	}
	scope := make(map[int64]int64, len(seasonByConference))
	for conferenceID, seasonID := range seasonByConference {
		scope[conferenceID] = seasonID
	}
	return &MatchupRepository{matchups: byID, seasonByConference: scope}
}

func (r *MatchupRepository) ListByConferenceWeek(_ context.Context, conferenceID int64, week int) ([]matchup.Record, error) {
	return r.filter(func(item matchup.Record) bool {
		return item.ConferenceID == conferenceID && item.Week == week
	}), nil
}

func (r *MatchupRepository) ListPendingByConferenceWeek(_ context.Context, conferenceID int64, week int) ([]matchup.Record, error) {
	return r.filter(func(item matchup.Record) bool {
		return item.ConferenceID == conferenceID && item.Week == week && item.Status != matchup.StatusComplete
	}), nil
}

func (r *MatchupRepository) ListCompleteBySeason(_ context.Context, seasonID int64, conferenceID int64) ([]matchup.Record, error) {
	return r.filter(func(item matchup.Record) bool {
		if item.Status != matchup.StatusComplete {
			return false
		}
		if conferenceID > 0 && item.ConferenceID != conferenceID {
			return false
		}
		return r.seasonByConference[item.ConferenceID] == seasonID
	}), nil
}

func (r *MatchupRepository) GetByID(_ context.Context, matchupID int64) (matchup.Record, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.matchups[matchupID]
	return item, ok, nil
}

func (r *MatchupRepository) Update(_ context.Context, record matchup.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.matchups[record.ID] = record
	return nil
}

func (r *MatchupRepository) filter(keep func(matchup.Record) bool) []matchup.Record {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]matchup.Record, 0, len(r.matchups))
	for _, item := range r.matchups {
		if keep(item) {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Week != out[j].Week {
			return out[i].Week < out[j].Week
		}
		return out[i].ID < out[j].ID
	})
	return out
}
