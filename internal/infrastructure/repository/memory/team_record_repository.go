package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/dvail/conferencesync/internal/domain/teamrecord"
)

type recordKey struct {
	seasonID     int64
	conferenceID int64
	teamID       int64
}

type TeamRecordRepository struct {
	mu      sync.RWMutex
	records map[recordKey]teamrecord.Record
}

func NewTeamRecordRepository() *TeamRecordRepository {
	return &TeamRecordRepository{records: make(map[recordKey]teamrecord.Record)}
}

func (r *TeamRecordRepository) ListBySeason(_ context.Context, seasonID int64, conferenceID int64) ([]teamrecord.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]teamrecord.Record, 0, len(r.records))
	for key, item := range r.records {
		if key.seasonID != seasonID {
			continue
		}
		if conferenceID > 0 && key.conferenceID != conferenceID {
			continue
		}
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ConferenceID != out[j].ConferenceID {
			return out[i].ConferenceID < out[j].ConferenceID
		}
		if out[i].ConferenceRank != out[j].ConferenceRank {
			return out[i].ConferenceRank < out[j].ConferenceRank
		}
		return out[i].TeamID < out[j].TeamID
	})
	return out, nil
}

func (r *TeamRecordRepository) ReplaceScope(_ context.Context, seasonID int64, conferenceID int64, records []teamrecord.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for key := range r.records {
		if key.seasonID != seasonID {
			continue
		}
		if conferenceID > 0 && key.conferenceID != conferenceID {
			continue
		}
		delete(r.records, key)
	}
	for _, item := range records {
		key := recordKey{seasonID: item.SeasonID, conferenceID: item.ConferenceID, teamID: item.TeamID}
		r.records[key] = item
	}
	return nil
}

func (r *TeamRecordRepository) SetConferenceChampions(_ context.Context, seasonID int64, championTeamIDs []int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	champions := make(map[int64]struct{}, len(championTeamIDs))
	for _, teamID := range championTeamIDs {
		champions[teamID] = struct{}{}
	}
	for key, item := range r.records {
		if key.seasonID != seasonID {
			continue
		}
		_, isChampion := champions[key.teamID]
		item.ConferenceChampion = isChampion
		r.records[key] = item
	}
	return nil
}
