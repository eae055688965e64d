package memory

import (
	"context"
	"sync"

	"github.com/dvail/conferencesync/internal/domain/season"
)

type SeasonRepository struct {
	mu      sync.RWMutex
	seasons map[int64]season.Season
}

func NewSeasonRepository(seasons []season.Season) *SeasonRepository {
	byID := make(map[int64]season.Season, len(seasons))
	for _, item := range seasons {
		byID[item.ID] = item
	}
	return &SeasonRepository{seasons: byID}
}

func (r *SeasonRepository) GetActive(_ context.Context) (season.Season, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var best season.Season
	found := false
	for _, item := range r.seasons {
		if !item.Active {
			continue
		}
		if !found || item.Year > best.Year {
			best = item
			found = true
		}
	}
	return best, found, nil
}

func (r *SeasonRepository) GetByID(_ context.Context, seasonID int64) (season.Season, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.seasons[seasonID]
	return item, ok, nil
}

func (r *SeasonRepository) UpdateCurrentWeek(_ context.Context, seasonID int64, week int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.seasons[seasonID]
	if !ok {
		return nil
	}
	item.CurrentWeek = week
	r.seasons[seasonID] = item
	return nil
}
