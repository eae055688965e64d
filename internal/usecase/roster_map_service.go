package usecase

import (
	"context"
	"fmt"

	"github.com/dvail/conferencesync/internal/domain/rosterlink"
	"github.com/dvail/conferencesync/internal/platform/logging"
)

// RosterMapService materializes the team/conference/roster junction into the
// bidirectional lookup the resolver and calculator share. The lookup is
// built once per sync pass and passed by reference, never rebuilt per
// matchup.
type RosterMapService struct {
	linkRepo rosterlink.Repository
	logger   *logging.Logger
}

func NewRosterMapService(linkRepo rosterlink.Repository, logger *logging.Logger) *RosterMapService {
	if logger == nil {
		logger = logging.Default()
	}
	return &RosterMapService{
		linkRepo: linkRepo,
		logger:   logger,
	}
}

// BuildLookup indexes active links for the given conferences (none = all).
// A conference with no links at all is valid and contributes nothing; a
// conference whose links are all inactive, or with duplicate active links
// for one team or roster, is a data error. Callers must check lookup size
// before assuming failure.
func (s *RosterMapService) BuildLookup(ctx context.Context, conferenceIDs ...int64) (rosterlink.Lookup, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RosterMapService.BuildLookup")
	defer span.End()

	links, err := s.linkRepo.List(ctx, conferenceIDs)
	if err != nil {
		return nil, fmt.Errorf("%w: list roster links: %v", ErrStore, err)
	}

	activeByConference := make(map[int64]int)
	totalByConference := make(map[int64]int)
	lookup := make(rosterlink.Lookup, len(links)*2)

	for _, link := range links {
		totalByConference[link.ConferenceID]++
		if !link.Active {
			continue
		}
		activeByConference[link.ConferenceID]++

		entry := rosterlink.Entry{
			TeamID:           link.TeamID,
			ExternalRosterID: link.ExternalRosterID,
			ConferenceID:     link.ConferenceID,
		}

		teamKey := rosterlink.TeamKey(link.TeamID)
		if existing, ok := lookup[teamKey]; ok {
			return nil, fmt.Errorf(
				"%w: duplicate active link for team=%d (conferences %d and %d)",
				ErrMapping, link.TeamID, existing.ConferenceID, link.ConferenceID,
			)
		}

		rosterKey := rosterlink.RosterKey(link.ExternalRosterID)
		if existing, ok := lookup[rosterKey]; ok {
			return nil, fmt.Errorf(
				"%w: external roster %q linked to both team=%d and team=%d",
				ErrMapping, link.ExternalRosterID, existing.TeamID, link.TeamID,
			)
		}

		lookup[teamKey] = entry
		lookup[rosterKey] = entry
	}

	for _, conferenceID := range conferenceIDs {
		if totalByConference[conferenceID] > 0 && activeByConference[conferenceID] == 0 {
			return nil, fmt.Errorf(
				"%w: conference=%d has %d roster links but none active",
				ErrMapping, conferenceID, totalByConference[conferenceID],
			)
		}
	}

	s.logger.DebugContext(ctx, "roster lookup built",
		"conference_count", len(conferenceIDs),
		"entry_count", len(lookup)/2,
	)
	return lookup, nil
}
