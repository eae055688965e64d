package usecase

import (
	"context"
	"fmt"
	"sort"

	"github.com/sourcegraph/conc"

	"github.com/dvail/conferencesync/internal/domain/conference"
	"github.com/dvail/conferencesync/internal/domain/matchup"
	"github.com/dvail/conferencesync/internal/domain/rosterlink"
	"github.com/dvail/conferencesync/internal/domain/team"
	"github.com/dvail/conferencesync/internal/platform/logging"
)

// ResolveContext is the season clock a resolution pass runs against.
type ResolveContext struct {
	SeasonYear  int
	CurrentYear int
	CurrentWeek int
}

// MatchupResolverService merges administrator-recorded matchup rows with the
// provider's live scoring snapshot into hybrid views, applying the override
// precedence rule per matchup.
type MatchupResolverService struct {
	matchupRepo   matchup.Repository
	teamRepo      team.Repository
	provider      ScoringProvider
	crossInterval int
	logger        *logging.Logger
}

// NewMatchupResolverService builds a resolver. crossInterval is the week
// interval at which conferences play across conference lines; zero disables
// the inter-conference marking entirely.
func NewMatchupResolverService(
	matchupRepo matchup.Repository,
	teamRepo team.Repository,
	provider ScoringProvider,
	crossInterval int,
	logger *logging.Logger,
) *MatchupResolverService {
	if logger == nil {
		logger = logging.Default()
	}
	return &MatchupResolverService{
		matchupRepo:   matchupRepo,
		teamRepo:      teamRepo,
		provider:      provider,
		crossInterval: crossInterval,
		logger:        logger,
	}
}

// ResolveWeek produces one hybrid matchup per pairing for the conference and
// week. A matchup that cannot be resolved (unmapped roster, missing data) is
// logged and skipped; only store failures and a provider failure with no
// database rows to fall back on are fatal.
func (s *MatchupResolverService) ResolveWeek(
	ctx context.Context,
	conf conference.Conference,
	week int,
	rc ResolveContext,
	lookup rosterlink.Lookup,
) ([]matchup.Hybrid, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchupResolverService.ResolveWeek")
	defer span.End()

	if week <= 0 {
		return nil, fmt.Errorf("%w: week must be positive, got %d", ErrInvalidInput, week)
	}

	records, err := s.matchupRepo.ListByConferenceWeek(ctx, conf.ID, week)
	if err != nil {
		return nil, fmt.Errorf("%w: list matchups conference=%d week=%d: %v", ErrStore, conf.ID, week, err)
	}

	snapshot, providerErr := s.fetchSnapshot(ctx, conf.ExternalLeagueID, week)
	if providerErr != nil {
		s.logger.WarnContext(ctx, "provider snapshot unavailable, resolving from database only",
			"conference_id", conf.ID,
			"week", week,
			"error", providerErr,
		)
	}

	// New or unconfigured conference: no internal rows for the week, so the
	// provider's own matchup grouping is the only source of pairings.
	if len(records) == 0 {
		if providerErr != nil {
			return nil, fmt.Errorf("%w: no matchup records and provider unavailable conference=%d week=%d: %v",
				ErrProvider, conf.ID, week, providerErr)
		}
		return s.resolveFromProviderGrouping(ctx, conf, week, rc, lookup, snapshot)
	}

	names, err := s.teamNames(ctx, records)
	if err != nil {
		return nil, err
	}

	resolved := make([]*matchup.Hybrid, len(records))
	var wg conc.WaitGroup
	for i, rec := range records {
		i, rec := i, rec
		wg.Go(func() {
			hybrid, err := s.resolveRecord(conf, week, rc, rec, lookup, names, snapshot, providerErr != nil)
			if err != nil {
				s.logger.WarnContext(ctx, "matchup resolution skipped",
					"matchup_id", rec.ID,
					"conference_id", conf.ID,
					"week", week,
					"error", err,
				)
				return
			}
			resolved[i] = hybrid
		})
	}
	wg.Wait()

	out := make([]matchup.Hybrid, 0, len(resolved))
	for _, hybrid := range resolved {
		if hybrid != nil {
			out = append(out, *hybrid)
		}
	}
	return out, nil
}

// resolveRecord applies the precedence rule to a single record. Override
// rows keep their recorded scores no matter what the provider says; rows
// without an override take the provider's totals, defaulting to zero when
// the provider has no entry for a roster.
func (s *MatchupResolverService) resolveRecord(
	conf conference.Conference,
	week int,
	rc ResolveContext,
	rec matchup.Record,
	lookup rosterlink.Lookup,
	names map[int64]string,
	snapshot map[string]ProviderMatchup,
	providerDown bool,
) (*matchup.Hybrid, error) {
	entryA, okA := lookup.ByTeam(rec.TeamAID)
	entryB, okB := lookup.ByTeam(rec.TeamBID)
	if !okA || !okB {
		return nil, fmt.Errorf("%w: matchup=%d has unmapped team (teamA=%d mapped=%t, teamB=%d mapped=%t)",
			ErrMapping, rec.ID, rec.TeamAID, okA, rec.TeamBID, okB)
	}

	snapA, hasSnapA := snapshot[entryA.ExternalRosterID]
	snapB, hasSnapB := snapshot[entryB.ExternalRosterID]

	sideA := buildSide(rec.TeamAID, names[rec.TeamAID], entryA.ExternalRosterID, snapA)
	sideB := buildSide(rec.TeamBID, names[rec.TeamBID], entryB.ExternalRosterID, snapB)

	source := matchup.SourceProvider
	if rec.ManualOverride {
		// Recorded scores are authoritative. Provider detail is display-only
		// and best-effort; an outage never fails an override matchup.
		sideA.Points = rec.TeamAScore
		sideB.Points = rec.TeamBScore
		source = matchup.SourceDatabase
		if hasSnapA || hasSnapB {
			source = matchup.SourceHybrid
		}
	} else if providerDown {
		return nil, fmt.Errorf("%w: matchup=%d needs provider scores but provider is unavailable", ErrProvider, rec.ID)
	}

	hasPoints := sideA.Points != 0 || sideB.Points != 0
	status := matchup.DeriveHybridStatus(week, rc.CurrentWeek, rc.SeasonYear, rc.CurrentYear, hasPoints)

	return &matchup.Hybrid{
		RecordID:        rec.ID,
		ConferenceID:    conf.ID,
		Week:            week,
		TeamA:           sideA,
		TeamB:           sideB,
		WinnerTeamID:    rec.WinnerTeamID,
		ManualOverride:  rec.ManualOverride,
		InterConference: matchup.IsInterConferenceWeek(week, s.crossInterval),
		DataSource:      source,
		Status:          status,
		Notes:           rec.Notes,
	}, nil
}

// resolveFromProviderGrouping pairs rosters by the provider-assigned matchup
// id. This is the only resolution path that does not require a pre-existing
// matchup record.
func (s *MatchupResolverService) resolveFromProviderGrouping(
	ctx context.Context,
	conf conference.Conference,
	week int,
	rc ResolveContext,
	lookup rosterlink.Lookup,
	snapshot map[string]ProviderMatchup,
) ([]matchup.Hybrid, error) {
	byMatchupID := make(map[int64][]ProviderMatchup)
	for _, row := range snapshot {
		byMatchupID[row.MatchupID] = append(byMatchupID[row.MatchupID], row)
	}

	matchupIDs := make([]int64, 0, len(byMatchupID))
	for matchupID := range byMatchupID {
		matchupIDs = append(matchupIDs, matchupID)
	}
	sort.Slice(matchupIDs, func(i, j int) bool { return matchupIDs[i] < matchupIDs[j] })

	out := make([]matchup.Hybrid, 0, len(matchupIDs))
	for _, matchupID := range matchupIDs {
		group := byMatchupID[matchupID]
		if len(group) != 2 {
			s.logger.WarnContext(ctx, "provider matchup group is not a pairing",
				"conference_id", conf.ID,
				"provider_matchup_id", matchupID,
				"roster_count", len(group),
			)
			continue
		}
		sort.Slice(group, func(i, j int) bool { return group[i].RosterID < group[j].RosterID })

		entryA, okA := lookup.ByRoster(group[0].RosterID)
		entryB, okB := lookup.ByRoster(group[1].RosterID)
		if !okA || !okB {
			s.logger.WarnContext(ctx, "provider pairing references unmapped roster",
				"conference_id", conf.ID,
				"provider_matchup_id", matchupID,
				"roster_a", group[0].RosterID,
				"roster_b", group[1].RosterID,
			)
			continue
		}

		nameA, nameB, err := s.pairNames(ctx, entryA.TeamID, entryB.TeamID)
		if err != nil {
			return nil, err
		}

		sideA := buildSide(entryA.TeamID, nameA, entryA.ExternalRosterID, group[0])
		sideB := buildSide(entryB.TeamID, nameB, entryB.ExternalRosterID, group[1])
		hasPoints := sideA.Points != 0 || sideB.Points != 0

		out = append(out, matchup.Hybrid{
			ConferenceID:    conf.ID,
			Week:            week,
			TeamA:           sideA,
			TeamB:           sideB,
			InterConference: matchup.IsInterConferenceWeek(week, s.crossInterval),
			DataSource:      matchup.SourceProvider,
			Status:          matchup.DeriveHybridStatus(week, rc.CurrentWeek, rc.SeasonYear, rc.CurrentYear, hasPoints),
		})
	}

	return out, nil
}

func (s *MatchupResolverService) fetchSnapshot(ctx context.Context, leagueID string, week int) (map[string]ProviderMatchup, error) {
	rows, err := s.provider.FetchMatchups(ctx, leagueID, week)
	if err != nil {
		return map[string]ProviderMatchup{}, err
	}

	snapshot := make(map[string]ProviderMatchup, len(rows))
	for _, row := range rows {
		snapshot[row.RosterID] = row
	}
	return snapshot, nil
}

func (s *MatchupResolverService) teamNames(ctx context.Context, records []matchup.Record) (map[int64]string, error) {
	seen := make(map[int64]struct{}, len(records)*2)
	ids := make([]int64, 0, len(records)*2)
	for _, rec := range records {
		for _, teamID := range []int64{rec.TeamAID, rec.TeamBID} {
			if _, ok := seen[teamID]; ok {
				continue
			}
			seen[teamID] = struct{}{}
			ids = append(ids, teamID)
		}
	}

	teams, err := s.teamRepo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("%w: list teams for resolution: %v", ErrStore, err)
	}

	names := make(map[int64]string, len(teams))
	for _, item := range teams {
		names[item.ID] = item.Name
	}
	return names, nil
}

func (s *MatchupResolverService) pairNames(ctx context.Context, teamAID, teamBID int64) (string, string, error) {
	teams, err := s.teamRepo.ListByIDs(ctx, []int64{teamAID, teamBID})
	if err != nil {
		return "", "", fmt.Errorf("%w: list teams for provider pairing: %v", ErrStore, err)
	}

	var nameA, nameB string
	for _, item := range teams {
		switch item.ID {
		case teamAID:
			nameA = item.Name
		case teamBID:
			nameB = item.Name
		}
	}
	return nameA, nameB, nil
}

func buildSide(teamID int64, name, externalRosterID string, snap ProviderMatchup) matchup.Side {
	side := matchup.Side{
		TeamID:           teamID,
		TeamName:         name,
		ExternalRosterID: externalRosterID,
		Points:           snap.Points,
		ProjectedPoints:  snap.ProjectedPoints,
		Starters:         snap.Starters,
		StarterPoints:    snap.StartersPoints,
		PlayerPoints:     snap.PlayersPoints,
	}
	if side.PlayerPoints == nil {
		side.PlayerPoints = map[string]float64{}
	}
	return side
}
