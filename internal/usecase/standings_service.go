package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/dvail/conferencesync/internal/domain/conference"
	"github.com/dvail/conferencesync/internal/domain/matchup"
	"github.com/dvail/conferencesync/internal/domain/teamrecord"
	"github.com/dvail/conferencesync/internal/platform/logging"
)

const defaultPlayoffSlots = 4

// StandingsService derives team records from completed matchups. Records are
// destroyed and regenerated wholesale per scope so that a recompute is
// idempotent and depends on nothing but the completed matchup set.
type StandingsService struct {
	matchupRepo  matchup.Repository
	recordRepo   teamrecord.Repository
	confRepo     conference.Repository
	mapper       *RosterMapService
	playoffSlots int
	logger       *logging.Logger
	now          func() time.Time
}

func NewStandingsService(
	matchupRepo matchup.Repository,
	recordRepo teamrecord.Repository,
	confRepo conference.Repository,
	mapper *RosterMapService,
	playoffSlots int,
	logger *logging.Logger,
) *StandingsService {
	if playoffSlots <= 0 {
		playoffSlots = defaultPlayoffSlots
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &StandingsService{
		matchupRepo:  matchupRepo,
		recordRepo:   recordRepo,
		confRepo:     confRepo,
		mapper:       mapper,
		playoffSlots: playoffSlots,
		logger:       logger,
		now:          time.Now,
	}
}

// Recompute regenerates the team records for a season, optionally narrowed
// to one conference (conferenceID 0 = all). Any load or write failure aborts
// the whole recompute for the scope.
func (s *StandingsService) Recompute(ctx context.Context, seasonID, conferenceID int64) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.StandingsService.Recompute")
	defer span.End()

	if seasonID <= 0 {
		return fmt.Errorf("%w: season id is required", ErrInvalidInput)
	}

	scope, err := s.scopeConferences(ctx, seasonID, conferenceID)
	if err != nil {
		return err
	}
	if len(scope) == 0 {
		return fmt.Errorf("%w: no active conferences for season=%d", ErrConfiguration, seasonID)
	}

	scopeIDs := make([]int64, 0, len(scope))
	for _, conf := range scope {
		scopeIDs = append(scopeIDs, conf.ID)
	}

	lookup, err := s.mapper.BuildLookup(ctx, scopeIDs...)
	if err != nil {
		return err
	}

	completed, err := s.matchupRepo.ListCompleteBySeason(ctx, seasonID, conferenceID)
	if err != nil {
		return fmt.Errorf("%w: list completed matchups season=%d: %v", ErrStore, seasonID, err)
	}

	updatedAt := s.now().UTC()
	byConference := make(map[int64][]teamrecord.Record, len(scope))
	for _, conf := range scope {
		accumulators := s.fold(conf.ID, lookup.TeamIDs(conf.ID), completed, seasonID, updatedAt)
		rankConference(accumulators, s.playoffSlots)
		byConference[conf.ID] = accumulators
	}

	for _, conf := range scope {
		if err := s.recordRepo.ReplaceScope(ctx, seasonID, conf.ID, byConference[conf.ID]); err != nil {
			return fmt.Errorf("%w: replace team records season=%d conference=%d: %v", ErrStore, seasonID, conf.ID, err)
		}
	}

	if err := s.assignOverallRanks(ctx, seasonID); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "standings recomputed",
		"season_id", seasonID,
		"conference_id", conferenceID,
		"conference_count", len(scope),
		"completed_matchups", len(completed),
	)
	return nil
}

// MarkConferenceChampions flags each conference's rank-1 team. This is a
// distinct operation callers invoke explicitly; Recompute never implies it.
func (s *StandingsService) MarkConferenceChampions(ctx context.Context, seasonID int64) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.StandingsService.MarkConferenceChampions")
	defer span.End()

	if seasonID <= 0 {
		return fmt.Errorf("%w: season id is required", ErrInvalidInput)
	}

	records, err := s.recordRepo.ListBySeason(ctx, seasonID, 0)
	if err != nil {
		return fmt.Errorf("%w: list team records season=%d: %v", ErrStore, seasonID, err)
	}

	champions := make([]int64, 0, 4)
	for _, rec := range records {
		if rec.ConferenceRank == 1 {
			champions = append(champions, rec.TeamID)
		}
	}
	sort.Slice(champions, func(i, j int) bool { return champions[i] < champions[j] })

	if err := s.recordRepo.SetConferenceChampions(ctx, seasonID, champions); err != nil {
		return fmt.Errorf("%w: set conference champions season=%d: %v", ErrStore, seasonID, err)
	}
	return nil
}

// ListBySeason returns the stored standings view.
func (s *StandingsService) ListBySeason(ctx context.Context, seasonID, conferenceID int64) ([]teamrecord.Record, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StandingsService.ListBySeason")
	defer span.End()

	if seasonID <= 0 {
		return nil, fmt.Errorf("%w: season id is required", ErrInvalidInput)
	}

	records, err := s.recordRepo.ListBySeason(ctx, seasonID, conferenceID)
	if err != nil {
		return nil, fmt.Errorf("%w: list team records season=%d: %v", ErrStore, seasonID, err)
	}
	return records, nil
}

func (s *StandingsService) scopeConferences(ctx context.Context, seasonID, conferenceID int64) ([]conference.Conference, error) {
	if conferenceID > 0 {
		conf, exists, err := s.confRepo.GetByID(ctx, conferenceID)
		if err != nil {
			return nil, fmt.Errorf("%w: get conference=%d: %v", ErrStore, conferenceID, err)
		}
		if !exists {
			return nil, fmt.Errorf("%w: conference=%d", ErrNotFound, conferenceID)
		}
		return []conference.Conference{conf}, nil
	}

	items, err := s.confRepo.ListActiveBySeason(ctx, seasonID)
	if err != nil {
		return nil, fmt.Errorf("%w: list conferences season=%d: %v", ErrStore, seasonID, err)
	}
	return items, nil
}

// fold accumulates every completed matchup into both participants' records.
// The stored winner field is trusted rather than re-derived from scores, so
// manually corrected winners survive recomputes.
func (s *StandingsService) fold(
	conferenceID int64,
	teamIDs []int64,
	completed []matchup.Record,
	seasonID int64,
	updatedAt time.Time,
) []teamrecord.Record {
	acc := make(map[int64]*teamrecord.Record, len(teamIDs))
	for _, teamID := range teamIDs {
		acc[teamID] = &teamrecord.Record{
			TeamID:       teamID,
			ConferenceID: conferenceID,
			SeasonID:     seasonID,
			UpdatedAt:    updatedAt,
		}
	}

	for _, rec := range completed {
		if rec.ConferenceID != conferenceID || rec.Status != matchup.StatusComplete {
			continue
		}
		a, okA := acc[rec.TeamAID]
		b, okB := acc[rec.TeamBID]
		if !okA || !okB {
			continue
		}

		a.PointsFor += rec.TeamAScore
		a.PointsAgainst += rec.TeamBScore
		b.PointsFor += rec.TeamBScore
		b.PointsAgainst += rec.TeamAScore

		switch {
		case rec.WinnerTeamID == nil:
			a.Ties++
			b.Ties++
		case *rec.WinnerTeamID == rec.TeamAID:
			a.Wins++
			b.Losses++
		case *rec.WinnerTeamID == rec.TeamBID:
			b.Wins++
			a.Losses++
		}
	}

	out := make([]teamrecord.Record, 0, len(acc))
	for _, rec := range acc {
		rec.WinPct = winPercentage(rec.Wins, rec.Losses, rec.Ties)
		out = append(out, *rec)
	}
	sortStandings(out)
	return out
}

func (s *StandingsService) assignOverallRanks(ctx context.Context, seasonID int64) error {
	all, err := s.recordRepo.ListBySeason(ctx, seasonID, 0)
	if err != nil {
		return fmt.Errorf("%w: list season records for overall ranking: %v", ErrStore, err)
	}

	sortStandings(all)
	for i := range all {
		all[i].OverallRank = i + 1
	}

	byConference := make(map[int64][]teamrecord.Record)
	for _, rec := range all {
		byConference[rec.ConferenceID] = append(byConference[rec.ConferenceID], rec)
	}
	for conferenceID, records := range byConference {
		if err := s.recordRepo.ReplaceScope(ctx, seasonID, conferenceID, records); err != nil {
			return fmt.Errorf("%w: persist overall ranks season=%d conference=%d: %v", ErrStore, seasonID, conferenceID, err)
		}
	}
	return nil
}

// winPercentage is wins over games played, defined as 0 when no games have
// been played.
func winPercentage(wins, losses, ties int) float64 {
	games := wins + losses + ties
	if games == 0 {
		return 0
	}
	return float64(wins) / float64(games)
}

// sortStandings orders by win percentage descending, points-for descending
// as the tie-break, then team id for determinism.
func sortStandings(records []teamrecord.Record) {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].WinPct != records[j].WinPct {
			return records[i].WinPct > records[j].WinPct
		}
		if records[i].PointsFor != records[j].PointsFor {
			return records[i].PointsFor > records[j].PointsFor
		}
		return records[i].TeamID < records[j].TeamID
	})
}

// rankConference assigns 1-based conference ranks and flags the top
// playoffSlots teams as playoff eligible. Records must already be sorted.
func rankConference(records []teamrecord.Record, playoffSlots int) {
	for i := range records {
		records[i].ConferenceRank = i + 1
		records[i].PlayoffEligible = i < playoffSlots
	}
}
