package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dvail/conferencesync/internal/domain/conference"
	"github.com/dvail/conferencesync/internal/domain/matchup"
	"github.com/dvail/conferencesync/internal/domain/rosterlink"
	"github.com/dvail/conferencesync/internal/domain/season"
	"github.com/dvail/conferencesync/internal/domain/syncrun"
	"github.com/dvail/conferencesync/internal/domain/teamrecord"
)

type schedulerFixture struct {
	service     *SchedulerService
	seasonRepo  *stubSeasonRepository
	matchupRepo *stubMatchupRepository
	recordRepo  *stubTeamRecordRepository
	stateRepo   *stubSyncStateRepository
	provider    *stubScoringProvider
}

func newSchedulerFixture(
	conferences []conference.Conference,
	links []rosterlink.Link,
	provider *stubScoringProvider,
	rows ...matchup.Record,
) *schedulerFixture {
	seasonRepo := &stubSeasonRepository{
		active: &season.Season{ID: 1, Year: 2025, CurrentWeek: 3, Active: true},
	}
	confRepo := &stubConferenceRepository{conferences: conferences}
	matchupRepo := newStubMatchupRepository(rows...)
	linkRepo := &stubRosterLinkRepository{links: links}
	recordRepo := newStubTeamRecordRepository()
	stateRepo := &stubSyncStateRepository{}

	mapper := NewRosterMapService(linkRepo, nil)
	standings := NewStandingsService(matchupRepo, recordRepo, confRepo, mapper, 4, nil)

	service := NewSchedulerService(
		seasonRepo,
		confRepo,
		matchupRepo,
		mapper,
		standings,
		provider,
		stateRepo,
		nil,
		SchedulerConfig{Workers: 2, HistoryLimit: 3},
		nil,
	)
	service.now = func() time.Time { return time.Date(2025, 9, 16, 9, 0, 0, 0, time.UTC) }

	return &schedulerFixture{
		service:     service,
		seasonRepo:  seasonRepo,
		matchupRepo: matchupRepo,
		recordRepo:  recordRepo,
		stateRepo:   stateRepo,
		provider:    provider,
	}
}

func singleConferenceFixture() *schedulerFixture {
	provider := &stubScoringProvider{
		matchupsByLeague: map[string][]ProviderMatchup{
			"10001": {
				{RosterID: "10", MatchupID: 1, Points: 101.5},
				{RosterID: "11", MatchupID: 1, Points: 97.2},
			},
		},
		clock: ProviderClock{Week: 3, SeasonYear: 2025},
	}
	return newSchedulerFixture(
		[]conference.Conference{
			{ID: 1, Name: "North", ExternalLeagueID: "10001", SeasonID: 1, Active: true},
		},
		[]rosterlink.Link{
			{TeamID: 1, ConferenceID: 1, ExternalRosterID: "10", Active: true},
			{TeamID: 2, ConferenceID: 1, ExternalRosterID: "11", Active: true},
		},
		provider,
		matchup.Record{ID: 5, ConferenceID: 1, Week: 3, TeamAID: 1, TeamBID: 2, Status: matchup.StatusPending},
	)
}

func TestSchedulerService_TriggerNow_FinalizesAndRecomputes(t *testing.T) {
	t.Parallel()

	fx := singleConferenceFixture()

	run, err := fx.service.TriggerNow(context.Background())
	if err != nil {
		t.Fatalf("TriggerNow error: %v", err)
	}
	if run.Outcome != syncrun.OutcomeSuccess {
		t.Fatalf("expected success, got %s (errors: %v)", run.Outcome, run.Errors)
	}
	if !run.Manual {
		t.Fatal("manual trigger must be marked manual")
	}
	if run.Progress.MatchupsFinalized != 1 || run.Progress.ConferencesProcessed != 1 {
		t.Fatalf("unexpected progress: %+v", run.Progress)
	}

	finalized, found, err := fx.matchupRepo.GetByID(context.Background(), 5)
	if err != nil || !found {
		t.Fatalf("load finalized matchup: found=%t err=%v", found, err)
	}
	if finalized.Status != matchup.StatusComplete {
		t.Fatalf("matchup not completed: %s", finalized.Status)
	}
	if finalized.TeamAScore != 101.5 || finalized.TeamBScore != 97.2 {
		t.Fatalf("provider scores not applied: %.1f / %.1f", finalized.TeamAScore, finalized.TeamBScore)
	}
	if finalized.WinnerTeamID == nil || *finalized.WinnerTeamID != 1 {
		t.Fatalf("winner not decided: %v", finalized.WinnerTeamID)
	}

	records, _ := fx.recordRepo.ListBySeason(context.Background(), 1, 1)
	byTeam := make(map[int64]teamrecord.Record, len(records))
	for _, rec := range records {
		byTeam[rec.TeamID] = rec
	}
	if byTeam[1].Wins != 1 || byTeam[2].Losses != 1 {
		t.Fatalf("standings not recomputed: %+v", records)
	}

	if !fx.stateRepo.saved {
		t.Fatal("run history was not persisted")
	}
	history := fx.service.History()
	if len(history) != 1 || history[0].ID != run.ID {
		t.Fatalf("unexpected history: %+v", history)
	}
}

func TestSchedulerService_TriggerNow_FrozenScoresKept(t *testing.T) {
	t.Parallel()

	fx := singleConferenceFixture()
	frozen := matchup.Record{
		ID: 5, ConferenceID: 1, Week: 3, TeamAID: 1, TeamBID: 2,
		TeamAScore: 80.0, TeamBScore: 90.0, ScoresFrozen: true, ManualOverride: true,
		Status: matchup.StatusPending,
	}
	if err := fx.matchupRepo.Update(context.Background(), frozen); err != nil {
		t.Fatalf("seed frozen matchup: %v", err)
	}

	run, err := fx.service.TriggerNow(context.Background())
	if err != nil {
		t.Fatalf("TriggerNow error: %v", err)
	}
	if run.Outcome != syncrun.OutcomeSuccess {
		t.Fatalf("expected success, got %s (%v)", run.Outcome, run.Errors)
	}

	finalized, _, _ := fx.matchupRepo.GetByID(context.Background(), 5)
	if finalized.TeamAScore != 80.0 || finalized.TeamBScore != 90.0 {
		t.Fatalf("frozen scores overwritten: %.1f / %.1f", finalized.TeamAScore, finalized.TeamBScore)
	}
	if finalized.WinnerTeamID == nil || *finalized.WinnerTeamID != 2 {
		t.Fatalf("winner should follow frozen scores: %v", finalized.WinnerTeamID)
	}
}

func TestSchedulerService_TriggerNow_ConferenceFailureIsolated(t *testing.T) {
	t.Parallel()

	provider := &stubScoringProvider{
		matchupsByLeague: map[string][]ProviderMatchup{
			"10001": {
				{RosterID: "10", MatchupID: 1, Points: 101.5},
				{RosterID: "11", MatchupID: 1, Points: 97.2},
			},
		},
		clock: ProviderClock{Week: 3, SeasonYear: 2025},
	}
	fx := newSchedulerFixture(
		[]conference.Conference{
			{ID: 1, Name: "North", ExternalLeagueID: "10001", SeasonID: 1, Active: true},
			{ID: 2, Name: "South", ExternalLeagueID: "10002", SeasonID: 1, Active: true},
		},
		[]rosterlink.Link{
			{TeamID: 1, ConferenceID: 1, ExternalRosterID: "10", Active: true},
			{TeamID: 2, ConferenceID: 1, ExternalRosterID: "11", Active: true},
			// South's links are all inactive, which is a mapping data error.
			{TeamID: 3, ConferenceID: 2, ExternalRosterID: "20", Active: false},
			{TeamID: 4, ConferenceID: 2, ExternalRosterID: "21", Active: false},
		},
		provider,
		matchup.Record{ID: 5, ConferenceID: 1, Week: 3, TeamAID: 1, TeamBID: 2, Status: matchup.StatusPending},
		matchup.Record{ID: 6, ConferenceID: 2, Week: 3, TeamAID: 3, TeamBID: 4, Status: matchup.StatusPending},
	)

	run, err := fx.service.TriggerNow(context.Background())
	if err != nil {
		t.Fatalf("TriggerNow error: %v", err)
	}
	if run.Outcome != syncrun.OutcomePartial {
		t.Fatalf("expected partial outcome, got %s (errors: %v)", run.Outcome, run.Errors)
	}
	if run.Progress.MatchupsFinalized != 1 {
		t.Fatalf("healthy conference should still finalize, got %d", run.Progress.MatchupsFinalized)
	}
	if len(run.Errors) == 0 {
		t.Fatal("broken conference should be recorded in run errors")
	}

	healthy, _, _ := fx.matchupRepo.GetByID(context.Background(), 5)
	if healthy.Status != matchup.StatusComplete {
		t.Fatalf("healthy conference matchup not finalized: %s", healthy.Status)
	}
	broken, _, _ := fx.matchupRepo.GetByID(context.Background(), 6)
	if broken.Status == matchup.StatusComplete {
		t.Fatal("broken conference matchup must stay pending")
	}
}

func TestSchedulerService_TriggerNow_NoActiveSeasonFails(t *testing.T) {
	t.Parallel()

	fx := singleConferenceFixture()
	fx.seasonRepo.active = nil

	run, err := fx.service.TriggerNow(context.Background())
	if err != nil {
		t.Fatalf("TriggerNow error: %v", err)
	}
	if run.Outcome != syncrun.OutcomeFailed || run.Status != syncrun.StatusFailed {
		t.Fatalf("expected failed run, got outcome=%s status=%s", run.Outcome, run.Status)
	}
	if len(run.Errors) != 1 {
		t.Fatalf("expected one configuration error, got %v", run.Errors)
	}
}

func TestSchedulerService_TriggerNow_RejectsConcurrentRun(t *testing.T) {
	t.Parallel()

	fx := singleConferenceFixture()
	fx.service.mu.Lock()
	fx.service.running = true
	fx.service.mu.Unlock()

	_, err := fx.service.TriggerNow(context.Background())
	if !errors.Is(err, ErrAlreadyRunning) {
		t.Fatalf("expected ErrAlreadyRunning, got %v", err)
	}
}

func TestSchedulerService_HistoryBounded(t *testing.T) {
	t.Parallel()

	fx := singleConferenceFixture()
	for i := 0; i < 5; i++ {
		if _, err := fx.service.TriggerNow(context.Background()); err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
	}

	history := fx.service.History()
	if len(history) != 3 {
		t.Fatalf("expected history capped at 3, got %d", len(history))
	}
}

func TestSchedulerService_RefreshSeasonClock(t *testing.T) {
	t.Parallel()

	fx := singleConferenceFixture()
	fx.provider.clock = ProviderClock{Week: 4, SeasonYear: 2025}
	fx.provider.matchupsByLeague = map[string][]ProviderMatchup{}

	if _, err := fx.service.TriggerNow(context.Background()); err != nil {
		t.Fatalf("TriggerNow error: %v", err)
	}

	if len(fx.seasonRepo.updates) != 1 || fx.seasonRepo.updates[0] != 4 {
		t.Fatalf("expected week persisted as 4, got %v", fx.seasonRepo.updates)
	}
}

func TestSchedulerService_UpdateSchedule(t *testing.T) {
	t.Parallel()

	fx := singleConferenceFixture()

	err := fx.service.UpdateSchedule(context.Background(), syncrun.Schedule{Weekday: 9})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for bad weekday, got %v", err)
	}

	schedule := syncrun.Schedule{Enabled: true, Weekday: time.Tuesday, Hour: 9, Minute: 0}
	if err := fx.service.UpdateSchedule(context.Background(), schedule); err != nil {
		t.Fatalf("UpdateSchedule error: %v", err)
	}
	defer fx.service.Stop()

	if got := fx.service.Schedule(); got != schedule {
		t.Fatalf("schedule not stored: %+v", got)
	}
	if !fx.stateRepo.saved {
		t.Fatal("schedule change not persisted")
	}

	status := fx.service.Status()
	if status.State != syncrun.StatusScheduled {
		t.Fatalf("expected scheduled state, got %s", status.State)
	}
	if status.NextRunAt == nil {
		t.Fatal("next run time missing")
	}
	want := time.Date(2025, 9, 23, 9, 0, 0, 0, time.UTC)
	if !status.NextRunAt.Equal(want) {
		t.Fatalf("next run at %v, want %v", status.NextRunAt, want)
	}
}

func TestSchedulerService_StartUsesDefaultScheduleWhenUnpersisted(t *testing.T) {
	t.Parallel()

	fx := singleConferenceFixture()
	fx.service.cfg.DefaultSchedule = syncrun.Schedule{Enabled: true, Weekday: time.Tuesday, Hour: 9}

	if err := fx.service.Start(context.Background()); err != nil {
		t.Fatalf("Start error: %v", err)
	}
	defer fx.service.Stop()

	if got := fx.service.Schedule(); !got.Enabled || got.Weekday != time.Tuesday {
		t.Fatalf("default schedule not applied: %+v", got)
	}
	if fx.service.Status().State != syncrun.StatusScheduled {
		t.Fatalf("expected scheduled state, got %s", fx.service.Status().State)
	}
}

func TestSchedulerService_SubscribeReceivesLatestSnapshot(t *testing.T) {
	t.Parallel()

	fx := singleConferenceFixture()
	ch, unsubscribe := fx.service.Subscribe()
	defer unsubscribe()

	run, err := fx.service.TriggerNow(context.Background())
	if err != nil {
		t.Fatalf("TriggerNow error: %v", err)
	}

	// The channel holds only the newest snapshot; after a finished run that
	// is the completed state with the run in history.
	select {
	case snapshot := <-ch:
		if snapshot.LastRun == nil || snapshot.LastRun.ID != run.ID {
			t.Fatalf("snapshot missing finished run: %+v", snapshot)
		}
	case <-time.After(time.Second):
		t.Fatal("no snapshot delivered")
	}
}
