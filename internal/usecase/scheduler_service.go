package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/dvail/conferencesync/internal/domain/conference"
	"github.com/dvail/conferencesync/internal/domain/matchup"
	"github.com/dvail/conferencesync/internal/domain/rosterlink"
	"github.com/dvail/conferencesync/internal/domain/season"
	"github.com/dvail/conferencesync/internal/domain/syncrun"
	"github.com/dvail/conferencesync/internal/platform/id"
	"github.com/dvail/conferencesync/internal/platform/logging"
)

type SchedulerConfig struct {
	Workers      int
	HistoryLimit int
	// RetryBackoff is the delay before retrying after a run-level
	// configuration failure, instead of waiting a full week.
	RetryBackoff time.Duration
	// RestartDelay separates a finished run from the recomputation of the
	// next occurrence.
	RestartDelay time.Duration
	// DefaultSchedule seeds the recurrence rule on first boot, before any
	// schedule has been persisted. Ignored once state exists.
	DefaultSchedule syncrun.Schedule
}

func (c SchedulerConfig) normalized() SchedulerConfig {
	if c.Workers <= 0 {
		c.Workers = 4
	}
	if c.HistoryLimit <= 0 {
		c.HistoryLimit = 20
	}
	if c.RetryBackoff <= 0 {
		c.RetryBackoff = 5 * time.Minute
	}
	if c.RestartDelay <= 0 {
		c.RestartDelay = 5 * time.Second
	}
	return c
}

// StatusSnapshot is what subscribers receive after every state change.
type StatusSnapshot struct {
	State     syncrun.RunStatus `json:"state"`
	NextRunAt *time.Time        `json:"next_run_at,omitempty"`
	Current   *syncrun.Run      `json:"current,omitempty"`
	LastRun   *syncrun.Run      `json:"last_run,omitempty"`
}

// SchedulerService drives the weekly synchronization pipeline: it computes
// the next occurrence of the recurrence rule, executes the resolver and
// calculator across all active conferences, keeps a bounded run history, and
// publishes status changes to subscribers. At most one run is in flight at a
// time; a run cannot be cancelled once started.
type SchedulerService struct {
	seasonRepo  season.Repository
	confRepo    conference.Repository
	matchupRepo matchup.Repository
	mapper      *RosterMapService
	standings   *StandingsService
	provider    ScoringProvider
	stateRepo   syncrun.Repository
	idGen       id.Generator
	cfg         SchedulerConfig
	logger      *logging.Logger
	now         func() time.Time

	mu          sync.Mutex
	state       syncrun.State
	status      syncrun.RunStatus
	current     *syncrun.Run
	nextRunAt   time.Time
	timer       *time.Timer
	running     bool
	stopped     bool
	subscribers map[int64]chan StatusSnapshot
	nextSubID   int64
}

func NewSchedulerService(
	seasonRepo season.Repository,
	confRepo conference.Repository,
	matchupRepo matchup.Repository,
	mapper *RosterMapService,
	standings *StandingsService,
	provider ScoringProvider,
	stateRepo syncrun.Repository,
	idGen id.Generator,
	cfg SchedulerConfig,
	logger *logging.Logger,
) *SchedulerService {
	if idGen == nil {
		idGen = id.NewRandomGenerator()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &SchedulerService{
		seasonRepo:  seasonRepo,
		confRepo:    confRepo,
		matchupRepo: matchupRepo,
		mapper:      mapper,
		standings:   standings,
		provider:    provider,
		stateRepo:   stateRepo,
		idGen:       idGen,
		cfg:         cfg.normalized(),
		logger:      logger,
		now:         time.Now,
		status:      syncrun.StatusIdle,
		subscribers: make(map[int64]chan StatusSnapshot),
	}
}

// Start reloads persisted schedule state and arms the timer when the
// recurrence rule is enabled.
func (s *SchedulerService) Start(ctx context.Context) error {
	state, found, err := s.stateRepo.Load(ctx)
	if err != nil {
		return fmt.Errorf("%w: load scheduler state: %v", ErrStore, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if found {
		s.state = state
	} else if err := s.cfg.DefaultSchedule.Validate(); err == nil {
		s.state.Schedule = s.cfg.DefaultSchedule
	}
	if s.state.Schedule.Enabled {
		s.scheduleNextLocked(s.state.Schedule.NextOccurrence(s.now()))
	} else {
		s.status = syncrun.StatusIdle
	}
	s.publishLocked()
	return nil
}

// Stop cancels any pending timer and closes subscriber channels. In-flight
// runs finish on their own; mid-run cancellation is deliberately absent.
func (s *SchedulerService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopped = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	for subID, ch := range s.subscribers {
		close(ch)
		delete(s.subscribers, subID)
	}
	s.status = syncrun.StatusIdle
	s.nextRunAt = time.Time{}
}

// UpdateSchedule replaces the recurrence rule. Disabling cancels any pending
// timer and forces the state to idle.
func (s *SchedulerService) UpdateSchedule(ctx context.Context, schedule syncrun.Schedule) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.SchedulerService.UpdateSchedule")
	defer span.End()

	if err := schedule.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	s.mu.Lock()
	s.state.Schedule = schedule
	if schedule.Enabled {
		s.scheduleNextLocked(schedule.NextOccurrence(s.now()))
	} else {
		if s.timer != nil {
			s.timer.Stop()
			s.timer = nil
		}
		s.nextRunAt = time.Time{}
		if !s.running {
			s.status = syncrun.StatusIdle
		}
	}
	state := s.state
	s.publishLocked()
	s.mu.Unlock()

	if err := s.stateRepo.Save(ctx, state); err != nil {
		return fmt.Errorf("%w: save scheduler state: %v", ErrStore, err)
	}
	return nil
}

// Schedule returns the current recurrence rule.
func (s *SchedulerService) Schedule() syncrun.Schedule {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Schedule
}

// TriggerNow runs the pipeline immediately. A run already in flight is
// rejected, never queued.
func (s *SchedulerService) TriggerNow(ctx context.Context) (syncrun.Run, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SchedulerService.TriggerNow")
	defer span.End()

	return s.execute(ctx, true)
}

// Status reports the current scheduler state for the operational surface.
func (s *SchedulerService) Status() StatusSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// History returns the bounded run history, newest first.
func (s *SchedulerService) History() []syncrun.Run {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]syncrun.Run, len(s.state.Runs))
	copy(out, s.state.Runs)
	return out
}

// Subscribe registers a status listener. Delivery is latest-value-wins: a
// slow consumer sees the newest snapshot, not every intermediate tick. The
// returned func unsubscribes.
func (s *SchedulerService) Subscribe() (<-chan StatusSnapshot, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextSubID++
	subID := s.nextSubID
	ch := make(chan StatusSnapshot, 1)
	s.subscribers[subID] = ch

	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if existing, ok := s.subscribers[subID]; ok {
			close(existing)
			delete(s.subscribers, subID)
		}
	}
}

func (s *SchedulerService) scheduleNextLocked(at time.Time) {
	if s.stopped {
		return
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	s.nextRunAt = at
	if !s.running {
		s.status = syncrun.StatusScheduled
	}
	delay := at.Sub(s.now())
	if delay < 0 {
		delay = 0
	}
	s.timer = time.AfterFunc(delay, s.onTimer)
}

func (s *SchedulerService) onTimer() {
	ctx := context.Background()
	run, err := s.execute(ctx, false)
	if err != nil {
		s.logger.WarnContext(ctx, "scheduled run did not execute", "error", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped || !s.state.Schedule.Enabled {
		return
	}

	// Hard failures (no season, no conferences) retry on a short backoff
	// instead of waiting out the week.
	if run.Outcome == syncrun.OutcomeFailed || err != nil {
		s.scheduleNextLocked(s.now().Add(s.cfg.RetryBackoff))
	} else {
		s.scheduleNextLocked(s.state.Schedule.NextOccurrence(s.now().Add(s.cfg.RestartDelay)))
	}
	s.publishLocked()
}

// execute runs one full pipeline pass. All failures are captured in the run
// record; the only error returns are the already-running rejection and state
// persistence problems.
func (s *SchedulerService) execute(ctx context.Context, manual bool) (syncrun.Run, error) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return syncrun.Run{}, ErrAlreadyRunning
	}
	s.running = true
	s.status = syncrun.StatusRunning

	runID, err := s.idGen.NewID()
	if err != nil {
		runID = fmt.Sprintf("run-%d", s.now().UnixNano())
	}
	run := syncrun.Run{
		ID:        runID,
		StartedAt: s.now().UTC(),
		Status:    syncrun.StatusRunning,
		Manual:    manual,
	}
	s.current = &run
	s.publishLocked()
	s.mu.Unlock()

	result := s.runPipeline(ctx, &run)

	s.mu.Lock()
	run.FinishedAt = s.now().UTC()
	run.Outcome = result
	if result == syncrun.OutcomeFailed {
		run.Status = syncrun.StatusFailed
	} else {
		run.Status = syncrun.StatusCompleted
	}
	s.state.AppendBounded(run, s.cfg.HistoryLimit)
	s.running = false
	s.current = nil
	s.status = run.Status
	if s.state.Schedule.Enabled && !s.nextRunAt.IsZero() {
		s.status = syncrun.StatusScheduled
	}
	state := s.state
	s.publishLocked()
	s.mu.Unlock()

	if err := s.stateRepo.Save(ctx, state); err != nil {
		s.logger.ErrorContext(ctx, "persist scheduler state failed", "run_id", run.ID, "error", err)
	}

	s.logger.InfoContext(ctx, "sync run finished",
		"run_id", run.ID,
		"outcome", run.Outcome,
		"manual", run.Manual,
		"matchups_finalized", run.Progress.MatchupsFinalized,
		"error_count", len(run.Errors),
	)
	return run, nil
}

// runPipeline fans the per-conference work out over a bounded worker pool.
// One conference failing is recorded and the rest continue; only missing
// configuration fails the run outright.
func (s *SchedulerService) runPipeline(ctx context.Context, run *syncrun.Run) syncrun.Outcome {
	ctx, span := startUsecaseSpan(ctx, "usecase.SchedulerService.runPipeline")
	defer span.End()

	currentSeason, found, err := s.seasonRepo.GetActive(ctx)
	if err != nil {
		run.Errors = append(run.Errors, fmt.Sprintf("load active season: %v", err))
		return syncrun.OutcomeFailed
	}
	if !found {
		run.Errors = append(run.Errors, fmt.Errorf("%w: no active season", ErrConfiguration).Error())
		return syncrun.OutcomeFailed
	}

	currentSeason = s.refreshSeasonClock(ctx, currentSeason)

	conferences, err := s.confRepo.ListActiveBySeason(ctx, currentSeason.ID)
	if err != nil {
		run.Errors = append(run.Errors, fmt.Sprintf("list active conferences: %v", err))
		return syncrun.OutcomeFailed
	}
	if len(conferences) == 0 {
		run.Errors = append(run.Errors, fmt.Errorf("%w: no active conferences for season=%d", ErrConfiguration, currentSeason.ID).Error())
		return syncrun.OutcomeFailed
	}
	run.Progress.ConferencesTotal = len(conferences)

	// The lookup is the barrier: fully built before any resolution starts,
	// then shared read-only by every worker. A conference whose mapping is
	// broken is excluded here and recorded, not allowed to poison the rest.
	lookup, healthy := s.buildRunLookup(ctx, conferences, run)

	var mu sync.Mutex
	var wg sync.WaitGroup

	pool, err := ants.NewPool(s.cfg.Workers)
	if err != nil {
		run.Errors = append(run.Errors, fmt.Sprintf("create worker pool: %v", err))
		return syncrun.OutcomeFailed
	}
	defer pool.Release()

	for _, conf := range healthy {
		conf := conf
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()

			finalized, confErrs := s.processConference(ctx, currentSeason, conf, lookup)

			mu.Lock()
			run.Progress.ConferencesProcessed++
			run.Progress.MatchupsFinalized += finalized
			if finalized > 0 {
				run.Progress.RecordsUpdated += finalized * 2
			}
			for _, confErr := range confErrs {
				run.Errors = append(run.Errors, fmt.Sprintf("conference=%d: %v", conf.ID, confErr))
			}
			mu.Unlock()
		})
		if submitErr != nil {
			wg.Done()
			mu.Lock()
			run.Errors = append(run.Errors, fmt.Sprintf("conference=%d: submit worker: %v", conf.ID, submitErr))
			mu.Unlock()
		}
	}
	wg.Wait()

	sort.Strings(run.Errors)
	return syncrun.Classify(run.Progress.MatchupsFinalized, len(run.Errors))
}

// buildRunLookup merges per-conference lookups so that a mapping failure in
// one conference is isolated from its siblings.
func (s *SchedulerService) buildRunLookup(
	ctx context.Context,
	conferences []conference.Conference,
	run *syncrun.Run,
) (rosterlink.Lookup, []conference.Conference) {
	lookup := make(rosterlink.Lookup)
	healthy := make([]conference.Conference, 0, len(conferences))

	for _, conf := range conferences {
		part, err := s.mapper.BuildLookup(ctx, conf.ID)
		if err != nil {
			run.Errors = append(run.Errors, fmt.Sprintf("conference=%d: %v", conf.ID, err))
			continue
		}
		for key, entry := range part {
			lookup[key] = entry
		}
		healthy = append(healthy, conf)
	}
	return lookup, healthy
}

// processConference finalizes the conference's pending matchups for the
// current week from provider scores and recomputes its standings. These are
// not-yet-completed games being settled, so provider data is taken directly
// rather than routed through override precedence; admin score freezes are
// still honored.
func (s *SchedulerService) processConference(
	ctx context.Context,
	currentSeason season.Season,
	conf conference.Conference,
	lookup rosterlink.Lookup,
) (int, []error) {
	var errs []error

	pending, err := s.matchupRepo.ListPendingByConferenceWeek(ctx, conf.ID, currentSeason.CurrentWeek)
	if err != nil {
		return 0, []error{fmt.Errorf("%w: list pending matchups week=%d: %v", ErrStore, currentSeason.CurrentWeek, err)}
	}
	if len(pending) == 0 {
		return 0, nil
	}

	rows, err := s.provider.FetchMatchups(ctx, conf.ExternalLeagueID, currentSeason.CurrentWeek)
	if err != nil {
		return 0, []error{fmt.Errorf("%w: fetch matchups week=%d: %v", ErrProvider, currentSeason.CurrentWeek, err)}
	}
	snapshot := make(map[string]ProviderMatchup, len(rows))
	for _, row := range rows {
		snapshot[row.RosterID] = row
	}

	finalized := 0
	for _, rec := range pending {
		if err := s.finalizeMatchup(ctx, rec, lookup, snapshot); err != nil {
			errs = append(errs, err)
			continue
		}
		finalized++
	}

	if finalized > 0 {
		if err := s.standings.Recompute(ctx, currentSeason.ID, conf.ID); err != nil {
			errs = append(errs, fmt.Errorf("recompute standings: %w", err))
		}
	}
	return finalized, errs
}

func (s *SchedulerService) finalizeMatchup(
	ctx context.Context,
	rec matchup.Record,
	lookup rosterlink.Lookup,
	snapshot map[string]ProviderMatchup,
) error {
	entryA, okA := lookup.ByTeam(rec.TeamAID)
	entryB, okB := lookup.ByTeam(rec.TeamBID)
	if !okA || !okB {
		return fmt.Errorf("%w: matchup=%d has unmapped team (teamA=%d mapped=%t, teamB=%d mapped=%t)",
			ErrMapping, rec.ID, rec.TeamAID, okA, rec.TeamBID, okB)
	}

	if !rec.ScoresFrozen {
		rec.TeamAScore = snapshot[entryA.ExternalRosterID].Points
		rec.TeamBScore = snapshot[entryB.ExternalRosterID].Points
	}
	rec.WinnerTeamID = matchup.DecideWinner(rec.TeamAID, rec.TeamBID, rec.TeamAScore, rec.TeamBScore)
	rec.Status = matchup.StatusComplete

	if err := s.matchupRepo.Update(ctx, rec); err != nil {
		return fmt.Errorf("%w: finalize matchup=%d: %v", ErrStore, rec.ID, err)
	}
	return nil
}

// refreshSeasonClock asks the provider for the current week and persists it.
// The stored week is the fallback when the provider is unreachable.
func (s *SchedulerService) refreshSeasonClock(ctx context.Context, currentSeason season.Season) season.Season {
	clock, err := s.provider.FetchCurrentWeek(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "fetch current week failed, using stored week",
			"season_id", currentSeason.ID,
			"stored_week", currentSeason.CurrentWeek,
			"error", err,
		)
		return currentSeason
	}
	if clock.Week > 0 && clock.Week != currentSeason.CurrentWeek {
		if err := s.seasonRepo.UpdateCurrentWeek(ctx, currentSeason.ID, clock.Week); err != nil {
			s.logger.WarnContext(ctx, "persist current week failed",
				"season_id", currentSeason.ID,
				"week", clock.Week,
				"error", err,
			)
		} else {
			currentSeason.CurrentWeek = clock.Week
		}
	}
	return currentSeason
}

func (s *SchedulerService) snapshotLocked() StatusSnapshot {
	snapshot := StatusSnapshot{State: s.status}
	if !s.nextRunAt.IsZero() {
		at := s.nextRunAt
		snapshot.NextRunAt = &at
	}
	if s.current != nil {
		current := *s.current
		snapshot.Current = &current
	}
	if len(s.state.Runs) > 0 {
		last := s.state.Runs[0]
		snapshot.LastRun = &last
	}
	return snapshot
}

// publishLocked pushes the newest snapshot to every subscriber, replacing
// any undelivered one. Callers hold s.mu.
func (s *SchedulerService) publishLocked() {
	snapshot := s.snapshotLocked()
	for _, ch := range s.subscribers {
		select {
		case ch <- snapshot:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snapshot:
			default:
			}
		}
	}
}
