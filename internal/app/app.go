package app

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"

	"github.com/dvail/conferencesync/external/sleeper"
	"github.com/dvail/conferencesync/internal/config"
	"github.com/dvail/conferencesync/internal/domain/conference"
	"github.com/dvail/conferencesync/internal/domain/matchup"
	"github.com/dvail/conferencesync/internal/domain/rosterlink"
	"github.com/dvail/conferencesync/internal/domain/season"
	"github.com/dvail/conferencesync/internal/domain/syncrun"
	"github.com/dvail/conferencesync/internal/domain/team"
	"github.com/dvail/conferencesync/internal/domain/teamrecord"
	"github.com/dvail/conferencesync/internal/infrastructure/repository/memory"
	"github.com/dvail/conferencesync/internal/infrastructure/repository/postgres"
	"github.com/dvail/conferencesync/internal/interfaces/httpapi"
	idgen "github.com/dvail/conferencesync/internal/platform/id"
	"github.com/dvail/conferencesync/internal/platform/logging"
	"github.com/dvail/conferencesync/internal/platform/resilience"
	"github.com/dvail/conferencesync/internal/usecase"
)

// Application owns the wired HTTP server and scheduler plus the resources
// they borrow. Close releases the database handle after the server and
// scheduler have stopped.
type Application struct {
	Server    *http.Server
	Scheduler *usecase.SchedulerService

	db *sqlx.DB
}

type repositories struct {
	seasons     season.Repository
	conferences conference.Repository
	teams       team.Repository
	rosterLinks rosterlink.Repository
	matchups    matchup.Repository
	teamRecords teamrecord.Repository
	syncState   syncrun.Repository
}

// New wires the whole service from configuration. An empty DB_URL selects
// the seeded in-memory repositories, which is the local development mode.
func New(cfg config.Config, logger *logging.Logger, slogger *slog.Logger) (*Application, error) {
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}
	if logger == nil {
		logger = logging.Default()
	}

	var (
		db    *sqlx.DB
		repos repositories
		err   error
	)
	if cfg.DBURL != "" {
		db, repos, err = newPostgresRepositories(cfg)
		if err != nil {
			return nil, err
		}
	} else {
		repos = newMemoryRepositories()
	}

	provider := sleeper.NewClient(sleeper.ClientConfig{
		BaseURL:    cfg.SleeperBaseURL,
		Sport:      cfg.SleeperSport,
		Timeout:    cfg.SleeperTimeout,
		MaxRetries: cfg.SleeperMaxRetries,
		CacheTTL:   cfg.SleeperCacheTTL,
		Logger:     logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.SleeperCircuitEnabled,
			FailureThreshold: cfg.SleeperCircuitFailureCount,
			OpenTimeout:      cfg.SleeperCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.SleeperCircuitHalfOpenMaxReq,
		},
	})

	mapperSvc := usecase.NewRosterMapService(repos.rosterLinks, logger)
	resolverSvc := usecase.NewMatchupResolverService(
		repos.matchups,
		repos.teams,
		provider,
		cfg.InterConferenceWeekInterval,
		logger,
	)
	standingsSvc := usecase.NewStandingsService(
		repos.matchups,
		repos.teamRecords,
		repos.conferences,
		mapperSvc,
		cfg.PlayoffSlots,
		logger,
	)
	overrideSvc := usecase.NewOverrideService(repos.matchups, standingsSvc, logger)
	schedulerSvc := usecase.NewSchedulerService(
		repos.seasons,
		repos.conferences,
		repos.matchups,
		mapperSvc,
		standingsSvc,
		provider,
		repos.syncState,
		idgen.NewRandomGenerator(),
		usecase.SchedulerConfig{
			Workers:      cfg.SyncWorkers,
			HistoryLimit: cfg.SyncHistoryLimit,
			RetryBackoff: cfg.SyncRetryBackoff,
			DefaultSchedule: syncrun.Schedule{
				Enabled: cfg.SyncEnabled,
				Weekday: cfg.SyncWeekday,
				Hour:    cfg.SyncHour,
				Minute:  cfg.SyncMinute,
			},
		},
		logger,
	)

	handler := httpapi.NewHandler(
		repos.seasons,
		repos.conferences,
		resolverSvc,
		standingsSvc,
		overrideSvc,
		mapperSvc,
		schedulerSvc,
		slogger,
	)
	router := httpapi.NewRouter(handler, slogger, cfg.CORSAllowedOrigins, cfg.AdminToken)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return &Application{
		Server:    server,
		Scheduler: schedulerSvc,
		db:        db,
	}, nil
}

func (a *Application) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

func newPostgresRepositories(cfg config.Config) (*sqlx.DB, repositories, error) {
	dsn := normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary)
	db, err := otelsqlx.Connect("postgres", dsn,
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithDBName(dbNameFromURL(dsn)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, repositories{}, fmt.Errorf("connect database: %w", err)
	}

	return db, repositories{
		seasons:     postgres.NewSeasonRepository(db),
		conferences: postgres.NewConferenceRepository(db),
		teams:       postgres.NewTeamRepository(db),
		rosterLinks: postgres.NewRosterLinkRepository(db),
		matchups:    postgres.NewMatchupRepository(db),
		teamRecords: postgres.NewTeamRecordRepository(db),
		syncState:   postgres.NewSyncStateRepository(db),
	}, nil
}

func newMemoryRepositories() repositories {
	return repositories{
		seasons:     memory.NewSeasonRepository(memory.SeedSeasons()),
		conferences: memory.NewConferenceRepository(memory.SeedConferences()),
		teams:       memory.NewTeamRepository(memory.SeedTeams()),
		rosterLinks: memory.NewRosterLinkRepository(memory.SeedRosterLinks()),
		matchups:    memory.NewMatchupRepository(memory.SeedMatchups(), memory.SeedSeasonByConference()),
		teamRecords: memory.NewTeamRecordRepository(),
		syncState:   memory.NewSyncStateRepository(),
	}
}
