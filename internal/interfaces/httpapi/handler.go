package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/dvail/conferencesync/internal/domain/conference"
	"github.com/dvail/conferencesync/internal/domain/season"
	"github.com/dvail/conferencesync/internal/usecase"
)

type Handler struct {
	seasonRepo      season.Repository
	conferenceRepo  conference.Repository
	resolverService *usecase.MatchupResolverService
	standingsSvc    *usecase.StandingsService
	overrideService *usecase.OverrideService
	mapperService   *usecase.RosterMapService
	scheduler       *usecase.SchedulerService
	logger          *slog.Logger
	validator       *validator.Validate
}

func NewHandler(
	seasonRepo season.Repository,
	conferenceRepo conference.Repository,
	resolverService *usecase.MatchupResolverService,
	standingsSvc *usecase.StandingsService,
	overrideService *usecase.OverrideService,
	mapperService *usecase.RosterMapService,
	scheduler *usecase.SchedulerService,
	logger *slog.Logger,
) *Handler {
	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{
		seasonRepo:      seasonRepo,
		conferenceRepo:  conferenceRepo,
		resolverService: resolverService,
		standingsSvc:    standingsSvc,
		overrideService: overrideService,
		mapperService:   mapperService,
		scheduler:       scheduler,
		logger:          logger,
		validator:       validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}
