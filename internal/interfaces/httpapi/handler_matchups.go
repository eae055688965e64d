package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	sonic "github.com/bytedance/sonic"

	"github.com/dvail/conferencesync/internal/domain/matchup"
	"github.com/dvail/conferencesync/internal/usecase"
)

type hybridSideDTO struct {
	TeamID           int64              `json:"teamId"`
	TeamName         string             `json:"teamName"`
	ExternalRosterID string             `json:"externalRosterId"`
	Points           float64            `json:"points"`
	ProjectedPoints  float64            `json:"projectedPoints"`
	Starters         []string           `json:"starters,omitempty"`
	StarterPoints    []float64          `json:"starterPoints,omitempty"`
	PlayerPoints     map[string]float64 `json:"playerPoints,omitempty"`
}

type hybridMatchupDTO struct {
	RecordID        int64         `json:"recordId,omitempty"`
	ConferenceID    int64         `json:"conferenceId"`
	Week            int           `json:"week"`
	TeamA           hybridSideDTO `json:"teamA"`
	TeamB           hybridSideDTO `json:"teamB"`
	WinnerTeamID    *int64        `json:"winnerTeamId,omitempty"`
	ManualOverride  bool          `json:"manualOverride"`
	InterConference bool          `json:"interConference"`
	DataSource      string        `json:"dataSource"`
	Status          string        `json:"status"`
	Notes           string        `json:"notes,omitempty"`
}

func (h *Handler) ListHybridMatchups(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListHybridMatchups")
	defer span.End()

	conferenceID, err := parseInt64Path(r, "conferenceID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	week, err := parseIntPath(r, "week")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	conf, found, err := h.conferenceRepo.GetByID(ctx, conferenceID)
	if err != nil {
		h.logger.ErrorContext(ctx, "load conference failed", "conference_id", conferenceID, "error", err)
		writeError(ctx, w, err)
		return
	}
	if !found {
		writeError(ctx, w, fmt.Errorf("%w: conference=%d", usecase.ErrNotFound, conferenceID))
		return
	}

	currentSeason, found, err := h.seasonRepo.GetByID(ctx, conf.SeasonID)
	if err != nil {
		h.logger.ErrorContext(ctx, "load season failed", "season_id", conf.SeasonID, "error", err)
		writeError(ctx, w, err)
		return
	}
	if !found {
		writeError(ctx, w, fmt.Errorf("%w: season=%d", usecase.ErrNotFound, conf.SeasonID))
		return
	}

	lookup, err := h.mapperService.BuildLookup(ctx, conferenceID)
	if err != nil {
		h.logger.WarnContext(ctx, "build roster lookup failed", "conference_id", conferenceID, "error", err)
		writeError(ctx, w, err)
		return
	}

	rc := usecase.ResolveContext{
		SeasonYear:  currentSeason.Year,
		CurrentYear: time.Now().Year(),
		CurrentWeek: currentSeason.CurrentWeek,
	}
	hybrids, err := h.resolverService.ResolveWeek(ctx, conf, week, rc, lookup)
	if err != nil {
		h.logger.ErrorContext(ctx, "resolve week failed", "conference_id", conferenceID, "week", week, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]hybridMatchupDTO, 0, len(hybrids))
	for _, hybrid := range hybrids {
		items = append(items, hybridToDTO(hybrid))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) ApplyMatchupOverride(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ApplyMatchupOverride")
	defer span.End()

	matchupID, err := parseInt64Path(r, "matchupID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var payload usecase.OverrideInput
	if err := sonic.ConfigDefault.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: decode override payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	payload.MatchupID = matchupID
	if err := h.validator.Struct(payload); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err))
		return
	}

	seasonID, err := h.activeSeasonID(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	rec, err := h.overrideService.ApplyOverride(ctx, seasonID, payload)
	if err != nil {
		h.logger.WarnContext(ctx, "apply override failed", "matchup_id", matchupID, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, matchupRecordToDTO(rec))
}

func (h *Handler) ClearMatchupOverride(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ClearMatchupOverride")
	defer span.End()

	matchupID, err := parseInt64Path(r, "matchupID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	seasonID, err := h.activeSeasonID(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	rec, err := h.overrideService.ClearOverride(ctx, seasonID, matchupID)
	if err != nil {
		h.logger.WarnContext(ctx, "clear override failed", "matchup_id", matchupID, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, matchupRecordToDTO(rec))
}

func (h *Handler) activeSeasonID(r *http.Request) (int64, error) {
	currentSeason, found, err := h.seasonRepo.GetActive(r.Context())
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, nil
	}
	return currentSeason.ID, nil
}

type matchupRecordDTO struct {
	ID             int64   `json:"id"`
	ConferenceID   int64   `json:"conferenceId"`
	Week           int     `json:"week"`
	TeamAID        int64   `json:"teamAId"`
	TeamBID        int64   `json:"teamBId"`
	TeamAScore     float64 `json:"teamAScore"`
	TeamBScore     float64 `json:"teamBScore"`
	WinnerTeamID   *int64  `json:"winnerTeamId,omitempty"`
	ManualOverride bool    `json:"manualOverride"`
	ScoresFrozen   bool    `json:"scoresFrozen"`
	Status         string  `json:"status"`
	Notes          string  `json:"notes,omitempty"`
}

func matchupRecordToDTO(rec matchup.Record) matchupRecordDTO {
	return matchupRecordDTO{
		ID:             rec.ID,
		ConferenceID:   rec.ConferenceID,
		Week:           rec.Week,
		TeamAID:        rec.TeamAID,
		TeamBID:        rec.TeamBID,
		TeamAScore:     rec.TeamAScore,
		TeamBScore:     rec.TeamBScore,
		WinnerTeamID:   rec.WinnerTeamID,
		ManualOverride: rec.ManualOverride,
		ScoresFrozen:   rec.ScoresFrozen,
		Status:         string(rec.Status),
		Notes:          rec.Notes,
	}
}

func hybridToDTO(hybrid matchup.Hybrid) hybridMatchupDTO {
	return hybridMatchupDTO{
		RecordID:        hybrid.RecordID,
		ConferenceID:    hybrid.ConferenceID,
		Week:            hybrid.Week,
		TeamA:           sideToDTO(hybrid.TeamA),
		TeamB:           sideToDTO(hybrid.TeamB),
		WinnerTeamID:    hybrid.WinnerTeamID,
		ManualOverride:  hybrid.ManualOverride,
		InterConference: hybrid.InterConference,
		DataSource:      string(hybrid.DataSource),
		Status:          string(hybrid.Status),
		Notes:           hybrid.Notes,
	}
}

func sideToDTO(side matchup.Side) hybridSideDTO {
	return hybridSideDTO{
		TeamID:           side.TeamID,
		TeamName:         side.TeamName,
		ExternalRosterID: side.ExternalRosterID,
		Points:           side.Points,
		ProjectedPoints:  side.ProjectedPoints,
		Starters:         side.Starters,
		StarterPoints:    side.StarterPoints,
		PlayerPoints:     side.PlayerPoints,
	}
}

func parseInt64Path(r *http.Request, name string) (int64, error) {
	raw := r.PathValue(name)
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || value <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer, got %q", usecase.ErrInvalidInput, name, raw)
	}
	return value, nil
}

func parseIntPath(r *http.Request, name string) (int, error) {
	value, err := parseInt64Path(r, name)
	if err != nil {
		return 0, err
	}
	return int(value), nil
}
