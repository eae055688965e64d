package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dvail/conferencesync/internal/domain/teamrecord"
)

type teamRecordDTO struct {
	TeamID             int64     `json:"teamId"`
	ConferenceID       int64     `json:"conferenceId"`
	SeasonID           int64     `json:"seasonId"`
	Wins               int       `json:"wins"`
	Losses             int       `json:"losses"`
	Ties               int       `json:"ties"`
	PointsFor          float64   `json:"pointsFor"`
	PointsAgainst      float64   `json:"pointsAgainst"`
	WinPct             float64   `json:"winPct"`
	ConferenceRank     int       `json:"conferenceRank"`
	OverallRank        int       `json:"overallRank"`
	PlayoffEligible    bool      `json:"playoffEligible"`
	ConferenceChampion bool      `json:"conferenceChampion"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

func (h *Handler) ListStandings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListStandings")
	defer span.End()

	seasonID, err := parseInt64Path(r, "seasonID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	conferenceID := parseConferenceQuery(r)

	records, err := h.standingsSvc.ListBySeason(ctx, seasonID, conferenceID)
	if err != nil {
		h.logger.ErrorContext(ctx, "list standings failed", "season_id", seasonID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]teamRecordDTO, 0, len(records))
	for _, rec := range records {
		items = append(items, teamRecordToDTO(rec))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) RecomputeStandings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RecomputeStandings")
	defer span.End()

	seasonID, err := parseInt64Path(r, "seasonID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	conferenceID := parseConferenceQuery(r)

	if err := h.standingsSvc.Recompute(ctx, seasonID, conferenceID); err != nil {
		h.logger.ErrorContext(ctx, "recompute standings failed", "season_id", seasonID, "conference_id", conferenceID, "error", err)
		writeError(ctx, w, err)
		return
	}

	records, err := h.standingsSvc.ListBySeason(ctx, seasonID, conferenceID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	items := make([]teamRecordDTO, 0, len(records))
	for _, rec := range records {
		items = append(items, teamRecordToDTO(rec))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) MarkConferenceChampions(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.MarkConferenceChampions")
	defer span.End()

	seasonID, err := parseInt64Path(r, "seasonID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	if err := h.standingsSvc.MarkConferenceChampions(ctx, seasonID); err != nil {
		h.logger.ErrorContext(ctx, "mark conference champions failed", "season_id", seasonID, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "champions marked"})
}

func parseConferenceQuery(r *http.Request) int64 {
	raw := r.URL.Query().Get("conferenceId")
	if raw == "" {
		return 0
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || value < 0 {
		return 0
	}
	return value
}

func teamRecordToDTO(rec teamrecord.Record) teamRecordDTO {
	return teamRecordDTO{
		TeamID:             rec.TeamID,
		ConferenceID:       rec.ConferenceID,
		SeasonID:           rec.SeasonID,
		Wins:               rec.Wins,
		Losses:             rec.Losses,
		Ties:               rec.Ties,
		PointsFor:          rec.PointsFor,
		PointsAgainst:      rec.PointsAgainst,
		WinPct:             rec.WinPct,
		ConferenceRank:     rec.ConferenceRank,
		OverallRank:        rec.OverallRank,
		PlayoffEligible:    rec.PlayoffEligible,
		ConferenceChampion: rec.ConferenceChampion,
		UpdatedAt:          rec.UpdatedAt,
	}
}
