package httpapi

import (
	"fmt"
	"net/http"
	"time"

	sonic "github.com/bytedance/sonic"

	"github.com/dvail/conferencesync/internal/domain/syncrun"
	"github.com/dvail/conferencesync/internal/usecase"
)

type scheduleDTO struct {
	Enabled bool `json:"enabled"`
	Weekday int  `json:"weekday" validate:"gte=0,lte=6"`
	Hour    int  `json:"hour" validate:"gte=0,lte=23"`
	Minute  int  `json:"minute" validate:"gte=0,lte=59"`
}

func (h *Handler) GetSyncStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetSyncStatus")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, h.scheduler.Status())
}

func (h *Handler) ListSyncRuns(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListSyncRuns")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, h.scheduler.History())
}

func (h *Handler) TriggerSyncRun(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.TriggerSyncRun")
	defer span.End()

	run, err := h.scheduler.TriggerNow(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "manual sync trigger rejected", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusAccepted, run)
}

func (h *Handler) GetSyncSchedule(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetSyncSchedule")
	defer span.End()

	schedule := h.scheduler.Schedule()
	writeSuccess(ctx, w, http.StatusOK, scheduleDTO{
		Enabled: schedule.Enabled,
		Weekday: int(schedule.Weekday),
		Hour:    schedule.Hour,
		Minute:  schedule.Minute,
	})
}

func (h *Handler) UpdateSyncSchedule(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpdateSyncSchedule")
	defer span.End()

	var payload scheduleDTO
	if err := sonic.ConfigDefault.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: decode schedule payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validator.Struct(payload); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err))
		return
	}

	schedule := syncrun.Schedule{
		Enabled: payload.Enabled,
		Weekday: time.Weekday(payload.Weekday),
		Hour:    payload.Hour,
		Minute:  payload.Minute,
	}
	if err := h.scheduler.UpdateSchedule(ctx, schedule); err != nil {
		h.logger.ErrorContext(ctx, "update sync schedule failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, payload)
}

// StreamSyncStatus pushes scheduler status snapshots over server-sent
// events. The first event is the current status; subsequent events follow
// state transitions.
func (h *Handler) StreamSyncStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.StreamSyncStatus")
	defer span.End()

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: streaming unsupported", usecase.ErrDependencyUnavailable))
		return
	}

	updates, cancel := h.scheduler.Subscribe()
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	writeStatusEvent(w, h.scheduler.Status())
	flusher.Flush()

	for {
		select {
		case <-ctx.Done():
			return
		case snapshot, open := <-updates:
			if !open {
				return
			}
			writeStatusEvent(w, snapshot)
			flusher.Flush()
		}
	}
}

func writeStatusEvent(w http.ResponseWriter, snapshot usecase.StatusSnapshot) {
	payload, err := sonic.Marshal(snapshot)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintf(w, "event: status\ndata: %s\n\n", payload)
}
