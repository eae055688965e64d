package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerPublicRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/conferences/{conferenceID}/matchups/{week}", handler.ListHybridMatchups)
	mux.HandleFunc("GET /v1/seasons/{seasonID}/standings", handler.ListStandings)
	mux.HandleFunc("GET /v1/sync/status", handler.GetSyncStatus)
	mux.HandleFunc("GET /v1/sync/status/stream", handler.StreamSyncStatus)
	mux.HandleFunc("GET /v1/sync/runs", handler.ListSyncRuns)
	mux.HandleFunc("GET /v1/sync/schedule", handler.GetSyncSchedule)
}

func registerAdminRoutes(mux *http.ServeMux, handler *Handler, adminToken string) {
	mux.Handle("PUT /v1/sync/schedule", RequireAdminToken(adminToken, http.HandlerFunc(handler.UpdateSyncSchedule)))
	mux.Handle("POST /v1/sync/runs", RequireAdminToken(adminToken, http.HandlerFunc(handler.TriggerSyncRun)))
	mux.Handle("POST /v1/seasons/{seasonID}/standings/recompute", RequireAdminToken(adminToken, http.HandlerFunc(handler.RecomputeStandings)))
	mux.Handle("POST /v1/seasons/{seasonID}/standings/champions", RequireAdminToken(adminToken, http.HandlerFunc(handler.MarkConferenceChampions)))
	mux.Handle("PUT /v1/matchups/{matchupID}/override", RequireAdminToken(adminToken, http.HandlerFunc(handler.ApplyMatchupOverride)))
	mux.Handle("DELETE /v1/matchups/{matchupID}/override", RequireAdminToken(adminToken, http.HandlerFunc(handler.ClearMatchupOverride)))
}
