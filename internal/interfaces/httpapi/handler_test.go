package httpapi

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	sonic "github.com/bytedance/sonic"

	"github.com/dvail/conferencesync/internal/infrastructure/repository/memory"
	"github.com/dvail/conferencesync/internal/usecase"
)

// routedProvider serves canned weekly snapshots keyed by external league so
// router tests run the real resolver path without a live scoring service.
type routedProvider struct {
	matchupsByLeague map[string][]usecase.ProviderMatchup
}

func (p *routedProvider) FetchMatchups(_ context.Context, leagueID string, _ int) ([]usecase.ProviderMatchup, error) {
	return p.matchupsByLeague[leagueID], nil
}

func (p *routedProvider) FetchRosters(_ context.Context, _ string) ([]usecase.ProviderRoster, error) {
	return nil, nil
}

func (p *routedProvider) FetchUsers(_ context.Context, _ string) ([]usecase.ProviderUser, error) {
	return nil, nil
}

func (p *routedProvider) FetchCurrentWeek(_ context.Context) (usecase.ProviderClock, error) {
	return usecase.ProviderClock{Week: 3, SeasonYear: 2025}, nil
}

const testAdminToken = "router-test-token"

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	seasonRepo := memory.NewSeasonRepository(memory.SeedSeasons())
	conferenceRepo := memory.NewConferenceRepository(memory.SeedConferences())
	teamRepo := memory.NewTeamRepository(memory.SeedTeams())
	linkRepo := memory.NewRosterLinkRepository(memory.SeedRosterLinks())
	matchupRepo := memory.NewMatchupRepository(memory.SeedMatchups(), memory.SeedSeasonByConference())
	recordRepo := memory.NewTeamRecordRepository()
	stateRepo := memory.NewSyncStateRepository()

	provider := &routedProvider{
		matchupsByLeague: map[string][]usecase.ProviderMatchup{
			"10001": {
				{RosterID: "1", MatchupID: 1, Points: 121.4},
				{RosterID: "2", MatchupID: 1, Points: 98.6},
				{RosterID: "3", MatchupID: 2, Points: 104.2},
				{RosterID: "4", MatchupID: 2, Points: 111.9},
			},
			"10002": {
				{RosterID: "1", MatchupID: 1, Points: 88.3},
				{RosterID: "2", MatchupID: 1, Points: 95.1},
				{RosterID: "3", MatchupID: 2, Points: 102.0},
				{RosterID: "4", MatchupID: 2, Points: 102.0},
			},
		},
	}

	mapperSvc := usecase.NewRosterMapService(linkRepo, nil)
	resolverSvc := usecase.NewMatchupResolverService(matchupRepo, teamRepo, provider, 3, nil)
	standingsSvc := usecase.NewStandingsService(matchupRepo, recordRepo, conferenceRepo, mapperSvc, 4, nil)
	overrideSvc := usecase.NewOverrideService(matchupRepo, standingsSvc, nil)
	schedulerSvc := usecase.NewSchedulerService(
		seasonRepo, conferenceRepo, matchupRepo, mapperSvc, standingsSvc,
		provider, stateRepo, nil,
		usecase.SchedulerConfig{Workers: 2, HistoryLimit: 5},
		nil,
	)

	slogger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := NewHandler(seasonRepo, conferenceRepo, resolverSvc, standingsSvc, overrideSvc, mapperSvc, schedulerSvc, slogger)
	return NewRouter(handler, slogger, []string{"http://localhost:3000"}, testAdminToken)
}

func doRequest(t *testing.T, router http.Handler, method, target, token string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, target, nil)
	if token != "" {
		req.Header.Set("X-Admin-Token", token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, body []byte, out any) {
	t.Helper()

	var envelope struct {
		APIVersion string `json:"apiVersion"`
		Data       any    `json:"data"`
	}
	envelope.Data = out
	if err := sonic.Unmarshal(body, &envelope); err != nil {
		t.Fatalf("decode response envelope: %v", err)
	}
	if envelope.APIVersion != "2.0" {
		t.Fatalf("apiVersion = %q, want 2.0", envelope.APIVersion)
	}
}

func TestRouter_Healthz(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)
	rec := doRequest(t, router, http.MethodGet, "/healthz", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	data := map[string]string{}
	decodeData(t, rec.Body.Bytes(), &data)
	if data["status"] != "ok" {
		t.Fatalf("status payload = %q, want ok", data["status"])
	}
}

func TestRouter_ListConferenceMatchups(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)
	rec := doRequest(t, router, http.MethodGet, "/v1/conferences/1/matchups/1", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	var items []hybridMatchupDTO
	decodeData(t, rec.Body.Bytes(), &items)
	if len(items) != 2 {
		t.Fatalf("matchup count = %d, want 2", len(items))
	}

	first := items[0]
	if first.RecordID != 1 {
		t.Fatalf("first recordId = %d, want 1", first.RecordID)
	}
	if first.TeamA.Points != 121.4 || first.TeamB.Points != 98.6 {
		t.Fatalf("first points = %.1f/%.1f, want 121.4/98.6", first.TeamA.Points, first.TeamB.Points)
	}
	if first.TeamA.TeamName == "" {
		t.Fatalf("teamA name should be populated from the team repository")
	}
	if first.DataSource != "provider" {
		t.Fatalf("dataSource = %q, want provider", first.DataSource)
	}
	if first.Status != "completed" {
		t.Fatalf("status = %q, want completed", first.Status)
	}
	if first.InterConference {
		t.Fatalf("week 1 should not be an inter-conference week at interval 3")
	}
	if first.WinnerTeamID == nil || *first.WinnerTeamID != 1 {
		t.Fatalf("winnerTeamId = %v, want 1", first.WinnerTeamID)
	}
}

func TestRouter_ListConferenceMatchups_UnknownConference(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)
	rec := doRequest(t, router, http.MethodGet, "/v1/conferences/999/matchups/1", "")

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestRouter_AdminRoutesRejectMissingToken(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)
	rec := doRequest(t, router, http.MethodPost, "/v1/seasons/1/standings/recompute", "")

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestRouter_RecomputeThenListStandings(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)
	rec := doRequest(t, router, http.MethodPost, "/v1/seasons/1/standings/recompute", testAdminToken)
	if rec.Code != http.StatusOK {
		t.Fatalf("recompute status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	rec = doRequest(t, router, http.MethodGet, "/v1/seasons/1/standings", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d, want %d", rec.Code, http.StatusOK)
	}

	var records []teamRecordDTO
	decodeData(t, rec.Body.Bytes(), &records)
	if len(records) != 8 {
		t.Fatalf("standings count = %d, want 8", len(records))
	}

	byTeam := make(map[int64]teamRecordDTO, len(records))
	for _, record := range records {
		byTeam[record.TeamID] = record
	}
	if got := byTeam[1]; got.Wins != 2 || got.Losses != 0 {
		t.Fatalf("team 1 record = %d-%d, want 2-0", got.Wins, got.Losses)
	}
	if got := byTeam[7]; got.Ties != 1 || got.Losses != 1 {
		t.Fatalf("team 7 record = %d losses %d ties, want 1 and 1", got.Losses, got.Ties)
	}
	if got := byTeam[1]; got.ConferenceRank != 1 && got.ConferenceRank != 2 {
		t.Fatalf("team 1 conference rank = %d, want 1 or 2", got.ConferenceRank)
	}
	for _, record := range records {
		if !record.PlayoffEligible {
			t.Fatalf("team %d should be playoff eligible with four slots per conference", record.TeamID)
		}
	}
}

func TestRouter_StandingsFilterByConference(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)
	rec := doRequest(t, router, http.MethodPost, "/v1/seasons/1/standings/recompute", testAdminToken)
	if rec.Code != http.StatusOK {
		t.Fatalf("recompute status = %d, want %d", rec.Code, http.StatusOK)
	}

	rec = doRequest(t, router, http.MethodGet, "/v1/seasons/1/standings?conferenceId=2", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d, want %d", rec.Code, http.StatusOK)
	}

	var records []teamRecordDTO
	decodeData(t, rec.Body.Bytes(), &records)
	if len(records) != 4 {
		t.Fatalf("standings count = %d, want 4", len(records))
	}
	for _, record := range records {
		if record.ConferenceID != 2 {
			t.Fatalf("record for team %d has conferenceId %d, want 2", record.TeamID, record.ConferenceID)
		}
	}
}

func TestRouter_SyncStatusAndSchedule(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/v1/sync/status", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status endpoint = %d, want %d", rec.Code, http.StatusOK)
	}
	var snapshot struct {
		State string `json:"state"`
	}
	decodeData(t, rec.Body.Bytes(), &snapshot)
	if snapshot.State != "idle" {
		t.Fatalf("scheduler state = %q, want idle", snapshot.State)
	}

	rec = doRequest(t, router, http.MethodGet, "/v1/sync/schedule", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("schedule endpoint = %d, want %d", rec.Code, http.StatusOK)
	}
	var schedule scheduleDTO
	decodeData(t, rec.Body.Bytes(), &schedule)
	if schedule.Enabled {
		t.Fatalf("schedule should be disabled before any configuration is stored")
	}
}
