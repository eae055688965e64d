package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dvail/conferencesync/internal/domain/conference"
	"github.com/dvail/conferencesync/internal/domain/matchup"
	"github.com/dvail/conferencesync/internal/domain/rosterlink"
	"github.com/dvail/conferencesync/internal/domain/teamrecord"
)

func standingsFixture(t *testing.T, completed ...matchup.Record) (*StandingsService, *stubTeamRecordRepository) {
	t.Helper()

	confRepo := &stubConferenceRepository{
		conferences: []conference.Conference{
			{ID: 1, Name: "North", ExternalLeagueID: "10001", SeasonID: 1, Active: true},
		},
	}
	linkRepo := &stubRosterLinkRepository{
		links: []rosterlink.Link{
			{TeamID: 1, ConferenceID: 1, ExternalRosterID: "10", Active: true},
			{TeamID: 2, ConferenceID: 1, ExternalRosterID: "11", Active: true},
			{TeamID: 3, ConferenceID: 1, ExternalRosterID: "12", Active: true},
			{TeamID: 4, ConferenceID: 1, ExternalRosterID: "13", Active: true},
			{TeamID: 5, ConferenceID: 1, ExternalRosterID: "14", Active: true},
		},
	}
	recordRepo := newStubTeamRecordRepository()
	service := NewStandingsService(
		newStubMatchupRepository(completed...),
		recordRepo,
		confRepo,
		NewRosterMapService(linkRepo, nil),
		4,
		nil,
	)
	service.now = func() time.Time { return time.Date(2025, 9, 2, 9, 0, 0, 0, time.UTC) }
	return service, recordRepo
}

func completeMatchup(id, conferenceID int64, week int, teamA, teamB int64, scoreA, scoreB float64) matchup.Record {
	return matchup.Record{
		ID:           id,
		ConferenceID: conferenceID,
		Week:         week,
		TeamAID:      teamA,
		TeamBID:      teamB,
		TeamAScore:   scoreA,
		TeamBScore:   scoreB,
		WinnerTeamID: matchup.DecideWinner(teamA, teamB, scoreA, scoreB),
		Status:       matchup.StatusComplete,
	}
}

func TestStandingsService_Recompute_FoldsCompletedMatchups(t *testing.T) {
	t.Parallel()

	service, recordRepo := standingsFixture(t,
		completeMatchup(1, 1, 1, 1, 2, 120.0, 98.0),
		completeMatchup(2, 1, 1, 3, 4, 95.0, 95.0),
		completeMatchup(3, 1, 2, 1, 3, 110.0, 112.5),
	)

	if err := service.Recompute(context.Background(), 1, 0); err != nil {
		t.Fatalf("Recompute error: %v", err)
	}

	records, err := recordRepo.ListBySeason(context.Background(), 1, 1)
	if err != nil {
		t.Fatalf("ListBySeason error: %v", err)
	}
	if len(records) != 5 {
		t.Fatalf("expected 5 records, got %d", len(records))
	}

	byTeam := make(map[int64]teamrecord.Record, len(records))
	for _, rec := range records {
		byTeam[rec.TeamID] = rec
	}

	team1 := byTeam[1]
	if team1.Wins != 1 || team1.Losses != 1 || team1.Ties != 0 {
		t.Fatalf("team 1 record: %d-%d-%d", team1.Wins, team1.Losses, team1.Ties)
	}
	if team1.PointsFor != 230.0 || team1.PointsAgainst != 210.5 {
		t.Fatalf("team 1 points: for=%.1f against=%.1f", team1.PointsFor, team1.PointsAgainst)
	}
	if team1.WinPct != 0.5 {
		t.Fatalf("team 1 win pct: %.3f", team1.WinPct)
	}

	team3 := byTeam[3]
	if team3.Wins != 1 || team3.Ties != 1 {
		t.Fatalf("team 3 record: %d-%d-%d", team3.Wins, team3.Losses, team3.Ties)
	}

	// Team 5 played nothing; its win percentage is defined as zero, not NaN.
	team5 := byTeam[5]
	if team5.GamesPlayed() != 0 || team5.WinPct != 0 {
		t.Fatalf("idle team record: games=%d pct=%.3f", team5.GamesPlayed(), team5.WinPct)
	}
}

func TestStandingsService_Recompute_IgnoresPendingMatchups(t *testing.T) {
	t.Parallel()

	pending := matchup.Record{
		ID:           4,
		ConferenceID: 1,
		Week:         3,
		TeamAID:      1,
		TeamBID:      4,
		TeamAScore:   55.0,
		Status:       matchup.StatusPending,
	}
	service, recordRepo := standingsFixture(t,
		completeMatchup(1, 1, 1, 1, 2, 120.0, 98.0),
		pending,
	)

	if err := service.Recompute(context.Background(), 1, 0); err != nil {
		t.Fatalf("Recompute error: %v", err)
	}

	records, err := recordRepo.ListBySeason(context.Background(), 1, 1)
	if err != nil {
		t.Fatalf("ListBySeason error: %v", err)
	}

	byTeam := make(map[int64]teamrecord.Record, len(records))
	for _, rec := range records {
		byTeam[rec.TeamID] = rec
	}
	team1 := byTeam[1]
	if team1.Wins != 1 || team1.Losses != 0 {
		t.Fatalf("team 1 record: %d-%d, want 1-0", team1.Wins, team1.Losses)
	}
	if team1.PointsFor != 120.0 {
		t.Fatalf("pending matchup leaked into points: %.1f", team1.PointsFor)
	}
	team4 := byTeam[4]
	if team4.Wins != 0 || team4.Losses != 0 || team4.Ties != 0 || team4.PointsFor != 0 {
		t.Fatalf("team 4 should be untouched by a pending matchup: %+v", team4)
	}
}

func TestStandingsService_Recompute_Idempotent(t *testing.T) {
	t.Parallel()

	service, recordRepo := standingsFixture(t,
		completeMatchup(1, 1, 1, 1, 2, 120.0, 98.0),
	)

	if err := service.Recompute(context.Background(), 1, 0); err != nil {
		t.Fatalf("first recompute: %v", err)
	}
	first, _ := recordRepo.ListBySeason(context.Background(), 1, 0)

	if err := service.Recompute(context.Background(), 1, 0); err != nil {
		t.Fatalf("second recompute: %v", err)
	}
	second, _ := recordRepo.ListBySeason(context.Background(), 1, 0)

	if len(first) != len(second) {
		t.Fatalf("record count changed across recomputes: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("record %d changed across recomputes:\n%+v\n%+v", i, first[i], second[i])
		}
	}
}

func TestStandingsService_Recompute_PointsForTieBreak(t *testing.T) {
	t.Parallel()

	// Teams 1 and 3 both finish 1-0; team 3 scored more.
	service, recordRepo := standingsFixture(t,
		completeMatchup(1, 1, 1, 1, 2, 100.0, 90.0),
		completeMatchup(2, 1, 1, 3, 4, 130.0, 90.0),
	)

	if err := service.Recompute(context.Background(), 1, 0); err != nil {
		t.Fatalf("Recompute error: %v", err)
	}

	records, _ := recordRepo.ListBySeason(context.Background(), 1, 1)
	byTeam := make(map[int64]teamrecord.Record, len(records))
	for _, rec := range records {
		byTeam[rec.TeamID] = rec
	}

	if byTeam[3].ConferenceRank != 1 {
		t.Fatalf("team 3 should out-rank on points-for, got rank %d", byTeam[3].ConferenceRank)
	}
	if byTeam[1].ConferenceRank != 2 {
		t.Fatalf("team 1 rank: %d", byTeam[1].ConferenceRank)
	}
}

func TestStandingsService_Recompute_PlayoffEligibilityTopSlots(t *testing.T) {
	t.Parallel()

	service, recordRepo := standingsFixture(t,
		completeMatchup(1, 1, 1, 1, 2, 100.0, 90.0),
		completeMatchup(2, 1, 1, 3, 4, 110.0, 80.0),
	)

	if err := service.Recompute(context.Background(), 1, 0); err != nil {
		t.Fatalf("Recompute error: %v", err)
	}

	records, _ := recordRepo.ListBySeason(context.Background(), 1, 1)
	for _, rec := range records {
		wantEligible := rec.ConferenceRank <= 4
		if rec.PlayoffEligible != wantEligible {
			t.Fatalf("team %d rank %d eligible=%t", rec.TeamID, rec.ConferenceRank, rec.PlayoffEligible)
		}
	}
}

func TestStandingsService_Recompute_RejectsMissingSeason(t *testing.T) {
	t.Parallel()

	service, _ := standingsFixture(t)
	if err := service.Recompute(context.Background(), 0, 0); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestStandingsService_MarkConferenceChampions(t *testing.T) {
	t.Parallel()

	service, recordRepo := standingsFixture(t,
		completeMatchup(1, 1, 1, 1, 2, 100.0, 90.0),
	)
	if err := service.Recompute(context.Background(), 1, 0); err != nil {
		t.Fatalf("Recompute error: %v", err)
	}

	if err := service.MarkConferenceChampions(context.Background(), 1); err != nil {
		t.Fatalf("MarkConferenceChampions error: %v", err)
	}

	if len(recordRepo.champions) != 1 || recordRepo.champions[0] != 1 {
		t.Fatalf("expected team 1 as champion, got %v", recordRepo.champions)
	}
}
