package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/dvail/conferencesync/internal/domain/matchup"
)

type matchupRepositoryMock struct {
	mock.Mock
}

func (m *matchupRepositoryMock) ListByConferenceWeek(ctx context.Context, conferenceID int64, week int) ([]matchup.Record, error) {
	args := m.Called(ctx, conferenceID, week)
	return args.Get(0).([]matchup.Record), args.Error(1)
}

func (m *matchupRepositoryMock) ListPendingByConferenceWeek(ctx context.Context, conferenceID int64, week int) ([]matchup.Record, error) {
	args := m.Called(ctx, conferenceID, week)
	return args.Get(0).([]matchup.Record), args.Error(1)
}

func (m *matchupRepositoryMock) ListCompleteBySeason(ctx context.Context, seasonID int64, conferenceID int64) ([]matchup.Record, error) {
	args := m.Called(ctx, seasonID, conferenceID)
	return args.Get(0).([]matchup.Record), args.Error(1)
}

func (m *matchupRepositoryMock) GetByID(ctx context.Context, matchupID int64) (matchup.Record, bool, error) {
	args := m.Called(ctx, matchupID)
	return args.Get(0).(matchup.Record), args.Bool(1), args.Error(2)
}

func (m *matchupRepositoryMock) Update(ctx context.Context, record matchup.Record) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func TestOverrideService_ApplyOverride_DerivesWinner(t *testing.T) {
	t.Parallel()

	stored := matchup.Record{
		ID: 9, ConferenceID: 1, Week: 3, TeamAID: 1, TeamBID: 2,
		Status: matchup.StatusPending,
	}
	repo := new(matchupRepositoryMock)
	repo.On("GetByID", mock.Anything, int64(9)).Return(stored, true, nil).Once()
	repo.
		On("Update", mock.Anything, mock.MatchedBy(func(rec matchup.Record) bool {
			return rec.ManualOverride &&
				rec.ScoresFrozen &&
				rec.TeamAScore == 133.5 &&
				rec.TeamBScore == 110.0 &&
				rec.WinnerTeamID != nil && *rec.WinnerTeamID == 1
		})).
		Return(nil).
		Once()

	service := NewOverrideService(repo, nil, nil)
	got, err := service.ApplyOverride(context.Background(), 1, OverrideInput{
		MatchupID:    9,
		TeamAScore:   133.5,
		TeamBScore:   110.0,
		FreezeScores: true,
		Notes:        "stat correction",
	})
	if err != nil {
		t.Fatalf("ApplyOverride error: %v", err)
	}
	if got.Notes != "stat correction" {
		t.Fatalf("notes not recorded: %q", got.Notes)
	}
	repo.AssertExpectations(t)
}

func TestOverrideService_ApplyOverride_TieClearsWinner(t *testing.T) {
	t.Parallel()

	stored := matchup.Record{ID: 9, ConferenceID: 1, Week: 3, TeamAID: 1, TeamBID: 2}
	repo := new(matchupRepositoryMock)
	repo.On("GetByID", mock.Anything, int64(9)).Return(stored, true, nil).Once()
	repo.
		On("Update", mock.Anything, mock.MatchedBy(func(rec matchup.Record) bool {
			return rec.WinnerTeamID == nil
		})).
		Return(nil).
		Once()

	service := NewOverrideService(repo, nil, nil)
	_, err := service.ApplyOverride(context.Background(), 1, OverrideInput{
		MatchupID:  9,
		TeamAScore: 100.0,
		TeamBScore: 100.0,
	})
	if err != nil {
		t.Fatalf("ApplyOverride error: %v", err)
	}
	repo.AssertExpectations(t)
}

func TestOverrideService_ApplyOverride_RejectsForeignWinner(t *testing.T) {
	t.Parallel()

	stored := matchup.Record{ID: 9, ConferenceID: 1, Week: 3, TeamAID: 1, TeamBID: 2}
	repo := new(matchupRepositoryMock)
	repo.On("GetByID", mock.Anything, int64(9)).Return(stored, true, nil).Once()

	service := NewOverrideService(repo, nil, nil)
	outsider := int64(42)
	_, err := service.ApplyOverride(context.Background(), 1, OverrideInput{
		MatchupID:    9,
		TeamAScore:   100.0,
		TeamBScore:   90.0,
		WinnerTeamID: &outsider,
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	repo.AssertExpectations(t)
}

func TestOverrideService_ApplyOverride_NotFound(t *testing.T) {
	t.Parallel()

	repo := new(matchupRepositoryMock)
	repo.On("GetByID", mock.Anything, int64(404)).Return(matchup.Record{}, false, nil).Once()

	service := NewOverrideService(repo, nil, nil)
	_, err := service.ApplyOverride(context.Background(), 1, OverrideInput{MatchupID: 404, TeamAScore: 1, TeamBScore: 2})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestOverrideService_ClearOverride_RederivesWinner(t *testing.T) {
	t.Parallel()

	manualWinner := int64(1)
	stored := matchup.Record{
		ID: 9, ConferenceID: 1, Week: 3, TeamAID: 1, TeamBID: 2,
		TeamAScore: 80.0, TeamBScore: 95.0, WinnerTeamID: &manualWinner,
		ManualOverride: true, ScoresFrozen: true,
	}
	repo := new(matchupRepositoryMock)
	repo.On("GetByID", mock.Anything, int64(9)).Return(stored, true, nil).Once()
	repo.
		On("Update", mock.Anything, mock.MatchedBy(func(rec matchup.Record) bool {
			return !rec.ManualOverride &&
				!rec.ScoresFrozen &&
				rec.WinnerTeamID != nil && *rec.WinnerTeamID == 2
		})).
		Return(nil).
		Once()

	service := NewOverrideService(repo, nil, nil)
	got, err := service.ClearOverride(context.Background(), 1, 9)
	if err != nil {
		t.Fatalf("ClearOverride error: %v", err)
	}
	if got.ManualOverride {
		t.Fatal("override flag still set")
	}
	repo.AssertExpectations(t)
}
