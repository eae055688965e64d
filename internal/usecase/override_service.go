package usecase

import (
	"context"
	"fmt"

	"github.com/dvail/conferencesync/internal/domain/matchup"
	"github.com/dvail/conferencesync/internal/platform/logging"
)

// OverrideInput is an admin correction to a single matchup's scores.
type OverrideInput struct {
	MatchupID    int64   `json:"matchupId" validate:"required,gt=0"`
	TeamAScore   float64 `json:"teamAScore" validate:"gte=0"`
	TeamBScore   float64 `json:"teamBScore" validate:"gte=0"`
	FreezeScores bool    `json:"freezeScores"`
	Notes        string  `json:"notes" validate:"max=500"`
	WinnerTeamID *int64  `json:"winnerTeamId,omitempty"`
}

// OverrideService applies admin score corrections. Overridden scores take
// precedence over provider data everywhere downstream, so the service also
// recomputes the affected conference's standings when the matchup is already
// complete.
type OverrideService struct {
	matchupRepo matchup.Repository
	standings   *StandingsService
	logger      *logging.Logger
}

func NewOverrideService(matchupRepo matchup.Repository, standings *StandingsService, logger *logging.Logger) *OverrideService {
	if logger == nil {
		logger = logging.Default()
	}
	return &OverrideService{
		matchupRepo: matchupRepo,
		standings:   standings,
		logger:      logger,
	}
}

// ApplyOverride records corrected scores on a matchup and marks it as
// manually overridden. The winner, when not supplied explicitly, is derived
// from the corrected scores. seasonID is needed only to refresh standings
// for matchups that are already complete.
func (s *OverrideService) ApplyOverride(ctx context.Context, seasonID int64, in OverrideInput) (matchup.Record, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.OverrideService.ApplyOverride")
	defer span.End()

	if in.MatchupID <= 0 {
		return matchup.Record{}, fmt.Errorf("%w: matchupId must be positive", ErrInvalidInput)
	}
	if in.TeamAScore < 0 || in.TeamBScore < 0 {
		return matchup.Record{}, fmt.Errorf("%w: scores must be non-negative", ErrInvalidInput)
	}

	rec, found, err := s.matchupRepo.GetByID(ctx, in.MatchupID)
	if err != nil {
		return matchup.Record{}, fmt.Errorf("%w: load matchup=%d: %v", ErrStore, in.MatchupID, err)
	}
	if !found {
		return matchup.Record{}, fmt.Errorf("%w: matchup=%d", ErrNotFound, in.MatchupID)
	}

	if in.WinnerTeamID != nil {
		winner := *in.WinnerTeamID
		if winner != rec.TeamAID && winner != rec.TeamBID {
			return matchup.Record{}, fmt.Errorf("%w: winner=%d is not a participant of matchup=%d", ErrInvalidInput, winner, rec.ID)
		}
	}

	rec.TeamAScore = in.TeamAScore
	rec.TeamBScore = in.TeamBScore
	rec.ManualOverride = true
	rec.ScoresFrozen = in.FreezeScores
	if in.Notes != "" {
		rec.Notes = in.Notes
	}
	if in.WinnerTeamID != nil {
		rec.WinnerTeamID = in.WinnerTeamID
	} else {
		rec.WinnerTeamID = matchup.DecideWinner(rec.TeamAID, rec.TeamBID, rec.TeamAScore, rec.TeamBScore)
	}

	if err := s.matchupRepo.Update(ctx, rec); err != nil {
		return matchup.Record{}, fmt.Errorf("%w: update matchup=%d: %v", ErrStore, rec.ID, err)
	}

	s.logger.InfoContext(ctx, "matchup override applied",
		"matchup_id", rec.ID,
		"conference_id", rec.ConferenceID,
		"week", rec.Week,
		"frozen", rec.ScoresFrozen,
	)

	if rec.Status == matchup.StatusComplete && seasonID > 0 {
		if err := s.standings.Recompute(ctx, seasonID, rec.ConferenceID); err != nil {
			s.logger.WarnContext(ctx, "standings refresh after override failed",
				"matchup_id", rec.ID,
				"conference_id", rec.ConferenceID,
				"error", err,
			)
		}
	}
	return rec, nil
}

// ClearOverride removes the manual flag so provider data flows through
// again on the next resolution. Frozen scores are unfrozen as well.
func (s *OverrideService) ClearOverride(ctx context.Context, seasonID, matchupID int64) (matchup.Record, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.OverrideService.ClearOverride")
	defer span.End()

	rec, found, err := s.matchupRepo.GetByID(ctx, matchupID)
	if err != nil {
		return matchup.Record{}, fmt.Errorf("%w: load matchup=%d: %v", ErrStore, matchupID, err)
	}
	if !found {
		return matchup.Record{}, fmt.Errorf("%w: matchup=%d", ErrNotFound, matchupID)
	}

	rec.ManualOverride = false
	rec.ScoresFrozen = false
	rec.WinnerTeamID = matchup.DecideWinner(rec.TeamAID, rec.TeamBID, rec.TeamAScore, rec.TeamBScore)

	if err := s.matchupRepo.Update(ctx, rec); err != nil {
		return matchup.Record{}, fmt.Errorf("%w: update matchup=%d: %v", ErrStore, rec.ID, err)
	}

	if rec.Status == matchup.StatusComplete && seasonID > 0 {
		if err := s.standings.Recompute(ctx, seasonID, rec.ConferenceID); err != nil {
			s.logger.WarnContext(ctx, "standings refresh after override clear failed",
				"matchup_id", rec.ID,
				"conference_id", rec.ConferenceID,
				"error", err,
			)
		}
	}
	return rec, nil
}
