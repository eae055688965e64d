package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/dvail/conferencesync/internal/domain/teamrecord"
	qb "github.com/dvail/conferencesync/internal/platform/querybuilder"
)

type TeamRecordRepository struct {
	db *sqlx.DB
}

func NewTeamRecordRepository(db *sqlx.DB) *TeamRecordRepository {
	return &TeamRecordRepository{db: db}
}

func (r *TeamRecordRepository) ListBySeason(ctx context.Context, seasonID int64, conferenceID int64) ([]teamrecord.Record, error) {
	conditions := []qb.Condition{qb.Eq("season_id", seasonID), qb.IsNull("deleted_at")}
	if conferenceID > 0 {
		conditions = append(conditions, qb.Eq("conference_id", conferenceID))
	}
	query, args, err := qb.Select("*").From("team_records").
		Where(conditions...).
		OrderBy("conference_id", "conference_rank", "team_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list team records query: %w", err)
	}

	var rows []teamRecordTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list team records season_id=%d: %w", seasonID, err)
	}

	out := make([]teamrecord.Record, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapTeamRecordRow(row))
	}
	return out, nil
}

// ReplaceScope swaps the record set for (season, conference) in one
// transaction. conferenceID 0 replaces the whole season.
func (r *TeamRecordRepository) ReplaceScope(ctx context.Context, seasonID int64, conferenceID int64, records []teamrecord.Record) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx replace team records: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	conditions := []qb.Condition{qb.Eq("season_id", seasonID)}
	if conferenceID > 0 {
		conditions = append(conditions, qb.Eq("conference_id", conferenceID))
	}
	clearQuery, clearArgs, err := qb.Update("team_records").
		SetExpr("deleted_at", "NOW()").
		Where(append(conditions, qb.IsNull("deleted_at"))...).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build clear team records query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, clearQuery, clearArgs...); err != nil {
		return fmt.Errorf("clear team records: %w", err)
	}

	for _, item := range records {
		insertModel := teamRecordInsertModel{
			TeamID:             item.TeamID,
			ConferenceID:       item.ConferenceID,
			SeasonID:           item.SeasonID,
			Wins:               item.Wins,
			Losses:             item.Losses,
			Ties:               item.Ties,
			PointsFor:          item.PointsFor,
			PointsAgainst:      item.PointsAgainst,
			WinPct:             item.WinPct,
			ConferenceRank:     item.ConferenceRank,
			OverallRank:        item.OverallRank,
			PlayoffEligible:    item.PlayoffEligible,
			ConferenceChampion: item.ConferenceChampion,
			UpdatedAt:          item.UpdatedAt,
		}
		query, args, err := qb.InsertModel("team_records", insertModel, `ON CONFLICT (season_id, conference_id, team_id)
DO UPDATE SET
    wins = EXCLUDED.wins,
    losses = EXCLUDED.losses,
    ties = EXCLUDED.ties,
    points_for = EXCLUDED.points_for,
    points_against = EXCLUDED.points_against,
    win_pct = EXCLUDED.win_pct,
    conference_rank = EXCLUDED.conference_rank,
    overall_rank = EXCLUDED.overall_rank,
    playoff_eligible = EXCLUDED.playoff_eligible,
    conference_champion = EXCLUDED.conference_champion,
    updated_at = EXCLUDED.updated_at,
    deleted_at = NULL`)
		if err != nil {
			return fmt.Errorf("build upsert team record query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert team record team=%d conference=%d: %w", item.TeamID, item.ConferenceID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace team records tx: %w", err)
	}
	return nil
}

func (r *TeamRecordRepository) SetConferenceChampions(ctx context.Context, seasonID int64, championTeamIDs []int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx set champions: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	resetQuery, resetArgs, err := qb.Update("team_records").
		Set("conference_champion", false).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("season_id", seasonID), qb.IsNull("deleted_at")).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build reset champions query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, resetQuery, resetArgs...); err != nil {
		return fmt.Errorf("reset champions: %w", err)
	}

	if len(championTeamIDs) > 0 {
		ids := make([]any, 0, len(championTeamIDs))
		for _, teamID := range championTeamIDs {
			ids = append(ids, teamID)
		}
		markQuery, markArgs, err := qb.Update("team_records").
			Set("conference_champion", true).
			SetExpr("updated_at", "NOW()").
			Where(
				qb.Eq("season_id", seasonID),
				qb.In("team_id", ids),
				qb.IsNull("deleted_at"),
			).
			ToSQL()
		if err != nil {
			return fmt.Errorf("build mark champions query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, markQuery, markArgs...); err != nil {
			return fmt.Errorf("mark champions: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit set champions tx: %w", err)
	}
	return nil
}
