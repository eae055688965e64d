package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/dvail/conferencesync/internal/domain/season"
	qb "github.com/dvail/conferencesync/internal/platform/querybuilder"
)

type SeasonRepository struct {
	db *sqlx.DB
}

func NewSeasonRepository(db *sqlx.DB) *SeasonRepository {
	return &SeasonRepository{db: db}
}

func (r *SeasonRepository) GetActive(ctx context.Context) (season.Season, bool, error) {
	query, args, err := qb.Select("*").From("seasons").
		Where(qb.Eq("active", true)).
		OrderBy("year DESC").
		Limit(1).
		ToSQL()
	if err != nil {
		return season.Season{}, false, fmt.Errorf("build select active season query: %w", err)
	}

	var row seasonTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return season.Season{}, false, nil
		}
		return season.Season{}, false, fmt.Errorf("select active season: %w", err)
	}
	return mapSeasonRow(row), true, nil
}

func (r *SeasonRepository) GetByID(ctx context.Context, seasonID int64) (season.Season, bool, error) {
	query, args, err := qb.Select("*").From("seasons").
		Where(qb.Eq("id", seasonID)).
		ToSQL()
	if err != nil {
		return season.Season{}, false, fmt.Errorf("build select season query: %w", err)
	}

	var row seasonTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return season.Season{}, false, nil
		}
		return season.Season{}, false, fmt.Errorf("select season id=%d: %w", seasonID, err)
	}
	return mapSeasonRow(row), true, nil
}

func (r *SeasonRepository) UpdateCurrentWeek(ctx context.Context, seasonID int64, week int) error {
	query, args, err := qb.Update("seasons").
		Set("current_week", week).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("id", seasonID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update season week query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update season id=%d week=%d: %w", seasonID, week, err)
	}
	return nil
}

func mapSeasonRow(row seasonTableModel) season.Season {
	return season.Season{
		ID:          row.ID,
		Year:        row.Year,
		CurrentWeek: row.CurrentWeek,
		Active:      row.Active,
	}
}
