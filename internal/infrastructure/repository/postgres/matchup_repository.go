package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/dvail/conferencesync/internal/domain/matchup"
	qb "github.com/dvail/conferencesync/internal/platform/querybuilder"
)

type MatchupRepository struct {
	db *sqlx.DB
}

func NewMatchupRepository(db *sqlx.DB) *MatchupRepository {
	return &MatchupRepository{db: db}
}

func (r *MatchupRepository) ListByConferenceWeek(ctx context.Context, conferenceID int64, week int) ([]matchup.Record, error) {
	return r.list(ctx, "list matchups",
		qb.Eq("conference_id", conferenceID),
		qb.Eq("week", week),
	)
}

func (r *MatchupRepository) ListPendingByConferenceWeek(ctx context.Context, conferenceID int64, week int) ([]matchup.Record, error) {
	return r.list(ctx, "list pending matchups",
		qb.Eq("conference_id", conferenceID),
		qb.Eq("week", week),
		qb.Expr("status <> ?", string(matchup.StatusComplete)),
	)
}

// ListCompleteBySeason returns every completed matchup of the season,
// optionally restricted to one conference (0 = all). The season scope is
// resolved through the conference table rather than denormalized onto
// matchup rows.
func (r *MatchupRepository) ListCompleteBySeason(ctx context.Context, seasonID int64, conferenceID int64) ([]matchup.Record, error) {
	confQuery, confArgs, err := qb.Select("id").From("conferences").
		Where(qb.Eq("season_id", seasonID)).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select season conferences query: %w", err)
	}

	var conferenceIDs []int64
	if err := r.db.SelectContext(ctx, &conferenceIDs, confQuery, confArgs...); err != nil {
		return nil, fmt.Errorf("select season conferences season_id=%d: %w", seasonID, err)
	}

	scope := make([]any, 0, len(conferenceIDs))
	for _, id := range conferenceIDs {
		if conferenceID > 0 && id != conferenceID {
			continue
		}
		scope = append(scope, id)
	}
	if len(scope) == 0 {
		return nil, nil
	}

	return r.list(ctx, "list completed matchups",
		qb.In("conference_id", scope),
		qb.Eq("status", string(matchup.StatusComplete)),
	)
}

func (r *MatchupRepository) GetByID(ctx context.Context, matchupID int64) (matchup.Record, bool, error) {
	query, args, err := qb.Select("*").From("matchups").
		Where(qb.Eq("id", matchupID)).
		ToSQL()
	if err != nil {
		return matchup.Record{}, false, fmt.Errorf("build select matchup query: %w", err)
	}

	var row matchupTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return matchup.Record{}, false, nil
		}
		return matchup.Record{}, false, fmt.Errorf("select matchup id=%d: %w", matchupID, err)
	}
	return mapMatchupRow(row), true, nil
}

func (r *MatchupRepository) Update(ctx context.Context, record matchup.Record) error {
	query, args, err := qb.Update("matchups").
		Set("team_a_score", record.TeamAScore).
		Set("team_b_score", record.TeamBScore).
		Set("winner_team_id", ptrToNullInt64(record.WinnerTeamID)).
		Set("manual_override", record.ManualOverride).
		Set("scores_frozen", record.ScoresFrozen).
		Set("status", string(record.Status)).
		Set("notes", record.Notes).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("id", record.ID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update matchup query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update matchup id=%d: %w", record.ID, err)
	}
	return nil
}

func (r *MatchupRepository) list(ctx context.Context, label string, conditions ...qb.Condition) ([]matchup.Record, error) {
	query, args, err := qb.Select("*").From("matchups").
		Where(conditions...).
		OrderBy("week", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build %s query: %w", label, err)
	}

	var rows []matchupTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", label, err)
	}

	out := make([]matchup.Record, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapMatchupRow(row))
	}
	return out, nil
}
