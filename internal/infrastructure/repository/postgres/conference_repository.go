package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/dvail/conferencesync/internal/domain/conference"
	qb "github.com/dvail/conferencesync/internal/platform/querybuilder"
)

type ConferenceRepository struct {
	db *sqlx.DB
}

func NewConferenceRepository(db *sqlx.DB) *ConferenceRepository {
	return &ConferenceRepository{db: db}
}

func (r *ConferenceRepository) ListActiveBySeason(ctx context.Context, seasonID int64) ([]conference.Conference, error) {
	query, args, err := qb.Select("*").From("conferences").
		Where(
			qb.Eq("season_id", seasonID),
			qb.Eq("active", true),
		).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select conferences by season query: %w", err)
	}

	var rows []conferenceTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select conferences season_id=%d: %w", seasonID, err)
	}

	out := make([]conference.Conference, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapConferenceRow(row))
	}
	return out, nil
}

func (r *ConferenceRepository) GetByID(ctx context.Context, conferenceID int64) (conference.Conference, bool, error) {
	query, args, err := qb.Select("*").From("conferences").
		Where(qb.Eq("id", conferenceID)).
		ToSQL()
	if err != nil {
		return conference.Conference{}, false, fmt.Errorf("build select conference query: %w", err)
	}

	var row conferenceTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return conference.Conference{}, false, nil
		}
		return conference.Conference{}, false, fmt.Errorf("select conference id=%d: %w", conferenceID, err)
	}
	return mapConferenceRow(row), true, nil
}

func mapConferenceRow(row conferenceTableModel) conference.Conference {
	return conference.Conference{
		ID:               row.ID,
		Name:             row.Name,
		ExternalLeagueID: row.ExternalLeagueID,
		SeasonID:         row.SeasonID,
		Active:           row.Active,
	}
}
