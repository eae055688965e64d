package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/dvail/conferencesync/internal/domain/rosterlink"
	qb "github.com/dvail/conferencesync/internal/platform/querybuilder"
)

type RosterLinkRepository struct {
	db *sqlx.DB
}

func NewRosterLinkRepository(db *sqlx.DB) *RosterLinkRepository {
	return &RosterLinkRepository{db: db}
}

func (r *RosterLinkRepository) List(ctx context.Context, conferenceIDs []int64) ([]rosterlink.Link, error) {
	builder := qb.Select("*").From("roster_links")
	if len(conferenceIDs) > 0 {
		ids := make([]any, 0, len(conferenceIDs))
		for _, conferenceID := range conferenceIDs {
			ids = append(ids, conferenceID)
		}
		builder = builder.Where(qb.In("conference_id", ids))
	}
	query, args, err := builder.OrderBy("conference_id", "team_id").ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select roster links query: %w", err)
	}

	var rows []rosterLinkTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select roster links: %w", err)
	}

	out := make([]rosterlink.Link, 0, len(rows))
	for _, row := range rows {
		out = append(out, rosterlink.Link{
			TeamID:           row.TeamID,
			ConferenceID:     row.ConferenceID,
			ExternalRosterID: row.ExternalRosterID,
			Active:           row.Active,
		})
	}
	return out, nil
}
