package postgres

import (
	"context"
	"fmt"

	sonic "github.com/bytedance/sonic"
	"github.com/jmoiron/sqlx"

	"github.com/dvail/conferencesync/internal/domain/syncrun"
	qb "github.com/dvail/conferencesync/internal/platform/querybuilder"
)

const syncStateName = "scheduler"

// SyncStateRepository persists the scheduler state as one serialized row.
// The schedule and bounded run history travel together so that a restart
// picks up exactly where the process left off.
type SyncStateRepository struct {
	db *sqlx.DB
}

func NewSyncStateRepository(db *sqlx.DB) *SyncStateRepository {
	return &SyncStateRepository{db: db}
}

func (r *SyncStateRepository) Load(ctx context.Context) (syncrun.State, bool, error) {
	query, args, err := qb.Select("payload").From("sync_state").
		Where(qb.Eq("name", syncStateName)).
		ToSQL()
	if err != nil {
		return syncrun.State{}, false, fmt.Errorf("build select sync state query: %w", err)
	}

	var payload []byte
	if err := r.db.GetContext(ctx, &payload, query, args...); err != nil {
		if isNotFound(err) {
			return syncrun.State{}, false, nil
		}
		return syncrun.State{}, false, fmt.Errorf("select sync state: %w", err)
	}

	var state syncrun.State
	if err := sonic.Unmarshal(payload, &state); err != nil {
		return syncrun.State{}, false, fmt.Errorf("decode sync state payload: %w", err)
	}
	return state, true, nil
}

func (r *SyncStateRepository) Save(ctx context.Context, state syncrun.State) error {
	payload, err := sonic.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode sync state payload: %w", err)
	}

	query, args, err := qb.InsertInto("sync_state").
		Columns("name", "payload").
		Values(syncStateName, payload).
		Suffix(`ON CONFLICT (name)
DO UPDATE SET
    payload = EXCLUDED.payload,
    updated_at = NOW()`).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build upsert sync state query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert sync state: %w", err)
	}
	return nil
}
