package audit

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type entryRepoPG struct{ pool *pgxpool.Pool }

func NewEntryRepoPG(pool *pgxpool.Pool) EntryRepository {
	return &entryRepoPG{pool: pool}
}

func (r *entryRepoPG) Create(ctx context.Context, e *Entry) error {
	e.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO audit_log (id, action, record_id, detail)
		VALUES ($1,$2,$3,$4)`,
		e.ID, e.Action, e.RecordID, e.Detail)
	return err
}

func (r *entryRepoPG) ListRecent(ctx context.Context, limit int) ([]*Entry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, action, record_id, detail, recorded
		FROM audit_log ORDER BY recorded DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Action, &e.RecordID, &e.Detail, &e.Recorded); err != nil {
			return nil, err
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}
