package lookup

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type listRepoPG struct{ pool *pgxpool.Pool }

func NewListRepoPG(pool *pgxpool.Pool) ListRepository {
	return &listRepoPG{pool: pool}
}

func (r *listRepoPG) FindByName(ctx context.Context, name string) (*LookupList, error) {
	var l LookupList
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, title, description, active, created_by, created_at
		FROM lookup_list WHERE name = $1`, name).
		Scan(&l.ID, &l.Name, &l.Title, &l.Description, &l.Active, &l.CreatedBy, &l.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *listRepoPG) Create(ctx context.Context, l *LookupList) error {
	l.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO lookup_list (id, name, title, description, active, created_by)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		l.ID, l.Name, l.Title, l.Description, l.Active, l.CreatedBy)
	return err
}

func (r *listRepoPG) RemoveItems(ctx context.Context, listID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM lookup_list_item WHERE list_id = $1`, listID)
	return err
}

func (r *listRepoPG) AddItem(ctx context.Context, item *LookupListItem) error {
	item.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO lookup_list_item (id, list_id, label, value, display_order, active, created_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		item.ID, item.ListID, item.Label, item.Value, item.DisplayOrder, item.Active, item.CreatedBy)
	return err
}

func (r *listRepoPG) ListItems(ctx context.Context, listID uuid.UUID) ([]*LookupListItem, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, list_id, label, value, display_order, active, created_by, created_at
		FROM lookup_list_item WHERE list_id = $1 ORDER BY display_order`, listID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*LookupListItem
	for rows.Next() {
		var it LookupListItem
		if err := rows.Scan(&it.ID, &it.ListID, &it.Label, &it.Value, &it.DisplayOrder,
			&it.Active, &it.CreatedBy, &it.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, &it)
	}
	return items, rows.Err()
}
