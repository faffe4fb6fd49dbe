package settings

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type propertyRepoPG struct{ pool *pgxpool.Pool }

func NewPropertyRepoPG(pool *pgxpool.Pool) PropertyRepository {
	return &propertyRepoPG{pool: pool}
}

func (r *propertyRepoPG) Get(ctx context.Context, name string) (*Property, error) {
	var p Property
	err := r.pool.QueryRow(ctx,
		`SELECT name, value, updated_at FROM property WHERE name = $1`, name).
		Scan(&p.Name, &p.Value, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *propertyRepoPG) Upsert(ctx context.Context, name, value string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO property (name, value) VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`,
		name, value)
	return err
}
