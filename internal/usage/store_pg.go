package usage

import (
	"context"
	"database/sql"
	"errors"
)

// pgStore persists quota records in the usage table.
type pgStore struct {
	db *sql.DB
}

// NewPostgresService builds a Service backed by Postgres.
func NewPostgresService(db *sql.DB) *Service {
	return NewService(&pgStore{db: db})
}

func (p *pgStore) Get(ctx context.Context, userID string) (record, bool, error) {
	const q = `SELECT plan, used, to_char(day, 'YYYY-MM-DD') FROM usage WHERE user_id = $1`

	var rec record
	err := p.db.QueryRowContext(ctx, q, userID).Scan(&rec.Plan, &rec.Used, &rec.Day)
	if errors.Is(err, sql.ErrNoRows) {
		return record{}, false, nil
	}
	if err != nil {
		return record{}, false, err
	}
	return rec, true, nil
}

func (p *pgStore) Save(ctx context.Context, userID string, rec record) error {
	const q = `
		INSERT INTO usage (user_id, plan, used, day, updated_at)
		VALUES ($1, $2, $3, $4::date, now())
		ON CONFLICT (user_id) DO UPDATE
		SET plan = EXCLUDED.plan, used = EXCLUDED.used, day = EXCLUDED.day, updated_at = now()`

	_, err := p.db.ExecContext(ctx, q, userID, rec.Plan, rec.Used, rec.Day)
	return err
}
