package sqlitedb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vaultmint/vaultd/internal/core/ports"
)

type heightRepository struct {
	db *sql.DB
}

func NewHeightRepository(config ...interface{}) (ports.HeightSource, error) {
	if len(config) != 1 {
		return nil, fmt.Errorf("invalid config")
	}
	db, ok := config[0].(*sql.DB)
	if !ok {
		return nil, fmt.Errorf("cannot open height repository: invalid config")
	}

	return &heightRepository{db}, nil
}

func (r *heightRepository) CurrentHeight(ctx context.Context) (uint64, error) {
	q := querierFromCtx(ctx, r.db)

	var height int64
	err := q.QueryRowContext(
		ctx, `SELECT height FROM chain_height WHERE id = 1`,
	).Scan(&height)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get current height: %w", err)
	}
	return uint64(height), nil
}

func (r *heightRepository) Advance(ctx context.Context, blocks uint64) (uint64, error) {
	q := querierFromCtx(ctx, r.db)

	current, err := r.CurrentHeight(ctx)
	if err != nil {
		return 0, err
	}
	next := current + blocks

	if _, err := q.ExecContext(
		ctx,
		`INSERT INTO chain_height (id, height) VALUES (1, ?)
		 ON CONFLICT (id) DO UPDATE SET height = excluded.height`,
		int64(next),
	); err != nil {
		return 0, fmt.Errorf("failed to advance height: %w", err)
	}
	return next, nil
}

func (r *heightRepository) Close() {
	_ = r.db.Close()
}
