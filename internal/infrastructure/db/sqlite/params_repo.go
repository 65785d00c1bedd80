package sqlitedb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vaultmint/vaultd/internal/core/domain"
)

type paramsRepository struct {
	db *sql.DB
}

func NewParamsRepository(config ...interface{}) (domain.ParamsRepository, error) {
	if len(config) != 1 {
		return nil, fmt.Errorf("invalid config")
	}
	db, ok := config[0].(*sql.DB)
	if !ok {
		return nil, fmt.Errorf("cannot open params repository: invalid config")
	}

	return &paramsRepository{db}, nil
}

func (r *paramsRepository) Get(ctx context.Context) (*domain.Params, error) {
	q := querierFromCtx(ctx, r.db)

	var fee, ratio, yield int64
	err := q.QueryRowContext(
		ctx,
		`SELECT fee_basis_points, min_collateral_ratio_percent, yield_rate_basis_points
		 FROM params WHERE id = 1`,
	).Scan(&fee, &ratio, &yield)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get params: %w", err)
	}

	return &domain.Params{
		FeeBasisPoints:            uint64(fee),
		MinCollateralRatioPercent: uint64(ratio),
		YieldRateBasisPoints:      uint64(yield),
	}, nil
}

func (r *paramsRepository) Upsert(ctx context.Context, params domain.Params) error {
	q := querierFromCtx(ctx, r.db)

	if _, err := q.ExecContext(
		ctx,
		`INSERT INTO params (
			id, fee_basis_points, min_collateral_ratio_percent, yield_rate_basis_points
		) VALUES (1, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			fee_basis_points = excluded.fee_basis_points,
			min_collateral_ratio_percent = excluded.min_collateral_ratio_percent,
			yield_rate_basis_points = excluded.yield_rate_basis_points`,
		int64(params.FeeBasisPoints), int64(params.MinCollateralRatioPercent),
		int64(params.YieldRateBasisPoints),
	); err != nil {
		return fmt.Errorf("failed to upsert params: %w", err)
	}
	return nil
}

func (r *paramsRepository) Close() {
	_ = r.db.Close()
}
