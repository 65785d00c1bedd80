package sqlitedb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vaultmint/vaultd/internal/core/domain"
)

type assetRepository struct {
	db *sql.DB
}

func NewAssetRepository(config ...interface{}) (domain.AssetRepository, error) {
	if len(config) != 1 {
		return nil, fmt.Errorf("invalid config")
	}
	db, ok := config[0].(*sql.DB)
	if !ok {
		return nil, fmt.Errorf("cannot open asset repository: invalid config")
	}

	return &assetRepository{db}, nil
}

func (r *assetRepository) NextId(ctx context.Context) (uint64, error) {
	q := querierFromCtx(ctx, r.db)

	var lastIssued int64
	err := q.QueryRowContext(
		ctx, "SELECT last_issued FROM asset_sequence WHERE id = 1",
	).Scan(&lastIssued)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("failed to read asset sequence: %w", err)
	}

	next := lastIssued + 1
	if _, err := q.ExecContext(
		ctx,
		`INSERT INTO asset_sequence (id, last_issued) VALUES (1, ?)
		 ON CONFLICT (id) DO UPDATE SET last_issued = excluded.last_issued`,
		next,
	); err != nil {
		return 0, fmt.Errorf("failed to bump asset sequence: %w", err)
	}
	return uint64(next), nil
}

func (r *assetRepository) Add(ctx context.Context, asset domain.Asset) error {
	q := querierFromCtx(ctx, r.db)

	if _, err := q.ExecContext(
		ctx,
		`INSERT INTO asset (
			id, creator, uri, collateral_amount, staked, stake_start_height, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		int64(asset.Id), asset.Creator, asset.Uri, int64(asset.CollateralAmount),
		asset.Staked, int64(asset.StakeStartHeight), time.Now().UnixMilli(),
	); err != nil {
		return fmt.Errorf("failed to insert asset %d: %w", asset.Id, err)
	}
	return nil
}

func (r *assetRepository) Update(ctx context.Context, asset domain.Asset) error {
	q := querierFromCtx(ctx, r.db)

	res, err := q.ExecContext(
		ctx,
		`UPDATE asset SET
			creator = ?, uri = ?, collateral_amount = ?, staked = ?,
			stake_start_height = ?, updated_at = ?
		 WHERE id = ?`,
		asset.Creator, asset.Uri, int64(asset.CollateralAmount), asset.Staked,
		int64(asset.StakeStartHeight), time.Now().UnixMilli(), int64(asset.Id),
	)
	if err != nil {
		return fmt.Errorf("failed to update asset %d: %w", asset.Id, err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("asset %d not found", asset.Id)
	}
	return nil
}

func (r *assetRepository) Get(ctx context.Context, assetId uint64) (*domain.Asset, error) {
	q := querierFromCtx(ctx, r.db)

	row := q.QueryRowContext(
		ctx,
		`SELECT id, creator, uri, collateral_amount, staked, stake_start_height
		 FROM asset WHERE id = ?`,
		int64(assetId),
	)
	asset, err := scanAsset(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get asset %d: %w", assetId, err)
	}
	return asset, nil
}

func (r *assetRepository) GetAll(ctx context.Context) ([]domain.Asset, error) {
	return r.findAssets(
		ctx,
		`SELECT id, creator, uri, collateral_amount, staked, stake_start_height
		 FROM asset ORDER BY id ASC`,
	)
}

func (r *assetRepository) GetStaked(ctx context.Context) ([]domain.Asset, error) {
	return r.findAssets(
		ctx,
		`SELECT id, creator, uri, collateral_amount, staked, stake_start_height
		 FROM asset WHERE staked = true ORDER BY id ASC`,
	)
}

func (r *assetRepository) Close() {
	_ = r.db.Close()
}

func (r *assetRepository) findAssets(
	ctx context.Context, query string,
) ([]domain.Asset, error) {
	q := querierFromCtx(ctx, r.db)

	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query assets: %w", err)
	}
	// nolint
	defer rows.Close()

	assets := make([]domain.Asset, 0)
	for rows.Next() {
		asset, err := scanAsset(rows)
		if err != nil {
			return nil, err
		}
		assets = append(assets, *asset)
	}
	return assets, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAsset(row rowScanner) (*domain.Asset, error) {
	var id, collateralAmount, stakeStartHeight int64
	var creator, uri string
	var staked bool
	if err := row.Scan(
		&id, &creator, &uri, &collateralAmount, &staked, &stakeStartHeight,
	); err != nil {
		return nil, err
	}
	return &domain.Asset{
		Id:               uint64(id),
		Creator:          creator,
		Uri:              uri,
		CollateralAmount: uint64(collateralAmount),
		Staked:           staked,
		StakeStartHeight: uint64(stakeStartHeight),
	}, nil
}
