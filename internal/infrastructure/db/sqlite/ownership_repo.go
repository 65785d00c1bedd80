package sqlitedb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vaultmint/vaultd/internal/core/domain"
)

type ownershipRepository struct {
	db *sql.DB
}

func NewOwnershipRepository(config ...interface{}) (domain.OwnershipRepository, error) {
	if len(config) != 1 {
		return nil, fmt.Errorf("invalid config")
	}
	db, ok := config[0].(*sql.DB)
	if !ok {
		return nil, fmt.Errorf("cannot open ownership repository: invalid config")
	}

	return &ownershipRepository{db}, nil
}

func (r *ownershipRepository) OwnerOf(
	ctx context.Context, assetId uint64,
) (string, error) {
	q := querierFromCtx(ctx, r.db)

	var owner string
	err := q.QueryRowContext(
		ctx, `SELECT owner FROM ownership WHERE asset_id = ?`, int64(assetId),
	).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get owner of asset %d: %w", assetId, err)
	}
	return owner, nil
}

func (r *ownershipRepository) SetOwner(
	ctx context.Context, assetId uint64, owner string,
) error {
	q := querierFromCtx(ctx, r.db)

	if _, err := q.ExecContext(
		ctx,
		`INSERT INTO ownership (asset_id, owner) VALUES (?, ?)
		 ON CONFLICT (asset_id) DO UPDATE SET owner = excluded.owner`,
		int64(assetId), owner,
	); err != nil {
		return fmt.Errorf("failed to set owner of asset %d: %w", assetId, err)
	}
	return nil
}

// TransferOwner reassigns the holder of an asset, refusing to move from
// anyone but the currently recorded one.
func (r *ownershipRepository) TransferOwner(
	ctx context.Context, assetId uint64, from, to string,
) error {
	q := querierFromCtx(ctx, r.db)

	res, err := q.ExecContext(
		ctx, `UPDATE ownership SET owner = ? WHERE asset_id = ? AND owner = ?`,
		to, int64(assetId), from,
	)
	if err != nil {
		return fmt.Errorf("failed to transfer owner of asset %d: %w", assetId, err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("asset %d is not held by %s", assetId, from)
	}
	return nil
}

func (r *ownershipRepository) Close() {
	_ = r.db.Close()
}
