package sqlitedb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vaultmint/vaultd/internal/core/domain"
)

type listingRepository struct {
	db *sql.DB
}

func NewListingRepository(config ...interface{}) (domain.ListingRepository, error) {
	if len(config) != 1 {
		return nil, fmt.Errorf("invalid config")
	}
	db, ok := config[0].(*sql.DB)
	if !ok {
		return nil, fmt.Errorf("cannot open listing repository: invalid config")
	}

	return &listingRepository{db}, nil
}

func (r *listingRepository) Add(ctx context.Context, listing domain.Listing) error {
	q := querierFromCtx(ctx, r.db)

	if _, err := q.ExecContext(
		ctx,
		`INSERT INTO listing (asset_id, price, seller, active) VALUES (?, ?, ?, ?)`,
		int64(listing.AssetId), int64(listing.Price), listing.Seller, listing.Active,
	); err != nil {
		return fmt.Errorf("failed to insert listing for asset %d: %w", listing.AssetId, err)
	}
	return nil
}

func (r *listingRepository) Update(ctx context.Context, listing domain.Listing) error {
	q := querierFromCtx(ctx, r.db)

	res, err := q.ExecContext(
		ctx,
		`UPDATE listing SET price = ?, seller = ?, active = ? WHERE asset_id = ?`,
		int64(listing.Price), listing.Seller, listing.Active, int64(listing.AssetId),
	)
	if err != nil {
		return fmt.Errorf("failed to update listing for asset %d: %w", listing.AssetId, err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("no listing for asset %d", listing.AssetId)
	}
	return nil
}

func (r *listingRepository) Get(ctx context.Context, assetId uint64) (*domain.Listing, error) {
	q := querierFromCtx(ctx, r.db)

	var id, price int64
	var seller string
	var active bool
	err := q.QueryRowContext(
		ctx,
		`SELECT asset_id, price, seller, active FROM listing WHERE asset_id = ?`,
		int64(assetId),
	).Scan(&id, &price, &seller, &active)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get listing for asset %d: %w", assetId, err)
	}

	return &domain.Listing{
		AssetId: uint64(id),
		Price:   uint64(price),
		Seller:  seller,
		Active:  active,
	}, nil
}

func (r *listingRepository) GetActive(ctx context.Context) ([]domain.Listing, error) {
	q := querierFromCtx(ctx, r.db)

	rows, err := q.QueryContext(
		ctx,
		`SELECT asset_id, price, seller, active FROM listing
		 WHERE active = true ORDER BY asset_id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query active listings: %w", err)
	}
	// nolint
	defer rows.Close()

	listings := make([]domain.Listing, 0)
	for rows.Next() {
		var id, price int64
		var seller string
		var active bool
		if err := rows.Scan(&id, &price, &seller, &active); err != nil {
			return nil, err
		}
		listings = append(listings, domain.Listing{
			AssetId: uint64(id),
			Price:   uint64(price),
			Seller:  seller,
			Active:  active,
		})
	}
	return listings, rows.Err()
}

func (r *listingRepository) Close() {
	_ = r.db.Close()
}
