package badgerdb

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/timshannon/badgerhold/v4"
	"github.com/vaultmint/vaultd/internal/core/domain"
)

type listingRepository struct {
	store *badgerhold.Store
}

func NewListingRepository(config ...interface{}) (domain.ListingRepository, error) {
	store, err := storeFromConfig(config...)
	if err != nil {
		return nil, fmt.Errorf("cannot open listing repository: %s", err)
	}
	return &listingRepository{store}, nil
}

func (r *listingRepository) Add(ctx context.Context, listing domain.Listing) error {
	var insertFn func() error
	if ctx.Value("tx") != nil {
		tx := ctx.Value("tx").(*badger.Txn)
		insertFn = func() error {
			return r.store.TxInsert(tx, listing.AssetId, listing)
		}
	} else {
		insertFn = func() error {
			return r.store.Insert(listing.AssetId, listing)
		}
	}
	if err := insertFn(); err != nil {
		if errors.Is(err, badgerhold.ErrKeyExists) {
			return fmt.Errorf("listing for asset %d already exists", listing.AssetId)
		}
		if errors.Is(err, badger.ErrConflict) {
			attempts := 1
			for errors.Is(err, badger.ErrConflict) && attempts <= maxRetries {
				time.Sleep(100 * time.Millisecond)
				err = insertFn()
				attempts++
			}
		}
		return err
	}
	return nil
}

func (r *listingRepository) Update(ctx context.Context, listing domain.Listing) error {
	var updateFn func() error
	if ctx.Value("tx") != nil {
		tx := ctx.Value("tx").(*badger.Txn)
		updateFn = func() error {
			return r.store.TxUpdate(tx, listing.AssetId, listing)
		}
	} else {
		updateFn = func() error {
			return r.store.Update(listing.AssetId, listing)
		}
	}
	if err := updateFn(); err != nil {
		if errors.Is(err, badger.ErrConflict) {
			attempts := 1
			for errors.Is(err, badger.ErrConflict) && attempts <= maxRetries {
				time.Sleep(100 * time.Millisecond)
				err = updateFn()
				attempts++
			}
		}
		return err
	}
	return nil
}

func (r *listingRepository) Get(ctx context.Context, assetId uint64) (*domain.Listing, error) {
	var listing domain.Listing
	var err error
	if ctx.Value("tx") != nil {
		tx := ctx.Value("tx").(*badger.Txn)
		err = r.store.TxGet(tx, assetId, &listing)
	} else {
		err = r.store.Get(assetId, &listing)
	}
	if err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &listing, nil
}

func (r *listingRepository) GetActive(ctx context.Context) ([]domain.Listing, error) {
	listings := make([]domain.Listing, 0)
	query := badgerhold.Where("Active").Eq(true)
	var err error
	if ctx.Value("tx") != nil {
		tx := ctx.Value("tx").(*badger.Txn)
		err = r.store.TxFind(tx, &listings, query)
	} else {
		err = r.store.Find(&listings, query)
	}
	if err != nil && !errors.Is(err, badgerhold.ErrNotFound) {
		return nil, err
	}

	sort.Slice(listings, func(i, j int) bool {
		return listings[i].AssetId < listings[j].AssetId
	})
	return listings, nil
}

func (r *listingRepository) Close() {
	// nolint:all
	r.store.Close()
}
