package badgerdb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/timshannon/badgerhold/v4"
	"github.com/vaultmint/vaultd/internal/core/domain"
)

type ownershipRepository struct {
	store *badgerhold.Store
}

type ownershipDTO struct {
	AssetId uint64
	Owner   string
}

func NewOwnershipRepository(config ...interface{}) (domain.OwnershipRepository, error) {
	store, err := storeFromConfig(config...)
	if err != nil {
		return nil, fmt.Errorf("cannot open ownership repository: %s", err)
	}
	return &ownershipRepository{store}, nil
}

func (r *ownershipRepository) OwnerOf(
	ctx context.Context, assetId uint64,
) (string, error) {
	var dto ownershipDTO
	var err error
	if ctx.Value("tx") != nil {
		tx := ctx.Value("tx").(*badger.Txn)
		err = r.store.TxGet(tx, assetId, &dto)
	} else {
		err = r.store.Get(assetId, &dto)
	}
	if err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return "", nil
		}
		return "", err
	}
	return dto.Owner, nil
}

func (r *ownershipRepository) SetOwner(
	ctx context.Context, assetId uint64, owner string,
) error {
	return r.upsertOwner(ctx, ownershipDTO{AssetId: assetId, Owner: owner})
}

// TransferOwner reassigns the holder of an asset, refusing to move from
// anyone but the currently recorded one.
func (r *ownershipRepository) TransferOwner(
	ctx context.Context, assetId uint64, from, to string,
) error {
	var dto ownershipDTO
	var err error
	if ctx.Value("tx") != nil {
		tx := ctx.Value("tx").(*badger.Txn)
		err = r.store.TxGet(tx, assetId, &dto)
	} else {
		err = r.store.Get(assetId, &dto)
	}
	if err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return fmt.Errorf("no ownership record for asset %d", assetId)
		}
		return err
	}
	if dto.Owner != from {
		return fmt.Errorf("asset %d is not held by %s", assetId, from)
	}

	dto.Owner = to
	return r.upsertOwner(ctx, dto)
}

func (r *ownershipRepository) Close() {
	// nolint:all
	r.store.Close()
}

func (r *ownershipRepository) upsertOwner(ctx context.Context, dto ownershipDTO) error {
	var upsertFn func() error
	if ctx.Value("tx") != nil {
		tx := ctx.Value("tx").(*badger.Txn)
		upsertFn = func() error {
			return r.store.TxUpsert(tx, dto.AssetId, dto)
		}
	} else {
		upsertFn = func() error {
			return r.store.Upsert(dto.AssetId, dto)
		}
	}
	if err := upsertFn(); err != nil {
		if errors.Is(err, badger.ErrConflict) {
			attempts := 1
			for errors.Is(err, badger.ErrConflict) && attempts <= maxRetries {
				time.Sleep(100 * time.Millisecond)
				err = upsertFn()
				attempts++
			}
		}
		return err
	}
	return nil
}
