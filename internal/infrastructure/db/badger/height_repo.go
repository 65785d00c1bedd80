package badgerdb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/timshannon/badgerhold/v4"
	"github.com/vaultmint/vaultd/internal/core/ports"
)

const heightKey = "chain_height"

type heightRepository struct {
	store *badgerhold.Store
}

type heightDTO struct {
	Height uint64
}

func NewHeightRepository(config ...interface{}) (ports.HeightSource, error) {
	store, err := storeFromConfig(config...)
	if err != nil {
		return nil, fmt.Errorf("cannot open height repository: %s", err)
	}
	return &heightRepository{store}, nil
}

func (r *heightRepository) CurrentHeight(ctx context.Context) (uint64, error) {
	var dto heightDTO
	var err error
	if ctx.Value("tx") != nil {
		tx := ctx.Value("tx").(*badger.Txn)
		err = r.store.TxGet(tx, heightKey, &dto)
	} else {
		err = r.store.Get(heightKey, &dto)
	}
	if err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return dto.Height, nil
}

func (r *heightRepository) Advance(ctx context.Context, blocks uint64) (uint64, error) {
	var dto heightDTO
	var getFn func() error
	var upsertFn func() error
	if ctx.Value("tx") != nil {
		tx := ctx.Value("tx").(*badger.Txn)
		getFn = func() error {
			return r.store.TxGet(tx, heightKey, &dto)
		}
		upsertFn = func() error {
			return r.store.TxUpsert(tx, heightKey, &dto)
		}
	} else {
		getFn = func() error {
			return r.store.Get(heightKey, &dto)
		}
		upsertFn = func() error {
			return r.store.Upsert(heightKey, &dto)
		}
	}

	if err := getFn(); err != nil && !errors.Is(err, badgerhold.ErrNotFound) {
		return 0, err
	}
	dto.Height += blocks

	if err := upsertFn(); err != nil {
		if errors.Is(err, badger.ErrConflict) {
			attempts := 1
			for errors.Is(err, badger.ErrConflict) && attempts <= maxRetries {
				time.Sleep(100 * time.Millisecond)
				err = upsertFn()
				attempts++
			}
		}
		if err != nil {
			return 0, err
		}
	}
	return dto.Height, nil
}

func (r *heightRepository) Close() {
	// nolint:all
	r.store.Close()
}
