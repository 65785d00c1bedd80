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

const paramsKey = "params"

type paramsRepository struct {
	store *badgerhold.Store
}

func NewParamsRepository(config ...interface{}) (domain.ParamsRepository, error) {
	store, err := storeFromConfig(config...)
	if err != nil {
		return nil, fmt.Errorf("cannot open params repository: %s", err)
	}
	return &paramsRepository{store}, nil
}

func (r *paramsRepository) Get(ctx context.Context) (*domain.Params, error) {
	var params domain.Params
	var err error
	if ctx.Value("tx") != nil {
		tx := ctx.Value("tx").(*badger.Txn)
		err = r.store.TxGet(tx, paramsKey, &params)
	} else {
		err = r.store.Get(paramsKey, &params)
	}
	if err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get params: %w", err)
	}
	return &params, nil
}

func (r *paramsRepository) Upsert(ctx context.Context, params domain.Params) error {
	var upsertFn func() error
	if ctx.Value("tx") != nil {
		tx := ctx.Value("tx").(*badger.Txn)
		upsertFn = func() error {
			return r.store.TxUpsert(tx, paramsKey, &params)
		}
	} else {
		upsertFn = func() error {
			return r.store.Upsert(paramsKey, &params)
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

func (r *paramsRepository) Close() {
	// nolint:all
	r.store.Close()
}
