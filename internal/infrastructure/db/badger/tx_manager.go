package badgerdb

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/timshannon/badgerhold/v4"
	"github.com/vaultmint/vaultd/internal/core/ports"
)

type txManager struct {
	store *badgerhold.Store
}

func NewTxManager(store *badgerhold.Store) ports.TxManager {
	return &txManager{store}
}

// RunInTransaction opens a badger read-write transaction, makes it visible
// to the repositories through the context and commits it when fn returns
// nil. Commit conflicts are retried with a fresh transaction.
func (m *txManager) RunInTransaction(
	ctx context.Context, fn func(ctx context.Context) error,
) error {
	if ctx.Value("tx") != nil {
		// already inside a transaction, join it
		return fn(ctx)
	}

	var err error
	for i := 0; i < maxRetries; i++ {
		err = func() error {
			tx := m.store.Badger().NewTransaction(true)
			defer tx.Discard()

			// nolint:staticcheck
			txCtx := context.WithValue(ctx, "tx", tx)
			if err := fn(txCtx); err != nil {
				return err
			}

			return tx.Commit()
		}()
		if err == nil {
			return nil
		}

		if errors.Is(err, badger.ErrConflict) {
			time.Sleep(100 * time.Millisecond)
			continue
		}
		return err
	}

	return err
}
