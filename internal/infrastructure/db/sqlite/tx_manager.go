package sqlitedb

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vaultmint/vaultd/internal/core/ports"
)

type txManager struct {
	db *sql.DB
}

func NewTxManager(db *sql.DB) ports.TxManager {
	return &txManager{db}
}

// RunInTransaction begins a sql transaction, makes it visible to the
// repositories through the context and commits it when fn returns nil.
func (m *txManager) RunInTransaction(
	ctx context.Context, fn func(ctx context.Context) error,
) error {
	if _, ok := ctx.Value("tx").(*sql.Tx); ok {
		// already inside a transaction, join it
		return fn(ctx)
	}

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %s", err)
	}

	// nolint:staticcheck
	txCtx := context.WithValue(ctx, "tx", tx)
	if err := fn(txCtx); err != nil {
		//nolint:errcheck
		tx.Rollback()
		return err
	}
	return tx.Commit()
}
