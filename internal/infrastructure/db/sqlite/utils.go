package sqlitedb

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

const driverName = "sqlite"

// OpenDb opens a connection with the DB. Writes are serialized on a single
// connection, sqlite does not support concurrent writers.
func OpenDb(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(driverName, dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db: %v", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %v", err)
	}

	return db, nil
}

// querier is the subset of database/sql shared by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// querierFromCtx returns the transaction carried by the context when there
// is one, so repository calls made inside RunInTransaction share it.
func querierFromCtx(ctx context.Context, db *sql.DB) querier {
	if tx, ok := ctx.Value("tx").(*sql.Tx); ok {
		return tx
	}
	return db
}
