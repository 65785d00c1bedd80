package sqlitedb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vaultmint/vaultd/internal/core/domain"
)

type balanceRepository struct {
	db *sql.DB
}

func NewBalanceRepository(config ...interface{}) (domain.BalanceRepository, error) {
	if len(config) != 1 {
		return nil, fmt.Errorf("invalid config")
	}
	db, ok := config[0].(*sql.DB)
	if !ok {
		return nil, fmt.Errorf("cannot open balance repository: invalid config")
	}

	return &balanceRepository{db}, nil
}

func (r *balanceRepository) BalanceOf(
	ctx context.Context, account string,
) (uint64, error) {
	q := querierFromCtx(ctx, r.db)

	var amount int64
	err := q.QueryRowContext(
		ctx, `SELECT amount FROM balance WHERE account = ?`, account,
	).Scan(&amount)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get balance of %s: %w", account, err)
	}
	return uint64(amount), nil
}

func (r *balanceRepository) Credit(
	ctx context.Context, account string, amount uint64,
) error {
	q := querierFromCtx(ctx, r.db)

	if _, err := q.ExecContext(
		ctx,
		`INSERT INTO balance (account, amount) VALUES (?, ?)
		 ON CONFLICT (account) DO UPDATE SET amount = amount + excluded.amount`,
		account, int64(amount),
	); err != nil {
		return fmt.Errorf("failed to credit %s: %w", account, err)
	}
	return nil
}

// Transfer moves amount between two accounts, leaving both untouched when
// the sender balance is short. A zero amount is a no-op; a self transfer
// moves nothing but still requires sufficient funds.
func (r *balanceRepository) Transfer(
	ctx context.Context, from, to string, amount uint64,
) error {
	if amount <= 0 {
		return nil
	}

	available, err := r.BalanceOf(ctx, from)
	if err != nil {
		return err
	}
	if available < amount {
		return fmt.Errorf(
			"account %s holds %d, cannot move %d", from, available, amount,
		)
	}
	if from == to {
		return nil
	}

	q := querierFromCtx(ctx, r.db)
	if _, err := q.ExecContext(
		ctx, `UPDATE balance SET amount = amount - ? WHERE account = ?`,
		int64(amount), from,
	); err != nil {
		return fmt.Errorf("failed to debit %s: %w", from, err)
	}
	if _, err := q.ExecContext(
		ctx,
		`INSERT INTO balance (account, amount) VALUES (?, ?)
		 ON CONFLICT (account) DO UPDATE SET amount = amount + excluded.amount`,
		to, int64(amount),
	); err != nil {
		return fmt.Errorf("failed to credit %s: %w", to, err)
	}
	return nil
}

func (r *balanceRepository) Close() {
	_ = r.db.Close()
}
