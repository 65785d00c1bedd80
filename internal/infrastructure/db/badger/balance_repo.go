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

type balanceRepository struct {
	store *badgerhold.Store
}

type balanceDTO struct {
	Account string
	Amount  uint64
}

func NewBalanceRepository(config ...interface{}) (domain.BalanceRepository, error) {
	store, err := storeFromConfig(config...)
	if err != nil {
		return nil, fmt.Errorf("cannot open balance repository: %s", err)
	}
	return &balanceRepository{store}, nil
}

func (r *balanceRepository) BalanceOf(
	ctx context.Context, account string,
) (uint64, error) {
	dto, err := r.getBalance(ctx, account)
	if err != nil {
		return 0, err
	}
	if dto == nil {
		return 0, nil
	}
	return dto.Amount, nil
}

func (r *balanceRepository) Credit(
	ctx context.Context, account string, amount uint64,
) error {
	dto, err := r.getBalance(ctx, account)
	if err != nil {
		return err
	}
	if dto == nil {
		dto = &balanceDTO{Account: account}
	}
	dto.Amount += amount
	return r.upsertBalance(ctx, *dto)
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

	sender, err := r.getBalance(ctx, from)
	if err != nil {
		return err
	}
	if sender == nil || sender.Amount < amount {
		var available uint64
		if sender != nil {
			available = sender.Amount
		}
		return fmt.Errorf(
			"account %s holds %d, cannot move %d", from, available, amount,
		)
	}
	if from == to {
		return nil
	}

	receiver, err := r.getBalance(ctx, to)
	if err != nil {
		return err
	}
	if receiver == nil {
		receiver = &balanceDTO{Account: to}
	}

	sender.Amount -= amount
	receiver.Amount += amount
	if err := r.upsertBalance(ctx, *sender); err != nil {
		return err
	}
	return r.upsertBalance(ctx, *receiver)
}

func (r *balanceRepository) Close() {
	// nolint:all
	r.store.Close()
}

func (r *balanceRepository) getBalance(
	ctx context.Context, account string,
) (*balanceDTO, error) {
	var dto balanceDTO
	var err error
	if ctx.Value("tx") != nil {
		tx := ctx.Value("tx").(*badger.Txn)
		err = r.store.TxGet(tx, account, &dto)
	} else {
		err = r.store.Get(account, &dto)
	}
	if err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &dto, nil
}

func (r *balanceRepository) upsertBalance(ctx context.Context, dto balanceDTO) error {
	var upsertFn func() error
	if ctx.Value("tx") != nil {
		tx := ctx.Value("tx").(*badger.Txn)
		upsertFn = func() error {
			return r.store.TxUpsert(tx, dto.Account, dto)
		}
	} else {
		upsertFn = func() error {
			return r.store.Upsert(dto.Account, dto)
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
