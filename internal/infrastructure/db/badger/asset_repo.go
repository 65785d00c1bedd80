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

const assetSequenceKey = "asset_sequence"

type assetRepository struct {
	store *badgerhold.Store
}

type assetDTO struct {
	domain.Asset
	UpdatedAt int64
}

// assetSequenceDTO persists the last issued id, so the next one is always
// last+1 regardless of failed or rolled back mints in between.
type assetSequenceDTO struct {
	LastIssued uint64
}

func NewAssetRepository(config ...interface{}) (domain.AssetRepository, error) {
	store, err := storeFromConfig(config...)
	if err != nil {
		return nil, fmt.Errorf("cannot open asset repository: %s", err)
	}
	return &assetRepository{store}, nil
}

func (r *assetRepository) NextId(ctx context.Context) (uint64, error) {
	var seq assetSequenceDTO
	var getFn func() error
	var upsertFn func() error
	if ctx.Value("tx") != nil {
		tx := ctx.Value("tx").(*badger.Txn)
		getFn = func() error {
			return r.store.TxGet(tx, assetSequenceKey, &seq)
		}
		upsertFn = func() error {
			return r.store.TxUpsert(tx, assetSequenceKey, &seq)
		}
	} else {
		getFn = func() error {
			return r.store.Get(assetSequenceKey, &seq)
		}
		upsertFn = func() error {
			return r.store.Upsert(assetSequenceKey, &seq)
		}
	}

	if err := getFn(); err != nil && !errors.Is(err, badgerhold.ErrNotFound) {
		return 0, err
	}
	seq.LastIssued++

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
	return seq.LastIssued, nil
}

func (r *assetRepository) Add(ctx context.Context, asset domain.Asset) error {
	dto := assetDTO{
		Asset:     asset,
		UpdatedAt: time.Now().UnixMilli(),
	}
	var insertFn func() error
	if ctx.Value("tx") != nil {
		tx := ctx.Value("tx").(*badger.Txn)
		insertFn = func() error {
			return r.store.TxInsert(tx, asset.Id, dto)
		}
	} else {
		insertFn = func() error {
			return r.store.Insert(asset.Id, dto)
		}
	}
	if err := insertFn(); err != nil {
		if errors.Is(err, badgerhold.ErrKeyExists) {
			return fmt.Errorf("asset %d already exists", asset.Id)
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

func (r *assetRepository) Update(ctx context.Context, asset domain.Asset) error {
	dto := assetDTO{
		Asset:     asset,
		UpdatedAt: time.Now().UnixMilli(),
	}
	var updateFn func() error
	if ctx.Value("tx") != nil {
		tx := ctx.Value("tx").(*badger.Txn)
		updateFn = func() error {
			return r.store.TxUpdate(tx, asset.Id, dto)
		}
	} else {
		updateFn = func() error {
			return r.store.Update(asset.Id, dto)
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

func (r *assetRepository) Get(ctx context.Context, assetId uint64) (*domain.Asset, error) {
	var dto assetDTO
	var err error
	if ctx.Value("tx") != nil {
		tx := ctx.Value("tx").(*badger.Txn)
		err = r.store.TxGet(tx, assetId, &dto)
	} else {
		err = r.store.Get(assetId, &dto)
	}
	if err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &dto.Asset, nil
}

func (r *assetRepository) GetAll(ctx context.Context) ([]domain.Asset, error) {
	dtos := make([]assetDTO, 0)
	var err error
	if ctx.Value("tx") != nil {
		tx := ctx.Value("tx").(*badger.Txn)
		err = r.store.TxFind(tx, &dtos, nil)
	} else {
		err = r.store.Find(&dtos, nil)
	}
	if err != nil && !errors.Is(err, badgerhold.ErrNotFound) {
		return nil, err
	}

	assets := make([]domain.Asset, 0, len(dtos))
	for _, dto := range dtos {
		assets = append(assets, dto.Asset)
	}
	sort.Slice(assets, func(i, j int) bool {
		return assets[i].Id < assets[j].Id
	})
	return assets, nil
}

func (r *assetRepository) GetStaked(ctx context.Context) ([]domain.Asset, error) {
	dtos := make([]assetDTO, 0)
	query := badgerhold.Where("Staked").Eq(true)
	var err error
	if ctx.Value("tx") != nil {
		tx := ctx.Value("tx").(*badger.Txn)
		err = r.store.TxFind(tx, &dtos, query)
	} else {
		err = r.store.Find(&dtos, query)
	}
	if err != nil && !errors.Is(err, badgerhold.ErrNotFound) {
		return nil, err
	}

	assets := make([]domain.Asset, 0, len(dtos))
	for _, dto := range dtos {
		assets = append(assets, dto.Asset)
	}
	sort.Slice(assets, func(i, j int) bool {
		return assets[i].Id < assets[j].Id
	})
	return assets, nil
}

func (r *assetRepository) Close() {
	// nolint:all
	r.store.Close()
}
