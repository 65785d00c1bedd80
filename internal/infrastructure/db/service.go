package db

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/dgraph-io/badger/v4"
	"github.com/golang-migrate/migrate/v4"
	sqlitemigrate "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/vaultmint/vaultd/internal/core/domain"
	"github.com/vaultmint/vaultd/internal/core/ports"
	badgerdb "github.com/vaultmint/vaultd/internal/infrastructure/db/badger"
	sqlitedb "github.com/vaultmint/vaultd/internal/infrastructure/db/sqlite"
)

//go:embed sqlite/migration/*
var migrations embed.FS

var (
	assetStoreTypes = map[string]func(...interface{}) (domain.AssetRepository, error){
		"badger": badgerdb.NewAssetRepository,
		"sqlite": sqlitedb.NewAssetRepository,
	}
	listingStoreTypes = map[string]func(...interface{}) (domain.ListingRepository, error){
		"badger": badgerdb.NewListingRepository,
		"sqlite": sqlitedb.NewListingRepository,
	}
	rewardStoreTypes = map[string]func(...interface{}) (domain.RewardRepository, error){
		"badger": badgerdb.NewRewardRepository,
		"sqlite": sqlitedb.NewRewardRepository,
	}
	paramsStoreTypes = map[string]func(...interface{}) (domain.ParamsRepository, error){
		"badger": badgerdb.NewParamsRepository,
		"sqlite": sqlitedb.NewParamsRepository,
	}
	balanceStoreTypes = map[string]func(...interface{}) (domain.BalanceRepository, error){
		"badger": badgerdb.NewBalanceRepository,
		"sqlite": sqlitedb.NewBalanceRepository,
	}
	ownershipStoreTypes = map[string]func(...interface{}) (domain.OwnershipRepository, error){
		"badger": badgerdb.NewOwnershipRepository,
		"sqlite": sqlitedb.NewOwnershipRepository,
	}
	eventStoreTypes = map[string]func(...interface{}) (domain.EventRepository, error){
		"badger": badgerdb.NewEventRepository,
		"sqlite": sqlitedb.NewEventRepository,
	}
	heightStoreTypes = map[string]func(...interface{}) (ports.HeightSource, error){
		"badger": badgerdb.NewHeightRepository,
		"sqlite": sqlitedb.NewHeightRepository,
	}
)

const (
	badgerStoreDir = "ledger"
	sqliteDbFile   = "sqlite.db"
)

// ServiceConfig selects the storage backend. Every repository of a backend
// shares one underlying handle, which is what allows a ledger operation to
// commit or roll back across all of them at once.
//
// DataStoreConfig holds [baseDir string, logger badger.Logger] for badger,
// [baseDir string] for sqlite. An empty badger base dir means in-memory.
type ServiceConfig struct {
	DataStoreType   string
	DataStoreConfig []interface{}
}

type service struct {
	eventStore     domain.EventRepository
	assetStore     domain.AssetRepository
	listingStore   domain.ListingRepository
	rewardStore    domain.RewardRepository
	paramsStore    domain.ParamsRepository
	balanceStore   domain.BalanceRepository
	ownershipStore domain.OwnershipRepository
	heightStore    ports.HeightSource
	txManager      ports.TxManager
}

func NewService(config ServiceConfig) (ports.RepoManager, error) {
	assetStoreFactory, ok := assetStoreTypes[config.DataStoreType]
	if !ok {
		return nil, fmt.Errorf("invalid data store type: %s", config.DataStoreType)
	}
	listingStoreFactory, ok := listingStoreTypes[config.DataStoreType]
	if !ok {
		return nil, fmt.Errorf("invalid data store type: %s", config.DataStoreType)
	}
	rewardStoreFactory, ok := rewardStoreTypes[config.DataStoreType]
	if !ok {
		return nil, fmt.Errorf("invalid data store type: %s", config.DataStoreType)
	}
	paramsStoreFactory, ok := paramsStoreTypes[config.DataStoreType]
	if !ok {
		return nil, fmt.Errorf("invalid data store type: %s", config.DataStoreType)
	}
	balanceStoreFactory, ok := balanceStoreTypes[config.DataStoreType]
	if !ok {
		return nil, fmt.Errorf("invalid data store type: %s", config.DataStoreType)
	}
	ownershipStoreFactory, ok := ownershipStoreTypes[config.DataStoreType]
	if !ok {
		return nil, fmt.Errorf("invalid data store type: %s", config.DataStoreType)
	}
	eventStoreFactory, ok := eventStoreTypes[config.DataStoreType]
	if !ok {
		return nil, fmt.Errorf("invalid data store type: %s", config.DataStoreType)
	}
	heightStoreFactory, ok := heightStoreTypes[config.DataStoreType]
	if !ok {
		return nil, fmt.Errorf("invalid data store type: %s", config.DataStoreType)
	}

	pubSub := gochannel.NewGoChannel(
		gochannel.Config{}, watermill.NewStdLogger(false, false),
	)

	var eventStore domain.EventRepository
	var assetStore domain.AssetRepository
	var listingStore domain.ListingRepository
	var rewardStore domain.RewardRepository
	var paramsStore domain.ParamsRepository
	var balanceStore domain.BalanceRepository
	var ownershipStore domain.OwnershipRepository
	var heightStore ports.HeightSource
	var txManager ports.TxManager

	switch config.DataStoreType {
	case "badger":
		if len(config.DataStoreConfig) != 2 {
			return nil, fmt.Errorf("invalid data store config")
		}
		baseDir, ok := config.DataStoreConfig[0].(string)
		if !ok {
			return nil, fmt.Errorf("invalid base directory")
		}
		var logger badger.Logger
		if config.DataStoreConfig[1] != nil {
			logger, ok = config.DataStoreConfig[1].(badger.Logger)
			if !ok {
				return nil, fmt.Errorf("invalid logger")
			}
		}

		var dir string
		if len(baseDir) > 0 {
			dir = filepath.Join(baseDir, badgerStoreDir)
		}
		store, err := badgerdb.NewStore(dir, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open badger store: %s", err)
		}

		storeConfig := []interface{}{store}
		assetStore, err = assetStoreFactory(storeConfig...)
		if err != nil {
			return nil, fmt.Errorf("failed to open asset store: %s", err)
		}
		listingStore, err = listingStoreFactory(storeConfig...)
		if err != nil {
			return nil, fmt.Errorf("failed to open listing store: %s", err)
		}
		rewardStore, err = rewardStoreFactory(storeConfig...)
		if err != nil {
			return nil, fmt.Errorf("failed to open reward store: %s", err)
		}
		paramsStore, err = paramsStoreFactory(storeConfig...)
		if err != nil {
			return nil, fmt.Errorf("failed to open params store: %s", err)
		}
		balanceStore, err = balanceStoreFactory(storeConfig...)
		if err != nil {
			return nil, fmt.Errorf("failed to open balance store: %s", err)
		}
		ownershipStore, err = ownershipStoreFactory(storeConfig...)
		if err != nil {
			return nil, fmt.Errorf("failed to open ownership store: %s", err)
		}
		eventStore, err = eventStoreFactory(store, pubSub)
		if err != nil {
			return nil, fmt.Errorf("failed to open event store: %s", err)
		}
		heightStore, err = heightStoreFactory(storeConfig...)
		if err != nil {
			return nil, fmt.Errorf("failed to open height store: %s", err)
		}
		txManager = badgerdb.NewTxManager(store)

	case "sqlite":
		if len(config.DataStoreConfig) != 1 {
			return nil, fmt.Errorf("invalid data store config")
		}
		baseDir, ok := config.DataStoreConfig[0].(string)
		if !ok {
			return nil, fmt.Errorf("invalid base directory")
		}

		dbFile := filepath.Join(baseDir, sqliteDbFile)
		db, err := sqlitedb.OpenDb(dbFile)
		if err != nil {
			return nil, fmt.Errorf("failed to open db: %s", err)
		}

		driver, err := sqlitemigrate.WithInstance(db, &sqlitemigrate.Config{})
		if err != nil {
			return nil, fmt.Errorf("failed to init driver: %s", err)
		}

		source, err := iofs.New(migrations, "sqlite/migration")
		if err != nil {
			return nil, fmt.Errorf("failed to embed migrations: %s", err)
		}

		m, err := migrate.NewWithInstance("iofs", source, "vaultdb", driver)
		if err != nil {
			return nil, fmt.Errorf("failed to create migration instance: %s", err)
		}

		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return nil, fmt.Errorf("failed to run migrations: %s", err)
		}

		dbConfig := []interface{}{db}
		assetStore, err = assetStoreFactory(dbConfig...)
		if err != nil {
			return nil, fmt.Errorf("failed to open asset store: %s", err)
		}
		listingStore, err = listingStoreFactory(dbConfig...)
		if err != nil {
			return nil, fmt.Errorf("failed to open listing store: %s", err)
		}
		rewardStore, err = rewardStoreFactory(dbConfig...)
		if err != nil {
			return nil, fmt.Errorf("failed to open reward store: %s", err)
		}
		paramsStore, err = paramsStoreFactory(dbConfig...)
		if err != nil {
			return nil, fmt.Errorf("failed to open params store: %s", err)
		}
		balanceStore, err = balanceStoreFactory(dbConfig...)
		if err != nil {
			return nil, fmt.Errorf("failed to open balance store: %s", err)
		}
		ownershipStore, err = ownershipStoreFactory(dbConfig...)
		if err != nil {
			return nil, fmt.Errorf("failed to open ownership store: %s", err)
		}
		eventStore, err = eventStoreFactory(db, pubSub)
		if err != nil {
			return nil, fmt.Errorf("failed to open event store: %s", err)
		}
		heightStore, err = heightStoreFactory(dbConfig...)
		if err != nil {
			return nil, fmt.Errorf("failed to open height store: %s", err)
		}
		txManager = sqlitedb.NewTxManager(db)

	default:
		return nil, fmt.Errorf("unknown data store type")
	}

	return &service{
		eventStore:     eventStore,
		assetStore:     assetStore,
		listingStore:   listingStore,
		rewardStore:    rewardStore,
		paramsStore:    paramsStore,
		balanceStore:   balanceStore,
		ownershipStore: ownershipStore,
		heightStore:    heightStore,
		txManager:      txManager,
	}, nil
}

func (s *service) RunInTransaction(
	ctx context.Context, fn func(ctx context.Context) error,
) error {
	return s.txManager.RunInTransaction(ctx, fn)
}

func (s *service) Events() domain.EventRepository {
	return s.eventStore
}

func (s *service) Assets() domain.AssetRepository {
	return s.assetStore
}

func (s *service) Listings() domain.ListingRepository {
	return s.listingStore
}

func (s *service) Rewards() domain.RewardRepository {
	return s.rewardStore
}

func (s *service) Params() domain.ParamsRepository {
	return s.paramsStore
}

func (s *service) Balances() domain.BalanceRepository {
	return s.balanceStore
}

func (s *service) Owners() domain.OwnershipRepository {
	return s.ownershipStore
}

func (s *service) Heights() ports.HeightSource {
	return s.heightStore
}

func (s *service) Close() {
	s.eventStore.Close()
	s.assetStore.Close()
	s.listingStore.Close()
	s.rewardStore.Close()
	s.paramsStore.Close()
	s.balanceStore.Close()
	s.ownershipStore.Close()
}
