package badgerdb

import (
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/timshannon/badgerhold/v4"
)

const maxRetries = 5

// NewStore opens the single badger store shared by every repository of the
// backend. Sharing one store is what lets a ledger operation span balances,
// ownership and records within one badger transaction. An empty base
// directory means in-memory.
func NewStore(baseDir string, logger badger.Logger) (*badgerhold.Store, error) {
	return createDB(baseDir, logger)
}

func createDB(dbDir string, logger badger.Logger) (*badgerhold.Store, error) {
	isInMemory := len(dbDir) <= 0

	opts := badger.DefaultOptions(dbDir)
	opts.Logger = logger

	if isInMemory {
		opts.InMemory = true
	} else {
		opts.Compression = options.ZSTD
	}

	store, err := badgerhold.Open(badgerhold.Options{
		Encoder:          badgerhold.DefaultEncode,
		Decoder:          badgerhold.DefaultDecode,
		SequenceBandwith: 100,
		Options:          opts,
	})
	if err != nil {
		return nil, err
	}
	return store, nil
}

func storeFromConfig(config ...interface{}) (*badgerhold.Store, error) {
	if len(config) != 1 {
		return nil, fmt.Errorf("invalid config")
	}
	store, ok := config[0].(*badgerhold.Store)
	if !ok {
		return nil, fmt.Errorf("invalid store")
	}
	return store, nil
}
