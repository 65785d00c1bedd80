package blockproducer_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vaultmint/vaultd/internal/core/ports"
	"github.com/vaultmint/vaultd/internal/infrastructure/blockproducer"
	badgerdb "github.com/vaultmint/vaultd/internal/infrastructure/db/badger"
)

func TestProduceBlocks(t *testing.T) {
	heights := newHeightSource(t)

	producer, err := blockproducer.NewService(
		heights, blockproducer.WithBlockTime(time.Second),
	)
	require.NoError(t, err)

	producer.Start()
	t.Cleanup(producer.Stop)

	time.Sleep(3 * time.Second)
	producer.Stop()

	height, err := heights.CurrentHeight(context.Background())
	require.NoError(t, err)
	require.GreaterOrEqual(t, height, uint64(2))
}

func TestInvalidProducer(t *testing.T) {
	heights := newHeightSource(t)

	_, err := blockproducer.NewService(nil)
	require.Error(t, err)

	_, err = blockproducer.NewService(heights, blockproducer.WithBlockTime(0))
	require.Error(t, err)
}

func newHeightSource(t *testing.T) ports.HeightSource {
	store, err := badgerdb.NewStore("", nil)
	require.NoError(t, err)

	heights, err := badgerdb.NewHeightRepository(store)
	require.NoError(t, err)
	return heights
}
