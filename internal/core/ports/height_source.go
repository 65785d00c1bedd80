package ports

import "context"

// HeightSource is the host's monotonic counter, the ledger's only clock. It
// advances once per confirmed unit of work; the ledger itself only reads it.
type HeightSource interface {
	CurrentHeight(ctx context.Context) (uint64, error)
	Advance(ctx context.Context, blocks uint64) (uint64, error)
}
