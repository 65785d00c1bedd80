package domain

import "context"

// BalanceRepository is the value-transfer primitive: an identity-keyed store
// of native currency balances. Missing accounts read as zero.
type BalanceRepository interface {
	BalanceOf(ctx context.Context, account string) (uint64, error)
	// Credit funds an account, the primitive's deposit edge.
	Credit(ctx context.Context, account string, amount uint64) error
	// Transfer moves amount between accounts. It fails without side effects
	// when the source balance is short; a zero amount is a no-op.
	Transfer(ctx context.Context, from, to string, amount uint64) error
	Close()
}
