package domain

// RewardAccount tracks materialized yield for an asset that has been staked
// at least once. Accrual between claims is computed lazily from the asset's
// StakeStartHeight; the persisted values only change at claim time, when the
// account is reset to {0, claim height}.
type RewardAccount struct {
	AssetId          uint64
	AccumulatedYield uint64
	LastClaimHeight  uint64
}
