package domain

// MaxUriLength bounds the metadata uri carried by an asset record.
const MaxUriLength = 256

// Asset is the registry record of a minted asset. The current holder is
// tracked by the ownership store, not duplicated here. CollateralAmount is
// the caller-declared figure; the custodied amount derives from the
// collateral ratio in force at mint time.
type Asset struct {
	Id               uint64
	Creator          string
	Uri              string
	CollateralAmount uint64
	Staked           bool
	StakeStartHeight uint64
}
