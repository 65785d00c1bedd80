package domain

const (
	DefaultFeeBasisPoints            = 25
	DefaultMinCollateralRatioPercent = 150
	DefaultYieldRateBasisPoints      = 50

	// BlocksPerYear is the accrual denominator, assuming 10-minute blocks.
	BlocksPerYear = 52560

	// feeDivisor makes FeeBasisPoints count tenths of a percent rather than
	// conventional basis points. The scale is part of the settlement
	// arithmetic and must not be normalized to 10000.
	feeDivisor = 1000
)

// Params are the process-wide protocol parameters, seeded at first start and
// mutable only by the deploying identity.
type Params struct {
	FeeBasisPoints            uint64
	MinCollateralRatioPercent uint64
	YieldRateBasisPoints      uint64
}

func DefaultParams() Params {
	return Params{
		FeeBasisPoints:            DefaultFeeBasisPoints,
		MinCollateralRatioPercent: DefaultMinCollateralRatioPercent,
		YieldRateBasisPoints:      DefaultYieldRateBasisPoints,
	}
}

// RequiredCollateral returns the amount custodied when minting against the
// given declared collateral, floored.
func (p Params) RequiredCollateral(collateralAmount uint64) uint64 {
	return p.MinCollateralRatioPercent * collateralAmount / 100
}

// SaleFee returns the protocol fee charged on top of a purchase at the given
// price, floored.
func (p Params) SaleFee(price uint64) uint64 {
	return price * p.FeeBasisPoints / feeDivisor
}

// YieldPerBlock floors the yearly rate over BlocksPerYear. The default rate
// of 50 floors to 0; the precision loss is intentional and relied upon.
func (p Params) YieldPerBlock() uint64 {
	return p.YieldRateBasisPoints / BlocksPerYear
}
