package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRequiredCollateral(t *testing.T) {
	tests := []struct {
		ratioPercent uint64
		collateral   uint64
		expected     uint64
	}{
		{150, 1000, 1500},
		{150, 0, 0},
		{150, 1, 1},   // 150/100 floors to 1
		{150, 3, 4},   // 450/100 floors to 4
		{150, 66, 99},
		{100, 1000, 1000},
		{200, 500, 1000},
	}

	for _, tt := range tests {
		params := DefaultParams()
		params.MinCollateralRatioPercent = tt.ratioPercent
		require.Equal(t, tt.expected, params.RequiredCollateral(tt.collateral),
			"RequiredCollateral(%d) at ratio %d", tt.collateral, tt.ratioPercent)
	}
}

func TestSaleFee(t *testing.T) {
	// The divisor is 1000, so the default 25 is 2.5%, not 0.25%.
	tests := []struct {
		feeBps   uint64
		price    uint64
		expected uint64
	}{
		{25, 500, 12}, // 12500/1000 floors to 12
		{25, 1000, 25},
		{25, 39, 0}, // below one fee unit
		{25, 40, 1},
		{0, 1000, 0},
		{1000, 777, 777}, // 100% fee
	}

	for _, tt := range tests {
		params := DefaultParams()
		params.FeeBasisPoints = tt.feeBps
		require.Equal(t, tt.expected, params.SaleFee(tt.price),
			"SaleFee(%d) at %d bps", tt.price, tt.feeBps)
	}
}

func TestYieldPerBlock(t *testing.T) {
	tests := []struct {
		rateBps  uint64
		expected uint64
	}{
		{50, 0}, // the default rate floors to zero
		{52559, 0},
		{52560, 1},
		{105120, 2},
		{0, 0},
	}

	for _, tt := range tests {
		params := DefaultParams()
		params.YieldRateBasisPoints = tt.rateBps
		require.Equal(t, tt.expected, params.YieldPerBlock(),
			"YieldPerBlock at rate %d", tt.rateBps)
	}
}

func TestDefaultParams(t *testing.T) {
	params := DefaultParams()

	require.Equal(t, uint64(25), params.FeeBasisPoints)
	require.Equal(t, uint64(150), params.MinCollateralRatioPercent)
	require.Equal(t, uint64(50), params.YieldRateBasisPoints)
}
