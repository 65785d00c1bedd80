package application

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vaultmint/vaultd/internal/core/domain"
)

func TestComputeYield(t *testing.T) {
	tests := []struct {
		name          string
		yieldRate     uint64
		startHeight   uint64
		currentHeight uint64
		accumulated   uint64
		expected      uint64
	}{
		{"default rate floors to zero", 50, 0, 1000, 0, 0},
		{"just below one unit per block", 52559, 0, 1000, 0, 0},
		{"one unit per block", 52560, 0, 1000, 0, 1000},
		{"two units per block", 105120, 10, 25, 0, 30},
		{"no blocks elapsed", 52560, 10, 10, 0, 0},
		{"accumulated yield is preserved", 52560, 10, 10, 7, 7},
		{"accrual on top of accumulated", 52560, 10, 15, 7, 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := domain.DefaultParams()
			params.YieldRateBasisPoints = tt.yieldRate
			asset := domain.Asset{StakeStartHeight: tt.startHeight}
			account := domain.RewardAccount{AccumulatedYield: tt.accumulated}

			got := computeYield(params, asset, account, tt.currentHeight)
			require.Equal(t, tt.expected, got)
		})
	}
}

func TestPaginate(t *testing.T) {
	items := make([]int, 10)
	for i := range items {
		items[i] = i
	}

	tests := []struct {
		name         string
		page         *Page
		maxSize      int32
		expected     []int
		expectedResp PageResp
	}{
		{
			name:         "nil page returns everything",
			page:         nil,
			maxSize:      100,
			expected:     items,
			expectedResp: PageResp{},
		},
		{
			name:         "zero values fall back to the max size",
			page:         &Page{},
			maxSize:      3,
			expected:     []int{0, 1, 2},
			expectedResp: PageResp{Current: 1, Next: 2, Total: 4},
		},
		{
			name:         "first page",
			page:         &Page{PageSize: 4, PageNum: 1},
			maxSize:      100,
			expected:     []int{0, 1, 2, 3},
			expectedResp: PageResp{Current: 1, Next: 2, Total: 3},
		},
		{
			name:         "last short page",
			page:         &Page{PageSize: 4, PageNum: 3},
			maxSize:      100,
			expected:     []int{8, 9},
			expectedResp: PageResp{Current: 3, Next: 3, Total: 3},
		},
		{
			name:         "past the end",
			page:         &Page{PageSize: 4, PageNum: 5},
			maxSize:      100,
			expected:     []int{},
			expectedResp: PageResp{Current: 5, Next: 3, Total: 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, resp := paginate(items, tt.page, tt.maxSize)
			require.Equal(t, tt.expected, got)
			require.Equal(t, tt.expectedResp, resp)
		})
	}
}
