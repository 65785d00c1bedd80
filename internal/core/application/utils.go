package application

import (
	"context"
	"math"

	"github.com/vaultmint/vaultd/internal/core/domain"
)

// isAuthorized checks the two capability variants of the ledger: the
// deployer identity, or the current holder per the ownership store. A
// missing ownership record fails closed.
func isAuthorized(
	ctx context.Context, owners domain.OwnershipRepository,
	deployer, caller string, assetId uint64,
) bool {
	if caller != "" && caller == deployer {
		return true
	}
	owner, err := owners.OwnerOf(ctx, assetId)
	if err != nil || owner == "" {
		return false
	}
	return owner == caller
}

// computeYield is the lazy accrual arithmetic: blocks elapsed since the
// stake started times the floored per-block rate, on top of whatever is
// already materialized in the account.
func computeYield(
	params domain.Params, asset domain.Asset,
	account domain.RewardAccount, currentHeight uint64,
) uint64 {
	blocksStaked := currentHeight - asset.StakeStartHeight
	return account.AccumulatedYield + blocksStaked*params.YieldPerBlock()
}

func paginate[T any](items []T, params *Page, maxSize int32) ([]T, PageResp) {
	if params == nil {
		return items, PageResp{}
	}
	if params.PageSize <= 0 {
		params.PageSize = maxSize
	}
	if params.PageNum <= 0 {
		params.PageNum = 1
	}

	totalCount := int32(len(items))
	totalPages := int32(math.Ceil(float64(totalCount) / float64(params.PageSize)))
	next := min(params.PageNum+1, totalPages)

	resp := PageResp{
		Current: params.PageNum,
		Next:    next,
		Total:   totalPages,
	}

	if params.PageNum > totalPages && totalCount > 0 {
		return []T{}, resp
	}

	startIndex := (params.PageNum - 1) * params.PageSize
	endIndex := startIndex + params.PageSize

	if startIndex >= totalCount {
		return []T{}, resp
	}

	if endIndex > totalCount {
		endIndex = totalCount
	}

	return items[startIndex:endIndex], resp
}
