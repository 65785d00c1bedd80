package domain

import "context"

// OwnershipRepository is the ownership-ledger primitive mapping asset ids to
// the identity currently holding them.
type OwnershipRepository interface {
	// OwnerOf returns the empty string without error when no record exists.
	OwnerOf(ctx context.Context, assetId uint64) (string, error)
	SetOwner(ctx context.Context, assetId uint64, owner string) error
	// TransferOwner reassigns the asset and fails when from does not match
	// the recorded holder.
	TransferOwner(ctx context.Context, assetId uint64, from, to string) error
	Close()
}
