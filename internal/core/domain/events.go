package domain

import "github.com/google/uuid"

type EventType string

const (
	EventTypeAssetMinted      EventType = "asset_minted"
	EventTypeAssetTransferred EventType = "asset_transferred"
	EventTypeAssetListed      EventType = "asset_listed"
	EventTypeAssetPurchased   EventType = "asset_purchased"
	EventTypeAssetStaked      EventType = "asset_staked"
	EventTypeAssetUnstaked    EventType = "asset_unstaked"
	EventTypeYieldClaimed     EventType = "yield_claimed"
	EventTypeParamsUpdated    EventType = "params_updated"
)

// Event is a journal entry describing a committed ledger mutation. Entries
// are serialized as JSON and fanned out to registered handlers after the
// owning operation persists them.
type Event interface {
	GetId() string
	GetType() EventType
	GetAssetId() uint64
}

type AssetMinted struct {
	Id               string
	Type             EventType
	AssetId          uint64
	Creator          string
	Uri              string
	CollateralAmount uint64
	CollateralLocked uint64
	Height           uint64
}

func NewAssetMinted(asset Asset, collateralLocked, height uint64) AssetMinted {
	return AssetMinted{
		Id:               uuid.New().String(),
		Type:             EventTypeAssetMinted,
		AssetId:          asset.Id,
		Creator:          asset.Creator,
		Uri:              asset.Uri,
		CollateralAmount: asset.CollateralAmount,
		CollateralLocked: collateralLocked,
		Height:           height,
	}
}

func (e AssetMinted) GetId() string      { return e.Id }
func (e AssetMinted) GetType() EventType { return e.Type }
func (e AssetMinted) GetAssetId() uint64 { return e.AssetId }

type AssetTransferred struct {
	Id      string
	Type    EventType
	AssetId uint64
	From    string
	To      string
	Height  uint64
}

func NewAssetTransferred(assetId uint64, from, to string, height uint64) AssetTransferred {
	return AssetTransferred{
		Id:      uuid.New().String(),
		Type:    EventTypeAssetTransferred,
		AssetId: assetId,
		From:    from,
		To:      to,
		Height:  height,
	}
}

func (e AssetTransferred) GetId() string      { return e.Id }
func (e AssetTransferred) GetType() EventType { return e.Type }
func (e AssetTransferred) GetAssetId() uint64 { return e.AssetId }

type AssetListed struct {
	Id      string
	Type    EventType
	AssetId uint64
	Seller  string
	Price   uint64
	Height  uint64
}

func NewAssetListed(listing Listing, height uint64) AssetListed {
	return AssetListed{
		Id:      uuid.New().String(),
		Type:    EventTypeAssetListed,
		AssetId: listing.AssetId,
		Seller:  listing.Seller,
		Price:   listing.Price,
		Height:  height,
	}
}

func (e AssetListed) GetId() string      { return e.Id }
func (e AssetListed) GetType() EventType { return e.Type }
func (e AssetListed) GetAssetId() uint64 { return e.AssetId }

type AssetPurchased struct {
	Id      string
	Type    EventType
	AssetId uint64
	Buyer   string
	Seller  string
	Price   uint64
	Fee     uint64
	Height  uint64
}

func NewAssetPurchased(assetId uint64, buyer, seller string, price, fee, height uint64) AssetPurchased {
	return AssetPurchased{
		Id:      uuid.New().String(),
		Type:    EventTypeAssetPurchased,
		AssetId: assetId,
		Buyer:   buyer,
		Seller:  seller,
		Price:   price,
		Fee:     fee,
		Height:  height,
	}
}

func (e AssetPurchased) GetId() string      { return e.Id }
func (e AssetPurchased) GetType() EventType { return e.Type }
func (e AssetPurchased) GetAssetId() uint64 { return e.AssetId }

type AssetStaked struct {
	Id      string
	Type    EventType
	AssetId uint64
	Owner   string
	Height  uint64
}

func NewAssetStaked(assetId uint64, owner string, height uint64) AssetStaked {
	return AssetStaked{
		Id:      uuid.New().String(),
		Type:    EventTypeAssetStaked,
		AssetId: assetId,
		Owner:   owner,
		Height:  height,
	}
}

func (e AssetStaked) GetId() string      { return e.Id }
func (e AssetStaked) GetType() EventType { return e.Type }
func (e AssetStaked) GetAssetId() uint64 { return e.AssetId }

type AssetUnstaked struct {
	Id      string
	Type    EventType
	AssetId uint64
	Owner   string
	Reward  uint64
	Height  uint64
}

func NewAssetUnstaked(assetId uint64, owner string, reward, height uint64) AssetUnstaked {
	return AssetUnstaked{
		Id:      uuid.New().String(),
		Type:    EventTypeAssetUnstaked,
		AssetId: assetId,
		Owner:   owner,
		Reward:  reward,
		Height:  height,
	}
}

func (e AssetUnstaked) GetId() string      { return e.Id }
func (e AssetUnstaked) GetType() EventType { return e.Type }
func (e AssetUnstaked) GetAssetId() uint64 { return e.AssetId }

type YieldClaimed struct {
	Id      string
	Type    EventType
	AssetId uint64
	Owner   string
	Reward  uint64
	Height  uint64
}

func NewYieldClaimed(assetId uint64, owner string, reward, height uint64) YieldClaimed {
	return YieldClaimed{
		Id:      uuid.New().String(),
		Type:    EventTypeYieldClaimed,
		AssetId: assetId,
		Owner:   owner,
		Reward:  reward,
		Height:  height,
	}
}

func (e YieldClaimed) GetId() string      { return e.Id }
func (e YieldClaimed) GetType() EventType { return e.Type }
func (e YieldClaimed) GetAssetId() uint64 { return e.AssetId }

type ParamsUpdated struct {
	Id      string
	Type    EventType
	AssetId uint64
	Params  Params
	Height  uint64
}

func NewParamsUpdated(params Params, height uint64) ParamsUpdated {
	return ParamsUpdated{
		Id:     uuid.New().String(),
		Type:   EventTypeParamsUpdated,
		Params: params,
		Height: height,
	}
}

func (e ParamsUpdated) GetId() string      { return e.Id }
func (e ParamsUpdated) GetType() EventType { return e.Type }
func (e ParamsUpdated) GetAssetId() uint64 { return e.AssetId }
