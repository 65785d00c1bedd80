package main

import "github.com/urfave/cli/v2"

const (
	callerFlagName          = "caller"
	uriFlagName             = "uri"
	collateralFlagName      = "collateral"
	assetIdFlagName         = "asset-id"
	toFlagName              = "to"
	priceFlagName           = "price"
	accountFlagName         = "account"
	amountFlagName          = "amount"
	blocksFlagName          = "blocks"
	ownerFlagName           = "owner"
	pageFlagName            = "page"
	pageSizeFlagName        = "page-size"
	feeFlagName             = "fee"
	collateralRatioFlagName = "collateral-ratio"
	yieldRateFlagName       = "yield-rate"
)

var (
	callerFlag = &cli.StringFlag{
		Name:     callerFlagName,
		Usage:    "identity performing the operation",
		Required: true,
	}
	uriFlag = &cli.StringFlag{
		Name:     uriFlagName,
		Usage:    "metadata uri of the asset, 1 to 256 bytes",
		Required: true,
	}
	collateralFlag = &cli.Uint64Flag{
		Name:     collateralFlagName,
		Usage:    "declared collateral amount backing the asset",
		Required: true,
	}
	assetIdFlag = &cli.Uint64Flag{
		Name:     assetIdFlagName,
		Usage:    "id of the asset",
		Required: true,
	}
	toFlag = &cli.StringFlag{
		Name:     toFlagName,
		Usage:    "identity receiving the asset",
		Required: true,
	}
	priceFlag = &cli.Uint64Flag{
		Name:     priceFlagName,
		Usage:    "sale price in ledger funds",
		Required: true,
	}
	accountFlag = &cli.StringFlag{
		Name:     accountFlagName,
		Usage:    "account identity",
		Required: true,
	}
	amountFlag = &cli.Uint64Flag{
		Name:     amountFlagName,
		Usage:    "amount of funds",
		Required: true,
	}
	blocksFlag = &cli.Uint64Flag{
		Name:  blocksFlagName,
		Usage: "number of blocks to advance",
		Value: 1,
	}
	ownerFlag = &cli.StringFlag{
		Name:  ownerFlagName,
		Usage: "owner identity to filter assets by",
	}
	pageFlag = &cli.IntFlag{
		Name:  pageFlagName,
		Usage: "page number, starting from 1",
	}
	pageSizeFlag = &cli.IntFlag{
		Name:  pageSizeFlagName,
		Usage: "number of items per page",
	}
	feeFlag = &cli.Uint64Flag{
		Name:     feeFlagName,
		Usage:    "marketplace fee in basis points",
		Required: true,
	}
	collateralRatioFlag = &cli.Uint64Flag{
		Name:     collateralRatioFlagName,
		Usage:    "minimum collateral ratio in percent",
		Required: true,
	}
	yieldRateFlag = &cli.Uint64Flag{
		Name:     yieldRateFlagName,
		Usage:    "annualized staking yield in basis points",
		Required: true,
	}
)
