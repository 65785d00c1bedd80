package main

import (
	"context"

	"github.com/urfave/cli/v2"
	"github.com/vaultmint/vaultd/internal/config"
)

var (
	metadataCmd = &cli.Command{
		Name:   "metadata",
		Usage:  "Show the metadata of an asset",
		Flags:  []cli.Flag{assetIdFlag},
		Action: metadataAction,
	}
	listingCmd = &cli.Command{
		Name:   "listing",
		Usage:  "Show the marketplace listing of an asset",
		Flags:  []cli.Flag{assetIdFlag},
		Action: listingAction,
	}
	rewardCmd = &cli.Command{
		Name:   "reward",
		Usage:  "Show the reward account of an asset",
		Flags:  []cli.Flag{assetIdFlag},
		Action: rewardAction,
	}
	yieldCmd = &cli.Command{
		Name:   "yield",
		Usage:  "Show the yield a staked asset would pay out if claimed now",
		Flags:  []cli.Flag{assetIdFlag},
		Action: yieldAction,
	}
	ownerCmd = &cli.Command{
		Name:   "owner",
		Usage:  "Show the owner of an asset",
		Flags:  []cli.Flag{assetIdFlag},
		Action: ownerAction,
	}
	assetsCmd = &cli.Command{
		Name:   "assets",
		Usage:  "List minted assets",
		Flags:  []cli.Flag{pageFlag, pageSizeFlag, ownerFlag},
		Action: assetsAction,
	}
	listingsCmd = &cli.Command{
		Name:   "listings",
		Usage:  "List assets for sale on the marketplace",
		Action: listingsAction,
	}
	stakedCmd = &cli.Command{
		Name:   "staked",
		Usage:  "List staked assets",
		Action: stakedAction,
	}
	eventsCmd = &cli.Command{
		Name:   "events",
		Usage:  "Show the event history of an asset",
		Flags:  []cli.Flag{assetIdFlag, pageFlag, pageSizeFlag},
		Action: eventsAction,
	}
	statsCmd = &cli.Command{
		Name:   "stats",
		Usage:  "Show aggregate ledger statistics",
		Action: statsAction,
	}
	infoCmd = &cli.Command{
		Name:   "info",
		Usage:  "Show ledger info and active parameters",
		Action: infoAction,
	}
)

func metadataAction(ctx *cli.Context) error {
	return withServices(ctx, func(appCtx context.Context, cfg *config.Config) error {
		svc, err := cfg.AppService()
		if err != nil {
			return err
		}
		asset, err := svc.GetMetadata(appCtx, ctx.Uint64(assetIdFlagName))
		if err != nil {
			return err
		}
		return printJSON(asset)
	})
}

func listingAction(ctx *cli.Context) error {
	return withServices(ctx, func(appCtx context.Context, cfg *config.Config) error {
		svc, err := cfg.AppService()
		if err != nil {
			return err
		}
		listing, err := svc.GetListing(appCtx, ctx.Uint64(assetIdFlagName))
		if err != nil {
			return err
		}
		return printJSON(listing)
	})
}

func rewardAction(ctx *cli.Context) error {
	return withServices(ctx, func(appCtx context.Context, cfg *config.Config) error {
		svc, err := cfg.AppService()
		if err != nil {
			return err
		}
		account, err := svc.GetRewardAccount(appCtx, ctx.Uint64(assetIdFlagName))
		if err != nil {
			return err
		}
		return printJSON(account)
	})
}

func yieldAction(ctx *cli.Context) error {
	return withServices(ctx, func(appCtx context.Context, cfg *config.Config) error {
		svc, err := cfg.AppService()
		if err != nil {
			return err
		}
		reward, err := svc.PendingYield(appCtx, ctx.Uint64(assetIdFlagName))
		if err != nil {
			return err
		}
		return printJSON(map[string]interface{}{
			"asset_id": ctx.Uint64(assetIdFlagName),
			"reward":   reward,
		})
	})
}

func ownerAction(ctx *cli.Context) error {
	return withServices(ctx, func(appCtx context.Context, cfg *config.Config) error {
		owner, err := cfg.IndexerService().GetOwner(appCtx, ctx.Uint64(assetIdFlagName))
		if err != nil {
			return err
		}
		return printJSON(map[string]interface{}{
			"asset_id": ctx.Uint64(assetIdFlagName),
			"owner":    owner,
		})
	})
}

func assetsAction(ctx *cli.Context) error {
	return withServices(ctx, func(appCtx context.Context, cfg *config.Config) error {
		indexer := cfg.IndexerService()
		if owner := ctx.String(ownerFlagName); owner != "" {
			assets, err := indexer.GetAssetsByOwner(appCtx, owner)
			if err != nil {
				return err
			}
			return printJSON(assets)
		}
		resp, err := indexer.GetAssets(appCtx, pageFromFlags(ctx))
		if err != nil {
			return err
		}
		return printJSON(resp)
	})
}

func listingsAction(ctx *cli.Context) error {
	return withServices(ctx, func(appCtx context.Context, cfg *config.Config) error {
		listings, err := cfg.IndexerService().GetActiveListings(appCtx)
		if err != nil {
			return err
		}
		return printJSON(listings)
	})
}

func stakedAction(ctx *cli.Context) error {
	return withServices(ctx, func(appCtx context.Context, cfg *config.Config) error {
		assets, err := cfg.IndexerService().GetStakedAssets(appCtx)
		if err != nil {
			return err
		}
		return printJSON(assets)
	})
}

func eventsAction(ctx *cli.Context) error {
	return withServices(ctx, func(appCtx context.Context, cfg *config.Config) error {
		resp, err := cfg.IndexerService().GetAssetEvents(
			appCtx, ctx.Uint64(assetIdFlagName), pageFromFlags(ctx),
		)
		if err != nil {
			return err
		}
		return printJSON(resp)
	})
}

func statsAction(ctx *cli.Context) error {
	return withServices(ctx, func(appCtx context.Context, cfg *config.Config) error {
		stats, err := cfg.IndexerService().GetStats(appCtx)
		if err != nil {
			return err
		}
		return printJSON(stats)
	})
}

func infoAction(ctx *cli.Context) error {
	return withServices(ctx, func(appCtx context.Context, cfg *config.Config) error {
		svc, err := cfg.AppService()
		if err != nil {
			return err
		}
		info, err := svc.GetInfo(appCtx)
		if err != nil {
			return err
		}
		return printJSON(info)
	})
}
