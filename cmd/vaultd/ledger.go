package main

import (
	"context"

	"github.com/urfave/cli/v2"
	"github.com/vaultmint/vaultd/internal/config"
)

var (
	mintCmd = &cli.Command{
		Name:   "mint",
		Usage:  "Mint a new asset, locking collateral funds from the caller",
		Flags:  []cli.Flag{callerFlag, uriFlag, collateralFlag},
		Action: mintAction,
	}
	transferCmd = &cli.Command{
		Name:   "transfer",
		Usage:  "Transfer an asset to another identity",
		Flags:  []cli.Flag{callerFlag, assetIdFlag, toFlag},
		Action: transferAction,
	}
	sellCmd = &cli.Command{
		Name:   "sell",
		Usage:  "List an asset for sale on the marketplace",
		Flags:  []cli.Flag{callerFlag, assetIdFlag, priceFlag},
		Action: sellAction,
	}
	buyCmd = &cli.Command{
		Name:   "buy",
		Usage:  "Purchase a listed asset",
		Flags:  []cli.Flag{callerFlag, assetIdFlag},
		Action: buyAction,
	}
	stakeCmd = &cli.Command{
		Name:   "stake",
		Usage:  "Stake an asset to start accruing yield",
		Flags:  []cli.Flag{callerFlag, assetIdFlag},
		Action: stakeAction,
	}
	unstakeCmd = &cli.Command{
		Name:   "unstake",
		Usage:  "Unstake an asset, claiming any accrued yield",
		Flags:  []cli.Flag{callerFlag, assetIdFlag},
		Action: unstakeAction,
	}
)

func mintAction(ctx *cli.Context) error {
	return withServices(ctx, func(appCtx context.Context, cfg *config.Config) error {
		svc, err := cfg.AppService()
		if err != nil {
			return err
		}
		assetId, err := svc.Mint(
			appCtx, ctx.String(callerFlagName), ctx.String(uriFlagName),
			ctx.Uint64(collateralFlagName),
		)
		if err != nil {
			return err
		}
		if err := advanceChain(appCtx, cfg); err != nil {
			return err
		}
		return printJSON(map[string]interface{}{"asset_id": assetId})
	})
}

func transferAction(ctx *cli.Context) error {
	return withServices(ctx, func(appCtx context.Context, cfg *config.Config) error {
		svc, err := cfg.AppService()
		if err != nil {
			return err
		}
		if err := svc.Transfer(
			appCtx, ctx.String(callerFlagName), ctx.Uint64(assetIdFlagName),
			ctx.String(toFlagName),
		); err != nil {
			return err
		}
		if err := advanceChain(appCtx, cfg); err != nil {
			return err
		}
		return printJSON(map[string]interface{}{
			"asset_id": ctx.Uint64(assetIdFlagName),
			"owner":    ctx.String(toFlagName),
		})
	})
}

func sellAction(ctx *cli.Context) error {
	return withServices(ctx, func(appCtx context.Context, cfg *config.Config) error {
		svc, err := cfg.AppService()
		if err != nil {
			return err
		}
		if err := svc.List(
			appCtx, ctx.String(callerFlagName), ctx.Uint64(assetIdFlagName),
			ctx.Uint64(priceFlagName),
		); err != nil {
			return err
		}
		if err := advanceChain(appCtx, cfg); err != nil {
			return err
		}
		return printJSON(map[string]interface{}{
			"asset_id": ctx.Uint64(assetIdFlagName),
			"price":    ctx.Uint64(priceFlagName),
		})
	})
}

func buyAction(ctx *cli.Context) error {
	return withServices(ctx, func(appCtx context.Context, cfg *config.Config) error {
		svc, err := cfg.AppService()
		if err != nil {
			return err
		}
		if err := svc.Purchase(
			appCtx, ctx.String(callerFlagName), ctx.Uint64(assetIdFlagName),
		); err != nil {
			return err
		}
		if err := advanceChain(appCtx, cfg); err != nil {
			return err
		}
		return printJSON(map[string]interface{}{
			"asset_id": ctx.Uint64(assetIdFlagName),
			"owner":    ctx.String(callerFlagName),
		})
	})
}

func stakeAction(ctx *cli.Context) error {
	return withServices(ctx, func(appCtx context.Context, cfg *config.Config) error {
		svc, err := cfg.AppService()
		if err != nil {
			return err
		}
		if err := svc.Stake(
			appCtx, ctx.String(callerFlagName), ctx.Uint64(assetIdFlagName),
		); err != nil {
			return err
		}
		if err := advanceChain(appCtx, cfg); err != nil {
			return err
		}
		return printJSON(map[string]interface{}{
			"asset_id": ctx.Uint64(assetIdFlagName),
			"staked":   true,
		})
	})
}

func unstakeAction(ctx *cli.Context) error {
	return withServices(ctx, func(appCtx context.Context, cfg *config.Config) error {
		svc, err := cfg.AppService()
		if err != nil {
			return err
		}
		if err := svc.Unstake(
			appCtx, ctx.String(callerFlagName), ctx.Uint64(assetIdFlagName),
		); err != nil {
			return err
		}
		if err := advanceChain(appCtx, cfg); err != nil {
			return err
		}
		return printJSON(map[string]interface{}{
			"asset_id": ctx.Uint64(assetIdFlagName),
			"staked":   false,
		})
	})
}
