package main

import (
	"context"

	"github.com/urfave/cli/v2"
	"github.com/vaultmint/vaultd/internal/config"
	"github.com/vaultmint/vaultd/internal/core/domain"
)

var (
	balanceCmd = &cli.Command{
		Name:   "balance",
		Usage:  "Show the fund balance of an account",
		Flags:  []cli.Flag{accountFlag},
		Action: balanceAction,
	}
	depositCmd = &cli.Command{
		Name:   "deposit",
		Usage:  "Credit funds to an account",
		Flags:  []cli.Flag{accountFlag, amountFlag},
		Action: depositAction,
	}
	paramsCmd = &cli.Command{
		Name:   "params",
		Usage:  "Show the active ledger parameters",
		Action: paramsAction,
	}
	updateParamsCmd = &cli.Command{
		Name:   "update-params",
		Usage:  "Update the ledger parameters, deployer only",
		Flags:  []cli.Flag{callerFlag, feeFlag, collateralRatioFlag, yieldRateFlag},
		Action: updateParamsAction,
	}
	advanceCmd = &cli.Command{
		Name:   "advance",
		Usage:  "Advance the chain height by a number of blocks",
		Flags:  []cli.Flag{blocksFlag},
		Action: advanceAction,
	}
)

func balanceAction(ctx *cli.Context) error {
	return withServices(ctx, func(appCtx context.Context, cfg *config.Config) error {
		balance, err := cfg.AdminService().BalanceOf(appCtx, ctx.String(accountFlagName))
		if err != nil {
			return err
		}
		return printJSON(map[string]interface{}{
			"account": ctx.String(accountFlagName),
			"balance": balance,
		})
	})
}

func depositAction(ctx *cli.Context) error {
	return withServices(ctx, func(appCtx context.Context, cfg *config.Config) error {
		admin := cfg.AdminService()
		if err := admin.Deposit(
			appCtx, ctx.String(accountFlagName), ctx.Uint64(amountFlagName),
		); err != nil {
			return err
		}
		balance, err := admin.BalanceOf(appCtx, ctx.String(accountFlagName))
		if err != nil {
			return err
		}
		return printJSON(map[string]interface{}{
			"account": ctx.String(accountFlagName),
			"balance": balance,
		})
	})
}

func paramsAction(ctx *cli.Context) error {
	return withServices(ctx, func(appCtx context.Context, cfg *config.Config) error {
		params, err := cfg.AdminService().GetParams(appCtx)
		if err != nil {
			return err
		}
		return printJSON(params)
	})
}

func updateParamsAction(ctx *cli.Context) error {
	return withServices(ctx, func(appCtx context.Context, cfg *config.Config) error {
		params := domain.Params{
			FeeBasisPoints:            ctx.Uint64(feeFlagName),
			MinCollateralRatioPercent: ctx.Uint64(collateralRatioFlagName),
			YieldRateBasisPoints:      ctx.Uint64(yieldRateFlagName),
		}
		if err := cfg.AdminService().UpdateParams(
			appCtx, ctx.String(callerFlagName), params,
		); err != nil {
			return err
		}
		return printJSON(params)
	})
}

func advanceAction(ctx *cli.Context) error {
	return withServices(ctx, func(appCtx context.Context, cfg *config.Config) error {
		height, err := cfg.AdminService().AdvanceHeight(appCtx, ctx.Uint64(blocksFlagName))
		if err != nil {
			return err
		}
		return printJSON(map[string]interface{}{"height": height})
	})
}
