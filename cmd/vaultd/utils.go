package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/urfave/cli/v2"
	"github.com/vaultmint/vaultd/internal/config"
	"github.com/vaultmint/vaultd/internal/core/application"
)

// withServices loads the config from flags and env vars, boots the app
// service against the datadir and hands control to fn. Commands run
// with the exact same wiring as the daemon, so a command executed
// against a stopped daemon's datadir sees the same ledger state.
func withServices(
	ctx *cli.Context, fn func(appCtx context.Context, cfg *config.Config) error,
) error {
	cfg, err := config.LoadConfig(ctx)
	if err != nil {
		return err
	}
	log.SetLevel(log.Level(cfg.LogLevel))

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %s", err)
	}

	svc, err := cfg.AppService()
	if err != nil {
		return err
	}
	if err := svc.Start(); err != nil {
		return err
	}
	defer svc.Stop()

	return fn(ctx.Context, cfg)
}

// advanceChain moves the chain one block forward. Ledger commands call
// it after a successful operation so that consecutive invocations see
// increasing heights without a running block producer.
func advanceChain(ctx context.Context, cfg *config.Config) error {
	if _, err := cfg.AdminService().AdvanceHeight(ctx, 1); err != nil {
		return fmt.Errorf("failed to advance chain height: %s", err)
	}
	return nil
}

func pageFromFlags(ctx *cli.Context) *application.Page {
	if !ctx.IsSet(pageFlagName) && !ctx.IsSet(pageSizeFlagName) {
		return nil
	}
	return &application.Page{
		PageNum:  int32(ctx.Int(pageFlagName)),
		PageSize: int32(ctx.Int(pageSizeFlagName)),
	}
}

// printJSON pretty prints by default; VAULTD_COMPACT_OUTPUT=true emits a
// single line for piping into other tools.
func printJSON(resp interface{}) error {
	var (
		jsonBytes []byte
		err       error
	)
	if viper.GetBool("compact-output") {
		jsonBytes, err = json.Marshal(resp)
	} else {
		jsonBytes, err = json.MarshalIndent(resp, "", "\t")
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, string(jsonBytes))
	return nil
}
