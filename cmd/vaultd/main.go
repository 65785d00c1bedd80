package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"github.com/vaultmint/vaultd/internal/config"
)

var version = "dev"

func main() {
	app := cli.NewApp()
	app.Name = "vaultd"
	app.Usage = "collateral backed asset ledger"
	app.Version = version
	app.Flags = []cli.Flag{
		config.Datadir,
		config.LogLevel,
		config.DbType,
		config.Deployer,
		config.CustodyAccount,
		config.FeeBasisPoints,
		config.MinCollateralRatio,
		config.YieldRate,
		config.Simnet,
		config.BlockTime,
	}
	app.Commands = []*cli.Command{
		startCmd,
		mintCmd, transferCmd, sellCmd, buyCmd, stakeCmd, unstakeCmd,
		metadataCmd, listingCmd, rewardCmd, yieldCmd, ownerCmd,
		assetsCmd, listingsCmd, stakedCmd, eventsCmd, statsCmd, infoCmd,
		balanceCmd, depositCmd, paramsCmd, updateParamsCmd, advanceCmd,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var startCmd = &cli.Command{
	Name:   "start",
	Usage:  "Run the ledger daemon, producing blocks when simnet is enabled",
	Action: startAction,
}

func startAction(ctx *cli.Context) error {
	cfg, err := config.LoadConfig(ctx)
	if err != nil {
		log.Fatalf("invalid config: %s", err)
	}

	log.SetLevel(log.Level(cfg.LogLevel))
	log.Infof("vaultd config: %s", cfg)

	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %s", err)
	}

	svc, err := cfg.AppService()
	if err != nil {
		log.Fatalf("failed to create app service: %s", err)
	}
	if err := svc.Start(); err != nil {
		log.Fatalf("failed to start app service: %s", err)
	}
	log.RegisterExitHandler(svc.Stop)

	producer, err := cfg.BlockProducer()
	if err != nil {
		log.Fatalf("failed to create block producer: %s", err)
	}
	if producer != nil {
		producer.Start()
		log.RegisterExitHandler(producer.Stop)
		log.Info("block producer started")
	}

	log.Info("vaultd started")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(
		sigChan, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT, syscall.SIGHUP, os.Interrupt,
	)
	<-sigChan

	log.Info("shutting down service...")
	log.Exit(0)
	return nil
}
