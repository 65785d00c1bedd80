package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"github.com/vaultmint/vaultd/internal/core/application"
	"github.com/vaultmint/vaultd/internal/core/domain"
	"github.com/vaultmint/vaultd/internal/core/ports"
	"github.com/vaultmint/vaultd/internal/infrastructure/blockproducer"
	"github.com/vaultmint/vaultd/internal/infrastructure/db"
)

// The fee divisor is 1000, so a fee of 1000 basis points eats the whole
// sale price. Anything above that would make purchases always fail.
const maxFeeBasisPoints = 1000

var supportedDbs = supportedType{
	"badger": {},
	"sqlite": {},
}

type Config struct {
	Datadir  string
	DbDir    string
	DbType   string
	LogLevel int

	Deployer       string
	CustodyAccount string

	FeeBasisPoints            uint64
	MinCollateralRatioPercent uint64
	YieldRateBasisPoints      uint64

	Simnet    bool
	BlockTime int64

	repo     ports.RepoManager
	svc      application.Service
	adminSvc application.AdminService
	producer ports.BlockProducer
}

func (c *Config) String() string {
	json, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Sprintf("error while marshalling config JSON: %s", err)
	}
	return string(json)
}

var (
	defaultDatadir        = appDataDir("vaultd")
	defaultLogLevel       = 4
	defaultDbType         = "badger"
	defaultDeployer       = "deployer"
	defaultCustodyAccount = "vault"
	defaultSimnet         = false
	defaultBlockTime      = 10 // seconds
)

// env returns a list of strings prefixed with `VAULTD_`.
// This is used as a syntax sugar for defining env vars.
func env(values ...string) []string {
	envs := make([]string, len(values))

	for i, value := range values {
		envs[i] = fmt.Sprintf("VAULTD_%s", value)
	}

	return envs
}

var (
	Datadir = &cli.StringFlag{
		Usage: "Directory to store data",
		Name:  "datadir", EnvVars: env("DATADIR"),
		Value: defaultDatadir,
	}

	LogLevel = &cli.IntFlag{
		Usage: "Logging level (0-6, where 6 is trace)",
		Name:  "log-level", EnvVars: env("LOG_LEVEL"),
		Value: defaultLogLevel,
	}

	DbType = &cli.StringFlag{
		Usage: "Database type (badger, sqlite)",
		Name:  "db-type", EnvVars: env("DB_TYPE"),
		Value: defaultDbType,
	}

	Deployer = &cli.StringFlag{
		Usage: "Identity that deployed the ledger, allowed to act on any asset",
		Name:  "deployer", EnvVars: env("DEPLOYER"),
		Value: defaultDeployer,
	}

	CustodyAccount = &cli.StringFlag{
		Usage: "Account holding locked collateral and funding yield payouts",
		Name:  "custody-account", EnvVars: env("CUSTODY_ACCOUNT"),
		Value: defaultCustodyAccount,
	}

	FeeBasisPoints = &cli.Uint64Flag{
		Usage: "Marketplace fee in basis points of the sale price",
		Name:  "fee-basis-points", EnvVars: env("FEE_BASIS_POINTS"),
		Value: domain.DefaultFeeBasisPoints,
	}

	MinCollateralRatio = &cli.Uint64Flag{
		Usage: "Minimum collateral ratio in percent of the declared amount",
		Name:  "min-collateral-ratio", EnvVars: env("MIN_COLLATERAL_RATIO"),
		Value: domain.DefaultMinCollateralRatioPercent,
	}

	YieldRate = &cli.Uint64Flag{
		Usage: "Annualized staking yield in basis points",
		Name:  "yield-rate", EnvVars: env("YIELD_RATE"),
		Value: domain.DefaultYieldRateBasisPoints,
	}

	Simnet = &cli.BoolFlag{
		Usage: "Produce blocks locally at a fixed interval",
		Name:  "simnet", EnvVars: env("SIMNET"),
		Value: defaultSimnet,
	}

	BlockTime = &cli.Int64Flag{
		Usage: "Seconds between produced blocks when simnet is enabled",
		Name:  "block-time", EnvVars: env("BLOCK_TIME"),
		Value: int64(defaultBlockTime),
	}
)

func LoadConfig(c *cli.Context) (*Config, error) {
	if err := initDatadir(c); err != nil {
		return nil, fmt.Errorf("failed to create datadir: %s", err)
	}

	dbPath := filepath.Join(c.String(Datadir.Name), "db")

	return &Config{
		Datadir:                   c.String(Datadir.Name),
		DbDir:                     dbPath,
		DbType:                    c.String(DbType.Name),
		LogLevel:                  c.Int(LogLevel.Name),
		Deployer:                  c.String(Deployer.Name),
		CustodyAccount:            c.String(CustodyAccount.Name),
		FeeBasisPoints:            c.Uint64(FeeBasisPoints.Name),
		MinCollateralRatioPercent: c.Uint64(MinCollateralRatio.Name),
		YieldRateBasisPoints:      c.Uint64(YieldRate.Name),
		Simnet:                    c.Bool(Simnet.Name),
		BlockTime:                 c.Int64(BlockTime.Name),
	}, nil
}

func (c *Config) Validate() error {
	if !supportedDbs.supports(c.DbType) {
		return fmt.Errorf("db type not supported, please select one of: %s", supportedDbs)
	}
	if c.Deployer == "" {
		return fmt.Errorf("missing deployer identity")
	}
	if c.CustodyAccount == "" {
		return fmt.Errorf("missing custody account")
	}
	if c.CustodyAccount == c.Deployer {
		return fmt.Errorf("custody account must be distinct from the deployer identity")
	}
	if c.FeeBasisPoints > maxFeeBasisPoints {
		return fmt.Errorf("invalid fee, must be at most %d basis points", maxFeeBasisPoints)
	}
	if c.MinCollateralRatioPercent < 100 {
		log.Debugf(
			"collateral ratio below 100%%, assets will be under collateralized",
		)
	}
	if c.Simnet && c.BlockTime < 1 {
		return fmt.Errorf("invalid block time, must be at least 1 second")
	}

	if err := c.repoManager(); err != nil {
		return err
	}
	if err := c.adminService(); err != nil {
		return err
	}
	return nil
}

func (c *Config) AppService() (application.Service, error) {
	if c.svc == nil {
		if err := c.appService(); err != nil {
			return nil, err
		}
	}
	return c.svc, nil
}

func (c *Config) AdminService() application.AdminService {
	return c.adminSvc
}

func (c *Config) IndexerService() application.IndexerService {
	return application.NewIndexerService(c.repo, c.CustodyAccount)
}

func (c *Config) BlockProducer() (ports.BlockProducer, error) {
	if !c.Simnet {
		return nil, nil
	}
	if c.producer == nil {
		if err := c.blockProducer(); err != nil {
			return nil, err
		}
	}
	return c.producer, nil
}

func (c *Config) repoManager() error {
	var dataStoreConfig []interface{}
	logger := log.New()

	switch c.DbType {
	case "badger":
		dataStoreConfig = []interface{}{c.DbDir, logger}
	case "sqlite":
		dataStoreConfig = []interface{}{c.DbDir}
	default:
		return fmt.Errorf("unknown db type")
	}

	svc, err := db.NewService(db.ServiceConfig{
		DataStoreType:   c.DbType,
		DataStoreConfig: dataStoreConfig,
	})
	if err != nil {
		return err
	}

	c.repo = svc
	return nil
}

func (c *Config) appService() error {
	svc, err := application.NewService(
		c.repo, c.Deployer, c.CustodyAccount,
		domain.Params{
			FeeBasisPoints:            c.FeeBasisPoints,
			MinCollateralRatioPercent: c.MinCollateralRatioPercent,
			YieldRateBasisPoints:      c.YieldRateBasisPoints,
		},
	)
	if err != nil {
		return err
	}

	c.svc = svc
	return nil
}

func (c *Config) adminService() error {
	c.adminSvc = application.NewAdminService(c.repo, c.Deployer)
	return nil
}

func (c *Config) blockProducer() error {
	producer, err := blockproducer.NewService(
		c.repo.Heights(),
		blockproducer.WithBlockTime(time.Duration(c.BlockTime)*time.Second),
	)
	if err != nil {
		return err
	}

	c.producer = producer
	return nil
}

func initDatadir(c *cli.Context) error {
	datadir := c.String(Datadir.Name)
	return makeDirectoryIfNotExists(datadir)
}

func makeDirectoryIfNotExists(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return os.MkdirAll(path, os.ModeDir|0o755)
	}
	return nil
}

func appDataDir(appName string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return appName + "-data"
	}
	return filepath.Join(home, "."+appName)
}

type supportedType map[string]struct{}

func (t supportedType) String() string {
	types := make([]string, 0, len(t))
	for tt := range t {
		types = append(types, tt)
	}
	return strings.Join(types, " | ")
}

func (t supportedType) supports(typeStr string) bool {
	_, ok := t[typeStr]
	return ok
}
