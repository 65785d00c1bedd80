package main

import (
	"strings"

	"github.com/spf13/viper"
)

// EnvReplacer replaces `-` to `_`.
// This is used to map flag like `--log-level` to environment variables like `VAULTD_LOG_LEVEL`.
var envReplacer = strings.NewReplacer("-", "_")

func init() {
	viper.SetEnvPrefix("VAULTD")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(envReplacer)
}
