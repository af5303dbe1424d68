// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the court-harvest CLI.
//
// harvest runs one case page through the pipeline and saves the text to
// disk; serve exposes the same pipeline over HTTP.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/court-harvest/internal/logging"
	"github.com/pdiddy/court-harvest/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the court-harvest CLI.
var rootCmd = &cobra.Command{
	Use:   "court-harvest",
	Short: "Collect court case documents as plain text",
	Long: `court-harvest reads a court case page, finds the PDF documents it links
to, downloads a bounded batch of them one at a time, and extracts their
text layer.

Use harvest for a single case from the command line and serve to run the
HTTP API.`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./court-harvest.yaml or ~/.config/court-harvest/court-harvest.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	_ = viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))

	configureViper(viper.GetViper())
}

// configureViper registers every config key with its default and enables
// COURT_HARVEST_* environment overrides. Keys must be registered for
// environment values to reach Unmarshal.
func configureViper(v *viper.Viper) {
	v.SetEnvPrefix("COURT_HARVEST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("log_level", "info")

	v.SetDefault("harvest.page_timeout", types.DefaultPageTimeout)
	v.SetDefault("harvest.document_timeout", types.DefaultDocumentTimeout)
	v.SetDefault("harvest.user_agent", types.DefaultUserAgent)
	v.SetDefault("harvest.max_body_bytes", types.DefaultMaxBodyBytes)
	v.SetDefault("harvest.media_path", types.DefaultMediaPath)
	v.SetDefault("harvest.version_param", types.DefaultVersionParam)
	v.SetDefault("harvest.fetch_delay", types.DefaultFetchDelay)
	v.SetDefault("harvest.max_documents", types.DefaultMaxDocuments)

	v.SetDefault("server.addr", types.DefaultAddr)
	v.SetDefault("server.allowed_hosts", []string{types.DefaultAllowedHost})
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.request_timeout", types.DefaultRequestTimeout)
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("court-harvest")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "court-harvest"))
		}
	}

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig decodes the merged defaults, config file, environment, and
// bound flags.
func loadConfig(v *viper.Viper) (types.Config, error) {
	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding config: %w", err)
	}
	cfg.Harvest = cfg.Harvest.WithDefaults()
	cfg.Server = cfg.Server.WithDefaults()
	return cfg, nil
}

// newLogger builds the stderr logger for cfg.LogLevel.
func newLogger(cfg types.Config) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	return logging.New(os.Stderr, level), nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
