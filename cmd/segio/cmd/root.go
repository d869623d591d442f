package cmd

import (
	"os"

	"github.com/javi11/segio/internal/slogutil"
	"github.com/spf13/cobra"
)

var (
	configFile string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "segio",
	Short: "Stream, copy, and hash byte streams through segmented buffers",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := LoadConfig(configFile)
		if err != nil {
			return err
		}
		if logLevel != "" {
			cfg.Log.Level = logLevel
		}
		slogutil.Setup(slogutil.Config{
			Level: cfg.Log.Level,
			File:  cfg.Log.File,
		})
		currentConfig = cfg
		return nil
	},
}

// currentConfig is the configuration loaded for the running command.
var currentConfig *Config

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is ./segio.yaml when present)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
