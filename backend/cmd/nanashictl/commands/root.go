// Package commands implements nanashictl, the operator tool for schema
// migrations and admin credentials.
package commands

import (
	"github.com/itchan-dev/nanashi/shared/config"
	"github.com/itchan-dev/nanashi/shared/logger"
	"github.com/spf13/cobra"
)

var configFolder string

var rootCmd = &cobra.Command{
	Use:   "nanashictl",
	Short: "Operator tool for the nanashi board",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// Execute runs the root command.
func Execute() error {
	rootCmd.SilenceUsage = true
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFolder, "config_folder", "backend/config", "path to folder with configs")
}

func loadConfig() *config.Config {
	cfg := config.MustLoad(configFolder)
	logger.Initialize(cfg.Public.LogLevel, cfg.Public.LogJSON)
	return cfg
}
