// Package cmd implements the maintsched command line interface.
package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"maintenance-scheduler/config"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "maintsched",
	Short: "Weekly maintenance schedule optimizer",
	RunE:  runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "config.yaml", "configuration file")
}

// Execute runs the CLI. A .env file, when present, feeds the MS_* overrides
// read by config.Load.
func Execute() error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("load .env: %w", err)
	}
	return rootCmd.Execute()
}

// loadConfig reads cfgPath. A missing file is only an error when the user
// pointed at it explicitly; the default path falls back to built-in defaults
// so the service starts without any file.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if _, err := os.Stat(cfgPath); os.IsNotExist(err) && !cmd.Flags().Changed("config") {
		return config.Default()
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
