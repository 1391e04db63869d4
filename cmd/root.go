package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/UnknownOlympus/waypoint/internal/config"
)

var (
	cfg        *config.Config
	logger     *slog.Logger
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "waypoint",
	Short: "Put work orders on a map",
	Long: `waypoint reads service work-order documents, extracts the delivery address and
reference fields, geocodes the address and keeps the result as a point that can be
listed, edited and served to a map frontend.`,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		c, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c
		logger = setupLogger(cfg.Env, cmd.ErrOrStderr())

		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ./waypoint.yaml)")

	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(serveCmd)
}
