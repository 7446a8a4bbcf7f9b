package main

import (
	"context"
	"fmt"
	"os"
	_ "time/tzdata"

	"github.com/qacker/backend/app"
	"github.com/qacker/backend/conf"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var application *app.App

func main() {
	var logLevel string
	var logFile string
	var storeBackend string

	var rootCmd = &cobra.Command{
		Use:          "qacker-admin",
		Short:        "Admin CLI for the contributor task tracker",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := InitializeLogger(logLevel, logFile); err != nil {
				return err
			}
			cfg, err := conf.Load()
			if err != nil {
				return err
			}
			if storeBackend != "" {
				cfg.Store.Backend = storeBackend
			}
			application, err = app.Build(cmd.Context(), cfg)
			return err
		},
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level [debug, info, warn, error]")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Write logs to this file instead of stderr")
	rootCmd.PersistentFlags().StringVar(&storeBackend, "store", "", "Override the store backend [dynamodb, memory]")

	var tablesCmd = &cobra.Command{
		Use:   "tables",
		Short: "Manage DynamoDB tables",
	}
	tablesCmd.AddCommand(&cobra.Command{
		Use:   "create",
		Short: "Create all tables (DynamoDB Local / fresh accounts)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := application.CreateTables(cmd.Context()); err != nil {
				return err
			}
			log.Info().Msg("tables created")
			return nil
		},
	})

	rootCmd.AddCommand(tablesCmd)
	rootCmd.AddCommand(newUserCmd())
	rootCmd.AddCommand(newTokenCmd())
	rootCmd.AddCommand(newMissedCmd())
	rootCmd.AddCommand(newScoresCmd())
	rootCmd.AddCommand(newLeaderboardCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newReportCmd())

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
