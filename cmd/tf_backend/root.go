package main

import (
	"log/slog"
	"os"

	"github.com/SscSPs/transit_finance/internal/platform/config"
	"github.com/spf13/cobra"
)

var (
	flagLogLevel string

	logger *slog.Logger
	cfg    *config.Config
)

var rootCmd = &cobra.Command{
	Use:           "tf_backend",
	Short:         "Transit operator accounting backend",
	Long:          "General ledger, receivables with installment schedules and a revenue-to-ledger bridge, served over HTTP.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var level slog.Level
		if err := level.UnmarshalText([]byte(flagLogLevel)); err != nil {
			level = slog.LevelInfo
		}
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
		slog.SetDefault(logger)

		loaded, err := config.LoadConfig()
		if err != nil {
			logger.Error("Failed to load config", slog.String("error", err.Error()))
			return err
		}
		cfg = loaded
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
}

// Execute runs the root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		if logger != nil {
			logger.Error("Command failed", slog.String("error", err.Error()))
		} else {
			slog.Error("Command failed", slog.String("error", err.Error()))
		}
		return err
	}
	return nil
}
