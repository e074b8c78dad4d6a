package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/deploymenttheory/go-workflow-importer/internal/config"
	"github.com/deploymenttheory/go-workflow-importer/internal/logger"
	apperrors "github.com/deploymenttheory/go-workflow-importer/internal/utils/errors"
	"github.com/spf13/cobra"
)

// Version is set at build time
var Version = "0.1.0"

var cfgFile string

// rootCmd represents the base CLI command
var rootCmd = &cobra.Command{
	Use:   "go-workflow-importer",
	Short: "Bulk import n8n workflow templates",
	Long: `go-workflow-importer collects n8n workflow JSON from local folders,
archives and public template repositories, normalizes every workflow into
the shape the n8n public API accepts, skips content already present on the
destination and creates the rest under unique names.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Initialize(cfgFile); err != nil {
			return err
		}

		// CLI flags override config settings
		if cmd.Flags().Changed("debug") {
			config.Instance.Debug, _ = cmd.Flags().GetBool("debug")
		}
		if cmd.Flags().Changed("log-format") {
			config.Instance.LogFormat, _ = cmd.Flags().GetString("log-format")
		}

		return logger.InitLogger(loggerConfig(&config.Instance))
	},
}

// loggerConfig layers the configured log settings over the logger defaults
func loggerConfig(cfg *config.AppConfig) logger.LoggerConfig {
	logCfg := logger.DefaultConfig()
	logCfg.Debug = cfg.Debug
	logCfg.LogFile = cfg.LogFile
	if cfg.LogFormat != "" {
		logCfg.LogFormat = cfg.LogFormat
	}
	return logCfg
}

// Execute runs the root command. An interrupt cancels the running command.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return rootCmd.ExecuteContext(ctx)
}

// ExitCode maps a command error to the process exit status
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, apperrors.ErrAPIKeyMissing):
		return 2
	default:
		return 1
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is search in standard locations)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().String("log-format", "human", "Log format: json or human")

	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(normalizeCmd)
	rootCmd.AddCommand(fingerprintCmd)
	rootCmd.AddCommand(versionCmd)
}
