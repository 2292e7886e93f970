package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"warungledger/backend/internal/config"
	"warungledger/backend/internal/ledger"
	"warungledger/backend/internal/logger"
)

var cfg config.Config

var rootCmd = &cobra.Command{
	Use:   "warungledger",
	Short: "Inventory, customer and credit-sales backend for small shops",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.LoadDotEnv(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not load .env: %v\n", err)
		}
		cfg = config.Load()

		logCfg := logger.DefaultConfig()
		logCfg.Level = cfg.LogLevel
		logCfg.Format = cfg.LogFormat
		return logger.Setup(logCfg)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
	SilenceUsage: true,
}

func main() {
	rootCmd.AddCommand(serveCmd, migrateCmd)
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		log := logger.WithComponent("cmd")
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

func validateSecurityConfig(cfg config.Config) error {
	if len(cfg.AuthSecret) < 32 {
		return fmt.Errorf("AUTH_SECRET must be set and at least 32 characters")
	}
	if cfg.FederationSecret != "" && len(cfg.FederationSecret) < 32 {
		return fmt.Errorf("FEDERATION_SECRET must be at least 32 characters when set")
	}
	if _, err := ledger.ParsePolicy(cfg.OverpaymentPolicy); err != nil {
		return fmt.Errorf("OVERPAYMENT_POLICY: %w", err)
	}
	if strings.TrimSpace(cfg.Timezone) == "" {
		return fmt.Errorf("TIMEZONE must not be empty")
	}
	if _, err := cfg.Location(); err != nil {
		return fmt.Errorf("TIMEZONE: %w", err)
	}
	return nil
}
