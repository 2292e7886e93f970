package main

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"

	"warungledger/backend/internal/logger"
	pgstore "warungledger/backend/internal/store/postgres"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema to DATABASE_URL",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required for migrate")
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		pg, err := pgstore.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer pg.Close()

		if err := pg.Migrate(ctx); err != nil {
			return err
		}
		log := logger.WithComponent("migrate")
		log.Info().Msg("schema applied")
		return nil
	},
}
