package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/zatekoja/dentisalud-funnel/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/dentisalud-funnel/migrations"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Applies the embedded schema migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			pgClient, err := postgres.NewClient(&cfg.Database)
			if err != nil {
				return err
			}
			defer pgClient.Close()

			if err := migrations.Apply(cmd.Context(), pgClient.DB()); err != nil {
				return fmt.Errorf("migrating: %w", err)
			}
			log.Info().Msg("schema up to date")
			return nil
		},
	}
}

func init() {
	rootCmd.AddCommand(newMigrateCmd())
}
