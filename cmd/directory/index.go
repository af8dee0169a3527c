package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zatekoja/dentisalud-funnel/internal/adapters/database"
	"github.com/zatekoja/dentisalud-funnel/internal/adapters/search"
	"github.com/zatekoja/dentisalud-funnel/internal/application/services"
	"github.com/zatekoja/dentisalud-funnel/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/dentisalud-funnel/internal/infrastructure/clients/typesense"
)

func newIndexTreatmentsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "index-treatments",
		Short: "Copies the treatment catalogue into Typesense",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cfg.Typesense.URL == "" {
				return errors.New("TYPESENSE_URL is not set")
			}
			ctx := cmd.Context()

			pgClient, err := postgres.NewClient(&cfg.Database)
			if err != nil {
				return err
			}
			defer pgClient.Close()

			tsClient, err := typesense.NewClient(&cfg.Typesense)
			if err != nil {
				return err
			}
			index := search.NewTreatmentIndex(tsClient)
			if err := index.InitSchema(ctx); err != nil {
				return err
			}

			n, err := services.NewTreatmentService(database.NewTreatmentAdapter(pgClient), index).Reindex(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "indexed %d treatments\n", n)
			return nil
		},
	}
}

func init() {
	rootCmd.AddCommand(newIndexTreatmentsCmd())
}
