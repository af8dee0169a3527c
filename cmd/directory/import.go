package main

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/zatekoja/dentisalud-funnel/internal/adapters/cache"
	"github.com/zatekoja/dentisalud-funnel/internal/adapters/database"
	"github.com/zatekoja/dentisalud-funnel/internal/application/services"
	"github.com/zatekoja/dentisalud-funnel/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/dentisalud-funnel/internal/infrastructure/clients/redis"
)

type importOptions struct {
	File      string
	BatchSize int
	Workers   int
}

func newImportCmd() *cobra.Command {
	opts := importOptions{}

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Imports a medical directory export into PostgreSQL",
		Long: `
Reads a directory export ({"results": [...]}) and upserts every document
keyed by its MedicalDirectoryId. Failed batches are reported and the rest
of the file is still imported.
`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.File == "" {
				opts.File = cfg.Import.SeedFile
			}
			if opts.BatchSize <= 0 {
				opts.BatchSize = cfg.Import.BatchSize
			}
			if opts.Workers <= 0 {
				opts.Workers = cfg.Import.Workers
			}
			return runImport(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "directory export to import (defaults to DIRECTORY_SEED_FILE)")
	cmd.Flags().IntVar(&opts.BatchSize, "batch-size", 0, "records per upsert")
	cmd.Flags().IntVar(&opts.Workers, "workers", 0, "concurrent batches")

	return cmd
}

func init() {
	rootCmd.AddCommand(newImportCmd())
}

func runImport(cmd *cobra.Command, opts importOptions) error {
	ctx := cmd.Context()

	f, err := os.Open(opts.File)
	if err != nil {
		return fmt.Errorf("opening %s: %w", opts.File, err)
	}
	defer f.Close()

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		return err
	}
	defer pgClient.Close()

	directory := database.NewDirectoryAdapter(pgClient)

	// A running API caches directory lookups in Redis; drop the affected
	// keys when Redis is reachable.
	var invalidator services.DirectoryCacheInvalidator
	if redisClient, err := redis.NewClient(ctx, &cfg.Redis); err != nil {
		log.Warn().Err(err).Msg("Redis unavailable, directory cache not invalidated")
	} else {
		defer redisClient.Close()
		invalidator = database.NewCachedDirectoryAdapter(directory, cache.NewRedisAdapter(redisClient), nil)
	}

	var bar *progressbar.ProgressBar
	onBatch := func(done, total int) {}
	if isatty.IsTerminal(os.Stderr.Fd()) {
		onBatch = func(done, total int) {
			if bar == nil {
				bar = progressbar.NewOptions(total,
					progressbar.OptionSetDescription("Importing "+opts.File),
					progressbar.OptionSetWriter(os.Stderr),
					progressbar.OptionShowCount(),
					progressbar.OptionClearOnFinish(),
				)
			}
			_ = bar.Set(done)
		}
	}

	importer := services.NewDirectoryImportService(directory, invalidator, nil)
	result, err := importer.ImportFile(ctx, f, services.ImportOptions{
		BatchSize: opts.BatchSize,
		Workers:   opts.Workers,
		OnBatch:   onBatch,
	})
	if bar != nil {
		_ = bar.Finish()
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "processed %d, inserted %d, failed batches %d\n",
		result.TotalProcessed, result.Inserted, len(result.Errors))
	for _, e := range result.Errors {
		fmt.Fprintf(cmd.OutOrStdout(), "  offset %d (%d records): %s\n", e.Offset, e.Size, e.Message)
	}
	if !result.Success() {
		return fmt.Errorf("%d batches failed", len(result.Errors))
	}
	return nil
}
