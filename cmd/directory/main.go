// Command directory maintains the clinic directory and treatment index:
// schema migrations, seed imports and Typesense reindexing.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/zatekoja/dentisalud-funnel/internal/infrastructure/observability"
	"github.com/zatekoja/dentisalud-funnel/pkg/config"
)

var Version = "development"

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:     "directory",
	Short:   "mantenimiento del cuadro médico y del catálogo de tratamientos",
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		loaded, err := config.Load()
		if err != nil {
			return fmt.Errorf("loading configuration: %w", err)
		}
		cfg = loaded
		observability.InitLogger("directory", cfg.App.Env, os.Stderr)
		return nil
	},
	SilenceUsage: true,
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
