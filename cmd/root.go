package cmd

import (
	"fmt"
	"os"
	"strings"

	"portfolio-site/pkg/config"
	"portfolio-site/pkg/rowstore"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	verbose bool
	logger  *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "portfolio-site",
	Short: "Instructional design portfolio site",
	Long: `Serves the portfolio site (articles, projects, resources and a contact form)
from a hosted collection store or a local SQLite file, and manages its content.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zc := zap.NewProductionConfig()
		if verbose || strings.EqualFold(os.Getenv("LOG_LEVEL"), "debug") {
			zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		var err error
		logger, err = zc.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openStore opens the collection store the config selects.
func openStore(cfg *config.Config) (rowstore.Store, error) {
	switch cfg.StoreDriver {
	case config.DriverSQLite:
		s, err := rowstore.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("sqlite: %w", err)
		}
		return s, nil
	default:
		return rowstore.NewREST(cfg.SupabaseURL, cfg.SupabaseKey), nil
	}
}

func loadFacets(cfg *config.Config) (config.FacetTable, error) {
	if cfg.FacetsFile == "" {
		return config.DefaultFacets(), nil
	}
	facets, err := config.LoadFacets(cfg.FacetsFile)
	if err != nil {
		return nil, fmt.Errorf("facets: %w", err)
	}
	return facets, nil
}
