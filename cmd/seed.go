package cmd

import (
	"fmt"
	"sort"

	"portfolio-site/pkg/config"
	"portfolio-site/pkg/rowstore"
	"portfolio-site/pkg/services"

	"github.com/spf13/cobra"
)

var seedDir string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Import markdown content into the local SQLite store",
	Long: `Walks <dir>/articles, <dir>/projects and <dir>/resources and upserts every
markdown file (YAML, TOML or JSON front matter) into the SQLite store at
SQLITE_PATH. Existing download counts are kept.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		if cfg.StoreDriver != config.DriverSQLite {
			return fmt.Errorf("seed needs STORE_DRIVER=%s", config.DriverSQLite)
		}
		dir := seedDir
		if dir == "" {
			dir = cfg.ContentDir
		}
		if dir == "" {
			return fmt.Errorf("no content directory: pass --dir or set CONTENT_DIR")
		}

		store, err := rowstore.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return err
		}
		defer store.Close()

		stats, err := services.NewImporter(store, logger).ImportDir(cmd.Context(), dir)
		if err != nil {
			return err
		}

		collections := make([]string, 0, len(stats.Imported))
		for c := range stats.Imported {
			collections = append(collections, c)
		}
		sort.Strings(collections)
		for _, c := range collections {
			fmt.Fprintf(cmd.OutOrStdout(), "%-10s %d\n", c, stats.Imported[c])
		}
		if stats.Skipped > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "skipped    %d (see log)\n", stats.Skipped)
		}
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedDir, "dir", "", "content directory (default CONTENT_DIR)")
	rootCmd.AddCommand(seedCmd)
}
