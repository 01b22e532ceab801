package cmd

import (
	"errors"
	"fmt"

	"portfolio-site/pkg/browser"
	"portfolio-site/pkg/config"
	"portfolio-site/pkg/services"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var openResourceCmd = &cobra.Command{
	Use:   "open-resource <id>",
	Short: "Count a resource download and open it in the browser",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		store, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		catalog := services.NewCatalog(store, config.DefaultFacets(), 0, logger)
		access, err := catalog.AccessResource(cmd.Context(), args[0])
		if errors.Is(err, services.ErrNotFound) {
			return fmt.Errorf("resource %s not found", args[0])
		}
		if err != nil {
			return err
		}
		if access.Target == "" {
			return fmt.Errorf("resource %s has no file or link", args[0])
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s (%d downloads)\n", access.Target, access.DownloadCount)
		if err := browser.Open(access.Target); err != nil {
			logger.Debug("Failed to open browser", zap.Error(err))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(openResourceCmd)
}
