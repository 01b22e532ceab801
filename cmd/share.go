package cmd

import (
	"fmt"

	"portfolio-site/pkg/config"
	"portfolio-site/pkg/services"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var shareProject bool

var shareCmd = &cobra.Command{
	Use:   "share <slug>",
	Short: "Copy the public link of an article or project",
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
		slug := args[0]
		section, title := "articles", ""
		if shareProject {
			section = "projects"
			d := catalog.Project(cmd.Context(), slug)
			if d.State == services.StateNotFound {
				return fmt.Errorf("project %q not found", slug)
			}
			title = d.Record.Title
		} else {
			d := catalog.Article(cmd.Context(), slug)
			if d.State == services.StateNotFound {
				return fmt.Errorf("article %q not found", slug)
			}
			title = d.Record.Title
		}

		link := services.ShareLink(cfg.AppURL, section, slug)
		if err := clipboard.WriteAll(link); err != nil {
			logger.Debug("Clipboard unavailable", zap.Error(err))
			fmt.Fprintln(cmd.OutOrStdout(), link)
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Copied link to %q: %s\n", title, link)
		return nil
	},
}

func init() {
	shareCmd.Flags().BoolVar(&shareProject, "project", false, "share a project instead of an article")
	rootCmd.AddCommand(shareCmd)
}
