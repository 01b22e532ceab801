package cmd

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"portfolio-site/pkg/services"

	"github.com/spf13/cobra"
)

var (
	newDir    string
	newFormat string
)

var newCmd = &cobra.Command{
	Use:   "new <articles|projects|resources> <title>",
	Short: "Create a draft content file",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		collection := args[0]
		if !slices.Contains(services.ContentCollections, collection) {
			return fmt.Errorf("unknown collection %q (want one of %s)", collection, strings.Join(services.ContentCollections, ", "))
		}
		path, err := services.NewContentFile(newDir, collection, strings.Join(args[1:], " "), newFormat, time.Now())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

func init() {
	newCmd.Flags().StringVar(&newDir, "dir", "content", "content directory")
	newCmd.Flags().StringVar(&newFormat, "format", "yaml", "front matter format: yaml, toml or json")
	rootCmd.AddCommand(newCmd)
}
