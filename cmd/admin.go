package cmd

import (
	"fmt"
	"os"

	"portfolio-site/pkg/authapi"
	"portfolio-site/pkg/config"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	adminEmail    string
	adminPassword string
)

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Register an admin account with the hosted auth API",
	Long: `Signs up a user with the hosted auth API. The password comes from
--password or ADMIN_PASSWORD.

Signing up grants nothing by itself: add the email to ADMIN_EMAILS, or set
app_metadata.role to "admin" with the service key, before signing in.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		if !cfg.AuthEnabled() {
			return fmt.Errorf("SUPABASE_URL and SUPABASE_ANON_KEY are required")
		}

		password := adminPassword
		if password == "" {
			password = os.Getenv("ADMIN_PASSWORD")
		}
		if password == "" {
			return fmt.Errorf("no password: pass --password or set ADMIN_PASSWORD")
		}

		client := authapi.NewClient(cfg.SupabaseURL, cfg.SupabaseKey)
		user, err := client.SignUp(cmd.Context(), adminEmail, password, nil)
		if err != nil {
			return err
		}
		logger.Info("Admin account created", zap.String("email", user.Email), zap.String("id", user.ID.String()))
		fmt.Fprintf(cmd.OutOrStdout(), "Created account %s\n", user.Email)
		if !cfg.IsAdminEmail(user.Email) {
			fmt.Fprintf(cmd.OutOrStdout(), "Add %s to ADMIN_EMAILS to allow it into /admin\n", user.Email)
		}
		return nil
	},
}

func init() {
	createAdminCmd.Flags().StringVar(&adminEmail, "email", "", "admin email address")
	createAdminCmd.Flags().StringVar(&adminPassword, "password", "", "admin password (default ADMIN_PASSWORD)")
	_ = createAdminCmd.MarkFlagRequired("email")
	rootCmd.AddCommand(createAdminCmd)
}
