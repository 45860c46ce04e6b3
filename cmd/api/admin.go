package main

import (
	"context"
	"fmt"

	"coaching-payments/internal/client"
	"coaching-payments/internal/repository"
	"coaching-payments/internal/service"
	"coaching-payments/internal/validation"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	adminEmail    string
	adminPassword string
	adminName     string
)

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create or reset an admin account",
	Long: `Create an admin account for the contact moderation endpoints.
Running it again for the same email resets the password.

Examples:
  coaching-api create-admin --email coach@example.com --password 'correct horse' --name Coach`,
	RunE: runCreateAdmin,
}

func init() {
	createAdminCmd.Flags().StringVar(&adminEmail, "email", "", "admin email")
	createAdminCmd.Flags().StringVar(&adminPassword, "password", "", "admin password (min 8 characters)")
	createAdminCmd.Flags().StringVar(&adminName, "name", "", "display name")
	_ = createAdminCmd.MarkFlagRequired("email")
	_ = createAdminCmd.MarkFlagRequired("password")
}

func runCreateAdmin(cmd *cobra.Command, args []string) error {
	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.close()

	if err := client.Migrate(a.db); err != nil {
		return err
	}

	// token signing is not used here, only hashing
	auth := service.NewAuthService(repository.NewAdminUserRepository(a.db), validation.New(), a.cfg.Admin.JWTSecret, a.cfg.Admin.TokenTTL)
	user, err := auth.CreateAdmin(context.Background(), adminEmail, adminPassword, adminName)
	if err != nil {
		return fmt.Errorf("create admin: %w", err)
	}

	a.logger.Info("admin saved", zap.String("email", user.Email))
	return nil
}
