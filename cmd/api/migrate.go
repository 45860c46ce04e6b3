package main

import (
	"context"
	"fmt"

	"coaching-payments/internal/client"
	"coaching-payments/internal/repository"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap()
		if err != nil {
			return err
		}
		defer a.close()

		if err := client.Migrate(a.db); err != nil {
			return err
		}
		a.logger.Info("schema migrated")
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert the catalogue courses (existing rows are kept)",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap()
		if err != nil {
			return err
		}
		defer a.close()

		if err := client.Migrate(a.db); err != nil {
			return err
		}
		if err := repository.NewCourseRepository(a.db).Seed(context.Background()); err != nil {
			return fmt.Errorf("seed courses: %w", err)
		}
		a.logger.Info("catalogue seeded")
		return nil
	},
}
