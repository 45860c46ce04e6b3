package main

import (
	"fmt"
	"os"

	"coaching-payments/internal/client"
	"coaching-payments/internal/config"
	"coaching-payments/internal/logger"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:           "coaching-api",
		Short:         "Course catalogue, LiqPay checkout and webhook service",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(createAdminCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type app struct {
	cfg    *config.Config
	logger *zap.Logger
	db     *gorm.DB
}

// bootstrap loads .env and the environment, then opens the logger and database.
func bootstrap() (*app, error) {
	// load .env into os.Environ
	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "No .env file found (ok in prod)")
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.Log, cfg.Environment)
	if err != nil {
		return nil, err
	}

	db, err := client.InitDBClient(cfg.Database)
	if err != nil {
		_ = log.Sync()
		return nil, err
	}
	log.Info("database connected", zap.String("driver", cfg.Database.Driver))

	return &app{cfg: cfg, logger: log, db: db}, nil
}

func (a *app) close() {
	if err := client.CloseDB(a.db); err != nil {
		a.logger.Warn("close database", zap.Error(err))
	}
	_ = a.logger.Sync()
}
