// Package cli holds the rentexpress command tree.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"rentexpress/internal/config"
	"rentexpress/internal/database"
	"rentexpress/internal/notify"
	"rentexpress/internal/service"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var (
	configPath string
	rootCmd    *cobra.Command
)

func init() {
	rootCmd = &cobra.Command{
		Use:           "rentexpress",
		Short:         "RentExpress - property management API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "path to the YAML config file")
}

// Execute runs the root command.
func Execute(version string) error {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(createAdminCmd)
	rootCmd.AddCommand(remindCmd)

	rootCmd.Version = version
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

// app is everything a command needs once config and the store are up.
type app struct {
	cfg    *config.Config
	db     *gorm.DB
	logger *slog.Logger
	svc    *service.Services
	close  func()
}

func bootstrap() (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger, logFile, err := newLogger(cfg.Log)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)

	db, err := database.Init(cfg.Database)
	if err != nil {
		closeQuietly(logFile)
		return nil, fmt.Errorf("init database: %w", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		_ = database.Close(db)
		closeQuietly(logFile)
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	svc := service.New(db, notify.New(cfg.Email, logger), service.Options{
		BcryptCost:    cfg.Security.BcryptCost,
		EncryptionKey: cfg.Security.EncryptionKey,
		BackupDir:     cfg.Backup.Dir,
		Logger:        logger,
	})
	return &app{
		cfg:    cfg,
		db:     db,
		logger: logger,
		svc:    svc,
		close: func() {
			_ = database.Close(db)
			closeQuietly(logFile)
		},
	}, nil
}

func closeQuietly(c io.Closer) {
	if c != nil {
		_ = c.Close()
	}
}
