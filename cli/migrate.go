package cli

import (
	"quizpanel/config"
	"quizpanel/database"
	"quizpanel/pkg/logger"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func newMigrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDatabase(*configPath)
			if err != nil {
				return err
			}
			defer closeDatabase(db)

			if err := database.Migrate(db); err != nil {
				return err
			}
			logger.Info("Migrations applied")
			return nil
		},
	}
}

func newSeedCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Migrate and load the default admin, languages, pages and sample quiz",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDatabase(*configPath)
			if err != nil {
				return err
			}
			defer closeDatabase(db)

			if err := database.Migrate(db); err != nil {
				return err
			}
			if err := database.Seed(db); err != nil {
				return err
			}
			logger.Info("Seed data loaded")
			return nil
		},
	}
}

func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	logger.Init(cfg.LogLevel, !cfg.IsProduction())
	return cfg, nil
}

func openDatabase(path string) (*gorm.DB, error) {
	cfg, err := loadConfig(path)
	if err != nil {
		return nil, err
	}
	return database.Connect(cfg.Database)
}

func closeDatabase(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	logger.Sync()
}
