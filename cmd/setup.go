package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/moviebox/internal/shared"
	"github.com/desertthunder/moviebox/internal/storage"
	"github.com/urfave/cli/v3"
)

// Setup creates the config file when missing, then initializes the configured store and the accounts database.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")
	if configPath == "" {
		configPath = "config.toml"
	}

	var config *shared.Config
	if _, err := os.Stat(configPath); err == nil {
		if config, err = shared.LoadConfig(configPath); err != nil {
			r.logger.Warn("failed to load config, using defaults", "error", err)
			config = shared.DefaultConfig()
		}
	} else {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			r.logger.Warn("failed to create config file, using defaults", "error", err)
			config = shared.DefaultConfig()
		} else {
			r.logger.Info("config file created", "path", configPath)
			if config, err = shared.LoadConfig(configPath); err != nil {
				r.logger.Warn("failed to load created config, using defaults", "error", err)
				config = shared.DefaultConfig()
			}
		}
	}

	r.logger.Info("initializing database", "path", config.Database.Path)

	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)

	r.logger.Info("running database migrations")
	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if config.Database.Driver == "postgres" || config.Database.Driver == "postgresql" {
		r.logger.Info("initializing postgres store")
		store, err := storage.Open(ctx, config.Database)
		if err != nil {
			return fmt.Errorf("failed to initialize postgres store: %w", err)
		}
		store.Close()
	}

	r.logger.Infof("setup complete for database: %v", config.Database.Path)

	r.writePlain("✓ Setup complete\n")
	r.writePlain("Config: %s\n", configPath)
	r.writePlain("Database: %s (%s)\n", config.Database.Path, config.Database.Driver)
	r.writePlainln("Next steps:")
	if !config.HasTMDBCredentials() {
		r.writePlain("1. Set credentials.tmdb.api_key in %s or export %s\n", configPath, shared.TMDBAPIKeyEnv)
	} else {
		r.writePlain("1. TMDB credentials found\n")
	}
	r.writePlain("2. Run 'moviebox auth register --email you@example.com' to create an account\n")
	return nil
}
