package main

import (
	"context"
	"errors"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/moviebox/internal/identity"
	"github.com/desertthunder/moviebox/internal/repositories"
	"github.com/desertthunder/moviebox/internal/services"
	"github.com/desertthunder/moviebox/internal/shared"
	"github.com/desertthunder/moviebox/internal/storage"
	"github.com/urfave/cli/v3"
)

// configEnv points the CLI at a config file other than ./config.toml.
const configEnv = "MOVIEBOX_CONFIG"

func main() {
	ctx := context.Background()
	logger := shared.NewLogger(nil)

	configPath := "config.toml"
	if p := os.Getenv(configEnv); p != "" {
		configPath = p
	}

	config := shared.DefaultConfig()
	if _, err := os.Stat(configPath); err == nil {
		if loadedConfig, err := shared.LoadConfig(configPath); err == nil {
			config = loadedConfig
		} else {
			logger.Warn("failed to load config, using defaults", "path", configPath, "error", err)
		}
	}

	store, err := storage.Open(ctx, config.Database)
	if err != nil {
		logger.Fatalf("failed to open store: %v", err)
	}
	defer store.Close()

	users, err := openAccounts(store, config.Database)
	if err != nil {
		logger.Fatalf("failed to open accounts database: %v", err)
	}

	var metadata services.MetadataService
	if config.HasTMDBCredentials() {
		metadata = services.NewTMDBService(config.Credentials.TMDB, nil)
	}

	runner := NewRunner(RunnerOpts{
		Config:     config,
		ConfigPath: configPath,
		Store:      store,
		Users:      users,
		Metadata:   metadata,
		Logger:     logger,
	})

	if err := runner.auth.Restore(ctx); err != nil {
		logger.Warn("failed to restore session", "error", err)
	}

	app := &cli.Command{
		Name:    "moviebox",
		Usage:   "Track saved movies, watch progress and ratings",
		Version: "0.1.0",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			if cmd.Bool("debug") {
				shared.SetLogLevel(logger, log.DebugLevel)
			}
			return ctx, nil
		},
		Commands: runner.register(),
	}

	if err := app.Run(ctx, os.Args); err != nil {
		if errors.Is(err, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		} else {
			logger.Fatalf("application error: %v", err)
		}
	}
}

// openAccounts returns the user repository. Accounts always live in SQLite at cfg.Path;
// a SQLite key-value store shares its connection.
func openAccounts(store storage.Store, cfg shared.DatabaseConfig) (identity.UserStore, error) {
	if s, ok := store.(*storage.SQLiteStore); ok {
		return repositories.NewUserRepository(s.DB()), nil
	}

	db, err := shared.NewDatabase(cfg.Path)
	if err != nil {
		return nil, err
	}
	shared.ConfigureDatabase(db, cfg.MaxOpenConns, cfg.MaxIdleConns)
	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, err
	}
	return repositories.NewUserRepository(db), nil
}
