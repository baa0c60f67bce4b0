package main

import (
	"context"
	"io"
	"log/slog"

	"wordarcade/internal/config"
	"wordarcade/internal/database"
	"wordarcade/internal/logging"
)

// openDB connects using the server's environment configuration and brings
// the schema up to date.
func openDB(ctx context.Context, logOut io.Writer) (*database.DB, *slog.Logger, func(), error) {
	cfg := config.Load()
	logger := logging.NewWithWriter(logOut, cfg.LogLevel)

	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := db.RunMigrations(ctx, cfg.MigrationsPath); err != nil {
		_ = db.Close()
		return nil, nil, nil, err
	}
	cleanup := func() {
		_ = db.Close()
	}
	return db, logger, cleanup, nil
}
