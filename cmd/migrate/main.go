package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"

	"hrdesk/internal/platform/config"
	"hrdesk/internal/platform/db"
)

func main() {
	steps := flag.Int("steps", 0, "number of migrations to roll back for down (0 rolls back all)")
	flag.Parse()

	action := "up"
	if flag.NArg() > 0 {
		action = flag.Arg(0)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	if cfg.DatabaseURL == "" {
		slog.Error("DATABASE_URL is required")
		os.Exit(1)
	}

	if err := runMigration(action, cfg.DatabaseURL, *steps); err != nil {
		slog.Error("migration failed", "action", action, "err", err)
		os.Exit(1)
	}
	slog.Info("migration completed", "action", action)
}

func runMigration(action, databaseURL string, steps int) error {
	m, err := db.NewMigrator(databaseURL)
	if err != nil {
		return err
	}
	defer m.Close()

	switch action {
	case "up":
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return err
		}
		return nil
	case "down":
		if steps > 0 {
			err = m.Steps(-steps)
		} else {
			err = m.Down()
		}
		if err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return err
		}
		return nil
	case "drop":
		return m.Drop()
	case "version":
		version, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			slog.Info("no migration applied")
			return nil
		}
		if err != nil {
			return err
		}
		slog.Info("current version", "version", strconv.FormatUint(uint64(version), 10), "dirty", dirty)
		return nil
	default:
		return fmt.Errorf("unsupported action %q", action)
	}
}
