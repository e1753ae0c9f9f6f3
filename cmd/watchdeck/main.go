package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/watchdeck/internal/backend"
	"github.com/jask/watchdeck/internal/config"
	"github.com/jask/watchdeck/internal/database"
	"github.com/jask/watchdeck/internal/prefs"
	"github.com/jask/watchdeck/internal/secrets"
	"github.com/jask/watchdeck/internal/session"
	"github.com/jask/watchdeck/internal/store"
	"github.com/jask/watchdeck/internal/tui"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	svc, cleanup, err := buildService(ctx, cfg)
	if err != nil {
		log.Fatalf("backend: %v", err)
	}
	defer cleanup()

	ident := session.Resolve(cfg)
	st := store.New()

	// persist failures are logged to a file; the alt screen swallows stderr
	logger, closeLog := appLogger()
	defer closeLog()

	last, err := prefs.Load()
	if err != nil {
		log.Printf("warn: ignoring unreadable prefs: %v", err)
	}

	p := tea.NewProgram(tui.New(ctx, cfg, svc, st, ident, logger, last.LastWatchlistID), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("error: %v\n", err)
	}
}

func buildService(ctx context.Context, cfg config.Config) (backend.Service, func(), error) {
	if strings.ToLower(strings.TrimSpace(cfg.Backend.Mode)) == "remote" {
		svc, err := backend.NewHTTPService(cfg.Backend.BaseURL, resolveToken(cfg))
		if err != nil {
			return nil, nil, err
		}
		return svc, func() {}, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("mkdir db dir: %w", err)
	}
	if err := database.RunMigrations(cfg.Database.Path, cfg.Database.Migrations); err != nil {
		return nil, nil, fmt.Errorf("migrate: %w", err)
	}
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("open db: %w", err)
	}
	if err := database.SeedDefaults(ctx, db); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("seed defaults: %w", err)
	}
	return backend.NewLocalService(db), func() { db.Close() }, nil
}

func resolveToken(cfg config.Config) string {
	env := strings.TrimSpace(cfg.Backend.TokenEnv)
	if env == "" {
		env = "WATCHDECK_API_TOKEN"
	}
	if v := os.Getenv(env); v != "" {
		return v
	}
	if tok, err := secrets.FetchToken("remote"); err == nil {
		return tok
	}
	return strings.TrimSpace(cfg.Backend.Token)
}

func appLogger() (*log.Logger, func()) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return log.New(os.Stderr, "", log.LstdFlags), func() {}
	}
	path := filepath.Join(dir, "watchdeck", "watchdeck.log")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return log.New(os.Stderr, "", log.LstdFlags), func() {}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return log.New(os.Stderr, "", log.LstdFlags), func() {}
	}
	return log.New(f, "", log.LstdFlags), func() { _ = f.Close() }
}
