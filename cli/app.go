// ABOUTME: Shared wiring for CLI commands
// ABOUTME: Opens the record store and builds the report service from config
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/harperreed/salesreport/config"
	"github.com/harperreed/salesreport/db"
	"github.com/harperreed/salesreport/report"
)

// App holds what every command needs.
type App struct {
	Config  *config.Config
	Logger  *logrus.Logger
	Store   *db.Store
	Service *report.Service
	Out     io.Writer
}

// NewApp opens the configured store and builds the report service.
func NewApp(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*App, error) {
	calc, weekStart, err := cfg.Analytics()
	if err != nil {
		return nil, err
	}

	store, err := db.Open(ctx, cfg.DBDriver, cfg.DBPath, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open record store: %w", err)
	}

	opts := report.Options{
		Calculator:    calc,
		ActivityCap:   cfg.ActivityCap,
		TopPerformers: cfg.TopPerformers,
	}
	return &App{
		Config:  cfg,
		Logger:  logger,
		Store:   store,
		Service: report.NewService(store, opts, weekStart, logger),
		Out:     os.Stdout,
	}, nil
}

func (a *App) Close() error {
	return a.Store.Close()
}
