package app

import (
	"context"
	"fmt"

	"rsadesk/internal/config"
	"rsadesk/internal/desk"
	"rsadesk/internal/logger"
	"rsadesk/internal/store"
	"rsadesk/internal/transport/http/panel"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

// App owns the wired desk: config, broker catalog, output log, desk service
// and panel.
type App struct {
	cfg     *config.Config
	desk    *desk.Service
	catalog *config.Catalog
	output  store.OutputLog
	panel   *panel.Server
	Summary *StartupSummary
}

// NewApp builds the application from cfg without starting anything.
func NewApp(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	logger.SetLevel(cfg.App.LogLevel)
	return buildAppWithWire(context.Background(), cfg)
}

// Run serves the panel until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.cfg == nil {
		return fmt.Errorf("app not initialized")
	}
	if a.Summary != nil {
		a.Summary.Print()
	}
	if a.panel == nil {
		return fmt.Errorf("panel not initialized")
	}
	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		if err := a.panel.Start(ctx); err != nil {
			return fmt.Errorf("panel http server error: %w", err)
		}
		return nil
	})
	return group.Wait()
}

// Desk exposes the desk service for the one-shot CLI commands.
func (a *App) Desk() *desk.Service {
	if a == nil {
		return nil
	}
	return a.desk
}

// Close stops the catalog watcher and releases the output log.
func (a *App) Close() error {
	if a == nil {
		return nil
	}
	err := a.catalog.Close()
	if a.output != nil {
		err = multierr.Append(err, a.output.Close())
	}
	return err
}
