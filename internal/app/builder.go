package app

import (
	"context"
	"fmt"

	"rsadesk/internal/config"
	"rsadesk/internal/desk"
	"rsadesk/internal/executor"
	"rsadesk/internal/logger"
	"rsadesk/internal/store"
	"rsadesk/internal/store/csvlog"
	"rsadesk/internal/store/sqlite"
	"rsadesk/internal/transport/http/panel"

	"github.com/spf13/afero"
)

type AppBuilder struct {
	cfg *config.Config

	catalogFn func(string) (*config.Catalog, error)
	outputFn  func(config.OutputConfig) (store.OutputLog, error)
	runnerFn  func(config.BotConfig) desk.BotRunner
	panelFn   func(config.Config, panel.Desk) (*panel.Server, error)
}

func NewAppBuilder(cfg *config.Config) *AppBuilder {
	return &AppBuilder{
		cfg:       cfg,
		catalogFn: config.NewCatalog,
		outputFn:  buildOutputLog,
		runnerFn:  buildRunner,
		panelFn:   buildPanel,
	}
}

func (b *AppBuilder) Build(ctx context.Context) (*App, error) {
	if b == nil || b.cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	cfg := b.cfg

	catalog, err := b.catalogFn(cfg.Bot.BrokersPath)
	if err != nil {
		return nil, fmt.Errorf("load broker catalog: %w", err)
	}

	var output store.OutputLog
	if err := cfg.Output.Ready(); err != nil {
		logger.Warnf("output log disabled: %v", err)
	} else {
		output, err = b.outputFn(cfg.Output)
		if err != nil {
			closeCatalog(catalog)
			return nil, fmt.Errorf("open output log: %w", err)
		}
	}

	runner := b.runnerFn(cfg.Bot)
	if err := runner.Ready(); err != nil {
		logger.Warnf("trading disabled: %v", err)
	}

	svc, err := desk.NewService(desk.Options{
		Runner:       runner,
		Catalog:      catalog,
		Output:       output,
		Requirements: cfg.Bot.RequirementsPath,
	})
	if err != nil {
		closeOutput(output)
		closeCatalog(catalog)
		return nil, err
	}

	srv, err := b.panelFn(*cfg, svc)
	if err != nil {
		closeOutput(output)
		closeCatalog(catalog)
		return nil, fmt.Errorf("build panel: %w", err)
	}

	return &App{
		cfg:     cfg,
		desk:    svc,
		catalog: catalog,
		output:  output,
		panel:   srv,
		Summary: newStartupSummary(cfg, catalog.Snapshot()),
	}, nil
}

func buildOutputLog(cfg config.OutputConfig) (store.OutputLog, error) {
	switch cfg.ResolvedDriver() {
	case config.DriverSQLite:
		return sqlite.NewStore(cfg.Path)
	case config.DriverCSV:
		return csvlog.NewStore(afero.NewOsFs(), cfg.Path)
	default:
		return nil, fmt.Errorf("unknown output driver %q", cfg.Driver)
	}
}

func buildRunner(cfg config.BotConfig) desk.BotRunner {
	return executor.NewRunner(cfg)
}

func buildPanel(cfg config.Config, d panel.Desk) (*panel.Server, error) {
	return panel.NewServer(panel.ServerConfig{
		Addr:     cfg.App.HTTPAddr,
		Desk:     d,
		Accounts: cfg.Auth.Accounts,
	})
}

func closeOutput(out store.OutputLog) {
	if out == nil {
		return
	}
	if err := out.Close(); err != nil {
		logger.Warnf("close output log: %v", err)
	}
}

func closeCatalog(c *config.Catalog) {
	if err := c.Close(); err != nil {
		logger.Warnf("close broker catalog: %v", err)
	}
}
