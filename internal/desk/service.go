package desk

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"rsadesk/internal/config"
	"rsadesk/internal/executor"
	"rsadesk/internal/logger"
	"rsadesk/internal/store"
	"rsadesk/internal/trade"

	"github.com/google/uuid"
)

// BotRunner is the part of executor.Runner the desk depends on.
type BotRunner interface {
	executor.ItemRunner
	Ready() error
	Sync(ctx context.Context, requirements string) executor.SyncResult
}

// BrokerSource supplies the current supported-broker list.
type BrokerSource interface {
	Brokers() []string
}

// Options wires a Service. Output may be nil when no log path is configured.
type Options struct {
	Runner       BotRunner
	Catalog      BrokerSource
	Output       store.OutputLog
	Requirements string
	Now          func() time.Time
	NewRoundID   func() string
}

// Service is the only writer of the output log. It turns panel submissions
// into dispatch rounds and records what the bots printed.
type Service struct {
	runner       BotRunner
	dispatcher   *executor.Dispatcher
	catalog      BrokerSource
	output       store.OutputLog
	requirements string
	now          func() time.Time
	newRoundID   func() string
}

func NewService(opts Options) (*Service, error) {
	if opts.Runner == nil {
		return nil, errors.New("desk: runner is required")
	}
	if opts.Catalog == nil {
		return nil, errors.New("desk: broker catalog is required")
	}
	s := &Service{
		runner:       opts.Runner,
		dispatcher:   executor.NewDispatcher(opts.Runner),
		catalog:      opts.Catalog,
		output:       opts.Output,
		requirements: strings.TrimSpace(opts.Requirements),
		now:          opts.Now,
		newRoundID:   opts.NewRoundID,
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newRoundID == nil {
		s.newRoundID = uuid.NewString
	}
	return s, nil
}

// Brokers returns the selectable brokers, group selectors included.
func (s *Service) Brokers() []string {
	return s.catalog.Brokers()
}

// Submit validates the order, runs one bot per broker and appends every
// captured stdout line to the output log. Validation and configuration
// errors are returned before anything is started. When the round ran but
// could not be persisted, the report is returned together with the error.
//
// Once dispatched a round is not cancellable: ctx only carries values into
// the bots and the log write, and bot.timeout_seconds is the sole bound.
func (s *Service) Submit(ctx context.Context, o trade.Order) (RoundReport, error) {
	logger.Infof("[desk] %s brokers=%v tickers=%q qty=%d dry=%v", o.Side, o.Brokers, o.Tickers, o.Quantity, o.DryRun)
	items, err := trade.Plan(o, s.catalog.Brokers())
	if err != nil {
		logger.Warnf("[desk] order rejected: %v", err)
		return RoundReport{}, err
	}
	if err := s.runner.Ready(); err != nil {
		logger.Warnf("[desk] order skipped: %v", err)
		return RoundReport{}, err
	}
	if s.output == nil {
		logger.Warnf("[desk] order skipped: %v", config.ErrOutputNotConfigured)
		return RoundReport{}, config.ErrOutputNotConfigured
	}

	roundCtx := context.WithoutCancel(ctx)
	report := RoundReport{
		ID:      s.newRoundID(),
		Order:   o,
		Items:   items,
		Started: s.now(),
	}
	logger.Infof("[desk] round %s dispatching %d item(s)", report.ID, len(items))
	report.Results = s.dispatcher.Dispatch(roundCtx, items)
	report.Finished = s.now()

	rows := report.Rows()
	if err := s.output.Append(roundCtx, rows); err != nil {
		logger.Errorf("[desk] round %s: saving %d row(s) failed: %v", report.ID, len(rows), err)
		return report, fmt.Errorf("save output: %w", err)
	}
	logger.Infof("[desk] round %s saved %d row(s) failures=%d", report.ID, len(rows), report.Failures())
	return report, nil
}

// Rows returns the persisted output log.
func (s *Service) Rows(ctx context.Context) ([]store.Row, error) {
	if s.output == nil {
		return nil, config.ErrOutputNotConfigured
	}
	rows, err := s.output.Rows(ctx)
	if err != nil {
		return nil, fmt.Errorf("load output: %w", err)
	}
	return rows, nil
}

// Clear empties the output log.
func (s *Service) Clear(ctx context.Context) error {
	if s.output == nil {
		return config.ErrOutputNotConfigured
	}
	if err := s.output.Clear(ctx); err != nil {
		return fmt.Errorf("clear output: %w", err)
	}
	logger.Infof("[desk] output log cleared")
	return nil
}

// Sync installs the bot's requirements. Its output is returned but never
// written to the output log.
func (s *Service) Sync(ctx context.Context) (executor.SyncResult, error) {
	if s.requirements == "" {
		return executor.SyncResult{}, config.ErrRequirementsNotConfigured
	}
	logger.Infof("[desk] syncing requirements from %s", s.requirements)
	res := s.runner.Sync(ctx, s.requirements)
	if res.Err != nil {
		logger.Errorf("[desk] sync failed: %v", res.Err)
		return res, res.Err
	}
	if !res.OK() {
		logger.Warnf("[desk] sync exited with status %d", res.ExitCode)
		logger.InfoBlock(strings.Join(res.Stderr, "\n"))
		return res, fmt.Errorf("pip exited with status %d", res.ExitCode)
	}
	logger.Infof("[desk] sync complete in %s", res.Duration.Truncate(time.Millisecond))
	return res, nil
}
