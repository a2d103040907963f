package executor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"rsadesk/internal/logger"
	"rsadesk/internal/trade"

	"golang.org/x/sync/errgroup"
)

// ItemRunner executes a single work item.
type ItemRunner interface {
	Run(ctx context.Context, item trade.WorkItem) Result
}

// Dispatcher runs a batch of work items concurrently, one goroutine per item.
type Dispatcher struct {
	runner ItemRunner
}

func NewDispatcher(runner ItemRunner) *Dispatcher {
	return &Dispatcher{runner: runner}
}

// Dispatch starts every item at once and returns one Result per item in the
// order the workers finished. A failing or panicking worker is reported in
// its own Result and never stops its siblings.
func (d *Dispatcher) Dispatch(ctx context.Context, items []trade.WorkItem) []Result {
	if len(items) == 0 {
		return nil
	}
	results := make([]Result, 0, len(items))
	var mu sync.Mutex
	eg, egCtx := errgroup.WithContext(ctx)

	start := time.Now()
	for _, item := range items {
		eg.Go(func() error {
			res := d.invokeSafe(egCtx, item)
			if res.Err != nil {
				logger.Warnf("[dispatch] %s failed: %v", item.Broker, res.Err)
			} else {
				logger.Infof("[dispatch] %s done exit=%d captured=%d stderr=%d elapsed=%s",
					item.Broker, res.ExitCode, len(res.Stdout), len(res.Stderr), res.Duration.Truncate(time.Millisecond))
			}
			mu.Lock()
			results = append(results, res)
			mu.Unlock()
			return nil
		})
	}
	_ = eg.Wait()
	logger.Infof("[dispatch] round finished items=%d elapsed=%s", len(items), time.Since(start).Truncate(time.Millisecond))
	return results
}

func (d *Dispatcher) invokeSafe(ctx context.Context, item trade.WorkItem) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("[dispatch] %s panic: %v", item.Broker, r)
			res = Result{Item: item, Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	if d.runner == nil {
		return Result{Item: item, Err: fmt.Errorf("dispatcher has no runner")}
	}
	return d.runner.Run(ctx, item)
}
