package desk

import (
	"fmt"
	"time"

	"rsadesk/internal/executor"
	"rsadesk/internal/store"
	"rsadesk/internal/trade"

	"go.uber.org/multierr"
)

// RoundReport describes one dispatch round.
type RoundReport struct {
	ID       string
	Order    trade.Order
	Items    []trade.WorkItem
	Results  []executor.Result // completion order
	Started  time.Time
	Finished time.Time
}

// Rows flattens the captured stdout of every result into output log rows,
// keeping completion order between brokers and print order within one.
func (r RoundReport) Rows() []store.Row {
	var rows []store.Row
	for _, res := range r.Results {
		for _, line := range res.Stdout {
			rows = append(rows, store.Row{
				Output:    line,
				Round:     r.ID,
				Broker:    res.Item.Broker,
				Side:      string(res.Item.Side),
				Tickers:   append([]string(nil), res.Item.Tickers...),
				CreatedAt: r.Finished,
			})
		}
	}
	return rows
}

// Err combines the per-broker failures. Non-zero exits count as failures
// here even though the dispatcher does not treat them as errors.
func (r RoundReport) Err() error {
	var err error
	for _, res := range r.Results {
		switch {
		case res.Err != nil:
			err = multierr.Append(err, fmt.Errorf("%s: %w", res.Item.Broker, res.Err))
		case res.ExitCode != 0:
			err = multierr.Append(err, fmt.Errorf("%s: exit status %d", res.Item.Broker, res.ExitCode))
		}
	}
	return err
}

// Failures counts the brokers that errored or exited non-zero.
func (r RoundReport) Failures() int {
	return len(multierr.Errors(r.Err()))
}

// Captured is the number of stdout lines kept across the round.
func (r RoundReport) Captured() int {
	n := 0
	for _, res := range r.Results {
		n += len(res.Stdout)
	}
	return n
}

// Elapsed is the wall time of the whole round.
func (r RoundReport) Elapsed() time.Duration {
	if r.Finished.IsZero() {
		return 0
	}
	return r.Finished.Sub(r.Started)
}
