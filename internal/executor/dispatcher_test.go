package executor

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"rsadesk/internal/trade"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type funcRunner func(ctx context.Context, item trade.WorkItem) Result

func (f funcRunner) Run(ctx context.Context, item trade.WorkItem) Result { return f(ctx, item) }

func items(brokers ...string) []trade.WorkItem {
	out := make([]trade.WorkItem, 0, len(brokers))
	for _, b := range brokers {
		out = append(out, trade.WorkItem{Side: trade.SideBuy, Quantity: 1, Tickers: []string{"AAPL"}, Broker: b})
	}
	return out
}

func brokersOf(results []Result) []string {
	out := make([]string, 0, len(results))
	for _, r := range results {
		out = append(out, r.Item.Broker)
	}
	return out
}

func TestDispatchCollectsInCompletionOrder(t *testing.T) {
	delays := map[string]time.Duration{
		"Slow":   300 * time.Millisecond,
		"Medium": 150 * time.Millisecond,
		"Fast":   0,
	}
	d := NewDispatcher(funcRunner(func(_ context.Context, item trade.WorkItem) Result {
		time.Sleep(delays[item.Broker])
		return Result{Item: item, Stdout: []string{item.Broker + " ok"}}
	}))

	results := d.Dispatch(context.Background(), items("Slow", "Medium", "Fast"))
	require.Len(t, results, 3)
	assert.Equal(t, []string{"Fast", "Medium", "Slow"}, brokersOf(results))
}

func TestDispatchRunsItemsConcurrently(t *testing.T) {
	var running, peak int32
	d := NewDispatcher(funcRunner(func(_ context.Context, item trade.WorkItem) Result {
		n := atomic.AddInt32(&running, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(100 * time.Millisecond)
		atomic.AddInt32(&running, -1)
		return Result{Item: item}
	}))

	results := d.Dispatch(context.Background(), items("A", "B", "C", "D"))
	assert.Len(t, results, 4)
	assert.EqualValues(t, 4, atomic.LoadInt32(&peak))
}

func TestDispatchIsolatesFailures(t *testing.T) {
	d := NewDispatcher(funcRunner(func(_ context.Context, item trade.WorkItem) Result {
		switch item.Broker {
		case "Broken":
			return Result{Item: item, Err: errors.New("failed to start")}
		case "Panics":
			panic("bot crashed")
		}
		time.Sleep(50 * time.Millisecond)
		return Result{Item: item, Stdout: []string{"filled"}}
	}))

	results := d.Dispatch(context.Background(), items("Broken", "Chase", "Panics", "Webull"))
	require.Len(t, results, 4)
	byBroker := map[string]Result{}
	for _, r := range results {
		byBroker[r.Item.Broker] = r
	}
	assert.Error(t, byBroker["Broken"].Err)
	assert.ErrorContains(t, byBroker["Panics"].Err, "panic: bot crashed")
	assert.NoError(t, byBroker["Chase"].Err)
	assert.Equal(t, []string{"filled"}, byBroker["Webull"].Stdout)
}

func TestDispatchEmpty(t *testing.T) {
	assert.Nil(t, NewDispatcher(funcRunner(nil)).Dispatch(context.Background(), nil))
}

func TestDispatchNilRunner(t *testing.T) {
	results := NewDispatcher(nil).Dispatch(context.Background(), items("Chase"))
	require.Len(t, results, 1)
	assert.Error(t, results[0].Err)
}

func TestDispatchRealProcesses(t *testing.T) {
	script := writeBot(t, `
echo "Running bot from command line"
echo "$*"
`)
	d := NewDispatcher(shellRunner(script))
	batch := []trade.WorkItem{
		{Side: trade.SideBuy, Quantity: 3, Tickers: []string{"AAPL"}, Broker: "Schwab", DryRun: true},
		{Side: trade.SideBuy, Quantity: 3, Tickers: []string{"AAPL"}, Broker: "Fidelity", DryRun: true},
	}

	results := d.Dispatch(context.Background(), batch)
	require.Len(t, results, 2)
	got := map[string][]string{}
	for _, r := range results {
		require.NoError(t, r.Err)
		got[r.Item.Broker] = r.Stdout
	}
	assert.Equal(t, []string{"BUY 3 AAPL Schwab True"}, got["Schwab"])
	assert.Equal(t, []string{"BUY 3 AAPL Fidelity True"}, got["Fidelity"])
}

func TestDispatchStartFailureDoesNotBlockSiblings(t *testing.T) {
	script := writeBot(t, `
echo "Running bot from command line"
echo "ok $4"
`)
	good := shellRunner(script)
	bad := &Runner{Python: "/nonexistent/python", Script: script, Sentinel: sentinel}
	d := NewDispatcher(funcRunner(func(ctx context.Context, item trade.WorkItem) Result {
		if item.Broker == "Bad" {
			return bad.Run(ctx, item)
		}
		return good.Run(ctx, item)
	}))

	results := d.Dispatch(context.Background(), items("Bad", "Chase", "Webull"))
	require.Len(t, results, 3)
	for _, r := range results {
		if r.Item.Broker == "Bad" {
			assert.Error(t, r.Err)
			continue
		}
		require.NoError(t, r.Err)
		assert.Equal(t, []string{"ok " + r.Item.Broker}, r.Stdout)
	}
}
