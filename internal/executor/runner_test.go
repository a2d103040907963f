package executor

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"rsadesk/internal/config"
	"rsadesk/internal/trade"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sentinel = "Running bot from command line"

// writeBot writes a shell script standing in for the python bot; the runner
// invokes it as "/bin/sh <script> <args...>".
func writeBot(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bot.sh")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func shellRunner(script string) *Runner {
	return &Runner{Python: "/bin/sh", Script: script, Sentinel: sentinel}
}

var buyItem = trade.WorkItem{
	Side:     trade.SideBuy,
	Quantity: 3,
	Tickers:  []string{"AAPL"},
	Broker:   "Schwab",
	DryRun:   true,
}

func TestRunCapturesAfterSentinel(t *testing.T) {
	script := writeBot(t, `
echo "starting up"
echo "warming" >&2
echo "Running bot from command line"
echo "args: $*"
echo ""
echo "  done  "
`)
	res := shellRunner(script).Run(context.Background(), buyItem)

	require.NoError(t, res.Err)
	assert.Equal(t, 0, res.ExitCode)
	assert.Equal(t, []string{"args: BUY 3 AAPL Schwab True", "done"}, res.Stdout)
	assert.Equal(t, []string{"warming"}, res.Stderr)
	assert.Equal(t, buyItem, res.Item)
}

func TestRunWithoutSentinelCapturesNothing(t *testing.T) {
	script := writeBot(t, `
echo "line one"
echo "line two"
exit 0
`)
	res := shellRunner(script).Run(context.Background(), buyItem)

	require.NoError(t, res.Err)
	assert.Equal(t, 0, res.ExitCode)
	assert.Empty(t, res.Stdout)
}

func TestRunNonZeroExitIsNotAnError(t *testing.T) {
	script := writeBot(t, `
echo "Running bot from command line"
echo "partial"
echo "Traceback: boom" >&2
exit 3
`)
	res := shellRunner(script).Run(context.Background(), buyItem)

	require.NoError(t, res.Err)
	assert.Equal(t, 3, res.ExitCode)
	assert.Equal(t, []string{"partial"}, res.Stdout)
	assert.Equal(t, []string{"Traceback: boom"}, res.Stderr)
}

func TestRunNotConfigured(t *testing.T) {
	res := (&Runner{Python: "python"}).Run(context.Background(), buyItem)
	assert.ErrorIs(t, res.Err, config.ErrScriptNotConfigured)
	assert.Equal(t, buyItem, res.Item)
}

func TestRunStartFailure(t *testing.T) {
	r := &Runner{Python: filepath.Join(t.TempDir(), "no-such-python"), Script: "bot.py", Sentinel: sentinel}
	res := r.Run(context.Background(), buyItem)
	require.Error(t, res.Err)
	assert.Contains(t, res.Err.Error(), "failed to start")
}

func TestRunTimeout(t *testing.T) {
	script := writeBot(t, "exec sleep 5\n")
	r := shellRunner(script)
	r.Timeout = 100 * time.Millisecond

	start := time.Now()
	res := r.Run(context.Background(), buyItem)
	require.Error(t, res.Err)
	assert.ErrorIs(t, res.Err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 4*time.Second)
}

func TestRunTimeoutKillsChildProcesses(t *testing.T) {
	// the backgrounded sleep inherits stdout and stderr
	script := writeBot(t, `
sleep 4 &
echo "Running bot from command line"
echo "placing order"
sleep 4
`)
	r := shellRunner(script)
	r.Timeout = 200 * time.Millisecond

	start := time.Now()
	res := r.Run(context.Background(), buyItem)
	require.Error(t, res.Err)
	assert.ErrorIs(t, res.Err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 3*time.Second)
	assert.Equal(t, []string{"placing order"}, res.Stdout)
}

func TestNewRunnerFromConfig(t *testing.T) {
	r := NewRunner(config.BotConfig{
		Python:         "python3",
		ScriptPath:     "autoRSA.py",
		Sentinel:       sentinel,
		TimeoutSeconds: 7,
	})
	assert.Equal(t, 7*time.Second, r.Timeout)
	assert.NoError(t, r.Ready())
	assert.ErrorIs(t, NewRunner(config.BotConfig{Python: "python3"}).Ready(), config.ErrScriptNotConfigured)
}
