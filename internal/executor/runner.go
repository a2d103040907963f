package executor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"rsadesk/internal/config"
	"rsadesk/internal/logger"
	"rsadesk/internal/pkg/text"
	"rsadesk/internal/trade"

	"golang.org/x/sync/errgroup"
)

// Result is what one bot invocation produced. Err is set only when the
// process could not be started or its output could not be read; a non-zero
// exit status is reported through ExitCode alone.
type Result struct {
	Item     trade.WorkItem
	Stdout   []string
	Stderr   []string
	ExitCode int
	Err      error
	Started  time.Time
	Duration time.Duration
}

// Runner launches the bot script once per work item.
type Runner struct {
	Python   string
	Script   string
	Sentinel string
	WorkDir  string
	Timeout  time.Duration
}

// NewRunner builds a Runner from the bot section of the config.
func NewRunner(cfg config.BotConfig) *Runner {
	return &Runner{
		Python:   cfg.Python,
		Script:   cfg.ScriptPath,
		Sentinel: cfg.Sentinel,
		WorkDir:  cfg.WorkDir,
		Timeout:  time.Duration(cfg.TimeoutSeconds) * time.Second,
	}
}

// Ready reports whether the interpreter and script are configured.
func (r *Runner) Ready() error {
	if r == nil || strings.TrimSpace(r.Python) == "" || strings.TrimSpace(r.Script) == "" {
		return config.ErrScriptNotConfigured
	}
	return nil
}

// Run executes the script for item and blocks until it exits and both of its
// output streams are drained.
func (r *Runner) Run(ctx context.Context, item trade.WorkItem) Result {
	res := Result{Item: item, Started: time.Now()}
	if err := r.Ready(); err != nil {
		res.Err = err
		return res
	}
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}
	args := append([]string{r.Script}, item.Args()...)
	out, err := runProcess(ctx, processSpec{
		name:     r.Python,
		args:     args,
		dir:      r.WorkDir,
		tag:      item.Broker,
		sentinel: r.Sentinel,
	})
	res.Stdout = out.stdout
	res.Stderr = out.stderr
	res.ExitCode = out.exitCode
	res.Err = err
	res.Duration = time.Since(res.Started)
	return res
}

type processSpec struct {
	name     string
	args     []string
	dir      string
	tag      string
	sentinel string
}

type processOutput struct {
	stdout   []string
	stderr   []string
	exitCode int
}

func runProcess(ctx context.Context, spec processSpec) (processOutput, error) {
	var out processOutput
	cmd := exec.CommandContext(ctx, spec.name, spec.args...)
	cmd.Dir = spec.dir
	// unbuffered so lines reach us while the bot is still running
	cmd.Env = append(os.Environ(), "PYTHONUNBUFFERED=1")
	isolateProcess(cmd)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return out, fmt.Errorf("failed to create stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return out, fmt.Errorf("failed to create stderr pipe: %w", err)
	}

	logger.Infof("[executor] start %s %s", spec.name, text.Truncate(strings.Join(spec.args, " "), 512))
	if err := cmd.Start(); err != nil {
		return out, fmt.Errorf("failed to start %s: %w", spec.name, err)
	}

	// Each stream has its own reader goroutine and its own slice.
	var readers errgroup.Group
	window := newCaptureWindow(spec.sentinel)
	readers.Go(func() error {
		return scanLines(stdout, func(line string) {
			captured := window.observe(line)
			logger.LogProcessLine(spec.tag, "stdout", line, captured)
			if captured {
				out.stdout = append(out.stdout, line)
			}
		})
	})
	readers.Go(func() error {
		return scanLines(stderr, func(line string) {
			logger.LogProcessLine(spec.tag, "stderr", line, true)
			out.stderr = append(out.stderr, line)
		})
	})
	readErr := readers.Wait()

	waitErr := cmd.Wait()
	out.exitCode = exitCode(cmd, waitErr)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return out, fmt.Errorf("%s interrupted: %w", spec.tag, ctxErr)
	}
	var exitErr *exec.ExitError
	if waitErr != nil && !errors.As(waitErr, &exitErr) {
		return out, fmt.Errorf("waiting for %s failed: %w", spec.name, waitErr)
	}
	if readErr != nil {
		return out, fmt.Errorf("reading %s output failed: %w", spec.tag, readErr)
	}
	if out.exitCode != 0 {
		logger.Warnf("[executor] %s exited with status %d (stderr lines=%d)", spec.tag, out.exitCode, len(out.stderr))
	}
	if spec.sentinel != "" && window.state == statePreCapture {
		logger.Warnf("[executor] %s never printed %q; nothing captured", spec.tag, spec.sentinel)
	}
	return out, nil
}

func exitCode(cmd *exec.Cmd, waitErr error) int {
	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		return exitErr.ExitCode()
	}
	if cmd.ProcessState != nil {
		return cmd.ProcessState.ExitCode()
	}
	return -1
}
