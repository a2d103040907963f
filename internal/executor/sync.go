package executor

import (
	"context"
	"strings"
	"time"

	"rsadesk/internal/config"
)

// SyncResult is the output of installing the bot's requirements.
type SyncResult struct {
	Stdout   []string
	Stderr   []string
	ExitCode int
	Err      error
	Duration time.Duration
}

// OK reports whether pip ran and exited cleanly.
func (s SyncResult) OK() bool {
	return s.Err == nil && s.ExitCode == 0
}

// Sync runs "<python> -m pip install -r <requirements>" and captures all of
// its output; there is no sentinel on this path.
func (r *Runner) Sync(ctx context.Context, requirements string) SyncResult {
	start := time.Now()
	if r == nil || strings.TrimSpace(r.Python) == "" || strings.TrimSpace(requirements) == "" {
		return SyncResult{Err: config.ErrRequirementsNotConfigured}
	}
	out, err := runProcess(ctx, processSpec{
		name: r.Python,
		args: []string{"-m", "pip", "install", "-r", requirements},
		dir:  r.WorkDir,
		tag:  "sync",
	})
	return SyncResult{
		Stdout:   out.stdout,
		Stderr:   out.stderr,
		ExitCode: out.exitCode,
		Err:      err,
		Duration: time.Since(start),
	}
}
