package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
)

// Every package logs through one process-wide slog text handler. The level
// is shared so the CLI can change it after the handler has been swapped.
var (
	level   slog.LevelVar
	current atomic.Pointer[slog.Logger]
)

var levelNames = map[string]slog.Level{
	"debug":   slog.LevelDebug,
	"info":    slog.LevelInfo,
	"warn":    slog.LevelWarn,
	"warning": slog.LevelWarn,
	"error":   slog.LevelError,
}

func init() {
	SetOutput(os.Stdout)
}

// SetOutput sends every later record to w; nil means stdout.
func SetOutput(w io.Writer) {
	if w == nil {
		w = os.Stdout
	}
	current.Store(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:       &level,
		ReplaceAttr: shortTime,
	})))
}

// SetLevel accepts debug/info/warn/error in any case. Unknown names select
// info.
func SetLevel(name string) {
	lvl, ok := levelNames[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		lvl = slog.LevelInfo
	}
	level.Set(lvl)
}

// shortTime keeps millisecond precision and drops the zone; bot lines from
// parallel brokers interleave within the same second.
func shortTime(groups []string, a slog.Attr) slog.Attr {
	if len(groups) == 0 && a.Key == slog.TimeKey && a.Value.Kind() == slog.KindTime {
		return slog.String(slog.TimeKey, a.Value.Time().Format("2006-01-02 15:04:05.000"))
	}
	return a
}

func logf(lvl slog.Level, format string, v ...any) {
	l := current.Load()
	if !l.Enabled(context.Background(), lvl) {
		return
	}
	l.Log(context.Background(), lvl, fmt.Sprintf(format, v...))
}

func Debugf(format string, v ...any) { logf(slog.LevelDebug, format, v...) }
func Infof(format string, v ...any)  { logf(slog.LevelInfo, format, v...) }
func Warnf(format string, v ...any)  { logf(slog.LevelWarn, format, v...) }
func Errorf(format string, v ...any) { logf(slog.LevelError, format, v...) }

// InfoBlock logs multi-line tool output (pip, tracebacks) one record per
// non-empty line.
func InfoBlock(block string) {
	for _, line := range strings.Split(strings.TrimSpace(block), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			Infof("%s", line)
		}
	}
}
