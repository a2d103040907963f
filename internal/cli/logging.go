package cli

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"rsadesk/internal/config"
	"rsadesk/internal/logger"

	"github.com/natefinch/lumberjack"
)

// logOutputs holds the rotating files opened for one run.
type logOutputs struct {
	files []io.Closer
}

func setupLogOutputs(cfg config.AppConfig) (*logOutputs, error) {
	out := &logOutputs{}
	if w, err := rotatingFile(cfg.LogPath, cfg); err != nil {
		return nil, err
	} else if w != nil {
		logger.SetOutput(io.MultiWriter(os.Stdout, w))
		out.files = append(out.files, w)
	}
	logger.SetTranscriptWriter(nil)
	if w, err := rotatingFile(cfg.TranscriptLog, cfg); err != nil {
		out.Close()
		return nil, err
	} else if w != nil {
		logger.SetTranscriptWriter(w)
		out.files = append(out.files, w)
	}
	return out, nil
}

func rotatingFile(path string, cfg config.AppConfig) (*lumberjack.Logger, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return nil, nil
	}
	if dir := filepath.Dir(trimmed); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return &lumberjack.Logger{
		Filename:   trimmed,
		MaxSize:    cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		LocalTime:  true,
	}, nil
}

// Close restores stderr logging and closes the files.
func (l *logOutputs) Close() {
	if l == nil {
		return
	}
	logger.SetTranscriptWriter(nil)
	if len(l.files) > 0 {
		logger.SetOutput(os.Stdout)
	}
	for _, f := range l.files {
		_ = f.Close()
	}
	l.files = nil
}
