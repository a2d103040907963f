package logger

import (
	"context"
	"io"
	"log"
	"log/slog"
	"strings"
	"sync"
)

// The transcript log receives every raw line a bot process prints, whether
// or not it ends up in the captured result. It is off unless a writer is set.
var (
	transcriptMu  sync.Mutex
	transcriptLog *log.Logger
)

func SetTranscriptWriter(w io.Writer) {
	transcriptMu.Lock()
	defer transcriptMu.Unlock()
	if w == nil {
		transcriptLog = nil
		return
	}
	transcriptLog = log.New(w, "", log.LstdFlags)
}

// LogProcessLine records one output line of a bot process. stream is
// "stdout" or "stderr"; captured marks lines that made it into the result.
func LogProcessLine(broker, stream, line string, captured bool) {
	current.Load().LogAttrs(context.Background(), slog.LevelInfo, "bot output",
		slog.String("broker", broker),
		slog.String("stream", stream),
		slog.Bool("captured", captured),
		slog.String("line", line),
	)

	transcriptMu.Lock()
	l := transcriptLog
	transcriptMu.Unlock()
	if l == nil {
		return
	}
	var b strings.Builder
	b.WriteString("[BOT]")
	if broker != "" {
		b.WriteString("[")
		b.WriteString(broker)
		b.WriteString("]")
	}
	b.WriteString("[")
	b.WriteString(stream)
	b.WriteString("]")
	if captured {
		b.WriteString("[captured]")
	}
	b.WriteString(" ")
	b.WriteString(line)
	l.Print(b.String())
}
