package executor

import (
	"bufio"
	"io"
	"strings"
)

// maxLineSize bounds a single output line; bots occasionally dump large
// account tables on one line.
const maxLineSize = 4 * 1024 * 1024

type captureState int

const (
	statePreCapture captureState = iota
	stateCapturing
)

func (s captureState) String() string {
	switch s {
	case statePreCapture:
		return "PRE_CAPTURE"
	case stateCapturing:
		return "CAPTURING"
	default:
		return "UNKNOWN"
	}
}

// captureWindow decides which stdout lines belong to the result. Everything
// before the first line containing the sentinel is dropped, the sentinel line
// itself included. An empty sentinel opens the window immediately.
type captureWindow struct {
	sentinel string
	state    captureState
}

func newCaptureWindow(sentinel string) *captureWindow {
	w := &captureWindow{sentinel: sentinel}
	if sentinel == "" {
		w.state = stateCapturing
	}
	return w
}

// observe feeds one line and reports whether it is captured.
func (w *captureWindow) observe(line string) bool {
	switch w.state {
	case statePreCapture:
		if strings.Contains(line, w.sentinel) {
			w.state = stateCapturing
		}
		return false
	default:
		return true
	}
}

// scanLines calls fn for every non-blank line of r, trimmed, as it arrives.
func scanLines(r io.Reader, fn func(line string)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fn(line)
	}
	if err := scanner.Err(); err != nil {
		// keep draining so the child never blocks on a full pipe
		_, _ = io.Copy(io.Discard, r)
		return err
	}
	return nil
}
