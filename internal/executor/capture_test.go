package executor

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCaptureWindowTransitionsOnce(t *testing.T) {
	w := newCaptureWindow("Running bot from command line")
	assert.Equal(t, statePreCapture, w.state)

	assert.False(t, w.observe("loading brokers"))
	assert.False(t, w.observe("INFO Running bot from command line (v2)"))
	assert.Equal(t, stateCapturing, w.state)
	assert.True(t, w.observe("Schwab: bought 1 AAPL"))
	assert.True(t, w.observe("Running bot from command line"))
	assert.Equal(t, "CAPTURING", w.state.String())
}

func TestCaptureWindowEmptySentinelCapturesAll(t *testing.T) {
	w := newCaptureWindow("")
	assert.True(t, w.observe("first"))
	assert.True(t, w.observe("second"))
}

func TestScanLinesTrimsAndSkipsBlank(t *testing.T) {
	var got []string
	err := scanLines(strings.NewReader("  a  \n\n\t\nb\r\n  \nc"), func(line string) {
		got = append(got, line)
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, got)
}
