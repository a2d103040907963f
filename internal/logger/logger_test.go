package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetLevelFiltersDebug(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() { SetOutput(nil); SetLevel("info") })

	SetLevel("info")
	Debugf("hidden %d", 1)
	Infof("shown %d", 2)
	assert.NotContains(t, buf.String(), "hidden 1")
	assert.Contains(t, buf.String(), "shown 2")

	buf.Reset()
	SetLevel("DEBUG")
	Debugf("visible %d", 3)
	assert.Contains(t, buf.String(), "visible 3")

	buf.Reset()
	SetLevel("loud")
	Debugf("hidden again")
	assert.Empty(t, buf.String())
}

func TestLogProcessLineWritesTranscript(t *testing.T) {
	var transcript bytes.Buffer
	SetTranscriptWriter(&transcript)
	t.Cleanup(func() { SetTranscriptWriter(nil) })

	LogProcessLine("Schwab", "stdout", "order placed", true)
	LogProcessLine("Schwab", "stderr", "warning", false)

	out := transcript.String()
	assert.Contains(t, out, "[BOT][Schwab][stdout][captured] order placed")
	assert.Contains(t, out, "[BOT][Schwab][stderr] warning")
}

func TestLogProcessLineRecordsAttributes(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() { SetOutput(nil); SetLevel("info") })
	SetLevel("info")

	LogProcessLine("Schwab", "stdout", "order placed", true)
	out := buf.String()
	assert.Contains(t, out, `msg="bot output"`)
	assert.Contains(t, out, "broker=Schwab")
	assert.Contains(t, out, "stream=stdout")
	assert.Contains(t, out, "captured=true")
	assert.Contains(t, out, `line="order placed"`)
	assert.Regexp(t, `time="?\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}\.\d{3}"?`, out)

	buf.Reset()
	SetLevel("warn")
	LogProcessLine("Schwab", "stderr", "hidden", true)
	assert.Empty(t, buf.String())
}

func TestLogProcessLineWithoutWriter(t *testing.T) {
	SetTranscriptWriter(nil)
	assert.NotPanics(t, func() { LogProcessLine("Chase", "stdout", "x", false) })
}

func TestInfoBlockSplitsLines(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() { SetOutput(nil) })
	SetLevel("info")

	InfoBlock("  ERROR: first\nERROR: second  \n")
	assert.Contains(t, buf.String(), "ERROR: first")
	assert.Contains(t, buf.String(), "ERROR: second")
	assert.Equal(t, 2, bytes.Count(buf.Bytes(), []byte("level=INFO")))

	buf.Reset()
	InfoBlock("   ")
	assert.Empty(t, buf.String())
}
