package logger

import (
	"bytes"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

// capture sends the log to a buffer for the duration of the test.
func capture(t *testing.T, verboseOn bool) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(verboseOn)
	t.Cleanup(func() {
		SetVerbose(false)
		SetOutput(os.Stderr)
	})
	return &buf
}

func TestSetVerbose(t *testing.T) {
	capture(t, false)
	assert.False(t, IsVerbose())
	SetVerbose(true)
	assert.True(t, IsVerbose())
}

func TestLevels(t *testing.T) {
	tests := []struct {
		name    string
		verbose bool
		log     func()
		want    string
	}{
		{"debug verbose", true, func() { Debug("chunk %d", 3) }, "[DEBUG] chunk 3\n"},
		{"debug quiet", false, func() { Debug("chunk %d", 3) }, ""},
		{"info verbose", true, func() { Info("added %s", "W1") }, "[INFO] added W1\n"},
		{"info quiet", false, func() { Info("added %s", "W1") }, ""},
		{"warn quiet", false, func() { Warn("skipped %s", "x") }, "[WARN] skipped x\n"},
		{"error quiet", false, func() { Error("failed") }, "[ERROR] failed\n"},
		{"trailing newline trimmed", false, func() { Warn("line\n") }, "[WARN] line\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := capture(t, tt.verbose)
			tt.log()
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestSection(t *testing.T) {
	buf := capture(t, true)
	Section("Index /papers")
	assert.Equal(t, "\n== Index /papers ==\n", buf.String())

	buf.Reset()
	SetVerbose(false)
	Section("hidden")
	assert.Empty(t, buf.String())
}

func TestBufferIsNotColoured(t *testing.T) {
	buf := capture(t, false)
	Warn("plain")
	assert.NotContains(t, buf.String(), "\x1b[")
}

func TestConcurrentWrites(t *testing.T) {
	buf := capture(t, true)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			Debug("d")
			Warn("w")
			_ = IsVerbose()
		}()
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 40)
}
