package testutils

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// NewTestLogger creates a debug level zerolog.Logger that writes to testing.T's log.
func NewTestLogger(t testing.TB) zerolog.Logger {
	return newLogger(testWriter{t: t})
}

// NewCapturingTestLogger is like NewTestLogger, and also keeps every line written so tests can assert on them.
func NewCapturingTestLogger(t testing.TB) (zerolog.Logger, *LogCapture) {
	c := &LogCapture{}
	return newLogger(testWriter{t: t, capture: c}), c
}

func newLogger(w testWriter) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: true}).Level(zerolog.DebugLevel).With().Timestamp().Caller().Logger()
}

// LogCapture holds the lines written by a capturing test logger.
type LogCapture struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

// String returns everything logged so far.
func (c *LogCapture) String() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.String()
}

// Contains tells whether any logged line contains s.
func (c *LogCapture) Contains(s string) bool {
	return strings.Contains(c.String(), s)
}

type testWriter struct {
	t       testing.TB
	capture *LogCapture
}

func (tw testWriter) Write(p []byte) (n int, err error) {
	line := strings.TrimSpace(string(p))
	tw.t.Log(line)
	if tw.capture != nil {
		tw.capture.mu.Lock()
		tw.capture.buf.WriteString(line + "\n")
		tw.capture.mu.Unlock()
	}
	return len(p), nil
}
