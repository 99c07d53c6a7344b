package logging

import (
	"io"
	"time"

	"github.com/rs/zerolog"
)

// ProtectedVarsAccessLogger records every time a viewer is shown the value of protected variables.
type ProtectedVarsAccessLogger interface {
	LogProtectedVarsAccess(viewer string, vars []string)
}

// NewLogger creates the console logger used by the commands. level can be one of: debug, info, warn, error, fatal,
// panic.
func NewLogger(level string, out io.Writer) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Logger{}, err
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}).Level(lvl).With().Timestamp().Caller().Logger(), nil
}
