package logging

import (
	"github.com/rs/zerolog"
)

// NewZerologAccessLogger creates an access logger that just outputs to Zerolog.
func NewZerologAccessLogger(logger zerolog.Logger) ProtectedVarsAccessLogger {
	return &zerologAccessLogger{logger: logger}
}

type zerologAccessLogger struct {
	logger zerolog.Logger
}

func (l *zerologAccessLogger) LogProtectedVarsAccess(viewer string, vars []string) {
	l.logger.Info().
		Str("operationName", accessOperationName).
		Str("viewer", viewer).
		Strs("variables", vars).
		Msg("Protected variables viewed")
}
