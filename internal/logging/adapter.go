package logging

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// GooseAdapter routes goose migration output through slog. It satisfies
// goose.Logger.
type GooseAdapter struct {
	logger *slog.Logger
}

// NewGooseAdapter creates a GooseAdapter wrapping the given slog.Logger.
// If logger is nil, slog.Default() is used.
func NewGooseAdapter(logger *slog.Logger) *GooseAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &GooseAdapter{logger: logger.With(slog.String(KeyService, "migrate"))}
}

// Printf logs a formatted informational message.
func (a *GooseAdapter) Printf(format string, v ...interface{}) {
	a.logger.Info(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

// Fatalf logs a formatted error and exits.
func (a *GooseAdapter) Fatalf(format string, v ...interface{}) {
	a.logger.Error(strings.TrimSpace(fmt.Sprintf(format, v...)))
	os.Exit(1)
}

// Logger returns the underlying slog.Logger for direct access when needed.
func (a *GooseAdapter) Logger() *slog.Logger {
	return a.logger
}
