package logging

import (
	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	uberzap "go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Verbosity levels passed to logr's V(). zap maps V(n) to level -n.
const (
	INFO  = 0
	DEBUG = 1
	TRACE = 2
)

// NewLogger builds the production logger: JSON output at info level, or
// console output down to the given verbosity when verbosity > 0.
func NewLogger(verbosity int) (logr.Logger, error) {
	var cfg uberzap.Config
	if verbosity > INFO {
		cfg = uberzap.NewDevelopmentConfig()
	} else {
		cfg = uberzap.NewProductionConfig()
	}
	cfg.Level = uberzap.NewAtomicLevelAt(zapcore.Level(-1 * verbosity))

	zl, err := cfg.Build()
	if err != nil {
		return logr.Discard(), err
	}
	return zapr.NewLogger(zl), nil
}

// NewTestLogger creates a new Zap logger using the dev mode.
func NewTestLogger() logr.Logger {
	logger, err := NewLogger(TRACE)
	if err != nil {
		return logr.Discard()
	}
	return logger
}
