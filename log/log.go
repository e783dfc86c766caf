// Package log provides the single zap logger used throughout blame:
// structured, leveled logging instead of a hand-rolled log line format.
package log

import (
	"sync"

	"go.uber.org/zap"
)

var (
	once   sync.Once
	global *zap.SugaredLogger
)

// L returns the process-wide sugared logger, building a production
// logger on first use. SetDebug() toggles verbosity for the -debug CLI flag.
func L() *zap.SugaredLogger {
	once.Do(func() {
		logger, err := zap.NewProduction()
		if err != nil {
			// If the production logger cannot be built, fall back to a
			// no-op logger: subsequent log lines are discarded.
			logger = zap.NewNop()
		}
		global = logger.Sugar()
	})
	return global
}

// SetDebug swaps the global logger for a development logger (console
// encoding, debug level) when the caller wants verbose solver/sampler
// progress output.
func SetDebug() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		return
	}
	global = logger.Sugar()
}

// Sync flushes any buffered log entries. Call before process exit.
func Sync() {
	if global != nil {
		_ = global.Sync()
	}
}
