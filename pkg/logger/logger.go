// Package logger provides the structured logging constructor shared by every
// Ignite subsystem. It wraps zap so that engine, storage, and index code can
// depend on a single *zap.SugaredLogger field instead of each wiring up its
// own configuration.
package logger

import (
	"go.uber.org/zap"
)

// New creates a production-configured, sugared zap logger tagged with the
// given service name. Every subsystem Config carries the returned logger
// under a "service" field so log lines from a single Instance can be
// correlated across the engine, storage, and index packages.
func New(service string) *zap.SugaredLogger {
	log, err := zap.NewProduction()
	if err != nil {
		// zap.NewProduction only fails on a broken encoder/sink config, which
		// can't happen with the zero-value config used here.
		log = zap.NewNop()
	}

	return log.Sugar().With("service", service)
}

// NewNop returns a logger that discards everything. Useful for tests and
// for callers that don't want the database's internal logging.
func NewNop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}
