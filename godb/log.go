package godb

// Structured logging for the lock manager and buffer pool. Grounded on
// other_examples/89e7e081_dan-strohschein-SyndrDB__src-buffermgr-buffer_manager.go.go,
// which injects a *zap.SugaredLogger into its buffer manager constructor,
// and other_examples/5a9edcc7_RichardKnop-minisql__internal-minisql-transaction_manager.go.go,
// which logs transaction-manager lifecycle events with zap.

import "go.uber.org/zap"

// NewLogger returns a zap.Logger suitable for production (JSON, Info level)
// or development (console, Debug level) use.
func NewLogger(development bool) (*zap.Logger, error) {
	if development {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// nopLogger is the default for components constructed without an explicit
// logger (tests, one-off harness code).
func nopLogger() *zap.Logger {
	return zap.NewNop()
}
