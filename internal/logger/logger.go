// Package logger builds the shared zap logger.
package logger

import (
	"go.uber.org/zap"
)

// New returns a production zap logger. Callers own the Sync call on
// shutdown.
func New() (*zap.Logger, error) {
	return zap.NewProduction()
}
