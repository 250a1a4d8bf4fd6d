// Package logging builds the process-wide zap logger and provides helpers
// to keep credentials out of log output.
package logging

import (
	"fmt"

	"go.uber.org/zap"
)

// NewLogger returns a zap logger appropriate for the environment.
// "local" and "dev" get the human-readable development config; everything
// else gets the JSON production config.
func NewLogger(env string) (*zap.Logger, error) {
	var logger *zap.Logger
	var err error

	switch env {
	case "local", "dev":
		logger, err = zap.NewDevelopment()
	default:
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	return logger, nil
}
