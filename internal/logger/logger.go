// Package logger initializes the process-wide structured logger.
package logger

import "go.uber.org/zap"

// Init builds a production zap logger.
func Init() (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.DisableStacktrace = true
	return cfg.Build()
}
