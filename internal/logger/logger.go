// Package logger builds the zap loggers injected into every component.
package logger

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/agenthands/stargraph/internal/config"
)

// New builds a JSON logger, or a colored console logger in development mode.
func New(cfg config.LogConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	var zc zap.Config
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		zc = zap.NewProductionConfig()
		zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	// Results go to stdout; logs stay on stderr.
	zc.OutputPaths = []string{"stderr"}

	return zc.Build()
}

// Timed logs how long op took when the returned func is called:
//
//	defer logger.Timed(log, "generate")()
func Timed(log *zap.Logger, op string) func() {
	start := time.Now()
	return func() {
		log.Debug("timing", zap.String("op", op), zap.Duration("elapsed", time.Since(start)))
	}
}
