package config

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds a zap logger from the logging section of the config.
// Format must be "json" or "console"; an unknown format is a config error
// rather than a silent fallback.
func NewLogger(cfg LoggingConfig) (*zap.Logger, error) {
	var base zap.Config
	switch cfg.Format {
	case "json":
		base = zap.NewProductionConfig()
	case "console", "":
		base = zap.NewDevelopmentConfig()
		base.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	default:
		return nil, fmt.Errorf("unknown log format %q, want json or console", cfg.Format)
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	base.Level = zap.NewAtomicLevelAt(level)

	switch cfg.OutputPath {
	case "", "stdout":
		// zap's default stderr output stays for errors; regular output goes
		// to stdout so container log collectors can split the two streams.
		base.OutputPaths = []string{"stdout"}
	default:
		base.OutputPaths = []string{cfg.OutputPath}
		base.ErrorOutputPaths = []string{cfg.OutputPath}
	}

	logger, err := base.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, nil
}
