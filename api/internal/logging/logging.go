// Package logging builds the process zap logger.
package logging

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Style selects the encoder: "json" for production, "console"/"terminal" for humans.
type Style string

const (
	StyleJSON     Style = "json"
	StyleConsole  Style = "console"
	StyleTerminal Style = "terminal"
	StyleNoop     Style = "noop"
)

// New returns a logger for level ("debug", "info", "warn", "error") and style.
// Unknown levels fall back to info.
func New(level string, style Style) *zap.Logger {
	if style == StyleNoop {
		return zap.NewNop()
	}
	lvl, err := zapcore.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		lvl = zapcore.InfoLevel
	}

	var cfg zap.Config
	switch style {
	case StyleConsole, StyleTerminal:
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	default:
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "ts"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
