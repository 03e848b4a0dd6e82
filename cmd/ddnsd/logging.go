package main

import (
	"os"
	"strings"

	"github.com/go-logr/logr"
	"go.uber.org/zap/zapcore"

	"sigs.k8s.io/controller-runtime/pkg/log/zap"

	"github.com/kuadrant/ddns-operator/internal/config"
)

// newLogger builds the daemon's logger. The --verbose flag always wins; when
// it is unset, DDNS_LOG_LEVEL (config.LogLevel) supplies the level instead of
// silently defaulting to info.
func newLogger(verbose bool) logr.Logger {
	level := levelFromName(config.LogLevel())
	if verbose {
		level = zapcore.DebugLevel
	}
	devMode := verbose || level == zapcore.DebugLevel
	return zap.New(zap.UseDevMode(devMode), zap.WriteTo(os.Stderr), zap.Level(level))
}

func levelFromName(name string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
