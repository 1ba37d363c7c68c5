package utils

import (
	"testing"

	"classroom/config"

	"go.uber.org/zap/zapcore"
)

// Requirement: LOG_LEVEL drives the logger's level instead of the
// per-environment default.
func TestInitializeLoggerHonorsConfiguredLevel(t *testing.T) {
	prev := config.AppConfig
	defer func() {
		config.AppConfig = prev
		Logger = nil
	}()

	config.AppConfig.Env = "development"
	config.AppConfig.LogLevel = "warn"
	InitializeLogger()

	if Logger.Core().Enabled(zapcore.InfoLevel) {
		t.Error("info should be disabled at the configured warn level")
	}
	if !Logger.Core().Enabled(zapcore.WarnLevel) {
		t.Error("warn should be enabled at the configured warn level")
	}

	config.AppConfig.LogLevel = "not-a-level"
	Logger = nil
	InitializeLogger()
	if !Logger.Core().Enabled(zapcore.DebugLevel) {
		t.Error("an unparseable level should fall back to the environment default")
	}
}
