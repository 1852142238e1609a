package logger

import (
	"os"
	"strings"

	"go.uber.org/zap/zapcore"
)

type LoggerConfig struct {
	Level      string // "debug", "info", "warn", "error"
	Format     string // "json", "text"
	OutputFile string // "stdout", "stderr" or a file path
}

// DefaultConfig reads LOG_LEVEL, LOG_FORMAT and LOG_OUTPUT.
func DefaultConfig() *LoggerConfig {
	return &LoggerConfig{
		Level:      envOr("LOG_LEVEL", "info"),
		Format:     envOr("LOG_FORMAT", "json"),
		OutputFile: envOr("LOG_OUTPUT", "stdout"),
	}
}

// ZapLevel parses Level; unknown values report ok=false and fall back to info.
func (c *LoggerConfig) ZapLevel() (zapcore.Level, bool) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(c.Level)))); err != nil {
		return zapcore.InfoLevel, false
	}
	return lvl, true
}

func (c *LoggerConfig) console() bool {
	switch strings.ToLower(c.Format) {
	case "text", "console":
		return true
	}
	return false
}

func envOr(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}
