package logger

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is a key/value structured logger backed by zap.
type Logger struct {
	base   *zap.Logger
	sugar  *zap.SugaredLogger
	config *LoggerConfig
}

// New builds a logger from cfg. A nil cfg reads LOG_* environment variables.
func New(cfg *LoggerConfig) (*Logger, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	level, ok := cfg.ZapLevel()
	if !ok {
		fmt.Fprintf(os.Stderr, "Warning: invalid LOG_LEVEL '%s', defaulting to 'info'\n", cfg.Level)
	}

	var zapConfig zap.Config
	if level == zapcore.DebugLevel {
		zapConfig = zap.NewDevelopmentConfig()
	} else {
		zapConfig = zap.NewProductionConfig()
		zapConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	zapConfig.Level = zap.NewAtomicLevelAt(level)

	switch cfg.OutputFile {
	case "", "stdout", "stderr":
		out := cfg.OutputFile
		if out == "" {
			out = "stdout"
		}
		zapConfig.OutputPaths = []string{out}
		zapConfig.ErrorOutputPaths = []string{"stderr"}
	default:
		if err := os.MkdirAll(filepath.Dir(cfg.OutputFile), 0o755); err != nil {
			return nil, fmt.Errorf("create log directory for %s: %w", cfg.OutputFile, err)
		}
		zapConfig.OutputPaths = []string{cfg.OutputFile, "stdout"}
		zapConfig.ErrorOutputPaths = []string{cfg.OutputFile, "stderr"}
	}

	zapConfig.Encoding = "json"
	if cfg.console() {
		zapConfig.Encoding = "console"
		zapConfig.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}

	zl, err := zapConfig.Build()
	if err != nil {
		return nil, fmt.Errorf("build zap logger: %w", err)
	}
	return wrap(zl, cfg), nil
}

// NewNop returns a logger that discards everything.
func NewNop() *Logger {
	return wrap(zap.NewNop(), &LoggerConfig{Level: "error", Format: "json"})
}

func wrap(zl *zap.Logger, cfg *LoggerConfig) *Logger {
	return &Logger{base: zl, sugar: zl.Sugar(), config: cfg}
}

func (l *Logger) Info(msg string, keysAndValues ...interface{}) {
	l.sugar.Infow(msg, keysAndValues...)
}

func (l *Logger) Warn(msg string, keysAndValues ...interface{}) {
	l.sugar.Warnw(msg, keysAndValues...)
}

func (l *Logger) Error(msg string, keysAndValues ...interface{}) {
	l.sugar.Errorw(msg, keysAndValues...)
}

func (l *Logger) Debug(msg string, keysAndValues ...interface{}) {
	l.sugar.Debugw(msg, keysAndValues...)
}

// Named adds a path segment to the logger name, e.g. "usecase.query".
func (l *Logger) Named(name string) *Logger {
	return wrap(l.base.Named(name), l.config)
}

func (l *Logger) With(keysAndValues ...interface{}) *Logger {
	return wrap(l.sugar.With(keysAndValues...).Desugar(), l.config)
}

// Zap exposes the underlying logger for libraries that take one.
func (l *Logger) Zap() *zap.Logger {
	return l.base
}

func (l *Logger) Sync() error {
	return l.base.Sync()
}

func (l *Logger) Config() *LoggerConfig {
	return l.config
}
