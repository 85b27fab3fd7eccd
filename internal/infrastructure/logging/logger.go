package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Output formats. Console is for a developer watching the shell from a
// terminal; JSON is for log collectors reading the packaged application's
// stdout.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// Logger wraps zap.Logger with shell-specific construction.
type Logger struct {
	*zap.Logger
}

// Config defines logger configuration.
type Config struct {
	Level       string // "debug", "info", "warn", "error"
	Format      string // FormatConsole or FormatJSON
	OutputPaths []string
}

// DefaultConfig returns the configuration used by a packaged application:
// JSON frames at info level on stdout.
func DefaultConfig() Config {
	return Config{
		Level:       "info",
		Format:      FormatJSON,
		OutputPaths: []string{"stdout"},
	}
}

// DevelopmentConfig returns the configuration used with the -dev flag:
// colored console output at debug level.
func DevelopmentConfig() Config {
	return Config{
		Level:       "debug",
		Format:      FormatConsole,
		OutputPaths: []string{"stdout"},
	}
}

// New creates a logger with the provided configuration.
func New(cfg Config) (*Logger, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	console := cfg.Format == FormatConsole

	zapCfg := zap.Config{
		Level:             zap.NewAtomicLevelAt(level),
		Development:       console,
		Encoding:          cfg.Format,
		EncoderConfig:     encoderConfig(console),
		OutputPaths:       cfg.OutputPaths,
		ErrorOutputPaths:  []string{"stderr"},
		DisableCaller:     !console,
		DisableStacktrace: !console,
	}

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, err
	}

	return &Logger{Logger: logger}, nil
}

// NewDefault creates a logger with default configuration.
func NewDefault() *Logger {
	logger, err := New(DefaultConfig())
	if err != nil {
		// Fallback to no-op logger
		return &Logger{Logger: zap.NewNop()}
	}
	return logger
}

// NewDevelopment creates a logger with development configuration.
func NewDevelopment() *Logger {
	logger, err := New(DevelopmentConfig())
	if err != nil {
		// Fallback to no-op logger
		return &Logger{Logger: zap.NewNop()}
	}
	return logger
}

// Named returns a child logger tagged with a shell component name, which
// surfaces as the "component" field in JSON output.
func (l *Logger) Named(name string) *Logger {
	return &Logger{Logger: l.Logger.Named(name)}
}

// parseLevel converts string level to zapcore.Level.
func parseLevel(level string) (zapcore.Level, error) {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return zapcore.InfoLevel, err
	}
	return l, nil
}

func encoderConfig(console bool) zapcore.EncoderConfig {
	if console {
		return zapcore.EncoderConfig{
			TimeKey:        "T",
			LevelKey:       "L",
			NameKey:        "N",
			CallerKey:      "C",
			FunctionKey:    zapcore.OmitKey,
			MessageKey:     "M",
			StacktraceKey:  "S",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.CapitalColorLevelEncoder,
			EncodeTime:     zapcore.TimeEncoderOfLayout("15:04:05.000"),
			EncodeDuration: zapcore.StringDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		}
	}

	return zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "component",
		CallerKey:      zapcore.OmitKey,
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "msg",
		StacktraceKey:  "stack",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.MillisDurationEncoder,
	}
}
