package utils

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps a zap sugared logger with the printf-style level methods used
// throughout the scraper.
type Logger struct {
	sugar *zap.SugaredLogger
}

// NewLogger creates a console logger writing to stdout (errors also go to stderr).
// level is one of debug, info, warn, error; anything else means info.
func NewLogger(level string) *Logger {
	lvl := zapcore.InfoLevel
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = zapcore.InfoLevel
	}

	encoderCfg := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		MessageKey:     "msg",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.TimeEncoderOfLayout("15:04:05"),
		EncodeDuration: zapcore.StringDurationEncoder,
	}
	encoder := zapcore.NewConsoleEncoder(encoderCfg)

	atLevel := zap.NewAtomicLevelAt(lvl)
	belowError := zap.LevelEnablerFunc(func(l zapcore.Level) bool {
		return atLevel.Enabled(l) && l < zapcore.ErrorLevel
	})
	core := zapcore.NewTee(
		zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), belowError),
		zapcore.NewCore(encoder, zapcore.Lock(os.Stderr), zapcore.ErrorLevel),
	)
	return &Logger{sugar: zap.New(core).Sugar()}
}

// NewNopLogger returns a logger that discards everything.
func NewNopLogger() *Logger {
	return &Logger{sugar: zap.NewNop().Sugar()}
}

func (l *Logger) Info(msg string, args ...interface{}) {
	l.sugar.Infof(msg, args...)
}

func (l *Logger) Warn(msg string, args ...interface{}) {
	l.sugar.Warnf(msg, args...)
}

func (l *Logger) Error(msg string, args ...interface{}) {
	l.sugar.Errorf(msg, args...)
}

func (l *Logger) Debug(msg string, args ...interface{}) {
	l.sugar.Debugf(msg, args...)
}

// Sync flushes buffered entries; call before exit.
func (l *Logger) Sync() {
	_ = l.sugar.Sync()
}
