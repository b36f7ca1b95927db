package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var log = zap.NewNop()

// Init builds the global logger. Every entry passes through the scrubbing
// core, so PII never reaches the sink.
func Init(level string, production bool) {
	built, err := New(level, production)
	if err != nil {
		panic(err)
	}
	log = built
}

// New returns a JSON logger in production and a console logger otherwise.
// An unknown level falls back to info.
func New(level string, production bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if !production {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.MessageKey = "msg"
	cfg.EncoderConfig.LevelKey = "level"
	cfg.EncoderConfig.CallerKey = "caller"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	return cfg.Build(zap.WrapCore(func(c zapcore.Core) zapcore.Core {
		return NewScrubCore(c)
	}))
}

func Logger() *zap.Logger {
	return log
}
