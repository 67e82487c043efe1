package config

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/wippyai/contract-abi/errors"
)

func parseLevel(s string) (zapcore.Level, error) {
	if s == "" {
		return zapcore.WarnLevel, nil
	}
	lvl, err := zapcore.ParseLevel(s)
	if err != nil {
		return lvl, errors.New(errors.PhaseLoad, errors.KindInvalidInput).
			Value(s).
			Cause(err).
			Detail("invalid log level %q", s).
			Build()
	}
	return lvl, nil
}

// NewLogger builds a zap logger writing to stderr, or to a rotated file when
// File is set.
func (l LogConfig) NewLogger() (*zap.Logger, error) {
	level, err := parseLevel(l.Level)
	if err != nil {
		return nil, err
	}

	encCfg := zap.NewProductionEncoderConfig()
	encoder := zapcore.NewJSONEncoder(encCfg)
	if l.Development {
		encCfg = zap.NewDevelopmentEncoderConfig()
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encCfg)
	}

	var out zapcore.WriteSyncer = zapcore.AddSync(os.Stderr)
	if l.File != "" {
		out = zapcore.AddSync(&lumberjack.Logger{
			Filename:   l.File,
			MaxSize:    l.MaxSizeMB,
			MaxBackups: l.MaxBackups,
			MaxAge:     l.MaxAgeDays,
			Compress:   l.Compress,
		})
	}

	core := zapcore.NewCore(encoder, out, zap.NewAtomicLevelAt(level))
	opts := []zap.Option{zap.AddCaller()}
	if l.Development {
		opts = append(opts, zap.Development())
	}
	return zap.New(core, opts...), nil
}
