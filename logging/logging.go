// Package logging builds the zap logger. Stdout is reserved for the menus,
// so log output goes to a rotated file.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"personal-library/config"
)

// New returns a logger writing to cfg.File and a cleanup func that flushes
// it. An empty File disables logging.
func New(cfg config.Log) (*zap.Logger, func()) {
	if cfg.File == "" {
		return zap.NewNop(), func() {}
	}

	var lvl zapcore.Level
	if err := lvl.Set(cfg.Level); err != nil {
		lvl = zapcore.InfoLevel
	}

	var enc zapcore.Encoder
	if cfg.JSON {
		ec := zap.NewProductionEncoderConfig()
		ec.EncodeTime = zapcore.ISO8601TimeEncoder
		ec.TimeKey = "ts"
		ec.EncodeCaller = zapcore.ShortCallerEncoder
		enc = zapcore.NewJSONEncoder(ec)
	} else {
		ec := zap.NewDevelopmentEncoderConfig()
		ec.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05.000")
		ec.EncodeCaller = zapcore.ShortCallerEncoder
		enc = zapcore.NewConsoleEncoder(ec)
	}

	rotator := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    max(1, cfg.MaxSizeMB),
		MaxBackups: max(0, cfg.MaxBackups),
		MaxAge:     max(0, cfg.MaxAgeDays),
	}
	core := zapcore.NewCore(enc, zapcore.AddSync(rotator), lvl)

	l := zap.New(core, zap.AddCaller())
	cleanup := func() {
		_ = l.Sync()
		_ = rotator.Close()
	}
	return l, cleanup
}
