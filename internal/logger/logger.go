package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var log *zap.Logger

// Init builds the global logger. Release mode gets JSON output,
// anything else gets the human-readable development encoder.
func Init(mode, levelStr string) {
	var cfg zap.Config
	if mode == "release" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	var level zapcore.Level
	if err := level.UnmarshalText([]byte(levelStr)); err != nil {
		level = zapcore.InfoLevel
	}
	cfg.Level.SetLevel(level)

	var err error
	log, err = cfg.Build()
	if err != nil {
		panic("init logger: " + err.Error())
	}
}

func L() *zap.Logger {
	if log == nil {
		log, _ = zap.NewProduction()
	}
	return log
}

func Sync() {
	if log != nil {
		_ = log.Sync()
	}
}
