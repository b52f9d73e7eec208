// Package clog builds the zap logger the CLI driver uses. The parser,
// validator, resolver, shard, and bridge packages are pure and take no
// logger (§5: the core is synchronous and does no I/O); only
// cmd/commercetxt constructs and uses one.
package clog

import (
	"log"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a zap logger for the given level ("debug", "info", "warn",
// "error"; empty defaults to "info"). A "debug" level gets a
// development logger (console encoder, caller info); everything else
// gets a production logger.
func New(level string) *zap.Logger {
	lvl := zapcore.InfoLevel
	if level != "" {
		if parsed, err := zapcore.ParseLevel(level); err == nil {
			lvl = parsed
		}
	}

	var (
		logger *zap.Logger
		err    error
	)
	if level == "debug" {
		cfg := zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(lvl)
		logger, err = cfg.Build(zap.AddCaller())
	} else {
		cfg := zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(lvl)
		logger, err = cfg.Build(zap.AddCaller())
	}
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	return logger
}
