// Package monitoring owns the package-level diagnostic loggers. Info and
// debug lines go through Logf and Debugf, which default to a zap sugared
// logger and may be replaced or muted.
package monitoring

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var base = zap.NewNop().Sugar()

// Logf is the info-level diagnostic logger.
var Logf func(format string, v ...interface{}) = func(format string, v ...interface{}) {
	base.Infof(format, v...)
}

// Debugf carries verbose tally reports; muted unless Init enabled debug.
var Debugf func(format string, v ...interface{}) = func(format string, v ...interface{}) {
	base.Debugf(format, v...)
}

// Init builds the zap logger that backs Logf and Debugf. The returned sync
// function flushes buffered entries and should be deferred by main.
func Init(verbose bool) (func() error, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.DisableStacktrace = true
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	base = logger.Sugar()
	return logger.Sync, nil
}

// SetLogger replaces Logf. Passing nil will set a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// SetDebugLogger replaces Debugf. Passing nil will set a no-op logger.
func SetDebugLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Debugf = func(string, ...interface{}) {}
		return
	}
	Debugf = f
}
