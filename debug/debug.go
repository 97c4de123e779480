// ─────────────────────────────────────────────────────────────────────────────
// [Filename]: debug.go: Cold-path diagnostics for the dispatch queue tooling
//
// Purpose:
//   - Logs setup, persistence and CLI failures through one shared zap logger.
//   - Used only in cold paths: journal open/close, snapshot restore, command errors.
//
// Notes:
//   - The queue itself never logs. Nothing here may be called per element.
//   - Tests swap in zap.NewNop() via SetLogger to keep output clean.
// ─────────────────────────────────────────────────────────────────────────────

package debug

import (
	"os"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var logger atomic.Pointer[zap.Logger]

func init() {
	logger.Store(newDefault())
}

// newDefault builds a console logger on stderr at info level.
func newDefault() *zap.Logger {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(cfg),
		zapcore.Lock(os.Stderr),
		zap.InfoLevel,
	)
	return zap.New(core)
}

// Logger returns the shared logger for callers that want structured fields.
func Logger() *zap.Logger {
	return logger.Load()
}

// SetLogger replaces the shared logger and returns the previous one.
// A nil l installs a no-op logger.
func SetLogger(l *zap.Logger) *zap.Logger {
	if l == nil {
		l = zap.NewNop()
	}
	return logger.Swap(l)
}

// buildVerbose builds the debug-level development logger.
var buildVerbose = func() (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg.Build()
}

// SetVerbose installs a debug-level development logger when verbose is true,
// replacing any logger set with SetLogger. If it cannot be built the current
// logger stays and the failure is reported through it. A false verbose is a
// no-op.
func SetVerbose(verbose bool) {
	if !verbose {
		return
	}
	l, err := buildVerbose()
	if err != nil {
		DropError("verbose logger", err)
		return
	}
	logger.Store(l)
}

// DropError logs err under prefix at error level.
// With a nil err only the prefix is logged, at warn level, as a tagged event.
func DropError(prefix string, err error) {
	if err != nil {
		logger.Load().Error(prefix, zap.Error(err))
		return
	}
	logger.Load().Warn(prefix)
}

// DropMessage logs an informational message under prefix.
func DropMessage(prefix, message string) {
	logger.Load().Info(message, zap.String("tag", prefix))
}

// Sync flushes buffered log entries. Errors from syncing a terminal are ignored.
func Sync() {
	_ = logger.Load().Sync()
}
