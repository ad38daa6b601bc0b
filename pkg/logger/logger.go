// Package logger builds the zap-backed logr.Logger used across filterbar and
// carries it through context.Context.
package logger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"strings"
	"sync"
	"syscall"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/oakwood-commons/filterbar/pkg/settings"
)

type loggerContextKey struct{}

const (
	RootCommandKey = "root_command"
	SubCommandKey  = "sub_command"
	CommitKey      = "commit"
	VersionKey     = "version"
	BuildTimeKey   = "build_time"
	GoVersionKey   = "go_version"
	TimeStampKey   = "timestamp"
	MessageKey     = "message"
	PropertyKey    = "property"
	PathKey        = "path"
)

var (
	once sync.Once

	// globalZapLogger backs Sync.
	globalZapLogger *zap.Logger

	// globalLogrLogger is the FromContext fallback once Get has run.
	globalLogrLogger *logr.Logger

	defaultNoopLogger = logr.Discard()
)

func newZap(w io.Writer, logLevel int8) *zap.Logger {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.TimeKey = TimeStampKey
	encoderCfg.MessageKey = MessageKey

	goVersion := "unknown"
	if info, ok := debug.ReadBuildInfo(); ok {
		goVersion = info.GoVersion
	}
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderCfg),
		zapcore.Lock(zapcore.AddSync(w)),
		zap.NewAtomicLevelAt(zapcore.Level(logLevel)),
	).With([]zapcore.Field{
		zap.String(CommitKey, settings.VersionInformation.Commit),
		zap.String(VersionKey, settings.VersionInformation.BuildVersion),
		zap.String(BuildTimeKey, settings.VersionInformation.BuildTime),
		zap.String(GoVersionKey, goVersion),
	})
	return zap.New(core,
		zap.AddCaller(),
		zap.AddStacktrace(zap.ErrorLevel),
		zap.WithFatalHook(zapcore.WriteThenPanic),
	)
}

// Get initializes the global logger writing JSON to stderr. Only the first
// call configures it; later calls return the same instance. A logLevel of -1
// enables debug output.
func Get(logLevel int8) *logr.Logger {
	return GetWithWriter(os.Stderr, logLevel)
}

// GetWithWriter is Get with an explicit destination, used when stderr
// belongs to a full-screen terminal UI.
func GetWithWriter(w io.Writer, logLevel int8) *logr.Logger {
	once.Do(func() {
		globalZapLogger = newZap(w, logLevel)
		gl := zapr.NewLogger(globalZapLogger)
		globalLogrLogger = &gl
	})
	if globalLogrLogger == nil {
		return &defaultNoopLogger
	}
	return globalLogrLogger
}

// New builds a standalone logger that is not installed globally.
func New(w io.Writer, logLevel int8) *logr.Logger {
	l := zapr.NewLogger(newZap(w, logLevel))
	return &l
}

// WithLogger returns ctx carrying log. A context already carrying the same
// instance is returned as is.
func WithLogger(ctx context.Context, log *logr.Logger) context.Context {
	if lp, ok := ctx.Value(loggerContextKey{}).(*logr.Logger); ok && lp == log {
		return ctx
	}
	return context.WithValue(ctx, loggerContextKey{}, log)
}

// FromContext returns the context's logger, else the global logger, else a
// no-op logger.
func FromContext(ctx context.Context) *logr.Logger {
	if ctx != nil {
		if log, ok := ctx.Value(loggerContextKey{}).(*logr.Logger); ok {
			return log
		}
	}
	if globalLogrLogger != nil {
		return globalLogrLogger
	}
	return &defaultNoopLogger
}

// Sync flushes buffered entries. Errors from syncing pipes and terminals are ignored.
func Sync() {
	if globalZapLogger == nil {
		return
	}
	if err := globalZapLogger.Sync(); err != nil && !isIgnorableSyncError(err) {
		fmt.Fprintf(os.Stderr, "WARNING: failed to sync zap logger: %v\n", err)
	}
}

func isIgnorableSyncError(err error) bool {
	if errors.Is(err, syscall.ENOTTY) || errors.Is(err, syscall.EINVAL) || errors.Is(err, syscall.EIO) || errors.Is(err, syscall.EBADF) {
		return true
	}
	// Windows consoles report an invalid handle wrapped in *os.PathError.
	return strings.Contains(err.Error(), "The handle is invalid")
}

// GetNoopLogger returns a logger that discards everything.
func GetNoopLogger() *logr.Logger {
	return &defaultNoopLogger
}

// WithValues returns a copy of lgr with extra key/value pairs.
func WithValues(lgr *logr.Logger, keysAndValues ...any) *logr.Logger {
	nlgr := lgr.WithValues(keysAndValues...)
	return &nlgr
}
