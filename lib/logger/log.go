package logger

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	slogmulti "github.com/samber/slog-multi"
	slogsentry "github.com/samber/slog-sentry/v2"

	"github.com/artie-labs/ingest/lib/config"
)

// NewLogger writes to stderr, see [NewLoggerWithWriter].
func NewLogger(settings *config.Settings) (*slog.Logger, bool) {
	return NewLoggerWithWriter(os.Stderr, settings)
}

// NewLoggerWithWriter returns a tint logger, errors are also sent to Sentry when a DSN is configured.
// The bool reports whether Sentry is enabled, the caller has to flush it before exiting.
func NewLoggerWithWriter(w io.Writer, settings *config.Settings) (*slog.Logger, bool) {
	level := slog.LevelInfo
	if settings != nil && settings.VerboseLogging {
		level = slog.LevelDebug
	}

	var handler slog.Handler = tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.DateTime,
		NoColor:    !isTerminal(w),
	})
	if settings == nil || settings.Config.Reporting.Sentry == nil || settings.Config.Reporting.Sentry.DSN == "" {
		return slog.New(handler), false
	}

	sentryCfg := settings.Config.Reporting.Sentry
	if err := sentry.Init(sentry.ClientOptions{Dsn: sentryCfg.DSN, Environment: sentryCfg.Environment}); err != nil {
		slog.New(handler).Warn("Failed to enable Sentry output", slog.Any("err", err))
		return slog.New(handler), false
	}

	return slog.New(slogmulti.Fanout(handler, slogsentry.Option{Level: slog.LevelError}.NewSentryHandler())), true
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}

func Fatal(msg string, args ...any) {
	slog.Error(msg, args...)
	os.Exit(1)
}
