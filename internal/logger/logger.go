package logger

import (
	"log/slog"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	slogmulti "github.com/samber/slog-multi"
	slogsentry "github.com/samber/slog-sentry/v2"
)

const serviceName = "shareulbi-backend"

// Init installs the process-wide slog logger.
// Development writes debug text, production writes info JSON. With a Sentry
// DSN, error records are also reported to Sentry.
func Init(isDev bool, sentryDSN string) {
	handler := consoleHandler(isDev)

	if sentryHandler := sentryHandler(isDev, sentryDSN); sentryHandler != nil {
		handler = slogmulti.Fanout(handler, sentryHandler)
	}

	slog.SetDefault(slog.New(handler).With("service", serviceName))
}

func consoleHandler(isDev bool) slog.Handler {
	if isDev {
		return slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	return slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
}

func sentryHandler(isDev bool, dsn string) slog.Handler {
	if dsn == "" {
		return nil
	}

	environment := "production"
	if isDev {
		environment = "development"
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		Environment:      environment,
		ServerName:       serviceName,
		TracesSampleRate: 0.2,
	})
	if err != nil {
		// slog is not configured yet
		os.Stderr.WriteString("sentry disabled: " + err.Error() + "\n")
		return nil
	}

	return slogsentry.Option{Level: slog.LevelError}.NewSentryHandler()
}

// Flush delivers buffered Sentry events before the process exits.
func Flush() {
	sentry.Flush(2 * time.Second)
}
