package observability

import (
	"context"
	"io"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/trace"
)

// InitLogger sets up the global logger. Development prints readable console
// lines at debug level; every other environment writes JSON at info level.
// The API logs to stdout and the directory CLI to stderr, keeping its
// summary output clean.
func InitLogger(serviceName, env string, out io.Writer) {
	level := zerolog.InfoLevel
	base := zerolog.New(out)
	if env == "development" {
		level = zerolog.DebugLevel
		base = zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05.000"})
	}

	zerolog.SetGlobalLevel(level)
	log.Logger = base.With().
		Timestamp().
		Str("service", serviceName).
		Str("env", env).
		Logger()
}

type requestIDKey struct{}

// WithRequestID stores the HTTP request id so every log line written while
// serving the request carries it.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the id stored by WithRequestID, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// LoggerFromContext returns the global logger tagged with the request id and
// the active trace, when ctx has them.
func LoggerFromContext(ctx context.Context) *zerolog.Logger {
	lc := log.With()
	if id := RequestID(ctx); id != "" {
		lc = lc.Str("request_id", id)
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		lc = lc.Str("trace_id", sc.TraceID().String()).Str("span_id", sc.SpanID().String())
	}
	logger := lc.Logger()
	return &logger
}

// Component returns the global logger tagged with a component name
func Component(name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}
