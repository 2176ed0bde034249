package logger

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel/log/global"
)

const ServiceName = "word-orchestrator"

// Options configures New. Zero values give info-level JSON on stdout.
type Options struct {
	Level       string
	ServiceName string
	// ExportOTel also sends records to the global OTel logger provider.
	ExportOTel bool
	Output     io.Writer
}

// New builds the process logger. Stdout lines always carry trace_id/span_id
// when a span is active; the OTel bridge propagates trace context itself.
func New(opts Options) *slog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	name := opts.ServiceName
	if name == "" {
		name = ServiceName
	}

	var handler slog.Handler = NewTraceContextHandler(
		slog.NewJSONHandler(out, &slog.HandlerOptions{Level: parseLevel(opts.Level)}),
	)
	if opts.ExportOTel {
		handler = fanoutHandler{
			handler,
			otelslog.NewHandler(name, otelslog.WithLoggerProvider(global.GetLoggerProvider())),
		}
	}
	return slog.New(handler)
}

// fanoutHandler writes each record to every handler that accepts its level.
type fanoutHandler []slog.Handler

func (f fanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanoutHandler) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range f {
		if h.Enabled(ctx, r.Level) {
			if err := h.Handle(ctx, r.Clone()); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

func (f fanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := make(fanoutHandler, len(f))
	for i, h := range f {
		next[i] = h.WithAttrs(attrs)
	}
	return next
}

func (f fanoutHandler) WithGroup(name string) slog.Handler {
	next := make(fanoutHandler, len(f))
	for i, h := range f {
		next[i] = h.WithGroup(name)
	}
	return next
}
