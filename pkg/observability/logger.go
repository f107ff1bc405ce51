package observability

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/trace"
)

const (
	attrTraceID = "trace_id"
	attrSpanID  = "span_id"
	attrService = "service"
	attrEnv     = "env"
	attrMode    = "mode"
)

type operationKey struct{}

// WithOperation tags ctx with the tree operation being run. Records logged
// with that context through a TracingHandler carry it as "op".
func WithOperation(ctx context.Context, op string) context.Context {
	return context.WithValue(ctx, operationKey{}, op)
}

// OperationFrom returns the operation set by WithOperation.
func OperationFrom(ctx context.Context) (string, bool) {
	op, ok := ctx.Value(operationKey{}).(string)

	return op, ok
}

// NewLogger builds a text or JSON logger writing to w at cfg.LogLevel.
func NewLogger(cfg Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}

	var next slog.Handler = slog.NewTextHandler(w, opts)
	if cfg.LogJSON {
		next = slog.NewJSONHandler(w, opts)
	}

	return slog.New(NewTracingHandler(next, cfg.ServiceName, cfg.Environment, cfg.Mode))
}

// TracingHandler decorates records with the tree operation and the span
// found in the context. Service metadata is attached once, ahead of any
// group, so it stays at the top level.
type TracingHandler struct {
	next slog.Handler
}

// NewTracingHandler wraps next.
func NewTracingHandler(next slog.Handler, service, env string, mode AppMode) *TracingHandler {
	base := []slog.Attr{
		slog.String(attrService, service),
		slog.String(attrMode, string(mode)),
	}

	if env != "" {
		base = append(base, slog.String(attrEnv, env))
	}

	return &TracingHandler{next: next.WithAttrs(base)}
}

// Enabled implements slog.Handler.
func (h *TracingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *TracingHandler) Handle(ctx context.Context, record slog.Record) error {
	if op, ok := OperationFrom(ctx); ok {
		record.AddAttrs(slog.String(attrOp, op))
	}

	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		record.AddAttrs(
			slog.String(attrTraceID, sc.TraceID().String()),
			slog.String(attrSpanID, sc.SpanID().String()),
		)
	}

	if err := h.next.Handle(ctx, record); err != nil {
		return fmt.Errorf("tracing handler: %w", err)
	}

	return nil
}

// WithAttrs implements slog.Handler.
func (h *TracingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &TracingHandler{next: h.next.WithAttrs(attrs)}
}

// WithGroup implements slog.Handler.
func (h *TracingHandler) WithGroup(name string) slog.Handler {
	return &TracingHandler{next: h.next.WithGroup(name)}
}
