package observability

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"go.opentelemetry.io/otel/trace"
)

const (
	attrTraceID = "trace_id"
	attrSpanID  = "span_id"
	attrService = "service"
	attrMode    = "mode"
)

// TracingHandler is an [slog.Handler] that adds trace_id and span_id from the
// active span to every record. Service, mode and the trace context stay
// top-level when groups are used.
type TracingHandler struct {
	// base is the ungrouped handler carrying the service attributes.
	base slog.Handler
	// ops replays WithAttrs and WithGroup calls on top of base.
	ops []handlerOp
	// inner is base with ops applied, used when there is no span.
	inner slog.Handler
}

// handlerOp is one WithGroup (group != "") or WithAttrs call.
type handlerOp struct {
	group string
	attrs []slog.Attr
}

// NewTracingHandler wraps inner.
func NewTracingHandler(inner slog.Handler, service string, appMode AppMode) *TracingHandler {
	base := inner.WithAttrs([]slog.Attr{
		slog.String(attrService, service),
		slog.String(attrMode, string(appMode)),
	})

	return &TracingHandler{base: base, inner: base}
}

// Enabled delegates to the inner handler.
func (th *TracingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return th.inner.Enabled(ctx, level)
}

// Handle attaches the span context ahead of any group, then delegates.
func (th *TracingHandler) Handle(ctx context.Context, record slog.Record) error {
	handler := th.inner

	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		handler = replay(th.base.WithAttrs([]slog.Attr{
			slog.String(attrTraceID, sc.TraceID().String()),
			slog.String(attrSpanID, sc.SpanID().String()),
		}), th.ops)
	}

	err := handler.Handle(ctx, record)
	if err != nil {
		return fmt.Errorf("tracing handler: %w", err)
	}

	return nil
}

// WithAttrs implements slog.Handler.
func (th *TracingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return th
	}

	return th.with(handlerOp{attrs: attrs})
}

// WithGroup implements slog.Handler.
func (th *TracingHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return th
	}

	return th.with(handlerOp{group: name})
}

func (th *TracingHandler) with(op handlerOp) *TracingHandler {
	ops := append(slices.Clip(th.ops), op)

	return &TracingHandler{base: th.base, ops: ops, inner: replay(th.inner, ops[len(ops)-1:])}
}

func replay(handler slog.Handler, ops []handlerOp) slog.Handler {
	for _, op := range ops {
		if op.group != "" {
			handler = handler.WithGroup(op.group)

			continue
		}

		handler = handler.WithAttrs(op.attrs)
	}

	return handler
}
