package observability_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/boundarylint/pkg/observability"
)

func collectMetrics(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()

	var rm metricdata.ResourceMetrics

	require.NoError(t, reader.Collect(context.Background(), &rm))

	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for idx := range rm.ScopeMetrics {
		for midx := range rm.ScopeMetrics[idx].Metrics {
			if rm.ScopeMetrics[idx].Metrics[midx].Name == name {
				return &rm.ScopeMetrics[idx].Metrics[midx]
			}
		}
	}

	return nil
}

func sumOf(t *testing.T, m *metricdata.Metrics) int64 {
	t.Helper()
	require.NotNil(t, m)

	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok)

	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}

	return total
}

func TestTracingHandler_InjectsTraceContext(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	inner := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	logger := slog.New(observability.NewTracingHandler(inner, "boundarylint", observability.ModeLSP))

	traceID, err := trace.TraceIDFromHex("0102030405060708090a0b0c0d0e0f10")
	require.NoError(t, err)

	spanID, err := trace.SpanIDFromHex("0102030405060708")
	require.NoError(t, err)

	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: traceID, SpanID: spanID, TraceFlags: trace.FlagsSampled,
	}))

	logger.WithGroup("lint").InfoContext(ctx, "file done", slog.String("path", "a.tsx"))

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))

	assert.Equal(t, "0102030405060708090a0b0c0d0e0f10", record["trace_id"])
	assert.Equal(t, "boundarylint", record["service"])
	assert.Equal(t, "lsp", record["mode"])

	group, ok := record["lint"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "a.tsx", group["path"])
}

func TestTracingHandler_ReplaysAttrsAndGroups(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	inner := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	logger := slog.New(observability.NewTracingHandler(inner, "boundarylint", observability.ModeCLI)).
		With(slog.String("op", "lint")).
		WithGroup("file").
		With(slog.String("lang", "tsx"))

	traceID, err := trace.TraceIDFromHex("0102030405060708090a0b0c0d0e0f10")
	require.NoError(t, err)

	spanID, err := trace.SpanIDFromHex("0102030405060708")
	require.NoError(t, err)

	sampled := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: traceID, SpanID: spanID, TraceFlags: trace.FlagsSampled,
	}))

	for _, ctx := range []context.Context{sampled, context.Background()} {
		buf.Reset()
		logger.InfoContext(ctx, "done", slog.Int("problems", 2))

		var record map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &record))

		assert.Equal(t, "lint", record["op"])
		assert.Equal(t, "cli", record["mode"])

		group, ok := record["file"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "tsx", group["lang"])
		assert.InDelta(t, 2, group["problems"], 0)
		assert.NotContains(t, group, "trace_id")

		if ctx == sampled {
			assert.Equal(t, "0102030405060708", record["span_id"])
		} else {
			assert.NotContains(t, record, "span_id")
		}
	}
}

func TestNewLogger_WritesToConfiguredWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	cfg := observability.DefaultConfig()
	cfg.LogWriter = &buf
	cfg.LogJSON = true
	cfg.LogLevel = observability.ParseLogLevel("warn")

	logger := observability.NewLogger(cfg)
	logger.Info("hidden")
	logger.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
	assert.NotContains(t, buf.String(), "trace_id")
}

func TestParseLogLevel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, slog.LevelDebug, observability.ParseLogLevel("debug"))
	assert.Equal(t, slog.LevelError, observability.ParseLogLevel("error"))
	assert.Equal(t, slog.LevelInfo, observability.ParseLogLevel("bogus"))
}

func TestInit_NoopWhenNothingConfigured(t *testing.T) {
	t.Parallel()

	cfg := observability.DefaultConfig()
	cfg.LogWriter = io.Discard

	providers, err := observability.Init(cfg)
	require.NoError(t, err)

	assert.NotNil(t, providers.Tracer)
	assert.NotNil(t, providers.Meter)
	assert.Nil(t, providers.MetricsHandler)
	assert.NoError(t, providers.Shutdown(context.Background()))
}

func TestInit_PrometheusHandlerServesLintMetrics(t *testing.T) {
	t.Parallel()

	cfg := observability.DefaultConfig()
	cfg.Mode = observability.ModeServe
	cfg.Prometheus = true
	cfg.LogWriter = io.Discard

	providers, err := observability.Init(cfg)
	require.NoError(t, err)

	t.Cleanup(func() { require.NoError(t, providers.Shutdown(context.Background())) })
	require.NotNil(t, providers.MetricsHandler)

	lm, err := observability.NewLintMetrics(providers.Meter)
	require.NoError(t, err)

	lm.RecordFile(context.Background(), observability.FileStats{Language: "tsx", Duration: time.Millisecond})

	rec := httptest.NewRecorder()
	providers.MetricsHandler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "boundarylint_lint_files")
}

func TestLintMetrics_RecordFile(t *testing.T) {
	t.Parallel()

	reader := sdkmetric.NewManualReader()
	lm, err := observability.NewLintMetrics(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	lm.RecordFile(ctx, observability.FileStats{
		Language:          "tsx",
		DiagnosticsByRule: map[string]int{"require-boundary": 2, "require-with-boundary": 1},
		FixesApplied:      1,
		Duration:          2 * time.Millisecond,
	})
	lm.RecordFile(ctx, observability.FileStats{Language: "tsx", CacheHit: true})

	rm := collectMetrics(t, reader)

	assert.Equal(t, int64(2), sumOf(t, findMetric(rm, "boundarylint.lint.files.total")))
	assert.Equal(t, int64(3), sumOf(t, findMetric(rm, "boundarylint.lint.diagnostics.total")))
	assert.Equal(t, int64(1), sumOf(t, findMetric(rm, "boundarylint.lint.fixes.total")))
	assert.Equal(t, int64(1), sumOf(t, findMetric(rm, "boundarylint.lint.cache.hits.total")))
	assert.Equal(t, int64(1), sumOf(t, findMetric(rm, "boundarylint.lint.cache.misses.total")))

	var nilMetrics *observability.LintMetrics
	assert.NotPanics(t, func() { nilMetrics.RecordFile(ctx, observability.FileStats{}) })
}

func TestHTTPMiddleware_SpanAndRED(t *testing.T) {
	t.Parallel()

	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))

	t.Cleanup(func() { require.NoError(t, tp.Shutdown(context.Background())) })

	reader := sdkmetric.NewManualReader()
	red, err := observability.NewREDMetrics(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter("test"))
	require.NoError(t, err)

	handler := http.HandlerFunc(func(rw http.ResponseWriter, _ *http.Request) {
		rw.WriteHeader(http.StatusInternalServerError)
	})

	mw := observability.HTTPMiddleware(tp.Tracer("test"), red, handler)
	mw.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/v1/lint", http.NoBody))

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "POST /v1/lint", spans[0].Name)

	rm := collectMetrics(t, reader)
	assert.Equal(t, int64(1), sumOf(t, findMetric(rm, "boundarylint.requests.total")))
	assert.Equal(t, int64(1), sumOf(t, findMetric(rm, "boundarylint.errors.total")))
}

func TestHealthHandler(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	observability.HealthHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", http.NoBody))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestAttributeAllowed(t *testing.T) {
	t.Parallel()

	assert.True(t, observability.AttributeAllowed("lint.path"))
	assert.True(t, observability.AttributeAllowed("rule.name"))
	assert.False(t, observability.AttributeAllowed("lint.source"))
	assert.False(t, observability.AttributeAllowed("user.email"))
}

func TestParseOTLPHeaders(t *testing.T) {
	t.Parallel()

	assert.Nil(t, observability.ParseOTLPHeaders(""))
	assert.Nil(t, observability.ParseOTLPHeaders("garbage"))
	assert.Equal(t, map[string]string{"a": "1", "b": "2"}, observability.ParseOTLPHeaders("a=1, b = 2"))
}
