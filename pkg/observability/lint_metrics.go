package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricFilesTotal       = "boundarylint.lint.files.total"
	metricDiagnosticsTotal = "boundarylint.lint.diagnostics.total"
	metricFixesTotal       = "boundarylint.lint.fixes.total"
	metricCacheHitsTotal   = "boundarylint.lint.cache.hits.total"
	metricCacheMissesTotal = "boundarylint.lint.cache.misses.total"
	metricFileDuration     = "boundarylint.lint.file.duration.seconds"

	attrRule     = "rule"
	attrLanguage = "language"
)

// LintMetrics holds the instruments recorded per linted file.
type LintMetrics struct {
	files        metric.Int64Counter
	diagnostics  metric.Int64Counter
	fixes        metric.Int64Counter
	cacheHits    metric.Int64Counter
	cacheMisses  metric.Int64Counter
	fileDuration metric.Float64Histogram
}

// FileStats is what one file contributed to a run.
type FileStats struct {
	Language string
	// DiagnosticsByRule counts remaining diagnostics per rule name.
	DiagnosticsByRule map[string]int
	FixesApplied      int
	CacheHit          bool
	Duration          time.Duration
}

// NewLintMetrics creates lint instruments from the given meter.
func NewLintMetrics(mt metric.Meter) (*LintMetrics, error) {
	files, err := mt.Int64Counter(metricFilesTotal,
		metric.WithDescription("Files analyzed"),
		metric.WithUnit("{file}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricFilesTotal, err)
	}

	diagnostics, err := mt.Int64Counter(metricDiagnosticsTotal,
		metric.WithDescription("Diagnostics reported by rule"),
		metric.WithUnit("{diagnostic}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricDiagnosticsTotal, err)
	}

	fixes, err := mt.Int64Counter(metricFixesTotal,
		metric.WithDescription("Fixes applied"),
		metric.WithUnit("{fix}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricFixesTotal, err)
	}

	hits, err := mt.Int64Counter(metricCacheHitsTotal,
		metric.WithDescription("Lint cache hits"),
		metric.WithUnit("{hit}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricCacheHitsTotal, err)
	}

	misses, err := mt.Int64Counter(metricCacheMissesTotal,
		metric.WithDescription("Lint cache misses"),
		metric.WithUnit("{miss}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricCacheMissesTotal, err)
	}

	duration, err := mt.Float64Histogram(metricFileDuration,
		metric.WithDescription("Per-file lint duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBucketBoundaries...),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricFileDuration, err)
	}

	return &LintMetrics{
		files:        files,
		diagnostics:  diagnostics,
		fixes:        fixes,
		cacheHits:    hits,
		cacheMisses:  misses,
		fileDuration: duration,
	}, nil
}

// RecordFile records one linted file. Safe to call on a nil receiver.
func (lm *LintMetrics) RecordFile(ctx context.Context, stats FileStats) {
	if lm == nil {
		return
	}

	lang := metric.WithAttributes(attribute.String(attrLanguage, stats.Language))

	lm.files.Add(ctx, 1, lang)
	lm.fileDuration.Record(ctx, stats.Duration.Seconds(), lang)

	for rule, count := range stats.DiagnosticsByRule {
		lm.diagnostics.Add(ctx, int64(count), metric.WithAttributes(attribute.String(attrRule, rule)))
	}

	if stats.FixesApplied > 0 {
		lm.fixes.Add(ctx, int64(stats.FixesApplied))
	}

	if stats.CacheHit {
		lm.cacheHits.Add(ctx, 1)
	} else {
		lm.cacheMisses.Add(ctx, 1)
	}
}
