package lint

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"slices"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/sync/errgroup"

	"github.com/Sumatoshi-tech/boundarylint/pkg/lintcache"
	"github.com/Sumatoshi-tech/boundarylint/pkg/observability"
	"github.com/Sumatoshi-tech/boundarylint/pkg/uast"
)

// ErrProblemsFound is returned by callers that gate on remaining problems.
var ErrProblemsFound = errors.New("lint problems found")

const fixedFileMode = 0o644

// Options configure a Runner. Zero values are usable: GOMAXPROCS workers,
// no cache, no metrics, no-op tracing and a discarding logger.
type Options struct {
	Jobs int
	Fix  bool
	// DryRun computes fixes without writing them back.
	DryRun  bool
	Cache   *lintcache.Cache
	Metrics *observability.LintMetrics
	Tracer  trace.Tracer
	Logger  *slog.Logger
}

// Runner lints file sets in parallel.
type Runner struct {
	linter *Linter
	opts   Options
}

// NewRunner creates a runner.
func NewRunner(linter *Linter, opts Options) *Runner {
	if opts.Jobs <= 0 {
		opts.Jobs = runtime.GOMAXPROCS(0)
	}

	if opts.Tracer == nil {
		opts.Tracer = nooptrace.NewTracerProvider().Tracer("lint")
	}

	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}

	return &Runner{linter: linter, opts: opts}
}

// Run lints files and returns per-file results in input order. Files whose
// language cannot be parsed are skipped. The first I/O error cancels the run.
func (r *Runner) Run(ctx context.Context, files []string) (*Report, error) {
	start := time.Now()

	ctx, span := r.opts.Tracer.Start(ctx, "lint.run",
		trace.WithAttributes(attribute.Int("lint.files", len(files)), attribute.Bool("lint.fix", r.opts.Fix)))
	defer span.End()

	results := make([]*FileResult, len(files))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(r.opts.Jobs)

	for idx, path := range files {
		group.Go(func() error {
			if groupCtx.Err() != nil {
				return groupCtx.Err()
			}

			res, err := r.lintFile(groupCtx, path)
			if err != nil {
				return err
			}

			results[idx] = res

			return nil
		})
	}

	err := group.Wait()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "lint run failed")

		return nil, err
	}

	report := newReport(slices.DeleteFunc(results, func(res *FileResult) bool { return res == nil }), time.Since(start))

	if r.opts.Cache != nil {
		saveErr := r.opts.Cache.Save()
		if saveErr != nil {
			r.opts.Logger.WarnContext(ctx, "cache not saved", slog.Any("error", saveErr))
		}
	}

	span.SetAttributes(
		attribute.Int("lint.problems", report.Summary.Problems),
		attribute.Int("lint.fixes", report.Summary.FixesApplied),
	)

	r.opts.Logger.DebugContext(ctx, "lint run finished",
		slog.Int("files", report.Summary.Files),
		slog.Int("problems", report.Summary.Problems),
		slog.Duration("duration", report.Summary.Duration),
	)

	return report, nil
}

func (r *Runner) lintFile(ctx context.Context, path string) (*FileResult, error) {
	ctx, span := r.opts.Tracer.Start(ctx, "lint.file", trace.WithAttributes(attribute.String("lint.path", path)))
	defer span.End()

	src, err := os.ReadFile(path)
	if err != nil {
		span.RecordError(err)

		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	useCache := r.opts.Cache != nil && !r.opts.Fix

	if useCache {
		if diags, ok := r.opts.Cache.Get(path, src); ok {
			res := &FileResult{
				Path:        path,
				Language:    uast.DetectLanguage(path, src),
				Diagnostics: diags,
				Source:      src,
				CacheHit:    true,
			}
			r.record(ctx, span, res)

			return res, nil
		}
	}

	res, err := r.linter.LintSource(ctx, path, src, r.opts.Fix)
	if errors.Is(err, uast.ErrUnsupportedLanguage) {
		r.opts.Logger.DebugContext(ctx, "skipping unsupported file", slog.String("path", path))

		return nil, nil
	}

	if err != nil {
		span.RecordError(err)

		return nil, err
	}

	if res.Fixed() && !r.opts.DryRun {
		err = os.WriteFile(path, res.Output, fixedFileMode)
		if err != nil {
			return nil, fmt.Errorf("write fixes to %s: %w", path, err)
		}

		r.opts.Logger.InfoContext(ctx, "fixed", slog.String("path", path), slog.Int("fixes", res.FixesApplied))
	}

	if r.opts.Cache != nil && (!r.opts.DryRun || !res.Fixed()) {
		content := src
		if res.Fixed() {
			content = res.Output
		}

		r.opts.Cache.Put(path, content, res.Diagnostics)
	}

	r.record(ctx, span, res)

	return res, nil
}

func (r *Runner) record(ctx context.Context, span trace.Span, res *FileResult) {
	span.SetAttributes(
		attribute.String("lint.language", res.Language),
		attribute.Int("lint.diagnostics", len(res.Diagnostics)),
		attribute.Bool("cache.hit", res.CacheHit),
	)

	r.opts.Metrics.RecordFile(ctx, observability.FileStats{
		Language:          res.Language,
		DiagnosticsByRule: res.CountByRule(),
		FixesApplied:      res.FixesApplied,
		CacheHit:          res.CacheHit,
		Duration:          res.Duration,
	})
}
