package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Sumatoshi-tech/boundarylint/pkg/gitlib"
	"github.com/Sumatoshi-tech/boundarylint/pkg/lint"
	"github.com/Sumatoshi-tech/boundarylint/pkg/lintcache"
	"github.com/Sumatoshi-tech/boundarylint/pkg/observability"
	"github.com/Sumatoshi-tech/boundarylint/pkg/report"
	"github.com/Sumatoshi-tech/boundarylint/pkg/textedit"
	"github.com/Sumatoshi-tech/boundarylint/pkg/version"
)

const (
	defaultStdinFilename = "stdin.tsx"
	outputFileMode       = 0o644
)

// ErrStdinWithPaths rejects mixing --stdin with path arguments.
var ErrStdinWithPaths = errors.New("--stdin cannot be combined with paths")

// LintCommand holds the lint flags.
type LintCommand struct {
	global *globalOptions

	fix           bool
	dryRun        bool
	format        string
	output        string
	rules         []string
	changed       bool
	changedSince  string
	stdin         bool
	stdinFilename string
	noCache       bool
	noColor       bool
	summary       bool
	jobs          int
	maxWarnings   int
}

func newLintCommand(global *globalOptions) *cobra.Command {
	lc := &LintCommand{global: global}

	cmd := &cobra.Command{
		Use:   "lint [paths...]",
		Short: "Lint files and directories",
		Long: `Lint JSX/TSX modules. Directories are walked honoring .gitignore and the
files.exclude patterns; files named explicitly are always linted.

The command exits with status 1 when problems remain.`,
		RunE: lc.run,
	}

	formats := make([]string, 0, len(report.Formats()))
	for _, f := range report.Formats() {
		formats = append(formats, string(f))
	}

	cmd.Flags().BoolVar(&lc.fix, "fix", false, "apply fixes and write them back")
	cmd.Flags().BoolVar(&lc.dryRun, "fix-dry-run", false, "compute fixes and print them as a unified diff")
	cmd.Flags().StringVarP(&lc.format, "format", "f", string(report.FormatText), fmt.Sprintf("output format: %v", formats))
	cmd.Flags().StringVarP(&lc.output, "output", "o", "", "write the report to a file instead of stdout")
	cmd.Flags().StringSliceVar(&lc.rules, "rule", nil, "run only the named rules (repeatable)")
	cmd.Flags().BoolVar(&lc.changed, "changed", false, "lint only files changed in the git working tree")
	cmd.Flags().StringVar(&lc.changedSince, "changed-since", "", "lint only files changed since a git revision")
	cmd.Flags().BoolVar(&lc.stdin, "stdin", false, "lint source read from stdin")
	cmd.Flags().StringVar(&lc.stdinFilename, "stdin-filename", defaultStdinFilename, "file name used for stdin source")
	cmd.Flags().BoolVar(&lc.noCache, "no-cache", false, "do not read or write the result cache")
	cmd.Flags().BoolVar(&lc.noColor, "no-color", false, "disable colored output")
	cmd.Flags().BoolVar(&lc.summary, "summary", false, "append a per-rule summary table")
	cmd.Flags().IntVarP(&lc.jobs, "jobs", "j", 0, "parallel workers (0 = config jobs, then CPU count)")
	cmd.Flags().IntVar(&lc.maxWarnings, "max-warnings", -1, "number of problems tolerated before exiting with status 1 (-1 = none)")

	cmd.MarkFlagsMutuallyExclusive("fix", "fix-dry-run")
	cmd.MarkFlagsMutuallyExclusive("changed", "changed-since")
	cmd.MarkFlagsMutuallyExclusive("stdin", "changed")
	cmd.MarkFlagsMutuallyExclusive("stdin", "changed-since")

	return cmd
}

func (lc *LintCommand) run(cmd *cobra.Command, args []string) error {
	format, err := report.ParseFormat(lc.format)
	if err != nil {
		return err
	}

	if lc.stdin && len(args) > 0 {
		return ErrStdinWithPaths
	}

	sess, err := lc.global.open(sessionOptions{mode: observability.ModeCLI, logWriter: cmd.ErrOrStderr()})
	if err != nil {
		return err
	}
	defer sess.close()

	linter, err := sess.linter(lc.rules)
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	if lc.stdin {
		return lc.runStdin(ctx, cmd, linter, format)
	}

	files, err := lc.collect(ctx, sess, args)
	if err != nil {
		return err
	}

	sess.logger.DebugContext(ctx, "files collected", slog.Int("count", len(files)))

	cache, err := lc.openCache(sess)
	if err != nil {
		return err
	}

	jobs := lc.jobs
	if jobs == 0 {
		jobs = sess.cfg.Jobs
	}

	runner := lint.NewRunner(linter, lint.Options{
		Jobs:    jobs,
		Fix:     lc.fix || lc.dryRun,
		DryRun:  lc.dryRun,
		Cache:   cache,
		Metrics: sess.metrics,
		Tracer:  sess.providers.Tracer,
		Logger:  sess.logger,
	})

	rep, err := runner.Run(ctx, files)
	if err != nil {
		return err
	}

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("working directory: %w", err)
	}

	if lc.dryRun {
		writeDiffs(cmd.OutOrStdout(), rep, cwd)
	}

	err = lc.writeReport(cmd, format, rep, cwd)
	if err != nil {
		return err
	}

	return lc.exitStatus(rep.Summary)
}

// runStdin lints one buffer. With --fix the fixed source goes to stdout and
// the report of what remains goes to stderr.
func (lc *LintCommand) runStdin(ctx context.Context, cmd *cobra.Command, linter *lint.Linter, format report.Format) error {
	src, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return fmt.Errorf("read stdin: %w", err)
	}

	res, err := linter.LintSource(ctx, lc.stdinFilename, src, lc.fix || lc.dryRun)
	if err != nil {
		return err
	}

	rep := lint.NewReport([]*lint.FileResult{res})

	switch {
	case lc.fix:
		fixed := src
		if res.Fixed() {
			fixed = res.Output
		}

		_, err = cmd.OutOrStdout().Write(fixed)
		if err != nil {
			return fmt.Errorf("write fixed source: %w", err)
		}

		err = report.Write(cmd.ErrOrStderr(), format, rep, report.Options{Summary: lc.summary})
	case lc.dryRun:
		writeDiffs(cmd.OutOrStdout(), rep, "")

		err = lc.writeReport(cmd, format, rep, "")
	default:
		err = lc.writeReport(cmd, format, rep, "")
	}

	if err != nil {
		return err
	}

	return lc.exitStatus(rep.Summary)
}

func (lc *LintCommand) collect(ctx context.Context, sess *session, args []string) ([]string, error) {
	walker, err := lint.NewWalker(".", sess.cfg.Files.Extensions, sess.cfg.Files.Exclude)
	if err != nil {
		return nil, err
	}

	if !lc.changed && lc.changedSince == "" {
		return walker.Collect(ctx, args)
	}

	repo, err := gitlib.OpenRepository(".")
	if err != nil {
		return nil, err
	}
	defer repo.Free()

	var changed []string

	if lc.changedSince != "" {
		changed, err = repo.ChangedSince(lc.changedSince)
	} else {
		changed, err = repo.ChangedFiles()
	}

	if err != nil {
		return nil, err
	}

	return walker.Filter(changed, args), nil
}

// openCache returns nil when caching is off. Each working directory gets its
// own cache file; the fingerprint covers the binary version and rule setup.
func (lc *LintCommand) openCache(sess *session) (*lintcache.Cache, error) {
	if lc.noCache || !sess.cfg.Cache.Enabled {
		return nil, nil
	}

	dir := sess.cfg.Cache.Directory
	if dir == "" {
		base, err := lintcache.DefaultDir()
		if err != nil {
			sess.logger.Warn("cache disabled", slog.Any("error", err))

			return nil, nil
		}

		dir = base
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("working directory: %w", err)
	}

	fingerprint, err := lintcache.Fingerprint(version.String(), sess.cfg.Rules, lc.rules)
	if err != nil {
		return nil, err
	}

	return lintcache.Open(filepath.Join(dir, lintcache.HashContent([]byte(cwd))), fingerprint)
}

func (lc *LintCommand) writeReport(cmd *cobra.Command, format report.Format, rep *lint.Report, baseDir string) error {
	opts := report.Options{BaseDir: baseDir, Summary: lc.summary}

	if lc.output == "" {
		out := cmd.OutOrStdout()
		opts.Color = !lc.noColor && isTerminal(out)

		return report.Write(out, format, rep, opts)
	}

	file, err := os.OpenFile(lc.output, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, outputFileMode)
	if err != nil {
		return fmt.Errorf("open report file: %w", err)
	}

	writeErr := report.Write(file, format, rep, opts)
	closeErr := file.Close()

	if writeErr != nil {
		return writeErr
	}

	if closeErr != nil {
		return fmt.Errorf("close report file: %w", closeErr)
	}

	return nil
}

func (lc *LintCommand) exitStatus(sum lint.Summary) error {
	if sum.Fatal > 0 {
		return lint.ErrProblemsFound
	}

	if lc.maxWarnings < 0 && sum.Problems > 0 {
		return lint.ErrProblemsFound
	}

	if lc.maxWarnings >= 0 && sum.Problems > lc.maxWarnings {
		return lint.ErrProblemsFound
	}

	return nil
}

func writeDiffs(w io.Writer, rep *lint.Report, baseDir string) {
	for _, res := range rep.Files {
		if !res.Fixed() {
			continue
		}

		name := res.Path
		if baseDir != "" {
			if rel, err := filepath.Rel(baseDir, res.Path); err == nil {
				name = rel
			}
		}

		fmt.Fprint(w, textedit.UnifiedDiff(filepath.ToSlash(name), res.Source, res.Output))
	}
}

// isTerminal reports whether w is a terminal file descriptor.
func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)

	return ok && term.IsTerminal(int(file.Fd()))
}
