package lint_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/boundarylint/pkg/lint"
	"github.com/Sumatoshi-tech/boundarylint/pkg/lintcache"
	"github.com/Sumatoshi-tech/boundarylint/pkg/rules"
	"github.com/Sumatoshi-tech/boundarylint/pkg/uast"
)

const (
	unwrappedApp = "export default function App(){ return <div/>; }\n"
	fixedApp     = "import { withBoundary } from 'react-suspense-boundary';\n" +
		"function App(){ return <div/>; }\n\nexport default withBoundary(App);\n"
)

func newLinter(names ...string) *lint.Linter {
	ruleSet := make([]rules.Rule, 0, len(names))
	for _, name := range names {
		rule, err := rules.New(name, rules.DefaultOptions())
		if err != nil {
			panic(err)
		}

		ruleSet = append(ruleSet, rule)
	}

	return lint.NewLinter(rules.NewEngine(ruleSet...))
}

func writeFile(t *testing.T, dir, rel, content string) string {
	t.Helper()

	path := filepath.Join(dir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLintSource_ReportsWithoutFix(t *testing.T) {
	t.Parallel()

	res, err := newLinter(rules.RequireWithBoundaryName).
		LintSource(context.Background(), "App.tsx", []byte(unwrappedApp), false)
	require.NoError(t, err)

	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, "App", res.Diagnostics[0].ComponentName)
	assert.Equal(t, "tsx", res.Language)
	assert.False(t, res.Fixed())
	assert.Nil(t, res.Output)
	assert.Equal(t, map[string]int{rules.RequireWithBoundaryName: 1}, res.CountByRule())
}

func TestLintSource_FixConverges(t *testing.T) {
	t.Parallel()

	res, err := newLinter(rules.RequireWithBoundaryName).
		LintSource(context.Background(), "App.tsx", []byte(unwrappedApp), true)
	require.NoError(t, err)

	require.True(t, res.Fixed())
	assert.Equal(t, fixedApp, string(res.Output))
	assert.Equal(t, 1, res.FixesApplied)
	assert.Empty(t, res.Diagnostics)
	assert.Equal(t, unwrappedApp, string(res.Source))
}

func TestLintSource_MultipleFixesInOneFile(t *testing.T) {
	t.Parallel()

	src := "export const A = () => <div />;\nexport const B = () => <span />;\n"

	res, err := newLinter(rules.RequireWithBoundaryName).
		LintSource(context.Background(), "Pair.tsx", []byte(src), true)
	require.NoError(t, err)

	assert.Empty(t, res.Diagnostics)
	assert.GreaterOrEqual(t, res.FixesApplied, 2)
	assert.Contains(t, string(res.Output), "withBoundary(A)")
	assert.Contains(t, string(res.Output), "withBoundary(B)")
}

func TestLintSource_ParseErrorIsFatal(t *testing.T) {
	t.Parallel()

	res, err := newLinter(rules.RequireBoundaryName).
		LintSource(context.Background(), "Broken.tsx", []byte("export const A = () => <div />;\n}}} )))\n"), true)
	require.NoError(t, err)

	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, lint.ParseErrorID, res.Diagnostics[0].MessageID)
	assert.Equal(t, rules.SeverityFatal, res.Diagnostics[0].Severity)
	assert.True(t, res.Fatal())
	assert.False(t, res.Fixed())
}

func TestLintSource_UnsupportedFile(t *testing.T) {
	t.Parallel()

	_, err := newLinter(rules.RequireBoundaryName).
		LintSource(context.Background(), "README.md", []byte("# hi\n"), false)
	require.ErrorIs(t, err, uast.ErrUnsupportedLanguage)
}

func TestWalker_Collect(t *testing.T) {
	t.Parallel()

	root := t.TempDir()

	writeFile(t, root, ".gitignore", "generated/\n")
	keep := writeFile(t, root, "src/App.tsx", unwrappedApp)
	keepJS := writeFile(t, root, "src/format.js", "export const x = 1;\n")
	writeFile(t, root, "src/types.d.ts", "export type X = string;\n")
	writeFile(t, root, "src/notes.md", "# notes\n")
	writeFile(t, root, "generated/Out.tsx", unwrappedApp)
	writeFile(t, root, "node_modules/pkg/index.js", "module.exports = 1;\n")
	writeFile(t, root, ".storybook/main.tsx", unwrappedApp)
	excluded := writeFile(t, root, "dist/bundle.js", "export default 1;\n")

	walker, err := lint.NewWalker(root, []string{".tsx", ".js", ".ts"}, []string{"dist/", "*.d.ts"})
	require.NoError(t, err)

	files, err := walker.Collect(context.Background(), []string{root})
	require.NoError(t, err)
	assert.Equal(t, []string{keep, keepJS}, files)

	explicit, err := walker.Collect(context.Background(), []string{excluded, keep, keep})
	require.NoError(t, err)
	assert.Equal(t, []string{excluded, keep}, explicit, "explicit files bypass ignore patterns")
}

func TestWalker_Filter(t *testing.T) {
	t.Parallel()

	root := t.TempDir()

	app := writeFile(t, root, "src/App.tsx", unwrappedApp)
	page := writeFile(t, root, "pages/Home.tsx", unwrappedApp)
	typesFile := writeFile(t, root, "src/types.d.ts", "export type X = string;\n")
	readme := writeFile(t, root, "README.md", "# hi\n")

	walker, err := lint.NewWalker(root, []string{".tsx", ".ts"}, []string{"*.d.ts"})
	require.NoError(t, err)

	changed := []string{readme, typesFile, page, app, app}

	assert.Equal(t, []string{page, app}, walker.Filter(changed, nil))
	assert.Equal(t, []string{app}, walker.Filter(changed, []string{filepath.Join(root, "src")}))
}

func TestWalker_MissingPath(t *testing.T) {
	t.Parallel()

	walker, err := lint.NewWalker(t.TempDir(), []string{".tsx"}, nil)
	require.NoError(t, err)

	_, err = walker.Collect(context.Background(), []string{filepath.Join(t.TempDir(), "nope")})
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestRunner_FixWritesFilesAndCaches(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	app := writeFile(t, root, "App.tsx", unwrappedApp)
	clean := writeFile(t, root, "Clean.tsx", "const x = <div />;\n")

	cache, err := lintcache.Open(t.TempDir(), "fp")
	require.NoError(t, err)

	runner := lint.NewRunner(newLinter(rules.RequireWithBoundaryName), lint.Options{Jobs: 2, Fix: true, Cache: cache})

	report, err := runner.Run(context.Background(), []string{app, clean})
	require.NoError(t, err)

	assert.Equal(t, 2, report.Summary.Files)
	assert.Zero(t, report.Summary.Problems)
	assert.Equal(t, 1, report.Summary.FilesFixed)
	assert.Equal(t, 1, report.Summary.FixesApplied)

	written, err := os.ReadFile(app)
	require.NoError(t, err)
	assert.Equal(t, fixedApp, string(written))

	cached, ok := cache.Get(app, written)
	require.True(t, ok, "fixed content is cached")
	assert.Empty(t, cached)
}

func TestRunner_DryRunLeavesFiles(t *testing.T) {
	t.Parallel()

	app := writeFile(t, t.TempDir(), "App.tsx", unwrappedApp)

	runner := lint.NewRunner(newLinter(rules.RequireWithBoundaryName), lint.Options{Fix: true, DryRun: true})

	report, err := runner.Run(context.Background(), []string{app})
	require.NoError(t, err)
	require.Len(t, report.Files, 1)
	assert.Equal(t, fixedApp, string(report.Files[0].Output))

	onDisk, err := os.ReadFile(app)
	require.NoError(t, err)
	assert.Equal(t, unwrappedApp, string(onDisk))
}

func TestRunner_CacheHitOnSecondRun(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	app := writeFile(t, root, "App.tsx", unwrappedApp)
	readme := writeFile(t, root, "README.txt", "hello\n")
	cacheDir := t.TempDir()

	run := func() *lint.Report {
		cache, err := lintcache.Open(cacheDir, "fp")
		require.NoError(t, err)

		report, err := lint.NewRunner(newLinter(rules.RequireWithBoundaryName), lint.Options{Cache: cache}).
			Run(context.Background(), []string{app, readme})
		require.NoError(t, err)

		return report
	}

	first := run()
	assert.Equal(t, 1, first.Summary.Files, "unsupported files are skipped")
	assert.Equal(t, 1, first.Summary.Problems)
	assert.Zero(t, first.Summary.CacheHits)

	second := run()
	assert.Equal(t, 1, second.Summary.CacheHits)
	assert.Equal(t, first.Files[0].Diagnostics, second.Files[0].Diagnostics)
	assert.Len(t, second.WithProblems(), 1)
}

func TestRunner_ReadErrorFailsRun(t *testing.T) {
	t.Parallel()

	runner := lint.NewRunner(newLinter(rules.RequireBoundaryName), lint.Options{})

	_, err := runner.Run(context.Background(), []string{filepath.Join(t.TempDir(), "missing.tsx")})
	require.ErrorIs(t, err, os.ErrNotExist)
}
