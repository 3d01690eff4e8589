package commands_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/boundarylint/cmd/boundarylint/commands"
	"github.com/Sumatoshi-tech/boundarylint/pkg/config"
	"github.com/Sumatoshi-tech/boundarylint/pkg/lint"
	"github.com/Sumatoshi-tech/boundarylint/pkg/rules"
)

const unwrappedApp = "export default function App(){ return <div/>; }\n"

// project creates a scratch project, makes it the working directory and
// isolates HOME so no user config leaks in.
func project(t *testing.T, files map[string]string) string {
	t.Helper()

	root, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)

	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	t.Setenv("HOME", t.TempDir())
	t.Setenv("BOUNDARYLINT_CACHE_DIRECTORY", t.TempDir())
	t.Chdir(root)

	return root
}

func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer

	cmd := commands.NewRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))

	err := cmd.Execute()

	return stdout.String(), stderr.String(), err
}

func TestLint_ReportsProblems(t *testing.T) {
	project(t, map[string]string{
		"src/App.tsx":   unwrappedApp,
		"src/Clean.tsx": "const x = <div/>;\n",
		"src/readme.md": "# hi\n",
	})

	stdout, _, err := execute(t, "", "lint", "--format", "compact", "--no-cache")
	require.ErrorIs(t, err, lint.ErrProblemsFound)

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "src/App.tsx:1:1: "))
	assert.Contains(t, stdout, "["+rules.RequireBoundaryName+"]")
	assert.Contains(t, stdout, "["+rules.RequireWithBoundaryName+"]")
}

func TestLint_MaxWarnings(t *testing.T) {
	project(t, map[string]string{"App.tsx": unwrappedApp})

	_, _, err := execute(t, "", "lint", "--max-warnings", "2", "--no-cache")
	require.NoError(t, err)

	_, _, err = execute(t, "", "lint", "--max-warnings", "1", "--no-cache")
	require.ErrorIs(t, err, lint.ErrProblemsFound)
}

func TestLint_FixWritesFiles(t *testing.T) {
	root := project(t, map[string]string{"src/App.tsx": unwrappedApp})

	_, _, err := execute(t, "", "lint", "--fix", "--rule", rules.RequireWithBoundaryName)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(root, "src", "App.tsx"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "export default withBoundary(App);")

	// The cached clean result is served on the next run.
	_, _, err = execute(t, "", "lint", "--rule", rules.RequireWithBoundaryName)
	require.NoError(t, err)
}

func TestLint_FixDryRunPrintsDiff(t *testing.T) {
	root := project(t, map[string]string{"App.tsx": unwrappedApp})

	stdout, _, err := execute(t, "", "lint", "--fix-dry-run", "--rule", rules.RequireWithBoundaryName, "--no-cache")
	require.NoError(t, err)

	assert.Contains(t, stdout, "--- a/App.tsx\n+++ b/App.tsx\n")
	assert.Contains(t, stdout, "+export default withBoundary(App);")

	data, err := os.ReadFile(filepath.Join(root, "App.tsx"))
	require.NoError(t, err)
	assert.Equal(t, unwrappedApp, string(data))
}

func TestLint_StdinFix(t *testing.T) {
	project(t, nil)

	stdout, _, err := execute(t, unwrappedApp, "lint", "--stdin", "--stdin-filename", "App.jsx", "--fix",
		"--rule", rules.RequireWithBoundaryName)
	require.NoError(t, err)

	assert.Contains(t, stdout, "import { withBoundary } from")
	assert.Contains(t, stdout, "export default withBoundary(App);")
}

func TestLint_StdinRejectsPaths(t *testing.T) {
	project(t, nil)

	_, _, err := execute(t, "", "lint", "--stdin", "src")
	require.ErrorIs(t, err, commands.ErrStdinWithPaths)
}

func TestLint_JSONOutputFile(t *testing.T) {
	root := project(t, map[string]string{"App.tsx": unwrappedApp})
	out := filepath.Join(root, "report.json")

	stdout, _, err := execute(t, "", "lint", "--format", "json", "--output", out, "--no-cache")
	require.ErrorIs(t, err, lint.ErrProblemsFound)
	assert.Empty(t, stdout)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"problems": 2`)
}

func TestLint_UnknownRule(t *testing.T) {
	project(t, nil)

	_, _, err := execute(t, "", "lint", "--rule", "no-such-rule")
	require.ErrorIs(t, err, rules.ErrUnknownRule)
}

func TestLint_UnknownFormat(t *testing.T) {
	project(t, nil)

	_, _, err := execute(t, "", "lint", "--format", "xml")
	require.Error(t, err)
}

func TestRules(t *testing.T) {
	project(t, nil)

	stdout, _, err := execute(t, "", "rules")
	require.NoError(t, err)

	assert.Contains(t, stdout, rules.RequireBoundaryName)
	assert.Contains(t, stdout, rules.RequireWithBoundaryName)
}

func TestConfigInitAndValidate(t *testing.T) {
	root := project(t, nil)

	stdout, _, err := execute(t, "", "config", "init")
	require.NoError(t, err)
	assert.Equal(t, "wrote "+config.FileName+"\n", stdout)

	_, _, err = execute(t, "", "config", "init")
	require.ErrorIs(t, err, config.ErrConfigExists)

	stdout, _, err = execute(t, "", "config", "validate")
	require.NoError(t, err)
	assert.Contains(t, stdout, "configuration ok (")
	assert.Contains(t, stdout, filepath.Join(root, config.FileName))

	require.NoError(t, os.WriteFile(filepath.Join(root, "bad.yaml"), []byte("jobs: -1\n"), 0o644))

	_, _, err = execute(t, "", "--config", "bad.yaml", "config", "validate")
	require.ErrorIs(t, err, config.ErrInvalidJobs)
}

func TestVersion(t *testing.T) {
	stdout, _, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout, "boundarylint "))
}
