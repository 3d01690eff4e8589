package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/boundarylint/pkg/config"
	"github.com/Sumatoshi-tech/boundarylint/pkg/rules"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), config.FileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadConfig(writeConfig(t, ""))
	require.NoError(t, err)

	assert.True(t, cfg.Rules.RequireBoundary.Enabled)
	assert.Equal(t, []string{rules.DefaultBoundaryComponent}, cfg.Rules.RequireBoundary.BoundaryComponent)
	assert.Equal(t, rules.DefaultImportSource, cfg.Rules.RequireBoundary.ImportSource)
	assert.Equal(t, rules.DefaultWrapperFunction, cfg.Rules.RequireWithBoundary.WithBoundaryFunction)
	assert.True(t, cfg.Rules.RequireWithBoundary.EnableHOCDetection)
	assert.False(t, cfg.Rules.RequireWithBoundary.AllowPureWrapper)
	assert.Contains(t, cfg.Files.Extensions, ".tsx")
	assert.Equal(t, config.DefaultExclude, cfg.Files.Exclude)
	assert.Equal(t, config.DefaultLogLevel, cfg.Log.Level)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, config.DefaultPort, cfg.Server.Port)
	assert.Equal(t, "127.0.0.1:8080", cfg.Server.Addr())
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Zero(t, cfg.Jobs)
}

func TestLoadConfigFromFile(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
rules:
  require-boundary:
    boundary_component: ErrorBoundary
    import_source: "@app/boundary"
  require-with-boundary:
    enabled: false
    with_boundary_function: guard
    enable_hoc_detection: false
    allow_pure_wrapper: true
files:
  exclude: ["generated/"]
server:
  port: 9000
  idle_timeout: "2m"
jobs: 4
`)

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"ErrorBoundary"}, cfg.Rules.RequireBoundary.BoundaryComponent, "string becomes a list")
	assert.Equal(t, "@app/boundary", cfg.Rules.RequireBoundary.ImportSource)
	assert.False(t, cfg.Rules.RequireWithBoundary.Enabled)
	assert.Equal(t, "guard", cfg.Rules.RequireWithBoundary.WithBoundaryFunction)
	assert.Equal(t, []string{"generated/"}, cfg.Files.Exclude)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 2*time.Minute, cfg.Server.IdleTimeout)
	assert.Equal(t, 4, cfg.Jobs)

	opts, err := cfg.RuleOptions(rules.RequireWithBoundaryName)
	require.NoError(t, err)
	assert.Equal(t, "guard", opts.WrapperFunction)
	assert.True(t, opts.DisableHOCDetection)
	assert.True(t, opts.AllowPureWrapper)
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	t.Setenv("BOUNDARYLINT_LOG_LEVEL", "debug")
	t.Setenv("BOUNDARYLINT_JOBS", "3")
	t.Setenv("BOUNDARYLINT_RULES_REQUIRE_BOUNDARY_ENABLED", "false")

	cfg, err := config.LoadConfig(writeConfig(t, "log:\n  level: warn\n"))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level, "environment wins over the file")
	assert.Equal(t, 3, cfg.Jobs)
	assert.False(t, cfg.Rules.RequireBoundary.Enabled)
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{name: "negative jobs", content: "jobs: -1\n", wantErr: config.ErrInvalidJobs},
		{name: "unknown log level", content: "log:\n  level: loud\n", wantErr: config.ErrInvalidLogLevel},
		{name: "extension without dot", content: "files:\n  extensions: [tsx]\n", wantErr: config.ErrInvalidExtension},
		{name: "port out of range", content: "server:\n  port: 70000\n", wantErr: config.ErrInvalidPort},
		{
			name:    "wrapper is not an identifier",
			content: "rules:\n  require-with-boundary:\n    with_boundary_function: \"with-boundary\"\n",
			wantErr: config.ErrSchemaViolation,
		},
		{
			name:    "empty boundary list",
			content: "rules:\n  require-boundary:\n    boundary_component: []\n",
			wantErr: config.ErrSchemaViolation,
		},
		{
			name:    "sample ratio above one",
			content: "telemetry:\n  sample_ratio: 2\n",
			wantErr: config.ErrSchemaViolation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := config.LoadConfig(writeConfig(t, tt.content))
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestLoadConfig_UnknownKey(t *testing.T) {
	t.Parallel()

	_, err := config.LoadConfig(writeConfig(t, "rules:\n  require-boundary:\n    boundaryComponent: X\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boundarycomponent")
}

func TestLoadConfig_MalformedYAML(t *testing.T) {
	t.Parallel()

	_, err := config.LoadConfig(writeConfig(t, "rules: [\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestBuildRules(t *testing.T) {
	t.Parallel()

	cfg := config.Default()

	all, err := cfg.BuildRules(nil)
	require.NoError(t, err)
	require.Len(t, all, 2)

	cfg.Rules.RequireBoundary.Enabled = false

	enabled, err := cfg.BuildRules(nil)
	require.NoError(t, err)
	require.Len(t, enabled, 1)
	assert.Equal(t, rules.RequireWithBoundaryName, enabled[0].Meta().Name)

	only, err := cfg.BuildRules([]string{rules.RequireBoundaryName})
	require.NoError(t, err)
	require.Len(t, only, 1)
	assert.Equal(t, rules.RequireBoundaryName, only[0].Meta().Name, "explicit selection ignores enabled")

	_, err = cfg.BuildRules([]string{"nope"})
	require.ErrorIs(t, err, rules.ErrUnknownRule)
}

func TestWriteFile_RoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), config.FileName)
	require.NoError(t, config.WriteFile(path, config.Default(), false))

	loaded, err := config.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), loaded)

	err = config.WriteFile(path, config.Default(), false)
	require.ErrorIs(t, err, config.ErrConfigExists)
	require.NoError(t, config.WriteFile(path, config.Default(), true))
}

func TestValidateSchema_Defaults(t *testing.T) {
	t.Parallel()

	require.NoError(t, config.ValidateSchema(config.Default()))
}
