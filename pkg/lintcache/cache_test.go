package lintcache_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/boundarylint/pkg/lintcache"
	"github.com/Sumatoshi-tech/boundarylint/pkg/rules"
)

func TestCache_RoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	content := []byte("export const A = () => <div />;\n")
	diags := []rules.Diagnostic{{Rule: rules.RequireBoundaryName, ComponentName: "A", Line: 1, Column: 18}}

	cache, err := lintcache.Open(dir, "fp1")
	require.NoError(t, err)

	_, ok := cache.Get("a.tsx", content)
	assert.False(t, ok)

	cache.Put("a.tsx", content, diags)
	require.NoError(t, cache.Save())

	reopened, err := lintcache.Open(dir, "fp1")
	require.NoError(t, err)
	assert.Equal(t, 1, reopened.Len())

	got, ok := reopened.Get("a.tsx", content)
	require.True(t, ok)
	assert.Equal(t, diags, got)

	_, ok = reopened.Get("a.tsx", []byte("changed"))
	assert.False(t, ok)

	hits, misses := reopened.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses)
}

func TestCache_FingerprintMismatchStartsEmpty(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	cache, err := lintcache.Open(dir, "old")
	require.NoError(t, err)
	cache.Put("a.tsx", []byte("x"), nil)
	require.NoError(t, cache.Save())

	fresh, err := lintcache.Open(dir, "new")
	require.NoError(t, err)
	assert.Zero(t, fresh.Len())
}

func TestCache_CorruptFileIsIgnored(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, lintcache.FileName), []byte("not lz4"), 0o600))

	cache, err := lintcache.Open(dir, "fp")
	require.NoError(t, err)
	assert.Zero(t, cache.Len())

	require.NoError(t, lintcache.Clear(dir))
	require.NoError(t, lintcache.Clear(dir), "clearing twice is fine")
}

func TestCache_SaveWithoutChangesWritesNothing(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	cache, err := lintcache.Open(dir, "fp")
	require.NoError(t, err)
	require.NoError(t, cache.Save())

	_, statErr := os.Stat(filepath.Join(dir, lintcache.FileName))
	assert.True(t, os.IsNotExist(statErr))
}

func TestFingerprint(t *testing.T) {
	t.Parallel()

	a, err := lintcache.Fingerprint("v1", rules.DefaultOptions())
	require.NoError(t, err)

	b, err := lintcache.Fingerprint("v1", rules.DefaultOptions())
	require.NoError(t, err)

	c, err := lintcache.Fingerprint("v2", rules.DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.NotEqual(t, lintcache.HashContent([]byte("a")), lintcache.HashContent([]byte("b")))
}
