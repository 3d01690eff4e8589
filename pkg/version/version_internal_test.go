package version

import (
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	t.Parallel()

	info := &debug.BuildInfo{
		Main: debug.Module{Version: "v1.4.0"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "abc123"},
			{Key: "vcs.time", Value: "2026-01-02T03:04:05Z"},
		},
	}

	tests := []struct {
		name string
		ver  string
		info *debug.BuildInfo
		want Info
	}{
		{"ldflags win", "v2.0.0", info, Info{Version: "v2.0.0", Commit: "abc123", Date: "2026-01-02T03:04:05Z"}},
		{"build info fallback", "", info, Info{Version: "v1.4.0", Commit: "abc123", Date: "2026-01-02T03:04:05Z"}},
		{"devel module", "", &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}}, Info{Version: "dev", Commit: unknown, Date: unknown}},
		{"nothing", "", nil, Info{Version: "dev", Commit: unknown, Date: unknown}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, resolve(tt.ver, "", "", tt.info))
		})
	}
}

func TestInfoString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "v1 (commit: c, built: d)", Info{Version: "v1", Commit: "c", Date: "d"}.String())
}
