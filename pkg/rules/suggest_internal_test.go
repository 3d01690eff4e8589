package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistance(t *testing.T) {
	t.Parallel()

	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"kitten", "sitting", 3},
		{"require-boundary", "require-boundary", 0},
		{"héllo", "hello", 1},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, distance(tt.a, tt.b), "%q -> %q", tt.a, tt.b)
	}
}

func TestSuggest(t *testing.T) {
	t.Parallel()

	names := []string{RequireBoundaryName, RequireWithBoundaryName}

	assert.Equal(t, RequireWithBoundaryName, suggest("require-with-boundry", names))
	assert.Equal(t, RequireBoundaryName, suggest("requireboundary", names))
	assert.Empty(t, suggest("jsx-key", names))
}
