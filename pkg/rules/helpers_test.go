package rules_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/boundarylint/pkg/rules"
	"github.com/Sumatoshi-tech/boundarylint/pkg/textedit"
	"github.com/Sumatoshi-tech/boundarylint/pkg/uast"
)

const maxFixPasses = 10

func parse(t *testing.T, src string) *uast.File {
	t.Helper()

	file, err := uast.NewParser().Parse(context.Background(), "Component.tsx", []byte(src))
	require.NoError(t, err)
	require.Zero(t, file.Errors, "fixture must parse cleanly:\n%s", src)

	return file
}

func analyze(t *testing.T, rule rules.Rule, src string) []rules.Diagnostic {
	t.Helper()

	return rules.NewEngine(rule).Analyze(parse(t, src))
}

// fixAll applies fixes until the rule reports nothing fixable.
func fixAll(t *testing.T, rule rules.Rule, src string) string {
	t.Helper()

	out := []byte(src)

	for range maxFixPasses {
		fixes := rules.Fixes(rules.NewEngine(rule).Analyze(parse(t, string(out))))
		if len(fixes) == 0 {
			break
		}

		next, applied, err := textedit.ApplyFixes(out, fixes)
		require.NoError(t, err)

		if applied == 0 {
			break
		}

		out = next
	}

	return string(out)
}

// importMentions counts occurrences of name on import lines.
func importMentions(src, name string) int {
	count := 0

	for line := range strings.Lines(src) {
		if strings.HasPrefix(strings.TrimSpace(line), "import") {
			count += strings.Count(line, name)
		}
	}

	return count
}
