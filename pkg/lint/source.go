// Package lint drives the rule engine over files: discovery, parsing,
// caching, fix application and parallel execution.
package lint

import (
	"context"
	"fmt"
	"time"

	"github.com/Sumatoshi-tech/boundarylint/pkg/rules"
	"github.com/Sumatoshi-tech/boundarylint/pkg/textedit"
	"github.com/Sumatoshi-tech/boundarylint/pkg/uast"
	"github.com/Sumatoshi-tech/boundarylint/pkg/uast/pkg/node"
)

// MaxFixPasses bounds how often fixes are recomputed on rewritten source.
const MaxFixPasses = 10

// ParseErrorID is the message id of the fatal diagnostic for unparsable files.
const ParseErrorID = "parseError"

// FileResult is the outcome of linting one source.
type FileResult struct {
	Path        string             `json:"path"`
	Language    string             `json:"language"`
	Diagnostics []rules.Diagnostic `json:"diagnostics"`
	// Output is the fixed source. It is nil unless fixes were applied.
	Output       []byte        `json:"-"`
	Source       []byte        `json:"-"`
	FixesApplied int           `json:"fixesApplied,omitempty"`
	CacheHit     bool          `json:"-"`
	Duration     time.Duration `json:"-"`
}

// Fixed reports whether fixing changed the source.
func (r *FileResult) Fixed() bool {
	return r.Output != nil
}

// Fatal reports whether the file could not be analyzed.
func (r *FileResult) Fatal() bool {
	for _, d := range r.Diagnostics {
		if d.Severity == rules.SeverityFatal {
			return true
		}
	}

	return false
}

// CountByRule counts diagnostics per rule name.
func (r *FileResult) CountByRule() map[string]int {
	counts := make(map[string]int, len(r.Diagnostics))
	for _, d := range r.Diagnostics {
		counts[d.Rule]++
	}

	return counts
}

// Linter analyzes single sources. It is safe for concurrent use.
type Linter struct {
	parser *uast.Parser
	engine *rules.Engine
}

// NewLinter creates a linter running engine.
func NewLinter(engine *rules.Engine) *Linter {
	return &Linter{parser: uast.NewParser(), engine: engine}
}

// Engine returns the rule engine.
func (l *Linter) Engine() *rules.Engine {
	return l.engine
}

// Supported reports whether filename can be linted.
func (l *Linter) Supported(filename string) bool {
	return l.parser.IsSupported(filename)
}

// LintSource analyzes src as filename. With fix set, fixable diagnostics are
// applied pass by pass until none remain or MaxFixPasses is reached; the
// returned diagnostics describe the final source. A source tree-sitter can
// only partially recover yields a single fatal diagnostic instead of rule
// results.
func (l *Linter) LintSource(ctx context.Context, filename string, src []byte, fix bool) (*FileResult, error) {
	start := time.Now()
	result := &FileResult{Path: filename, Source: src}

	current := src

	for pass := 0; ; pass++ {
		file, err := l.parser.Parse(ctx, filename, current)
		if err != nil {
			return nil, fmt.Errorf("lint %s: %w", filename, err)
		}

		result.Language = file.Language

		if file.Errors > 0 {
			result.Diagnostics = []rules.Diagnostic{parseErrorDiagnostic(file)}

			break
		}

		result.Diagnostics = l.engine.Analyze(file)

		if !fix || pass >= MaxFixPasses {
			break
		}

		fixes := rules.Fixes(result.Diagnostics)
		if len(fixes) == 0 {
			break
		}

		next, applied, err := textedit.ApplyFixes(current, fixes)
		if err != nil {
			return nil, fmt.Errorf("fix %s: %w", filename, err)
		}

		if applied == 0 {
			break
		}

		current = next
		result.FixesApplied += applied
	}

	if result.FixesApplied > 0 {
		result.Output = current
	}

	result.Duration = time.Since(start)

	return result, nil
}

func parseErrorDiagnostic(file *uast.File) rules.Diagnostic {
	d := rules.Diagnostic{
		MessageID: ParseErrorID,
		Message:   fmt.Sprintf("parsing error: %d syntax error(s), file not analyzed", file.Errors),
		Severity:  rules.SeverityFatal,
		Line:      1,
		Column:    1,
	}

	errs := file.Root.Find(func(n *node.Node) bool { return n.Is(node.KindError) })
	if len(errs) > 0 && errs[0].Pos != nil {
		pos := errs[0].Pos
		d.Line, d.Column = int(pos.StartLine), int(pos.StartCol)
		d.EndLine, d.EndColumn = int(pos.EndLine), int(pos.EndCol)
		d.Start, d.End = errs[0].Start(), errs[0].End()
	}

	return d
}
