package rules

import (
	"github.com/Sumatoshi-tech/boundarylint/pkg/textedit"
	"github.com/Sumatoshi-tech/boundarylint/pkg/uast"
)

// Engine runs a set of rules over parsed files. It holds no per-file state
// and is safe for concurrent use.
type Engine struct {
	rules []Rule
}

// NewEngine creates an engine running rules in order.
func NewEngine(rules ...Rule) *Engine {
	return &Engine{rules: rules}
}

// Rules returns the configured rules.
func (e *Engine) Rules() []Rule {
	return e.rules
}

// Analyze runs every rule over file in one traversal and returns the
// diagnostics that survive suppression comments, ordered by position.
// Files with neither markup nor a HOC call produce no diagnostics.
func (e *Engine) Analyze(file *uast.File) []Diagnostic {
	if file == nil || file.Root == nil || len(e.rules) == 0 || !bearsComponents(file) {
		return nil
	}

	traverser := NewTraverser()
	checkers := make([]Checker, 0, len(e.rules))

	for _, rule := range e.rules {
		checker := rule.NewChecker(file)
		checker.Register(traverser)
		checkers = append(checkers, checker)
	}

	traverser.Traverse(file.Root)

	var diags []Diagnostic

	for _, checker := range checkers {
		diags = append(diags, checker.Finalize()...)
	}

	diags = ParseSuppressions(file.Root, file.Source).Filter(diags)
	SortDiagnostics(diags)

	return diags
}

// Fixes returns the edit groups of fixable diagnostics, in order.
func Fixes(diags []Diagnostic) [][]textedit.Edit {
	var out [][]textedit.Edit

	for _, d := range diags {
		if d.Fixable() {
			out = append(out, d.Fix)
		}
	}

	return out
}

// bearsComponents reports whether file can define a component: it contains
// markup, or a forwardRef/memo/lazy call whose component lives elsewhere.
func bearsComponents(file *uast.File) bool {
	return file.HasMarkup() || file.Root.Any(IsHOCCall)
}
