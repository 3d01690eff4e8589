package rules

import (
	"cmp"
	"slices"

	"github.com/Sumatoshi-tech/boundarylint/pkg/textedit"
	"github.com/Sumatoshi-tech/boundarylint/pkg/uast/pkg/node"
)

// Severity of a diagnostic.
type Severity string

// Severities. Rules only report problems; fatal marks files that could not
// be analyzed.
const (
	SeverityProblem Severity = "problem"
	SeverityFatal   Severity = "fatal"
)

// Diagnostic is one finding anchored to a source range.
type Diagnostic struct {
	Rule          string          `json:"rule"`
	MessageID     string          `json:"messageId"`
	Message       string          `json:"message"`
	Severity      Severity        `json:"severity"`
	ComponentName string          `json:"componentName,omitempty"`
	Suggestion    string          `json:"suggestion,omitempty"`
	Line          int             `json:"line"`
	Column        int             `json:"column"`
	EndLine       int             `json:"endLine"`
	EndColumn     int             `json:"endColumn"`
	Start         int             `json:"start"`
	End           int             `json:"end"`
	Fix           []textedit.Edit `json:"fix,omitempty"`
}

// Fixable reports whether the diagnostic carries edits.
func (d Diagnostic) Fixable() bool {
	return len(d.Fix) > 0
}

// Reporter accumulates diagnostics for one rule on one file.
type Reporter struct {
	rule  string
	diags []Diagnostic
}

func newReporter(rule string) *Reporter {
	return &Reporter{rule: rule}
}

// Report records a diagnostic anchored at anchor.
func (r *Reporter) Report(anchor *node.Node, messageID, message, component, suggestion string, fix []textedit.Edit) {
	d := Diagnostic{
		Rule:          r.rule,
		MessageID:     messageID,
		Message:       message,
		Severity:      SeverityProblem,
		ComponentName: component,
		Suggestion:    suggestion,
		Fix:           fix,
	}

	if anchor != nil && anchor.Pos != nil {
		d.Line = int(anchor.Pos.StartLine)
		d.Column = int(anchor.Pos.StartCol)
		d.EndLine = int(anchor.Pos.EndLine)
		d.EndColumn = int(anchor.Pos.EndCol)
		d.Start = anchor.Start()
		d.End = anchor.End()
	}

	r.diags = append(r.diags, d)
}

// Diagnostics returns what was reported.
func (r *Reporter) Diagnostics() []Diagnostic {
	return r.diags
}

// SortDiagnostics orders by position, then rule name.
func SortDiagnostics(diags []Diagnostic) {
	slices.SortStableFunc(diags, func(a, b Diagnostic) int {
		if c := cmp.Compare(a.Line, b.Line); c != 0 {
			return c
		}

		if c := cmp.Compare(a.Column, b.Column); c != 0 {
			return c
		}

		return cmp.Compare(a.Rule, b.Rule)
	})
}
