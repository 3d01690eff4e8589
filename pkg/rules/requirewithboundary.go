package rules

import (
	"fmt"

	"github.com/Sumatoshi-tech/boundarylint/pkg/uast"
	"github.com/Sumatoshi-tech/boundarylint/pkg/uast/pkg/node"
)

// RequireWithBoundaryName is the wrapper rule's identifier.
const RequireWithBoundaryName = "require-with-boundary"

const msgMissingWithBoundary = "missingWithBoundary"

// RequireWithBoundary requires every exported component to be exported
// through a call to the wrapper function, and fixes exports that are not.
type RequireWithBoundary struct {
	opts Options
}

// NewRequireWithBoundary creates the rule.
func NewRequireWithBoundary(opts Options) *RequireWithBoundary {
	return &RequireWithBoundary{opts: opts.Normalize()}
}

// Meta implements Rule.
func (r *RequireWithBoundary) Meta() Meta {
	return Meta{
		Name:        RequireWithBoundaryName,
		Description: "Ensure exported components are exported through the boundary wrapper function",
		MessageID:   msgMissingWithBoundary,
		Fixable:     true,
		Recommended: true,
	}
}

// NewChecker implements Rule.
func (r *RequireWithBoundary) NewChecker(file *uast.File) Checker {
	imports := NewImportResolver(r.opts.ImportSource, r.opts.BoundaryNames, r.opts.WrapperFunction, RoleWrapperFunction)
	isWrapperCall := func(n *node.Node) bool {
		return imports.IsWrapper(CalleeName(n))
	}

	return &requireWithBoundaryChecker{
		opts:      r.opts,
		src:       file.Source,
		collector: newCollector(binderPolicy{hoc: r.opts.HOCDetection(), isWrapperCall: isWrapperCall}, imports),
		reporter:  newReporter(RequireWithBoundaryName),
		fixer:     &fixer{src: file.Source, root: file.Root, opts: r.opts, imports: imports},
	}
}

type requireWithBoundaryChecker struct {
	*collector

	opts     Options
	src      []byte
	reporter *Reporter
	fixer    *fixer
}

func (c *requireWithBoundaryChecker) Register(t *Traverser) {
	c.register(t, c.collector)
}

func (c *requireWithBoundaryChecker) Finalize() []Diagnostic {
	var failing []ExportedInstance

	for _, inst := range c.binder().Bind(c.exports) {
		if !c.compliant(inst) {
			failing = append(failing, inst)
		}
	}

	c.fixer.report(failing)

	for _, inst := range failing {
		c.reporter.Report(inst.Export, msgMissingWithBoundary,
			fmt.Sprintf(`component "%s" should be exported with %s()`, inst.ExportedName, c.opts.WrapperFunction),
			inst.ExportedName, c.opts.WrapperFunction, c.fixer.Fix(inst))
	}

	return c.reporter.Diagnostics()
}

func (c *requireWithBoundaryChecker) compliant(inst ExportedInstance) bool {
	if (inst.Kind == DefaultDirect || inst.Kind == DefaultReference) && c.policy.wrapped(inst.Value) {
		return true
	}

	if c.opts.AllowBoundaryElement && hasBoundaryRoot(inst.Component, c.imports, c.src) {
		return true
	}

	return c.opts.AllowPureWrapper && inst.Kind == DefaultDirect && inst.LocalName == "" &&
		isPureWrapper(inst.Component, c.imports, c.src)
}

// isPureWrapper reports whether fn does nothing but return a boundary-rooted
// tree: an expression body, or a block whose only statement (comments aside)
// is that return.
func isPureWrapper(fn *node.Node, imports *ImportResolver, src []byte) bool {
	if !IsFunction(fn) || !hasBoundaryRoot(fn, imports, src) {
		return false
	}

	body := fn.Field(node.FieldBody)
	if !body.Is(node.KindStatementBlock) {
		return true
	}

	statements := 0

	for _, stmt := range body.Children {
		if stmt.Is(node.KindComment) {
			continue
		}

		statements++

		if !stmt.Is(node.KindReturn) {
			return false
		}
	}

	return statements == 1
}
