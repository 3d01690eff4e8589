package rules

import (
	"fmt"

	"github.com/Sumatoshi-tech/boundarylint/pkg/uast"
	"github.com/Sumatoshi-tech/boundarylint/pkg/uast/pkg/node"
)

// RequireBoundaryName is the structural rule's identifier.
const RequireBoundaryName = "require-boundary"

const msgMissingBoundary = "missingBoundary"

// RequireBoundary requires every exported component to return a tree rooted
// at a boundary element.
type RequireBoundary struct {
	opts Options
}

// NewRequireBoundary creates the rule.
func NewRequireBoundary(opts Options) *RequireBoundary {
	return &RequireBoundary{opts: opts.Normalize()}
}

// Meta implements Rule.
func (r *RequireBoundary) Meta() Meta {
	return Meta{
		Name:        RequireBoundaryName,
		Description: "Ensure exported components are wrapped with a boundary element",
		MessageID:   msgMissingBoundary,
		Recommended: true,
	}
}

// NewChecker implements Rule.
func (r *RequireBoundary) NewChecker(file *uast.File) Checker {
	imports := NewImportResolver(r.opts.ImportSource, r.opts.BoundaryNames, "", RoleBoundaryElement)

	return &requireBoundaryChecker{
		opts:      r.opts,
		src:       file.Source,
		collector: newCollector(binderPolicy{}, imports),
		reporter:  newReporter(RequireBoundaryName),
	}
}

type requireBoundaryChecker struct {
	*collector

	opts     Options
	src      []byte
	reporter *Reporter
}

func (c *requireBoundaryChecker) Register(t *Traverser) {
	c.register(t, c.collector)
}

func (c *requireBoundaryChecker) Finalize() []Diagnostic {
	for _, inst := range c.binder().Bind(c.exports) {
		if hasBoundaryRoot(inst.Component, c.imports, c.src) {
			continue
		}

		boundary := c.opts.PrimaryBoundary()
		c.reporter.Report(inst.Component, msgMissingBoundary,
			fmt.Sprintf(`component "%s" should be wrapped with <%s>`, inst.ExportedName, boundary),
			inst.ExportedName, boundary, nil)
	}

	return c.reporter.Diagnostics()
}

// hasBoundaryRoot reports whether at least one outermost returned element of
// fn is a boundary. Fragments and nested boundaries do not count.
func hasBoundaryRoot(fn *node.Node, imports *ImportResolver, src []byte) bool {
	for _, root := range RootElements(fn) {
		if imports.IsBoundary(ElementName(root, src)) {
			return true
		}
	}

	return false
}
