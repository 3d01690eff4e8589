package rules

import (
	"github.com/Sumatoshi-tech/boundarylint/pkg/uast/pkg/node"
)

// collectedKinds are the node kinds the collection phase hooks.
var collectedKinds = []string{
	node.KindImport,
	node.KindExport,
	node.KindFunctionDeclaration,
	node.KindLexicalDeclaration,
	node.KindVariableDeclaration,
}

// collector is the gathering phase shared by both rules: it feeds the import
// resolver and candidate table and records export statements for deferred
// binding. Only module-level declarations are collected; a declaration at
// depth 2 counts when its parent is a top-level export statement.
type collector struct {
	policy     binderPolicy
	imports    *ImportResolver
	candidates *CandidateTable
	exports    []*node.Node

	// inExport is the top-level export statement being walked, if any.
	inExport *node.Node
}

func newCollector(policy binderPolicy, imports *ImportResolver) *collector {
	return &collector{
		policy:     policy,
		imports:    imports,
		candidates: NewCandidateTable(),
	}
}

func (c *collector) register(t *Traverser, v NodeVisitor) {
	for _, kind := range collectedKinds {
		t.RegisterHook(kind, v)
	}
}

func (c *collector) topLevel(depth int) bool {
	return depth == 1 || (depth == 2 && c.inExport != nil)
}

// OnEnter implements NodeVisitor.
func (c *collector) OnEnter(n *node.Node, depth int) {
	if !c.topLevel(depth) {
		return
	}

	switch {
	case n.Is(node.KindImport):
		c.imports.Add(n)
	case n.Is(node.KindExport):
		c.inExport = n
		c.exports = append(c.exports, n)
	case n.Is(node.KindFunctionDeclaration):
		c.collectFunction(n)
	case n.Is(node.KindLexicalDeclaration, node.KindVariableDeclaration):
		for _, declarator := range n.ChildrenOf(node.KindVariableDeclarator) {
			c.collectDeclarator(declarator)
		}
	}
}

// OnExit implements NodeVisitor.
func (c *collector) OnExit(n *node.Node, _ int) {
	if n == c.inExport {
		c.inExport = nil
	}
}

func (c *collector) collectFunction(fn *node.Node) {
	name := FunctionName(fn)
	if !IsComponentName(name) || !IsFunctionComponent(fn) {
		return
	}

	c.candidates.Set(&Candidate{Name: name, Node: fn, Origin: OriginFunction, IsComponent: true})
}

func (c *collector) collectDeclarator(declarator *node.Node) {
	name := declarator.Field(node.FieldName)
	value := declarator.Field(node.FieldValue)

	if !name.Is(node.KindIdentifier) || !IsComponentName(name.Token) || value == nil {
		return
	}

	switch {
	case c.policy.isComponent(value):
		c.candidates.Set(&Candidate{Name: name.Token, Node: Unparen(value), Origin: OriginVariable, IsComponent: true})
	case c.policy.wrapped(value):
		c.candidates.Set(&Candidate{Name: name.Token, Node: value, Origin: OriginVariable, IsWrapped: true})
	}
}

func (c *collector) binder() *ExportBinder {
	return &ExportBinder{policy: c.policy, candidates: c.candidates}
}
