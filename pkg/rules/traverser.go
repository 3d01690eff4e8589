package rules

import (
	"github.com/Sumatoshi-tech/boundarylint/pkg/uast/pkg/node"
)

// NodeVisitor receives enter and exit callbacks during traversal.
type NodeVisitor interface {
	OnEnter(n *node.Node, depth int)
	OnExit(n *node.Node, depth int)
}

// Traverser dispatches one depth-first walk to visitors registered for
// specific node kinds, so several checkers share a single pass over a file.
type Traverser struct {
	hooks map[string][]NodeVisitor
}

// NewTraverser creates a Traverser without hooks.
func NewTraverser() *Traverser {
	return &Traverser{hooks: make(map[string][]NodeVisitor)}
}

// RegisterHook registers a visitor for a node kind.
func (t *Traverser) RegisterHook(kind string, v NodeVisitor) {
	t.hooks[kind] = append(t.hooks[kind], v)
}

// Traverse walks root in source order.
func (t *Traverser) Traverse(root *node.Node) {
	if root == nil || len(t.hooks) == 0 {
		return
	}

	root.Walk(
		func(n *node.Node, depth int) {
			for _, v := range t.hooks[string(n.Type)] {
				v.OnEnter(n, depth)
			}
		},
		func(n *node.Node, depth int) {
			for _, v := range t.hooks[string(n.Type)] {
				v.OnExit(n, depth)
			}
		},
	)
}
