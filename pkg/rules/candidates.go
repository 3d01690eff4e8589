package rules

import (
	"github.com/Sumatoshi-tech/boundarylint/pkg/uast/pkg/node"
)

// Origin tells how a candidate was declared.
type Origin int

// Candidate origins.
const (
	OriginFunction Origin = iota
	OriginVariable
)

func (o Origin) String() string {
	if o == OriginVariable {
		return "variable"
	}

	return "function"
}

// Candidate is a top-level binding that may define a component.
type Candidate struct {
	Name string
	// Node is the function node, HOC call or wrapper call bound to Name.
	Node   *node.Node
	Origin Origin
	// IsComponent marks function components and, for the wrapper rule, HOC calls.
	IsComponent bool
	// IsWrapped marks bindings initialized with the wrapper call.
	IsWrapped bool
}

// CandidateTable is an insertion-ordered map of candidates by name. Setting an
// existing name replaces the entry in place.
type CandidateTable struct {
	order  []string
	byName map[string]*Candidate
}

// NewCandidateTable creates an empty table.
func NewCandidateTable() *CandidateTable {
	return &CandidateTable{byName: make(map[string]*Candidate)}
}

// Set records c, overwriting any earlier candidate with the same name.
func (t *CandidateTable) Set(c *Candidate) {
	if _, ok := t.byName[c.Name]; !ok {
		t.order = append(t.order, c.Name)
	}

	t.byName[c.Name] = c
}

// Get looks a candidate up by local name.
func (t *CandidateTable) Get(name string) (*Candidate, bool) {
	c, ok := t.byName[name]

	return c, ok
}

// Len returns the number of candidates.
func (t *CandidateTable) Len() int {
	return len(t.order)
}

// All returns candidates in first-declaration order.
func (t *CandidateTable) All() []*Candidate {
	out := make([]*Candidate, 0, len(t.order))
	for _, name := range t.order {
		out = append(out, t.byName[name])
	}

	return out
}

// IsComponentName reports whether name starts with an ASCII uppercase letter.
func IsComponentName(name string) bool {
	return name != "" && name[0] >= 'A' && name[0] <= 'Z'
}

// IsFunction reports whether n is any function form.
func IsFunction(n *node.Node) bool {
	return n.Is(node.KindFunctionDeclaration, node.KindFunctionExpression, node.KindFunction, node.KindArrowFunction)
}

// FunctionName returns the declared name of a function node, or "".
func FunctionName(n *node.Node) string {
	if name := n.Field(node.FieldName); name != nil {
		return name.Token
	}

	return ""
}

// Unparen strips parentheses.
func Unparen(n *node.Node) *node.Node {
	for n.Is(node.KindParenthesized) {
		n = n.FirstExpr()
	}

	return n
}

// UnwrapExpression strips parentheses and type-only wrappers
// (as, satisfies, non-null assertions).
func UnwrapExpression(n *node.Node) *node.Node {
	for n.Is(node.KindParenthesized, node.KindAs, node.KindSatisfies, node.KindNonNull) {
		n = n.FirstExpr()
	}

	return n
}

// IsMarkup reports whether n, ignoring parentheses, is a JSX element,
// self-closing element or fragment.
func IsMarkup(n *node.Node) bool {
	return Unparen(n).Is(node.KindJSXElement, node.KindJSXSelfClosing, node.KindJSXFragment)
}

// IsFunctionComponent applies the shape heuristic: a function declaration
// must be anonymous or have a component name; every function form must
// return markup.
func IsFunctionComponent(n *node.Node) bool {
	switch {
	case n.Is(node.KindFunctionDeclaration):
		name := FunctionName(n)

		return (name == "" || IsComponentName(name)) && ReturnsMarkup(n)
	case IsFunction(n):
		return ReturnsMarkup(n)
	default:
		return false
	}
}

// ReturnsMarkup reports whether a function's body is markup, or a block with
// a top-level return of markup, of a conditional with markup in a branch, or
// of a logical expression with markup on a side. Nested blocks are not
// searched.
func ReturnsMarkup(fn *node.Node) bool {
	body := fn.Field(node.FieldBody)
	if body == nil {
		return false
	}

	if !body.Is(node.KindStatementBlock) {
		return IsMarkup(body)
	}

	for _, stmt := range TopLevelReturns(body) {
		if returnsMarkupExpr(Unparen(stmt.FirstExpr())) {
			return true
		}
	}

	return false
}

// TopLevelReturns lists the return statements directly inside block.
func TopLevelReturns(block *node.Node) []*node.Node {
	return block.ChildrenOf(node.KindReturn)
}

func returnsMarkupExpr(arg *node.Node) bool {
	switch {
	case arg == nil:
		return false
	case IsMarkup(arg):
		return true
	case arg.Is(node.KindTernary):
		return IsMarkup(arg.Field(node.FieldConsequence)) || IsMarkup(arg.Field(node.FieldAlternative))
	case arg.Is(node.KindBinary) && isLogicalOperator(arg.Prop(node.FieldOperator)):
		return IsMarkup(arg.Field(node.FieldLeft)) || IsMarkup(arg.Field(node.FieldRight))
	default:
		return false
	}
}

func isLogicalOperator(op string) bool {
	return op == "&&" || op == "||" || op == "??"
}

// RootElements returns the outermost elements returned by fn: the expression
// body, or each top-level return whose argument is an element.
func RootElements(fn *node.Node) []*node.Node {
	body := fn.Field(node.FieldBody)
	if body == nil {
		return nil
	}

	if !body.Is(node.KindStatementBlock) {
		if el := Unparen(body); IsMarkup(el) {
			return []*node.Node{el}
		}

		return nil
	}

	var roots []*node.Node

	for _, stmt := range TopLevelReturns(body) {
		if el := Unparen(stmt.FirstExpr()); IsMarkup(el) {
			roots = append(roots, el)
		}
	}

	return roots
}

// ElementName returns the tag name text of a JSX element, or "" for
// fragments and other nodes.
func ElementName(el *node.Node, src []byte) string {
	switch {
	case el.Is(node.KindJSXElement):
		return el.Field(node.FieldOpenTag).Field(node.FieldName).Text(src)
	case el.Is(node.KindJSXSelfClosing):
		return el.Field(node.FieldName).Text(src)
	default:
		return ""
	}
}
