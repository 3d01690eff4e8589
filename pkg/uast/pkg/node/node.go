// Package node provides the lowered syntax tree consumed by the rule engine.
//
// A Node mirrors one named tree-sitter node: its grammar kind, its source
// range, its named children in order and the subset of those children that
// the grammar exposes under a field name. Anonymous keyword tokens that carry
// meaning (default, const, type, async) are recorded in Props.
package node

import (
	"strconv"
	"strings"
)

// Node kinds produced by the JavaScript, TypeScript and TSX grammars that the
// rule engine inspects.
const (
	KindProgram              = "program"
	KindComment              = "comment"
	KindError                = "ERROR"
	KindHashBang             = "hash_bang_line"
	KindImport               = "import_statement"
	KindImportClause         = "import_clause"
	KindNamedImports         = "named_imports"
	KindImportSpecifier      = "import_specifier"
	KindNamespaceImport      = "namespace_import"
	KindExport               = "export_statement"
	KindExportClause         = "export_clause"
	KindExportSpecifier      = "export_specifier"
	KindFunctionDeclaration  = "function_declaration"
	KindFunctionExpression   = "function_expression"
	KindFunction             = "function"
	KindArrowFunction        = "arrow_function"
	KindLexicalDeclaration   = "lexical_declaration"
	KindVariableDeclaration  = "variable_declaration"
	KindVariableDeclarator   = "variable_declarator"
	KindStatementBlock       = "statement_block"
	KindReturn               = "return_statement"
	KindExpressionStatement  = "expression_statement"
	KindParenthesized        = "parenthesized_expression"
	KindTernary              = "ternary_expression"
	KindBinary               = "binary_expression"
	KindCall                 = "call_expression"
	KindMember               = "member_expression"
	KindAs                   = "as_expression"
	KindSatisfies            = "satisfies_expression"
	KindNonNull              = "non_null_expression"
	KindIdentifier           = "identifier"
	KindPropertyIdentifier   = "property_identifier"
	KindString               = "string"
	KindTypeParameters       = "type_parameters"
	KindJSXElement           = "jsx_element"
	KindJSXSelfClosing       = "jsx_self_closing_element"
	KindJSXOpening           = "jsx_opening_element"
	KindJSXFragment          = "jsx_fragment"
	KindJSXNamespaceName     = "jsx_namespace_name"
	KindNestedIdentifier     = "nested_identifier"
)

// Field names attached to children by the grammars.
const (
	FieldName           = "name"
	FieldValue          = "value"
	FieldDeclaration    = "declaration"
	FieldSource         = "source"
	FieldAlias          = "alias"
	FieldBody           = "body"
	FieldParameters     = "parameters"
	FieldParameter      = "parameter"
	FieldTypeParameters = "type_parameters"
	FieldReturnType     = "return_type"
	FieldFunction       = "function"
	FieldArguments      = "arguments"
	FieldObject         = "object"
	FieldProperty       = "property"
	FieldCondition      = "condition"
	FieldConsequence    = "consequence"
	FieldAlternative    = "alternative"
	FieldLeft           = "left"
	FieldRight          = "right"
	FieldOperator       = "operator"
	FieldOpenTag        = "open_tag"
	FieldCloseTag       = "close_tag"
	FieldType           = "type"
)

// FieldNames lists every field the lowering step resolves.
//
//nolint:gochecknoglobals // Read-only lookup table.
var FieldNames = []string{
	FieldName, FieldValue, FieldDeclaration, FieldSource, FieldAlias, FieldBody,
	FieldParameters, FieldParameter, FieldTypeParameters, FieldReturnType,
	FieldFunction, FieldArguments, FieldObject, FieldProperty,
	FieldCondition, FieldConsequence, FieldAlternative,
	FieldLeft, FieldRight, FieldOperator, FieldOpenTag, FieldCloseTag, FieldType,
}

// Property keys set during lowering.
const (
	PropDefault  = "default"
	PropConst    = "const"
	PropLet      = "let"
	PropVar      = "var"
	PropTypeOnly = "type"
	PropAsync    = "async"
	PropQuote    = "quote"
)

// Type is the grammar kind of a node.
type Type string

// Positions represents the byte and line/col offsets for a node.
// All fields are 1-based except StartOffset/EndOffset, which are byte offsets.
type Positions struct {
	StartLine   uint `json:"start_line,omitempty"`
	StartCol    uint `json:"start_col,omitempty"`
	StartOffset uint `json:"start_offset,omitempty"`
	EndLine     uint `json:"end_line,omitempty"`
	EndCol      uint `json:"end_col,omitempty"`
	EndOffset   uint `json:"end_offset,omitempty"`
}

// NewPositions builds a Positions value.
func NewPositions(startLine, startCol, startOffset, endLine, endCol, endOffset uint) *Positions {
	return &Positions{
		StartLine:   startLine,
		StartCol:    startCol,
		StartOffset: startOffset,
		EndLine:     endLine,
		EndCol:      endCol,
		EndOffset:   endOffset,
	}
}

// Node is one lowered syntax node.
//
// Fields:
//
//	Type: grammar kind (e.g., "function_declaration").
//	Token: source text for leaf nodes; unquoted value for string literals.
//	Pos: source range.
//	Props: keyword flags and anonymous field tokens (e.g., binary operators).
//	Fields: named children reachable through a grammar field.
//	Children: named children in source order.
type Node struct {
	Type     Type              `json:"type,omitempty"`
	Token    string            `json:"token,omitempty"`
	Pos      *Positions        `json:"pos,omitempty"`
	Props    map[string]string `json:"props,omitempty"`
	Fields   map[string]*Node  `json:"-"`
	Children []*Node           `json:"children,omitempty"`
}

// Is reports whether the node is non-nil and of one of the given kinds.
func (targetNode *Node) Is(kinds ...string) bool {
	if targetNode == nil {
		return false
	}

	for _, kind := range kinds {
		if string(targetNode.Type) == kind {
			return true
		}
	}

	return false
}

// Field returns the child stored under the grammar field, or nil.
func (targetNode *Node) Field(name string) *Node {
	if targetNode == nil || targetNode.Fields == nil {
		return nil
	}

	return targetNode.Fields[name]
}

// Prop returns a property value, or "" when absent.
func (targetNode *Node) Prop(key string) string {
	if targetNode == nil || targetNode.Props == nil {
		return ""
	}

	return targetNode.Props[key]
}

// HasProp reports whether a keyword flag was recorded.
func (targetNode *Node) HasProp(key string) bool {
	return targetNode.Prop(key) != ""
}

// SetField attaches child under a field name. The child must already be one
// of the node's Children for traversal to see it.
func (targetNode *Node) SetField(name string, child *Node) {
	if targetNode.Fields == nil {
		targetNode.Fields = make(map[string]*Node)
	}

	targetNode.Fields[name] = child
}

// SetProp records a property.
func (targetNode *Node) SetProp(key, value string) {
	if targetNode.Props == nil {
		targetNode.Props = make(map[string]string)
	}

	targetNode.Props[key] = value
}

// AddChild appends a child node to n.
func (targetNode *Node) AddChild(child *Node) {
	targetNode.Children = append(targetNode.Children, child)
}

// Start returns the starting byte offset, or 0 without positions.
func (targetNode *Node) Start() int {
	if targetNode == nil || targetNode.Pos == nil {
		return 0
	}

	return int(targetNode.Pos.StartOffset)
}

// End returns the ending byte offset, or 0 without positions.
func (targetNode *Node) End() int {
	if targetNode == nil || targetNode.Pos == nil {
		return 0
	}

	return int(targetNode.Pos.EndOffset)
}

// Text returns the node's source text from src.
func (targetNode *Node) Text(src []byte) string {
	start, end := targetNode.Start(), targetNode.End()
	if targetNode == nil || start > end || end > len(src) {
		return ""
	}

	return string(src[start:end])
}

// FirstExpr returns the first named child that is not a comment. Statements
// and wrappers without field names (return, parentheses, as-casts) hold their
// operand this way.
func (targetNode *Node) FirstExpr() *Node {
	if targetNode == nil {
		return nil
	}

	for _, child := range targetNode.Children {
		if !child.Is(KindComment) {
			return child
		}
	}

	return nil
}

// ChildrenOf returns the named children of the given kind.
func (targetNode *Node) ChildrenOf(kind string) []*Node {
	if targetNode == nil {
		return nil
	}

	var result []*Node

	for _, child := range targetNode.Children {
		if string(child.Type) == kind {
			result = append(result, child)
		}
	}

	return result
}

// Find returns all nodes in the tree (including root) for which predicate(node) is true.
// Traversal is pre-order. Returns nil if n is nil.
func (targetNode *Node) Find(predicate func(*Node) bool) []*Node {
	if targetNode == nil {
		return nil
	}

	var result []*Node

	targetNode.VisitPreOrder(func(curr *Node) {
		if predicate(curr) {
			result = append(result, curr)
		}
	})

	return result
}

// Any reports whether at least one node in the tree satisfies predicate.
// It stops at the first match.
func (targetNode *Node) Any(predicate func(*Node) bool) bool {
	if targetNode == nil {
		return false
	}

	stack := []*Node{targetNode}

	for len(stack) > 0 {
		curr := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if predicate(curr) {
			return true
		}

		pushReversedChildren(curr, &stack)
	}

	return false
}

// VisitPreOrder visits all nodes in pre-order (root, then children left-to-right).
func (targetNode *Node) VisitPreOrder(fn func(*Node)) {
	if targetNode == nil {
		return
	}

	stack := []*Node{targetNode}

	for len(stack) > 0 {
		curr := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		fn(curr)
		pushReversedChildren(curr, &stack)
	}
}

// Walk visits the tree depth-first, calling enter before a node's children
// and exit after them. Depth starts at 0 for the receiver.
func (targetNode *Node) Walk(enter, exit func(n *Node, depth int)) {
	if targetNode == nil {
		return
	}

	type frame struct {
		node  *Node
		depth int
		exit  bool
	}

	stack := []frame{{node: targetNode}}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if top.exit {
			if exit != nil {
				exit(top.node, top.depth)
			}

			continue
		}

		if enter != nil {
			enter(top.node, top.depth)
		}

		stack = append(stack, frame{node: top.node, depth: top.depth, exit: true})

		for idx := len(top.node.Children) - 1; idx >= 0; idx-- {
			stack = append(stack, frame{node: top.node.Children[idx], depth: top.depth + 1})
		}
	}
}

// String renders a compact one-line description for debugging.
func (targetNode *Node) String() string {
	if targetNode == nil {
		return "<nil>"
	}

	var buf strings.Builder

	buf.WriteString(string(targetNode.Type))

	if targetNode.Token != "" {
		buf.WriteString(" ")
		buf.WriteString(strconv.Quote(targetNode.Token))
	}

	if targetNode.Pos != nil {
		buf.WriteString(" @")
		buf.WriteString(strconv.FormatUint(uint64(targetNode.Pos.StartLine), 10))
		buf.WriteString(":")
		buf.WriteString(strconv.FormatUint(uint64(targetNode.Pos.StartCol), 10))
	}

	if len(targetNode.Children) > 0 {
		buf.WriteString(" children=")
		buf.WriteString(strconv.Itoa(len(targetNode.Children)))
	}

	return buf.String()
}

func pushReversedChildren(targetNode *Node, stack *[]*Node) {
	children := targetNode.Children

	for idx := len(children) - 1; idx >= 0; idx-- {
		*stack = append(*stack, children[idx])
	}
}
