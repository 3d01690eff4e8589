package rules

import (
	"github.com/Sumatoshi-tech/boundarylint/pkg/uast/pkg/node"
)

// ExportKind is the shape of an export statement that exposed a component.
type ExportKind int

// Export kinds.
const (
	// NamedDirect: export function X(){} / export const X = ...
	NamedDirect ExportKind = iota
	// NamedReference: export { local as exported }
	NamedReference
	// DefaultDirect: export default function(){} / export default <expr>
	DefaultDirect
	// DefaultReference: export default X
	DefaultReference
)

func (k ExportKind) String() string {
	switch k {
	case NamedDirect:
		return "namedDirect"
	case NamedReference:
		return "namedReference"
	case DefaultDirect:
		return "defaultDirect"
	case DefaultReference:
		return "defaultReference"
	default:
		return "unknown"
	}
}

// DefaultExportName names anonymous default exports in diagnostics.
const DefaultExportName = "default"

// ExportedInstance ties an export statement to the component it exposes.
type ExportedInstance struct {
	ExportedName string
	// LocalName is the binding name when one exists ("" for anonymous values).
	LocalName string
	Kind      ExportKind
	// Component is the function node or HOC call defining the component.
	Component *node.Node
	// Export is the export statement.
	Export *node.Node
	// Value is the exported expression for default exports, the declaration
	// for direct named exports and the specifier for named references.
	Value *node.Node
}

// binderPolicy captures the per-rule differences in what counts as an
// exportable component.
type binderPolicy struct {
	// hoc admits HOC calls as components.
	hoc bool
	// isWrapperCall recognizes exports that are already wrapped; nil disables.
	isWrapperCall func(*node.Node) bool
}

func (p binderPolicy) isComponent(n *node.Node) bool {
	n = Unparen(n)

	return IsFunctionComponent(n) || (p.hoc && IsHOCCall(n))
}

func (p binderPolicy) wrapped(n *node.Node) bool {
	return p.isWrapperCall != nil && p.isWrapperCall(n)
}

// ExportBinder resolves recorded export statements against a complete
// candidate table.
type ExportBinder struct {
	policy     binderPolicy
	candidates *CandidateTable
}

// Bind returns the exported instances of every export statement, in order.
func (b *ExportBinder) Bind(exports []*node.Node) []ExportedInstance {
	var out []ExportedInstance

	for _, stmt := range exports {
		if stmt.Field(node.FieldSource) != nil {
			// Re-exports from another module are not analyzed.
			continue
		}

		if stmt.HasProp(node.PropDefault) {
			if inst, ok := b.bindDefault(stmt); ok {
				out = append(out, inst)
			}

			continue
		}

		out = append(out, b.bindNamed(stmt)...)
	}

	return out
}

func (b *ExportBinder) bindNamed(stmt *node.Node) []ExportedInstance {
	decl := stmt.Field(node.FieldDeclaration)

	switch {
	case decl.Is(node.KindFunctionDeclaration):
		if !IsFunctionComponent(decl) {
			return nil
		}

		name := FunctionName(decl)

		return []ExportedInstance{{
			ExportedName: name, LocalName: name, Kind: NamedDirect,
			Component: decl, Export: stmt, Value: decl,
		}}
	case decl.Is(node.KindLexicalDeclaration, node.KindVariableDeclaration):
		var out []ExportedInstance

		for _, declarator := range decl.ChildrenOf(node.KindVariableDeclarator) {
			name := declarator.Field(node.FieldName)
			value := declarator.Field(node.FieldValue)

			if !name.Is(node.KindIdentifier) || !IsComponentName(name.Token) || !b.policy.isComponent(value) {
				continue
			}

			out = append(out, ExportedInstance{
				ExportedName: name.Token, LocalName: name.Token, Kind: NamedDirect,
				Component: Unparen(value), Export: stmt, Value: declarator,
			})
		}

		return out
	case decl == nil:
		return b.bindSpecifiers(stmt)
	default:
		return nil
	}
}

func (b *ExportBinder) bindSpecifiers(stmt *node.Node) []ExportedInstance {
	clause := firstOfKind(stmt, node.KindExportClause)
	if clause == nil {
		return nil
	}

	var out []ExportedInstance

	for _, spec := range clause.ChildrenOf(node.KindExportSpecifier) {
		local := spec.Field(node.FieldName)
		if local == nil {
			continue
		}

		exported := local
		if alias := spec.Field(node.FieldAlias); alias != nil {
			exported = alias
		}

		candidate, ok := b.candidates.Get(local.Token)
		if !ok || candidate.IsWrapped || !candidate.IsComponent {
			continue
		}

		out = append(out, ExportedInstance{
			ExportedName: exported.Token, LocalName: local.Token, Kind: NamedReference,
			Component: candidate.Node, Export: stmt, Value: spec,
		})
	}

	return out
}

func (b *ExportBinder) bindDefault(stmt *node.Node) (ExportedInstance, bool) {
	inst := ExportedInstance{ExportedName: DefaultExportName, Kind: DefaultDirect, Export: stmt}

	if decl := stmt.Field(node.FieldDeclaration); decl != nil {
		if !decl.Is(node.KindFunctionDeclaration) || !IsFunctionComponent(decl) {
			return inst, false
		}

		if name := FunctionName(decl); name != "" {
			inst.ExportedName = name
			inst.LocalName = name
		}

		inst.Component = decl
		inst.Value = decl

		return inst, true
	}

	value := stmt.Field(node.FieldValue)
	if value == nil {
		return inst, false
	}

	inst.Value = value
	expr := Unparen(value)

	switch {
	case IsFunction(expr):
		if !IsFunctionComponent(expr) {
			return inst, false
		}

		if name := FunctionName(expr); name != "" && !expr.Is(node.KindArrowFunction) {
			inst.ExportedName = name
			inst.LocalName = name
		}

		inst.Component = expr

		return inst, true
	case expr.Is(node.KindIdentifier):
		candidate, ok := b.candidates.Get(expr.Token)
		if !ok || candidate.IsWrapped || !candidate.IsComponent {
			return inst, false
		}

		inst.ExportedName = expr.Token
		inst.LocalName = expr.Token
		inst.Kind = DefaultReference
		inst.Component = candidate.Node

		return inst, true
	case b.policy.wrapped(value):
		return inst, false
	case b.policy.hoc && IsHOCCall(expr):
		inst.Component = expr

		return inst, true
	default:
		return inst, false
	}
}
