package rules

import (
	"slices"

	"github.com/Sumatoshi-tech/boundarylint/pkg/uast/pkg/node"
)

// Role is what a local import binding stands for.
type Role int

// Binding roles.
const (
	RoleBoundaryElement Role = iota + 1
	RoleWrapperFunction
)

// Binding is one local name bound from the configured import source.
type Binding struct {
	Local string
	// Imported is the exported name, or "" for a default import.
	Imported string
	Role     Role
}

// ImportResolver tracks local names bound to the boundary element or the
// wrapper function by imports from one module.
type ImportResolver struct {
	source        string
	boundaryNames []string
	wrapper       string
	defaultRole   Role

	bindings map[string]Binding
	// imports holds every import statement in source order.
	imports []*node.Node
	// matching holds the import statements whose source is the configured one.
	matching []*node.Node
}

// NewImportResolver creates a resolver. Named imports bind a role when their
// imported name is one of boundaryNames or equals wrapper; default imports
// from source bind defaultRole unconditionally.
func NewImportResolver(source string, boundaryNames []string, wrapper string, defaultRole Role) *ImportResolver {
	return &ImportResolver{
		source:        source,
		boundaryNames: boundaryNames,
		wrapper:       wrapper,
		defaultRole:   defaultRole,
		bindings:      make(map[string]Binding),
	}
}

// Add processes one import statement.
func (r *ImportResolver) Add(stmt *node.Node) {
	r.imports = append(r.imports, stmt)

	source := stmt.Field(node.FieldSource)
	if source == nil || source.Token != r.source {
		return
	}

	r.matching = append(r.matching, stmt)

	clause := firstOfKind(stmt, node.KindImportClause)
	if clause == nil {
		return
	}

	for _, part := range clause.Children {
		switch {
		case part.Is(node.KindIdentifier):
			r.bindings[part.Token] = Binding{Local: part.Token, Role: r.defaultRole}
		case part.Is(node.KindNamedImports):
			for _, spec := range part.ChildrenOf(node.KindImportSpecifier) {
				r.addSpecifier(spec)
			}
		}
	}
}

func (r *ImportResolver) addSpecifier(spec *node.Node) {
	imported := spec.Field(node.FieldName)
	if imported == nil {
		return
	}

	local := imported
	if alias := spec.Field(node.FieldAlias); alias != nil {
		local = alias
	}

	var role Role

	switch {
	case r.wrapper != "" && imported.Token == r.wrapper:
		role = RoleWrapperFunction
	case slices.Contains(r.boundaryNames, imported.Token):
		role = RoleBoundaryElement
	default:
		return
	}

	r.bindings[local.Token] = Binding{Local: local.Token, Imported: imported.Token, Role: role}
}

// Has reports whether local is bound to role.
func (r *ImportResolver) Has(local string, role Role) bool {
	b, ok := r.bindings[local]

	return ok && b.Role == role
}

// IsBoundary reports whether name is a configured boundary or a local alias of one.
func (r *ImportResolver) IsBoundary(name string) bool {
	return name != "" && (slices.Contains(r.boundaryNames, name) || r.Has(name, RoleBoundaryElement))
}

// IsWrapper reports whether name is the wrapper function or a local alias of it.
func (r *ImportResolver) IsWrapper(name string) bool {
	return name != "" && (name == r.wrapper || r.Has(name, RoleWrapperFunction))
}

// WrapperLocal returns the local name to call the wrapper by when it is
// imported by name, preferring an unaliased import.
func (r *ImportResolver) WrapperLocal() (string, bool) {
	var alias string

	for _, b := range r.bindings {
		if b.Role != RoleWrapperFunction || b.Imported == "" {
			continue
		}

		if b.Local == b.Imported {
			return b.Local, true
		}

		if alias == "" || b.Local < alias {
			alias = b.Local
		}
	}

	return alias, alias != ""
}

// Imports returns all import statements seen.
func (r *ImportResolver) Imports() []*node.Node {
	return r.imports
}

// Matching returns the import statements from the configured source.
func (r *ImportResolver) Matching() []*node.Node {
	return r.matching
}

func firstOfKind(n *node.Node, kind string) *node.Node {
	for _, child := range n.Children {
		if child.Is(kind) {
			return child
		}
	}

	return nil
}
