package rules

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"github.com/Sumatoshi-tech/boundarylint/pkg/textedit"
	"github.com/Sumatoshi-tech/boundarylint/pkg/uast/pkg/node"
)

// WrappedPrefix prefixes the local binding introduced for named exports.
const WrappedPrefix = "Wrapped"

// fixer synthesizes the edits that route an export through the wrapper.
// Every edit refers to offsets in the original source, so the edits of
// several fixes compose against the same snapshot.
type fixer struct {
	src     []byte
	root    *node.Node
	opts    Options
	imports *ImportResolver

	// reported holds the declarators of every instance being fixed in this
	// pass; a declaration is unexported only when all of its declarators are.
	reported map[*node.Node]bool
	// taken holds every name in the file plus the bindings already generated.
	taken map[string]bool
}

// report marks the instances about to be fixed.
func (f *fixer) report(insts []ExportedInstance) {
	f.reported = make(map[*node.Node]bool, len(insts))

	for _, inst := range insts {
		f.reported[inst.Value] = true
	}
}

// binding returns an unused top-level name for the wrapped export of name.
// Characters that cannot appear in an identifier become underscores.
func (f *fixer) binding(name string) string {
	if f.taken == nil {
		f.taken = make(map[string]bool)

		f.root.VisitPreOrder(func(n *node.Node) {
			if len(n.Children) == 0 && n.Token != "" {
				f.taken[n.Token] = true
			}
		})
	}

	base := WrappedPrefix + strings.Map(func(r rune) rune {
		if r == '_' || r == '$' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}

		return '_'
	}, name)

	candidate := base
	for n := 2; f.taken[candidate]; n++ {
		candidate = base + strconv.Itoa(n)
	}

	f.taken[candidate] = true

	return candidate
}

// Fix returns the import edits followed by the export rewrite for inst.
func (f *fixer) Fix(inst ExportedInstance) []textedit.Edit {
	exportEdits := f.exportEdits(inst)
	if len(exportEdits) == 0 {
		return nil
	}

	return append(f.importEdits(), exportEdits...)
}

// callee is the name the fix calls the wrapper by: an existing named import
// (possibly aliased) or the configured name.
func (f *fixer) callee() string {
	if local, ok := f.imports.WrapperLocal(); ok {
		return local
	}

	return f.opts.WrapperFunction
}

// wrap renders callee(arg), with a typeof cast back to castName when the
// component declares type parameters.
func (f *fixer) wrap(inst ExportedInstance, arg, castName string) string {
	out := fmt.Sprintf("%s(%s)", f.callee(), arg)

	if castName != "" && isGeneric(inst.Component) {
		out += " as typeof " + castName
	}

	return out
}

func isGeneric(fn *node.Node) bool {
	return IsFunction(fn) && fn.Field(node.FieldTypeParameters) != nil
}

func (f *fixer) exportEdits(inst ExportedInstance) []textedit.Edit {
	stmt := inst.Export

	switch inst.Kind {
	case DefaultDirect:
		if inst.LocalName != "" && inst.Value.Is(node.KindFunctionDeclaration, node.KindFunctionExpression, node.KindFunction) {
			// export default function App() {} -> function App() {} + export default wrapper(App);
			return []textedit.Edit{
				textedit.Delete(stmt.Start(), inst.Value.Start()),
				textedit.Insert(stmt.End(), "\n\nexport default "+f.wrap(inst, inst.LocalName, inst.LocalName)+";"),
			}
		}

		return []textedit.Edit{
			textedit.Replace(inst.Value.Start(), inst.Value.End(), f.wrap(inst, inst.Value.Text(f.src), "")),
		}
	case DefaultReference:
		return []textedit.Edit{
			textedit.Replace(inst.Value.Start(), inst.Value.End(), f.wrap(inst, inst.LocalName, inst.LocalName)),
		}
	case NamedDirect:
		decl := stmt.Field(node.FieldDeclaration)
		if decl == nil {
			return nil
		}

		wrapped := f.binding(inst.LocalName)
		reexport := fmt.Sprintf("const %s = %s;\nexport { %s as %s };",
			wrapped, f.wrap(inst, inst.LocalName, inst.LocalName), wrapped, inst.LocalName)

		if decl.Is(node.KindLexicalDeclaration, node.KindVariableDeclaration) && !f.allReported(decl) {
			return f.moveDeclarator(stmt, decl, inst.Value, reexport)
		}

		return []textedit.Edit{
			textedit.Delete(stmt.Start(), decl.Start()),
			textedit.Insert(stmt.End(), "\n\n"+reexport),
		}
	case NamedReference:
		exported := inst.Value.Field(node.FieldAlias)
		if exported == nil {
			exported = inst.Value.Field(node.FieldName)
		}

		wrapped := f.binding(inst.ExportedName)

		return []textedit.Edit{
			textedit.Insert(stmt.Start(), fmt.Sprintf("const %s = %s;\n",
				wrapped, f.wrap(inst, inst.LocalName, inst.LocalName))),
			textedit.Replace(inst.Value.Start(), inst.Value.End(), wrapped+" as "+exported.Text(f.src)),
		}
	default:
		return nil
	}
}

func (f *fixer) allReported(decl *node.Node) bool {
	for _, declarator := range decl.ChildrenOf(node.KindVariableDeclarator) {
		if !f.reported[declarator] {
			return false
		}
	}

	return true
}

// moveDeclarator takes one declarator out of an exported declaration that
// keeps other exports, redeclaring it unexported after the statement. The
// comma goes with it: the one after it, or the one before the last.
func (f *fixer) moveDeclarator(stmt, decl, declarator *node.Node, reexport string) []textedit.Edit {
	declarators := decl.ChildrenOf(node.KindVariableDeclarator)

	idx := slices.Index(declarators, declarator)
	if idx < 0 {
		return nil
	}

	var remove textedit.Edit

	switch {
	case idx+1 < len(declarators):
		remove = textedit.Delete(declarator.Start(), declarators[idx+1].Start())
	case idx > 0:
		remove = textedit.Delete(declarators[idx-1].End(), declarator.End())
	default:
		return nil
	}

	return []textedit.Edit{
		remove,
		textedit.Insert(stmt.End(), fmt.Sprintf("\n\n%s %s;\n\n%s", declarationKeyword(decl), declarator.Text(f.src), reexport)),
	}
}

func declarationKeyword(decl *node.Node) string {
	switch {
	case decl.HasProp(node.PropConst):
		return "const"
	case decl.HasProp(node.PropLet):
		return "let"
	default:
		return "var"
	}
}

// importEdits makes the wrapper importable by name. It returns nothing when a
// named import of the wrapper exists, so repeated fixes never duplicate the
// specifier.
func (f *fixer) importEdits() []textedit.Edit {
	if _, ok := f.imports.WrapperLocal(); ok {
		return nil
	}

	name := f.opts.WrapperFunction

	for _, stmt := range f.imports.Matching() {
		if edit, ok := augmentImport(stmt, name); ok {
			return []textedit.Edit{edit}
		}
	}

	line := fmt.Sprintf("import { %s } from %s;", name, f.quote(f.opts.ImportSource))

	if all := f.imports.Imports(); len(all) > 0 {
		return []textedit.Edit{textedit.Insert(all[0].Start(), line+"\n")}
	}

	return []textedit.Edit{f.prologueInsert(line)}
}

// augmentImport adds name to an existing value import from the source.
// Namespace, type-only and side-effect imports cannot take a named specifier.
func augmentImport(stmt *node.Node, name string) (textedit.Edit, bool) {
	if stmt.HasProp(node.PropTypeOnly) {
		return textedit.Edit{}, false
	}

	clause := firstOfKind(stmt, node.KindImportClause)
	if clause == nil || firstOfKind(clause, node.KindNamespaceImport) != nil {
		return textedit.Edit{}, false
	}

	if named := firstOfKind(clause, node.KindNamedImports); named != nil {
		specs := named.ChildrenOf(node.KindImportSpecifier)
		if len(specs) == 0 {
			return textedit.Insert(named.Start()+1, " "+name+" "), true
		}

		return textedit.Insert(specs[len(specs)-1].End(), ", "+name), true
	}

	if def := firstOfKind(clause, node.KindIdentifier); def != nil {
		return textedit.Insert(def.End(), ", { "+name+" }"), true
	}

	return textedit.Edit{}, false
}

// prologueInsert places a new import after any hash-bang line and directive
// prologue, or before the first statement.
func (f *fixer) prologueInsert(line string) textedit.Edit {
	var last *node.Node

	for _, child := range f.root.Children {
		switch {
		case child.Is(node.KindComment):
			continue
		case child.Is(node.KindHashBang) || isDirective(child):
			last = child

			continue
		}

		if last == nil {
			return textedit.Insert(child.Start(), line+"\n")
		}

		break
	}

	if last == nil {
		return textedit.Insert(0, line+"\n")
	}

	return textedit.Insert(last.End(), "\n"+line)
}

func isDirective(stmt *node.Node) bool {
	return stmt.Is(node.KindExpressionStatement) && stmt.FirstExpr().Is(node.KindString)
}

// quote renders source in the quote style of the first import, defaulting to
// single quotes.
func (f *fixer) quote(source string) string {
	q := "'"

	for _, stmt := range f.imports.Imports() {
		if s := stmt.Field(node.FieldSource); s != nil && s.Prop(node.PropQuote) != "" {
			q = s.Prop(node.PropQuote)

			break
		}
	}

	return q + source + q
}
