// Package uast parses JavaScript, TypeScript and TSX sources with tree-sitter
// and lowers the concrete syntax tree into the node model used by the rules.
package uast

import (
	"context"
	"errors"
	"fmt"
	"sync"

	sitter "github.com/alexaandru/go-tree-sitter-bare"

	"github.com/Sumatoshi-tech/boundarylint/pkg/uast/pkg/node"
)

// Sentinel errors for parser operations.
var (
	ErrUnsupportedLanguage = errors.New("unsupported language")
	errNoRootNode          = errors.New("parser: no root node")
	errPoolType            = errors.New("parser: unexpected pool entry type")
)

// keywordProps are anonymous tokens recorded as flags on their parent.
var keywordProps = map[string]bool{
	node.PropDefault:  true,
	node.PropConst:    true,
	node.PropLet:      true,
	node.PropVar:      true,
	node.PropTypeOnly: true,
	node.PropAsync:    true,
}

// File is one parsed source file.
type File struct {
	Name     string
	Language string
	Source   []byte
	Root     *node.Node
	// Errors counts ERROR nodes produced by tree-sitter error recovery.
	Errors int
}

// HasMarkup reports whether the tree contains any JSX element or fragment.
func (f *File) HasMarkup() bool {
	if f == nil {
		return false
	}

	return f.Root.Any(func(n *node.Node) bool {
		return n.Is(node.KindJSXElement, node.KindJSXSelfClosing, node.KindJSXFragment)
	})
}

// Parser parses files into lowered trees. It is safe for concurrent use:
// tree-sitter parsers are pooled per grammar.
type Parser struct {
	pools sync.Map // language name -> *sync.Pool
}

// NewParser creates a new Parser.
func NewParser() *Parser {
	return &Parser{}
}

// IsSupported returns true if the given filename maps to a grammar.
func (parser *Parser) IsSupported(filename string) bool {
	return DetectLanguage(filename, nil) != ""
}

// Parse parses content and returns the lowered tree.
func (parser *Parser) Parse(ctx context.Context, filename string, content []byte) (*File, error) {
	lang := DetectLanguage(filename, content)
	if lang == "" {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLanguage, filename)
	}

	return parser.ParseLanguage(ctx, lang, filename, content)
}

// ParseLanguage parses content with an explicit grammar.
func (parser *Parser) ParseLanguage(ctx context.Context, lang, filename string, content []byte) (*File, error) {
	pool, err := parser.pool(lang)
	if err != nil {
		return nil, err
	}

	tsParser, ok := pool.Get().(*sitter.Parser)
	if !ok {
		return nil, errPoolType
	}

	defer pool.Put(tsParser)

	tree, err := tsParser.ParseString(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filename, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.IsNull() {
		return nil, errNoRootNode
	}

	file := &File{Name: filename, Language: lang, Source: content}
	file.Root = lowerNode(root, content, &file.Errors)

	return file, nil
}

func (parser *Parser) pool(lang string) (*sync.Pool, error) {
	if cached, ok := parser.pools.Load(lang); ok {
		pool, castOK := cached.(*sync.Pool)
		if castOK {
			return pool, nil
		}
	}

	tsLang := GetLanguage(lang)
	if tsLang == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLanguage, lang)
	}

	pool := &sync.Pool{
		New: func() any {
			tsParser := sitter.NewParser()
			tsParser.SetLanguage(tsLang)

			return tsParser
		},
	}

	actual, _ := parser.pools.LoadOrStore(lang, pool)

	stored, ok := actual.(*sync.Pool)
	if !ok {
		return nil, errPoolType
	}

	return stored, nil
}

// lowerNode converts a tree-sitter node and its named descendants.
func lowerNode(tsNode sitter.Node, src []byte, errorCount *int) *node.Node {
	start := tsNode.StartPoint()
	end := tsNode.EndPoint()

	lowered := &node.Node{
		Type: node.Type(tsNode.Type()),
		Pos: node.NewPositions(
			start.Row+1,
			start.Column+1,
			tsNode.StartByte(),
			end.Row+1,
			end.Column+1,
			tsNode.EndByte(),
		),
	}

	if lowered.Is(node.KindError) {
		*errorCount++
	}

	childCount := tsNode.NamedChildCount()
	if childCount == 0 {
		lowered.Token = lowered.Text(src)
	}

	for idx := range childCount {
		lowered.AddChild(lowerNode(tsNode.NamedChild(idx), src, errorCount))
	}

	if lowered.Is(node.KindString) {
		setStringToken(lowered, src)
	}

	lowerFields(tsNode, lowered)

	for idx := range tsNode.ChildCount() {
		child := tsNode.Child(idx)
		if !child.IsNamed() && keywordProps[child.Type()] {
			lowered.SetProp(child.Type(), "true")
		}
	}

	return lowered
}

// lowerFields resolves grammar fields against the already lowered children.
// Fields that point at anonymous tokens (binary operators) become props.
func lowerFields(tsNode sitter.Node, lowered *node.Node) {
	for _, field := range node.FieldNames {
		fieldNode := tsNode.ChildByFieldName(field)
		if fieldNode.IsNull() {
			continue
		}

		if !fieldNode.IsNamed() {
			lowered.SetProp(field, fieldNode.Type())

			continue
		}

		startByte := int(fieldNode.StartByte())
		endByte := int(fieldNode.EndByte())
		kind := fieldNode.Type()

		for _, child := range lowered.Children {
			if child.Start() == startByte && child.End() == endByte && string(child.Type) == kind {
				lowered.SetField(field, child)

				break
			}
		}
	}
}

func setStringToken(lowered *node.Node, src []byte) {
	text := lowered.Text(src)
	if len(text) < 2 { //nolint:mnd // opening and closing quote
		lowered.Token = ""

		return
	}

	lowered.SetProp(node.PropQuote, text[:1])
	lowered.Token = text[1 : len(text)-1]
}
