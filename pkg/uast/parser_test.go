package uast

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/boundarylint/pkg/uast/pkg/node"
)

func TestDetectLanguage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		filename string
		want     string
	}{
		{"App.tsx", LangTSX},
		{"App.jsx", LangTSX},
		{"util.ts", LangTypeScript},
		{"util.MTS", LangTypeScript},
		{"index.js", LangJavaScript},
		{"index.cjs", LangJavaScript},
		{"README.md", ""},
		{"main.go", ""},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, DetectLanguage(tt.filename, nil))
		})
	}
}

func TestParser_ParseUnsupported(t *testing.T) {
	t.Parallel()

	p := NewParser()

	_, err := p.Parse(context.Background(), "notes.txt", []byte("hello"))
	require.ErrorIs(t, err, ErrUnsupportedLanguage)
	assert.False(t, p.IsSupported("notes.txt"))
	assert.True(t, p.IsSupported("App.tsx"))
}

func TestParser_LowersFieldsAndProps(t *testing.T) {
	t.Parallel()

	src := []byte(`import { Boundary as B } from "react-suspense-boundary";
export default function App<T>() {
  return ok && <B><div/></B>;
}
`)

	file, err := NewParser().Parse(context.Background(), "App.tsx", src)
	require.NoError(t, err)
	require.NotNil(t, file.Root)

	assert.Equal(t, node.Type(node.KindProgram), file.Root.Type)
	assert.Zero(t, file.Errors)
	assert.True(t, file.HasMarkup())

	imports := file.Root.ChildrenOf(node.KindImport)
	require.Len(t, imports, 1)

	source := imports[0].Field(node.FieldSource)
	require.NotNil(t, source)
	assert.Equal(t, "react-suspense-boundary", source.Token)
	assert.Equal(t, `"`, source.Prop(node.PropQuote))

	exports := file.Root.ChildrenOf(node.KindExport)
	require.Len(t, exports, 1)
	assert.True(t, exports[0].HasProp(node.PropDefault))

	decl := exports[0].Field(node.FieldDeclaration)
	require.NotNil(t, decl)
	assert.True(t, decl.Is(node.KindFunctionDeclaration))
	assert.Equal(t, "App", decl.Field(node.FieldName).Token)
	assert.NotNil(t, decl.Field(node.FieldTypeParameters))

	ret := decl.Field(node.FieldBody).ChildrenOf(node.KindReturn)
	require.Len(t, ret, 1)

	binary := ret[0].FirstExpr()
	require.True(t, binary.Is(node.KindBinary))
	assert.Equal(t, "&&", binary.Prop(node.FieldOperator))
	assert.True(t, binary.Field(node.FieldRight).Is(node.KindJSXElement))
}

func TestParser_PositionsAreOneBased(t *testing.T) {
	t.Parallel()

	src := []byte("const a = 1;\nconst B = () => <div/>;\n")

	file, err := NewParser().Parse(context.Background(), "x.jsx", src)
	require.NoError(t, err)

	decls := file.Root.ChildrenOf(node.KindLexicalDeclaration)
	require.Len(t, decls, 2)
	assert.True(t, decls[1].HasProp(node.PropConst))
	assert.Equal(t, uint(2), decls[1].Pos.StartLine)
	assert.Equal(t, uint(1), decls[1].Pos.StartCol)
	assert.Equal(t, "const B = () => <div/>;", decls[1].Text(src))
}

func TestParser_NoMarkup(t *testing.T) {
	t.Parallel()

	file, err := NewParser().Parse(context.Background(), "util.ts", []byte("export const x = '<div>';\n"))
	require.NoError(t, err)
	assert.False(t, file.HasMarkup())
}

func TestParser_ConcurrentUse(t *testing.T) {
	t.Parallel()

	p := NewParser()
	done := make(chan error, 8)

	for range 8 {
		go func() {
			_, err := p.Parse(context.Background(), "App.tsx", []byte("export const A = () => <div/>;"))
			done <- err
		}()
	}

	for range 8 {
		require.NoError(t, <-done)
	}
}
