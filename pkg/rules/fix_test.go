package rules_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Sumatoshi-tech/boundarylint/pkg/rules"
)

func TestRequireWithBoundary_Fix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		opts rules.Options
		src  string
		want string
	}{
		{
			name: "default function declaration",
			src:  "export default function App(){ return <div/>; }\n",
			want: "import { withBoundary } from 'react-suspense-boundary';\n" +
				"function App(){ return <div/>; }\n\nexport default withBoundary(App);\n",
		},
		{
			name: "named function declaration",
			src:  "export function Foo() {\n  return <div />;\n}\n",
			want: "import { withBoundary } from 'react-suspense-boundary';\n" +
				"function Foo() {\n  return <div />;\n}\n\n" +
				"const WrappedFoo = withBoundary(Foo);\nexport { WrappedFoo as Foo };\n",
		},
		{
			name: "anonymous default arrow with default import augmented",
			src:  "import B from 'react-suspense-boundary';\nexport default () => <div/>;\n",
			want: "import B, { withBoundary } from 'react-suspense-boundary';\n" +
				"export default withBoundary(() => <div/>);\n",
		},
		{
			name: "specifier export with existing named import",
			src: "import { Boundary } from \"react-suspense-boundary\";\n\n" +
				"const Card = () => <div />;\n\nexport { Card as Tile };\n",
			want: "import { Boundary, withBoundary } from \"react-suspense-boundary\";\n\n" +
				"const Card = () => <div />;\n\n" +
				"const WrappedTile = withBoundary(Card);\nexport { WrappedTile as Tile };\n",
		},
		{
			name: "default reference",
			src:  "import { withBoundary } from 'react-suspense-boundary';\nconst Page = () => <div />;\nexport default Page;\n",
			want: "import { withBoundary } from 'react-suspense-boundary';\nconst Page = () => <div />;\nexport default withBoundary(Page);\n",
		},
		{
			name: "existing alias is reused",
			src:  "import { withBoundary as wb } from 'react-suspense-boundary';\nexport default function App() { return <div/>; }\n",
			want: "import { withBoundary as wb } from 'react-suspense-boundary';\n" +
				"function App() { return <div/>; }\n\nexport default wb(App);\n",
		},
		{
			name: "empty braces are filled",
			src:  "import {} from 'react-suspense-boundary';\nexport default () => <div/>;\n",
			want: "import { withBoundary } from 'react-suspense-boundary';\nexport default withBoundary(() => <div/>);\n",
		},
		{
			name: "namespace import gets a sibling import",
			src:  "import * as RSB from 'react-suspense-boundary';\nexport default () => <div/>;\n",
			want: "import { withBoundary } from 'react-suspense-boundary';\n" +
				"import * as RSB from 'react-suspense-boundary';\nexport default withBoundary(() => <div/>);\n",
		},
		{
			name: "quote style follows the first import",
			src:  "import React from \"react\";\nexport default () => <div/>;\n",
			want: "import { withBoundary } from \"react-suspense-boundary\";\n" +
				"import React from \"react\";\nexport default withBoundary(() => <div/>);\n",
		},
		{
			name: "directive prologue stays first",
			src:  "'use client';\n\nexport const Panel = () => <section />;\n",
			want: "'use client';\nimport { withBoundary } from 'react-suspense-boundary';\n\n" +
				"const Panel = () => <section />;\n\n" +
				"const WrappedPanel = withBoundary(Panel);\nexport { WrappedPanel as Panel };\n",
		},
		{
			name: "forwardRef is wrapped in place",
			src:  "import { forwardRef } from 'react';\nexport default forwardRef((props, ref) => <input ref={ref} />);\n",
			want: "import { withBoundary } from 'react-suspense-boundary';\n" +
				"import { forwardRef } from 'react';\n" +
				"export default withBoundary(forwardRef((props, ref) => <input ref={ref} />));\n",
		},
		{
			name: "custom wrapper and source",
			opts: rules.Options{WrapperFunction: "guard", ImportSource: "@app/boundary"},
			src:  "export default () => <div/>;\n",
			want: "import { guard } from '@app/boundary';\nexport default guard(() => <div/>);\n",
		},
		{
			name: "two declarators in one statement",
			src:  "export const A = () => <div/>, B = () => <span/>;\n",
			want: "import { withBoundary } from 'react-suspense-boundary';\n" +
				"const A = () => <div/>, B = () => <span/>;\n\n" +
				"const WrappedA = withBoundary(A);\nexport { WrappedA as A };\n\n" +
				"const WrappedB = withBoundary(B);\nexport { WrappedB as B };\n",
		},
		{
			name: "other declarators keep their export",
			src:  "export const Foo = () => <div/>, helper = 3;\n",
			want: "import { withBoundary } from 'react-suspense-boundary';\n" +
				"export const helper = 3;\n\n" +
				"const Foo = () => <div/>;\n\n" +
				"const WrappedFoo = withBoundary(Foo);\nexport { WrappedFoo as Foo };\n",
		},
		{
			name: "lowercase sibling is not moved",
			src:  "export let bar = () => <span/>, Foo = () => <div/>;\n",
			want: "import { withBoundary } from 'react-suspense-boundary';\n" +
				"export let bar = () => <span/>;\n\n" +
				"let Foo = () => <div/>;\n\n" +
				"const WrappedFoo = withBoundary(Foo);\nexport { WrappedFoo as Foo };\n",
		},
		{
			name: "string export name",
			src:  "const Foo = () => <div/>;\nexport { Foo as \"my-foo\" };\n",
			want: "import { withBoundary } from 'react-suspense-boundary';\n" +
				"const Foo = () => <div/>;\n" +
				"const Wrappedmy_foo = withBoundary(Foo);\nexport { Wrappedmy_foo as \"my-foo\" };\n",
		},
		{
			name: "generated name avoids existing bindings",
			src:  "const WrappedFoo = 1;\nexport function Foo() { return <div/>; }\n",
			want: "import { withBoundary } from 'react-suspense-boundary';\n" +
				"const WrappedFoo = 1;\nfunction Foo() { return <div/>; }\n\n" +
				"const WrappedFoo2 = withBoundary(Foo);\nexport { WrappedFoo2 as Foo };\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, fixAll(t, rules.NewRequireWithBoundary(tt.opts), tt.src))
		})
	}
}

func TestRequireWithBoundary_FixGenerics(t *testing.T) {
	t.Parallel()

	src := `export default function G<T extends object>(props: { value: T }) {
  return <div>{String(props.value)}</div>;
}
`
	out := fixAll(t, rules.NewRequireWithBoundary(rules.Options{}), src)
	assert.Contains(t, out, "export default withBoundary(G) as typeof G;")

	named := "export function List<T>(props: { items: T[] }) { return <ul />; }\n"
	out = fixAll(t, rules.NewRequireWithBoundary(rules.Options{}), named)
	assert.Contains(t, out, "const WrappedList = withBoundary(List) as typeof List;")
}

func TestRequireWithBoundary_FixRoundTrip(t *testing.T) {
	t.Parallel()

	sources := []string{
		"export default function App(){ return <div/>; }\n",
		"export function Foo() { return <div />; }\nexport const Bar = () => <span />;\nexport default Foo;\n",
		"import { Boundary } from 'react-suspense-boundary';\nconst Card = () => <Boundary />;\nexport { Card, Card as Tile };\n",
		"#!/usr/bin/env node\nexport const Cli = () => <div />;\n",
		"import type { Props } from 'react-suspense-boundary';\nexport const Typed = (p: Props) => <div />;\n",
		"import React, { memo } from 'react';\nexport const M = memo(() => <div />);\nexport default React.forwardRef(() => <i />);\n",
		"export default Later;\nfunction Later() { return <div />; }\n",
	}

	rule := rules.NewRequireWithBoundary(rules.Options{})

	for _, src := range sources {
		out := fixAll(t, rule, src)

		assert.Empty(t, analyze(t, rule, out), "fixed output still reports:\n%s", out)
		assert.Equal(t, 1, importMentions(out, "withBoundary"), "wrapper imported once:\n%s", out)
	}
}

func TestRequireWithBoundary_FixMixedDeclarationKeepsExports(t *testing.T) {
	t.Parallel()

	rule := rules.NewRequireWithBoundary(rules.Options{})
	out := fixAll(t, rule, "export const helper = 3, Foo = () => <div/>, Bar = () => <span/>;\n")

	assert.Contains(t, out, "export const helper = 3;\n")
	assert.Contains(t, out, "const Foo = () => <div/>;\n")
	assert.Contains(t, out, "const Bar = () => <span/>;\n")
	assert.Contains(t, out, "export { WrappedFoo as Foo };")
	assert.Contains(t, out, "export { WrappedBar as Bar };")
	assert.Empty(t, analyze(t, rule, out), "fixed output still reports:\n%s", out)
}

func TestRequireWithBoundary_FixIsIdempotent(t *testing.T) {
	t.Parallel()

	rule := rules.NewRequireWithBoundary(rules.Options{})
	once := fixAll(t, rule, "export const A = () => <div />;\n")

	assert.Equal(t, once, fixAll(t, rule, once))
}

func TestRequireWithBoundary_ExistingImportNotDuplicated(t *testing.T) {
	t.Parallel()

	src := "import { withBoundary } from 'react-suspense-boundary';\n" +
		"export const A = () => <div />;\nexport const B = () => <div />;\n"

	diags := analyze(t, rules.NewRequireWithBoundary(rules.Options{}), src)

	for _, d := range diags {
		for _, edit := range d.Fix {
			assert.NotContains(t, edit.Text, "import", "no import edit expected")
		}
	}

	assert.Equal(t, 1, importMentions(fixAll(t, rules.NewRequireWithBoundary(rules.Options{}), src), "withBoundary"))
}

func TestRequireWithBoundary_HashBangPlacement(t *testing.T) {
	t.Parallel()

	out := fixAll(t, rules.NewRequireWithBoundary(rules.Options{}), "#!/usr/bin/env node\nexport default () => <div />;\n")

	assert.Equal(t, "#!/usr/bin/env node\nimport { withBoundary } from 'react-suspense-boundary';\n"+
		"export default withBoundary(() => <div />);\n", out)
}
