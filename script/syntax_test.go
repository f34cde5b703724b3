package script

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRoundTrip(t *testing.T) {
	for _, src := range []string{
		"Nil",
		"Nil()",
		"Cons(_1, List[_1])",
		"A(a=_1, b=_1)",
		"M(_1, z=string, a=_1)",
		"List[int].Cons(1, List[int].Nil())",
		"Struct[int, float64].A(b=2, a=1.5)",
		`Box.Box("text", 'r', -3)`,
		"Cons(head, _)",
	} {
		t.Run(src, func(t *testing.T) {
			n, err := parse(src)
			require.NoError(t, err)
			assert.Equal(t, src, n.String())
		})
	}
}

func TestParseLiterals(t *testing.T) {
	cases := map[string]any{
		"42":     42,
		"0x10":   16,
		"-7":     -7,
		"2.5":    2.5,
		"-0.5":   -0.5,
		`"a\tb"`: "a\tb",
		"`raw`":  "raw",
		"'x'":    'x',
		"'\\n'":  '\n',
		"1e3":    1000.0,
	}
	for src, expected := range cases {
		t.Run(src, func(t *testing.T) {
			n, err := parse(src)
			require.NoError(t, err)
			lit, ok := n.(*litNode)
			require.True(t, ok, "%s parsed as %T", src, n)
			assert.Equal(t, expected, lit.value)
		})
	}
}

func TestParseCallShape(t *testing.T) {
	n, err := parse("Struct[int, float64].A(1, b=List[int].Nil())")
	require.NoError(t, err)
	call, ok := n.(*callNode)
	require.True(t, ok)

	sel, ok := call.fn.(*selectorNode)
	require.True(t, ok)
	assert.Equal(t, "A", sel.sel)
	index, ok := sel.base.(*indexNode)
	require.True(t, ok)
	assert.Len(t, index.args, 2)

	require.Len(t, call.args, 1)
	require.Len(t, call.kwargs, 1)
	assert.Equal(t, "b", call.kwargs[0].key)
	assert.Equal(t, "List[int].Nil()", call.kwargs[0].value.String())
}

func TestParseErrors(t *testing.T) {
	cases := map[string]string{
		"A(a=1, 2)": "positional argument after keyword argument",
		"A(1":       "expected ), found end of input",
		"List[]":    "empty type argument list",
		"A(1) B":    `unexpected "B" after expression`,
		"-A":        "'-' only applies to number literals",
		"A.":        "expected IDENT, found end of input",
		"A(x + 1)":  "expected ), found '+'",
		`"unclosed`: "string literal not terminated",
		"":          "unexpected end of input",
	}
	for src, contains := range cases {
		t.Run(src, func(t *testing.T) {
			_, err := parse(src)
			assert.ErrorContains(t, err, contains)
		})
	}
}
