package cifdict_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cifdict "github.com/reoring/cifdict"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		v    cifdict.Value
		want cifdict.ValueClass
	}{
		{cifdict.Value{Text: "."}, cifdict.ValueInapplicable},
		{cifdict.Value{Text: "?"}, cifdict.ValueUnknown},
		{cifdict.Value{Text: ".", Quoted: true}, cifdict.ValueLiteral},
		{cifdict.Value{Text: "?", Quoted: true}, cifdict.ValueLiteral},
		{cifdict.Value{Text: ".."}, cifdict.ValueLiteral},
		{cifdict.Value{Text: ""}, cifdict.ValueLiteral},
		{cifdict.Value{Text: "foo"}, cifdict.ValueLiteral},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, cifdict.Classify(tt.v), "%+v", tt.v)
	}
	assert.Equal(t, "inapplicable", cifdict.ValueInapplicable.String())
	assert.Equal(t, "unknown", cifdict.ValueUnknown.String())
	assert.Equal(t, "literal", cifdict.ValueLiteral.String())
}

func keyword(t *testing.T, b *cifdict.Builder, cat, kw string) *cifdict.Keyword {
	t.Helper()
	d, err := b.Build()
	require.NoError(t, err)
	c, ok := d.Category(cat)
	require.True(t, ok)
	k, ok := c.Keyword(kw)
	require.True(t, ok)
	return k
}

func TestKeywordCheck(t *testing.T) {
	plain := keyword(t, cifdict.NewBuilder().DeclareKeyword("c", "any", false), "c", "any")
	_, ok := plain.Check(cifdict.Value{Text: "whatever at all"}, cifdict.RequireAll)
	assert.True(t, ok, "unconstrained keyword accepts any literal")

	typed := keyword(t, cifdict.NewBuilder().DeclareKeyword("c", "n", false,
		cifdict.WithItemType(cifdict.MustItemType("int", `[+-]?[0-9]+`))), "c", "n")
	for _, v := range []cifdict.Value{{Text: "12"}, {Text: "-3"}, {Text: "."}, {Text: "?"}} {
		_, ok := typed.Check(v, cifdict.RequireAll)
		assert.True(t, ok, "%+v", v)
	}
	it, ok := typed.Check(cifdict.Value{Text: "1.5"}, cifdict.RequireAll)
	require.False(t, ok)
	assert.Equal(t, cifdict.CodeTypeMismatch, it.Code)
	assert.Equal(t, "int", it.Rule)
	assert.Equal(t, []string{`[+-]?[0-9]+`}, it.Expected)
	assert.Equal(t, "_c.n", it.Tag())

	// A quoted placeholder is matched like any literal.
	_, ok = typed.Check(cifdict.Value{Text: ".", Quoted: true}, cifdict.RequireAll)
	assert.False(t, ok)

	enum := keyword(t, cifdict.NewBuilder().DeclareKeyword("c", "e", false,
		cifdict.WithEnumeration("yes", "no")), "c", "e")
	_, ok = enum.Check(cifdict.Value{Text: "yes"}, cifdict.RequireAll)
	assert.True(t, ok)
	it, ok = enum.Check(cifdict.Value{Text: "YES"}, cifdict.RequireAll)
	require.False(t, ok, "enumeration comparison is case-sensitive")
	assert.Equal(t, cifdict.CodeInvalidEnum, it.Code)
	assert.Equal(t, []string{"no", "yes"}, it.Expected)

	// An empty enumeration rejects every literal but not placeholders.
	empty := keyword(t, cifdict.NewBuilder().DeclareKeyword("c", "z", false,
		cifdict.WithEnumeration()), "c", "z")
	assert.True(t, empty.HasEnumeration())
	_, ok = empty.Check(cifdict.Value{Text: "x"}, cifdict.RequireAll)
	assert.False(t, ok)
	_, ok = empty.Check(cifdict.Value{Text: "."}, cifdict.RequireAll)
	assert.True(t, ok)
}

func TestItemType_FullMatch(t *testing.T) {
	it := cifdict.MustItemType("text", `[ \n\t_()A-Z]+`)
	assert.True(t, it.Match("FOO BAR"))
	assert.True(t, it.Match("FOO\nBAR"))
	assert.True(t, it.Match("FOO\tBAR"))
	assert.False(t, it.Match("FOO bar"))
	assert.False(t, it.Match(`FOO\BAR`))
	assert.False(t, it.Match(""))

	dot := cifdict.MustItemType("any", `.*`)
	assert.True(t, dot.Match("line one\nline two"), "dot matches newline")

	alt := cifdict.MustItemType("alt", `a|b`)
	assert.True(t, alt.Match("a"))
	assert.False(t, alt.Match("ab"), "alternation is anchored as a whole")

	_, err := cifdict.NewItemType("bad", `[a-`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"bad"`)
	assert.Panics(t, func() { cifdict.MustItemType("bad", `(`) })
}

func TestConstraintPolicy_String(t *testing.T) {
	assert.Equal(t, "all", cifdict.RequireAll.String())
	assert.Equal(t, "any", cifdict.RequireAny.String())
}
