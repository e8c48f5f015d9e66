package value_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ember-lang/ember/lang/value"
)

func TestIsFalsey(t *testing.T) {
	require.True(t, value.IsFalsey(value.Nil{}))
	require.True(t, value.IsFalsey(value.Bool(false)))
	require.False(t, value.IsFalsey(value.Bool(true)))
	require.False(t, value.IsFalsey(value.Number(0)))
	require.False(t, value.IsFalsey(&value.String{Chars: ""}))
}

func TestEqual(t *testing.T) {
	require.True(t, value.Equal(value.Nil{}, value.Nil{}))
	require.True(t, value.Equal(value.Number(1), value.Number(1)))
	require.False(t, value.Equal(value.Number(1), value.Number(2)))
	require.True(t, value.Equal(value.Bool(true), value.Bool(true)))
	require.False(t, value.Equal(value.Number(1), value.Bool(true)))

	s1 := &value.String{Chars: "hi"}
	s2 := &value.String{Chars: "hi"}
	require.False(t, value.Equal(s1, s2), "distinct allocations of equal content are not equal without interning")
	require.True(t, value.Equal(s1, s1))
}

func TestFunctionStringUsesScriptForEmptyName(t *testing.T) {
	fn := value.NewFunction()
	require.Equal(t, "<script>", fn.String())
	fn.Name = "add"
	require.Equal(t, "<fn add>", fn.String())
}
