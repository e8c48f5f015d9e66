package table_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ember-lang/ember/lang/table"
	"github.com/ember-lang/ember/lang/value"
)

// interned mimics the VM's string intern table for these tests: Table keys
// compare by pointer identity (the real Table is only ever keyed by
// *value.String values the VM has already canonicalized), so two str()
// calls for the same content must return the same pointer or every lookup
// below would spuriously miss.
var interned = map[string]*value.String{}

func str(s string) *value.String {
	if existing, ok := interned[s]; ok {
		return existing
	}
	v := &value.String{Chars: s, Hash: value.FNV1a32(s)}
	interned[s] = v
	return v
}

func TestSetGetDelete(t *testing.T) {
	tbl := table.New()
	k := str("greeting")

	_, ok := tbl.Get(k)
	require.False(t, ok)

	isNew := tbl.Set(k, value.Number(1))
	require.True(t, isNew)

	v, ok := tbl.Get(k)
	require.True(t, ok)
	require.Equal(t, value.Number(1), v)

	isNew = tbl.Set(k, value.Number(2))
	require.False(t, isNew)
	v, _ = tbl.Get(k)
	require.Equal(t, value.Number(2), v)

	require.True(t, tbl.Delete(k))
	_, ok = tbl.Get(k)
	require.False(t, ok)
	require.False(t, tbl.Delete(k))
}

func TestManyKeysSurviveGrowth(t *testing.T) {
	tbl := table.New()
	for i := 0; i < 500; i++ {
		tbl.Set(str(fmt.Sprintf("key%d", i)), value.Number(float64(i)))
	}
	require.LessOrEqual(t, tbl.Count(), 500)
	for i := 0; i < 500; i++ {
		v, ok := tbl.Get(str(fmt.Sprintf("key%d", i)))
		require.True(t, ok)
		require.Equal(t, value.Number(float64(i)), v)
	}
}

func TestFindStringComparesByHashLengthBytes(t *testing.T) {
	tbl := table.New()
	k := str("hello")
	tbl.Set(k, value.Bool(true))

	found := tbl.FindString("hello", value.FNV1a32("hello"))
	require.Same(t, k, found)

	require.Nil(t, tbl.FindString("goodbye", value.FNV1a32("goodbye")))
}

func TestAddAll(t *testing.T) {
	from := table.New()
	from.Set(str("a"), value.Number(1))
	from.Set(str("b"), value.Number(2))

	to := table.New()
	to.AddAll(from)

	v, ok := to.Get(str("a"))
	require.True(t, ok)
	require.Equal(t, value.Number(1), v)
}

func TestRemoveWhiteDeletesUnmarkedKeys(t *testing.T) {
	tbl := table.New()
	live := str("live")
	dead := str("dead")
	live.SetMarked(true)

	tbl.Set(live, value.Bool(true))
	tbl.Set(dead, value.Bool(true))

	tbl.RemoveWhite()

	_, ok := tbl.Get(live)
	require.True(t, ok)
	_, ok = tbl.Get(dead)
	require.False(t, ok)
}

func TestMarkVisitsEveryLiveEntry(t *testing.T) {
	tbl := table.New()
	tbl.Set(str("a"), value.Number(1))
	tbl.Set(str("b"), value.Number(2))

	var marked []value.Value
	tbl.Mark(func(v value.Value) { marked = append(marked, v) })

	// two entries => four marks (key + value each)
	require.Len(t, marked, 4)
}
