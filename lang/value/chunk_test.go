package value_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ember-lang/ember/lang/value"
)

func TestChunkWriteAndGetLine(t *testing.T) {
	c := value.New()
	c.Write(byte(value.OpNil), 1)
	c.Write(byte(value.OpNil), 1)
	c.Write(byte(value.OpReturn), 2)

	require.Equal(t, 1, c.GetLine(0))
	require.Equal(t, 1, c.GetLine(1))
	require.Equal(t, 2, c.GetLine(2))
}

func TestChunkGetLineOnNonMonotonicLines(t *testing.T) {
	c := value.New()
	c.Write(byte(value.OpNil), 5)
	c.Write(byte(value.OpNil), 3) // e.g. a loop jumping back up
	c.Write(byte(value.OpNil), 3)

	require.Equal(t, 5, c.GetLine(0))
	require.Equal(t, 3, c.GetLine(1))
	require.Equal(t, 3, c.GetLine(2))
}

func TestChunkAddConstant(t *testing.T) {
	c := value.New()
	idx := c.AddConstant(value.Number(42))
	require.Equal(t, 0, idx)
	idx = c.AddConstant(value.Number(7))
	require.Equal(t, 1, idx)
	require.Equal(t, value.Number(42), c.Constants[0])
}
