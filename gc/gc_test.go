package gc

import (
	"testing"

	"github.com/renfield/evalcore/cell"
	"github.com/stretchr/testify/require"
)

func TestRootsAccumulateAndReset(t *testing.T) {
	roots := NewRoots()
	c := cell.At(make([]byte, 32), 0)
	cell.SetInteger(c, 1)

	roots.Add("out", c)
	roots.Add("value", c)
	require.Equal(t, 2, roots.Len())

	roots.Reset()
	require.Equal(t, 0, roots.Len())
}

func TestMarkUnmarkRoundTrip(t *testing.T) {
	c := cell.At(make([]byte, 32), 0)
	cell.SetInteger(c, 1)
	require.False(t, IsMarked(c))
	Mark(c)
	require.True(t, IsMarked(c))
	Unmark(c)
	require.False(t, IsMarked(c))
}
