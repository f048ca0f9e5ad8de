package frame

import (
	"testing"

	"github.com/renfield/evalcore/cell"
	"github.com/stretchr/testify/require"
)

type fakeArray struct {
	cells []cell.Cell
}

func (a *fakeArray) Len() int           { return len(a.cells) }
func (a *fakeArray) At(i int) cell.Cell { return a.cells[i] }
func (a *fakeArray) Append(c cell.Cell) error {
	a.cells = append(a.cells, c)
	return nil
}

func intCell(v int64) cell.Cell {
	c := cell.At(make([]byte, 32), 0)
	cell.SetInteger(c, v)
	return c
}

func TestArrayFeedFetchNextAdvances(t *testing.T) {
	arr := &fakeArray{cells: []cell.Cell{intCell(1), intCell(2)}}
	f := Push(NewArrayFeed(arr, 0), nil, nil)

	require.NoError(t, f.FetchNext())
	require.False(t, f.AtEnd())
	require.Equal(t, int64(1), cell.Integer(f.Value))

	require.NoError(t, f.FetchNext())
	require.Equal(t, int64(2), cell.Integer(f.Value))

	require.NoError(t, f.FetchNext())
	require.True(t, f.AtEnd())
}

func TestPendingSpliceOverridesSource(t *testing.T) {
	arr := &fakeArray{cells: []cell.Cell{intCell(1)}}
	f := Push(NewArrayFeed(arr, 0), nil, nil)

	spliced := intCell(99)
	f.SetPending(spliced)
	require.NoError(t, f.FetchNext())
	require.Equal(t, int64(99), cell.Integer(f.Value))

	require.NoError(t, f.FetchNext())
	require.Equal(t, int64(1), cell.Integer(f.Value))
}

type fakeVarCursor struct {
	vals []cell.Cell
	i    int
}

func (c *fakeVarCursor) Next() (cell.Cell, bool) {
	if c.i >= len(c.vals) {
		return cell.Cell{}, false
	}
	v := c.vals[c.i]
	c.i++
	return v, true
}

func TestVariadicFeedCannotPeek(t *testing.T) {
	vf := NewVariadicFeed(&fakeVarCursor{vals: []cell.Cell{intCell(5)}})
	f := Push(vf, nil, nil)
	require.False(t, f.source.CanPeek())
	require.NoError(t, f.FetchNext())
	require.Equal(t, int64(5), cell.Integer(f.Value))
	require.NoError(t, f.FetchNext())
	require.True(t, f.AtEnd())
}

func TestPendingFromVariadicResumesAfterSplice(t *testing.T) {
	vf := NewVariadicFeed(&fakeVarCursor{vals: []cell.Cell{intCell(1)}})
	f := Push(vf, nil, nil)

	f.SetPendingFromVariadic(intCell(42))
	require.NoError(t, f.FetchNext())
	require.Equal(t, int64(42), cell.Integer(f.Value))

	require.NoError(t, f.FetchNext())
	require.Equal(t, int64(1), cell.Integer(f.Value))
}

type fakeLockable struct{ locked bool }

func (l *fakeLockable) Lock() bool {
	if l.locked {
		return false
	}
	l.locked = true
	return true
}
func (l *fakeLockable) Unlock() { l.locked = false }

type lockableFeed struct {
	*ArrayFeed
	*fakeLockable
}

func TestFrameTakesAndReleasesArrayLock(t *testing.T) {
	arr := &fakeArray{cells: []cell.Cell{intCell(1)}}
	lf := lockableFeed{ArrayFeed: NewArrayFeed(arr, 0), fakeLockable: &fakeLockable{}}

	f := Push(lf, nil, nil)
	require.True(t, lf.locked)
	f.Drop()
	require.False(t, lf.locked)
}

func TestReifyDrainsVariadicIntoArray(t *testing.T) {
	vf := NewVariadicFeed(&fakeVarCursor{vals: []cell.Cell{intCell(1), intCell(2)}})
	f := Push(vf, nil, nil)
	f.Flags |= FlagVaList

	dst := &fakeArray{}
	require.NoError(t, Reify(f, dst))
	require.Equal(t, 2, dst.Len())
	require.False(t, f.Flags&FlagVaList != 0)

	require.NoError(t, f.FetchNext())
	require.Equal(t, int64(1), cell.Integer(f.Value))
}
