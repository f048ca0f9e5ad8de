package throwfail

import (
	"testing"

	"github.com/renfield/evalcore/cell"
	"github.com/stretchr/testify/require"
)

func intCell(v int64) cell.Cell {
	c := cell.At(make([]byte, 32), 0)
	cell.SetInteger(c, v)
	return c
}

func TestThrowCatchRoundTrip(t *testing.T) {
	th := NewThread()
	label := intCell(1)
	val := intCell(42)

	err := th.Throw(label, val)
	require.ErrorIs(t, err, ErrThrown)
	require.True(t, th.InFlight())
	require.True(t, cell.IsThrown(th.Value()))

	out := cell.At(make([]byte, 32), 0)
	caught := th.Catch(func(l cell.Cell) bool {
		return cell.Integer(l) == 1
	}, out)
	require.True(t, caught)
	require.False(t, th.InFlight())
	require.Equal(t, int64(42), cell.Integer(out))
	require.False(t, cell.IsThrown(out))
}

func TestCatchRejectsMismatchedLabel(t *testing.T) {
	th := NewThread()
	_ = th.Throw(intCell(1), intCell(42))

	out := cell.At(make([]byte, 32), 0)
	caught := th.Catch(func(l cell.Cell) bool { return cell.Integer(l) == 2 }, out)
	require.False(t, caught)
	require.True(t, th.InFlight())
}

func TestSecondThrowFaultsWhileInFlight(t *testing.T) {
	th := NewThread()
	_ = th.Throw(intCell(1), intCell(42))

	err := th.Throw(intCell(2), intCell(7))
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrThrown)
}

func TestThrowReturnOnlyCaughtByMatchingFuncID(t *testing.T) {
	th := NewThread()
	err := th.ThrowReturn(77, intCell(9))
	require.ErrorIs(t, err, ErrThrown)
	require.True(t, th.IsReturnThrow())

	out := cell.At(make([]byte, 32), 0)
	require.False(t, th.CatchReturn(1, out))
	require.True(t, th.CatchReturn(77, out))
	require.Equal(t, int64(9), cell.Integer(out))
	require.False(t, th.InFlight())
}

type fakeUnwinder struct{ dropped bool }

func (f *fakeUnwinder) Drop() { f.dropped = true }

func TestPropagateRunsCleanupAndReturnsErrUnchanged(t *testing.T) {
	u := &fakeUnwinder{}
	err := Propagate(u, ErrThrown)
	require.True(t, u.dropped)
	require.ErrorIs(t, err, ErrThrown)
}
