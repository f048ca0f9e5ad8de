package cell

import (
	"testing"

	"github.com/renfield/evalcore/internal/format"
	"github.com/stretchr/testify/require"
)

func newBuf() []byte { return make([]byte, format.CellSize) }

func TestResetHeaderThenIsEndInvariant(t *testing.T) {
	c := At(newBuf(), 0)
	ResetHeader(c, KindInteger)
	require.False(t, IsEnd(c))
	require.False(t, IsTrash(c))
	require.Equal(t, KindInteger, KindOf(c))
}

func TestSetEndMakesOnlyIsEndLegal(t *testing.T) {
	c := At(newBuf(), 0)
	SetEnd(c)
	require.True(t, IsEnd(c))
}

func TestIsConditionalFalse(t *testing.T) {
	c := At(newBuf(), 0)
	SetBlank(c)
	require.True(t, IsConditionalFalse(c))

	SetLogic(c, false)
	require.True(t, IsConditionalFalse(c))

	SetLogic(c, true)
	require.False(t, IsConditionalFalse(c))

	SetInteger(c, 42)
	require.False(t, IsConditionalFalse(c))
}

func TestCopyCellIsBitwise(t *testing.T) {
	src := At(newBuf(), 0)
	SetInteger(src, 7)
	SetUnevaluated(src)

	dst := At(newBuf(), 0)
	CopyCell(dst, src)

	require.Equal(t, int64(7), Integer(dst))
	require.True(t, IsUnevaluated(dst))
}

func TestMultiCellArrayAtOffsets(t *testing.T) {
	buf := make([]byte, format.CellSize*3)
	a := At(buf, 0*format.CellSize)
	b := At(buf, 1*format.CellSize)
	e := At(buf, 2*format.CellSize)

	SetInteger(a, 1)
	SetInteger(b, 2)
	SetEnd(e)

	require.Equal(t, int64(1), Integer(a))
	require.Equal(t, int64(2), Integer(b))
	require.True(t, IsEnd(e))
	require.False(t, IsEnd(a))
}

func TestDerelativizeResolvesThroughSpecifier(t *testing.T) {
	src := At(newBuf(), 0)
	SetWord(src, KindWord, 99, Relative(5))

	dst := At(newBuf(), 0)
	spec := fakeSpecifier{5: 1234}
	newBinding, ok := Derelativize(dst, src, spec)
	require.True(t, ok)
	require.True(t, newBinding.IsSpecific())
	require.Equal(t, uint64(1234), newBinding.ContextID())
	require.False(t, IsRelative(dst))
}

func TestDerelativizeFaultsOnUnmatchedFunction(t *testing.T) {
	src := At(newBuf(), 0)
	SetWord(src, KindWord, 99, Relative(5))
	dst := At(newBuf(), 0)

	_, ok := Derelativize(dst, src, fakeSpecifier{})
	require.False(t, ok)
}

type fakeSpecifier map[uint64]uint64

func (f fakeSpecifier) ResolveRelative(funcID uint64) (uint64, bool) {
	ctx, ok := f[funcID]
	return ctx, ok
}
