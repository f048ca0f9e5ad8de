package array

import (
	"testing"

	"github.com/renfield/evalcore/cell"
	"github.com/renfield/evalcore/symbol"
	"github.com/stretchr/testify/require"
)

func TestContextGetAndSlot(t *testing.T) {
	tbl := symbol.New()
	aSym := tbl.Intern("a")
	bSym := tbl.Intern("b")

	ctx, err := NewContext(newArena(t), 1, []Key{
		{Symbol: aSym, Class: ClassNormal},
		{Symbol: bSym, Class: ClassNormal},
	})
	require.NoError(t, err)

	v, ok := ctx.Get(aSym)
	require.True(t, ok)
	require.Equal(t, cell.KindVoid, cell.KindOf(v))

	cell.SetInteger(ctx.Slot(1), 10)
	v, ok = ctx.Get(aSym)
	require.True(t, ok)
	require.Equal(t, int64(10), cell.Integer(v))

	_, ok = ctx.Get(tbl.Intern("nope"))
	require.False(t, ok)
}

func TestKeyAdmitsTypeset(t *testing.T) {
	k := Key{Typeset: 1 << uint(cell.KindInteger)}
	require.True(t, k.Admits(cell.KindInteger))
	require.False(t, k.Admits(cell.KindBlock))

	unconstrained := Key{}
	require.True(t, unconstrained.Admits(cell.KindBlock))
}
