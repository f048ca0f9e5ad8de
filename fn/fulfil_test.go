package fn

import (
	"testing"

	"github.com/renfield/evalcore/arena"
	"github.com/renfield/evalcore/array"
	"github.com/renfield/evalcore/cell"
	"github.com/renfield/evalcore/chunkstack"
	"github.com/renfield/evalcore/datastack"
	"github.com/renfield/evalcore/frame"
	"github.com/renfield/evalcore/symbol"
	"github.com/stretchr/testify/require"
)

func intCell(v int64) cell.Cell {
	c := cell.At(make([]byte, 32), 0)
	cell.SetInteger(c, v)
	return c
}

type fakeArray struct{ cells []cell.Cell }

func (a *fakeArray) Len() int           { return len(a.cells) }
func (a *fakeArray) At(i int) cell.Cell { return a.cells[i] }

type constEvaluator struct{ tightSeen *bool }

func (e constEvaluator) EvalNext(f *frame.Frame, out cell.Cell, tight bool) error {
	if e.tightSeen != nil {
		*e.tightSeen = tight
	}
	cell.SetInteger(out, cell.Integer(f.Value))
	return f.FetchNext()
}

func newChunkStack(t *testing.T) *chunkstack.Stack {
	t.Helper()
	s, err := chunkstack.New(64)
	require.NoError(t, err)
	return s
}

func TestFulfilNormalParamsEvaluateInOrder(t *testing.T) {
	keys := []array.Key{
		{Symbol: symbol.ID(1), Class: array.ClassNormal},
		{Symbol: symbol.ID(2), Class: array.ClassNormal},
	}
	facade := array.NewKeylist(keys)
	function := &Function{Facade: facade}

	rows := newChunkStack(t)
	row, err := AllocateRow(function, rows, nil)
	require.NoError(t, err)

	arr := &fakeArray{cells: []cell.Cell{intCell(10), intCell(20)}}
	feed := frame.Push(frame.NewArrayFeed(arr, 0), nil, nil)
	require.NoError(t, feed.FetchNext())

	ds := datastack.New()
	require.NoError(t, Fulfil(function, row, feed, constEvaluator{}, ModeEvaluate, ds, ds.Len()))

	require.Equal(t, int64(10), cell.Integer(row.At(1)))
	require.Equal(t, int64(20), cell.Integer(row.At(2)))
}

func TestFulfilTightSetsNoLookaheadOnRecursion(t *testing.T) {
	keys := []array.Key{{Symbol: symbol.ID(1), Class: array.ClassTight}}
	facade := array.NewKeylist(keys)
	function := &Function{Facade: facade}

	rows := newChunkStack(t)
	row, err := AllocateRow(function, rows, nil)
	require.NoError(t, err)

	arr := &fakeArray{cells: []cell.Cell{intCell(7)}}
	feed := frame.Push(frame.NewArrayFeed(arr, 0), nil, nil)
	require.NoError(t, feed.FetchNext())

	var sawTight bool
	ds := datastack.New()
	require.NoError(t, Fulfil(function, row, feed, constEvaluator{tightSeen: &sawTight}, ModeEvaluate, ds, ds.Len()))
	require.True(t, sawTight)
}

func TestFulfilMissingArgAtEndFaults(t *testing.T) {
	keys := []array.Key{{Symbol: symbol.ID(1), Class: array.ClassNormal}}
	facade := array.NewKeylist(keys)
	function := &Function{Facade: facade}

	rows := newChunkStack(t)
	row, err := AllocateRow(function, rows, nil)
	require.NoError(t, err)

	arr := &fakeArray{}
	feed := frame.Push(frame.NewArrayFeed(arr, 0), nil, nil)
	require.NoError(t, feed.FetchNext())

	ds := datastack.New()
	err = Fulfil(function, row, feed, constEvaluator{}, ModeEvaluate, ds, ds.Len())
	require.ErrorIs(t, err, ErrArgMissing)
}

func TestFulfilEndableMissingArgYieldsVoid(t *testing.T) {
	keys := []array.Key{{Symbol: symbol.ID(1), Class: array.ClassNormal, Flags: array.KeyEndable}}
	facade := array.NewKeylist(keys)
	function := &Function{Facade: facade}

	rows := newChunkStack(t)
	row, err := AllocateRow(function, rows, nil)
	require.NoError(t, err)

	arr := &fakeArray{}
	feed := frame.Push(frame.NewArrayFeed(arr, 0), nil, nil)
	require.NoError(t, feed.FetchNext())

	ds := datastack.New()
	require.NoError(t, Fulfil(function, row, feed, constEvaluator{}, ModeEvaluate, ds, ds.Len()))
	require.Equal(t, cell.KindVoid, cell.KindOf(row.At(1)))
}

func TestFulfilSkipsArgsUnderUnrequestedRefinement(t *testing.T) {
	keys := []array.Key{
		{Symbol: symbol.ID(1), Class: array.ClassRefinement},
		{Symbol: symbol.ID(2), Class: array.ClassNormal},
	}
	facade := array.NewKeylist(keys)
	function := &Function{Facade: facade}

	rows := newChunkStack(t)
	row, err := AllocateRow(function, rows, nil)
	require.NoError(t, err)

	arr := &fakeArray{cells: []cell.Cell{intCell(99)}}
	feed := frame.Push(frame.NewArrayFeed(arr, 0), nil, nil)
	require.NoError(t, feed.FetchNext())

	ds := datastack.New()
	require.NoError(t, Fulfil(function, row, feed, constEvaluator{}, ModeEvaluate, ds, ds.Len()))

	require.False(t, cell.Logic(row.At(1)))
	require.Equal(t, cell.KindVoid, cell.KindOf(row.At(2)))
	require.Equal(t, int64(99), cell.Integer(feed.Value)) // never consumed
}

func TestFulfilRefinementPickupActivatesOutOfOrderArgs(t *testing.T) {
	keys := []array.Key{
		{Symbol: symbol.ID(1), Class: array.ClassRefinement},
		{Symbol: symbol.ID(2), Class: array.ClassNormal},
	}
	facade := array.NewKeylist(keys)
	function := &Function{Facade: facade}

	rows := newChunkStack(t)
	row, err := AllocateRow(function, rows, nil)
	require.NoError(t, err)

	arr := &fakeArray{cells: []cell.Cell{intCell(42)}}
	feed := frame.Push(frame.NewArrayFeed(arr, 0), nil, nil)
	require.NoError(t, feed.FetchNext())

	ds := datastack.New()
	ds.Push(datastack.Entry{Kind: datastack.KindRefinementPickup, Word: symbol.ID(1), ParamSlot: 2})

	require.NoError(t, Fulfil(function, row, feed, constEvaluator{}, ModeEvaluate, ds, 0))
	require.True(t, cell.Logic(row.At(1)))
	require.Equal(t, int64(42), cell.Integer(row.At(2)))
}

func TestFulfilExemplarPrefillSkipsCallSiteConsumption(t *testing.T) {
	keys := []array.Key{{Symbol: symbol.ID(1), Class: array.ClassNormal}}
	facade := array.NewKeylist(keys)

	ar, err := arena.New(4096)
	require.NoError(t, err)
	exemplarCtx, err := array.NewContext(ar, 1, keys)
	require.NoError(t, err)
	cell.SetInteger(exemplarCtx.Varlist.At(1), 555)

	function := &Function{Facade: facade, Exemplar: exemplarCtx}

	rows := newChunkStack(t)
	row, err := AllocateRow(function, rows, nil)
	require.NoError(t, err)

	arr := &fakeArray{cells: []cell.Cell{intCell(1)}}
	feed := frame.Push(frame.NewArrayFeed(arr, 0), nil, nil)
	require.NoError(t, feed.FetchNext())

	ds := datastack.New()
	require.NoError(t, Fulfil(function, row, feed, constEvaluator{}, ModeEvaluate, ds, ds.Len()))

	require.Equal(t, int64(555), cell.Integer(row.At(1)))
	require.Equal(t, int64(1), cell.Integer(feed.Value)) // call site arg never consumed
}
