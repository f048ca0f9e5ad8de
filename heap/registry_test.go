package heap

import (
	"testing"

	"github.com/renfield/evalcore/arena"
	"github.com/renfield/evalcore/array"
	"github.com/stretchr/testify/require"
)

func TestRegistryRoundTripsContexts(t *testing.T) {
	r := New()
	ar, err := arena.New(4096)
	require.NoError(t, err)

	id := r.NextID()
	ctx, err := array.NewContext(ar, id, nil)
	require.NoError(t, err)
	r.PutContext(id, ctx)

	got, ok := r.Context(id)
	require.True(t, ok)
	require.Same(t, ctx, got)

	_, ok = r.Context(id + 999)
	require.False(t, ok)
}

func TestCallBindingsResolveRelative(t *testing.T) {
	cb := NewCallBindings()
	_, ok := cb.ResolveRelative(1)
	require.False(t, ok)

	cb.Bind(1, 42)
	ctxID, ok := cb.ResolveRelative(1)
	require.True(t, ok)
	require.Equal(t, uint64(42), ctxID)

	cb.Unbind(1)
	_, ok = cb.ResolveRelative(1)
	require.False(t, ok)
}
