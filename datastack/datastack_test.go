package datastack

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMarkAndTruncateRestoresDepth(t *testing.T) {
	s := New()
	m := s.Mark()
	s.Push(Entry{Kind: KindSetTarget})
	s.Push(Entry{Kind: KindSetTarget})
	require.Equal(t, 2, s.Len())

	s.TruncateTo(m)
	require.Equal(t, 0, s.Len())
}

func TestFindRefinementPickupRemovesMatch(t *testing.T) {
	s := New()
	s.Push(Entry{Kind: KindRefinementPickup, Word: 1, ParamSlot: 3})
	s.Push(Entry{Kind: KindRefinementPickup, Word: 2, ParamSlot: 5})

	slot, found := s.FindRefinementPickup(0, 2)
	require.True(t, found)
	require.Equal(t, 5, slot)
	require.Equal(t, 1, s.Len())

	_, found = s.FindRefinementPickup(0, 2)
	require.False(t, found)
}

func TestPendingRefinementsAboveRespectsFloor(t *testing.T) {
	s := New()
	s.Push(Entry{Kind: KindRefinementPickup, Word: 1, ParamSlot: 1})
	floor := s.Mark()
	s.Push(Entry{Kind: KindRefinementPickup, Word: 2, ParamSlot: 2})

	pending := s.PendingRefinementsAbove(int(floor))
	require.Len(t, pending, 1)
	require.Equal(t, uint32(2), uint32(pending[0].Word))
}
