package arena

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewRoundsUpToPage(t *testing.T) {
	a, err := New(1)
	require.NoError(t, err)
	defer a.Close()
	require.Equal(t, PageSize, a.Cap())
}

func TestTakeGrowsAcrossPageBoundary(t *testing.T) {
	a, err := New(PageSize)
	require.NoError(t, err)
	defer a.Close()

	off1, ok := a.Take(PageSize - 16)
	require.True(t, ok)
	require.Equal(t, 0, off1)

	off2, ok := a.Take(32)
	require.True(t, ok)
	require.Equal(t, PageSize-16, off2)
	require.Greater(t, a.Cap(), PageSize)
}

func TestBytesReflectsWrites(t *testing.T) {
	a, err := New(PageSize)
	require.NoError(t, err)
	defer a.Close()

	off, ok := a.Take(8)
	require.True(t, ok)
	region := a.Bytes(off, 8)
	copy(region, []byte("abcdefgh"))
	require.Equal(t, []byte("abcdefgh"), a.Bytes(off, 8))
}

func TestResetReclaimsButKeepsCapacity(t *testing.T) {
	a, err := New(PageSize)
	require.NoError(t, err)
	defer a.Close()

	_, _ = a.Take(100)
	require.Equal(t, 100, a.Used())
	a.Reset()
	require.Equal(t, 0, a.Used())
	require.Equal(t, PageSize, a.Cap())
}

func TestPoisonWritesMarker(t *testing.T) {
	a, err := New(PageSize)
	require.NoError(t, err)
	defer a.Close()

	off, _ := a.Take(4)
	a.Poison(off, 4)
	for _, b := range a.Bytes(off, 4) {
		require.Equal(t, byte(freedPoisonByte), b)
	}
}
