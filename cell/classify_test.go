package cell

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassifyLeadByte(t *testing.T) {
	require.Equal(t, PointerEndSentinel, ClassifyLeadByte(0x00))
	require.Equal(t, PointerFreed, ClassifyLeadByte(freedPoisonByte))
	require.Equal(t, PointerUTF8String, ClassifyLeadByte('h')) // ASCII
	require.Equal(t, PointerUTF8String, ClassifyLeadByte(0xC2)) // 2-byte UTF-8 lead

	c := At(newBuf(), 0)
	ResetHeader(c, KindInteger)
	h := c.header()
	require.Equal(t, PointerActiveCell, ClassifyLeadByte(h.LeadByte()))
}

func TestClassifyDistinguishesCellFromEnd(t *testing.T) {
	c := At(newBuf(), 0)
	ResetHeader(c, KindBlock)
	require.Equal(t, PointerActiveCell, Classify(c))

	e := At(newBuf(), 0)
	SetEnd(e)
	require.Equal(t, PointerEndSentinel, Classify(e))
}
