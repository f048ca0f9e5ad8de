package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeaderKindRoundTrip(t *testing.T) {
	var h Header
	for k := byte(0); k < 64; k++ {
		h = h.WithKind(k)
		require.Equal(t, k, h.Kind())
	}
}

func TestHeaderFlags(t *testing.T) {
	h := Header(0)
	assert.False(t, h.IsEnd())
	h = h.SetEnd()
	assert.True(t, h.IsEnd())
	h = h.ClearEnd()
	assert.False(t, h.IsEnd())

	h = h.SetMarked()
	assert.True(t, h.IsMarked())
	h = h.ClearMarked()
	assert.False(t, h.IsMarked())
}

func TestLeadByteNeverLooksLikeUTF8OrEnd(t *testing.T) {
	for k := byte(0); k < 64; k++ {
		h := Header(0).WithKind(k).SetNode().SetCell()
		lb := h.LeadByte()
		assert.True(t, IsNodeLeadByte(lb), "kind %d lead byte %08b should be node-tagged", k, lb)
		assert.False(t, IsUTF8LeadByte(lb), "kind %d lead byte %08b must not be a valid UTF-8 lead byte", k, lb)
	}
	// The zero byte used by a header-only END sentinel's spare integer field
	// is not node-tagged.
	assert.False(t, IsNodeLeadByte(0))
}
