package symbol

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInternIsIdempotent(t *testing.T) {
	tbl := New()
	a := tbl.Intern("foo")
	b := tbl.Intern("foo")
	require.Equal(t, a, b)
}

func TestDistinctTextsGetDistinctIDs(t *testing.T) {
	tbl := New()
	a := tbl.Intern("foo")
	b := tbl.Intern("bar")
	require.NotEqual(t, a, b)
}

func TestCanonicalFormUnifiesNFCVariants(t *testing.T) {
	tbl := New()
	// "é" as a single code point vs "e" + combining acute accent.
	precomposed := tbl.Intern("café")
	decomposed := tbl.Intern("café")
	require.Equal(t, precomposed, decomposed)
}

func TestTextRoundTrips(t *testing.T) {
	tbl := New()
	id := tbl.Intern("quux")
	require.Equal(t, "quux", tbl.Text(id))
}

func TestManySymbolsAcrossShards(t *testing.T) {
	tbl := New()
	ids := make(map[ID]string)
	for i := 0; i < 500; i++ {
		s := randWord(i)
		id := tbl.Intern(s)
		if prev, ok := ids[id]; ok {
			require.Equal(t, prev, s)
		}
		ids[id] = s
	}
	for id, s := range ids {
		require.Equal(t, s, tbl.Text(id))
	}
}

func randWord(i int) string {
	letters := "abcdefghijklmnopqrstuvwxyz"
	out := make([]byte, 0, 8)
	n := i
	for j := 0; j < 5; j++ {
		out = append(out, letters[(n+j*7)%len(letters)])
	}
	return string(out)
}
