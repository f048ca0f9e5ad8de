package diag

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/renfield/evalcore/cell"
	"github.com/stretchr/testify/require"
)

func TestDumpCellReportsKindAndPayload(t *testing.T) {
	var buf [32]byte
	c := cell.At(buf[:], 0)
	cell.SetInteger(c, 7)

	var out bytes.Buffer
	DumpCell(&out, "value", c)
	require.Contains(t, out.String(), "value:")
	require.Contains(t, out.String(), fmt.Sprintf("kind=%d", cell.KindInteger))
}

func TestDumpCellHandlesEndAndTrash(t *testing.T) {
	var buf [32]byte
	c := cell.At(buf[:], 0)
	cell.SetEnd(c)

	var out bytes.Buffer
	DumpCell(&out, "value", c)
	require.Equal(t, "value: <end>\n", out.String())

	var tbuf [32]byte
	trash := cell.At(tbuf[:], 0)
	out.Reset()
	DumpCell(&out, "value", trash)
	require.Equal(t, "value: <trash>\n", out.String())
}

func TestAssertfPanicsOnFalseCondition(t *testing.T) {
	var buf [32]byte
	c := cell.At(buf[:], 0)
	cell.SetInteger(c, 1)

	defer func() {
		r := recover()
		require.NotNil(t, r)
		require.True(t, strings.Contains(r.(string), "boom"))
	}()
	Assertf(false, "value", c, "boom: %d", 42)
}

func fmtKind(k cell.Kind) string {
	return "kind=" + itoa(int(k))
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	digits := ""
	for n > 0 {
		digits = string(rune('0'+n%10)) + digits
		n /= 10
	}
	return digits
}
