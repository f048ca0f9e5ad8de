// Package diag formats the panic dump spec.md §7 requires when an
// assertion fails: "surfaces as an immediate abort with a panic dump of
// the offending cell." Grounded on the teacher's hive/print.go cell-dump
// formatting — same shape (header bits, kind, raw payload bytes in hex),
// reinterpreted for an in-memory cell instead of an on-disk node.
package diag

import (
	"fmt"
	"io"
	"os"

	"github.com/renfield/evalcore/cell"
)

// DumpCell writes a one-line, human-readable dump of c to w: its kind
// and header flags, the extra word, and the raw payload bytes in hex.
// label identifies which frame slot or argument c came from.
func DumpCell(w io.Writer, label string, c cell.Cell) {
	if cell.IsEnd(c) {
		fmt.Fprintf(w, "%s: <end>\n", label)
		return
	}
	if cell.IsTrash(c) {
		fmt.Fprintf(w, "%s: <trash>\n", label)
		return
	}
	fmt.Fprintf(w, "%s: kind=%d managed=%v marked=%v root=%v falsey=%v thrown=%v relative=%v extra=%d payload=% x\n",
		label, cell.KindOf(c),
		cell.IsManaged(c), cell.IsMarked(c), cell.IsRoot(c),
		cell.IsFalsey(c), cell.IsThrown(c), cell.IsRelative(c),
		cell.Extra(c), cell.Payload(c))
}

// DumpFrame writes a dump of every (label, cell) pair in slots, in
// order — the shape a caller walking a frame's Out/Scratch/Value (or an
// argument row) would build up before handing it to Assertf.
func DumpFrame(w io.Writer, slots []LabeledCell) {
	for _, s := range slots {
		DumpCell(w, s.Label, s.Cell)
	}
}

// LabeledCell names one cell slot for DumpFrame, e.g. the frame field or
// argument index it was read from.
type LabeledCell struct {
	Label string
	Cell  cell.Cell
}

// Assertf panics with a formatted message after dumping c to os.Stderr,
// if cond is false. Mirrors the teacher's cmd/hivectl convention of
// writing diagnostics straight to stderr rather than through a logging
// library (spec.md's ambient stack carries no logging dependency).
func Assertf(cond bool, label string, c cell.Cell, format string, args ...interface{}) {
	if cond {
		return
	}
	DumpCell(os.Stderr, label, c)
	panic(fmt.Sprintf(format, args...))
}
