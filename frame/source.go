// Package frame implements the per-call evaluator state of spec.md §3.4:
// the stack-allocated Frame, its two alternate input feeds (an
// addressable array, or a forward-only variadic stream), and the
// pending-splice override eval uses to inject a computed value.
//
// Source.Next mirrors the teacher's hive.CellIterator.Next: it returns
// (cell, error) where io.EOF signals end, rather than spec.md's raw
// header-bit END test, because Go's iterator idiom is io.EOF and the
// header-bit mechanism is what cell.IsEnd on the returned cell reads for
// callers that need the implicit-end representation directly.
package frame

import (
	"io"

	"github.com/renfield/evalcore/cell"
)

// Source is the evaluator's input feed abstraction (spec.md §4.2).
// Implementations must honour single-directional advance: once Next has
// been called, the previous value is gone except via whatever the caller
// squirreled away (e.g. Frame.value).
type Source interface {
	// Next returns the next cell and advances the cursor, or io.EOF if
	// the source is exhausted.
	Next() (cell.Cell, error)
	// CanPeek reports whether this source supports a non-consuming
	// lookahead (array feeds can; variadic feeds cannot — spec.md §4.2,
	// §4.4 "Lookback is suppressed on variadic feeds").
	CanPeek() bool
}

// ArrayFeed walks an addressable array by index (spec.md §4.2 "Array
// feed").
type ArrayFeed struct {
	Arr   Indexable
	Index int
}

// Indexable is the minimal surface Source needs from array.Array,
// narrowed so frame does not need to import array directly for this
// interface (kept small and local per Go idiom; array.Array satisfies it
// structurally).
type Indexable interface {
	Len() int
	At(i int) cell.Cell
}

func NewArrayFeed(arr Indexable, startIndex int) *ArrayFeed {
	return &ArrayFeed{Arr: arr, Index: startIndex}
}

func (f *ArrayFeed) Next() (cell.Cell, error) {
	if f.Index >= f.Arr.Len() {
		return cell.Cell{}, io.EOF
	}
	c := f.Arr.At(f.Index)
	f.Index++
	return c, nil
}

func (f *ArrayFeed) CanPeek() bool { return true }

// Peek returns the cell at the current index without advancing, or
// io.EOF. Only ArrayFeed supports this; it backs the evaluator's
// one-cell lookback lookahead (spec.md §4.4).
func (f *ArrayFeed) Peek() (cell.Cell, error) {
	if f.Index >= f.Arr.Len() {
		return cell.Cell{}, io.EOF
	}
	return f.Arr.At(f.Index), nil
}

// VariadicCursor is the host-supplied pointer stream a VariadicFeed
// drains (spec.md §4.2 "Variadic feed"). It is forward-only: there is no
// peek.
type VariadicCursor interface {
	// Next returns the next value and ok=true, or ok=false when
	// exhausted.
	Next() (cell.Cell, bool)
}

// VariadicFeed wraps a VariadicCursor. It cannot be rewound, so
// lookahead-dependent optimisations (the evaluator's infix peek) are
// disabled on it.
type VariadicFeed struct {
	Cursor VariadicCursor
	ended  bool
}

func NewVariadicFeed(c VariadicCursor) *VariadicFeed {
	return &VariadicFeed{Cursor: c}
}

func (f *VariadicFeed) Next() (cell.Cell, error) {
	if f.ended {
		return cell.Cell{}, io.EOF
	}
	v, ok := f.Cursor.Next()
	if !ok {
		f.ended = true
		return cell.Cell{}, io.EOF
	}
	return v, nil
}

func (f *VariadicFeed) CanPeek() bool { return false }

// PendingSentinel is the value frame.Frame.pending is set to after a
// splice sourced from a variadic feed, so the next ordinary fetch
// resumes from the variadic rather than treating the sentinel itself as
// the next value (spec.md §4.2: "pending is set to a sentinel
// (VA_LIST_PENDING) so the next ordinary fetch returns to the
// variadic").
var PendingSentinel = cell.Cell{}

// IsPendingSentinel reports whether c is the VA_LIST_PENDING marker.
func IsPendingSentinel(c cell.Cell) bool {
	return c.Buf == nil && c.Off == 0
}
