// Package chunkstack implements the LIFO argument-row allocator spec.md
// §3.4/§5 calls the "chunk stack": a bump allocator with per-frame
// markers, where dropping a frame resets the bump pointer to its marker
// and promoting a row to a managed varlist copies its cells out, leaving
// the stack's markers unchanged.
//
// This mirrors the teacher's hive/alloc.BumpAllocator: O(1) init, O(1)
// allocation, append-only with the "free" side of the interface reduced
// to a marker reset rather than true reclamation.
package chunkstack

import (
	"errors"
	"fmt"

	"github.com/renfield/evalcore/arena"
	"github.com/renfield/evalcore/cell"
	"github.com/renfield/evalcore/internal/format"
)

// ErrNeedSmall mirrors hive/alloc.ErrNeedSmall: a request for zero or
// negative cells.
var ErrNeedSmall = errors.New("chunkstack: need must be a positive cell count")

// Marker is a bump-pointer snapshot a frame takes on entry and restores
// on exit, dropping everything allocated since (spec.md §5 "Chunk
// stack").
type Marker int

// Stack is the LIFO of argument rows. Not safe for concurrent use — like
// the evaluator itself, it is single-threaded cooperative (spec.md §5).
type Stack struct {
	ar  *arena.Arena
	top int // bump pointer, in bytes from the arena base this stack owns
	off int // byte offset where this stack's region starts within ar
}

// New creates a chunk stack backed by a freshly reserved arena region of
// at least minCells cells.
func New(minCells int) (*Stack, error) {
	a, err := arena.New(minCells * format.CellSize)
	if err != nil {
		return nil, fmt.Errorf("chunkstack: %w", err)
	}
	off, ok := a.Take(0)
	if !ok {
		return nil, fmt.Errorf("chunkstack: failed to reserve base offset")
	}
	return &Stack{ar: a, off: off}, nil
}

// Mark returns the current bump-pointer position.
func (s *Stack) Mark() Marker { return Marker(s.top) }

// Row is a contiguous run of cells allocated on the chunk stack.
type Row struct {
	base int // byte offset within the owning Stack's arena
	n    int // cell count
	ar   *arena.Arena
}

// Push allocates a row of n cells above the stack's current top.
// Matches hive/alloc.BumpAllocator.Alloc's bump-then-advance shape.
func (s *Stack) Push(n int) (Row, error) {
	if n <= 0 {
		return Row{}, ErrNeedSmall
	}
	need := n * format.CellSize
	off, ok := s.ar.Take(need)
	if !ok {
		return Row{}, fmt.Errorf("chunkstack: failed to reserve %d cells", n)
	}
	s.top = off + need - s.off
	row := Row{base: off, n: n, ar: s.ar}
	for i := 0; i < n; i++ {
		cell.SetEnd(row.At(i))
	}
	return row, nil
}

// At returns the cell view at row-relative index i.
func (r Row) At(i int) cell.Cell {
	return cell.At(r.ar.Bytes(r.base, r.n*format.CellSize), i*format.CellSize)
}

func (r Row) Len() int { return r.n }

// Drop resets the stack to marker, discarding every row allocated since,
// per spec.md §4.4 step 6 ("chunk stack is popped"). The discarded range
// is always overwritten with arena.Poison, so dangling Row values read as
// freed rather than stale data.
func (s *Stack) Drop(marker Marker) {
	discardFrom := s.off + int(marker)
	discardLen := (s.off + s.top) - discardFrom
	if discardLen > 0 {
		s.ar.Poison(discardFrom, discardLen)
	}
	s.top = int(marker)
}

// Promote copies row's cells into dst (typically a freshly allocated
// varlist backed by a durable arena) and leaves the chunk stack otherwise
// untouched — ownership transfers to whatever GC owns dst, matching
// spec.md §4.4 step 6 ("if it was made visible it is detached and left
// to the GC").
func Promote(row Row, dst func(i int) cell.Cell) {
	for i := 0; i < row.Len(); i++ {
		cell.CopyCell(dst(i), row.At(i))
	}
}
