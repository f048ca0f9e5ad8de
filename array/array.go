// Package array implements the heap objects of spec.md §3.2: variable-
// length indexable sequences of cells (Array), context pairs of varlist+
// keylist (Context), and paired cells (Paired) sharing one GC node.
//
// Arrays are allocated directly in an arena.Arena — mirroring how the teacher's cells are
// always views over a byte region owned by an HBIN (hive/hbin.go) rather
// than individually heap-allocated structs.
package array

import (
	"fmt"

	"github.com/renfield/evalcore/arena"
	"github.com/renfield/evalcore/cell"
	"github.com/renfield/evalcore/internal/format"
)

// Flags are the array-level bits from spec.md §3.2.
type Flags uint32

const (
	FlagRunning    Flags = 1 << iota // read-locked by a walker (spec.md §4.2)
	FlagHasDynamic                   // backing storage grew past its inline capacity
	FlagVoidsLegal                   // voids may appear in this array (e.g. varlists mid-fulfilment)
	FlagVarlist                      // this array is a context's varlist
	FlagParamlist                    // this array is a function's paramlist/facade
)

// Link and Misc mirror the teacher's HBIN cell side-bands (link/misc
// slots whose *meaning* is flag-dependent, e.g. "misc holds the keylist
// for a varlist, or the underlying function for a paramlist").
type Link uint64
type Misc uint64

// Array is a variable-length, indexable sequence of cells.
type Array struct {
	id    uint64
	ar    *arena.Arena
	off   int // byte offset of cell 0 within ar
	len   int // live element count
	cap   int // capacity in cells
	Link  Link
	Misc  Misc
	Flags Flags
}

// New allocates an array of the given capacity (in cells) out of ar. The
// array is initially empty; Append grows the backing storage itself,
// always keeping one slot free for the end sentinel.
func New(ar *arena.Arena, id uint64, capCells int) (*Array, error) {
	if capCells < 0 {
		return nil, fmt.Errorf("array: negative capacity %d", capCells)
	}
	off, ok := ar.Take(capCells * format.CellSize)
	if !ok {
		return nil, fmt.Errorf("array: failed to reserve %d cells", capCells)
	}
	a := &Array{id: id, ar: ar, off: off, cap: capCells}
	for i := 0; i < capCells; i++ {
		cell.SetEnd(a.cellAt(i))
	}
	return a, nil
}

func (a *Array) cellAt(i int) cell.Cell {
	return cell.At(a.ar.Bytes(a.off, a.cap*format.CellSize), i*format.CellSize)
}

// ID is this array's GC-node identity, used by cell.SetArrayRef /
// cell.ArrayRef and by cell.Specifier implementations keyed on array
// identity.
func (a *Array) ID() uint64 { return a.id }

// Len returns the number of live elements (excluding the implicit end
// terminator spec.md §3.1 describes).
func (a *Array) Len() int { return a.len }

func (a *Array) Cap() int { return a.cap }

// At returns the cell view for index i. Callers must have i < Len() or
// i == Len() (which reads as end, per the implicit-end convention).
func (a *Array) At(i int) cell.Cell {
	if i < 0 || i > a.len {
		panic(fmt.Sprintf("array: index %d out of range (len=%d)", i, a.len))
	}
	return a.cellAt(i)
}

// Append copies src into the next free slot, growing the array's backing
// storage first if needed. Growth takes capacity to cap*2+1, matching
// the "has-dynamic" transition spec.md §3.2 calls out.
func (a *Array) Append(src cell.Cell) error {
	if err := a.CheckMutable(); err != nil {
		return err
	}
	if a.len >= a.cap-1 { // keep one slot free for the end sentinel
		if err := a.grow(); err != nil {
			return err
		}
	}
	cell.CopyCell(a.cellAt(a.len), src)
	a.len++
	cell.SetEnd(a.cellAt(a.len))
	return nil
}

func (a *Array) grow() error {
	newCap := a.cap*2 + 1
	off, ok := a.ar.Take(newCap * format.CellSize)
	if !ok {
		return fmt.Errorf("array: failed to grow to %d cells", newCap)
	}
	oldBytes := a.ar.Bytes(a.off, a.cap*format.CellSize)
	newBytes := a.ar.Bytes(off, newCap*format.CellSize)
	copy(newBytes, oldBytes)
	a.off = off
	a.cap = newCap
	a.Flags |= FlagHasDynamic
	for i := a.len + 1; i < a.cap; i++ {
		cell.SetEnd(a.cellAt(i))
	}
	return nil
}

// IsRunning reports whether a walker currently holds the read-lock.
func (a *Array) IsRunning() bool { return a.Flags&FlagRunning != 0 }

// Lock sets the running flag, reporting false if it was already set (the
// caller must not release a lock it didn't take — spec.md §4.2).
func (a *Array) Lock() (took bool) {
	if a.IsRunning() {
		return false
	}
	a.Flags |= FlagRunning
	return true
}

// Unlock clears the running flag. Only the frame that Lock()'d (took=true)
// may call this.
func (a *Array) Unlock() {
	a.Flags &^= FlagRunning
}

// ErrArrayMutatedWhileRunning is returned by mutation entry points when
// the array is locked by another walker (spec.md §4.2, §5).
var ErrArrayMutatedWhileRunning = fmt.Errorf("array: mutation attempted while running")

// CheckMutable returns ErrArrayMutatedWhileRunning if a is locked.
func (a *Array) CheckMutable() error {
	if a.IsRunning() {
		return ErrArrayMutatedWhileRunning
	}
	return nil
}
