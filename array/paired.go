package array

import (
	"github.com/renfield/evalcore/arena"
	"github.com/renfield/evalcore/cell"
	"github.com/renfield/evalcore/internal/format"
)

// Paired is two cells sharing one GC node (spec.md §3.2), used for API
// handles and stackable key/value pairs.
type Paired struct {
	off int
	ar  *arena.Arena
}

// NewPaired allocates a fresh paired-cell node.
func NewPaired(ar *arena.Arena) (Paired, error) {
	off, ok := ar.Take(2 * format.CellSize)
	if !ok {
		return Paired{}, ErrAllocFailed
	}
	p := Paired{off: off, ar: ar}
	cell.SetEnd(p.First())
	cell.SetEnd(p.Second())
	return p, nil
}

func (p Paired) First() cell.Cell  { return cell.At(p.ar.Bytes(p.off, 2*format.CellSize), 0) }
func (p Paired) Second() cell.Cell { return cell.At(p.ar.Bytes(p.off, 2*format.CellSize), format.CellSize) }
