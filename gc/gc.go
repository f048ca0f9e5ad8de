// Package gc specifies the contract the evaluator core owes a garbage
// collector (spec.md §6.4): what must be reachable from the frame chain,
// and which side-band slots on a managed array must be followed. The
// core never frees cells itself; it only marks (and afterwards unmarks)
// the root cells traced from the frame chain around each dispatch.
//
// Mirrors the teacher's dirty.Tracker: a cheap accumulate-now,
// process-later structure (there, dirty byte ranges to flush; here, GC
// roots to trace), kept deliberately free of any real collector logic.
package gc

import "github.com/renfield/evalcore/cell"

// defaultRootCapacity mirrors dirty.defaultRangeCapacity: pre-size for
// the common case to avoid reallocating on every frame push.
const defaultRootCapacity = 64

// Root is one GC-relevant cell slot contributed by a live frame.
type Root struct {
	Cell  cell.Cell
	Label string // e.g. "out", "cell", "value", "pending" — for diagnostics
}

// Roots accumulates the GC-relevant slots of every frame currently on the
// call stack, plus the thrown-arg slot (spec.md §6.4, §3.5).
type Roots struct {
	items []Root
}

// NewRoots returns an empty root set ready for a fresh collection pass.
func NewRoots() *Roots {
	return &Roots{items: make([]Root, 0, defaultRootCapacity)}
}

// Add records one root slot.
func (r *Roots) Add(label string, c cell.Cell) {
	r.items = append(r.items, Root{Cell: c, Label: label})
}

// Len reports how many roots have been accumulated.
func (r *Roots) Len() int { return len(r.items) }

// All returns the accumulated roots for a sweep pass to walk.
func (r *Roots) All() []Root { return r.items }

// Reset clears the accumulated set for reuse across collection cycles.
func (r *Roots) Reset() { r.items = r.items[:0] }

// ArraySideband is the interpretation of an array's Link/Misc slots for
// GC tracing purposes (spec.md §6.4: "follow the link and misc slots
// according to the flags that indicate what they hold").
type ArraySideband int

const (
	SidebandNone ArraySideband = iota
	SidebandKeylist
	SidebandMeta
	SidebandUnderlying
	SidebandFacade
	SidebandHashlist
	SidebandSpecifier
)

// Mark sets the MARKED bit on c for the current GC cycle.
func Mark(c cell.Cell) { cell.SetMarked(c) }

// Unmark clears MARKED, called once per cycle before a fresh trace.
func Unmark(c cell.Cell) { cell.ClearMarked(c) }

// IsMarked reports whether c was reached this cycle.
func IsMarked(c cell.Cell) bool { return cell.IsMarked(c) }
