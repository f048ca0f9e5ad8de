// Package fn implements function invocation mechanics: argument
// fulfilment across parameter classes, refinement pickup, specialisation
// via pre-filled exemplar frames, and dispatch (spec.md §3.3, §4.4,
// §4.6, §6.3).
//
// The parameter-class switch in Fulfil is grounded on the teacher's
// hive/alloc.sizeClassFor-style dispatch (internal/format exposes a
// small closed enum the allocator switches on per request) — here the
// enum is array.ParamClass and the "request" is one call-site argument.
package fn

import (
	"errors"
	"fmt"

	"github.com/renfield/evalcore/array"
	"github.com/renfield/evalcore/cell"
	"github.com/renfield/evalcore/chunkstack"
	"github.com/renfield/evalcore/frame"
	"github.com/renfield/evalcore/symbol"
)

// Result mirrors spec.md §6.3's dispatcher return enum. Natives and user
// functions must explicitly return one of these; there is no implicit
// "void means normal".
type Result int

const (
	ResultNormal Result = iota // out holds the result
	ResultThrown                // out holds the label; the thread's sidechannel holds the value
	ResultRedo                   // re-invoke with a possibly-updated function value
)

// Dispatcher is the function implementation surface (spec.md §6.3): a
// handle to the running frame plus the fulfilled argument row.
type Dispatcher interface {
	Call(f *frame.Frame, args *ArgRow) (Result, error)
}

// Function is a callable identity (spec.md §4.4 step 1: "the real arity
// and the real facade against which arguments will be checked").
type Function struct {
	ID uint64

	// Paramlist is this function's own declared spec. Facade is what
	// callers actually check arguments against — for a plain function
	// they are the same keylist; a specialisation's Facade is its
	// underlying function's, cached here so step 1 of §4.4 is a single
	// field read rather than a walk up an adapter/chain link.
	Paramlist *array.Keylist
	Facade    *array.Keylist

	// Exemplar supplies pre-filled argument values for a specialisation
	// (spec.md §4.4 step 2). A non-void slot in Exemplar.Varlist means
	// that parameter is already bound; nil means no specialisation.
	Exemplar *array.Context

	Dispatch Dispatcher

	Lookback bool // enfix: dispatched per spec.md §4.4 "Lookback"
	Durable  bool // varlist allocated in the GC heap, not the chunk stack
}

// ArgRow is the fulfilled argument row a Dispatcher reads and the
// evaluator writes into during fulfilment (spec.md §6.3 "indexed access
// to arguments and refinements").
type ArgRow struct {
	Keylist *array.Keylist
	cells   cellRow
}

// cellRow abstracts over a chunkstack.Row (ephemeral) and an
// array.Context's Varlist (durable), the two backing stores step 2 of
// §4.4 names.
type cellRow interface {
	At(i int) cell.Cell
	Len() int
}

// At returns the argument cell at the keylist's 1-based slot i.
func (r *ArgRow) At(i int) cell.Cell { return r.cells.At(i) }

// Len returns the number of argument slots, including slot 0's unused
// archetype (mirrors array.Keylist's own 1-based convention).
func (r *ArgRow) Len() int { return r.cells.Len() }

// Get returns the argument bound to sym, or ok=false if sym does not
// name one of this row's parameters.
func (r *ArgRow) Get(sym symbol.ID) (cell.Cell, bool) {
	i := r.Keylist.IndexOf(sym)
	if i == 0 {
		return cell.Cell{}, false
	}
	return r.cells.At(i), true
}

// refineState is the three-way state a refinement's argument block can
// be in, spec.md §4.4: "active-and-revokable (true), revoked (false —
// still consumes from source but must yield nothing), and skipped
// (blank — no consumption, assigned void)".
type refineState byte

const (
	refineSkipped refineState = iota
	refineActive
	refineRevoked
)

var (
	// ErrArgMissing is returned when input ends mid-call on a parameter
	// that requires a value and is not endable (spec.md §8 boundary
	// behaviour).
	ErrArgMissing = errors.New("fn: argument missing at end of input")
	// ErrRefinementUndefined is returned when a call-site refinement
	// does not name a parameter of the function's facade.
	ErrRefinementUndefined = errors.New("fn: refinement not defined on function")
	// ErrTypeMismatch is returned when a fulfilled argument's kind is
	// not in its parameter's typeset.
	ErrTypeMismatch = errors.New("fn: argument type mismatch")
	// ErrExemplarFillsSkipped is returned when an exemplar pre-fills a
	// parameter slot under a refinement the call site left skipped
	// (spec.md §4.4: "any exemplar fills trigger an error").
	ErrExemplarFillsSkipped = errors.New("fn: exemplar fills a skipped refinement's argument")
	// ErrLookbackAtStart is returned when a lookback function is
	// discovered with no left argument available (spec.md §8 boundary
	// behaviour).
	ErrLookbackAtStart = errors.New("fn: lookback function at start of input")
)

// AllocateRow reserves the argument row for fn, per spec.md §4.4 step 2:
// durable functions get a managed varlist; everything else is a row
// pushed onto the chunk stack. Every slot not pre-filled by fn.Exemplar
// is left as END, matching the "to be filled" convention the spec
// describes for exemplar gaps.
func AllocateRow(fn *Function, rows *chunkstack.Stack, durable *array.Context) (*ArgRow, error) {
	n := fn.Facade.Len()
	if fn.Durable {
		if durable == nil || durable.Keylist.Len() != n {
			return nil, fmt.Errorf("fn: durable row requested without a matching context")
		}
		if fn.Exemplar != nil {
			copyExemplar(fn, durable.Varlist)
		}
		return &ArgRow{Keylist: fn.Facade, cells: durable.Varlist}, nil
	}
	row, err := rows.Push(n + 1) // +1 for the 1-based archetype slot convention
	if err != nil {
		return nil, fmt.Errorf("fn: allocate argument row: %w", err)
	}
	if fn.Exemplar != nil {
		copyExemplar(fn, row)
	}
	return &ArgRow{Keylist: fn.Facade, cells: row}, nil
}

func copyExemplar(fn *Function, dst cellRow) {
	for i := 1; i <= fn.Exemplar.Keylist.Len(); i++ {
		src := fn.Exemplar.Varlist.At(i)
		if cell.KindOf(src) == cell.KindVoid {
			continue // not pre-filled; Fulfil will gather it from the call site
		}
		cell.CopyCell(dst.At(i), src)
	}
}
