// Package throwfail implements the two non-local control channels of
// spec.md §6: throw (a labelled value unwinding toward a matching catch)
// and fail (an error unwinding to the nearest recovery point, releasing
// every resource a frame acquired along the way).
//
// Both channels are modelled as a single in-flight slot per interpreter
// thread rather than Go's own panic/recover, mirroring the teacher's
// preference for explicit sentinel errors (hive/alloc/errors.go) over
// exceptions: a throw or fail is data returned up the call stack, not a
// control-flow side channel the type system can't see.
package throwfail

import (
	"errors"
	"fmt"

	"github.com/renfield/evalcore/cell"
	"github.com/renfield/evalcore/internal/format"
)

// ErrThrown is returned by eval operations when a throw is in flight. The
// thrown label and value live in the Thread's Thrown slot, not in the
// error itself — mirroring spec.md §6.1's "thread-global sidechannel,
// not the error return".
var ErrThrown = errors.New("throwfail: throw in flight")

// Thread holds the single throw sidechannel an interpreter thread may
// have in flight at once (spec.md §6.1 invariant: "at most one thrown
// value in flight per thread").
type Thread struct {
	thrown    bool
	labelSlot [format.CellSize]byte // backing storage for ThrowReturn's synthetic function-identity label
	label     cell.Cell
	value     cell.Cell
	isReturn  bool // the THROW/CATCH is a well-known RETURN/LEAVE, not a user CATCH target
}

// NewThread returns a Thread with no throw in flight.
func NewThread() *Thread {
	return &Thread{}
}

// Throw sets the sidechannel and marks value's THROWN flag, per spec.md
// §6.1 "throw". It faults if a throw is already in flight: the caller
// must have caught or propagated the previous one first.
func (t *Thread) Throw(label, value cell.Cell) error {
	if t.thrown {
		return fmt.Errorf("throwfail: throw already in flight")
	}
	t.thrown = true
	t.label = label
	t.value = value
	cell.SetThrown(value)
	return ErrThrown
}

// ThrowReturn is Throw with the well-known RETURN/LEAVE label shape,
// recognised by name by Catch callers that implement a function's
// implicit exit rather than a user-visible CATCH (spec.md §6.2).
func (t *Thread) ThrowReturn(funcID uint64, value cell.Cell) error {
	if t.thrown {
		return fmt.Errorf("throwfail: throw already in flight")
	}
	label := cell.At(t.labelSlot[:], 0)
	cell.SetFunctionRef(label, funcID)
	t.thrown = true
	t.label = label
	t.value = value
	t.isReturn = true
	cell.SetThrown(value)
	return ErrThrown
}

// InFlight reports whether a throw is currently unhandled.
func (t *Thread) InFlight() bool { return t.thrown }

// Label returns the thrown label cell. Only legal while InFlight.
func (t *Thread) Label() cell.Cell { return t.label }

// Value returns the thrown payload cell. Only legal while InFlight.
func (t *Thread) Value() cell.Cell { return t.value }

// IsReturnThrow reports whether the in-flight throw is a RETURN/LEAVE
// rather than a user CATCH target.
func (t *Thread) IsReturnThrow() bool { return t.isReturn }

// Catch matches label against the in-flight throw's label using match.
// On a match it clears the sidechannel, clears the THROWN flag on the
// value, copies the value into out, and returns caught=true (spec.md
// §6.1 "catch").
func (t *Thread) Catch(match func(label cell.Cell) bool, out cell.Cell) (caught bool) {
	if !t.thrown {
		return false
	}
	if !match(t.label) {
		return false
	}
	cell.ClearThrown(t.value)
	cell.CopyCell(out, t.value)
	t.thrown = false
	t.label = cell.Cell{}
	t.value = cell.Cell{}
	t.isReturn = false
	return true
}

// CatchReturn matches a throw raised by ThrowReturn for the given
// function identity specifically, ignoring user CATCH labels (spec.md
// §6.2: a function's own RETURN only unwinds as far as its own frame).
func (t *Thread) CatchReturn(funcID uint64, out cell.Cell) (caught bool) {
	if !t.thrown || !t.isReturn {
		return false
	}
	if cell.KindOf(t.label) != cell.KindFunction || cell.FunctionRef(t.label) != funcID {
		return false
	}
	cell.ClearThrown(t.value)
	cell.CopyCell(out, t.value)
	t.thrown = false
	t.label = cell.Cell{}
	t.value = cell.Cell{}
	t.isReturn = false
	return true
}

// Unwinder is the narrow cleanup surface a frame registers so Propagate
// can release whatever it acquired (array read-locks, chunk-stack rows,
// variadic cursors) regardless of which channel is unwinding through it
// — throw or fail (spec.md §6.3 "guaranteed cleanup").
type Unwinder interface {
	Drop()
}

// Propagate runs cleanup and re-returns err unchanged, for callers that
// want a single call site expressing "whatever happened, this frame is
// gone now" (spec.md §6.3). It does not distinguish ErrThrown from an
// ordinary fail error: both require the same cleanup.
func Propagate(u Unwinder, err error) error {
	u.Drop()
	return err
}
