package fn

import (
	"fmt"

	"github.com/renfield/evalcore/array"
	"github.com/renfield/evalcore/cell"
	"github.com/renfield/evalcore/datastack"
	"github.com/renfield/evalcore/frame"
)

// Mode controls whether fulfilled arguments are evaluated or passed
// literally (spec.md §4.3 "ARGS_EVALUATE vs NO_ARGS_EVALUATE").
type Mode int

const (
	ModeEvaluate Mode = iota // the normal case: recurse a subframe per argument
	ModeLiteral               // "apply/only": take the current input cell as-is
)

// Evaluator is the narrow callback Fulfil needs back into the evaluator
// loop for normal and soft-quote argument evaluation, kept as an
// interface so this package does not import eval — eval imports fn to
// dispatch calls, so the reverse import would cycle (spec.md §4.4 step 3
// "Normal arguments recurse a subframe").
type Evaluator interface {
	// EvalNext evaluates one full expression from f's input into out. If
	// tight, the recursive step runs with NO_LOOKAHEAD (spec.md §4.4
	// "Tight arguments recurse with NO_LOOKAHEAD set").
	EvalNext(f *frame.Frame, out cell.Cell, tight bool) error
}

// Fulfil walks fn's facade and the call-site frame f in lockstep,
// filling row's argument slots per spec.md §4.4 steps 3-4. ds is the
// caller's data stack, used for refinement pickup (§4.6); floor is the
// depth above which this call's own pickups live (its frame's DSPOrig).
func Fulfil(fn *Function, row *ArgRow, f *frame.Frame, ev Evaluator, mode Mode, ds *datastack.Stack, floor int) error {
	n := fn.Facade.Len()
	state := refineActive // the implicit "main" parameter block is always active
	for slot := 1; slot <= n; slot++ {
		key := fn.Facade.At(slot)
		dst := row.At(slot)
		prefilled := !cell.IsEnd(dst) && cell.KindOf(dst) != cell.KindVoid

		switch key.Class {
		case array.ClassRefinement:
			if prefilled {
				continue // exemplar already decided this refinement's on/off state
			}
			st, err := resolveRefinementState(key, ds, floor)
			if err != nil {
				return err
			}
			state = st
			cell.SetLogic(dst, state == refineActive)
			continue

		case array.ClassLocal, array.ClassReturn, array.ClassLeave:
			cell.SetVoid(dst)
			continue
		}

		if state == refineSkipped {
			if prefilled {
				return ErrExemplarFillsSkipped
			}
			cell.SetVoid(dst)
			continue
		}

		if prefilled {
			continue // step 3's "non-void in the exemplar" case
		}

		if err := fulfilOne(f, ev, mode, key, dst, state); err != nil {
			return err
		}

		if !key.Admits(cell.KindOf(dst)) && cell.KindOf(dst) != cell.KindVoid {
			return fmt.Errorf("%w: parameter %d", ErrTypeMismatch, slot)
		}
	}

	for _, pending := range ds.PendingRefinementsAbove(floor) {
		return fmt.Errorf("fn: refinement pickup for slot %d never consumed: %w", pending.ParamSlot, ErrRefinementUndefined)
	}
	return nil
}

// resolveRefinementState looks up whether the call site requested this
// refinement, via an already-pending pickup (out-of-order, spec.md §4.6)
// or by being the in-order next argument class the caller pre-pushed.
// Fulfil's caller (the path/word dispatch in eval) is responsible for
// pushing a KindRefinementPickup entry for every refinement word it
// meets on the call path before invoking Fulfil; this just drains it.
func resolveRefinementState(key array.Key, ds *datastack.Stack, floor int) (refineState, error) {
	if _, found := ds.FindRefinementPickup(floor, key.Symbol); found {
		return refineActive, nil
	}
	return refineSkipped, nil
}

func fulfilOne(f *frame.Frame, ev Evaluator, mode Mode, key array.Key, dst cell.Cell, state refineState) error {
	switch mode {
	case ModeLiteral:
		return fulfilLiteral(f, key, dst)
	default:
		return fulfilEvaluated(f, ev, key, dst, state)
	}
}

// fulfilLiteral implements "apply/only": the current input cell is
// copied in as-is, honouring endable parameters (spec.md §4.4 "Endable
// parameters tolerate value == end and receive void").
func fulfilLiteral(f *frame.Frame, key array.Key, dst cell.Cell) error {
	if f.AtEnd() {
		if key.Flags&array.KeyEndable != 0 {
			cell.SetVoid(dst)
			return nil
		}
		return ErrArgMissing
	}
	if err := cell.CopyResolved(dst, f.Value, f.Specifier); err != nil {
		return err
	}
	return f.FetchNext()
}

// fulfilEvaluated implements the three call-site evaluation strategies
// spec.md §4.4 step 3 lists: normal (full recursive eval), hard-quote
// (raw, no eval), soft-quote (raw, but groups/get-words/get-paths still
// evaluate), and tight (normal eval with NO_LOOKAHEAD).
func fulfilEvaluated(f *frame.Frame, ev Evaluator, key array.Key, dst cell.Cell, state refineState) error {
	switch key.Class {
	case array.ClassHardQuote:
		return fulfilLiteral(f, key, dst)

	case array.ClassSoftQuote:
		if f.AtEnd() {
			if key.Flags&array.KeyEndable != 0 {
				cell.SetVoid(dst)
				return nil
			}
			return ErrArgMissing
		}
		k := cell.KindOf(f.Value)
		if k == cell.KindGroup || k == cell.KindGetWord || k == cell.KindGetPath {
			return ev.EvalNext(f, dst, false)
		}
		return fulfilLiteral(f, key, dst)

	case array.ClassTight:
		if f.AtEnd() {
			if key.Flags&array.KeyEndable != 0 {
				cell.SetVoid(dst)
				return nil
			}
			return ErrArgMissing
		}
		if err := ev.EvalNext(f, dst, true); err != nil {
			return err
		}
		if state == refineRevoked {
			cell.SetVoid(dst)
		}
		return nil

	default: // ClassNormal
		if f.AtEnd() {
			if key.Flags&array.KeyEndable != 0 {
				cell.SetVoid(dst)
				return nil
			}
			return ErrArgMissing
		}
		if err := ev.EvalNext(f, dst, false); err != nil {
			return err
		}
		if state == refineRevoked {
			cell.SetVoid(dst)
		}
		return nil
	}
}
