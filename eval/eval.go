// Package eval implements the NEXT/TO_END evaluator loop of spec.md
// §4.3-§4.4: word lookup and dispatch, lookback (enfix) detection,
// set-word/set-path deferral, and group recursion, driving the
// frame/fn/throwfail machinery to a result.
//
// The dispatch switch over cell.Kind is grounded on the teacher's
// hive/cell_resolve.go (a kind-keyed switch resolving a raw cell into
// its typed view before acting on it) — here the "typed view" is which
// evaluator action a kind implies, rather than a decoded Go struct.
package eval

import (
	"errors"
	"fmt"

	"github.com/renfield/evalcore/array"
	"github.com/renfield/evalcore/cell"
	"github.com/renfield/evalcore/chunkstack"
	"github.com/renfield/evalcore/datastack"
	"github.com/renfield/evalcore/fn"
	"github.com/renfield/evalcore/frame"
	"github.com/renfield/evalcore/gc"
	"github.com/renfield/evalcore/heap"
	"github.com/renfield/evalcore/symbol"
	"github.com/renfield/evalcore/throwfail"
)

var (
	// ErrWordNotBound is returned when a word cell's binding resolves to
	// no live context (spec.md §7 "word not bound").
	ErrWordNotBound = errors.New("eval: word not bound")
	// ErrNotAFunction is returned when a path/word resolves to a value
	// in function-call position that is not callable (spec.md §7
	// "non-function in function position").
	ErrNotAFunction = errors.New("eval: value is not a function")
	// ErrLookbackAtStart is returned when a lookback function is
	// encountered with no left argument available (spec.md §8 boundary
	// behaviour).
	ErrLookbackAtStart = errors.New("eval: lookback function at start of input")
	// ErrSetPathGroupInLookback is returned when a set-path containing a
	// group appears as the left operand of a lookback dispatch (spec.md
	// §4.4 "double evaluation hazard").
	ErrSetPathGroupInLookback = errors.New("eval: set-path containing a group cannot be the left of a lookback")
)

// Interpreter is one interpreter instance's evaluator: the live-object
// registry, the relative-binding resolver for the call currently
// running, the single in-flight throw slot, and the shared allocators
// argument fulfilment draws from (spec.md §5 "each interpreter instance
// owns its own heap").
type Interpreter struct {
	Registry *heap.Registry
	Bindings *heap.CallBindings
	Thread   *throwfail.Thread
	Rows     *chunkstack.Stack
	Stack    *datastack.Stack
	Symbols  *symbol.Table

	// Roots is the GC root set traced from the frame chain on every
	// dispatch (spec.md §6.4). A real collector sweeps whatever these
	// roots keep alive; this interpreter only maintains the root set and
	// the mark bits a sweep would consult.
	Roots *gc.Roots
}

// New returns a ready-to-use Interpreter backed by a chunk stack of at
// least minArgCells cells.
func New(minArgCells int) (*Interpreter, error) {
	rows, err := chunkstack.New(minArgCells)
	if err != nil {
		return nil, fmt.Errorf("eval: %w", err)
	}
	return &Interpreter{
		Registry: heap.New(),
		Bindings: heap.NewCallBindings(),
		Thread:   throwfail.NewThread(),
		Rows:     rows,
		Stack:    datastack.New(),
		Symbols:  symbol.New(),
		Roots:    gc.NewRoots(),
	}, nil
}

// traceFrameChain rebuilds the GC root set from f and every frame above
// it on the prior chain, plus the thread's in-flight thrown value
// (spec.md §6.4: "every frame on the chain contributes its cell/out/
// value slots; the thrown-arg slot is a root whenever a throw is in
// flight"). Zero-value cell slots (never written, e.g. an unused
// Scratch) are skipped rather than traced.
func (in *Interpreter) traceFrameChain(f *frame.Frame) {
	in.Roots.Reset()
	for cur := f; cur != nil; cur = cur.Prior {
		if isLiveRoot(cur.Out) {
			in.Roots.Add("out", cur.Out)
		}
		if isLiveRoot(cur.Scratch) {
			in.Roots.Add("scratch", cur.Scratch)
		}
		if !cur.AtEnd() && isLiveRoot(cur.Value) {
			in.Roots.Add("value", cur.Value)
		}
	}
	if in.Thread.InFlight() && isLiveRoot(in.Thread.Value()) {
		in.Roots.Add("thrown", in.Thread.Value())
	}
}

// isLiveRoot reports whether c is backed by real storage — a zero-value
// cell.Cell (an unset Frame field) carries no header to mark and is not
// a root.
func isLiveRoot(c cell.Cell) bool { return c.Buf != nil }

// markRoots sets the GC MARKED bit on every currently traced root,
// tracing the chain first (spec.md §6.4's per-dispatch retrace).
// unmarkRoots clears it again once the dispatch this cycle covers has
// returned, since this interpreter has no sweep phase to do it for us.
func (in *Interpreter) markRoots(f *frame.Frame) {
	in.traceFrameChain(f)
	for _, r := range in.Roots.All() {
		gc.Mark(r.Cell)
	}
}

func (in *Interpreter) unmarkRoots() {
	for _, r := range in.Roots.All() {
		gc.Unmark(r.Cell)
	}
}

// Do runs f to the end of its input, leaving the final expression's
// result in out (spec.md §6.2 do_array_at "full-run entry"). Empty input
// leaves out as void (spec.md §8 boundary behaviour).
func (in *Interpreter) Do(f *frame.Frame, out cell.Cell) error {
	cell.SetVoid(out)
	if err := f.FetchNext(); err != nil {
		return err
	}
	for !f.AtEnd() {
		if err := in.EvalNext(f, out, false); err != nil {
			return err
		}
	}
	return nil
}

// EvalNext implements fn.Evaluator: it evaluates one full expression
// (including any lookback chain, unless tight) from f's current
// position into out (spec.md §6.2 do_next "one-step entry").
func (in *Interpreter) EvalNext(f *frame.Frame, out cell.Cell, tight bool) error {
	if f.AtEnd() {
		cell.SetVoid(out)
		return nil
	}

	if err := in.dispatchOne(f, out); err != nil {
		return err
	}

	if tight {
		return nil
	}
	return in.maybeLookback(f, out)
}

// dispatchOne evaluates exactly the cell currently at f.Value with no
// lookback peek, classifying per spec.md §3.4 eval_type.
func (in *Interpreter) dispatchOne(f *frame.Frame, out cell.Cell) error {
	k := cell.KindOf(f.Value)
	switch k {
	case cell.KindWord:
		return in.evalWord(f, out)

	case cell.KindGetWord:
		val, err := in.lookupWord(f, f.Value)
		if err != nil {
			return err
		}
		if err := cell.CopyResolved(out, val, f.Specifier); err != nil {
			return err
		}
		return f.FetchNext()

	case cell.KindLitWord:
		sym := cell.WordSymbol(f.Value)
		cell.SetWord(out, cell.KindWord, sym, cell.GetBinding(f.Value))
		return f.FetchNext()

	case cell.KindSetWord:
		return in.evalSetWord(f, out)

	case cell.KindGroup:
		return in.evalGroup(f, out)

	case cell.KindPath:
		return in.evalPath(f, out)

	// KindSetPath and KindGetPath fall through to the literal-copy
	// default: path selection/assignment against a non-function target
	// is a datatype-library concern, not the evaluator core (spec.md §1
	// "Non-goals"). Only a bare KindPath naming a function is dispatched.
	default:
		if err := cell.CopyResolved(out, f.Value, f.Specifier); err != nil {
			return err
		}
		return f.FetchNext()
	}
}

// evalWord resolves the word and, if it names a function, invokes it;
// otherwise the bound value is copied to out (spec.md §4.4).
func (in *Interpreter) evalWord(f *frame.Frame, out cell.Cell) error {
	val, err := in.lookupWord(f, f.Value)
	if err != nil {
		return err
	}
	if err := f.FetchNext(); err != nil {
		return err
	}
	if cell.KindOf(val) == cell.KindFunction {
		return in.callFunction(f, val, nil, out)
	}
	return cell.CopyResolved(out, val, f.Specifier)
}

// lookupWord resolves w's binding to a live context and fetches the
// value currently bound to its symbol there, consulting and refreshing
// f.Gotten per spec.md §8 invariant 4.
func (in *Interpreter) lookupWord(f *frame.Frame, w cell.Cell) (cell.Cell, error) {
	if f.Gotten.Valid {
		return f.Gotten.Value, nil
	}
	ctxID, ok := in.resolveContextID(f, cell.GetBinding(w))
	if !ok {
		return cell.Cell{}, ErrWordNotBound
	}
	ctx, ok := in.Registry.Context(ctxID)
	if !ok {
		return cell.Cell{}, ErrWordNotBound
	}
	sym := symbol.ID(cell.WordSymbol(w))
	val, ok := ctx.Get(sym)
	if !ok {
		return cell.Cell{}, ErrWordNotBound
	}
	f.Gotten = frame.Gotten{Valid: true, Value: val}
	return val, nil
}

func (in *Interpreter) resolveContextID(f *frame.Frame, b cell.Binding) (uint64, bool) {
	switch {
	case b.IsSpecific():
		return b.ContextID(), true
	case b.IsRelative():
		if f.Specifier == nil {
			return 0, false
		}
		return f.Specifier.ResolveRelative(b.FuncID())
	default:
		return 0, false
	}
}

// evalSetWord implements spec.md §4.4 "Set-word and set-path deferral":
// the target is pushed, the right-hand side evaluated, then the pending
// assignment performed in LIFO order. A chained set-word (a: b: value)
// recurses through this function for the right-hand side, so the
// innermost target is assigned first and every target receives the same
// value.
func (in *Interpreter) evalSetWord(f *frame.Frame, out cell.Cell) error {
	target := f.Value
	floor := in.Stack.Push(datastack.Entry{Kind: datastack.KindSetTarget, Target: target, Specifier: f.Specifier})
	if err := f.FetchNext(); err != nil {
		return err
	}
	if err := in.EvalNext(f, out, false); err != nil {
		return err
	}
	in.Stack.TruncateTo(datastack.Marker(floor))
	return in.assignWord(f, target, out)
}

func (in *Interpreter) assignWord(f *frame.Frame, target cell.Cell, val cell.Cell) error {
	ctxID, ok := in.resolveContextID(f, cell.GetBinding(target))
	if !ok {
		return ErrWordNotBound
	}
	ctx, ok := in.Registry.Context(ctxID)
	if !ok {
		return ErrWordNotBound
	}
	sym := symbol.ID(cell.WordSymbol(target))
	dst, ok := ctx.Get(sym)
	if !ok {
		return ErrWordNotBound
	}
	cell.CopyCell(dst, val)
	return nil
}

// evalGroup runs a group's contents to completion, as if by an inner Do,
// and writes the final result to out (spec.md §3.1 kind enumeration
// "aggregate"; groups are the one aggregate kind that self-executes).
func (in *Interpreter) evalGroup(f *frame.Frame, out cell.Cell) error {
	arrayID, index := cell.ArrayRef(f.Value)
	arr, ok := in.Registry.Array(arrayID)
	if !ok {
		return fmt.Errorf("eval: group refers to unregistered array %d", arrayID)
	}
	sub := frame.Push(frame.NewArrayFeed(arr, int(index)), f.Specifier, f)
	defer sub.Drop()
	if err := in.Do(sub, out); err != nil {
		return err
	}
	return f.FetchNext()
}

// evalPath resolves a path's leading word and treats every remaining
// segment that is itself a word as a refinement pickup, pushed to the
// data stack before Fulfil runs (spec.md §4.6). Non-refinement path
// segments (indexing into a series) are out of scope for this
// evaluator core — spec.md §1 treats path *selection* semantics for
// non-function targets as belonging to the datatype libraries, not the
// evaluator.
func (in *Interpreter) evalPath(f *frame.Frame, out cell.Cell) error {
	arrayID, index := cell.ArrayRef(f.Value)
	arr, ok := in.Registry.Array(arrayID)
	if !ok {
		return fmt.Errorf("eval: path refers to unregistered array %d", arrayID)
	}
	if arr.Len() == 0 {
		return fmt.Errorf("eval: empty path")
	}
	head := arr.At(int(index))
	val, err := in.lookupWord(f, head)
	if err != nil {
		return err
	}
	if cell.KindOf(val) != cell.KindFunction {
		return ErrNotAFunction
	}
	funcID := cell.FunctionRef(val)
	fnObj, ok := in.functionFor(funcID)
	if !ok {
		return fmt.Errorf("eval: unregistered function %d", funcID)
	}

	floor := in.Stack.Mark()
	for i := int(index) + 1; i < arr.Len(); i++ {
		seg := arr.At(i)
		if cell.KindOf(seg) != cell.KindWord && cell.KindOf(seg) != cell.KindRefinement {
			continue
		}
		sym := symbol.ID(cell.WordSymbol(seg))
		slot := fnObj.Facade.IndexOf(sym)
		if slot == 0 {
			in.Stack.TruncateTo(floor)
			return fn.ErrRefinementUndefined
		}
		in.Stack.Push(datastack.Entry{Kind: datastack.KindRefinementPickup, Word: sym, ParamSlot: slot})
	}

	if err := f.FetchNext(); err != nil {
		return err
	}
	return in.invoke(f, fnObj, nil, out, fn.ModeEvaluate)
}

func (in *Interpreter) functionFor(funcID uint64) (*fn.Function, bool) {
	opaque, ok := in.Registry.Function(funcID)
	if !ok {
		return nil, false
	}
	fnObj, ok := opaque.(*fn.Function)
	return fnObj, ok
}

// callFunction invokes the function named by val, with no left argument
// (a plain prefix call), per spec.md §4.4.
func (in *Interpreter) callFunction(f *frame.Frame, val cell.Cell, left *cell.Cell, out cell.Cell) error {
	funcID := cell.FunctionRef(val)
	fnObj, ok := in.functionFor(funcID)
	if !ok {
		return fmt.Errorf("eval: unregistered function %d", funcID)
	}
	if fnObj.Lookback && left == nil {
		return fmt.Errorf("%w: %w", ErrLookbackAtStart, fn.ErrLookbackAtStart)
	}
	return in.invoke(f, fnObj, left, out, fn.ModeEvaluate)
}

// ApplyOnly dispatches fnObj against arguments read literally (no
// recursive evaluation) from f's current input, per spec.md §6.2
// apply_only / the "fully" apply variant exercised by host.ApplyOnly.
func (in *Interpreter) ApplyOnly(f *frame.Frame, fnObj *fn.Function, out cell.Cell) error {
	return in.invoke(f, fnObj, nil, out, fn.ModeLiteral)
}

// invoke allocates the argument row, optionally pre-fills its first
// argument slot with left (the lookback left-hand value), fulfils the
// remaining arguments under mode, dispatches, and pops the row off the
// chunk stack (spec.md §4.4 steps 2, 5, 6). The row is popped only on a
// normal return: after an error or a throw (whose value may live in the
// row) it stays allocated until an enclosing call's normal return pops it.
func (in *Interpreter) invoke(f *frame.Frame, fnObj *fn.Function, left *cell.Cell, out cell.Cell, mode fn.Mode) error {
	floor := in.Stack.Mark()
	rowMark := in.Rows.Mark()
	row, err := fn.AllocateRow(fnObj, in.Rows, nil)
	if err != nil {
		return err
	}
	if left != nil {
		if err := fillLeftArg(fnObj, row, *left); err != nil {
			return err
		}
	}

	savedOut := f.Out
	f.Out = out
	defer func() { f.Out = savedOut }()

	if err := fn.Fulfil(fnObj, row, f, in, mode, in.Stack, int(floor)); err != nil {
		in.Stack.TruncateTo(floor)
		return err
	}

	in.markRoots(f)
	result, err := fnObj.Dispatch.Call(f, row)
	in.unmarkRoots()
	in.Stack.TruncateTo(floor)
	if err != nil {
		return err
	}
	if result == fn.ResultThrown {
		return throwfail.ErrThrown
	}
	in.Rows.Drop(rowMark)
	return nil
}

// fillLeftArg seeds the first argument-taking slot of row (any class
// other than refinement, local, return or leave) with left, so
// Fulfil's prefilled-skip logic treats it as already supplied — the
// mechanism spec.md §4.4 "Lookback" describes as writing "out as its
// first (left) argument".
func fillLeftArg(fnObj *fn.Function, row *fn.ArgRow, left cell.Cell) error {
	for slot := 1; slot <= fnObj.Facade.Len(); slot++ {
		key := fnObj.Facade.At(slot)
		switch key.Class {
		case array.ClassRefinement, array.ClassLocal, array.ClassReturn, array.ClassLeave:
			continue
		}
		cell.CopyCell(row.At(slot), left)
		return nil
	}
	return fmt.Errorf("eval: lookback function has no argument slot for its left operand")
}

// maybeLookback inspects the already-prefetched next input cell (f.Value)
// after a value has been written to out; if it is a word resolving to a
// lookback function, dispatches it with out as its left argument
// (spec.md §4.4 "Lookback").
func (in *Interpreter) maybeLookback(f *frame.Frame, out cell.Cell) error {
	if !f.CanLookback() {
		return nil // variadic feeds cannot rewind; lookback is suppressed
	}
	if f.AtEnd() {
		return nil // end of input
	}
	peeked := f.Value
	if cell.KindOf(peeked) != cell.KindWord {
		return nil
	}
	val, err := in.lookupWord(f, peeked)
	if err != nil {
		return nil // not a bound word here; leave it for the next top-level step
	}
	if cell.KindOf(val) != cell.KindFunction {
		return nil
	}
	funcID := cell.FunctionRef(val)
	fnObj, ok := in.functionFor(funcID)
	if !ok || !fnObj.Lookback {
		return nil
	}

	left := cell.At(make([]byte, 64), 0)
	cell.CopyCell(left, out)

	if err := f.FetchNext(); err != nil { // consume the lookback word
		return err
	}
	return in.invoke(f, fnObj, &left, out, fn.ModeEvaluate)
}
