// Package host is the evaluator's external API surface (spec.md §6.2):
// the small set of entry points a host embedding the interpreter calls
// to run code, step it, drive a variadic source, or dispatch a function
// against literal arguments. Grounded on the teacher's pkg/hive public
// API shape — a thin set of functions over the lower-level package
// types, rather than exposing eval.Interpreter's internals directly.
package host

import (
	"fmt"

	"github.com/renfield/evalcore/array"
	"github.com/renfield/evalcore/cell"
	"github.com/renfield/evalcore/eval"
	"github.com/renfield/evalcore/fn"
	"github.com/renfield/evalcore/frame"
)

// sliceFeed adapts a plain []cell.Cell to frame.Indexable, for callers
// (EvalValue, ApplyOnly) that supply arguments the host already holds as
// Go values rather than as a registered *array.Array.
type sliceFeed []cell.Cell

func (s sliceFeed) Len() int            { return len(s) }
func (s sliceFeed) At(i int) cell.Cell { return s[i] }

// DoArrayAt runs arr from index startIndex to the end of its input,
// leaving the final expression's result in out (spec.md §6.2
// do_array_at). specifier resolves any relatively-bound words arr's
// cells carry; nil if arr's words are already specifically bound.
func DoArrayAt(in *eval.Interpreter, arr *array.Array, startIndex int, specifier cell.Specifier, out cell.Cell) error {
	f := frame.Push(frame.NewArrayFeed(arr, startIndex), specifier, nil)
	defer f.Drop()
	return in.Do(f, out)
}

// DoNext advances f by exactly one full expression (spec.md §6.2
// do_next), leaving f positioned to resume. Callers drive repeated calls
// themselves, checking f.AtEnd() between them.
func DoNext(in *eval.Interpreter, f *frame.Frame, out cell.Cell) error {
	return in.EvalNext(f, out, false)
}

// DoVa drains cursor to completion as a single run, the variadic
// counterpart to DoArrayAt (spec.md §6.2 do_va, §4.2 "Variadic feed").
func DoVa(in *eval.Interpreter, cursor frame.VariadicCursor, specifier cell.Specifier, out cell.Cell) error {
	f := frame.Push(frame.NewVariadicFeed(cursor), specifier, nil)
	defer f.Drop()
	return in.Do(f, out)
}

// EvalValue evaluates a single already-in-hand cell as if it were the
// next input cell of some sequence, writing its result to out (spec.md
// §6.2 eval_value). A bare value evaluates to itself; a bound function
// word or a group dispatches/recurses exactly as it would mid-array.
func EvalValue(in *eval.Interpreter, specifier cell.Specifier, val cell.Cell, out cell.Cell) error {
	f := frame.Push(frame.NewArrayFeed(sliceFeed{val}, 0), specifier, nil)
	defer f.Drop()
	return in.Do(f, out)
}

// ApplyOnly dispatches fnObj against args taken literally, in order,
// with no recursive evaluation of each argument cell — spec.md §6.2
// apply_only, the entry point behind the language-level "apply ... fully"
// form exercised by scenario #6 (apply :append [...]). Refinement
// arguments are supplied positionally in facade order, like every other
// parameter; out-of-order refinement pickup (spec.md §4.6) is a path-call
// concern this literal, pre-ordered entry point does not need.
func ApplyOnly(in *eval.Interpreter, fnObj *fn.Function, args []cell.Cell, out cell.Cell) error {
	f := frame.Push(frame.NewArrayFeed(sliceFeed(args), 0), nil, nil)
	defer f.Drop()
	if err := f.FetchNext(); err != nil {
		return fmt.Errorf("host: apply_only %d: %w", fnObj.ID, err)
	}
	if err := in.ApplyOnly(f, fnObj, out); err != nil {
		return fmt.Errorf("host: apply_only %d: %w", fnObj.ID, err)
	}
	return nil
}
