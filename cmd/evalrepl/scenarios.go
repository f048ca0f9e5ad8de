// Demo programs for the evalrepl driver, built directly out of cell/
// array/fn constructors rather than through a reader — there is no
// text-to-cell lexer in this module (spec.md §1 "Non-goals": parsing is
// a datatype-library concern). Each scenario mirrors one of the worked
// examples carried over from the original evaluator's end-to-end test
// table, reduced to the handful of natives (add, multiply, combine,
// throw, catch) this driver registers itself.
package main

import (
	"errors"
	"fmt"

	"github.com/renfield/evalcore/arena"
	"github.com/renfield/evalcore/array"
	"github.com/renfield/evalcore/cell"
	"github.com/renfield/evalcore/eval"
	"github.com/renfield/evalcore/fn"
	"github.com/renfield/evalcore/frame"
	"github.com/renfield/evalcore/host"
	"github.com/renfield/evalcore/symbol"
	"github.com/renfield/evalcore/throwfail"
)

// world bundles one interpreter instance together with the arena its
// demo programs are built in and the root context the registered
// natives are bound into — the same three-piece setup eval's own tests
// assemble by hand for each case.
type world struct {
	in  *eval.Interpreter
	ar  *arena.Arena
	ctx uint64 // root context id words are bound Specific to
}

func newWorld() (*world, error) {
	ar, err := arena.New(1 << 16)
	if err != nil {
		return nil, fmt.Errorf("evalrepl: allocate arena: %w", err)
	}
	in, err := eval.New(256)
	if err != nil {
		return nil, fmt.Errorf("evalrepl: new interpreter: %w", err)
	}
	ctxID := in.Registry.NextID()
	ctx, err := array.NewContext(ar, ctxID, nil)
	if err != nil {
		return nil, fmt.Errorf("evalrepl: new root context: %w", err)
	}
	in.Registry.PutContext(ctxID, ctx)
	return &world{in: in, ar: ar, ctx: ctxID}, nil
}

// bind registers a native under name in w's root context, growing its
// keylist/varlist by one slot. Small demo programs never bind more than
// a handful of names, so a linear rebuild on each call is unremarkable.
func (w *world) bind(name string, params []array.Key, lookback bool, dispatch fn.Dispatcher) (funcID uint64, sym symbol.ID, err error) {
	sym = w.in.Symbols.Intern(name)
	facade := array.NewKeylist(params)
	funcID = w.in.Registry.NextID()
	fnObj := &fn.Function{ID: funcID, Paramlist: facade, Facade: facade, Dispatch: dispatch, Lookback: lookback}
	w.in.Registry.PutFunction(funcID, facade, fnObj)

	ctx, ok := w.in.Registry.Context(w.ctx)
	if !ok {
		return 0, 0, fmt.Errorf("evalrepl: root context %d vanished", w.ctx)
	}
	keys := make([]array.Key, ctx.Keylist.Len())
	for i := 1; i <= ctx.Keylist.Len(); i++ {
		keys[i-1] = ctx.Keylist.At(i)
	}
	keys = append(keys, array.Key{Symbol: sym})
	grown, err := array.NewContext(w.ar, w.ctx, keys)
	if err != nil {
		return 0, 0, fmt.Errorf("evalrepl: grow root context: %w", err)
	}
	for i := 1; i <= ctx.Keylist.Len(); i++ {
		cell.CopyCell(grown.Varlist.At(i), ctx.Varlist.At(i))
	}
	cell.SetFunctionRef(grown.Varlist.At(grown.Keylist.Len()), funcID)
	w.in.Registry.PutContext(w.ctx, grown)
	return funcID, sym, nil
}

// word builds a cell bound Specific to w's root context for sym.
func (w *world) word(sym symbol.ID) cell.Cell {
	c := cell.At(make([]byte, 64), 0)
	cell.SetWord(c, cell.KindWord, uint64(sym), cell.Specific(w.ctx))
	return c
}

func intCell(v int64) cell.Cell {
	c := cell.At(make([]byte, 64), 0)
	cell.SetInteger(c, v)
	return c
}

// program allocates a fresh array in w's arena and appends cells to it.
func (w *world) program(cells ...cell.Cell) (*array.Array, error) {
	id := w.in.Registry.NextID()
	prog, err := array.New(w.ar, id, len(cells)+1)
	if err != nil {
		return nil, err
	}
	for _, c := range cells {
		if err := prog.Append(c); err != nil {
			return nil, err
		}
	}
	w.in.Registry.PutArray(id, prog)
	return prog, nil
}

// addDispatcher and multiplyDispatcher back the arithmetic lookback
// pair scenario #1 of the original evaluator's end-to-end table
// exercises ("1 + 2 * 3"), reduced to plain word names since this
// module carries no infix-operator lexing.
type arithDispatcher struct {
	op func(a, b int64) int64
}

func (d arithDispatcher) Call(f *frame.Frame, args *fn.ArgRow) (fn.Result, error) {
	a := cell.Integer(args.At(1))
	b := cell.Integer(args.At(2))
	cell.SetInteger(f.Out, d.op(a, b))
	return fn.ResultNormal, nil
}

func twoNormalArgs() []array.Key {
	return []array.Key{{Class: array.ClassNormal}, {Class: array.ClassNormal}}
}

// scenarioPrefixCall runs "add 2 3" as a plain prefix call (no lookback).
func scenarioPrefixCall() (cell.Cell, error) {
	w, err := newWorld()
	if err != nil {
		return cell.Cell{}, err
	}
	_, addSym, err := w.bind("add", twoNormalArgs(), false, arithDispatcher{op: func(a, b int64) int64 { return a + b }})
	if err != nil {
		return cell.Cell{}, err
	}
	prog, err := w.program(w.word(addSym), intCell(2), intCell(3))
	if err != nil {
		return cell.Cell{}, err
	}
	out := intCell(0)
	if err := host.DoArrayAt(w.in, prog, 0, nil, out); err != nil {
		return cell.Cell{}, err
	}
	return out, nil
}

// scenarioLookbackChain runs "2 add 3 multiply 4" with add/multiply both
// lookback-dispatched, left to right: (2 add 3) multiply 4 = 20 — the
// same left-to-right lookback precedence scenario #1 exercises.
func scenarioLookbackChain() (cell.Cell, error) {
	w, err := newWorld()
	if err != nil {
		return cell.Cell{}, err
	}
	_, addSym, err := w.bind("add", twoNormalArgs(), true, arithDispatcher{op: func(a, b int64) int64 { return a + b }})
	if err != nil {
		return cell.Cell{}, err
	}
	_, mulSym, err := w.bind("multiply", twoNormalArgs(), true, arithDispatcher{op: func(a, b int64) int64 { return a * b }})
	if err != nil {
		return cell.Cell{}, err
	}
	prog, err := w.program(intCell(2), w.word(addSym), intCell(3), w.word(mulSym), intCell(4))
	if err != nil {
		return cell.Cell{}, err
	}
	out := intCell(0)
	if err := host.DoArrayAt(w.in, prog, 0, nil, out); err != nil {
		return cell.Cell{}, err
	}
	return out, nil
}

// scenarioEmptyGroup runs a lone empty group, which evaluates to void
// and is passed through unchanged — scenario #4's "do [do []]" reduced
// to the single group this module's Do already drives.
func scenarioEmptyGroup() (cell.Cell, error) {
	w, err := newWorld()
	if err != nil {
		return cell.Cell{}, err
	}
	inner, err := w.program()
	if err != nil {
		return cell.Cell{}, err
	}
	group := cell.At(make([]byte, 64), 0)
	cell.SetArrayRef(group, cell.KindGroup, inner.ID(), 0)
	prog, err := w.program(group)
	if err != nil {
		return cell.Cell{}, err
	}
	out := intCell(-1)
	if err := host.DoArrayAt(w.in, prog, 0, nil, out); err != nil {
		return cell.Cell{}, err
	}
	return out, nil
}

// combineDispatcher stands in for scenario #6's append native: it sums
// its two literal arguments rather than growing a series, since series
// types are a datatype-library concern this evaluator core does not
// implement (spec.md §1 "Non-goals").
type combineDispatcher struct{}

func (combineDispatcher) Call(f *frame.Frame, args *fn.ArgRow) (fn.Result, error) {
	a := cell.Integer(args.At(1))
	b := cell.Integer(args.At(2))
	cell.SetInteger(f.Out, a+b)
	return fn.ResultNormal, nil
}

func twoHardQuoteArgs() []array.Key {
	return []array.Key{{Class: array.ClassHardQuote}, {Class: array.ClassHardQuote}}
}

// scenarioApplyFully dispatches the combine native against literal
// arguments via host.ApplyOnly — scenario #6's "apply :append [...]
// fully=true" (frame-based invocation, no recursive argument
// evaluation).
func scenarioApplyFully() (cell.Cell, error) {
	w, err := newWorld()
	if err != nil {
		return cell.Cell{}, err
	}
	facade := array.NewKeylist(twoHardQuoteArgs())
	funcID := w.in.Registry.NextID()
	fnObj := &fn.Function{ID: funcID, Paramlist: facade, Facade: facade, Dispatch: combineDispatcher{}}
	w.in.Registry.PutFunction(funcID, facade, fnObj)

	out := intCell(0)
	if err := host.ApplyOnly(w.in, fnObj, []cell.Cell{intCell(2), intCell(3)}, out); err != nil {
		return cell.Cell{}, err
	}
	return out, nil
}

// throwDispatcher throws its single argument as both label and value —
// this driver registers no distinct catch-label native, so every catch
// below is a catch-all, matching scenario #7's "catch [throw 5]" (no
// label filtering in that example).
type throwDispatcher struct{ in *eval.Interpreter }

func (d throwDispatcher) Call(f *frame.Frame, args *fn.ArgRow) (fn.Result, error) {
	val := args.At(1)
	if err := d.in.Thread.Throw(val, val); err != nil {
		return fn.ResultNormal, err
	}
	cell.CopyCell(f.Out, val)
	return fn.ResultThrown, nil
}

// catchDispatcher runs its hard-quoted group argument as a nested Do,
// intercepting any throw it raises and writing the stashed value to
// out — scenario #7's "catch [throw 5] -> 5".
type catchDispatcher struct{ in *eval.Interpreter }

func (d catchDispatcher) Call(f *frame.Frame, args *fn.ArgRow) (fn.Result, error) {
	protected := args.At(1)
	arrayID, index := cell.ArrayRef(protected)
	arr, ok := d.in.Registry.Array(arrayID)
	if !ok {
		return fn.ResultNormal, fmt.Errorf("evalrepl: catch body refers to unregistered array %d", arrayID)
	}
	sub := frame.Push(frame.NewArrayFeed(arr, int(index)), f.Specifier, f)
	defer sub.Drop()

	err := d.in.Do(sub, f.Out)
	if errors.Is(err, throwfail.ErrThrown) {
		if d.in.Thread.Catch(func(cell.Cell) bool { return true }, f.Out) {
			return fn.ResultNormal, nil
		}
		return fn.ResultThrown, nil // not ours; let it keep unwinding
	}
	return fn.ResultNormal, err
}

func oneHardQuoteArg() []array.Key {
	return []array.Key{{Class: array.ClassHardQuote}}
}

// scenarioCatchThrow runs "catch [throw 5]" -> 5.
func scenarioCatchThrow() (cell.Cell, error) {
	w, err := newWorld()
	if err != nil {
		return cell.Cell{}, err
	}
	_, throwSym, err := w.bind("throw", []array.Key{{Class: array.ClassNormal}}, false, throwDispatcher{in: w.in})
	if err != nil {
		return cell.Cell{}, err
	}
	_, catchSym, err := w.bind("catch", oneHardQuoteArg(), false, catchDispatcher{in: w.in})
	if err != nil {
		return cell.Cell{}, err
	}

	throwWord := w.word(throwSym)
	body, err := w.program(throwWord, intCell(5))
	if err != nil {
		return cell.Cell{}, err
	}
	group := cell.At(make([]byte, 64), 0)
	cell.SetArrayRef(group, cell.KindGroup, body.ID(), 0)

	prog, err := w.program(w.word(catchSym), group)
	if err != nil {
		return cell.Cell{}, err
	}

	out := intCell(0)
	if err := host.DoArrayAt(w.in, prog, 0, nil, out); err != nil {
		return cell.Cell{}, err
	}
	return out, nil
}

// scenario bundles a name with the builder function the "list" and
// "run" subcommands drive.
type scenario struct {
	name string
	desc string
	run  func() (cell.Cell, error)
}

var scenarios = []scenario{
	{"prefix-call", `add 2 3 -> plain prefix call`, scenarioPrefixCall},
	{"lookback-chain", `2 add 3 multiply 4 -> left-to-right lookback dispatch`, scenarioLookbackChain},
	{"empty-group", `() -> void passes through untouched`, scenarioEmptyGroup},
	{"apply-fully", `apply_only(combine, 2, 3) -> literal-argument dispatch`, scenarioApplyFully},
	{"catch-throw", `catch [throw 5] -> 5`, scenarioCatchThrow},
}

func findScenario(name string) (scenario, bool) {
	for _, s := range scenarios {
		if s.name == name {
			return s, true
		}
	}
	return scenario{}, false
}
