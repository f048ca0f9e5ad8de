package frame

import (
	"fmt"
	"io"

	"github.com/renfield/evalcore/cell"
)

// EvalType classifies Frame.value for the evaluator's dispatch switch
// (spec.md §3.4 "eval_type").
type EvalType int

const (
	EvalEnd EvalType = iota
	EvalLiteral
	EvalWord
	EvalSetWord
	EvalGetWord
	EvalLitWord
	EvalGroup
	EvalBlock
	EvalPath
	EvalSetPath
	EvalGetPath
	EvalFunctionCall
)

// Flags are the mode bits spec.md §4.3 describes. Some are invariants
// over a whole run (NEXT/TO_END, ARGS_EVALUATE, EXECUTE_FRAME, VA_LIST);
// others are per-step scratchpad (LOOKAHEAD).
type Flags uint32

const (
	FlagNext Flags = 1 << iota
	FlagToEnd
	FlagArgsEvaluate
	FlagNoArgsEvaluate
	FlagLookahead
	FlagNoLookahead
	FlagExecuteFrame
	FlagVaList
	FlagTookFrameLock
	FlagNativeHold
)

// Lockable is the subset of array.Array's read-lock protocol a Frame
// needs, kept local so this package does not import array (spec.md §4.2
// "Array feed must be lockable").
type Lockable interface {
	Lock() bool
	Unlock()
}

// Gotten caches a variable lookup from a previous step so a dispatch can
// reuse it instead of re-resolving the same word (spec.md §3.4
// "gotten", §8 invariant 4).
type Gotten struct {
	Valid bool
	Value cell.Cell
}

// Frame is the fixed-size, stack-allocated per-call evaluator state of
// spec.md §3.4.
type Frame struct {
	Scratch cell.Cell // "cell" in spec.md — saved pre-fetch, throw label holder, 1-arg scratch
	Out     cell.Cell // caller-provided output slot

	source      Source
	lockedArray Lockable // non-nil iff this frame took the array's read-lock

	Value cell.Cell // currently-fetched input cell (prefetched)
	atEnd bool
	// pending is a small queue of fetches that override the source, most
	// recent-to-consume first. SetPendingFromVariadic queues two entries:
	// the spliced value, then PendingSentinel so the fetch after it
	// resumes the variadic (spec.md §4.2).
	pending []cell.Cell

	Specifier cell.Specifier // binding context for relatively-bound words

	Gotten Gotten

	Flags    Flags
	EvalType EvalType

	DSPOrig int // data-stack depth at frame entry

	Phase    uint64 // the function identity being executed
	Original uint64 // its interface, for facade lookups
	Binding  uint64 // its closure binding (context id)

	ArgsHead int // start of the argument row
	Varlist  uint64

	Param  int // cursor: current parameter slot
	Arg    int // cursor: current argument slot
	Special int // cursor: exemplar pre-fill slot
	Refine int // cursor: current refinement state

	ExprIndex int // start-of-expression index, for error reporting

	Prior    *Frame // parent frame (newest to oldest)
	OptLabel string // symbol this call was invoked under, "" if anonymous
}

// Push initialises a new frame reading from src, taking src's array
// read-lock if lockable and not already held (spec.md §3.4 "Frame
// lifecycle", §4.2).
func Push(src Source, specifier cell.Specifier, prior *Frame) *Frame {
	f := &Frame{
		source:    src,
		Specifier: specifier,
		Prior:     prior,
		EvalType:  EvalEnd,
	}
	if lockable, ok := src.(Lockable); ok {
		if lockable.Lock() {
			f.lockedArray = lockable
			f.Flags |= FlagTookFrameLock
		}
	}
	return f
}

// Drop releases whatever this frame took on Push: the array lock (if
// this frame was the one that set it) and, by returning, lets the caller
// pop the chunk stack and free or hand off the varlist (spec.md §3.4
// "Frame lifecycle").
func (f *Frame) Drop() {
	if f.Flags&FlagTookFrameLock != 0 && f.lockedArray != nil {
		f.lockedArray.Unlock()
		f.Flags &^= FlagTookFrameLock
		f.lockedArray = nil
	}
}

// FetchNext advances the input by one cell, honouring the pending-splice
// override before falling back to the underlying source (spec.md §4.2).
// It invalidates Gotten, per spec.md §8 invariant 4.
func (f *Frame) FetchNext() error {
	f.Gotten = Gotten{}
	if len(f.pending) > 0 {
		v := f.pending[0]
		f.pending = f.pending[1:]
		if IsPendingSentinel(v) {
			return f.fetchFromSource()
		}
		f.Value = v
		f.atEnd = false
		return nil
	}
	return f.fetchFromSource()
}

func (f *Frame) fetchFromSource() error {
	v, err := f.source.Next()
	if err != nil {
		if err == io.EOF {
			f.atEnd = true
			f.Value = cell.Cell{}
			return nil
		}
		return fmt.Errorf("frame: fetch_next: %w", err)
	}
	f.Value = v
	f.atEnd = false
	return nil
}

// AtEnd reports whether the input is exhausted (spec.md §4.1 is_end,
// applied to the frame's current input position rather than a single
// cell).
func (f *Frame) AtEnd() bool { return f.atEnd }

// SetPending splices v in ahead of the next ordinary fetch — used by
// eval to inject a computed value (spec.md §3.4 "pending", §4.2 "pending
// splice"). If the underlying source is variadic, callers should instead
// use SetPendingFromVariadic so the fetch after the splice correctly
// resumes the variadic feed via the sentinel.
func (f *Frame) SetPending(v cell.Cell) {
	f.pending = []cell.Cell{v}
}

// SetPendingFromVariadic splices v in, then arranges for the fetch
// *after* it to resume the variadic source via PendingSentinel
// (spec.md §4.2).
func (f *Frame) SetPendingFromVariadic(v cell.Cell) {
	f.pending = []cell.Cell{v, PendingSentinel}
}

// peeker is the non-consuming lookahead capability ArrayFeed offers,
// matched structurally so this package's own Peek can use it without a
// new exported interface in source.go.
type peeker interface {
	Peek() (cell.Cell, error)
}

// CanLookback reports whether Peek can answer for this frame's current
// input: false once a pending splice is queued (peeking would see the
// splice, not the source, and callers that care — set-word deferral —
// never peek across one) or when the source itself cannot be rewound
// (spec.md §4.4 "Lookback is suppressed on variadic feeds").
func (f *Frame) CanLookback() bool {
	if len(f.pending) > 0 {
		return false
	}
	_, ok := f.source.(peeker)
	return ok
}

// Peek returns the next cell without advancing the input, for the
// evaluator's one-cell lookback lookahead (spec.md §4.4). Callers must
// check CanLookback first.
func (f *Frame) Peek() (cell.Cell, error) {
	p, ok := f.source.(peeker)
	if !ok {
		return cell.Cell{}, fmt.Errorf("frame: source does not support peek")
	}
	return p.Peek()
}
