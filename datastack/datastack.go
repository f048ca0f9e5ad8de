// Package datastack implements the frame-scoped LIFO spec.md §5 calls the
// "data stack": the home of pending refinement pickups (§4.6) and pending
// set-word/set-path targets (§4.4 "Set-word and set-path deferral").
//
// It follows the same marker/rebalance discipline as chunkstack.Stack
// (spec.md §9 "Chunk stack": "dropping a frame resets the bump pointer to
// its marker") but over a plain Go slice rather than an arena region,
// since spec.md explicitly scopes the data stack's storage strategy out
// of the core and only requires the marker/rebalance contract — slice
// append/truncate is the idiomatic Go way to get that contract without
// inventing a second allocator for a structure with no cell-shaped
// layout requirement.
package datastack

import (
	"github.com/renfield/evalcore/cell"
	"github.com/renfield/evalcore/symbol"
)

// Kind discriminates what an Entry records.
type Kind byte

const (
	// KindRefinementPickup is an out-of-order refinement request, pushed
	// when the evaluator meets a path refinement before the in-order
	// walk reaches its parameter slot (spec.md §4.6).
	KindRefinementPickup Kind = iota
	// KindSetTarget is a deferred set-word/set-path assignment target,
	// pushed before the right-hand side is evaluated (spec.md §4.4).
	KindSetTarget
)

// Entry is one data-stack slot. Only the fields relevant to its Kind are
// meaningful; the rest are zero.
type Entry struct {
	Kind Kind

	// KindRefinementPickup fields.
	Word      symbol.ID
	ParamSlot int // 1-based keylist slot where this refinement's block of args begins

	// KindSetTarget fields.
	Target    cell.Cell // the set-word/set-path cell itself (for error reporting)
	Specifier cell.Specifier
}

// Marker is a snapshot of the stack depth, taken at frame entry and
// restored at frame exit (spec.md §8 invariant 3: "dsp_at_exit(f) =
// dsp_at_entry(f) after a normal return").
type Marker int

// Stack is a single frame chain's data stack. Not safe for concurrent
// use, matching the single-threaded cooperative evaluator (spec.md §5).
type Stack struct {
	entries []Entry
}

// New returns an empty data stack.
func New() *Stack { return &Stack{} }

// Mark returns the current depth.
func (s *Stack) Mark() Marker { return Marker(len(s.entries)) }

// Push appends e and returns its depth before the push (its 0-based
// stack index).
func (s *Stack) Push(e Entry) int {
	i := len(s.entries)
	s.entries = append(s.entries, e)
	return i
}

// At returns the entry at 0-based index i.
func (s *Stack) At(i int) Entry { return s.entries[i] }

// Len returns the current depth.
func (s *Stack) Len() int { return len(s.entries) }

// TruncateTo restores the stack to marker, discarding everything pushed
// since — the "dsp restored to dsp_orig" unwind spec.md §8 invariant 3
// requires on both normal return and throw/fail.
func (s *Stack) TruncateTo(m Marker) {
	s.entries = s.entries[:int(m)]
}

// FindRefinementPickup searches the stack above from for a still-pending
// refinement pickup matching word, removing it and returning its param
// slot if found (spec.md §4.6: "After the in-order walk completes, it
// revisits the stack: for each still-pending refinement it activates that
// slot"). from is typically the frame's DSPOrig so an inner call's own
// pickups are never visible to an outer one.
func (s *Stack) FindRefinementPickup(from int, word symbol.ID) (paramSlot int, found bool) {
	for i := from; i < len(s.entries); i++ {
		e := s.entries[i]
		if e.Kind == KindRefinementPickup && e.Word == word {
			paramSlot = e.ParamSlot
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			return paramSlot, true
		}
	}
	return 0, false
}

// PendingRefinementsAbove reports the still-unconsumed refinement
// pickups above from, in push order — what remains after the in-order
// walk for the §4.6 "revisit the stack" second pass.
func (s *Stack) PendingRefinementsAbove(from int) []Entry {
	var out []Entry
	for i := from; i < len(s.entries); i++ {
		if s.entries[i].Kind == KindRefinementPickup {
			out = append(out, s.entries[i])
		}
	}
	return out
}
