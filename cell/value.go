package cell

import "encoding/binary"

// Scalar accessors over the payload. Only the handful spec.md's end-to-end
// scenarios exercise (integer, logic) are implemented in full; other
// scalar kinds (decimal, money, date, ...) are out of scope per spec.md
// §1 ("built-in datatype libraries ... only their cell shape matters").

// SetInteger writes an integer payload and sets the kind.
func SetInteger(c Cell, v int64) {
	ResetHeader(c, KindInteger)
	binary.LittleEndian.PutUint64(Payload(c)[:8], uint64(v))
}

// Integer reads an integer payload. Caller must check KindOf(c) first.
func Integer(c Cell) int64 {
	return int64(binary.LittleEndian.Uint64(Payload(c)[:8]))
}

// SetLogic writes a logic payload and sets the kind, including the
// FALSEY cache (spec.md §3.1).
func SetLogic(c Cell, v bool) {
	ResetHeader(c, KindLogic)
	p := Payload(c)
	if v {
		p[0] = 1
	} else {
		p[0] = 0
	}
	SetFalsey(c, KindLogic, v)
}

func Logic(c Cell) bool {
	return Payload(c)[0] != 0
}

// SetBlank marks c as the blank value, the other conditionally-false kind.
func SetBlank(c Cell) {
	ResetHeader(c, KindBlank)
	SetFalsey(c, KindBlank, false)
}

// SetVoid marks c as void. Void is neither truthy nor falsey; asking
// IsConditionalFalse on it is a fault per spec.md §3.1 — callers must
// branch on KindOf(c) == KindVoid before calling IsConditionalFalse.
func SetVoid(c Cell) {
	ResetHeader(c, KindVoid)
}

// WordPayload is the payload shape of word/set-word/get-word/lit-word/
// refinement/issue cells: an interned symbol id in the payload's first
// word, and the binding's context/func id in the cell's Extra word (the
// RELATIVE header flag says which of the two the Extra id names — see
// frame.Specifier for how a running frame supplies the matching context
// during derelativisation).
type WordPayload struct {
	Symbol  uint64
	Binding Binding
}

func SetWord(c Cell, k Kind, sym uint64, b Binding) {
	ResetHeader(c, k)
	p := Payload(c)
	binary.LittleEndian.PutUint64(p[:8], sym)
	SetBinding(c, b)
}

func WordSymbol(c Cell) uint64 {
	return binary.LittleEndian.Uint64(Payload(c)[:8])
}

// SetBinding writes b into c's Extra word and RELATIVE flag, without
// touching kind or payload — usable on both word cells and the
// array-backed aggregate kinds, since spec.md §4.5 describes binding as
// a slot "a word or array cell" both carry.
func SetBinding(c Cell, b Binding) {
	switch {
	case b.IsRelative():
		c.putHeader(c.header().SetRelative())
		SetExtra(c, b.FuncID())
	case b.IsSpecific():
		c.putHeader(c.header().ClearRelative())
		SetExtra(c, b.ContextID())
	default:
		c.putHeader(c.header().ClearRelative())
		SetExtra(c, 0)
	}
}

// GetBinding reconstructs c's Binding from the RELATIVE flag and the
// Extra word SetBinding stored there. A zero Extra with the flag clear
// reads as Unbound, matching an archetype or freshly-reset cell.
func GetBinding(c Cell) Binding {
	id := Extra(c)
	switch {
	case IsRelative(c):
		return Relative(id)
	case id != 0:
		return Specific(id)
	default:
		return Unbound()
	}
}

// SetArrayRef points an aggregate cell (block/group/path/...) at an array
// node identified by arrayID, with the given starting index.
func SetArrayRef(c Cell, k Kind, arrayID uint64, index uint32) {
	ResetHeader(c, k)
	p := Payload(c)
	binary.LittleEndian.PutUint64(p[:8], arrayID)
	binary.LittleEndian.PutUint32(p[8:12], index)
}

func ArrayRef(c Cell) (arrayID uint64, index uint32) {
	p := Payload(c)
	return binary.LittleEndian.Uint64(p[:8]), binary.LittleEndian.Uint32(p[8:12])
}

// SetFunctionRef points a function cell at a function identity.
func SetFunctionRef(c Cell, funcID uint64) {
	ResetHeader(c, KindFunction)
	binary.LittleEndian.PutUint64(Payload(c)[:8], funcID)
}

func FunctionRef(c Cell) uint64 {
	return binary.LittleEndian.Uint64(Payload(c)[:8])
}

// IsAggregate reports whether k is one of the array-backed aggregate
// kinds (spec.md §3.1 kind enumeration, "aggregate" category restricted
// to the ones the evaluator walks: block/group/path family).
func IsAggregate(k Kind) bool {
	switch k {
	case KindBlock, KindGroup, KindPath, KindSetPath, KindGetPath, KindLitPath:
		return true
	default:
		return false
	}
}

// IsWordLike reports whether k is one of the symbolic word kinds.
func IsWordLike(k Kind) bool {
	switch k {
	case KindWord, KindSetWord, KindGetWord, KindLitWord, KindRefinement, KindIssue:
		return true
	default:
		return false
	}
}
