// Package cell implements the fixed-width tagged value cell described in
// spec.md §3.1 and §4.1: a four-machine-word record (header, extra, and a
// two-word payload) plus the pointer-kind oracle used to distinguish a
// live cell from a freed node, an array node, a UTF-8 string, and the
// implicit end sentinel.
//
// The layout mirrors the teacher's hive.Cell (a zero-cost view over an
// on-disk byte range with a signed-size header): a Cell here is a
// zero-cost view over a CellSize-byte region, with typed accessors
// replacing the original's bit-packed union.
package cell

import (
	"encoding/binary"

	"github.com/renfield/evalcore/internal/format"
)

// Kind is the cell's discriminator tag. At most 64 kinds are defined
// (spec.md §3.1), so it fits in the header's low 6 bits alongside the
// pointer-kind oracle pattern (internal/format.kindLowBits).
type Kind byte

const (
	KindTrash Kind = iota // debug-only sentinel; reading it is forbidden

	KindVoid
	KindBlank
	KindLogic
	KindBar
	KindLitBar

	KindInteger
	KindDecimal
	KindPercent
	KindMoney
	KindChar
	KindDate
	KindTime
	KindTuple
	KindPair

	KindWord
	KindSetWord
	KindGetWord
	KindLitWord
	KindRefinement
	KindIssue

	KindBlock
	KindGroup
	KindPath
	KindSetPath
	KindGetPath
	KindLitPath
	KindBinary
	KindString
	KindFile
	KindTag
	KindImage
	KindBitset
	KindVector
	KindMap

	KindObject
	KindModule
	KindError
	KindPort
	KindFrame

	KindFunction

	KindTypeset

	KindHandle
	KindLibrary
	KindStruct
	KindRoutine
	KindGob
	KindEvent
)

// Cell is a zero-cost view over format.CellSize bytes of backing storage.
// Buf is the array (or chunk-stack row) that owns the memory; Off is the
// byte offset of this cell's header within Buf.
type Cell struct {
	Buf []byte
	Off int
}

// At returns a Cell view at the given byte offset. It does not validate
// that the region is prepared; callers that need a fresh writable cell
// should call Reset.
func At(buf []byte, off int) Cell {
	return Cell{Buf: buf, Off: off}
}

func (c Cell) slice(off, n int) []byte {
	return c.Buf[c.Off+off : c.Off+off+n]
}

func (c Cell) header() format.Header {
	return format.Header(binary.LittleEndian.Uint64(c.slice(format.HeaderOffset, format.WordSize)))
}

func (c Cell) putHeader(h format.Header) {
	binary.LittleEndian.PutUint64(c.slice(format.HeaderOffset, format.WordSize), uint64(h))
}

// ResetHeader zeroes all flags, sets kind, and marks the slot as a live,
// non-end, full cell (spec.md §4.1 reset_header).
func ResetHeader(c Cell, k Kind) {
	h := format.Header(0).WithKind(byte(k)).SetNode().SetCell()
	c.putHeader(h)
}

// SetEnd marks c's header as an implicit end sentinel. The payload becomes
// unreadable: only IsEnd is legal on this slot afterwards (spec.md §4.1).
func SetEnd(c Cell) {
	h := format.Header(0).SetNode().SetEnd()
	c.putHeader(h)
}

// IsEnd is legal on any header-shaped word, including ones not backed by a
// full cell (spec.md §4.1 is_end). A slot whose CELL bit is clear and
// whose END bit is set terminates a sequence without occupying a full
// cell — see ClassifyWord.
func IsEnd(c Cell) bool {
	return c.header().IsEnd()
}

// IsTrash reports whether the cell carries the debug-only trash kind.
// Reading IsTrash is always legal; reading Kind of a trash cell is not
// (spec.md §4.1 failure conditions).
func IsTrash(c Cell) bool {
	return !IsEnd(c) && Kind(c.header().Kind()) == KindTrash
}

// KindOf returns the cell's kind. Legal iff !IsEnd(c) && !IsTrash(c)
// (spec.md §8 invariant 1).
func KindOf(c Cell) Kind { return Kind(c.header().Kind()) }

// Flags below expose the header bits spec.md §3.1 lists as contractual.

func IsManaged(c Cell) bool  { return c.header().IsManaged() }
func IsMarked(c Cell) bool   { return c.header().IsMarked() }
func IsRoot(c Cell) bool     { return c.header().IsRoot() }
func IsFalsey(c Cell) bool   { return c.header().IsFalsey() }
func IsUnevaluated(c Cell) bool { return c.header().IsUnevaluated() }
func IsThrown(c Cell) bool   { return c.header().IsThrown() }
func IsRelative(c Cell) bool { return c.header().IsRelative() }
func IsLine(c Cell) bool     { return c.header().IsLine() }

func SetManaged(c Cell)   { c.putHeader(c.header().SetManaged()) }
func SetMarked(c Cell)    { c.putHeader(c.header().SetMarked()) }
func ClearMarked(c Cell)  { c.putHeader(c.header().ClearMarked()) }
func SetRoot(c Cell)      { c.putHeader(c.header().SetRoot()) }
func SetThrown(c Cell)    { c.putHeader(c.header().SetThrown()) }
func ClearThrown(c Cell)  { c.putHeader(c.header().ClearThrown()) }
func SetRelative(c Cell)  { c.putHeader(c.header().SetRelative()) }
func SetLine(c Cell)      { c.putHeader(c.header().SetLine()) }
func SetUnevaluated(c Cell) { c.putHeader(c.header().SetUnevaluated()) }

// SetFalsey recomputes and caches the FALSEY bit from k, per spec.md §3.1:
// set exactly when the cell is blank or logic-false.
func SetFalsey(c Cell, k Kind, logicTrue bool) {
	h := c.header()
	falsey := k == KindBlank || (k == KindLogic && !logicTrue)
	if falsey {
		h = h.SetFalsey()
	} else {
		h = h.ClearFalsey()
	}
	c.putHeader(h)
}

// IsConditionalFalse implements spec.md §8 invariant 2. Asking on a void
// cell is a fault — callers must check KindOf(c) != KindVoid first.
func IsConditionalFalse(c Cell) bool {
	return c.header().IsFalsey()
}

// Extra returns the cell's reserved extra word (spec.md §3.1: binding
// pointer of a word/array, date part of a time, high word of a money
// mantissa, ...).
func Extra(c Cell) uint64 {
	return binary.LittleEndian.Uint64(c.slice(format.ExtraOffset, format.WordSize))
}

func SetExtra(c Cell, v uint64) {
	binary.LittleEndian.PutUint64(c.slice(format.ExtraOffset, format.WordSize), v)
}

// Payload returns the raw two-word payload region for type-specific
// encode/decode (see the kind-specific helpers in value.go).
func Payload(c Cell) []byte {
	return c.slice(format.PayloadOffset, format.PayloadSize)
}

// CopyCell performs a bitwise copy of header+extra+payload from src to
// dst. If src is relative, the caller must route through Derelativize
// instead (spec.md §4.1 copy_cell, §4.5).
func CopyCell(dst, src Cell) {
	copy(dst.slice(0, format.CellSize), src.slice(0, format.CellSize))
}
