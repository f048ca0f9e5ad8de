package cell

import "github.com/renfield/evalcore/internal/format"

// PointerKind is the result of classifying an arbitrary aligned pointer's
// leading byte, per spec.md §4.1: "constant-time classification of
// arbitrary aligned pointers into {freed node, active value cell, active
// array node, valid UTF-8 string, implicit end sentinel}".
type PointerKind byte

const (
	PointerFreed PointerKind = iota
	PointerActiveCell
	PointerArrayNode
	PointerUTF8String
	PointerEndSentinel
)

// ClassifyLeadByte is the pointer-kind oracle. It is a total, constant-time
// function over a single byte — the byte a reader finds at the address in
// question — and never inspects more than that one byte, matching the
// "constant-time" contract in spec.md §4.1.
//
// Convention (see internal/format.NodeLeadPattern):
//   - A byte matching the node pattern (top two bits 0b10) is a live node.
//     Whether it is a plain cell or an array node is disambiguated by the
//     CELL flag, which the caller reads from the full header once
//     ClassifyLeadByte has confirmed it is safe to do so.
//   - The zero byte is reserved for the implicit end sentinel's spare
//     integer field (see cell.SetEnd).
//   - Any byte that is a legal UTF-8 leading byte and does not match the
//     node pattern is classified as the start of a string.
//   - Freed nodes are poisoned with 0xFF in debug builds (see
//     arena.Poison); a byte equal to that poison value and not matching
//     the node pattern is reported as freed.
func ClassifyLeadByte(b byte) PointerKind {
	switch {
	case b == 0x00:
		return PointerEndSentinel
	case b == freedPoisonByte:
		return PointerFreed
	case format.IsNodeLeadByte(b):
		return PointerActiveCell
	case format.IsUTF8LeadByte(b):
		return PointerUTF8String
	default:
		// A byte that is neither a legal UTF-8 lead byte nor the node
		// pattern nor the poison/end conventions: treat conservatively
		// as freed, since corrupted or stale memory is the only other
		// source of such a byte.
		return PointerFreed
	}
}

// freedPoisonByte is written across freed arena regions in debug builds
// (see arena.Poison) so a dangling read is classified as freed rather
// than misread as live data.
const freedPoisonByte = 0xFF

// Classify inspects a live cell's header and reports whether it is a
// plain value cell or an array node, given that ClassifyLeadByte has
// already confirmed the lead byte carries the node pattern.
func Classify(c Cell) PointerKind {
	h := c.header()
	if h.IsEnd() {
		return PointerEndSentinel
	}
	if !h.IsNode() {
		return PointerFreed
	}
	if h.IsCell() {
		return PointerActiveCell
	}
	return PointerArrayNode
}
