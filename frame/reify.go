package frame

import (
	"io"

	"github.com/renfield/evalcore/cell"
)

// ArrayBuilder is the minimal surface Reify needs to materialise a fresh
// array — satisfied structurally by array.Array, kept narrow so this
// package does not import array (mirrors Indexable in source.go).
type ArrayBuilder interface {
	Indexable
	Append(c cell.Cell) error
}

// TruncationSentinelSymbol identifies the word Reify prepends when
// earlier variadic arguments were already consumed before reification,
// so a debugger sees that the array is a partial record rather than the
// whole call (spec.md §4.2 "Reification").
const TruncationSentinelSymbol = "...already-consumed..."

// Reify drains a variadic feed into a fresh array, rewrites the frame's
// source to read from that array instead, and ends the underlying
// platform cursor exactly once (spec.md §4.2).
//
// build must already contain the truncation sentinel (if the caller
// wants one prepended) before Reify is called; Reify only drains and
// appends what remains of the variadic feed.
func Reify(f *Frame, build ArrayBuilder) error {
	vf, ok := f.source.(*VariadicFeed)
	if !ok {
		return nil // nothing to do; already array-backed
	}
	for {
		v, err := vf.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		if err := build.Append(v); err != nil {
			return err
		}
	}
	f.source = NewArrayFeed(build, 0)
	f.Flags &^= FlagVaList
	return nil
}
