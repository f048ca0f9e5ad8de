package array

import (
	"fmt"

	"github.com/renfield/evalcore/arena"
	"github.com/renfield/evalcore/cell"
	"github.com/renfield/evalcore/symbol"
)

// ParamClass is the parameter class tag carried by a typeset key
// (spec.md §3.3).
type ParamClass byte

const (
	ClassNormal ParamClass = iota
	ClassTight
	ClassHardQuote
	ClassSoftQuote
	ClassRefinement
	ClassLocal
	ClassReturn
	ClassLeave
)

// KeyFlags are the per-key flags spec.md §3.3 lists.
type KeyFlags uint16

const (
	KeyHidden KeyFlags = 1 << iota
	KeyUnbindable
	KeyVariadic
	KeyEndable
	KeyDurable
)

// Key is a typeset cell augmented with a symbol name and parameter
// class: the keylist's per-slot metadata (spec.md §3.2, §3.3).
type Key struct {
	Symbol  symbol.ID
	Typeset uint64 // bitmask of admissible kinds, one bit per cell.Kind
	Class   ParamClass
	Flags   KeyFlags
}

// Admits reports whether k is one of the kinds this typeset key allows.
func (key Key) Admits(k cell.Kind) bool {
	if key.Typeset == 0 {
		return true // an empty typeset is unconstrained, matching ANY-VALUE!
	}
	return key.Typeset&(1<<uint(k)) != 0
}

// Keylist is the array of Keys shared by possibly many contexts (spec.md
// §3.2: "Keylists may be shared between contexts"). Slot 0 is reserved
// for an archetype entry mirroring the varlist's slot-0 convention, so
// keylist and varlist indices always agree.
type Keylist struct {
	keys []Key // keys[0] is the archetype slot, unused for lookup
}

// NewKeylist builds a keylist from the given parameter keys, in
// declaration order.
func NewKeylist(keys []Key) *Keylist {
	kl := &Keylist{keys: make([]Key, 1, len(keys)+1)}
	kl.keys = append(kl.keys, keys...)
	return kl
}

func (kl *Keylist) Len() int { return len(kl.keys) - 1 }

// At returns the key at 1-based slot i (slot 0 is the archetype).
func (kl *Keylist) At(i int) Key { return kl.keys[i] }

// IndexOf returns the 1-based slot of sym, or 0 if not present.
func (kl *Keylist) IndexOf(sym symbol.ID) int {
	for i := 1; i < len(kl.keys); i++ {
		if kl.keys[i].Symbol == sym {
			return i
		}
	}
	return 0
}

// Context is an array-backed pair: a varlist (slot 0 archetype + values)
// and a keylist (slot 0 archetype + typeset keys), spec.md §3.2.
type Context struct {
	ID      uint64
	Varlist *Array
	Keylist *Keylist
}

// NewContext allocates a varlist of len(keys)+1 cells (archetype + one
// slot per key) backed by ar, paired with a fresh keylist.
func NewContext(ar *arena.Arena, id uint64, keys []Key) (*Context, error) {
	kl := NewKeylist(keys)
	varlist, err := New(ar, id, kl.Len()+1)
	if err != nil {
		return nil, fmt.Errorf("array: allocate varlist for context %d: %w", id, err)
	}
	varlist.Flags |= FlagVarlist
	// Archetype slot: a frame/object cell referring back to this context.
	cell.SetArrayRef(varlist.At(0), cell.KindFrame, id, 0)
	varlist.len = kl.Len() + 1
	for i := 1; i <= kl.Len(); i++ {
		cell.SetVoid(varlist.At(i))
	}
	return &Context{ID: id, Varlist: varlist, Keylist: kl}, nil
}

// Get returns the value cell bound to sym, or ok=false if sym is not a
// key of this context.
func (c *Context) Get(sym symbol.ID) (cell.Cell, bool) {
	i := c.Keylist.IndexOf(sym)
	if i == 0 {
		return cell.Cell{}, false
	}
	return c.Varlist.At(i), true
}

// Slot returns the value cell at the keylist's 1-based slot i directly,
// for callers (argument fulfilment) that already know the slot from
// walking param/arg cursors in lockstep.
func (c *Context) Slot(i int) cell.Cell { return c.Varlist.At(i) }
