package cell

import "errors"

// Binding models spec.md §4.5: a word or array cell's binding slot is
// either a context (specific), a function identity (relative — must be
// resolved against a matching frame), or absent (unbound).
type Binding struct {
	kind      bindingKind
	contextID uint64
	funcID    uint64
}

type bindingKind byte

const (
	bindingUnbound bindingKind = iota
	bindingSpecific
	bindingRelative
)

func Unbound() Binding                { return Binding{kind: bindingUnbound} }
func Specific(contextID uint64) Binding { return Binding{kind: bindingSpecific, contextID: contextID} }
func Relative(funcID uint64) Binding    { return Binding{kind: bindingRelative, funcID: funcID} }

func (b Binding) IsUnbound() bool  { return b.kind == bindingUnbound }
func (b Binding) IsSpecific() bool { return b.kind == bindingSpecific }
func (b Binding) IsRelative() bool { return b.kind == bindingRelative }

func (b Binding) ContextID() uint64 { return b.contextID }
func (b Binding) FuncID() uint64    { return b.funcID }

// Specifier is anything that can resolve a Binding.IsRelative() binding to
// a specific one: a running frame whose function identity matches, or a
// context that has already absorbed the relative body (e.g. after a
// function was specialised and its body rebound).
type Specifier interface {
	// ResolveRelative returns the context id bound to funcID, or ok=false
	// if this specifier cannot resolve that function identity — which is
	// a corruption per spec.md §4.5 ("a relative cell never appears
	// outside the deep-copied body of its function").
	ResolveRelative(funcID uint64) (contextID uint64, ok bool)
}

// Derelativize resolves src's binding (read via GetBinding) through
// specifier and writes the result into dst, along with a bitwise copy of
// the rest of the cell (spec.md §4.1 copy_cell, §4.5 derelativize). A
// specific or unbound cell copied through Derelativize is unaffected:
// the rebind is only meaningful for a relative source.
func Derelativize(dst, src Cell, specifier Specifier) (Binding, bool) {
	CopyCell(dst, src)
	binding := GetBinding(src)
	if !binding.IsRelative() {
		return binding, true
	}
	ctxID, ok := specifier.ResolveRelative(binding.FuncID())
	if !ok {
		return binding, false
	}
	SetBinding(dst, Specific(ctxID))
	return Specific(ctxID), true
}

// ErrUnresolvedRelative is returned by CopyResolved when src carries a
// relative binding and either no specifier was supplied or the
// specifier cannot resolve it — a corruption per spec.md §4.5 ("a
// relative cell never appears outside the deep-copied body of its
// function").
var ErrUnresolvedRelative = errors.New("cell: relative cell with no matching specifier")

// CopyResolved copies src into dst, resolving a relative binding through
// specifier if src carries one (spec.md §4.1 copy_cell, §4.5). Scalar
// kinds with no binding slot, and already-specific/unbound cells, are a
// plain bitwise copy — the common path callers hit on every non-word,
// non-aggregate value.
func CopyResolved(dst, src Cell, specifier Specifier) error {
	if !IsWordLike(KindOf(src)) && !IsAggregate(KindOf(src)) {
		CopyCell(dst, src)
		return nil
	}
	if !IsRelative(src) {
		CopyCell(dst, src)
		return nil
	}
	if specifier == nil {
		return ErrUnresolvedRelative
	}
	if _, ok := Derelativize(dst, src, specifier); !ok {
		return ErrUnresolvedRelative
	}
	return nil
}
