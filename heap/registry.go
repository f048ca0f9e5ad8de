// Package heap is the interpreter instance's live-object registry: the
// map from the numeric ids cell bindings and array refs carry (spec.md
// §3.1 Extra word, §4.5 Binding) back to the actual *array.Context /
// *array.Array / *fn.Function they name.
//
// Grounded on the teacher's hive/index.NumericIndex: a handful of plain
// map[uint64]*T tables rather than one generic container, matching the
// teacher's preference for concrete per-entity-kind maps over a generic
// abstraction (hive/index splits nodes/values the same way rather than
// using one keyed-by-type map).
package heap

import (
	"github.com/renfield/evalcore/array"
)

// Registry owns one interpreter instance's id-to-object tables. Per
// spec.md §5 ("Multiple independent interpreter instances may coexist
// ... no sharing is defined"), a Registry is never shared between
// instances.
type Registry struct {
	nextID    uint64
	contexts  map[uint64]*array.Context
	arrays    map[uint64]*array.Array
	functions map[uint64]functionEntry
}

// functionEntry is the narrow slice of fn.Function this package stores:
// the facade keylist and the function itself as an opaque value, so the
// package does not import fn.
type functionEntry struct {
	facadeKeylist *array.Keylist
	opaque        interface{}
}

// New returns an empty registry. Ids start at 1 so the zero value can
// mean "no id" in callers that store ids in plain uint64 fields.
func New() *Registry {
	return &Registry{
		nextID:    1,
		contexts:  make(map[uint64]*array.Context),
		arrays:    make(map[uint64]*array.Array),
		functions: make(map[uint64]functionEntry),
	}
}

// NextID reserves a fresh id for a newly allocated context/array/function.
func (r *Registry) NextID() uint64 {
	id := r.nextID
	r.nextID++
	return id
}

func (r *Registry) PutContext(id uint64, ctx *array.Context) { r.contexts[id] = ctx }

func (r *Registry) Context(id uint64) (*array.Context, bool) {
	ctx, ok := r.contexts[id]
	return ctx, ok
}

func (r *Registry) PutArray(id uint64, a *array.Array) { r.arrays[id] = a }

func (r *Registry) Array(id uint64) (*array.Array, bool) {
	a, ok := r.arrays[id]
	return a, ok
}

// PutFunction registers fn (an opaque value — typically *fn.Function,
// a type this package does not import) under id, along with its facade
// keylist.
func (r *Registry) PutFunction(id uint64, facade *array.Keylist, opaque interface{}) {
	r.functions[id] = functionEntry{facadeKeylist: facade, opaque: opaque}
}

func (r *Registry) Function(id uint64) (opaque interface{}, ok bool) {
	e, ok := r.functions[id]
	if !ok {
		return nil, false
	}
	return e.opaque, true
}

// CallBindings implements cell.Specifier through ResolveRelative: a
// relative word bound to funcID resolves to whichever context is
// currently executing that function — the caller must have registered
// that association via Bind before any cell carrying funcID's relative
// binding is derelativized (spec.md §4.5).
type CallBindings struct {
	byFunc map[uint64]uint64 // funcID -> context id of the currently running call
}

func NewCallBindings() *CallBindings {
	return &CallBindings{byFunc: make(map[uint64]uint64)}
}

func (c *CallBindings) Bind(funcID, contextID uint64) { c.byFunc[funcID] = contextID }

func (c *CallBindings) Unbind(funcID uint64) { delete(c.byFunc, funcID) }

func (c *CallBindings) ResolveRelative(funcID uint64) (uint64, bool) {
	ctxID, ok := c.byFunc[funcID]
	return ctxID, ok
}
