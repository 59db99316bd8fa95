package translate

import (
	"go.uber.org/zap"

	"github.com/strandlabs/binmsg/errors"
)

// Built-in leaf types. Sizes are the in-record footprints consumed from the
// input stream; string-typed entries occupy an offset pair and carry their
// bodies in the string arena.
var primitiveTypes = []struct {
	name     string
	size     int
	isString bool
}{
	{"bool", 1, false},
	{"uint8", 1, false},
	{"int8", 1, false},
	{"uint16", 2, false},
	{"int16", 2, false},
	{"uint32", 4, false},
	{"int32", 4, false},
	{"uint64", 8, false},
	{"int64", 8, false},
	{"float32", 4, false},
	{"float64", 8, false},
	{"time", 8, false},
	{"duration", 8, false},
	{"string", offsetPairSize, true},
	{"json", offsetPairSize, true},
}

// Registry is an insertion-ordered mapping from type name to owned
// definition. Definitions live exactly as long as the registry; fields hold
// non-owning back-references into the same registry.
//
// Registration is two-phase: definitions are created and populated in any
// order, then FinalizeAll resolves references, computes sizes, and compiles
// command buffers in one batch.
type Registry struct {
	defs  map[string]*Definition
	order []string
}

// NewRegistry returns a registry pre-seeded with the built-in primitives.
func NewRegistry() *Registry {
	r := &Registry{
		defs: make(map[string]*Definition, len(primitiveTypes)),
	}
	for _, p := range primitiveTypes {
		r.insert(newDefinition(p.name, p.size, p.isString))
	}
	return r
}

func (r *Registry) insert(def *Definition) {
	if _, ok := r.defs[def.name]; !ok {
		r.order = append(r.order, def.name)
	}
	r.defs[def.name] = def
}

// Create inserts a fresh, empty definition under name, replacing any existing
// entry while keeping its insertion slot. The returned pointer is stable for
// the registry's lifetime.
func (r *Registry) Create(name string) *Definition {
	def := newDefinition(name, 0, false)
	r.insert(def)
	return def
}

// Get returns the definition registered under name, or nil. Absence is not an
// error during registration; references are checked by FinalizeAll.
func (r *Registry) Get(name string) *Definition {
	return r.defs[name]
}

// Len returns the number of registered definitions, primitives included.
func (r *Registry) Len() int {
	return len(r.order)
}

// Names returns the registered type names in insertion order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// FinalizeAll finalizes every definition, failing on the first invalid one
// and surfacing its name. Iteration order does not matter: Finalize is
// idempotent and resolves dependencies on demand.
func (r *Registry) FinalizeAll() error {
	for _, name := range r.order {
		if err := r.defs[name].Finalize(r); err != nil {
			Logger().Warn("invalid definition", zap.String("type", name), zap.Error(err))
			return errors.New(errors.PhaseFinalize, errors.KindInvalidDefinition).
				TypeName(name).
				Cause(err).
				Build()
		}
	}
	return nil
}
