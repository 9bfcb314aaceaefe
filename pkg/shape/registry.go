package shape

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// recordRegistry deduplicates RecordDefs by structural signature (§4.3).
// The backing ordered map gives us both O(1) signature lookup and, via its
// own iteration order, the discovery order required by I6 and P5 — the
// first record to claim a signature wins, and later structurally identical
// records are folded into it rather than appended (§4.3, "collapse is
// greedy in insertion order").
type recordRegistry struct {
	bySignature *orderedmap.OrderedMap[string, string] // signature -> record name
	defs        *orderedmap.OrderedMap[string, *RecordDef]
}

func newRecordRegistry() *recordRegistry {
	return &recordRegistry{
		bySignature: orderedmap.New[string, string](),
		defs:        orderedmap.New[string, *RecordDef](),
	}
}

// lookup returns the name already registered for signature, if any.
func (r *recordRegistry) lookup(signature string) (string, bool) {
	return r.bySignature.Get(signature)
}

// register appends a new RecordDef under the given signature and name. The
// caller must have already confirmed the signature is unclaimed.
func (r *recordRegistry) register(signature string, def *RecordDef) {
	r.bySignature.Set(signature, def.Name)
	r.defs.Set(def.Name, def)
}

// ordered returns the registered RecordDefs in discovery order.
func (r *recordRegistry) ordered() []*RecordDef {
	out := make([]*RecordDef, 0, r.defs.Len())
	for pair := r.defs.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Value)
	}
	return out
}

// enumRegistry deduplicates EnumDefs by variant signature. String-enum and
// scalar-mix-enum signatures share the same namespace (they use disjoint
// prefixes, "StringEnum:" and "E", so no collision is possible between the
// two kinds), matching §4.2's "these signatures are global" rule.
type enumRegistry struct {
	bySignature *orderedmap.OrderedMap[string, string] // signature -> enum name
	defs        *orderedmap.OrderedMap[string, *EnumDef]
}

func newEnumRegistry() *enumRegistry {
	return &enumRegistry{
		bySignature: orderedmap.New[string, string](),
		defs:        orderedmap.New[string, *EnumDef](),
	}
}

func (r *enumRegistry) lookup(signature string) (string, bool) {
	return r.bySignature.Get(signature)
}

func (r *enumRegistry) register(signature string, def *EnumDef) {
	r.bySignature.Set(signature, def.Name)
	r.defs.Set(def.Name, def)
}

func (r *enumRegistry) get(name string) (*EnumDef, bool) {
	return r.defs.Get(name)
}

func (r *enumRegistry) ordered() []*EnumDef {
	out := make([]*EnumDef, 0, r.defs.Len())
	for pair := r.defs.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Value)
	}
	return out
}
