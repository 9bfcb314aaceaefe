package shape

import (
	"encoding/json"
	"sort"
	"strings"
)

// Observer is notified of inference and emission progress. Both methods are
// optional side effects: a nil Observer (the default) makes the engine
// behave exactly as if nothing were listening. Implementations may stub
// either method.
type Observer interface {
	// FieldDecided fires once a field's type, optionality, name, and
	// summarizer comment have all been resolved.
	FieldDecided(recordName, fieldName string)

	// DeclarationEmitted fires once a record or enum declaration has been
	// fully rendered by the emitter.
	DeclarationEmitted(name string)
}

// noopObserver implements Observer by doing nothing.
type noopObserver struct{}

func (noopObserver) FieldDecided(string, string) {}
func (noopObserver) DeclarationEmitted(string)   {}

// Context owns the registries and configuration for a single inference run.
// It is not safe for concurrent use; independent runs must use independent
// Contexts (§5: the engine is reentrant across independent Contexts).
type Context struct {
	skipComments map[string]struct{}
	rename       map[string]struct{}
	records      *recordRegistry
	enums        *enumRegistry
	observer     Observer
	cache        NameCache
}

func newContext(cfg Config) *Context {
	obs := cfg.Observer
	if obs == nil {
		obs = noopObserver{}
	}
	return &Context{
		skipComments: cfg.SkipComments,
		rename:       cfg.Rename,
		records:      newRecordRegistry(),
		enums:        newEnumRegistry(),
		observer:     obs,
		cache:        cfg.Cache,
	}
}

// cachedOrMinted returns the name the cache previously assigned to sig, if
// any; otherwise it calls mint to produce a fresh one and remembers it for
// future runs. A nil cache makes this a pure passthrough to mint.
func (c *Context) cachedOrMinted(sig string, mint func() string) string {
	if c.cache != nil {
		if name, ok := c.cache.Lookup(sig); ok {
			return name
		}
	}
	name := mint()
	if c.cache != nil {
		c.cache.Remember(sig, name)
	}
	return name
}

// buildRecord collects a key -> children mapping over all objects in values,
// classifies each key's children, and either reuses an existing structurally
// identical RecordDef or registers a new one. It returns the stable record
// name (the caller's candidate name, or the name of the record whose
// signature this one collapsed into).
func (c *Context) buildRecord(name string, values []any) string {
	total := len(values)

	fieldMap := make(map[string][]any)
	for _, v := range values {
		obj, ok := v.(map[string]any)
		if !ok {
			continue
		}
		for k, child := range obj {
			fieldMap[k] = append(fieldMap[k], child)
		}
	}

	keys := make([]string, 0, len(fieldMap))
	for k := range fieldMap {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fields := make([]FieldDef, 0, len(keys))
	for _, key := range keys {
		children := fieldMap[key]
		count := len(children)
		optional := count < total || anyNull(children)

		typeNode := c.determineType(name, key, children)
		emittedName := c.emittedName(name, key)
		needsRenameMark := c.isRenamed(key) || startsWithDigit(key) || emittedName != SnakeCase(key)

		comment, hasComment := c.summarize(typeNode, key, children)

		fields = append(fields, FieldDef{
			OriginalName:    key,
			EmittedName:     emittedName,
			Type:            typeNode,
			Optional:        optional,
			Comment:         comment,
			HasComment:      hasComment,
			NeedsRenameMark: needsRenameMark,
		})

		c.observer.FieldDecided(name, key)
	}

	sig := recordSignature(fields)
	if existing, ok := c.records.lookup(sig); ok {
		return existing
	}
	finalName := c.cachedOrMinted(sig, func() string { return name })
	def := &RecordDef{Name: finalName, Fields: fields}
	c.records.register(sig, def)
	return finalName
}

// determineType classifies the non-null children of one field into a
// TypeNode, per the table in spec §4.2.
func (c *Context) determineType(parent, field string, children []any) TypeNode {
	nn := nonNull(children)
	if len(nn) == 0 {
		return Any{}
	}

	if allKind(nn, isString) {
		return c.stringColumnType(parent, field, nn)
	}
	if allKind(nn, isBool) {
		return Scalar{Kind: ScalarBool}
	}
	if allKind(nn, isNumber) {
		if allInt(nn) {
			return Scalar{Kind: ScalarInt}
		}
		return Scalar{Kind: ScalarFloat}
	}
	if allKind(nn, isArray) {
		return c.arrayColumnType(parent, field, nn)
	}
	if allKind(nn, isObject) {
		return c.objectColumnType(parent, field, nn)
	}
	if allKind(nn, isScalarish) {
		return c.mixedScalarColumnType(parent, field, nn)
	}
	return Any{}
}

func (c *Context) stringColumnType(parent, field string, nn []any) TypeNode {
	distinct := distinctStrings(nn)
	if len(distinct) >= 2 && len(distinct) <= 9 && !c.isSkippedComment(field) {
		return EnumRef{EnumID: c.mintOrReuseStringEnum(parent, field, distinct)}
	}
	return Scalar{Kind: ScalarString}
}

func (c *Context) arrayColumnType(parent, field string, nn []any) TypeNode {
	var elems []any
	for _, v := range nn {
		elems = append(elems, v.([]any)...)
	}

	// allKind is vacuously true when every contributing array was empty, so
	// an all-empty-arrays column still mints (or reuses) a string enum here,
	// just with zero variants — matching original_source, which applies no
	// 2-9 threshold on this nested-array path (unlike the top-level scalar
	// string column, which does).
	if allKind(elems, isString) {
		distinct := distinctStrings(elems)
		return Array{Element: EnumRef{EnumID: c.mintOrReuseStringEnum(parent, field, distinct)}}
	}

	nestedField := field
	if startsWithDigit(field) {
		nestedField = parent + "Elem"
	}
	return Array{Element: c.determineType(parent, nestedField, elems)}
}

func (c *Context) objectColumnType(parent, field string, nn []any) TypeNode {
	var nestedName string
	switch {
	case startsWithDigit(field):
		nestedName = parent + "Elem"
	case c.isRenamed(field):
		nestedName = parent + UpperCamel(field)
	default:
		nestedName = UpperCamel(field)
	}
	return RecordRef{RecordID: c.buildRecord(nestedName, nn)}
}

func (c *Context) mixedScalarColumnType(parent, field string, nn []any) TypeNode {
	kinds := make(map[ScalarKind]struct{})
	for _, v := range nn {
		switch {
		case isString(v):
			kinds[ScalarString] = struct{}{}
		case isBool(v):
			kinds[ScalarBool] = struct{}{}
		case isNumber(v):
			kinds[ScalarInt] = struct{}{}
			kinds[ScalarFloat] = struct{}{}
		}
	}

	sig := scalarMixEnumSignature(kinds)
	if name, ok := c.enums.lookup(sig); ok {
		return EnumRef{EnumID: name}
	}

	variantSet := make(map[string]struct{}, len(kinds))
	for k := range kinds {
		variantSet[k.variantName()] = struct{}{}
	}
	variants := make([]string, 0, len(variantSet))
	for v := range variantSet {
		variants = append(variants, v)
	}
	sort.Strings(variants)

	name := c.cachedOrMinted(sig, func() string { return UpperCamel(parent) + UpperCamel(field) + "Enum" })
	comment := uniqueValuesSummary(nn)
	c.enums.register(sig, &EnumDef{Name: name, Variants: variants, Comment: comment, IsStringEnum: false})
	return EnumRef{EnumID: name}
}

// mintOrReuseStringEnum registers a new string enum for the given sorted,
// distinct variants, or returns the name of an existing one sharing the
// same signature. The signature is global across all fields (§4.2), which
// is what makes P4 (enum share) hold.
func (c *Context) mintOrReuseStringEnum(parent, field string, distinct []string) string {
	sig := stringEnumSignature(distinct)
	if name, ok := c.enums.lookup(sig); ok {
		return name
	}
	name := c.cachedOrMinted(sig, func() string { return UpperCamel(parent) + UpperCamel(field) + "Enum" })
	comment := strings.Join(distinct, ", ")
	c.enums.register(sig, &EnumDef{Name: name, Variants: distinct, Comment: comment, IsStringEnum: true})
	return name
}

func (c *Context) emittedName(recordName, key string) string {
	if c.isRenamed(key) || startsWithDigit(key) {
		return SnakeCase(recordName) + "_" + SnakeCase(key)
	}
	return SnakeCase(key)
}

func (c *Context) isRenamed(key string) bool {
	_, ok := c.rename[key]
	return ok
}

func (c *Context) isSkippedComment(key string) bool {
	_, ok := c.skipComments[key]
	return ok
}

// --- JSON value classification helpers ---
//
// Decoded values arrive as the subset of `any` that encoding/json produces
// with a *json.Decoder configured via UseNumber: nil, bool, json.Number,
// string, []any, and map[string]any. json.Number (rather than float64) is
// what lets allInt classify a column exactly, per §4.2's "representable as
// signed 64-bit integer" rule.

func nonNull(vs []any) []any {
	out := make([]any, 0, len(vs))
	for _, v := range vs {
		if v != nil {
			out = append(out, v)
		}
	}
	return out
}

func anyNull(vs []any) bool {
	for _, v := range vs {
		if v == nil {
			return true
		}
	}
	return false
}

func allKind(vs []any, pred func(any) bool) bool {
	for _, v := range vs {
		if !pred(v) {
			return false
		}
	}
	return true
}

func isString(v any) bool {
	_, ok := v.(string)
	return ok
}

func isBool(v any) bool {
	_, ok := v.(bool)
	return ok
}

func isNumber(v any) bool {
	_, ok := v.(json.Number)
	return ok
}

func isArray(v any) bool {
	_, ok := v.([]any)
	return ok
}

func isObject(v any) bool {
	_, ok := v.(map[string]any)
	return ok
}

func isScalarish(v any) bool {
	return isString(v) || isBool(v) || isNumber(v)
}

func allInt(vs []any) bool {
	for _, v := range vs {
		n := v.(json.Number)
		if _, err := n.Int64(); err != nil {
			return false
		}
	}
	return true
}

func distinctStrings(vs []any) []string {
	seen := make(map[string]struct{})
	for _, v := range vs {
		if s, ok := v.(string); ok {
			seen[s] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

func startsWithDigit(s string) bool {
	return s != "" && s[0] >= '0' && s[0] <= '9'
}
