package shape

// Config holds the named options that steer inference and emission
// (spec.md §6). The zero value is a usable default: no keys skipped, no
// renames, adapter generation off.
type Config struct {
	// SkipComments is the set of keys for which the summarizer uses only
	// the first observed value instead of a full distinct-values digest.
	SkipComments map[string]struct{}

	// Rename is the set of keys that must be emitted with a source-name
	// marker and a parent-qualified identifier.
	Rename map[string]struct{}

	// GenerateAdapter selects the adapter-emitting mode: alongside each
	// record, emit a conversion from a namesake external type.
	GenerateAdapter bool

	// AdapterSourceModule is the namespace of the source-side types the
	// adapter converts from. Only meaningful when GenerateAdapter is set.
	AdapterSourceModule string

	// EnumsImportPath is the import path prefix used, in adapter mode, to
	// pull in the enum names from a companion module instead of declaring
	// them inline.
	EnumsImportPath string

	// Observer, if non-nil, is notified of field decisions and emitted
	// declarations. A nil Observer behaves as a no-op.
	Observer Observer

	// Cache, if non-nil, pins record and enum names to their structural
	// signature across repeated invocations over an evolving corpus. A nil
	// Cache makes every run mint names purely from this run's discovery
	// order, as if caching had never been added.
	Cache NameCache
}

// NameCache is the subset of *regcache.Cache that the inference engine
// depends on, kept as an interface here so pkg/shape does not import
// internal/regcache directly.
type NameCache interface {
	Lookup(signature string) (string, bool)
	Remember(signature, name string)
}
