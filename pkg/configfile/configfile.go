// Package configfile loads the inference engine's named options from a
// YAML file.
package configfile

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Options mirrors shape.Config's named options in a form convenient to
// decode from YAML. Callers translate the set-typed fields (SkipComments,
// Rename) into the map-typed sets shape.Config expects.
type Options struct {
	SkipComments        []string `yaml:"skip_comments"`
	Rename              []string `yaml:"rename"`
	GenerateAdapter     bool     `yaml:"generate_adapter"`
	AdapterSourceModule string   `yaml:"adapter_source_module"`
	EnumsImportPath     string   `yaml:"enums_import_path"`
}

// Load reads and parses path. A missing file is not an error: it yields
// the zero-value Options, matching the engine's "ill-typed or missing
// configuration degrades silently" stance.
func Load(path string) (Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Options{}, nil
		}
		return Options{}, fmt.Errorf("configfile: reading %s: %w", path, err)
	}

	var opts Options
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return Options{}, fmt.Errorf("configfile: parsing %s: %w", path, err)
	}
	return opts, nil
}

// SkipCommentsSet returns o.SkipComments as the set shape.Config wants.
func (o Options) SkipCommentsSet() map[string]struct{} {
	return toSet(o.SkipComments)
}

// RenameSet returns o.Rename as the set shape.Config wants.
func (o Options) RenameSet() map[string]struct{} {
	return toSet(o.Rename)
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		set[item] = struct{}{}
	}
	return set
}
