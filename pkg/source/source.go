// Package source loads JSON sample records from a directory tree.
package source

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// LoadTrees walks each of roots and decodes every *.json file found under
// it into a JSON value, using json.Number so the inference engine can
// classify integer-vs-float columns exactly rather than through
// floating-point round-tripping. A root that does not exist contributes no
// records and is not an error — the caller may point at directories that
// simply haven't been populated yet.
//
// Files are visited in lexical path order within each root, so the
// resulting slice's order is stable across repeated runs over an unchanged
// tree.
func LoadTrees(roots ...string) ([]any, error) {
	var records []any
	for _, root := range roots {
		found, err := loadTree(root)
		if err != nil {
			return nil, err
		}
		records = append(records, found...)
	}
	return records, nil
}

func loadTree(root string) ([]any, error) {
	if _, err := os.Stat(root); os.IsNotExist(err) {
		return nil, nil
	}

	var paths []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if filepath.Ext(path) == ".json" {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("source: walking %s: %w", root, err)
	}
	sort.Strings(paths)

	records := make([]any, 0, len(paths))
	for _, path := range paths {
		values, err := loadFile(path)
		if err != nil {
			return nil, err
		}
		records = append(records, values...)
	}
	return records, nil
}

// loadFile decodes path as either a single JSON value or, when the
// top-level value is an array, each of its elements individually — so a
// file holding one record and a file holding a batch of records both
// contribute flat entries to the result.
func loadFile(path string) ([]any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("source: opening %s: %w", path, err)
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("source: decoding %s: %w", path, err)
	}

	if arr, ok := v.([]any); ok {
		return arr, nil
	}
	return []any{v}, nil
}
