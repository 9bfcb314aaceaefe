// Package regcache persists the signature-to-name mappings minted by a
// schema inference run so that repeated invocations over an evolving
// corpus keep assigning the same names to the same shapes (spec.md's I3
// and P5 extended across process runs, not just within one).
//
// The on-disk format is a flat sequence of (signature, name) pairs; see
// frame.go for the small length-prefixed framing used to write and read
// them. A cold or missing cache file behaves as an empty one: names are
// then minted from the run's own discovery order.
package regcache

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Cache maps structural and enum signatures to their previously assigned
// names. It is not safe for concurrent use.
type Cache struct {
	path    string
	entries map[string]string
	dirty   bool
}

// Open loads path into a Cache. A missing file yields an empty, writable
// Cache rather than an error.
func Open(path string) (*Cache, error) {
	c := &Cache{path: path, entries: make(map[string]string)}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return c, nil
		}
		return nil, fmt.Errorf("regcache: opening %s: %w", path, err)
	}
	defer f.Close()

	if err := c.decode(bufio.NewReader(f)); err != nil {
		return nil, fmt.Errorf("regcache: reading %s: %w", path, err)
	}
	return c, nil
}

// Lookup returns the name previously remembered for signature, if any.
func (c *Cache) Lookup(signature string) (string, bool) {
	name, ok := c.entries[signature]
	return name, ok
}

// Remember records that signature is assigned name. Takes effect on the
// next Flush; a signature already mapped to the same name is a no-op.
func (c *Cache) Remember(signature, name string) {
	if existing, ok := c.entries[signature]; ok && existing == name {
		return
	}
	c.entries[signature] = name
	c.dirty = true
}

// Flush writes the cache to its backing path, atomically, if anything has
// changed since it was opened or last flushed. A no-op on an unmodified
// cache.
func (c *Cache) Flush() error {
	if !c.dirty {
		return nil
	}

	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("regcache: creating %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".regcache-*")
	if err != nil {
		return fmt.Errorf("regcache: creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if err := c.encode(tmp); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("regcache: encoding: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("regcache: closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, c.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("regcache: renaming into place: %w", err)
	}

	c.dirty = false
	return nil
}

func (c *Cache) encode(w io.Writer) error {
	buf := make([]byte, 0, 256)
	for sig, name := range c.entries {
		buf = buf[:0]
		buf = appendField(buf, fieldSignature, sig)
		buf = appendField(buf, fieldName, name)
		if _, err := w.Write(buf); err != nil {
			return err
		}
	}
	return nil
}

// decode reads a sequence of (signature, name) pairs, in the order written
// by encode: a signature field always immediately followed by a name field.
func (c *Cache) decode(r *bufio.Reader) error {
	for {
		sig, err := readField(r, fieldSignature)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading signature: %w", err)
		}
		name, err := readField(r, fieldName)
		if err != nil {
			return fmt.Errorf("reading name: %w", err)
		}
		c.entries[sig] = name
	}
}
