// Package content abstracts read access to original source text and mapping
// documents. The composer and the trace resolver only ever read through a
// Provider, so tests can run entirely in memory and a single failed read
// degrades one entry instead of aborting a batch.
package content

import (
	"io/fs"
	"os"
	"path/filepath"
)

// Provider reads a file by path. Relative paths are interpreted against the
// provider's own base (the directory of the mapping document, usually).
type Provider interface {
	Read(path string) ([]byte, error)
}

type dirProvider struct{ base string }

// Dir returns an os-backed provider that resolves relative paths against
// base. Absolute paths are read as-is.
func Dir(base string) Provider { return dirProvider{base: base} }

func (d dirProvider) Read(path string) ([]byte, error) {
	if !filepath.IsAbs(path) {
		path = filepath.Join(d.base, filepath.FromSlash(path))
	}
	return os.ReadFile(path)
}

// Map is an in-memory provider keyed by path, used in tests and for
// pre-loaded documents.
type Map map[string][]byte

func (m Map) Read(path string) ([]byte, error) {
	if b, ok := m[path]; ok {
		return b, nil
	}
	return nil, fs.ErrNotExist
}
