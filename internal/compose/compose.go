// Package compose derives a direct stage0→stage2 mapping from two mapping
// documents: A (stage0→stage1) and B (stage1→stage2).
//
// Algorithm:
//  1. Decode both documents (a malformed stream is fatal to the call).
//  2. Build a position resolver over A. The build completes before any
//     segment of B is resolved (strict two-phase ordering).
//  3. For every segment of B that carries an original position, query A at
//     that (stage1) position. On a hit, emit a segment at B's generated
//     position pointing at A's original position and source; A's symbol
//     name wins over B's when both exist. On a miss, drop the segment: the
//     true origin is unknowable and a stage1-relative guess would mislead.
//  4. Merge the sources/names tables with exact-string dedup, re-basing all
//     emitted indices onto the merged tables.
//
// Inputs are never mutated; the result is a brand-new document. Structural
// mismatch between A and B degrades to per-segment misses, never a fault.
package compose

import (
	"fmt"

	"sourcemap-composer/internal/content"
	"sourcemap-composer/internal/lookup"
	"sourcemap-composer/internal/sourcemap"
	"sourcemap-composer/internal/validate"
)

// Options controls content read-through during composition.
type Options struct {
	// Provider reads original source text for sources of A whose content is
	// not embedded, so it can be embedded into the composed document.
	// nil disables the read-through; a failed read skips that one source.
	Provider content.Provider
}

// Compose produces the stage0→stage2 document from a (stage0→stage1) and
// b (stage1→stage2).
func Compose(a, b *sourcemap.Document, opt Options) (*sourcemap.Document, error) {
	aSegs, err := decodeChecked(a)
	if err != nil {
		return nil, fmt.Errorf("first mapping: %w", err)
	}
	bSegs, err := decodeChecked(b)
	if err != nil {
		return nil, fmt.Errorf("second mapping: %w", err)
	}

	ix := lookup.New(aSegs, a.Sources, a.Names)
	tb := newTables()
	loader := newContentLoader(a, opt.Provider)

	out := make([]sourcemap.Segment, 0, len(bSegs))
	for _, seg := range bSegs {
		if !seg.Mapped() {
			continue
		}
		pos, ok := ix.Resolve(seg.OriginalLine, seg.OriginalColumn)
		if !ok {
			continue
		}

		srcIdx := tb.source(pos.Source, loader)

		nameIdx := -1
		switch {
		case pos.HasName:
			nameIdx = tb.name(pos.Name)
		case seg.Named():
			nameIdx = tb.name(b.Names[seg.NameIndex])
		}

		out = append(out, sourcemap.Segment{
			GeneratedLine:   seg.GeneratedLine,
			GeneratedColumn: seg.GeneratedColumn,
			SourceIndex:     srcIdx,
			OriginalLine:    pos.Line,
			OriginalColumn:  pos.Column,
			NameIndex:       nameIdx,
		})
	}

	return sourcemap.NewDocument(b.File, tb.sources, tb.contents, tb.names, out), nil
}

func decodeChecked(d *sourcemap.Document) ([]sourcemap.Segment, error) {
	if err := validate.Document(d); err != nil {
		return nil, err
	}
	return sourcemap.Decode(d)
}

// tables accumulates the merged, deduplicated sources/names tables.
// Dedup is by exact string equality; tables are append-only.
type tables struct {
	sources  []string
	contents []*string
	names    []string
	srcIdx   map[string]int
	nameIdx  map[string]int
}

func newTables() *tables {
	return &tables{
		srcIdx:  make(map[string]int),
		nameIdx: make(map[string]int),
	}
}

// source interns path and, on first insertion, attaches its content via the
// loader (embedded text first, then read-through).
func (t *tables) source(path string, loader *contentLoader) int {
	if i, ok := t.srcIdx[path]; ok {
		return i
	}
	i := len(t.sources)
	t.srcIdx[path] = i
	t.sources = append(t.sources, path)
	t.contents = append(t.contents, loader.load(path))
	return i
}

func (t *tables) name(n string) int {
	if i, ok := t.nameIdx[n]; ok {
		return i
	}
	i := len(t.names)
	t.nameIdx[n] = i
	t.names = append(t.names, n)
	return i
}

// contentLoader serves original text for sources of A: embedded
// sourcesContent wins, otherwise the provider is consulted once per path.
// A failed read is non-fatal and leaves the entry nil.
type contentLoader struct {
	embedded map[string]*string
	provider content.Provider
}

func newContentLoader(a *sourcemap.Document, p content.Provider) *contentLoader {
	embedded := make(map[string]*string, len(a.Sources))
	for i, s := range a.Sources {
		if _, seen := embedded[s]; seen {
			continue
		}
		if c, ok := a.SourceContent(i); ok {
			cc := c
			embedded[s] = &cc
		}
	}
	return &contentLoader{embedded: embedded, provider: p}
}

func (l *contentLoader) load(path string) *string {
	if c, ok := l.embedded[path]; ok {
		return c
	}
	if l.provider == nil {
		return nil
	}
	b, err := l.provider.Read(path)
	if err != nil {
		return nil
	}
	s := string(b)
	return &s
}
