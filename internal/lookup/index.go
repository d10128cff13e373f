// Package lookup builds a binary-searchable index over decoded mapping
// segments and answers generated-position queries with "greatest segment at
// or before the queried column on the same line" semantics.
//
// Conventions:
//   - Queries never fall back to another line: a line with no segments is a
//     miss, reported as (Position{}, false), not an error.
//   - Duplicate columns resolve to the first segment of the run
//     (earliest-wins).
//   - Generated-only segments (no original position) are excluded from the
//     index; they exist in the stream but cannot answer a lookup.
package lookup

import (
	"sort"

	"sourcemap-composer/internal/sourcemap"
)

// Position is a fully resolved original position.
type Position struct {
	Source  string // original file path from the sources table
	Line    int    // 0-based
	Column  int    // 0-based
	Name    string // symbol name, valid only when HasName
	HasName bool
}

// Index holds mapped segments grouped by generated line, each line sorted by
// generated column. It is immutable after New.
type Index struct {
	lines   map[int][]sourcemap.Segment
	sources []string
	names   []string
}

// New builds an index from a decoded segment slice and the document's
// tables. The input slice is not retained.
func New(segs []sourcemap.Segment, sources, names []string) *Index {
	lines := make(map[int][]sourcemap.Segment)
	for _, s := range segs {
		if !s.Mapped() {
			continue
		}
		lines[s.GeneratedLine] = append(lines[s.GeneratedLine], s)
	}
	for ln := range lines {
		row := lines[ln]
		sort.SliceStable(row, func(i, j int) bool {
			return row[i].GeneratedColumn < row[j].GeneratedColumn
		})
		lines[ln] = row
	}
	return &Index{lines: lines, sources: sources, names: names}
}

// Resolve answers a (generated line, generated column) query, both 0-based.
// It returns the original position of the nearest preceding segment on that
// line, or ok=false when the line has no segment at or before the column.
func (ix *Index) Resolve(line, col int) (Position, bool) {
	row := ix.lines[line]
	if len(row) == 0 {
		return Position{}, false
	}
	// First segment with column > col; the answer precedes it.
	i := sort.Search(len(row), func(k int) bool { return row[k].GeneratedColumn > col })
	if i == 0 {
		return Position{}, false
	}
	i--
	// Walk to the head of an equal-column run: earliest-wins.
	for i > 0 && row[i-1].GeneratedColumn == row[i].GeneratedColumn {
		i--
	}
	return ix.position(row[i]), true
}

func (ix *Index) position(s sourcemap.Segment) Position {
	p := Position{
		Line:   s.OriginalLine,
		Column: s.OriginalColumn,
	}
	if s.SourceIndex >= 0 && s.SourceIndex < len(ix.sources) {
		p.Source = ix.sources[s.SourceIndex]
	}
	if s.Named() && s.NameIndex < len(ix.names) {
		p.Name = ix.names[s.NameIndex]
		p.HasName = true
	}
	return p
}
