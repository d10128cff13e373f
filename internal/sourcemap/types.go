// Package sourcemap implements the source map v3 document model and the
// base64-VLQ segment stream codec (decode and encode).
package sourcemap

import "fmt"

// Version is the only mapping format revision this package understands.
const Version = 3

// Document is the persisted/wire form of a mapping between two versions of
// a text artifact. Sources and Names are order-significant lookup tables;
// SourcesContent, when present, pairs with Sources by index.
type Document struct {
	Version        int       `json:"version"`                  // always 3
	File           string    `json:"file,omitempty"`           // output file name (optional)
	SourceRoot     string    `json:"sourceRoot,omitempty"`     // optional prefix for Sources entries
	Sources        []string  `json:"sources"`                  // original file paths (order significant)
	SourcesContent []*string `json:"sourcesContent,omitempty"` // original text, parallel to Sources; nil entry = not embedded
	Names          []string  `json:"names"`                    // symbol names referenced by segments
	Mappings       string    `json:"mappings"`                 // base64-VLQ segment stream
}

// Segment is one decoded mapping entry. Generated and original positions are
// 0-based. SourceIndex, OriginalLine, OriginalColumn and NameIndex use -1
// for "absent": a segment with SourceIndex == -1 is a generated-only marker
// (injected code) that carries no original position.
type Segment struct {
	GeneratedLine   int
	GeneratedColumn int
	SourceIndex     int
	OriginalLine    int
	OriginalColumn  int
	NameIndex       int
}

// Mapped reports whether the segment carries an original position.
func (s Segment) Mapped() bool { return s.SourceIndex >= 0 }

// Named reports whether the segment references a symbol name.
func (s Segment) Named() bool { return s.NameIndex >= 0 }

// MalformedMappingError describes a structural failure while decoding the
// segment stream. Line and Seg identify the offending generated line and
// segment index within that line (both 0-based).
type MalformedMappingError struct {
	Line   int
	Seg    int
	Reason string
}

func (e *MalformedMappingError) Error() string {
	return fmt.Sprintf("malformed mapping at line %d, segment %d: %s", e.Line, e.Seg, e.Reason)
}

// SourceContent returns the embedded content for source index i, or
// ("", false) when the document does not embed it.
func (d *Document) SourceContent(i int) (string, bool) {
	if i < 0 || i >= len(d.SourcesContent) {
		return "", false
	}
	if c := d.SourcesContent[i]; c != nil {
		return *c, true
	}
	return "", false
}
