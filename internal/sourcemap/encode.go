package sourcemap

import (
	"sort"
	"strings"
)

// EncodeMappings serializes segments back into the base64-VLQ stream,
// applying the same delta rules Decode expands. Segments are ordered by
// (generated line, generated column) first; the sort is stable so duplicate
// positions keep their input order (earliest-wins is preserved through a
// round trip).
func EncodeMappings(segs []Segment) string {
	ordered := make([]Segment, len(segs))
	copy(ordered, segs)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].GeneratedLine != ordered[j].GeneratedLine {
			return ordered[i].GeneratedLine < ordered[j].GeneratedLine
		}
		return ordered[i].GeneratedColumn < ordered[j].GeneratedColumn
	})

	var sb strings.Builder
	line := 0
	genCol := 0
	srcIdx, origLine, origCol, nameIdx := 0, 0, 0, 0
	firstInLine := true

	for _, seg := range ordered {
		for line < seg.GeneratedLine {
			sb.WriteByte(';')
			line++
			genCol = 0
			firstInLine = true
		}
		if !firstInLine {
			sb.WriteByte(',')
		}
		firstInLine = false

		encodeVLQ(&sb, seg.GeneratedColumn-genCol)
		genCol = seg.GeneratedColumn

		if seg.Mapped() {
			encodeVLQ(&sb, seg.SourceIndex-srcIdx)
			srcIdx = seg.SourceIndex
			encodeVLQ(&sb, seg.OriginalLine-origLine)
			origLine = seg.OriginalLine
			encodeVLQ(&sb, seg.OriginalColumn-origCol)
			origCol = seg.OriginalColumn
			if seg.Named() {
				encodeVLQ(&sb, seg.NameIndex-nameIdx)
				nameIdx = seg.NameIndex
			}
		}
	}
	return sb.String()
}

// NewDocument assembles a full envelope around an encoded segment slice.
// The tables are referenced, not copied; callers hand over ownership.
func NewDocument(file string, sources []string, contents []*string, names []string, segs []Segment) *Document {
	if sources == nil {
		sources = []string{}
	}
	if names == nil {
		names = []string{}
	}
	// Drop an all-nil contents column entirely; an envelope without
	// embedded text should not carry a null-filled array.
	hasContent := false
	for _, c := range contents {
		if c != nil {
			hasContent = true
			break
		}
	}
	if !hasContent {
		contents = nil
	}
	return &Document{
		Version:        Version,
		File:           file,
		Sources:        sources,
		SourcesContent: contents,
		Names:          names,
		Mappings:       EncodeMappings(segs),
	}
}
