package sourcemap

import (
	"encoding/json"
	"fmt"
)

// ParseDocument unmarshals a mapping document from its JSON envelope.
// Structural validation beyond JSON shape is the caller's concern (see
// internal/validate); stream decoding is Decode's.
func ParseDocument(data []byte) (*Document, error) {
	var d Document
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parse mapping document: %w", err)
	}
	return &d, nil
}

// Decode expands the document's encoded segment stream into an ordered
// segment slice. Decoding is pure: the same input yields the same output,
// and a malformed stream returns a *MalformedMappingError with no partial
// table.
//
// Delta rules:
//   - ';' separates generated lines, ',' separates segments within a line
//   - generated column is relative to the previous segment on the same line
//     (absolute again after each ';')
//   - source index, original line/column and name index are running values
//     scoped across the whole document
func Decode(d *Document) ([]Segment, error) {
	if d.Mappings == "" {
		return nil, nil
	}

	var segs []Segment
	line := 0
	segIdx := 0
	genCol := 0
	srcIdx, origLine, origCol, nameIdx := 0, 0, 0, 0

	malformed := func(reason string) error {
		return &MalformedMappingError{Line: line, Seg: segIdx, Reason: reason}
	}

	pos := 0
	s := d.Mappings
	for pos < len(s) {
		switch s[pos] {
		case ';':
			line++
			genCol = 0
			segIdx = 0
			pos++
			continue
		case ',':
			pos++
			continue
		}

		fields := make([]int, 0, 5)
		for pos < len(s) && s[pos] != ';' && s[pos] != ',' {
			v, next, err := decodeVLQ(s, pos)
			if err != nil {
				return nil, malformed(err.Error())
			}
			pos = next
			if len(fields) == 5 {
				return nil, malformed("more than 5 fields in segment")
			}
			fields = append(fields, v)
		}

		if n := len(fields); n != 1 && n != 4 && n != 5 {
			return nil, malformed(fmt.Sprintf("segment has %d fields, want 1, 4 or 5", n))
		}

		genCol += fields[0]
		if genCol < 0 {
			return nil, malformed(fmt.Sprintf("negative generated column %d", genCol))
		}
		seg := Segment{
			GeneratedLine:   line,
			GeneratedColumn: genCol,
			SourceIndex:     -1,
			OriginalLine:    -1,
			OriginalColumn:  -1,
			NameIndex:       -1,
		}

		if len(fields) >= 4 {
			srcIdx += fields[1]
			origLine += fields[2]
			origCol += fields[3]
			if srcIdx < 0 || srcIdx >= len(d.Sources) {
				return nil, malformed(fmt.Sprintf("source index %d out of range (%d sources)", srcIdx, len(d.Sources)))
			}
			if origLine < 0 || origCol < 0 {
				return nil, malformed(fmt.Sprintf("negative original position %d:%d", origLine, origCol))
			}
			seg.SourceIndex = srcIdx
			seg.OriginalLine = origLine
			seg.OriginalColumn = origCol
		}
		if len(fields) == 5 {
			nameIdx += fields[4]
			if nameIdx < 0 || nameIdx >= len(d.Names) {
				return nil, malformed(fmt.Sprintf("name index %d out of range (%d names)", nameIdx, len(d.Names)))
			}
			seg.NameIndex = nameIdx
		}

		segs = append(segs, seg)
		segIdx++
	}

	return segs, nil
}
