package sourcemap

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeSingleSegment(t *testing.T) {
	segs := []Segment{{
		GeneratedLine:   5,
		GeneratedColumn: 10,
		SourceIndex:     0,
		OriginalLine:    2,
		OriginalColumn:  3,
		NameIndex:       0,
	}}
	if got := EncodeMappings(segs); got != ";;;;;UAEGA" {
		t.Fatalf("EncodeMappings = %q, want %q", got, ";;;;;UAEGA")
	}
}

func TestEncodeGeneratedOnlySegment(t *testing.T) {
	segs := []Segment{
		{GeneratedLine: 0, GeneratedColumn: 0, SourceIndex: 0, OriginalLine: 0, OriginalColumn: 0, NameIndex: -1},
		{GeneratedLine: 0, GeneratedColumn: 2, SourceIndex: -1, OriginalLine: -1, OriginalColumn: -1, NameIndex: -1},
	}
	if got := EncodeMappings(segs); got != "AAAA,E" {
		t.Fatalf("EncodeMappings = %q, want %q", got, "AAAA,E")
	}
}

// Round-trip law: decode(encode(decode(doc))) yields the identical segment
// sequence and tables.
func TestRoundTripLaw(t *testing.T) {
	docs := []*Document{
		{
			Version:  Version,
			Sources:  []string{"user.ts"},
			Names:    []string{"userController"},
			Mappings: ";;;;;UAEGA",
		},
		{
			Version:  Version,
			Sources:  []string{"a.ts", "b.ts"},
			Names:    []string{"n1", "n2"},
			Mappings: "AAAAA,ICAC,QAEEC;;AADA,E",
		},
		{
			Version:        Version,
			File:           "app.min.js",
			Sources:        []string{"src/app.ts", "src/util.ts", "src/app.ts"},
			SourcesContent: []*string{strp("let x = 1;\n"), nil, nil},
			Names:          []string{"main", "helper"},
			Mappings:       "AAAA,IAAIA,QCAEC;A,ICAA;;;cAEcD",
		},
	}

	for i, doc := range docs {
		segs, err := Decode(doc)
		require.NoError(t, err, "doc %d", i)

		redone := NewDocument(doc.File, doc.Sources, doc.SourcesContent, doc.Names, segs)
		assert.Equal(t, doc.Mappings, redone.Mappings, "doc %d stream", i)

		segs2, err := Decode(redone)
		require.NoError(t, err, "doc %d re-decode", i)
		if !assert.Equal(t, segs, segs2, "doc %d segments", i) {
			t.Logf("first decode:\n%s\nsecond decode:\n%s", spew.Sdump(segs), spew.Sdump(segs2))
		}
		assert.Equal(t, doc.Sources, redone.Sources, "doc %d sources", i)
		assert.Equal(t, doc.Names, redone.Names, "doc %d names", i)
	}
}

func TestEncodeStableForDuplicateColumns(t *testing.T) {
	// Two segments at the same generated position: the encoder must keep
	// input order so earliest-wins survives a round trip.
	segs := []Segment{
		{GeneratedLine: 0, GeneratedColumn: 4, SourceIndex: 0, OriginalLine: 1, OriginalColumn: 0, NameIndex: -1},
		{GeneratedLine: 0, GeneratedColumn: 4, SourceIndex: 0, OriginalLine: 7, OriginalColumn: 0, NameIndex: -1},
	}
	d := NewDocument("", []string{"a.ts"}, nil, nil, segs)
	got, err := Decode(d)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].OriginalLine, "first-at-column must stay first")
	assert.Equal(t, 7, got[1].OriginalLine)
}

func TestNewDocumentDropsEmptyContents(t *testing.T) {
	d := NewDocument("out.js", []string{"a.ts"}, []*string{nil}, nil, nil)
	assert.Nil(t, d.SourcesContent)
	assert.Equal(t, Version, d.Version)
	assert.NotNil(t, d.Sources)
	assert.NotNil(t, d.Names)
}
