package trace

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sourcemap-composer/internal/content"
	"sourcemap-composer/internal/sourcemap"
)

// mapJSON builds the wire form of a mapping document for the in-memory
// provider.
func mapJSON(t *testing.T, file string, sources []string, contents []*string, names []string, segs ...sourcemap.Segment) []byte {
	t.Helper()
	b, err := json.Marshal(sourcemap.NewDocument(file, sources, contents, names, segs))
	require.NoError(t, err)
	return b
}

func seg(line, col, src, oLine, oCol, name int) sourcemap.Segment {
	return sourcemap.Segment{
		GeneratedLine:   line,
		GeneratedColumn: col,
		SourceIndex:     src,
		OriginalLine:    oLine,
		OriginalColumn:  oCol,
		NameIndex:       name,
	}
}

func TestMapPathConventions(t *testing.T) {
	r := NewResolver(content.Map{}, Options{})
	cases := []struct {
		file string
		want string
	}{
		{`d:\dist\user.js`, "dist/user.js.map"},
		{"/srv/app/build/static/app.js", "build/static/app.js.map"},
		{"/var/tmp/app.js", "app.js.map"}, // absolute, no marker: base name
		{"user.js", "user.js.map"},
		{"static/js/app.js", "static/js/app.js.map"},
		{`C:\Out\bundle.js`, "Out/bundle.js.map"}, // marker match is case-insensitive
	}
	for _, c := range cases {
		if got := r.MapPath(c.file); got != c.want {
			t.Fatalf("MapPath(%q) = %q, want %q", c.file, got, c.want)
		}
	}
}

func TestResolveTraceEndToEnd(t *testing.T) {
	src := "export function userController() {}\nconst user = load();\n"
	maps := content.Map{
		"dist/user.js.map": mapJSON(t, "user.js",
			[]string{"user.ts"}, []*string{&src}, []string{"userController"},
			// Frame positions are 1-based; segments 0-based.
			seg(97, 18, 0, 1, 2, 0)),
	}
	r := NewResolver(maps, Options{})

	results := r.ResolveTrace("Error: Test error\n" +
		`    at _0x3a4f2b (d:\dist\user.js:98:19)`)
	require.Len(t, results, 2)

	assert.Nil(t, results[0].Translated)
	assert.Empty(t, results[0].Err, "message lines pass through without error")
	assert.Equal(t, "Error: Test error", results[0].Original)

	tr := results[1].Translated
	require.NotNil(t, tr, "frame should resolve: %+v", results[1])
	assert.Equal(t, "user.ts", tr.File)
	assert.Equal(t, 2, tr.Line)
	assert.Equal(t, 3, tr.Column)
	assert.Equal(t, "userController", tr.Name, "the original name wins over the obfuscated one")
	assert.Equal(t, "const user = load();", tr.SourceCode)
}

func TestResolveFrameSyntheticOriginalName(t *testing.T) {
	maps := content.Map{
		"app.js.map": mapJSON(t, "app.js",
			[]string{"app.ts"}, nil, []string{"_0x9f2c1b"},
			seg(0, 0, 0, 4, 0, 0)),
	}
	r := NewResolver(maps, Options{})

	res := r.ResolveFrame(ParseFrames("    at renderPage (app.js:1:5)")[0])
	require.NotNil(t, res.Translated)
	// The mapped name looks obfuscator-generated, so the frame's own
	// function name is kept.
	assert.Equal(t, "renderPage", res.Translated.Name)
}

func TestResolveFrameColumnFallback(t *testing.T) {
	maps := content.Map{
		"app.js.map": mapJSON(t, "app.js",
			[]string{"app.ts"}, nil, nil,
			seg(4, 0, 0, 9, 1, -1)),
	}
	r := NewResolver(maps, Options{})

	// Line 5 (1-based) column 38: no exact entry, the column-0 mapping
	// answers.
	res := r.ResolveFrame(ParseFrames("    at app.js:5:38")[0])
	require.NotNil(t, res.Translated, "expected fallback hit: %+v", res)
	assert.Equal(t, 10, res.Translated.Line)

	// Line 6 has no segments at all: a miss, not a reuse of line 5.
	res = r.ResolveFrame(ParseFrames("    at app.js:6:1")[0])
	assert.Nil(t, res.Translated)
	assert.Contains(t, res.Err, "no mapping")
}

func TestResolveFrameMissingDocument(t *testing.T) {
	r := NewResolver(content.Map{}, Options{})

	results := r.ResolveTrace("    at ghost (vanished.js:1:1)\n" +
		"    at alsoGhost (gone.js:2:2)")
	require.Len(t, results, 2)
	for _, res := range results {
		assert.Nil(t, res.Translated)
		assert.Contains(t, res.Err, "mapping document not found")
	}
}

func TestResolveFrameMalformedDocumentIsolated(t *testing.T) {
	maps := content.Map{
		"bad.js.map": []byte(`{"version":3,"sources":["a.ts"],"names":[],"mappings":"AAAA;g"}`),
		"good.js.map": mapJSON(t, "good.js",
			[]string{"good.ts"}, nil, nil,
			seg(0, 0, 0, 0, 0, -1)),
	}
	r := NewResolver(maps, Options{})

	results := r.ResolveTrace("    at f (bad.js:1:1)\n    at g (good.js:1:1)")
	require.Len(t, results, 2)

	assert.Nil(t, results[0].Translated)
	assert.Contains(t, results[0].Err, "malformed mapping")

	require.NotNil(t, results[1].Translated, "one bad document must not poison the rest: %+v", results[1])
	assert.Equal(t, "good.ts", results[1].Translated.File)
}

func TestSyntheticNamePolicy(t *testing.T) {
	synthetic, err := SyntheticName(DefaultSyntheticPattern)
	require.NoError(t, err)

	assert.True(t, synthetic("_0x3a4f2b"))
	assert.True(t, synthetic("_0xABC123"))
	assert.False(t, synthetic("userController"))
	assert.False(t, synthetic("_private"))

	none, err := SyntheticName("")
	require.NoError(t, err)
	assert.False(t, none("_0x3a4f2b"), "empty pattern disables the heuristic")

	_, err = SyntheticName("(")
	assert.Error(t, err)
}

func TestResolverCachesDocuments(t *testing.T) {
	calls := 0
	maps := countingProvider{
		inner: content.Map{
			"app.js.map": mapJSON(t, "app.js", []string{"app.ts"}, nil, nil, seg(0, 0, 0, 0, 0, -1)),
		},
		calls: &calls,
	}
	r := NewResolver(maps, Options{})

	stack := strings.Repeat("    at app.js:1:1\n", 3)
	results := r.ResolveTrace(stack)
	require.Len(t, results, 3)
	for _, res := range results {
		require.NotNil(t, res.Translated)
	}
	assert.Equal(t, 1, calls, "document should be decoded once per run")
}

type countingProvider struct {
	inner content.Map
	calls *int
}

func (p countingProvider) Read(path string) ([]byte, error) {
	*p.calls++
	return p.inner.Read(path)
}
