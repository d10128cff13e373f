package trace

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"sourcemap-composer/internal/content"
	"sourcemap-composer/internal/lookup"
	"sourcemap-composer/internal/sourcemap"
	"sourcemap-composer/internal/textutil"
	"sourcemap-composer/internal/validate"
)

// ErrMissingDocument marks a frame whose mapping document could not be read.
var ErrMissingDocument = errors.New("mapping document not found")

// Translated is the original position recovered for one frame.
type Translated struct {
	File       string `json:"file"`
	Line       int    `json:"line"`   // 1-based
	Column     int    `json:"column"` // 1-based
	Name       string `json:"name"`
	SourceCode string `json:"sourceCode,omitempty"` // trimmed original line, when embedded
}

// Result pairs an input line with its translation. Exactly one of
// Translated and Err is meaningful for frame lines; passthrough lines carry
// neither.
type Result struct {
	Original   string      `json:"original"`
	Translated *Translated `json:"translated"`
	Err        string      `json:"error,omitempty"`
}

// Options configures frame resolution policies. Zero values select the
// defaults documented on each field.
type Options struct {
	MapSuffix        string     // mapping-file suffix, default ".map"
	RootMarkers      []string   // artifact-root dir names, default dist/build/out
	Synthetic        NamePolicy // default matches DefaultSyntheticPattern
	NoColumnFallback bool       // disable the retry at column 0
}

// Resolver resolves parsed frames through mapping documents located by
// file-name convention. Documents are decoded once and cached for the
// lifetime of the resolver. Not safe for concurrent use; create one
// resolver per trace.
type Resolver struct {
	maps      content.Provider
	suffix    string
	markers   []string
	synthetic NamePolicy
	fallback  bool
	cache     map[string]*mapEntry
}

type mapEntry struct {
	doc *sourcemap.Document
	ix  *lookup.Index
	err error
}

// NewResolver builds a resolver that reads mapping documents through maps.
func NewResolver(maps content.Provider, opt Options) *Resolver {
	suffix := opt.MapSuffix
	if suffix == "" {
		suffix = ".map"
	}
	markers := opt.RootMarkers
	if markers == nil {
		markers = []string{"dist", "build", "out"}
	}
	synthetic := opt.Synthetic
	if synthetic == nil {
		synthetic, _ = SyntheticName(DefaultSyntheticPattern)
	}
	return &Resolver{
		maps:      maps,
		suffix:    suffix,
		markers:   markers,
		synthetic: synthetic,
		fallback:  !opt.NoColumnFallback,
		cache:     make(map[string]*mapEntry),
	}
}

// ResolveTrace parses text and resolves every frame in it. Passthrough
// lines survive untranslated in input order; a failure on one frame never
// aborts the rest.
func (r *Resolver) ResolveTrace(text string) []Result {
	frames := ParseFrames(text)
	results := make([]Result, 0, len(frames))
	for _, f := range frames {
		results = append(results, r.ResolveFrame(f))
	}
	return results
}

// ResolveFrame resolves a single parsed frame. Non-frame lines pass through
// unchanged.
func (r *Resolver) ResolveFrame(f Frame) Result {
	res := Result{Original: f.Raw}
	if !f.IsFrame {
		return res
	}

	mapPath := r.MapPath(f.File)
	entry := r.load(mapPath)
	if entry.err != nil {
		res.Err = entry.err.Error()
		return res
	}

	// Printed positions are 1-based; segments are 0-based.
	pos, ok := entry.ix.Resolve(f.Line-1, f.Col-1)
	if !ok && r.fallback {
		// Obfuscating transforms frequently collapse column precision;
		// retry once at the start of the line before giving up.
		pos, ok = entry.ix.Resolve(f.Line-1, 0)
	}
	if !ok {
		res.Err = fmt.Sprintf("no mapping for %s:%d:%d", f.File, f.Line, f.Col)
		return res
	}

	res.Translated = &Translated{
		File:       pos.Source,
		Line:       pos.Line + 1,
		Column:     pos.Column + 1,
		Name:       pickName(pos.Name, pos.HasName, f.Func, r.synthetic),
		SourceCode: sourceLine(entry.doc, pos),
	}
	return res
}

// MapPath derives the candidate mapping-document path for a generated file:
//
//   - a path containing a known artifact-root marker is taken from the
//     marker onward (drive letters and backslashes normalized away)
//   - an absolute path without a marker falls back to its base name
//   - a bare relative name is used as-is
//
// The configured suffix is appended in every case.
func (r *Resolver) MapPath(file string) string {
	p := strings.ReplaceAll(file, `\`, "/")
	drive := len(p) >= 2 && p[1] == ':'
	if drive {
		p = p[2:]
	}
	segs := strings.Split(strings.TrimPrefix(p, "/"), "/")
	for i, s := range segs {
		for _, m := range r.markers {
			if strings.EqualFold(s, m) {
				return path.Join(segs[i:]...) + r.suffix
			}
		}
	}
	if drive || strings.HasPrefix(p, "/") {
		return path.Base(p) + r.suffix
	}
	return path.Join(segs...) + r.suffix
}

func (r *Resolver) load(mapPath string) *mapEntry {
	if e, ok := r.cache[mapPath]; ok {
		return e
	}
	e := &mapEntry{}
	r.cache[mapPath] = e

	data, err := r.maps.Read(mapPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			e.err = fmt.Errorf("%w: %s", ErrMissingDocument, mapPath)
		} else {
			e.err = fmt.Errorf("read %s: %w", mapPath, err)
		}
		return e
	}
	doc, err := sourcemap.ParseDocument(data)
	if err != nil {
		e.err = err
		return e
	}
	if err := validate.Document(doc); err != nil {
		e.err = fmt.Errorf("%s: %w", mapPath, err)
		return e
	}
	segs, err := sourcemap.Decode(doc)
	if err != nil {
		e.err = fmt.Errorf("%s: %w", mapPath, err)
		return e
	}
	e.doc = doc
	e.ix = lookup.New(segs, doc.Sources, doc.Names)
	return e
}

// sourceLine extracts the trimmed original source line for pos, when the
// document embeds content for that source.
func sourceLine(doc *sourcemap.Document, pos lookup.Position) string {
	for i, s := range doc.Sources {
		if s != pos.Source {
			continue
		}
		if c, ok := doc.SourceContent(i); ok {
			if ln, ok := textutil.LineAt(c, pos.Line); ok {
				return strings.TrimSpace(ln)
			}
		}
		return ""
	}
	return ""
}
