// Package validate performs lightweight, dependency-free validation of a
// mapping document envelope before the segment stream is decoded. It is not
// a JSON-Schema validator; it checks the structural constraints that
// commonly catch corrupt or hand-edited map files.
//
// Goals:
//   - No external dependencies (stdlib only)
//   - Aggregate multiple issues into a single error for better UX
//   - Deterministic, strict-enough checks without being overbearing
package validate

import (
	"errors"
	"fmt"
	"strings"

	"sourcemap-composer/internal/sourcemap"
)

// Document validates the envelope of a mapping document:
//
//   - Version must be exactly 3.
//   - Sources and Names must not contain NUL bytes (a reliable sign of a
//     binary file parsed as JSON).
//   - SourcesContent, when present, must not be longer than Sources
//     (shorter is tolerated: trailing entries simply lack embedded text).
//   - Mappings characters must come from the stream alphabet
//     (base64 digits, ';' and ',').
//
// Returns nil when everything looks fine, or a single aggregated error
// describing all issues found.
func Document(d *sourcemap.Document) error {
	var errs errlist

	if d == nil {
		return errors.New("mapping document is nil")
	}
	if d.Version != sourcemap.Version {
		errs.add("version must be %d (got %d)", sourcemap.Version, d.Version)
	}
	if len(d.SourcesContent) > len(d.Sources) {
		errs.add("sourcesContent has %d entries for %d sources", len(d.SourcesContent), len(d.Sources))
	}
	for i, s := range d.Sources {
		if strings.ContainsRune(s, 0) {
			errs.add("sources[%d] contains a NUL byte", i)
		}
	}
	for i, n := range d.Names {
		if strings.ContainsRune(n, 0) {
			errs.add("names[%d] contains a NUL byte", i)
		}
	}
	if i := strings.IndexFunc(d.Mappings, func(r rune) bool { return !isStreamChar(r) }); i >= 0 {
		errs.add("mappings contains invalid character %q at offset %d", d.Mappings[i], i)
	}

	return errs.err()
}

func isStreamChar(r rune) bool {
	switch {
	case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z', r >= '0' && r <= '9':
		return true
	case r == '+', r == '/', r == ';', r == ',', r == '=':
		return true
	}
	return false
}

// errlist aggregates multiple validation issues into a single error.
type errlist struct {
	msgs []string
}

func (e *errlist) add(format string, args ...any) {
	if e == nil {
		return
	}
	e.msgs = append(e.msgs, fmt.Sprintf(format, args...))
}

func (e *errlist) err() error {
	if e == nil || len(e.msgs) == 0 {
		return nil
	}
	return errors.New(strings.Join(e.msgs, "\n"))
}
