// Package trace parses free-form diagnostic text (stack traces) into
// structured frames and resolves each frame through a mapping document back
// to its original file, line, column and symbol name.
//
// This file implements the frame grammar. Instead of one opaque pattern the
// grammar is assembled from named productions so edge cases (drive letters,
// backslashes, parenthesis-less frames) stay enumerable and independently
// testable:
//
//	frame     := "at" funcName "(" location ")" | "at" location
//	location  := path ":" line ":" column
//	path      := [drive] pathChars          (drive = "C:" style prefix)
//
// A line that matches neither shape is kept verbatim as a passthrough frame
// (IsFrame=false), preserving interleaved error-message lines in order.
package trace

import (
	"regexp"
	"strconv"
	"strings"
)

// AnonymousFunc is the function name assigned to frames whose function
// production is empty.
const AnonymousFunc = "<anonymous>"

// Grammar productions. path tolerates Windows drive letters and backslashes;
// the drive colon is matched explicitly so the line/column colons stay
// unambiguous.
const (
	prodFunc = `(?P<fn>\S[^()]*?)`
	prodPath = `(?P<path>(?:[A-Za-z]:)?[^():]+)`
	prodLine = `(?P<line>\d+)`
	prodCol  = `(?P<col>\d+)`
)

var (
	// "    at fnName (path:line:col)"
	reFrameParen = regexp.MustCompile(`^\s*at\s+` + prodFunc + `\s*\(` + prodPath + `:` + prodLine + `:` + prodCol + `\)\s*$`)
	// "    at path:line:col"
	reFrameBare = regexp.MustCompile(`^\s*at\s+` + prodPath + `:` + prodLine + `:` + prodCol + `\s*$`)
)

// Frame is one parsed diagnostic line. When IsFrame is false only Raw is
// meaningful: the line did not match the grammar and is passed through.
type Frame struct {
	Raw     string
	Func    string
	File    string
	Line    int // 1-based, as printed by runtimes
	Col     int // 1-based
	IsFrame bool
}

// ParseFrames splits text into lines and classifies each one. The result
// preserves input order and length: every input line yields exactly one
// Frame, parsed or passthrough.
func ParseFrames(text string) []Frame {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	// A trailing newline produces one empty trailing element; drop it so the
	// output does not grow a phantom passthrough line.
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	frames := make([]Frame, 0, len(lines))
	for _, ln := range lines {
		frames = append(frames, parseLine(ln))
	}
	return frames
}

func parseLine(ln string) Frame {
	if m := reFrameParen.FindStringSubmatch(ln); m != nil {
		return newFrame(ln, m[1], m[2], m[3], m[4])
	}
	if m := reFrameBare.FindStringSubmatch(ln); m != nil {
		return newFrame(ln, "", m[1], m[2], m[3])
	}
	return Frame{Raw: ln}
}

func newFrame(raw, fn, path, line, col string) Frame {
	fn = strings.TrimSpace(fn)
	if fn == "" {
		fn = AnonymousFunc
	}
	l, err1 := strconv.Atoi(line)
	c, err2 := strconv.Atoi(col)
	if err1 != nil || err2 != nil || l < 1 || c < 1 {
		// Degenerate numbers (overflow, zero) disqualify the match.
		return Frame{Raw: raw}
	}
	return Frame{
		Raw:     raw,
		Func:    fn,
		File:    strings.TrimSpace(path),
		Line:    l,
		Col:     c,
		IsFrame: true,
	}
}
