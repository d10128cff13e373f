// Package textutil holds small text helpers shared by the trace resolver
// and report emission.
package textutil

import (
	"bytes"
	"strings"
)

// NormalizeUTF8LF converts CRLF to LF and ensures the output is valid UTF-8
// by replacing invalid byte sequences with the Unicode replacement character.
func NormalizeUTF8LF(b []byte) []byte {
	// Normalize newlines first
	b = bytes.ReplaceAll(b, []byte("\r\n"), []byte("\n"))
	b = bytes.ReplaceAll(b, []byte("\r"), []byte("\n"))
	// Ensure valid UTF-8
	return bytes.ToValidUTF8(b, []byte("�"))
}

// LineAt returns line idx (0-based) of content, without its newline.
// ok=false when content has fewer lines.
func LineAt(content string, idx int) (string, bool) {
	if idx < 0 {
		return "", false
	}
	lines := strings.Split(string(NormalizeUTF8LF([]byte(content))), "\n")
	if idx >= len(lines) {
		return "", false
	}
	return lines[idx], true
}

// EnsureTrailingLF appends a single \n if not already present.
func EnsureTrailingLF(b []byte) []byte {
	if len(b) == 0 || b[len(b)-1] == '\n' {
		return b
	}
	return append(b, '\n')
}
