// Package diff renders readable unified diffs between two mapping document
// envelopes. It uses github.com/pmezard/go-difflib/difflib to produce
// classic patches (---/+++ headers, @@ hunks). The CLI verify mode uses it
// to report exactly where two envelopes diverge.
package diff

import (
	"encoding/json"
	"fmt"
	"strings"

	difflib "github.com/pmezard/go-difflib/difflib"

	"sourcemap-composer/internal/sourcemap"
)

// Options controls patch generation behavior.
type Options struct {
	// MaxBytes is a guardrail on input size (old+new). When exceeded,
	// a minimal placeholder patch is returned and oversize=true.
	// 0 means "no limit".
	MaxBytes int

	// Context controls the number of context lines in unified hunks.
	// If 0, default to 4.
	Context int
}

// Documents marshals both envelopes with indentation and diffs the results.
// An empty patch means the envelopes are byte-equal after canonical
// marshaling.
func Documents(aName, bName string, a, b *sourcemap.Document, opt Options) (body string, oversize bool, err error) {
	ab, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return "", false, fmt.Errorf("marshal %s: %w", aName, err)
	}
	bb, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return "", false, fmt.Errorf("marshal %s: %w", bName, err)
	}
	body, oversize = Unified(aName, bName, ab, bb, opt)
	return body, oversize, nil
}

// Unified produces a classic unified patch for a↦b.
// Returns the patch body and a flag indicating it was omitted due to size.
func Unified(aName, bName string, a, b []byte, opt Options) (body string, oversize bool) {
	if opt.MaxBytes > 0 && (len(a)+len(b)) > opt.MaxBytes {
		return omitted(aName, bName), true
	}

	ctx := opt.Context
	if ctx <= 0 {
		ctx = 4
	}

	u := difflib.UnifiedDiff{
		A:        splitLinesKeepNL(string(a)),
		B:        splitLinesKeepNL(string(b)),
		FromFile: aName,
		ToFile:   bName,
		Context:  ctx,
	}
	s, err := difflib.GetUnifiedDiffString(u)
	if err != nil {
		return omitted(aName, bName), false
	}
	return s, false
}

// splitLinesKeepNL splits into lines and keeps newline characters,
// which produces better unified hunks.
func splitLinesKeepNL(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.SplitAfter(s, "\n")
}

// omitted returns a compact placeholder when size limits are exceeded.
func omitted(aName, bName string) string {
	return fmt.Sprintf("--- %s\n+++ %s\n@@\n# diff omitted (oversize)\n", aName, bName)
}
