// Package report assembles and persists the outputs of a resolution run:
// the per-frame result list with its success/failure tally, and composed
// mapping documents. All writes are atomic (temp file in the target
// directory, then rename) so readers never observe a partial file.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"sourcemap-composer/internal/sourcemap"
	"sourcemap-composer/internal/textutil"
	"sourcemap-composer/internal/trace"
)

// Tally counts frame outcomes. Passthrough lines are neither successes nor
// failures; they are carried for completeness.
type Tally struct {
	Resolved    int `json:"resolved"`
	Failed      int `json:"failed"`
	Passthrough int `json:"passthrough"`
}

// Frames wraps a result list with its tally for JSON emission.
type Frames struct {
	Tally  Tally          `json:"tally"`
	Frames []trace.Result `json:"frames"`
}

// BuildFrames computes the tally over results. The input order is kept.
func BuildFrames(results []trace.Result) Frames {
	var t Tally
	for _, r := range results {
		switch {
		case r.Translated != nil:
			t.Resolved++
		case r.Err != "":
			t.Failed++
		default:
			t.Passthrough++
		}
	}
	if results == nil {
		results = []trace.Result{}
	}
	return Frames{Tally: t, Frames: results}
}

// WriteFrames marshals the report with indentation and writes it
// atomically. path "-" writes to stdout instead.
func WriteFrames(path string, f Frames) error {
	b, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal frame report: %w", err)
	}
	b = textutil.EnsureTrailingLF(b)
	if path == "-" {
		_, err := os.Stdout.Write(b)
		return err
	}
	return WriteFileAtomic(path, b)
}

// WriteDocument marshals a composed mapping document and writes it
// atomically in place of (or alongside) the consumed one.
func WriteDocument(path string, d *sourcemap.Document) error {
	b, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshal mapping document: %w", err)
	}
	return WriteFileAtomic(path, b)
}

// WriteFileAtomic writes data into a temporary file within the target
// directory, then renames it over path.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, ".tmp-"+filepath.Base(path)+"-")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp) // best-effort cleanup
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}
