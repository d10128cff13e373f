package validate

import (
	"strings"
	"testing"

	"sourcemap-composer/internal/sourcemap"
)

func TestDocumentAcceptsWellFormed(t *testing.T) {
	c := "let x = 1;"
	d := &sourcemap.Document{
		Version:        sourcemap.Version,
		Sources:        []string{"a.ts", "b.ts"},
		SourcesContent: []*string{&c},
		Names:          []string{"x"},
		Mappings:       "AAAAA;;ICAC",
	}
	if err := Document(d); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDocumentRejectsWrongVersion(t *testing.T) {
	err := Document(&sourcemap.Document{Version: 2})
	if err == nil || !strings.Contains(err.Error(), "version must be 3") {
		t.Fatalf("expected version error, got %v", err)
	}
}

func TestDocumentRejectsOversizedContents(t *testing.T) {
	c := "x"
	d := &sourcemap.Document{
		Version:        sourcemap.Version,
		Sources:        []string{"a.ts"},
		SourcesContent: []*string{&c, &c},
	}
	err := Document(d)
	if err == nil || !strings.Contains(err.Error(), "sourcesContent") {
		t.Fatalf("expected sourcesContent error, got %v", err)
	}
}

func TestDocumentRejectsStreamGarbage(t *testing.T) {
	d := &sourcemap.Document{Version: sourcemap.Version, Mappings: "AAAA|AAAA"}
	err := Document(d)
	if err == nil || !strings.Contains(err.Error(), "invalid character") {
		t.Fatalf("expected stream character error, got %v", err)
	}
}

func TestDocumentAggregatesIssues(t *testing.T) {
	c := "x"
	d := &sourcemap.Document{
		Version:        1,
		Sources:        nil,
		SourcesContent: []*string{&c},
		Mappings:       "!!!",
	}
	err := Document(d)
	if err == nil {
		t.Fatal("expected an error")
	}
	if got := len(strings.Split(err.Error(), "\n")); got != 3 {
		t.Fatalf("expected 3 aggregated issues, got %d:\n%v", got, err)
	}
}

func TestDocumentNil(t *testing.T) {
	if err := Document(nil); err == nil {
		t.Fatal("nil document must be rejected")
	}
}
