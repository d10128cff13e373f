// Package main provides the sourcemap-composer CLI. It chains mapping
// documents produced by successive build/transform stages into one direct
// mapping (-compose, -batch), resolves obfuscated stack traces back to
// original positions (-trace, -e), and diffs two mapping envelopes
// (-verify).
//
// Modes:
//   - COMPOSE : sourcemap-composer -compose out.map <first.map> <second.map> [more.map...]
//   - BATCH   : sourcemap-composer -batch jobs.txt [-jobs N]
//   - TRACE   : sourcemap-composer -trace crash.txt | -trace - | -e "at f (dist/app.js:1:10)"
//   - VERIFY  : sourcemap-composer -verify <a.map> <b.map>
//
// Key design goals:
//   - Deterministic output (stable segment order, merged tables deduped)
//   - Partial results over total failure (per-item tallies in batch modes)
//   - Clear, minimal CLI flags with sensible defaults
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"sourcemap-composer/internal/compose"
	"sourcemap-composer/internal/config"
	"sourcemap-composer/internal/content"
	"sourcemap-composer/internal/diff"
	"sourcemap-composer/internal/report"
	"sourcemap-composer/internal/sourcemap"
	"sourcemap-composer/internal/trace"
)

func main() {
	// ----- Flags & usage ------------------------------------------------------
	flag.Usage = func() {
		prog := filepath.Base(os.Args[0])
		fmt.Fprintf(os.Stderr, "Usage:\n")
		fmt.Fprintf(os.Stderr, "  COMPOSE : %s -compose out.map <first.map> <second.map> [more.map...]\n", prog)
		fmt.Fprintf(os.Stderr, "  BATCH   : %s -batch jobs.txt [-jobs N]\n", prog)
		fmt.Fprintf(os.Stderr, "  TRACE   : %s -trace <file|-> | -e <text> [-maps-dir d] [-out f]\n", prog)
		fmt.Fprintf(os.Stderr, "  VERIFY  : %s -verify <a.map> <b.map>\n", prog)
		fmt.Fprintln(os.Stderr, "\nFlags:")
		flag.PrintDefaults()
	}

	composeFlag := flag.String("compose", "", "write the composed mapping here (mutually exclusive with -batch/-trace/-e/-verify)")
	batchFlag := flag.String("batch", "", "batch list file, one 'first second out' triple per line")
	traceFlag := flag.String("trace", "", "resolve a stack trace read from a file ('-' = stdin)")
	literalFlag := flag.String("e", "", "resolve a stack trace given as a literal argument")
	verifyFlag := flag.Bool("verify", false, "diff two mapping document envelopes")

	outFlag := flag.String("out", "-", "output path for trace reports ('-' = stdout)")
	mapsDirFlag := flag.String("maps-dir", ".", "directory where mapping documents are located by convention")
	configFlag := flag.String("config", "", "optional YAML policy file (map suffix, root markers, name heuristics)")
	jobsFlag := flag.Int("jobs", 4, "parallel compositions in -batch mode")

	flag.Parse()

	modes := 0
	for _, on := range []bool{*composeFlag != "", *batchFlag != "", *traceFlag != "", *literalFlag != "", *verifyFlag} {
		if on {
			modes++
		}
	}
	if modes != 1 {
		if modes > 1 {
			fmt.Fprintln(os.Stderr, "ERROR: -compose, -batch, -trace, -e and -verify are mutually exclusive")
		}
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configFlag)
	if err != nil {
		fmt.Fprintln(os.Stderr, "ERROR:", err)
		os.Exit(1)
	}

	switch {
	case *composeFlag != "":
		runCompose(*composeFlag, flag.Args())
	case *batchFlag != "":
		runBatch(*batchFlag, *jobsFlag)
	case *traceFlag != "", *literalFlag != "":
		runTrace(*traceFlag, *literalFlag, *mapsDirFlag, *outFlag, cfg)
	case *verifyFlag:
		runVerify(flag.Args())
	}
}

// ======================  COMPOSE MODE  ======================================

func runCompose(out string, args []string) {
	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "ERROR: -compose needs at least two mapping files")
		os.Exit(2)
	}

	acc, err := loadDocument(args[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, "ERROR:", err)
		os.Exit(1)
	}
	// Chain left to right: ((first∘second)∘third)... Content read-through
	// resolves against the first document's directory throughout.
	provider := content.Dir(filepath.Dir(args[0]))
	for _, p := range args[1:] {
		next, err := loadDocument(p)
		if err != nil {
			fmt.Fprintln(os.Stderr, "ERROR:", err)
			os.Exit(1)
		}
		acc, err = compose.Compose(acc, next, compose.Options{Provider: provider})
		if err != nil {
			fmt.Fprintln(os.Stderr, "ERROR:", err)
			os.Exit(1)
		}
	}

	if err := report.WriteDocument(out, acc); err != nil {
		fmt.Fprintln(os.Stderr, "ERROR:", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote composed mapping %s (sources=%d, names=%d)\n", out, len(acc.Sources), len(acc.Names))
}

// ======================  BATCH MODE  ========================================

func runBatch(listPath string, jobs int) {
	list, err := readJobList(listPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "ERROR:", err)
		os.Exit(1)
	}
	if len(list) == 0 {
		fmt.Fprintln(os.Stderr, "No jobs in batch list.")
		os.Exit(0)
	}

	results := compose.Batch(context.Background(), list, jobs)
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "FAIL %s + %s: %v\n", r.Job.First, r.Job.Second, r.Err)
		}
	}
	fmt.Printf("Composed %d mappings (ok=%d, failed=%d)\n", len(results), len(results)-failed, failed)
	if failed > 0 {
		os.Exit(1)
	}
}

// readJobList parses one 'first second out' triple per line; blank lines
// and '#' comments are skipped.
func readJobList(path string) ([]compose.Job, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var jobs []compose.Job
	sc := bufio.NewScanner(f)
	ln := 0
	for sc.Scan() {
		ln++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 3 {
			return nil, fmt.Errorf("%s:%d: want 'first second out', got %d fields", path, ln, len(fields))
		}
		jobs = append(jobs, compose.Job{First: fields[0], Second: fields[1], Out: fields[2]})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return jobs, nil
}

// ======================  TRACE MODE  ========================================

func runTrace(tracePath, literal, mapsDir, out string, cfg config.Config) {
	text, err := traceInput(tracePath, literal)
	if err != nil {
		fmt.Fprintln(os.Stderr, "ERROR:", err)
		os.Exit(1)
	}

	synthetic, err := trace.SyntheticName(cfg.SyntheticPattern)
	if err != nil {
		fmt.Fprintln(os.Stderr, "ERROR:", err)
		os.Exit(1)
	}
	resolver := trace.NewResolver(content.Dir(mapsDir), trace.Options{
		MapSuffix:        cfg.MapSuffix,
		RootMarkers:      cfg.RootMarkers,
		Synthetic:        synthetic,
		NoColumnFallback: !cfg.FallbackColumnZero,
	})

	rep := report.BuildFrames(resolver.ResolveTrace(text))
	if err := report.WriteFrames(out, rep); err != nil {
		fmt.Fprintln(os.Stderr, "ERROR:", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "Resolved %d frames (failed=%d, passthrough=%d)\n",
		rep.Tally.Resolved, rep.Tally.Failed, rep.Tally.Passthrough)
}

func traceInput(tracePath, literal string) (string, error) {
	if literal != "" {
		return literal, nil
	}
	if tracePath == "-" {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(b), nil
	}
	b, err := os.ReadFile(tracePath)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ======================  VERIFY MODE  =======================================

func runVerify(args []string) {
	if len(args) != 2 {
		fmt.Fprintln(os.Stderr, "ERROR: -verify needs exactly two mapping files")
		os.Exit(2)
	}
	a, err := loadDocument(args[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, "ERROR:", err)
		os.Exit(1)
	}
	b, err := loadDocument(args[1])
	if err != nil {
		fmt.Fprintln(os.Stderr, "ERROR:", err)
		os.Exit(1)
	}
	body, oversize, err := diff.Documents(args[0], args[1], a, b, diff.Options{MaxBytes: 16_000_000})
	if err != nil {
		fmt.Fprintln(os.Stderr, "ERROR:", err)
		os.Exit(1)
	}
	if body == "" {
		fmt.Println("Mappings are identical.")
		return
	}
	if oversize {
		fmt.Fprintln(os.Stderr, "Note: diff omitted due to size")
	}
	fmt.Print(body)
	os.Exit(1)
}

func loadDocument(path string) (*sourcemap.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load mapping %s: %w", path, err)
	}
	return sourcemap.ParseDocument(data)
}
