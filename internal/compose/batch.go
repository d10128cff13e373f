package compose

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"sourcemap-composer/internal/content"
	"sourcemap-composer/internal/report"
	"sourcemap-composer/internal/sourcemap"
)

// Job names the files of one composition: First is the stage0→stage1
// document, Second the stage1→stage2 document, Out the destination for the
// composed stage0→stage2 document.
type Job struct {
	First  string
	Second string
	Out    string
}

// JobResult reports one job's outcome. Err is nil on success.
type JobResult struct {
	Job Job
	Err error
}

// File composes two mapping documents loaded from disk. Content
// read-through resolves source paths relative to the first document's
// directory.
func File(firstPath, secondPath string) (*sourcemap.Document, error) {
	a, err := loadDocument(firstPath)
	if err != nil {
		return nil, err
	}
	b, err := loadDocument(secondPath)
	if err != nil {
		return nil, err
	}
	return Compose(a, b, Options{Provider: content.Dir(filepath.Dir(firstPath))})
}

func loadDocument(path string) (*sourcemap.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load mapping %s: %w", path, err)
	}
	doc, err := sourcemap.ParseDocument(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Batch runs jobs task-parallel across documents. Each job is independent:
// a failure is recorded in its slot and never stops the others. Jobs not
// yet dispatched when ctx is cancelled fail with the context error.
func Batch(ctx context.Context, jobs []Job, workers int) []JobResult {
	if workers < 1 {
		workers = 1
	}
	results := make([]JobResult, len(jobs))
	idx := make(chan int)

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range idx {
				doc, err := File(jobs[i].First, jobs[i].Second)
				if err == nil {
					err = report.WriteDocument(jobs[i].Out, doc)
				}
				results[i] = JobResult{Job: jobs[i], Err: err}
			}
		}()
	}

	for i := range jobs {
		if err := ctx.Err(); err != nil {
			results[i] = JobResult{Job: jobs[i], Err: err}
			continue
		}
		idx <- i
	}
	close(idx)
	wg.Wait()
	return results
}
