package imports

import (
	"context"
	"log/slog"
	"sync"

	"github.com/albla038/middagsflyt/pkg/pipeline"
)

// Job defines one import task for a worker.
type Job struct {
	URL string
}

// Result holds the outcome of a processed job.
type Result struct {
	URL    string
	Recipe *pipeline.Result
	Err    error
}

// worker pulls jobs from the jobs channel, runs the import pipeline, and
// sends outcomes to the results channel.
func worker(ctx context.Context, id int, logger *slog.Logger, svc *pipeline.Service, owner string, wg *sync.WaitGroup, jobs <-chan Job, results chan<- Result) {
	defer wg.Done()
	for job := range jobs {
		logger.Info("worker started job", "worker", id, "url", job.URL)
		recipe, err := svc.Import(ctx, job.URL, owner)
		if err != nil {
			logger.Error("import failed", "worker", id, "url", job.URL, "error", err)
		} else {
			logger.Info("worker finished job", "worker", id, "url", job.URL, "slug", recipe.Slug)
		}
		results <- Result{URL: job.URL, Recipe: recipe, Err: err}
	}
}

// run imports all urls through workerCount concurrent workers and returns the
// results in completion order.
func run(ctx context.Context, logger *slog.Logger, svc *pipeline.Service, owner string, urls []string, workerCount int) []Result {
	if workerCount < 1 {
		workerCount = 1
	}
	if workerCount > len(urls) {
		workerCount = len(urls)
	}

	var wg sync.WaitGroup
	jobs := make(chan Job, len(urls))
	results := make(chan Result, len(urls))

	for w := 1; w <= workerCount; w++ {
		wg.Add(1)
		go worker(ctx, w, logger, svc, owner, &wg, jobs, results)
	}

	for _, rawURL := range urls {
		jobs <- Job{URL: rawURL}
	}
	close(jobs)

	wg.Wait()
	close(results)

	out := make([]Result, 0, len(urls))
	for r := range results {
		out = append(out, r)
	}
	return out
}
