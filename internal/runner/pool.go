// Package runner runs independent jobs on a bounded number of goroutines.
package runner

import (
	"context"
	"sync"
)

type Job func(ctx context.Context) error

// RunPool executes jobs with at most maxWorkers concurrently. It waits for
// every job and returns the errors of the failed ones in job order. Jobs
// still queued when ctx is done fail with the context error.
func RunPool(ctx context.Context, maxWorkers int, jobs []Job) []error {
	if maxWorkers < 1 {
		maxWorkers = 1
	}

	var wg sync.WaitGroup
	results := make([]error, len(jobs))
	sem := make(chan struct{}, maxWorkers)

	for i, job := range jobs {
		i, job := i, job
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			results[i] = ctx.Err()
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = job(ctx)
		}()
	}
	wg.Wait()

	var errs []error
	for _, err := range results {
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}
