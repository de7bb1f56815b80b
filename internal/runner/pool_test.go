package runner_test

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/signalnine/scorekeeper/internal/runner"
)

func TestPool(t *testing.T) {
	var count atomic.Int32
	jobs := make([]runner.Job, 10)
	for i := range jobs {
		jobs[i] = func(context.Context) error {
			count.Add(1)
			return nil
		}
	}
	errs := runner.RunPool(context.Background(), 3, jobs)
	if len(errs) != 0 {
		t.Errorf("expected no errors, got %v", errs)
	}
	if count.Load() != 10 {
		t.Errorf("expected 10 jobs, got %d", count.Load())
	}
}

func TestPoolErrorsKeepJobOrder(t *testing.T) {
	jobs := make([]runner.Job, 6)
	for i := range jobs {
		i := i
		jobs[i] = func(context.Context) error {
			// Later jobs finish first.
			time.Sleep(time.Duration(len(jobs)-i) * time.Millisecond)
			if i%2 == 1 {
				return fmt.Errorf("job %d", i)
			}
			return nil
		}
	}
	errs := runner.RunPool(context.Background(), 6, jobs)
	if len(errs) != 3 {
		t.Fatalf("expected 3 errors, got %d", len(errs))
	}
	for k, want := range []string{"job 1", "job 3", "job 5"} {
		if errs[k].Error() != want {
			t.Errorf("errs[%d] = %q, want %q", k, errs[k], want)
		}
	}
}

func TestPoolLimitsConcurrency(t *testing.T) {
	var running, peak atomic.Int32
	jobs := make([]runner.Job, 8)
	for i := range jobs {
		jobs[i] = func(context.Context) error {
			n := running.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(2 * time.Millisecond)
			running.Add(-1)
			return nil
		}
	}
	runner.RunPool(context.Background(), 2, jobs)
	if peak.Load() > 2 {
		t.Errorf("expected at most 2 concurrent jobs, saw %d", peak.Load())
	}
}

func TestPoolCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	errs := runner.RunPool(ctx, 1, []runner.Job{
		func(context.Context) error { return nil },
		func(context.Context) error { return nil },
	})
	for _, err := range errs {
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	}
}
