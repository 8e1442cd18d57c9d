package chunk

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"k8s.io/apimachinery/pkg/util/clock"

	"github.com/paolomorandini/dwh-migration-tools/pkg/interval"
)

// ChunkFunc is the caller-supplied operation run once per chunk, e.g.
// "extract rows whose timestamp falls in this range". The returned value is
// opaque to the dispatcher.
type ChunkFunc func(ctx context.Context, chunk interval.Interval) (interface{}, error)

// Result is the outcome of a single chunk. Exactly one of Value and Err is
// meaningful.
type Result struct {
	Chunk interval.Interval
	Value interface{}
	Err   error
}

// ChunkError wraps the failure of the caller-supplied operation for one
// chunk, identified by its position in the plan.
type ChunkError struct {
	Index int
	Chunk interval.Interval
	Err   error
}

func (e *ChunkError) Error() string {
	return fmt.Sprintf("chunk %d (%s) failed: %v", e.Index, e.Chunk, e.Err)
}

// ExecutionError aggregates every chunk failure from a single Run. Chunks
// that succeeded still have their results reported alongside it.
type ExecutionError struct {
	Failures []*ChunkError
}

func (e *ExecutionError) Error() string {
	if len(e.Failures) == 1 {
		return e.Failures[0].Error()
	}
	return fmt.Sprintf("%d chunks failed, first failure: %v", len(e.Failures), e.Failures[0])
}

// Dispatcher runs a chunk plan with bounded concurrency. A chunk's failure
// never cancels its siblings: every chunk runs to completion or its own
// failure and has its outcome reported individually.
type Dispatcher struct {
	logger  logrus.FieldLogger
	clock   clock.Clock
	metrics DispatcherMetricsCollectors
}

func NewDispatcher(logger logrus.FieldLogger, clock clock.Clock, metrics DispatcherMetricsCollectors) *Dispatcher {
	return &Dispatcher{
		logger:  logger.WithField("component", "ChunkDispatcher"),
		clock:   clock,
		metrics: metrics,
	}
}

// Run executes perChunk once for every chunk in plan, with at most
// concurrency chunks in flight at a time. The returned slice always has one
// entry per chunk, in plan order regardless of completion order. If any
// chunk failed, the returned error is an *ExecutionError collecting every
// failure; a per-chunk error is never returned on its own and never aborts
// sibling chunks. Cancelling ctx prevents unstarted chunks from running;
// they record the context error as their outcome.
func (d *Dispatcher) Run(ctx context.Context, plan Plan, concurrency int, perChunk ChunkFunc) ([]Result, error) {
	if concurrency < 1 {
		return nil, fmt.Errorf("concurrency must be at least 1, got %d", concurrency)
	}
	if err := plan.Validate(); err != nil {
		return nil, err
	}
	if len(plan) == 0 {
		return nil, nil
	}

	logger := d.logger.WithFields(logrus.Fields{
		"chunks":      len(plan),
		"concurrency": concurrency,
	})
	logger.Debugf("dispatching %d chunks between %s and %s", len(plan), plan[0].Start(), plan[len(plan)-1].EndExclusive())

	// a channel acts as a semaphore to limit the number of chunk
	// operations happening in parallel
	semaphore := make(chan struct{}, concurrency)
	results := make([]Result, len(plan))

	var g errgroup.Group
	for i, planChunk := range plan {
		i, planChunk := i, planChunk
		results[i].Chunk = planChunk

		g.Go(func() error {
			// check for cancellation before acquiring the semaphore, so
			// unstarted chunks never run with a dead context
			select {
			case <-ctx.Done():
				results[i].Err = ctx.Err()
				return nil
			default:
			}

			select {
			case semaphore <- struct{}{}:
			case <-ctx.Done():
				results[i].Err = ctx.Err()
				return nil
			}
			// decrement the semaphore at the end
			defer func() {
				<-semaphore
			}()

			d.metrics.ChunksDispatchedCounter.Inc()
			d.metrics.RunningChunksGauge.Inc()
			chunkStart := d.clock.Now()

			value, err := perChunk(ctx, planChunk)

			chunkDuration := d.clock.Since(chunkStart)
			d.metrics.RunningChunksGauge.Dec()
			d.metrics.ChunkDurationHistogram.Observe(chunkDuration.Seconds())

			if err != nil {
				d.metrics.ChunksFailedCounter.Inc()
				logger.WithError(err).Errorf("chunk %s failed after %s", planChunk, chunkDuration)
				results[i].Err = err
				// the failure is reported in the results, not returned,
				// so sibling chunks keep running
				return nil
			}

			logger.Debugf("chunk %s finished in %s", planChunk, chunkDuration)
			results[i].Value = value
			return nil
		})
	}

	// the goroutines only ever return nil, Wait is just the join point
	g.Wait()

	var execErr *ExecutionError
	for i := range results {
		if results[i].Err == nil {
			continue
		}
		if execErr == nil {
			execErr = &ExecutionError{}
		}
		execErr.Failures = append(execErr.Failures, &ChunkError{
			Index: i,
			Chunk: results[i].Chunk,
			Err:   results[i].Err,
		})
	}
	if execErr != nil {
		return results, execErr
	}
	return results, nil
}
