package chunk

import (
	"context"
	"fmt"
	"io/ioutil"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/apimachinery/pkg/util/clock"

	"github.com/paolomorandini/dwh-migration-tools/pkg/interval"
)

func newTestDispatcher() *Dispatcher {
	logger := logrus.New()
	logger.SetOutput(ioutil.Discard)
	return NewDispatcher(logger, clock.RealClock{}, NewDispatcherMetricsCollectors())
}

func testPlan(t *testing.T, chunks int) Plan {
	t.Helper()
	total := mustInterval(t, base, base.Add(time.Duration(chunks)*time.Hour))
	plan, err := Partition(total, Policy{MaxChunkDuration: time.Hour})
	require.NoError(t, err)
	require.Len(t, plan, chunks)
	return plan
}

func TestRunReportsResultsInPlanOrder(t *testing.T) {
	plan := testPlan(t, 8)
	dispatcher := newTestDispatcher()

	results, err := dispatcher.Run(context.Background(), plan, 4, func(_ context.Context, chunk interval.Interval) (interface{}, error) {
		return chunk.Start(), nil
	})
	require.NoError(t, err)

	require.Len(t, results, len(plan))
	for i, result := range results {
		assert.True(t, result.Chunk.Equal(plan[i]), "result %d is not in plan order", i)
		assert.NoError(t, result.Err)
		assert.Equal(t, plan[i].Start(), result.Value)
	}
}

func TestRunIsolatesChunkFailures(t *testing.T) {
	const failingChunk = 2
	plan := testPlan(t, 5)
	dispatcher := newTestDispatcher()

	var executed int
	var executedLock sync.Mutex

	results, err := dispatcher.Run(context.Background(), plan, 2, func(_ context.Context, chunk interval.Interval) (interface{}, error) {
		executedLock.Lock()
		executed++
		executedLock.Unlock()

		if chunk.Equal(plan[failingChunk]) {
			return nil, fmt.Errorf("extraction of %s failed", chunk)
		}
		return "ok", nil
	})

	// every chunk ran despite the failure
	assert.Equal(t, len(plan), executed)

	require.Len(t, results, len(plan))
	for i, result := range results {
		if i == failingChunk {
			assert.Error(t, result.Err)
			assert.Nil(t, result.Value)
		} else {
			assert.NoError(t, result.Err)
			assert.Equal(t, "ok", result.Value)
		}
	}

	require.Error(t, err)
	execErr, ok := err.(*ExecutionError)
	require.True(t, ok, "expected an *ExecutionError, got %T", err)
	require.Len(t, execErr.Failures, 1)
	assert.Equal(t, failingChunk, execErr.Failures[0].Index)
	assert.True(t, execErr.Failures[0].Chunk.Equal(plan[failingChunk]))
}

func TestRunBoundsConcurrency(t *testing.T) {
	const concurrency = 2
	plan := testPlan(t, 10)
	dispatcher := newTestDispatcher()

	var inFlight, maxInFlight int
	var inFlightLock sync.Mutex

	_, err := dispatcher.Run(context.Background(), plan, concurrency, func(_ context.Context, _ interval.Interval) (interface{}, error) {
		inFlightLock.Lock()
		inFlight++
		if inFlight > maxInFlight {
			maxInFlight = inFlight
		}
		inFlightLock.Unlock()

		time.Sleep(time.Millisecond)

		inFlightLock.Lock()
		inFlight--
		inFlightLock.Unlock()
		return nil, nil
	})
	require.NoError(t, err)

	assert.LessOrEqual(t, maxInFlight, concurrency)
	assert.Greater(t, maxInFlight, 0)
}

func TestRunWithCancelledContext(t *testing.T) {
	plan := testPlan(t, 3)
	dispatcher := newTestDispatcher()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := dispatcher.Run(ctx, plan, 1, func(_ context.Context, chunk interval.Interval) (interface{}, error) {
		t.Errorf("chunk %s should not have run", chunk)
		return nil, nil
	})

	require.Len(t, results, len(plan))
	for _, result := range results {
		assert.Equal(t, context.Canceled, result.Err)
	}

	execErr, ok := err.(*ExecutionError)
	require.True(t, ok, "expected an *ExecutionError, got %T", err)
	assert.Len(t, execErr.Failures, len(plan))
}

func TestRunRejectsInvalidConcurrency(t *testing.T) {
	plan := testPlan(t, 2)
	dispatcher := newTestDispatcher()

	for _, concurrency := range []int{0, -1} {
		_, err := dispatcher.Run(context.Background(), plan, concurrency, func(_ context.Context, _ interval.Interval) (interface{}, error) {
			return nil, nil
		})
		assert.Error(t, err)
	}
}

func TestRunRejectsInvalidPlans(t *testing.T) {
	gap := Plan{
		mustInterval(t, base, base.Add(time.Hour)),
		mustInterval(t, base.Add(2*time.Hour), base.Add(3*time.Hour)),
	}
	dispatcher := newTestDispatcher()

	results, err := dispatcher.Run(context.Background(), gap, 1, func(_ context.Context, _ interval.Interval) (interface{}, error) {
		return nil, nil
	})
	assert.Error(t, err)
	assert.Nil(t, results)
}

func TestRunWithEmptyPlan(t *testing.T) {
	dispatcher := newTestDispatcher()

	results, err := dispatcher.Run(context.Background(), nil, 1, func(_ context.Context, _ interval.Interval) (interface{}, error) {
		return nil, nil
	})
	assert.NoError(t, err)
	assert.Empty(t, results)
}
