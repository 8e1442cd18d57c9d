// Package extract drives chunked extraction of a time-stamped dataset from
// a remote source. The actual extraction call is injected: connections,
// query execution and result serialization are the caller's responsibility.
package extract

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"k8s.io/apimachinery/pkg/util/clock"

	"github.com/paolomorandini/dwh-migration-tools/pkg/chunk"
	"github.com/paolomorandini/dwh-migration-tools/pkg/interval"
)

const (
	// cap a single run's window so an extractor that was stopped for an
	// extended amount of time doesn't produce a plan with too many chunks
	defaultMaxWindowDuration = 24 * time.Hour

	defaultConcurrency = 1
)

// ChunkExtractor issues the remote extraction call for a single chunk of
// the window. The returned value is opaque to the WindowedExtractor.
type ChunkExtractor interface {
	ExtractChunk(ctx context.Context, chunk interval.Interval) (interface{}, error)
}

type Config struct {
	// SourceName identifies the dataset being extracted, for logging.
	SourceName string
	// ChunkSize is the upper bound on a single chunk's duration.
	ChunkSize time.Duration
	// MaxChunks caps the number of chunks a single run will issue.
	MaxChunks int64
	// MaxWindowDuration caps the total window covered by a single
	// ExtractFromLastTimestamp run. Defaults to 24h.
	MaxWindowDuration time.Duration
	// Concurrency is the number of chunk extractions in flight at a time.
	// Defaults to 1.
	Concurrency int
}

// WindowedExtractor extracts a time-stamped dataset in bounded chunks. It
// tracks the end of the last successfully extracted chunk and will pick up
// where it left off if paused or stopped.
type WindowedExtractor struct {
	logger     logrus.FieldLogger
	clock      clock.Clock
	extractor  ChunkExtractor
	dispatcher *chunk.Dispatcher
	cfg        Config

	// extractLock ensures only one extraction is running at a time,
	// protecting the lastTimestamp field
	extractLock sync.Mutex

	// lastTimestamp is the exclusive end of the last successfully
	// extracted chunk
	lastTimestamp *time.Time
}

func NewWindowedExtractor(logger logrus.FieldLogger, clock clock.Clock, extractor ChunkExtractor, dispatcher *chunk.Dispatcher, cfg Config) *WindowedExtractor {
	logger = logger.WithFields(logrus.Fields{
		"component": "WindowedExtractor",
		"source":    cfg.SourceName,
		"chunkSize": cfg.ChunkSize,
	})
	if cfg.MaxWindowDuration == 0 {
		cfg.MaxWindowDuration = defaultMaxWindowDuration
	}
	if cfg.Concurrency == 0 {
		cfg.Concurrency = defaultConcurrency
	}

	return &WindowedExtractor{
		logger:     logger,
		clock:      clock,
		extractor:  extractor,
		dispatcher: dispatcher,
		cfg:        cfg,
	}
}

// LastTimestamp returns the exclusive end of the last successfully
// extracted chunk, or nil if nothing has been extracted yet.
func (w *WindowedExtractor) LastTimestamp() *time.Time {
	w.extractLock.Lock()
	defer w.extractLock.Unlock()
	return w.lastTimestamp
}

// ExtractFromLastTimestamp extracts the window between the last extracted
// timestamp and the current time, truncated to the hour. On the first run
// it backfills one chunk size before now. A failed chunk leaves the last
// timestamp before that chunk, so its window and everything after it are
// re-extracted on the next run.
func (w *WindowedExtractor) ExtractFromLastTimestamp(ctx context.Context) ([]chunk.Result, error) {
	w.extractLock.Lock()
	defer w.extractLock.Unlock()

	endTime := interval.TruncateToHour(w.clock.Now())

	var startTime time.Time
	if w.lastTimestamp != nil {
		startTime = *w.lastTimestamp
	} else {
		// no data extracted yet, backfill one window
		backfill := w.cfg.ChunkSize
		if backfill <= 0 {
			backfill = w.cfg.MaxWindowDuration
		}
		startTime = endTime.Add(-backfill)
		w.logger.Debugf("no data extracted from %s yet, backfilling from %s", w.cfg.SourceName, startTime)
	}

	// if the startTime is too far back, limit this run to
	// MaxWindowDuration; the rest is picked up by the next run
	if endTime.Sub(startTime) > w.cfg.MaxWindowDuration {
		endTime = startTime.Add(w.cfg.MaxWindowDuration)
	}

	if !startTime.Before(endTime) {
		w.logger.Debugf("no new window to extract from %s yet", w.cfg.SourceName)
		return nil, nil
	}

	total, err := interval.New(startTime, endTime)
	if err != nil {
		return nil, err
	}
	return w.extractRange(ctx, total)
}

// ExtractRange extracts an explicit window, chunked by the configured
// policy. The last extracted timestamp advances the same way as in
// ExtractFromLastTimestamp.
func (w *WindowedExtractor) ExtractRange(ctx context.Context, total interval.Interval) ([]chunk.Result, error) {
	w.extractLock.Lock()
	defer w.extractLock.Unlock()
	return w.extractRange(ctx, total)
}

func (w *WindowedExtractor) extractRange(ctx context.Context, total interval.Interval) ([]chunk.Result, error) {
	logger := w.logger.WithFields(logrus.Fields{
		"startTime": total.Start(),
		"endTime":   total.EndExclusive(),
	})

	plan, err := chunk.Partition(total, chunk.Policy{
		MaxChunkDuration: w.cfg.ChunkSize,
		MaxChunks:        w.cfg.MaxChunks,
	})
	if err != nil {
		return nil, err
	}
	logger.Infof("extracting window %s from %s in %d chunks", total, w.cfg.SourceName, len(plan))

	results, runErr := w.dispatcher.Run(ctx, plan, w.cfg.Concurrency, w.extractor.ExtractChunk)

	// advance only past the leading run of successful chunks, so a failed
	// chunk and everything after it are re-extracted next run
	for _, result := range results {
		if result.Err != nil {
			break
		}
		lastTS := result.Chunk.EndExclusive()
		w.lastTimestamp = &lastTS
	}

	if runErr != nil {
		logger.WithError(runErr).Errorf("error extracting window %s from %s", total, w.cfg.SourceName)
		return results, runErr
	}

	logger.Infof("finished extracting window %s from %s", total, w.cfg.SourceName)
	return results, nil
}
