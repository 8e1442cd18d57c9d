package chunk

import (
	"fmt"
	"time"
)

// Policy bounds how a total extraction window is subdivided into chunks.
// Zero values mean a bound is unset. At least one of MaxChunkDuration or
// MaxChunks must be set.
type Policy struct {
	// MaxChunkDuration is the upper bound on a single chunk's length.
	MaxChunkDuration time.Duration
	// MinChunkDuration is the lower bound on a single chunk's length,
	// avoiding degenerate slicing into tiny queries.
	MinChunkDuration time.Duration
	// MaxChunks is the upper bound on the number of chunks in a plan.
	MaxChunks int64
}

// UnsatisfiablePolicyError is returned by Partition when the policy bounds
// cannot produce a valid plan for the requested window.
type UnsatisfiablePolicyError struct {
	Policy Policy
	Reason string
}

func (e *UnsatisfiablePolicyError) Error() string {
	return fmt.Sprintf("unsatisfiable chunk policy: %s", e.Reason)
}

// chunkLength resolves the chunk length for a window of the given total
// duration. When MaxChunkDuration and MaxChunks conflict, MaxChunks wins:
// fewer, larger chunks are preferred over more, smaller ones.
func (p Policy) chunkLength(total time.Duration) (time.Duration, error) {
	if p.MaxChunkDuration <= 0 && p.MaxChunks <= 0 {
		return 0, &UnsatisfiablePolicyError{
			Policy: p,
			Reason: "at least one of maxChunkDuration or maxChunks must be set",
		}
	}
	if p.MinChunkDuration > 0 && p.MaxChunkDuration > 0 && p.MinChunkDuration > p.MaxChunkDuration {
		return 0, &UnsatisfiablePolicyError{
			Policy: p,
			Reason: fmt.Sprintf("minChunkDuration %s exceeds maxChunkDuration %s", p.MinChunkDuration, p.MaxChunkDuration),
		}
	}

	var length time.Duration
	if p.MaxChunkDuration > 0 {
		length = p.MaxChunkDuration
		if length > total {
			length = total
		}
	}
	if p.MaxChunks > 0 {
		// the smallest length keeping the chunk count within MaxChunks
		perChunk := ceilDiv(total, p.MaxChunks)
		if length == 0 || perChunk > length {
			length = perChunk
		}
	}
	if p.MinChunkDuration > 0 && length < p.MinChunkDuration {
		length = p.MinChunkDuration
	}
	return length, nil
}

func ceilDiv(d time.Duration, n int64) time.Duration {
	return time.Duration((int64(d) + n - 1) / n)
}
