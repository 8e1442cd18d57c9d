// Package chunk splits a total extraction window into bounded sub-intervals
// and runs a caller-supplied operation over them with bounded concurrency,
// so that one large query against a remote source becomes many smaller,
// independently issued ones.
package chunk

import (
	"fmt"

	"github.com/paolomorandini/dwh-migration-tools/pkg/interval"
)

// Plan is an ordered, contiguous, gap-free sequence of chunks exactly
// covering a total extraction window.
type Plan []interval.Interval

// Partition splits total into successive chunks of the length resolved
// from policy, starting at total.Start(). The final chunk is clipped so
// the plan ends exactly at total.EndExclusive(); it may be shorter than
// the other chunks, never longer and never empty. Partitioning the same
// window with the same policy always produces an identical plan.
func Partition(total interval.Interval, policy Policy) (Plan, error) {
	length, err := policy.chunkLength(total.Duration())
	if err != nil {
		return nil, err
	}

	var plan Plan
	start := total.Start()
	for start.Before(total.EndExclusive()) {
		end := start.Add(length)
		// if the rest of the window is smaller than a full chunk, the
		// final chunk is the remainder
		if end.After(total.EndExclusive()) {
			end = total.EndExclusive()
		}

		chunk, err := interval.New(start, end)
		if err != nil {
			return nil, err
		}
		plan = append(plan, chunk)
		start = end
	}
	return plan, nil
}

// Validate checks the plan invariants: chunks ascending by start, each
// chunk beginning exactly where the previous one ended.
func (p Plan) Validate() error {
	for i := 1; i < len(p); i++ {
		if !p[i].Start().Equal(p[i-1].EndExclusive()) {
			return fmt.Errorf("chunk %d starts at %s but chunk %d ends at %s",
				i, p[i].Start(), i-1, p[i-1].EndExclusive())
		}
	}
	return nil
}

// Span returns the bounding union of the whole plan, which for a valid
// plan is exactly the window it was partitioned from.
func (p Plan) Span() (interval.Interval, error) {
	return interval.SpanAll(p)
}
