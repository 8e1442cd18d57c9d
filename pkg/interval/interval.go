package interval

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// Granularity is the finest time unit the extraction system operates on.
// Window bounds are expected to be truncated to whole hours before an
// Interval is constructed, see TruncateToHour.
const Granularity = time.Hour

// ErrInvalidRange is returned when constructing an interval whose start is
// not strictly before its exclusive end.
var ErrInvalidRange = errors.New("start date must be before end date")

// Interval is an immutable half-open time range [start, endExclusive).
// Both bounds are stored in UTC. The zero value is not a valid Interval,
// use New.
type Interval struct {
	start        time.Time
	endExclusive time.Time
}

// New returns the interval [start, endExclusive) with both timestamps
// normalized to UTC. Returns ErrInvalidRange unless start is strictly
// before endExclusive.
func New(start, endExclusive time.Time) (Interval, error) {
	if !start.Before(endExclusive) {
		return Interval{}, ErrInvalidRange
	}
	return Interval{
		start:        start.UTC(),
		endExclusive: endExclusive.UTC(),
	}, nil
}

// ParseUnix takes 2 strings containing representations of integer Unix
// timestamps and returns the interval between them. The timestamps must be
// valid.
func ParseUnix(startStr, endStr string) (Interval, error) {
	start, err := strconv.ParseInt(startStr, 10, 64)
	if err != nil {
		return Interval{}, fmt.Errorf("couldn't parse start of interval '%s': %v", startStr, err)
	}

	end, err := strconv.ParseInt(endStr, 10, 64)
	if err != nil {
		return Interval{}, fmt.Errorf("couldn't parse end of interval '%s': %v", endStr, err)
	}

	return New(time.Unix(start, 0), time.Unix(end, 0))
}

// Start returns the inclusive start of the interval.
func (ivl Interval) Start() time.Time {
	return ivl.start
}

// EndExclusive returns the exclusive end of the interval.
func (ivl Interval) EndExclusive() time.Time {
	return ivl.endExclusive
}

// EndInclusive returns the last timestamp inside the interval at the
// system granularity, exactly one Granularity before EndExclusive.
func (ivl Interval) EndInclusive() time.Time {
	return ivl.endExclusive.Add(-Granularity)
}

// Duration returns the length of the interval.
func (ivl Interval) Duration() time.Duration {
	return ivl.endExclusive.Sub(ivl.start)
}

// Span returns the bounding union of both intervals: the smallest single
// interval containing ivl and other. If the intervals are disjoint the
// result also covers the gap between them, so Span is not an adjacency-only
// merge. Callers that must not absorb gaps need a different operation.
func (ivl Interval) Span(other Interval) Interval {
	spanned := ivl
	if other.start.Before(spanned.start) {
		spanned.start = other.start
	}
	if other.endExclusive.After(spanned.endExclusive) {
		spanned.endExclusive = other.endExclusive
	}
	return spanned
}

// Overlaps returns true if both intervals share at least one instant.
// Adjacent intervals do not overlap.
func (ivl Interval) Overlaps(other Interval) bool {
	return ivl.start.Before(other.endExclusive) && other.start.Before(ivl.endExclusive)
}

// Contains returns true if t falls within the interval. The start is
// included, the exclusive end is not.
func (ivl Interval) Contains(t time.Time) bool {
	return !t.Before(ivl.start) && t.Before(ivl.endExclusive)
}

// Equal returns true if both intervals cover the same range.
func (ivl Interval) Equal(other Interval) bool {
	return ivl.start.Equal(other.start) && ivl.endExclusive.Equal(other.endExclusive)
}

// String returns a human readable representation of the interval.
func (ivl Interval) String() string {
	return fmt.Sprintf("Interval[%s to %s)", ivl.start.Format(time.RFC3339), ivl.endExclusive.Format(time.RFC3339))
}

// TruncateToHour rounds t down to the whole hour in UTC.
func TruncateToHour(t time.Time) time.Time {
	return t.UTC().Truncate(time.Hour)
}
