package interval

import (
	"errors"
	"sort"
)

// ErrEmptyInput is returned when an algebra function is given no intervals
// to operate on.
var ErrEmptyInput = errors.New("no intervals given")

// SpanAll folds Span across intervals, returning the bounding union of the
// whole sequence. Gaps between the intervals are absorbed, see Span.
// Returns ErrEmptyInput when intervals is empty.
func SpanAll(intervals []Interval) (Interval, error) {
	if len(intervals) == 0 {
		return Interval{}, ErrEmptyInput
	}

	spanned := intervals[0]
	for _, ivl := range intervals[1:] {
		spanned = spanned.Span(ivl)
	}
	return spanned, nil
}

// SortedByStart returns a copy of intervals sorted ascending by start.
// Ties are broken by the exclusive end, shorter intervals first, so the
// ordering is deterministic. The input slice is left untouched.
func SortedByStart(intervals []Interval) []Interval {
	sorted := make([]Interval, len(intervals))
	copy(sorted, intervals)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].start.Equal(sorted[j].start) {
			return sorted[i].endExclusive.Before(sorted[j].endExclusive)
		}
		return sorted[i].start.Before(sorted[j].start)
	})
	return sorted
}
