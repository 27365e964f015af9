package tracecomp

import (
	"math"
	"slices"

	"github.com/vitalvas/mathtrace/series"
)

// TimestampUnion returns every timestamp that appears in any of the series,
// sorted ascending without duplicates.
//
//	A: [0, 10, 20]
//	B: [5, 15, 25]
//	-> [0, 5, 10, 15, 20, 25]
func TimestampUnion(bindings map[string]series.TimeSeries) []float64 {
	total := 0
	for _, ts := range bindings {
		if !series.IsNil(ts) {
			total += ts.Size()
		}
	}

	out := make([]float64, 0, total)
	for _, ts := range bindings {
		if series.IsNil(ts) {
			continue
		}
		for i := 0; i < ts.Size(); i++ {
			if t := ts.TimestampAt(i); !math.IsNaN(t) {
				out = append(out, t)
			}
		}
	}

	slices.Sort(out)
	return slices.Compact(out)
}

// TimestampValid reports whether t lies outside every gap wider than maxGap.
// A timestamp disqualified by one series is invalid for all of them.
//
// Before the first or after the last sample, the distance to that sample
// must not exceed maxGap. Otherwise the two samples around the insertion
// point of t must be at most maxGap apart.
func TimestampValid(t float64, bindings map[string]series.TimeSeries, maxGap float64) bool {
	for _, ts := range bindings {
		if !series.IsNil(ts) && !timestampValidIn(t, ts, maxGap) {
			return false
		}
	}
	return true
}

func timestampValidIn(t float64, ts series.TimeSeries, maxGap float64) bool {
	size := ts.Size()
	if size == 0 {
		return true
	}

	idx := ts.IndexForTimestamp(t)

	switch {
	case idx == 0:
		return math.Abs(t-ts.TimestampAt(0)) <= maxGap
	case idx >= size:
		return math.Abs(t-ts.TimestampAt(size-1)) <= maxGap
	}

	return ts.TimestampAt(idx)-ts.TimestampAt(idx-1) <= maxGap
}
