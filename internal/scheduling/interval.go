// Package scheduling holds the pure time-interval computations behind
// availability, conflict detection and recurrence expansion. Nothing in
// this package touches persistence or holds locks; callers may run it
// with unlimited parallelism.
package scheduling

import "time"

// Interval is a half-open time range [Start, End). An interval ending
// exactly where another begins does not overlap it.
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func NewInterval(start, end time.Time) Interval {
	return Interval{Start: start, End: end}
}

func (iv Interval) Duration() time.Duration {
	return iv.End.Sub(iv.Start)
}

func (iv Interval) IsZero() bool {
	return !iv.Start.Before(iv.End)
}

// Overlaps is the single overlap primitive shared by every conflict
// class: a.Start < b.End && a.End > b.Start. Touching endpoints do not
// conflict.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start.Before(other.End) && iv.End.After(other.Start)
}

// Contains reports whether other lies fully inside iv.
func (iv Interval) Contains(other Interval) bool {
	return !other.Start.Before(iv.Start) && !other.End.After(iv.End)
}

// Extend grows the interval by before/after padding.
func (iv Interval) Extend(before, after time.Duration) Interval {
	return Interval{Start: iv.Start.Add(-before), End: iv.End.Add(after)}
}

// Subtract removes sub from iv and returns the remaining pieces in
// order. Zero-length remainders are dropped, so a sub that exactly
// touches a boundary does not split the interval.
func (iv Interval) Subtract(sub Interval) []Interval {
	if !iv.Overlaps(sub) {
		return []Interval{iv}
	}
	var out []Interval
	if sub.Start.After(iv.Start) {
		out = append(out, Interval{Start: iv.Start, End: sub.Start})
	}
	if sub.End.Before(iv.End) {
		out = append(out, Interval{Start: sub.End, End: iv.End})
	}
	return out
}

// SubtractAll removes every sub interval from each interval in set,
// preserving chronological order.
func SubtractAll(set []Interval, subs []Interval) []Interval {
	out := set
	for _, sub := range subs {
		var next []Interval
		for _, iv := range out {
			next = append(next, iv.Subtract(sub)...)
		}
		out = next
	}
	return out
}

// Intersect clips iv to bound; the zero Interval is returned when they
// do not overlap.
func (iv Interval) Intersect(bound Interval) Interval {
	start := iv.Start
	if bound.Start.After(start) {
		start = bound.Start
	}
	end := iv.End
	if bound.End.Before(end) {
		end = bound.End
	}
	if !start.Before(end) {
		return Interval{}
	}
	return Interval{Start: start, End: end}
}
