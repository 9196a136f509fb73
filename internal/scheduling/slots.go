package scheduling

import "time"

// SlotRequest describes the footprint a candidate start time must fit:
// [start-BufferBefore, start+Duration+BufferAfter] fully inside one open
// interval. Granularity fixes the candidate grid.
type SlotRequest struct {
	Duration     time.Duration
	Granularity  time.Duration
	BufferBefore time.Duration
	BufferAfter  time.Duration
}

// SlotIter walks candidate start times lazily; it is finite and can be
// restarted with Reset. Candidates are not conflict-checked.
//
// The grid for each open interval is open.Start, open.Start+G, ... and
// runs while start+Duration <= open.End. A grid point whose buffered
// footprint crosses the interval boundary is excluded, not shifted.
type SlotIter struct {
	open []Interval
	req  SlotRequest

	idx  int
	next time.Time
}

// Slots returns an iterator over candidate starts inside the open
// intervals. A zero or negative granularity defaults to 15 minutes.
func Slots(open []Interval, req SlotRequest) *SlotIter {
	if req.Granularity <= 0 {
		req.Granularity = 15 * time.Minute
	}
	it := &SlotIter{open: open, req: req}
	it.Reset()
	return it
}

// Reset rewinds the iterator to the first open interval.
func (it *SlotIter) Reset() {
	it.idx = 0
	if len(it.open) > 0 {
		it.next = it.open[0].Start
	}
}

// Next returns the next candidate start, or false when exhausted.
func (it *SlotIter) Next() (time.Time, bool) {
	for it.idx < len(it.open) {
		iv := it.open[it.idx]
		for !it.next.Add(it.req.Duration).After(iv.End) {
			start := it.next
			it.next = start.Add(it.req.Granularity)
			if it.fits(start, iv) {
				return start, true
			}
		}
		it.idx++
		if it.idx < len(it.open) {
			it.next = it.open[it.idx].Start
		}
	}
	return time.Time{}, false
}

// Collect drains the iterator into a slice.
func (it *SlotIter) Collect() []time.Time {
	var out []time.Time
	for {
		start, ok := it.Next()
		if !ok {
			return out
		}
		out = append(out, start)
	}
}

func (it *SlotIter) fits(start time.Time, iv Interval) bool {
	footprint := Interval{
		Start: start.Add(-it.req.BufferBefore),
		End:   start.Add(it.req.Duration + it.req.BufferAfter),
	}
	return iv.Contains(footprint)
}
