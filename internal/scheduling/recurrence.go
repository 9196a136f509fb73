package scheduling

import (
	"sort"
	"time"

	"github.com/apptly/booking-api/internal/model"
	"github.com/apptly/booking-api/pkg/errors"
)

// maxOccurrences caps expansion so a malformed or open-ended series can
// never produce an unbounded batch.
const maxOccurrences = 366

const dateLayout = "2006-01-02"

// ExpandSeries turns a recurrence descriptor plus the first occurrence
// into the ordered list of occurrence start times, with exception dates
// already removed. Each entry keeps the first occurrence's time of day.
//
// Months shorter than a monthly series' day-of-month are skipped, never
// clamped to month end.
func ExpandSeries(spec model.RecurrenceSpec, first time.Time) ([]time.Time, error) {
	if err := validateSpec(spec); err != nil {
		return nil, err
	}

	exceptions := make(map[string]struct{}, len(spec.Exceptions))
	for _, d := range spec.Exceptions {
		exceptions[d.Format(dateLayout)] = struct{}{}
	}

	var dates []time.Time
	switch spec.Pattern {
	case model.RecurrenceDaily:
		dates = expandDaily(spec, first)
	case model.RecurrenceWeekly:
		dates = expandWeekly(spec, first)
	case model.RecurrenceMonthly:
		dates = expandMonthly(spec, first)
	}

	out := dates[:0]
	for _, d := range dates {
		if _, skip := exceptions[d.Format(dateLayout)]; skip {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

func validateSpec(spec model.RecurrenceSpec) error {
	if spec.Interval < 1 {
		return errors.InvalidRecurrence("interval must be at least 1")
	}
	if spec.Until == nil && spec.Count <= 0 {
		return errors.InvalidRecurrence("series needs an end date or an occurrence count")
	}
	if spec.Count > maxOccurrences {
		return errors.InvalidRecurrence("occurrence count exceeds the series limit")
	}
	switch spec.Pattern {
	case model.RecurrenceDaily:
	case model.RecurrenceWeekly:
		if len(spec.Weekdays) == 0 {
			return errors.InvalidRecurrence("weekly pattern needs at least one weekday")
		}
		for _, d := range spec.Weekdays {
			if d < time.Sunday || d > time.Saturday {
				return errors.InvalidRecurrence("weekday out of range")
			}
		}
	case model.RecurrenceMonthly:
		if spec.DayOfMonth < 1 || spec.DayOfMonth > 31 {
			return errors.InvalidRecurrence("day of month must be between 1 and 31")
		}
	default:
		return errors.InvalidRecurrence("unknown pattern")
	}
	return nil
}

// done reports whether the candidate date exceeds the end condition.
func done(spec model.RecurrenceSpec, date time.Time, emitted int) bool {
	if spec.Until != nil && date.After(endOfDay(*spec.Until)) {
		return true
	}
	return spec.Count > 0 && emitted >= spec.Count
}

func expandDaily(spec model.RecurrenceSpec, first time.Time) []time.Time {
	var out []time.Time
	for d := first; len(out) < maxOccurrences; d = d.AddDate(0, 0, spec.Interval) {
		if done(spec, d, len(out)) {
			break
		}
		out = append(out, d)
	}
	return out
}

// expandWeekly emits one occurrence per matching weekday inside every
// Nth week block, in chronological order. The block containing the
// first occurrence starts at that week's Sunday.
func expandWeekly(spec model.RecurrenceSpec, first time.Time) []time.Time {
	wanted := make(map[time.Weekday]struct{}, len(spec.Weekdays))
	for _, d := range spec.Weekdays {
		wanted[d] = struct{}{}
	}

	weekStart := first.AddDate(0, 0, -int(first.Weekday()))

	var out []time.Time
	for block := weekStart; len(out) < maxOccurrences; block = block.AddDate(0, 0, 7*spec.Interval) {
		stop := false
		for i := 0; i < 7; i++ {
			d := block.AddDate(0, 0, i)
			if d.Before(first) {
				continue
			}
			if _, ok := wanted[d.Weekday()]; !ok {
				continue
			}
			if done(spec, d, len(out)) {
				stop = true
				break
			}
			out = append(out, d)
			if len(out) >= maxOccurrences {
				break
			}
		}
		if stop {
			break
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

func expandMonthly(spec model.RecurrenceSpec, first time.Time) []time.Time {
	hour, min, _ := first.Clock()
	loc := first.Location()

	var out []time.Time
	year, month, _ := first.Date()
	// The month scan is bounded independently of the end condition so a
	// day-of-month that never lands (e.g. 30 every February) terminates.
	for months := 0; len(out) < maxOccurrences && months <= 12*maxOccurrences; months += spec.Interval {
		y, m := addMonths(year, month, months)
		if daysIn(y, m) < spec.DayOfMonth {
			// Short month: skip the occurrence entirely.
			if spec.Until != nil && time.Date(y, m, 1, 0, 0, 0, 0, loc).After(endOfDay(*spec.Until)) {
				break
			}
			continue
		}
		d := time.Date(y, m, spec.DayOfMonth, hour, min, 0, 0, loc)
		if d.Before(first) {
			continue
		}
		if done(spec, d, len(out)) {
			break
		}
		out = append(out, d)
	}
	return out
}

func addMonths(year int, month time.Month, n int) (int, time.Month) {
	total := year*12 + int(month) - 1 + n
	return total / 12, time.Month(total%12 + 1)
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}
