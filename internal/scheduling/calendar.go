package scheduling

import (
	"time"

	"github.com/apptly/booking-api/internal/model"
)

// DayContext bundles the calendar inputs for one staff member on one
// date, as loaded by the persistence collaborator.
type DayContext struct {
	Date     time.Time
	Location *time.Location
	Hours    model.BranchHours
	Rows     []model.StaffSchedule // weekday defaults plus any single-date override
	TimeOff  []model.StaffTimeOff
}

// ResolveDay merges branch operating hours, the staff weekly schedule
// (or its single-date override), breaks and approved time-off into an
// ordered, non-overlapping list of open intervals for the date.
//
// An empty result means the staff member cannot be booked that day at
// all: branch closed, not working, or on approved leave.
func ResolveDay(day DayContext) []Interval {
	loc := day.Location
	if loc == nil {
		loc = day.Date.Location()
	}

	window, open := day.Hours.ForDay(day.Date.Weekday())
	if !open {
		return nil
	}

	row := pickScheduleRow(day.Rows, day.Date)
	if row == nil || !row.Working {
		return nil
	}

	for _, off := range day.TimeOff {
		if off.Status == model.TimeOffStatusApproved && off.Covers(day.Date) {
			return nil
		}
	}

	branch := Interval{
		Start: window.Open.At(day.Date, loc),
		End:   window.Close.At(day.Date, loc),
	}
	working := Interval{
		Start: row.Start.At(day.Date, loc),
		End:   row.End.At(day.Date, loc),
	}

	base := working.Intersect(branch)
	if base.IsZero() {
		return nil
	}

	breaks := make([]Interval, 0, len(row.Breaks))
	for _, b := range row.Breaks {
		breaks = append(breaks, Interval{
			Start: b.Start.At(day.Date, loc),
			End:   b.End.At(day.Date, loc),
		})
	}

	return SubtractAll([]Interval{base}, breaks)
}

// pickScheduleRow prefers a single-date override, then falls back to
// the weekday default that is valid on the date.
func pickScheduleRow(rows []model.StaffSchedule, date time.Time) *model.StaffSchedule {
	var weekday *model.StaffSchedule
	for i := range rows {
		row := &rows[i]
		if !row.AppliesOn(date) {
			continue
		}
		if row.Override {
			if row.Date != nil && sameDate(*row.Date, date) {
				return row
			}
			continue
		}
		if row.Weekday == date.Weekday() && weekday == nil {
			weekday = row
		}
	}
	return weekday
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
