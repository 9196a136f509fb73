package scheduling

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apptly/booking-api/internal/model"
)

// monday is a fixed Monday used throughout the calendar tests.
var monday = time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)

func branchWeek(open, close model.MinuteOfDay) model.BranchHours {
	hours := model.BranchHours{}
	for d := time.Sunday; d <= time.Saturday; d++ {
		hours[d] = model.OperatingWindow{Weekday: d, Open: open, Close: close}
	}
	return hours
}

func workingRow(day time.Weekday, start, end model.MinuteOfDay, breaks ...model.ScheduleBreak) model.StaffSchedule {
	return model.StaffSchedule{
		Weekday: day,
		Start:   start,
		End:     end,
		Working: true,
		Breaks:  breaks,
	}
}

func TestResolveDay(t *testing.T) {
	lunch := model.ScheduleBreak{Start: 12 * 60, End: 13 * 60, Label: "lunch"}

	t.Run("branch hours clipped by staff hours minus breaks", func(t *testing.T) {
		got := ResolveDay(DayContext{
			Date:  monday,
			Hours: branchWeek(9*60, 17*60),
			Rows:  []model.StaffSchedule{workingRow(time.Monday, 10*60, 18*60, lunch)},
		})
		require.Len(t, got, 2)
		assert.Equal(t, iv(t, "10:00", "12:00"), got[0])
		assert.Equal(t, iv(t, "13:00", "17:00"), got[1])
	})

	t.Run("closed day yields nothing", func(t *testing.T) {
		hours := branchWeek(9*60, 17*60)
		hours[time.Monday] = model.OperatingWindow{Weekday: time.Monday, Closed: true}
		got := ResolveDay(DayContext{
			Date:  monday,
			Hours: hours,
			Rows:  []model.StaffSchedule{workingRow(time.Monday, 9*60, 17*60)},
		})
		assert.Empty(t, got)
	})

	t.Run("non-working weekday yields nothing", func(t *testing.T) {
		row := workingRow(time.Monday, 9*60, 17*60)
		row.Working = false
		got := ResolveDay(DayContext{
			Date:  monday,
			Hours: branchWeek(9*60, 17*60),
			Rows:  []model.StaffSchedule{row},
		})
		assert.Empty(t, got)
	})

	t.Run("approved time off blocks the whole day", func(t *testing.T) {
		got := ResolveDay(DayContext{
			Date:  monday,
			Hours: branchWeek(9*60, 17*60),
			Rows:  []model.StaffSchedule{workingRow(time.Monday, 9*60, 17*60)},
			TimeOff: []model.StaffTimeOff{{
				StaffID:   uuid.New(),
				StartDate: monday.AddDate(0, 0, -1),
				EndDate:   monday.AddDate(0, 0, 1),
				Status:    model.TimeOffStatusApproved,
			}},
		})
		assert.Empty(t, got)
	})

	t.Run("pending time off does not block", func(t *testing.T) {
		got := ResolveDay(DayContext{
			Date:  monday,
			Hours: branchWeek(9*60, 17*60),
			Rows:  []model.StaffSchedule{workingRow(time.Monday, 9*60, 17*60)},
			TimeOff: []model.StaffTimeOff{{
				StartDate: monday,
				EndDate:   monday,
				Status:    model.TimeOffStatusPending,
			}},
		})
		require.Len(t, got, 1)
		assert.Equal(t, iv(t, "09:00", "17:00"), got[0])
	})

	t.Run("single-date override replaces weekday default", func(t *testing.T) {
		date := monday
		override := workingRow(time.Monday, 14*60, 16*60)
		override.Override = true
		override.Date = &date
		got := ResolveDay(DayContext{
			Date:  monday,
			Hours: branchWeek(9*60, 17*60),
			Rows:  []model.StaffSchedule{workingRow(time.Monday, 9*60, 17*60), override},
		})
		require.Len(t, got, 1)
		assert.Equal(t, iv(t, "14:00", "16:00"), got[0])
	})

	t.Run("override for another date is ignored", func(t *testing.T) {
		other := monday.AddDate(0, 0, 7)
		override := workingRow(time.Monday, 14*60, 16*60)
		override.Override = true
		override.Date = &other
		got := ResolveDay(DayContext{
			Date:  monday,
			Hours: branchWeek(9*60, 17*60),
			Rows:  []model.StaffSchedule{workingRow(time.Monday, 9*60, 17*60), override},
		})
		require.Len(t, got, 1)
		assert.Equal(t, iv(t, "09:00", "17:00"), got[0])
	})

	t.Run("break touching closing time does not emit empty interval", func(t *testing.T) {
		tail := model.ScheduleBreak{Start: 16 * 60, End: 17 * 60}
		got := ResolveDay(DayContext{
			Date:  monday,
			Hours: branchWeek(9*60, 17*60),
			Rows:  []model.StaffSchedule{workingRow(time.Monday, 9*60, 17*60, tail)},
		})
		require.Len(t, got, 1)
		assert.Equal(t, iv(t, "09:00", "16:00"), got[0])
	})

	t.Run("expired validity range is skipped", func(t *testing.T) {
		until := monday.AddDate(0, 0, -7)
		row := workingRow(time.Monday, 9*60, 17*60)
		row.ValidUntil = &until
		got := ResolveDay(DayContext{
			Date:  monday,
			Hours: branchWeek(9*60, 17*60),
			Rows:  []model.StaffSchedule{row},
		})
		assert.Empty(t, got)
	})
}
