package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apptly/booking-api/internal/model"
	"github.com/apptly/booking-api/pkg/errors"
)

func TestExpandDaily(t *testing.T) {
	first := time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC)

	t.Run("count end condition", func(t *testing.T) {
		got, err := ExpandSeries(model.RecurrenceSpec{
			Pattern: model.RecurrenceDaily, Interval: 2, Count: 3,
		}, first)
		require.NoError(t, err)
		assert.Equal(t, []time.Time{
			first, first.AddDate(0, 0, 2), first.AddDate(0, 0, 4),
		}, got)
	})

	t.Run("until end condition is inclusive", func(t *testing.T) {
		until := time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC)
		got, err := ExpandSeries(model.RecurrenceSpec{
			Pattern: model.RecurrenceDaily, Interval: 1, Until: &until,
		}, first)
		require.NoError(t, err)
		assert.Len(t, got, 3) // 3rd, 4th, 5th
	})
}

func TestExpandWeekly(t *testing.T) {
	// 2024-06-03 is a Monday.
	first := time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC)

	t.Run("mon wed fri over four weeks yields twelve", func(t *testing.T) {
		got, err := ExpandSeries(model.RecurrenceSpec{
			Pattern:  model.RecurrenceWeekly,
			Interval: 1,
			Weekdays: []time.Weekday{time.Monday, time.Wednesday, time.Friday},
			Count:    12,
		}, first)
		require.NoError(t, err)
		require.Len(t, got, 12)
		assert.Equal(t, first, got[0])
		assert.Equal(t, time.Wednesday, got[1].Weekday())
		assert.Equal(t, time.Friday, got[2].Weekday())
		// Chronological across block boundaries.
		for i := 1; i < len(got); i++ {
			assert.True(t, got[i].After(got[i-1]))
		}
		assert.Equal(t, first.AddDate(0, 0, 25), got[11]) // 4th Friday
	})

	t.Run("every second week skips the off week", func(t *testing.T) {
		got, err := ExpandSeries(model.RecurrenceSpec{
			Pattern:  model.RecurrenceWeekly,
			Interval: 2,
			Weekdays: []time.Weekday{time.Monday},
			Count:    3,
		}, first)
		require.NoError(t, err)
		assert.Equal(t, []time.Time{
			first, first.AddDate(0, 0, 14), first.AddDate(0, 0, 28),
		}, got)
	})

	t.Run("exceptions are dropped before booking", func(t *testing.T) {
		got, err := ExpandSeries(model.RecurrenceSpec{
			Pattern:    model.RecurrenceWeekly,
			Interval:   1,
			Weekdays:   []time.Weekday{time.Monday, time.Wednesday, time.Friday},
			Count:      12,
			Exceptions: []time.Time{first.AddDate(0, 0, 2), first.AddDate(0, 0, 7)},
		}, first)
		require.NoError(t, err)
		assert.Len(t, got, 10)
		for _, d := range got {
			assert.NotEqual(t, first.AddDate(0, 0, 2), d)
			assert.NotEqual(t, first.AddDate(0, 0, 7), d)
		}
	})
}

func TestExpandMonthly(t *testing.T) {
	t.Run("same day every month", func(t *testing.T) {
		first := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
		got, err := ExpandSeries(model.RecurrenceSpec{
			Pattern: model.RecurrenceMonthly, Interval: 1, DayOfMonth: 15, Count: 4,
		}, first)
		require.NoError(t, err)
		require.Len(t, got, 4)
		assert.Equal(t, time.February, got[1].Month())
		assert.Equal(t, 15, got[3].Day())
	})

	t.Run("short month is skipped not clamped", func(t *testing.T) {
		first := time.Date(2024, 1, 31, 9, 0, 0, 0, time.UTC)
		got, err := ExpandSeries(model.RecurrenceSpec{
			Pattern: model.RecurrenceMonthly, Interval: 1, DayOfMonth: 31, Count: 3,
		}, first)
		require.NoError(t, err)
		require.Len(t, got, 3)
		// Feb, Apr and Jun lack a 31st.
		assert.Equal(t, time.January, got[0].Month())
		assert.Equal(t, time.March, got[1].Month())
		assert.Equal(t, time.May, got[2].Month())
	})

	t.Run("year rollover", func(t *testing.T) {
		first := time.Date(2024, 11, 10, 9, 0, 0, 0, time.UTC)
		got, err := ExpandSeries(model.RecurrenceSpec{
			Pattern: model.RecurrenceMonthly, Interval: 2, DayOfMonth: 10, Count: 3,
		}, first)
		require.NoError(t, err)
		assert.Equal(t, 2025, got[1].Year())
		assert.Equal(t, time.January, got[1].Month())
		assert.Equal(t, time.March, got[2].Month())
	})
}

func TestExpandValidation(t *testing.T) {
	first := time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		spec model.RecurrenceSpec
	}{
		{"zero interval", model.RecurrenceSpec{Pattern: model.RecurrenceDaily, Interval: 0, Count: 3}},
		{"no end condition", model.RecurrenceSpec{Pattern: model.RecurrenceDaily, Interval: 1}},
		{"weekly without weekdays", model.RecurrenceSpec{Pattern: model.RecurrenceWeekly, Interval: 1, Count: 3}},
		{"monthly day out of range", model.RecurrenceSpec{Pattern: model.RecurrenceMonthly, Interval: 1, DayOfMonth: 32, Count: 3}},
		{"unknown pattern", model.RecurrenceSpec{Pattern: "yearly", Interval: 1, Count: 3}},
		{"count above cap", model.RecurrenceSpec{Pattern: model.RecurrenceDaily, Interval: 1, Count: 1000}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ExpandSeries(tt.spec, first)
			require.Error(t, err)
			assert.True(t, errors.IsKind(err, errors.KindInvalidRecurrence))
		})
	}
}
