package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type RecurrencePattern string

const (
	RecurrenceDaily   RecurrencePattern = "daily"
	RecurrenceWeekly  RecurrencePattern = "weekly"
	RecurrenceMonthly RecurrencePattern = "monthly"
)

const (
	SeriesStatusActive    = "active"
	SeriesStatusCancelled = "cancelled"
)

// RecurrenceSeries owns the occurrences generated from its pattern.
// Exactly one of Until / Count terminates the series.
type RecurrenceSeries struct {
	Base
	TenantID   uuid.UUID         `db:"tenant_id" json:"tenant_id"`
	Pattern    RecurrencePattern `db:"pattern" json:"pattern"`
	Interval   int               `db:"interval" json:"interval"`
	Weekdays   pq.Int64Array     `db:"weekdays" json:"weekdays,omitempty"`
	DayOfMonth int               `db:"day_of_month" json:"day_of_month,omitempty"`
	Until      *time.Time        `db:"until" json:"until,omitempty"`
	Count      int               `db:"count" json:"count,omitempty"`
	Exceptions pq.StringArray    `db:"exceptions" json:"exceptions,omitempty"` // dates as 2006-01-02
	Status     string            `db:"status" json:"status"`
}

// WeekdaySet converts the stored weekday array.
func (s *RecurrenceSeries) WeekdaySet() []time.Weekday {
	out := make([]time.Weekday, 0, len(s.Weekdays))
	for _, d := range s.Weekdays {
		out = append(out, time.Weekday(d))
	}
	return out
}

// ExceptionSet converts the stored exception dates for O(1) lookup.
func (s *RecurrenceSeries) ExceptionSet() map[string]struct{} {
	out := make(map[string]struct{}, len(s.Exceptions))
	for _, d := range s.Exceptions {
		out[d] = struct{}{}
	}
	return out
}

// RecurrenceSpec is the caller-facing descriptor used to create a
// series together with its first occurrence's booking parameters.
type RecurrenceSpec struct {
	Pattern    RecurrencePattern `json:"pattern" validate:"required,oneof=daily weekly monthly"`
	Interval   int               `json:"interval" validate:"required,min=1"`
	Weekdays   []time.Weekday    `json:"weekdays,omitempty"`
	DayOfMonth int               `json:"day_of_month,omitempty"`
	Until      *time.Time        `json:"until,omitempty"`
	Count      int               `json:"count,omitempty"`
	Exceptions []time.Time       `json:"exceptions,omitempty"`
}
