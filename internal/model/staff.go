package model

import (
	"time"

	"github.com/google/uuid"
)

type Staff struct {
	Base
	TenantID uuid.UUID `db:"tenant_id" json:"tenant_id"`
	BranchID uuid.UUID `db:"branch_id" json:"branch_id"`
	Email    string    `db:"email" json:"email"`
	Name     string    `db:"name" json:"name"`
	Status   string    `db:"status" json:"status"`
}

// StaffSchedule is one weekday row of a staff member's working hours at
// a branch. An override row (Override true, Date set) replaces the
// weekday default for that single calendar date.
type StaffSchedule struct {
	Base
	StaffID    uuid.UUID   `db:"staff_id" json:"staff_id"`
	BranchID   uuid.UUID   `db:"branch_id" json:"branch_id"`
	Weekday    time.Weekday `db:"weekday" json:"weekday"`
	Start      MinuteOfDay `db:"start_minute" json:"start"`
	End        MinuteOfDay `db:"end_minute" json:"end"`
	Working    bool        `db:"working" json:"working"`
	Override   bool        `db:"override" json:"override"`
	Date       *time.Time  `db:"override_date" json:"override_date,omitempty"`
	ValidFrom  *time.Time  `db:"valid_from" json:"valid_from,omitempty"`
	ValidUntil *time.Time  `db:"valid_until" json:"valid_until,omitempty"`

	Breaks []ScheduleBreak `db:"-" json:"breaks,omitempty"`
}

// AppliesOn reports whether the schedule row is in effect on date,
// honouring the optional validity range. Weekday matching and override
// precedence are the resolver's concern.
func (s *StaffSchedule) AppliesOn(date time.Time) bool {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	if s.ValidFrom != nil && day.Before(truncateDay(*s.ValidFrom)) {
		return false
	}
	if s.ValidUntil != nil && day.After(truncateDay(*s.ValidUntil)) {
		return false
	}
	return true
}

// ScheduleBreak is a pause inside a working day, e.g. lunch.
// Invariant: Start/End lie inside the owning schedule row; breaks for
// one row do not overlap each other.
type ScheduleBreak struct {
	ID         uuid.UUID   `db:"id" json:"id"`
	ScheduleID uuid.UUID   `db:"schedule_id" json:"schedule_id"`
	Start      MinuteOfDay `db:"start_minute" json:"start"`
	End        MinuteOfDay `db:"end_minute" json:"end"`
	Label      string      `db:"label" json:"label,omitempty"`
}

type TimeOffStatus string

const (
	TimeOffStatusPending  TimeOffStatus = "pending"
	TimeOffStatusApproved TimeOffStatus = "approved"
	TimeOffStatusRejected TimeOffStatus = "rejected"
)

// StaffTimeOff blocks availability for the inclusive date range
// [StartDate, EndDate] once approved. Pending requests do not block.
type StaffTimeOff struct {
	Base
	StaffID   uuid.UUID     `db:"staff_id" json:"staff_id"`
	StartDate time.Time     `db:"start_date" json:"start_date"`
	EndDate   time.Time     `db:"end_date" json:"end_date"`
	Status    TimeOffStatus `db:"status" json:"status"`
	Reason    string        `db:"reason" json:"reason,omitempty"`
}

// Covers reports whether date falls inside the inclusive range.
func (t *StaffTimeOff) Covers(date time.Time) bool {
	day := truncateDay(date)
	return !day.Before(truncateDay(t.StartDate)) && !day.After(truncateDay(t.EndDate))
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
