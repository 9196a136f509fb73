package model

import (
	"time"

	"github.com/google/uuid"
)

// Base contains common fields for all models
type Base struct {
	ID        uuid.UUID `json:"id" db:"id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Pagination represents common pagination parameters
type Pagination struct {
	Page     int `json:"page" form:"page"`
	PageSize int `json:"page_size" form:"page_size"`
}

// MinuteOfDay is a time of day expressed as minutes since midnight,
// which is how schedule and operating-hour rows are stored.
type MinuteOfDay int

// At anchors the minute-of-day to a concrete calendar date in loc.
func (m MinuteOfDay) At(date time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = date.Location()
	}
	return time.Date(date.Year(), date.Month(), date.Day(), int(m)/60, int(m)%60, 0, 0, loc)
}

func (m MinuteOfDay) String() string {
	return time.Date(0, 1, 1, int(m)/60, int(m)%60, 0, 0, time.UTC).Format("15:04")
}
