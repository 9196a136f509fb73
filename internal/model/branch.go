package model

import (
	"time"

	"github.com/google/uuid"
)

type Tenant struct {
	Base
	Name   string `db:"name" json:"name"`
	Status string `db:"status" json:"status"`
}

type Branch struct {
	Base
	TenantID uuid.UUID `db:"tenant_id" json:"tenant_id"`
	Name     string    `db:"name" json:"name"`
	Address  string    `db:"address" json:"address"`
	Timezone string    `db:"timezone" json:"timezone"`
	Status   string    `db:"status" json:"status"`
}

// OperatingWindow is one weekday row of a branch's opening hours.
// Invariant: Open < Close when Closed is false.
type OperatingWindow struct {
	BranchID uuid.UUID    `db:"branch_id" json:"branch_id"`
	Weekday  time.Weekday `db:"weekday" json:"weekday"`
	Open     MinuteOfDay  `db:"open_minute" json:"open"`
	Close    MinuteOfDay  `db:"close_minute" json:"close"`
	Closed   bool         `db:"closed" json:"closed"`
}

// BranchHours is the full week of operating windows keyed by weekday.
type BranchHours map[time.Weekday]OperatingWindow

func (h BranchHours) ForDay(d time.Weekday) (OperatingWindow, bool) {
	w, ok := h[d]
	if !ok || w.Closed {
		return OperatingWindow{}, false
	}
	return w, true
}
