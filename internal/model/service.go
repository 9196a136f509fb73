package model

import (
	"time"

	"github.com/google/uuid"
)

type Service struct {
	Base
	TenantID        uuid.UUID `db:"tenant_id" json:"tenant_id"`
	BranchID        uuid.UUID `db:"branch_id" json:"branch_id"`
	Name            string    `db:"name" json:"name"`
	Description     string    `db:"description" json:"description,omitempty"`
	DurationMinutes int       `db:"duration_minutes" json:"duration_minutes"`
	BufferBefore    int       `db:"buffer_before_minutes" json:"buffer_before_minutes"`
	BufferAfter     int       `db:"buffer_after_minutes" json:"buffer_after_minutes"`
	Price           float64   `db:"price" json:"price"`
	Status          string    `db:"status" json:"status"`
}

func (s *Service) Duration() time.Duration {
	return time.Duration(s.DurationMinutes) * time.Minute
}

// StaffService is a row of the staff-service capability table with an
// optional per-staff price override.
type StaffService struct {
	StaffID   uuid.UUID `db:"staff_id" json:"staff_id"`
	ServiceID uuid.UUID `db:"service_id" json:"service_id"`
	Price     *float64  `db:"price" json:"price,omitempty"`
}
