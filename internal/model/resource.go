package model

import "github.com/google/uuid"

// Resource is a physical asset (room, chair, equipment) that at most one
// appointment may hold at a time.
type Resource struct {
	Base
	TenantID uuid.UUID `db:"tenant_id" json:"tenant_id"`
	BranchID uuid.UUID `db:"branch_id" json:"branch_id"`
	Name     string    `db:"name" json:"name"`
	Kind     string    `db:"kind" json:"kind"`
	Status   string    `db:"status" json:"status"`
}
