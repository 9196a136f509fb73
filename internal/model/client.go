package model

import "github.com/google/uuid"

type Client struct {
	Base
	TenantID uuid.UUID `db:"tenant_id" json:"tenant_id"`
	Email    string    `db:"email" json:"email"`
	Name     string    `db:"name" json:"name"`
	Phone    string    `db:"phone" json:"phone,omitempty"`
	Status   string    `db:"status" json:"status"`
}
