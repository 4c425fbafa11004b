package tenant

import (
	"errors"
	"time"
)

const (
	PlanFree = "FREE"
	PlanPro  = "PRO"
)

// FreeNoteLimit is the note cap enforced for FREE tenants at creation time.
const FreeNoteLimit = 3

type Tenant struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Plan      string    `json:"plan"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

var (
	ErrNotFound  = errors.New("tenant not found")
	ErrSlugTaken = errors.New("tenant slug already in use")
)
