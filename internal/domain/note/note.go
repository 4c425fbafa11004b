package note

import (
	"errors"
	"time"
)

type Note struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	TenantID  string    `json:"tenantId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Returned for both a genuinely missing note and a note owned by another
// tenant, so existence never leaks across the tenant boundary.
var ErrNotFound = errors.New("note not found")

type CreateNoteRequest struct {
	Title   string `json:"title" binding:"required,min=1,max=200"`
	Content string `json:"content" binding:"omitempty,max=20000"`
}

// Full overwrite of title/content; updatedAt is refreshed server-side.
type UpdateNoteRequest struct {
	Title   string `json:"title" binding:"required,min=1,max=200"`
	Content string `json:"content" binding:"omitempty,max=20000"`
}
