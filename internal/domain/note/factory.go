package note

import (
	"time"

	"github.com/google/uuid"
)

func NewFromCreateRequest(tenantID string, req CreateNoteRequest) Note {
	now := time.Now().UTC()

	return Note{
		ID:        uuid.NewString(),
		Title:     req.Title,
		Content:   req.Content,
		TenantID:  tenantID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
