package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/notesaas/notehub/internal/config"
	"github.com/notesaas/notehub/internal/domain/note"
	"github.com/notesaas/notehub/internal/domain/tenant"
	"github.com/notesaas/notehub/internal/http/middlewares"
	"github.com/notesaas/notehub/internal/plan"
)

type NotesStore interface {
	Create(ctx context.Context, tenantID string, req note.CreateNoteRequest) (note.Note, error)
	ListByTenant(ctx context.Context, tenantID string) ([]note.Note, error)
	GetByID(ctx context.Context, tenantID, id string) (note.Note, error)
	Update(ctx context.Context, tenantID, id string, req note.UpdateNoteRequest) (note.Note, error)
	Delete(ctx context.Context, tenantID, id string) error
}

type PlanChecker interface {
	CheckCreate(ctx context.Context, tenantID string) error
}

type NotesHandler struct {
	repo  NotesStore
	plans PlanChecker
}

func NewNotesHandler(repo NotesStore, plans PlanChecker) *NotesHandler {
	return &NotesHandler{repo: repo, plans: plans}
}

// tenantID always comes from verified claims, never from the request
func tenantFromContext(ctx *gin.Context) (string, bool) {
	tenantID, ok := middlewares.TenantIDFromContext(ctx)

	if !ok || tenantID == "" {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return "", false
	}

	return tenantID, true
}

func (h *NotesHandler) CreateNote(ctx *gin.Context) {
	tenantID, ok := tenantFromContext(ctx)

	if !ok {
		return
	}

	var req note.CreateNoteRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)

	defer cancel()

	err := h.plans.CheckCreate(cctx, tenantID)

	if err != nil {
		switch {
		case errors.Is(err, tenant.ErrNotFound):
			RespondNotFound(ctx, "Tenant not found")
		case errors.Is(err, plan.ErrLimitReached):
			RespondForbidden(ctx, "plan_limit_reached", "Free plan limit reached. Upgrade to Pro.")
		default:
			RespondInternal(ctx, "Could not create note")
		}
		return
	}

	created, err := h.repo.Create(cctx, tenantID, req)

	if err != nil {
		RespondInternal(ctx, "Could not create note")
		return
	}

	ctx.JSON(http.StatusOK, created)
}

func (h *NotesHandler) ListNotes(ctx *gin.Context) {
	tenantID, ok := tenantFromContext(ctx)

	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)

	defer cancel()

	notes, err := h.repo.ListByTenant(cctx, tenantID)

	if err != nil {
		RespondInternal(ctx, "Could not list notes")
		return
	}

	ctx.JSON(http.StatusOK, notes)
}

func (h *NotesHandler) GetNoteByID(ctx *gin.Context) {
	tenantID, ok := tenantFromContext(ctx)

	if !ok {
		return
	}

	id := ctx.Param("id")

	cctx, cancel := config.WithTimeout(2 * time.Second)

	defer cancel()

	n, err := h.repo.GetByID(cctx, tenantID, id)

	if err != nil {
		if errors.Is(err, note.ErrNotFound) {
			RespondNotFound(ctx, "Note not found")
			return
		}
		RespondInternal(ctx, "Could not fetch note")
		return
	}

	ctx.JSON(http.StatusOK, n)
}

func (h *NotesHandler) UpdateNote(ctx *gin.Context) {
	tenantID, ok := tenantFromContext(ctx)

	if !ok {
		return
	}

	id := ctx.Param("id")

	var req note.UpdateNoteRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)

	defer cancel()

	updated, err := h.repo.Update(cctx, tenantID, id, req)

	if err != nil {
		if errors.Is(err, note.ErrNotFound) {
			RespondNotFound(ctx, "Note not found")
			return
		}
		RespondInternal(ctx, "Could not update note")
		return
	}

	ctx.JSON(http.StatusOK, updated)
}

func (h *NotesHandler) DeleteNote(ctx *gin.Context) {
	tenantID, ok := tenantFromContext(ctx)

	if !ok {
		return
	}

	id := ctx.Param("id")

	cctx, cancel := config.WithTimeout(2 * time.Second)

	defer cancel()

	err := h.repo.Delete(cctx, tenantID, id)

	if err != nil {
		if errors.Is(err, note.ErrNotFound) {
			RespondNotFound(ctx, "Note not found")
			return
		}
		RespondInternal(ctx, "Could not delete note")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Note deleted"})
}
