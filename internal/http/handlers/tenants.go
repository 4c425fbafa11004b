package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/notesaas/notehub/internal/config"
	"github.com/notesaas/notehub/internal/domain/tenant"
	"github.com/notesaas/notehub/internal/http/middlewares"
)

type TenantUpgrader interface {
	GetBySlug(ctx context.Context, slug string) (tenant.Tenant, error)
	Upgrade(ctx context.Context, id string) error
}

// PlanInvalidator drops any cached plan for the tenant after an upgrade.
type PlanInvalidator interface {
	Invalidate(tenantID string)
}

type TenantsHandler struct {
	repo  TenantUpgrader
	plans PlanInvalidator
}

func NewTenantsHandler(repo TenantUpgrader, plans PlanInvalidator) *TenantsHandler {
	return &TenantsHandler{repo: repo, plans: plans}
}

// Upgrade flips the caller's own tenant to PRO. The route carries the
// slug, but authorization is against the tenantId claim: an admin cannot
// upgrade anyone else's tenant by guessing slugs.
func (h *TenantsHandler) Upgrade(ctx *gin.Context) {
	slug := ctx.Param("slug")

	tenantID, ok := middlewares.TenantIDFromContext(ctx)

	if !ok || tenantID == "" {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)

	defer cancel()

	t, err := h.repo.GetBySlug(cctx, slug)

	if err != nil {
		if errors.Is(err, tenant.ErrNotFound) {
			RespondNotFound(ctx, "Tenant not found")
			return
		}
		RespondInternal(ctx, "Could not upgrade tenant")
		return
	}

	if t.ID != tenantID {
		RespondForbidden(ctx, "forbidden", "You can only upgrade your own tenant")
		return
	}

	// idempotent: a second upgrade is a no-op success
	if t.Plan == tenant.PlanPro {
		ctx.JSON(http.StatusOK, gin.H{"message": "Already on Pro"})
		return
	}

	err = h.repo.Upgrade(cctx, t.ID)

	if err != nil {
		if errors.Is(err, tenant.ErrNotFound) {
			RespondNotFound(ctx, "Tenant not found")
			return
		}
		RespondInternal(ctx, "Could not upgrade tenant")
		return
	}

	if h.plans != nil {
		h.plans.Invalidate(t.ID)
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Upgraded to Pro. Note limits lifted."})
}
