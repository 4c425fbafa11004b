package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/notesaas/notehub/internal/auth"
	"github.com/notesaas/notehub/internal/domain/tenant"
	"github.com/notesaas/notehub/internal/http/handlers"
	"github.com/notesaas/notehub/internal/http/middlewares"
)

type fakeUpgrader struct {
	bySlug   map[string]tenant.Tenant
	upgraded []string
}

func (f *fakeUpgrader) GetBySlug(ctx context.Context, slug string) (tenant.Tenant, error) {
	t, ok := f.bySlug[slug]
	if !ok {
		return tenant.Tenant{}, tenant.ErrNotFound
	}
	return t, nil
}

func (f *fakeUpgrader) Upgrade(ctx context.Context, id string) error {
	f.upgraded = append(f.upgraded, id)
	return nil
}

type fakeInvalidator struct {
	invalidated []string
}

func (f *fakeInvalidator) Invalidate(tenantID string) {
	f.invalidated = append(f.invalidated, tenantID)
}

func upgradeRouter(repo *fakeUpgrader, plans *fakeInvalidator, claims *auth.Claims) *gin.Engine {
	r := gin.New()

	m := middlewares.NewAuthMiddleware(&staticVerifier{claims: claims})
	h := handlers.NewTenantsHandler(repo, plans)

	r.POST("/tenants/:slug/upgrade", m.RequireAuth(), m.RequireRole("ADMIN"), h.Upgrade)
	return r
}

func upgrade(t *testing.T, r *gin.Engine, slug string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/tenants/"+slug+"/upgrade", nil)
	req.Header.Set("Authorization", "Bearer token")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestUpgradeTenant(t *testing.T) {
	adminOf := func(tenantID string) *auth.Claims {
		return &auth.Claims{UserID: "u1", TenantID: tenantID, Role: "ADMIN"}
	}

	t.Run("upgrades own tenant", func(t *testing.T) {
		repo := &fakeUpgrader{bySlug: map[string]tenant.Tenant{
			"acme": {ID: "t1", Slug: "acme", Plan: tenant.PlanFree},
		}}
		plans := &fakeInvalidator{}

		w := upgrade(t, upgradeRouter(repo, plans, adminOf("t1")), "acme")

		if w.Code != http.StatusOK {
			t.Fatalf("got status %d, want 200, body=%s", w.Code, w.Body.String())
		}
		if !strings.Contains(w.Body.String(), "Upgraded to Pro. Note limits lifted.") {
			t.Fatalf("missing confirmation: %s", w.Body.String())
		}
		if len(repo.upgraded) != 1 || repo.upgraded[0] != "t1" {
			t.Fatalf("upgraded %v, want [t1]", repo.upgraded)
		}
		if len(plans.invalidated) != 1 || plans.invalidated[0] != "t1" {
			t.Fatalf("cache invalidated for %v, want [t1]", plans.invalidated)
		}
	})

	t.Run("idempotent on pro tenant", func(t *testing.T) {
		repo := &fakeUpgrader{bySlug: map[string]tenant.Tenant{
			"acme": {ID: "t1", Slug: "acme", Plan: tenant.PlanPro},
		}}

		w := upgrade(t, upgradeRouter(repo, &fakeInvalidator{}, adminOf("t1")), "acme")

		if w.Code != http.StatusOK {
			t.Fatalf("got status %d, want 200, body=%s", w.Code, w.Body.String())
		}
		if !strings.Contains(w.Body.String(), "Already on Pro") {
			t.Fatalf("missing no-op message: %s", w.Body.String())
		}
		if len(repo.upgraded) != 0 {
			t.Fatalf("expected no upgrade call, got %v", repo.upgraded)
		}
	})

	t.Run("cannot upgrade another tenant", func(t *testing.T) {
		repo := &fakeUpgrader{bySlug: map[string]tenant.Tenant{
			"globex": {ID: "t2", Slug: "globex", Plan: tenant.PlanFree},
		}}

		w := upgrade(t, upgradeRouter(repo, &fakeInvalidator{}, adminOf("t1")), "globex")

		if w.Code != http.StatusForbidden {
			t.Fatalf("got status %d, want 403, body=%s", w.Code, w.Body.String())
		}
		if len(repo.upgraded) != 0 {
			t.Fatalf("expected no upgrade call, got %v", repo.upgraded)
		}
	})

	t.Run("unknown slug", func(t *testing.T) {
		repo := &fakeUpgrader{bySlug: map[string]tenant.Tenant{}}

		w := upgrade(t, upgradeRouter(repo, &fakeInvalidator{}, adminOf("t1")), "nope")

		if w.Code != http.StatusNotFound {
			t.Fatalf("got status %d, want 404, body=%s", w.Code, w.Body.String())
		}
	})

	t.Run("member role rejected", func(t *testing.T) {
		repo := &fakeUpgrader{bySlug: map[string]tenant.Tenant{
			"acme": {ID: "t1", Slug: "acme", Plan: tenant.PlanFree},
		}}
		member := &auth.Claims{UserID: "u2", TenantID: "t1", Role: "MEMBER"}

		w := upgrade(t, upgradeRouter(repo, &fakeInvalidator{}, member), "acme")

		if w.Code != http.StatusForbidden {
			t.Fatalf("got status %d, want 403, body=%s", w.Code, w.Body.String())
		}
		if len(repo.upgraded) != 0 {
			t.Fatalf("expected no upgrade call, got %v", repo.upgraded)
		}
	})
}
