package plan

import (
	"context"
	"errors"

	"github.com/notesaas/notehub/internal/cache"
	"github.com/notesaas/notehub/internal/domain/tenant"
	"github.com/notesaas/notehub/internal/observability"
)

// ErrLimitReached means the tenant is on FREE and already holds the
// maximum number of notes. Handlers map it to 403 with an upgrade hint.
var ErrLimitReached = errors.New("free plan note limit reached")

type TenantReader interface {
	GetByID(ctx context.Context, id string) (tenant.Tenant, error)
}

type NotesCounter interface {
	CountByTenant(ctx context.Context, tenantID string) (int, error)
}

// Enforcer guards note creation. The count and the subsequent insert are
// separate statements, so concurrent creates against the same tenant can
// briefly exceed the cap; the limit is soft.
type Enforcer struct {
	tenants TenantReader
	notes   NotesCounter
	plans   *cache.Cache
	prom    *observability.Prom
}

func NewEnforcer(tenants TenantReader, notes NotesCounter, plans *cache.Cache, prom *observability.Prom) *Enforcer {
	return &Enforcer{
		tenants: tenants,
		notes:   notes,
		plans:   plans,
		prom:    prom,
	}
}

// CheckCreate returns nil when the tenant may create another note,
// tenant.ErrNotFound when the token references a missing tenant, and
// ErrLimitReached when the FREE cap is hit.
func (e *Enforcer) CheckCreate(ctx context.Context, tenantID string) error {
	tenantPlan, err := e.planFor(ctx, tenantID)

	if err != nil {
		if errors.Is(err, tenant.ErrNotFound) {
			e.observe("", "tenant_missing")
		} else {
			e.observe("", "error")
		}
		return err
	}

	if tenantPlan == tenant.PlanPro {
		e.observe(tenantPlan, "allowed")
		return nil
	}

	count, err := e.notes.CountByTenant(ctx, tenantID)

	if err != nil {
		e.observe(tenantPlan, "error")
		return err
	}

	if count >= tenant.FreeNoteLimit {
		e.observe(tenantPlan, "limited")
		return ErrLimitReached
	}

	e.observe(tenantPlan, "allowed")
	return nil
}

// Invalidate drops the cached plan after an upgrade so the new plan takes
// effect on the next create in this process.
func (e *Enforcer) Invalidate(tenantID string) {
	if e.plans != nil {
		e.plans.Delete(planKey(tenantID))
	}
}

func (e *Enforcer) planFor(ctx context.Context, tenantID string) (string, error) {
	key := planKey(tenantID)

	if e.plans != nil {
		if v, ok := e.plans.Get(key); ok {
			if p, ok := v.(string); ok {
				return p, nil
			}
		}
	}

	t, err := e.tenants.GetByID(ctx, tenantID)

	if err != nil {
		return "", err
	}

	if e.plans != nil {
		e.plans.Set(key, t.Plan)
	}

	return t.Plan, nil
}

func (e *Enforcer) observe(tenantPlan, result string) {
	if e.prom == nil {
		return
	}

	if tenantPlan == "" {
		tenantPlan = "unknown"
	}

	e.prom.PlanChecksTotal.WithLabelValues(tenantPlan, result).Inc()
}

func planKey(tenantID string) string {
	return "tenant.plan:" + tenantID
}
