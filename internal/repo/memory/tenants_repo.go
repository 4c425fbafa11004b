package memory

import (
	"context"
	"sync"
	"time"

	"github.com/notesaas/notehub/internal/domain/tenant"
)

type TenantsRepo struct {
	mu    sync.RWMutex
	items map[string]tenant.Tenant
}

func NewTenantsRepo() *TenantsRepo {
	return &TenantsRepo{
		items: make(map[string]tenant.Tenant),
	}
}

func (r *TenantsRepo) Create(ctx context.Context, t tenant.Tenant) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.items {
		if existing.Slug == t.Slug {
			return tenant.ErrSlugTaken
		}
	}

	r.items[t.ID] = t
	return nil
}

func (r *TenantsRepo) GetByID(ctx context.Context, id string) (tenant.Tenant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.items[id]

	if !ok {
		return tenant.Tenant{}, tenant.ErrNotFound
	}
	return t, nil
}

func (r *TenantsRepo) GetBySlug(ctx context.Context, slug string) (tenant.Tenant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, t := range r.items {
		if t.Slug == slug {
			return t, nil
		}
	}
	return tenant.Tenant{}, tenant.ErrNotFound
}

func (r *TenantsRepo) Upgrade(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.items[id]

	if !ok {
		return tenant.ErrNotFound
	}

	t.Plan = tenant.PlanPro
	t.UpdatedAt = time.Now().UTC()
	r.items[id] = t
	return nil
}
