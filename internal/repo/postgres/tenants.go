package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/notesaas/notehub/internal/domain/tenant"
	"github.com/notesaas/notehub/internal/observability"
)

type TenantsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewTenantsRepo(pool *pgxpool.Pool, prom *observability.Prom) *TenantsRepo {
	return &TenantsRepo{pool: pool, prom: prom}
}

func (r *TenantsRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func (r *TenantsRepo) CreateTx(ctx context.Context, tx pgx.Tx, t tenant.Tenant) error {
	err := r.observe("tenants.create_tx", func() error {
		_, e := tx.Exec(ctx,
			`INSERT INTO tenants (id, name, slug, plan, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			t.ID, t.Name, t.Slug, t.Plan, t.CreatedAt, t.UpdatedAt,
		)
		return e
	})

	if err != nil {
		if uniqueViolationOn(err, "tenants_slug_key") {
			return tenant.ErrSlugTaken
		}
		return err
	}

	return nil
}

func (r *TenantsRepo) GetByID(ctx context.Context, id string) (tenant.Tenant, error) {
	return r.getOne(ctx, "tenants.get_by_id", `WHERE id = $1`, id)
}

func (r *TenantsRepo) GetBySlug(ctx context.Context, slug string) (tenant.Tenant, error) {
	return r.getOne(ctx, "tenants.get_by_slug", `WHERE slug = $1`, slug)
}

func (r *TenantsRepo) getOne(ctx context.Context, op, where string, arg any) (tenant.Tenant, error) {
	var t tenant.Tenant

	err := r.observe(op, func() error {
		return r.pool.QueryRow(ctx,
			`SELECT id, name, slug, plan, created_at, updated_at FROM tenants `+where,
			arg,
		).Scan(&t.ID, &t.Name, &t.Slug, &t.Plan, &t.CreatedAt, &t.UpdatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return tenant.Tenant{}, tenant.ErrNotFound
		}

		return tenant.Tenant{}, err
	}

	return t, nil
}

// Upgrade flips the plan to PRO. One-directional; there is no downgrade.
func (r *TenantsRepo) Upgrade(ctx context.Context, id string) error {
	var tag pgconn.CommandTag

	err := r.observe("tenants.upgrade", func() error {
		var e error
		tag, e = r.pool.Exec(ctx,
			`UPDATE tenants SET plan = $2, updated_at = NOW() WHERE id = $1`,
			id, tenant.PlanPro,
		)
		return e
	})

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return tenant.ErrNotFound
	}

	return nil
}
