package db

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/notesaas/notehub/internal/config"
	"github.com/notesaas/notehub/internal/domain/tenant"
	"github.com/notesaas/notehub/internal/domain/user"
	"github.com/notesaas/notehub/internal/security"
)

// EnsureDemoData upserts two fixed demo tenants and an ADMIN plus MEMBER
// user for each, all sharing cfg.SeedPassword. Slugs here are fixed, not
// generated: the demo accounts need stable URLs.
func EnsureDemoData(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	if !cfg.SeedDemoData {
		return nil
	}

	hash, err := security.HashPassword(cfg.SeedPassword)

	if err != nil {
		return err
	}

	tenants := []struct {
		name string
		slug string
	}{
		{"Acme", "acme"},
		{"Globex", "globex"},
	}

	for _, t := range tenants {
		tenantID, err := upsertTenant(ctx, pool, t.name, t.slug)

		if err != nil {
			return err
		}

		seedUsers := []struct {
			email string
			role  string
		}{
			{"admin@" + t.slug + ".test", user.RoleAdmin},
			{"user@" + t.slug + ".test", user.RoleMember},
		}

		for _, su := range seedUsers {
			err = upsertUser(ctx, pool, su.email, su.role, tenantID, hash)

			if err != nil {
				return err
			}
		}
	}

	return nil
}

func upsertTenant(ctx context.Context, pool *pgxpool.Pool, name, slug string) (string, error) {
	now := time.Now().UTC()

	var id string

	err := pool.QueryRow(ctx,
		`INSERT INTO tenants (id, name, slug, plan, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $5)
		 ON CONFLICT (slug) DO UPDATE SET name = EXCLUDED.name, updated_at = EXCLUDED.updated_at
		 RETURNING id`,
		uuid.NewString(), name, slug, tenant.PlanFree, now,
	).Scan(&id)

	if err != nil {
		return "", err
	}

	return id, nil
}

func upsertUser(ctx context.Context, pool *pgxpool.Pool, email, role, tenantID, hash string) error {
	now := time.Now().UTC()

	_, err := pool.Exec(ctx,
		`INSERT INTO users (id, email, password_hash, role, tenant_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $6)
		 ON CONFLICT (email) DO UPDATE
		 SET password_hash = EXCLUDED.password_hash,
		     role = EXCLUDED.role,
		     tenant_id = EXCLUDED.tenant_id,
		     updated_at = EXCLUDED.updated_at`,
		uuid.NewString(), email, hash, role, tenantID, now,
	)

	return err
}
