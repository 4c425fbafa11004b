package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/notesaas/notehub/internal/domain/tenant"
	"github.com/notesaas/notehub/internal/domain/user"
	"github.com/notesaas/notehub/internal/observability"
)

// AccountsRepo is the signup write path: a tenant and its founding ADMIN
// user committed in one transaction, so a failed user insert can never
// leak an orphan tenant.
type AccountsRepo struct {
	pool    *pgxpool.Pool
	tenants *TenantsRepo
	users   *UsersRepo
	prom    *observability.Prom
}

func NewAccountsRepo(pool *pgxpool.Pool, tenants *TenantsRepo, users *UsersRepo, prom *observability.Prom) *AccountsRepo {
	return &AccountsRepo{
		pool:    pool,
		tenants: tenants,
		users:   users,
		prom:    prom,
	}
}

func (r *AccountsRepo) CreateAccount(ctx context.Context, t tenant.Tenant, u user.User) (err error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})

	if err != nil {
		return
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	err = r.tenants.CreateTx(ctx, tx, t)

	if err != nil {
		return
	}

	err = r.users.CreateTx(ctx, tx, u)

	if err != nil {
		return
	}

	return tx.Commit(ctx)
}
