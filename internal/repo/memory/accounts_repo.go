package memory

import (
	"context"

	"github.com/notesaas/notehub/internal/domain/tenant"
	"github.com/notesaas/notehub/internal/domain/user"
)

// AccountsRepo mirrors the postgres signup transaction: both rows or
// neither.
type AccountsRepo struct {
	tenants *TenantsRepo
	users   *UsersRepo
}

func NewAccountsRepo(tenants *TenantsRepo, users *UsersRepo) *AccountsRepo {
	return &AccountsRepo{tenants: tenants, users: users}
}

func (r *AccountsRepo) CreateAccount(ctx context.Context, t tenant.Tenant, u user.User) error {
	err := r.tenants.Create(ctx, t)

	if err != nil {
		return err
	}

	err = r.users.Create(ctx, u)

	if err != nil {
		// undo the tenant insert so the pair stays atomic
		r.tenants.mu.Lock()
		delete(r.tenants.items, t.ID)
		r.tenants.mu.Unlock()
		return err
	}

	return nil
}
