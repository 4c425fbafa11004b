package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/notesaas/notehub/internal/auth"
	"github.com/notesaas/notehub/internal/config"
	"github.com/notesaas/notehub/internal/domain/tenant"
	"github.com/notesaas/notehub/internal/domain/user"
	"github.com/notesaas/notehub/internal/security"
)

type UserReader interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
}

type TenantReader interface {
	GetByID(ctx context.Context, id string) (tenant.Tenant, error)
}

// AccountCreator persists a new tenant and its founding ADMIN user
// atomically: neither row may exist without the other.
type AccountCreator interface {
	CreateAccount(ctx context.Context, t tenant.Tenant, u user.User) error
}

type AuthHandler struct {
	users    UserReader
	tenants  TenantReader
	accounts AccountCreator
	jwt      *auth.Manager
}

func NewAuthHandler(users UserReader, tenants TenantReader, accounts AccountCreator, jwtManager *auth.Manager) *AuthHandler {
	return &AuthHandler{
		users:    users,
		tenants:  tenants,
		accounts: accounts,
		jwt:      jwtManager,
	}
}

type SignUpRequest struct {
	Name     string `json:"name" binding:"omitempty,max=120"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type TenantInfo struct {
	Slug *string `json:"slug"`
	Plan *string `json:"plan"`
}

type LoginResponse struct {
	Token  string     `json:"token"`
	Tenant TenantInfo `json:"tenant"`
}

// bounded slug retries; the final attempt switches to a time-based suffix
const maxSlugAttempts = 4

func (h *AuthHandler) SignUp(ctx *gin.Context) {
	var req SignUpRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	_, err := h.users.GetByEmail(cctx, req.Email)

	if err == nil {
		RespondConflict(ctx, "email_taken", "Email already in use")
		return
	}

	if !errors.Is(err, user.ErrNotFound) {
		RespondInternal(ctx, "Could not create user")
		return
	}

	hash, err := security.HashPassword(req.Password)

	if err != nil {
		RespondInternal(ctx, "Could not create user")
		return
	}

	base := tenant.SlugBase(req.Name, req.Email)

	name := req.Name

	if name == "" {
		name = base
	}

	for attempt := 0; attempt < maxSlugAttempts; attempt++ {
		slug := tenant.NewSlug(base)

		if attempt == maxSlugAttempts-1 {
			slug = tenant.TimeSlug(base)
		}

		now := time.Now().UTC()

		t := tenant.Tenant{
			ID:        uuid.NewString(),
			Name:      name,
			Slug:      slug,
			Plan:      tenant.PlanFree,
			CreatedAt: now,
			UpdatedAt: now,
		}

		// every signup founds a tenant with this user as its ADMIN
		u := user.User{
			ID:           uuid.NewString(),
			Email:        req.Email,
			PasswordHash: hash,
			Role:         user.RoleAdmin,
			TenantID:     t.ID,
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		err = h.accounts.CreateAccount(cctx, t, u)

		if err == nil {
			ctx.JSON(http.StatusOK, gin.H{"message": "User created"})
			return
		}

		if errors.Is(err, tenant.ErrSlugTaken) {
			continue
		}

		if errors.Is(err, user.ErrEmailTaken) {
			RespondConflict(ctx, "email_taken", "Email already in use")
			return
		}

		RespondInternal(ctx, "Could not create user")
		return
	}

	RespondInternal(ctx, "Could not create user")
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}
	// short timeout for DB lookup
	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	foundUser, err := h.users.GetByEmail(cctx, req.Email)
	if err != nil {
		// identical body for unknown email and bad password
		RespondUnAuthorized(ctx, "invalid_credentials", "Email or password is incorrect.")
		return
	}

	err = security.CheckPassword(foundUser.PasswordHash, req.Password)

	if err != nil {
		RespondUnAuthorized(ctx, "invalid_credentials", "Email or password is incorrect.")
		return
	}

	token, err := h.jwt.GenerateToken(foundUser.ID, foundUser.TenantID, foundUser.Role)

	if err != nil {
		RespondInternal(ctx, "Could not generate token")
		return
	}

	resp := LoginResponse{Token: token}

	// tenant info is best effort: a failed lookup degrades to nulls
	// instead of blocking the login
	t, terr := h.tenants.GetByID(cctx, foundUser.TenantID)

	if terr == nil {
		resp.Tenant = TenantInfo{Slug: &t.Slug, Plan: &t.Plan}
	}

	ctx.JSON(http.StatusOK, resp)
}
