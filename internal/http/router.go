package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/notesaas/notehub/internal/auth"
	"github.com/notesaas/notehub/internal/cache"
	"github.com/notesaas/notehub/internal/config"
	"github.com/notesaas/notehub/internal/domain/user"
	"github.com/notesaas/notehub/internal/http/handlers"
	"github.com/notesaas/notehub/internal/http/middlewares"
	"github.com/notesaas/notehub/internal/observability"
	"github.com/notesaas/notehub/internal/plan"
	"github.com/notesaas/notehub/internal/repo/memory"
	"github.com/notesaas/notehub/internal/repo/postgres"
)

// NewRouter wires middlewares, repositories and handlers. A nil pool
// swaps in the memory repos, which keeps the whole API exercisable
// without a database (tests, local hacking).
func NewRouter(log *slog.Logger, pool *pgxpool.Pool, cfg config.Config, prom *observability.Prom) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// middleware

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.CORSAllowedOrigins))
	r.Use(middlewares.MaxBodyBytes(1 << 20))
	r.Use(middlewares.RequireJSON())

	if cfg.OTLPEndpoint != "" {
		r.Use(otelgin.Middleware("notehub-api"))
	}

	if prom != nil {
		r.Use(prom.GinHandleMiddleware())
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	// health
	ping := func() error {
		if pool == nil {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		return pool.Ping(ctx)
	}

	h := handlers.NewHealthHandler(ping)
	r.GET("/", h.Root)
	r.GET("/health", h.Health)
	r.GET("/readyz", h.Readyz)

	// wire up repositories; memory fallback when no pool is configured

	var (
		usersRepo   handlers.UserReader
		tenantsRepo interface {
			handlers.TenantReader
			handlers.TenantUpgrader
			plan.TenantReader
		}
		notesRepo interface {
			handlers.NotesStore
			plan.NotesCounter
		}
		accountsRepo handlers.AccountCreator
	)

	if pool != nil {
		users := postgres.NewUsersRepo(pool, prom)
		tenants := postgres.NewTenantsRepo(pool, prom)

		usersRepo = users
		tenantsRepo = tenants
		notesRepo = postgres.NewNotesRepo(pool, prom)
		accountsRepo = postgres.NewAccountsRepo(pool, tenants, users, prom)
	} else {
		users := memory.NewUsersRepo()
		tenants := memory.NewTenantsRepo()

		usersRepo = users
		tenantsRepo = tenants
		notesRepo = memory.NewNotesRepo()
		accountsRepo = memory.NewAccountsRepo(tenants, users)
	}

	jwtManager := auth.NewManager(cfg.JWTSecret, cfg.JWTTTL())
	authMw := middlewares.NewAuthMiddleware(jwtManager)

	planCache := cache.New(30 * time.Second)
	enforcer := plan.NewEnforcer(tenantsRepo, notesRepo, planCache, prom)

	// brute-force protection on the credential endpoints only
	var limiterStore middlewares.WindowStore

	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:         cfg.RedisAddr,
			Password:     cfg.RedisPassword,
			DB:           cfg.RedisDB,
			DialTimeout:  2 * time.Second,
			ReadTimeout:  2 * time.Second,
			WriteTimeout: 2 * time.Second,
		})
		limiterStore = middlewares.NewRedisWindowStore(rdb, "notehub:auth")
	} else {
		limiterStore = middlewares.NewMemoryWindowStore()
	}

	authLimiter := middlewares.NewRateLimiter(
		cfg.AuthRateLimit,
		time.Duration(cfg.AuthRateWindowSecs)*time.Second,
		limiterStore,
	).RateLimiterMiddleware(middlewares.KeyByIP)

	// Wire up handlers
	authHandler := handlers.NewAuthHandler(usersRepo, tenantsRepo, accountsRepo, jwtManager)
	notesHandler := handlers.NewNotesHandler(notesRepo, enforcer)
	tenantsHandler := handlers.NewTenantsHandler(tenantsRepo, enforcer)

	r.POST("/signup", authLimiter, authHandler.SignUp)
	r.POST("/login", authLimiter, authHandler.Login)

	notes := r.Group("/notes", authMw.RequireAuth())
	notes.POST("", notesHandler.CreateNote)
	notes.GET("", notesHandler.ListNotes)
	notes.GET("/:id", notesHandler.GetNoteByID)
	notes.PUT("/:id", notesHandler.UpdateNote)
	notes.DELETE("/:id", notesHandler.DeleteNote)

	// upgrade is admin-only
	r.POST("/tenants/:slug/upgrade", authMw.RequireAuth(), authMw.RequireRole(user.RoleAdmin), tenantsHandler.Upgrade)

	// embedded single-page client
	r.GET("/app", func(ctx *gin.Context) {
		ctx.Data(http.StatusOK, "text/html; charset=utf-8", appPage)
	})

	return r
}
