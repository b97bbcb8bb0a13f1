package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/aqilnadzmi/library-duty-api/internal/auth"
	"github.com/aqilnadzmi/library-duty-api/internal/config"
	"github.com/aqilnadzmi/library-duty-api/internal/http/handlers"
	"github.com/aqilnadzmi/library-duty-api/internal/http/middlewares"
	"github.com/aqilnadzmi/library-duty-api/internal/notifications"
	"github.com/aqilnadzmi/library-duty-api/internal/observability"
	"github.com/aqilnadzmi/library-duty-api/internal/repo/postgres"
	"github.com/aqilnadzmi/library-duty-api/internal/security"
)

const serviceName = "library-duty-api"

// NewRouter wires middleware, repositories and handlers into the gin
// engine. guard may be nil (no redis configured); prom may be nil in tests.
func NewRouter(log *slog.Logger, pool *pgxpool.Pool, cfg config.Config, guard *security.LoginGuard, prom *observability.Prom) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware([]string{cfg.FrontendURL}))
	r.Use(middlewares.RequireJSON())
	r.Use(middlewares.MaxBodyBytes(10 << 20))
	r.Use(otelgin.Middleware(serviceName))

	if prom != nil {
		r.Use(prom.GinHandleMiddleware())
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

	health := handlers.NewHealthHandler(cfg.Env, ping)
	r.GET("/api/health", health.Health)
	r.GET("/readyz", health.Ready)

	// wire up the account layer
	accountsRepo := postgres.NewAccountsRepo(pool, prom)
	jwtManager := auth.NewManager(cfg.JWTSecret, cfg.JWTTTL())

	notifier := notifications.NewProtectedNotifier(notifications.NewLogNotifier(log), notifications.ProtectedNotifierConfig{})

	authHandler := handlers.NewAuthHandler(accountsRepo, jwtManager, guard, notifier, prom, log, cfg)
	authMw := middlewares.NewAuthMiddleware(jwtManager)

	window := time.Duration(cfg.RateLimitWindowMin) * time.Minute

	publicLimiter := middlewares.NewRateLimiter(cfg.RateLimitMax, window)
	userLimiter := middlewares.NewRateLimiter(cfg.RateLimitMax, window)

	api := r.Group("/api", publicLimiter.RateLimiterMiddleware(middlewares.KeyByIP))
	{
		api.POST("/auth/register", authHandler.Register)
		api.POST("/auth/login", authHandler.Login)

		// past authentication, budgets follow the account, not the address
		protected := api.Group("/auth", authMw.RequireAuth(), userLimiter.RateLimiterMiddleware(middlewares.KeyByUserOrIP))
		{
			protected.GET("/profile", authHandler.GetProfile)
			protected.PUT("/profile", authHandler.UpdateProfile)
			protected.PUT("/password", authHandler.UpdatePassword)
			protected.GET("/test-auth", authHandler.TestAuth)
		}
	}

	r.NoRoute(func(ctx *gin.Context) {
		handlers.RespondNotFound(ctx, "Route "+ctx.Request.Method+" "+ctx.Request.URL.Path+" not found")
	})

	return r
}
