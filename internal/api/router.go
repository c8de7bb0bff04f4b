package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/enersim/energy-simulator/docs"
	"github.com/enersim/energy-simulator/internal/api/handler"
	"github.com/enersim/energy-simulator/internal/api/middleware"
	"github.com/enersim/energy-simulator/internal/auth"
	"github.com/enersim/energy-simulator/internal/core/ports"
	"github.com/enersim/energy-simulator/internal/core/service"
	"github.com/enersim/energy-simulator/internal/infrastructure/config"
	mongorepo "github.com/enersim/energy-simulator/internal/infrastructure/db/mongo"
)

// Dependencies carries everything the router needs that has a lifecycle of
// its own (connections, the token codec, the login limiter, the audit
// recorder). The caller owns construction and shutdown.
type Dependencies struct {
	Config  *config.Config
	DB      *mongo.Database
	Redis   *redis.Client
	Codec   ports.TokenCodec
	Limiter ports.LoginRateLimiter
	Audit   ports.AuditRecorder
	Log     zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	cfg := deps.Config

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("energysim"))
	e.Use(middleware.Throttle(50, 100))

	// --- Dependencies ---
	userRepo := mongorepo.NewUserRepository(deps.DB)
	simRepo := mongorepo.NewSimulationRepository(deps.DB)

	authService := service.NewAuthService(userRepo, deps.Codec, auth.DefaultScopePolicy(), deps.Audit, cfg.DefaultRole)
	simService := service.NewSimulationService(simRepo)
	userService := service.NewUserService(userRepo)

	authHandler := handler.NewAuthHandler(authService)
	simHandler := handler.NewSimulationHandler(simService)
	profileHandler := handler.NewProfileHandler(userService)
	userHandler := handler.NewUserHandler(userService)

	loginPath := cfg.RateLimit.LoginPath
	publicPaths := []string{loginPath, "/auth/register", "/health", "/health/ready", "/metrics"}
	e.Use(middleware.Authenticate(deps.Codec, publicPaths, deps.Log))

	// --- Auth routes ---
	login := []echo.MiddlewareFunc{}
	if cfg.RateLimit.Enabled {
		login = append(login, middleware.LoginRateLimit(middleware.RateLimitOptions{
			Limiter:           deps.Limiter,
			Strategy:          cfg.RateLimit.Strategy,
			RetryAfterSeconds: cfg.RateLimit.RetryAfterSeconds,
			Audit:             deps.Audit,
			Log:               deps.Log,
		}))
	}
	e.POST(loginPath, authHandler.Login, login...)
	e.POST("/auth/register", authHandler.Register)

	// --- Protected API ---
	v1 := e.Group("/v1")
	v1.POST("/simulations", simHandler.Run,
		middleware.RequireAuthority(auth.ScopePrefix+"write:simulations"))
	v1.GET("/simulations", simHandler.List,
		middleware.RequireAuthority(auth.ScopePrefix+"read:simulations"))
	v1.GET("/simulations/:id", simHandler.Get,
		middleware.RequireAuthority(auth.ScopePrefix+"read:simulations"))
	v1.DELETE("/simulations/:id", simHandler.Delete,
		middleware.RequireAuthority(auth.ScopePrefix+"write:simulations", auth.ScopePrefix+"delete:simulations"))
	v1.POST("/comparisons", simHandler.Compare,
		middleware.RequireAuthority(auth.ScopePrefix+"read:simulations"))
	v1.GET("/profile", profileHandler.Get,
		middleware.RequireAuthority(auth.ScopePrefix+"read:profile"))
	v1.PUT("/profile", profileHandler.Update,
		middleware.RequireAuthority(auth.ScopePrefix+"write:profile"))
	v1.GET("/users", userHandler.List,
		middleware.RequireAuthority(auth.ScopePrefix+"read:users"))

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.DB, deps.Redis)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthDepsHandler.Readiness)

	// --- Observability / docs ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	return e
}
