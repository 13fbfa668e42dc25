package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/projectx/accounts/internal/api/handler"
	"github.com/projectx/accounts/internal/api/middleware"
	"github.com/projectx/accounts/internal/core/service"
	"github.com/projectx/accounts/internal/infrastructure/config"
	mongodb "github.com/projectx/accounts/internal/infrastructure/db/mongo"
	redisdb "github.com/projectx/accounts/internal/infrastructure/db/redis"
	healthhandlers "github.com/projectx/accounts/internal/infrastructure/http/handlers"
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(db *mongo.Database, rdb *redis.Client, cfg *config.Config, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("accounts"))

	// --- Dependencies ---
	accountRepo := mongodb.NewAccountRepository(db)
	tokenGuard := redisdb.NewRefreshTokenGuard(rdb)

	accountService := service.NewAccountService(accountRepo, cfg.BcryptCost, log)
	tokenService := service.NewTokenService(accountRepo, tokenGuard, cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	accountHandler := handler.NewAccountHandler(accountService)
	tokenHandler := handler.NewTokenHandler(tokenService)
	pingHandler := handler.NewPingHandler()

	// Actor resolution runs on every route; the authorization engine decides
	// per action whether anonymous access is acceptable.
	e.Use(middleware.Auth(tokenService))

	// --- Account routes ---
	e.POST("/accounts", accountHandler.Create)
	e.GET("/accounts", accountHandler.List)
	e.GET("/accounts/me", accountHandler.Me)
	e.GET("/accounts/:id", accountHandler.Retrieve)
	e.PATCH("/accounts/:id", accountHandler.Update)
	e.DELETE("/accounts/:id", accountHandler.Delete)

	// --- Token routes ---
	e.POST("/auth/token", tokenHandler.Obtain)
	e.POST("/auth/token/refresh", tokenHandler.Refresh)

	// --- Probes and metrics (no auth required) ---
	healthHandler := healthhandlers.NewHealthHandler()
	healthDepsHandler := healthhandlers.NewHealthDependenciesHandler(db, rdb)

	e.GET("/ping", pingHandler.Ping)
	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}
