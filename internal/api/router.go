package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/clearcut/entitlement-system/internal/api/handler"
	"github.com/clearcut/entitlement-system/internal/api/middleware"
	"github.com/clearcut/entitlement-system/internal/core/service"
	storemongo "github.com/clearcut/entitlement-system/internal/infrastructure/db/mongo"
	storeredis "github.com/clearcut/entitlement-system/internal/infrastructure/db/redis"
	"github.com/clearcut/entitlement-system/internal/infrastructure/queue"
)

// NewRouter builds the Echo instance with all routes registered and returns
// it together with the usage dispatcher, which the caller must Start.
func NewRouter(db *mongo.Database, rdb *redis.Client, jwtSecret string, log zerolog.Logger) (*echo.Echo, *queue.Dispatcher) {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("clearcut"))

	// --- Dependencies ---
	userRepo := storemongo.NewUserRepository(db)
	paymentRepo := storemongo.NewPaymentRepository(db)
	usageRepo := storemongo.NewUsageRepository(db)
	dedup := storeredis.NewDedupChecker(rdb)

	authService := service.NewAuthService(userRepo, jwtSecret, 24*time.Hour)
	userService := service.NewUserService(userRepo)
	paymentService := service.NewPaymentService(paymentRepo, userRepo, dedup, log)
	usageService := service.NewUsageService(usageRepo, log)
	dispatcher := queue.NewDispatcher(0, usageService, log)

	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	paymentHandler := handler.NewPaymentHandler(paymentService)
	usageHandler := handler.NewUsageHandler(dispatcher, usageService)

	authMiddleware := middleware.Auth(jwtSecret)
	adminMiddleware := middleware.RequireAdmin(userRepo)

	// --- Auth routes ---
	e.POST("/api/auth/register", authHandler.Register)
	e.POST("/api/auth/login", authHandler.Login)
	e.GET("/api/auth/profile", authHandler.Profile, authMiddleware)

	// --- User routes (admin-gated list; self-or-admin read) ---
	e.GET("/api/users", userHandler.List, authMiddleware, adminMiddleware)
	e.GET("/api/users/:id", userHandler.Get, authMiddleware)

	// --- Payment routes ---
	e.POST("/api/create-checkout-session", paymentHandler.CreateCheckoutSession, authMiddleware)
	e.POST("/api/webhook", paymentHandler.Webhook) // provider callback, no bearer token
	e.GET("/api/payments/history", paymentHandler.History, authMiddleware)

	// --- Usage routes ---
	e.POST("/api/usage", usageHandler.Record, authMiddleware)
	e.GET("/api/usage/history", usageHandler.History, authMiddleware)

	// --- Health probes and metrics (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthDepsHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())

	return e, dispatcher
}
