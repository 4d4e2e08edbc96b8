package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/davinci-it/expense-tracker/docs"
	"github.com/davinci-it/expense-tracker/internal/api/handler"
	"github.com/davinci-it/expense-tracker/internal/api/middleware"
	"github.com/davinci-it/expense-tracker/internal/core/ports"
	"github.com/davinci-it/expense-tracker/internal/core/service"
	"github.com/davinci-it/expense-tracker/internal/infrastructure/config"
	mongodb "github.com/davinci-it/expense-tracker/internal/infrastructure/db/mongo"
	redisdb "github.com/davinci-it/expense-tracker/internal/infrastructure/db/redis"
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(cfg *config.Config, db *mongo.Database, rdb *redis.Client, mailer ports.Mailer, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     []string{cfg.CORSOrigin},
		AllowCredentials: true,
	}))
	e.Use(echoprometheus.NewMiddleware("expense_tracker"))

	// --- Repositories ---
	userRepo := mongodb.NewUserRepository(db)
	transactionRepo := mongodb.NewTransactionRepository(db)
	otpRepo := mongodb.NewOTPRepository(db)
	cooldown := redisdb.NewResendCooldown(rdb)

	// --- Services ---
	ledger := service.NewLedgerService(transactionRepo)
	alerts := service.NewAlertService(ledger, userRepo, mailer, log)
	transactions := service.NewTransactionService(transactionRepo, userRepo, ledger, alerts, log)
	auth := service.NewAuthService(userRepo, otpRepo, cooldown, mailer, cfg.JWTSecret, cfg.TokenTTL, log)

	// --- Handlers ---
	userHandler := handler.NewUserHandler(auth, cfg.TokenTTL)
	incomeHandler := handler.NewIncomeHandler(transactions)
	expenseHandler := handler.NewExpenseHandler(transactions)
	authMiddleware := middleware.Auth(cfg.JWTSecret)

	v1 := e.Group("/api/v1")

	// --- User routes ---
	users := v1.Group("/users")
	users.POST("/register", userHandler.Register)
	users.POST("/login", userHandler.Login)
	users.POST("/logout", userHandler.Logout)
	users.POST("/otp/send", userHandler.SendOTP)
	users.POST("/otp/verify", userHandler.VerifyOTP)
	users.GET("/profile", userHandler.Profile, authMiddleware)
	users.PUT("/profile", userHandler.UpdateProfile, authMiddleware)
	users.PUT("/password", userHandler.ResetPassword, authMiddleware)

	// --- Transaction routes ---
	registerTransactionRoutes(v1.Group("/incomes", authMiddleware), incomeHandler)
	registerTransactionRoutes(v1.Group("/expenses", authMiddleware), expenseHandler)

	// --- Observability and docs ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	return e
}

func registerTransactionRoutes(g *echo.Group, h *handler.TransactionHandler) {
	g.POST("", h.Create)
	g.GET("", h.List)
	g.GET("/all", h.ListAll)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}
