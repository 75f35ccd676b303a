package main

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/SscSPs/erp_finance_ledger/internal/adapters/database/memory"
	"github.com/SscSPs/erp_finance_ledger/internal/adapters/database/pgsql"
	"github.com/SscSPs/erp_finance_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/erp_finance_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/erp_finance_ledger/internal/core/services"
	"github.com/SscSPs/erp_finance_ledger/internal/handlers"
	"github.com/SscSPs/erp_finance_ledger/internal/middleware"
	"github.com/SscSPs/erp_finance_ledger/internal/platform/config"
	"github.com/SscSPs/erp_finance_ledger/internal/utils"
	"github.com/SscSPs/erp_finance_ledger/internal/validator"
	"github.com/SscSPs/erp_finance_ledger/pkg/database"
)

// @title ERP Finance Ledger API
// @version 1.0
// @description Finance transaction lifecycle and correction (void / reverse) service.

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @security BearerAuth
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLogLevel(cfg.LogLevel)}))
	slog.SetDefault(logger)

	repos, cleanup, err := setupStorage(cfg, logger)
	if err != nil {
		logger.Error("Failed to set up storage", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer cleanup()

	serviceContainer := services.NewServiceContainer(cfg, repos)

	posthogClient := utils.InitializePosthogClient(cfg.PosthogAPIKey, logger)
	defer posthogClient.Close()

	correctionLimiter, err := middleware.NewRateLimiter(cfg.CorrectionRateLimit, cfg.RedisURL)
	if err != nil {
		logger.Error("Failed to create rate limiter", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	validator.Register()

	r := gin.New()
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSAllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	handlers.RegisterRoutes(r, cfg, serviceContainer, handlers.RouteOptions{
		CorrectionLimiter: correctionLimiter,
		Posthog:           posthogClient,
	})

	logger.Info("Server starting", slog.String("port", cfg.Port), slog.String("storage", cfg.StorageDriver))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Error("Server failed to run", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// setupStorage builds the repositories for the configured driver. The returned
// cleanup releases whatever was opened.
func setupStorage(cfg *config.Config, logger *slog.Logger) (portsrepo.RepositoryProvider, func(), error) {
	if cfg.StorageDriver == config.StorageMemory {
		logger.Warn("Using in-memory storage; records are lost on restart")
		return memory.NewRepositoryProvider(defaultChartOfAccounts()), func() {}, nil
	}

	logger.Info("Running database migrations...")
	applied, err := database.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath)
	if err != nil {
		return portsrepo.RepositoryProvider{}, nil, err
	}
	if applied {
		logger.Info("Database migrations applied successfully.")
	} else {
		logger.Info("No new migrations to apply.")
	}

	dbPool, err := database.NewPgxPool(context.Background(), cfg.DatabaseURL, cfg.EnableDBCheck)
	if err != nil {
		return portsrepo.RepositoryProvider{}, nil, err
	}
	logger.Info("Database connection pool established.")

	return pgsql.NewRepositoryProvider(dbPool), func() { database.ClosePgxPool(dbPool) }, nil
}

// defaultChartOfAccounts seeds the in-memory account directory.
func defaultChartOfAccounts() []domain.Account {
	audit := domain.NewAuditFields("system", time.Now())
	return []domain.Account{
		{AccountID: "CASH-01", Name: "Kas Kecil", AccountType: domain.Asset, IsActive: true, AuditFields: audit},
		{AccountID: "BANK-01", Name: "Bank Operasional", AccountType: domain.Asset, IsActive: true, AuditFields: audit},
		{AccountID: "SALES-01", Name: "Pendapatan Proyek", AccountType: domain.Revenue, IsActive: true, AuditFields: audit},
		{AccountID: "AP-01", Name: "Hutang Usaha", AccountType: domain.Liability, IsActive: true, AuditFields: audit},
	}
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
