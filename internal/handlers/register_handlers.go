package handlers

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/ulule/limiter/v3"

	"github.com/SscSPs/erp_finance_ledger/cmd/docs"
	portssvc "github.com/SscSPs/erp_finance_ledger/internal/core/ports/services"
	"github.com/SscSPs/erp_finance_ledger/internal/middleware"
	"github.com/SscSPs/erp_finance_ledger/internal/platform/config"
	"github.com/SscSPs/erp_finance_ledger/internal/utils"
)

// RouteOptions carries the optional collaborators of the API.
// A nil CorrectionLimiter disables rate limiting; a nil Posthog disables analytics.
type RouteOptions struct {
	CorrectionLimiter *limiter.Limiter
	Posthog           *utils.PosthogClientWrapper
}

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	opts RouteOptions,
) {
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	setupAPIV1Routes(r, cfg, services, opts)

	setupSwaggerRoutes(r, cfg)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	service *portssvc.ServiceContainer,
	opts RouteOptions,
) {
	v1 := r.Group("/api/v1",
		middleware.AuthMiddleware(cfg.JWTSecret, cfg.JWTIssuer),
		middleware.PosthogMiddleware(opts.Posthog),
	)

	var correctionGuards []gin.HandlerFunc
	if opts.CorrectionLimiter != nil {
		correctionGuards = append(correctionGuards, middleware.RateLimit(opts.CorrectionLimiter))
	}

	registerReportingRoutes(v1, service.Ledger)
	registerTransactionRoutes(v1, service.Transaction, opts.Posthog, correctionGuards...)
	registerAccountRoutes(v1, service.Ledger)
}

// setupSwaggerRoutes configures the swagger documentation routes
func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/api/v1"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
