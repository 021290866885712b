package handlers

import (
	portssvc "github.com/SscSPs/erp_ledger/internal/core/ports/services"
	"github.com/SscSPs/erp_ledger/internal/middleware"
	"github.com/SscSPs/erp_ledger/internal/platform/config"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) {
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	setupAPIV1Routes(r, cfg, services)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	service *portssvc.ServiceContainer,
) {
	v1 := r.Group("/api/v1", middleware.AuthMiddleware(cfg.JWTSecret, cfg.JWTIssuer))

	registerStatusRoutes(v1)
	RegisterAccountRoutes(v1, service.Account)
	RegisterFiscalPeriodRoutes(v1, service.FiscalPeriod)
	RegisterLedgerRoutes(v1, service.Posting)
	RegisterReceivablesRoutes(v1, service.Receivables)
	RegisterPaymentRoutes(v1, service.Receivables)
	RegisterReportingRoutes(v1, service.Reporting)
}
