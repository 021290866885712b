package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/SscSPs/erp_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/erp_ledger/internal/core/ports/services"
	"github.com/SscSPs/erp_ledger/internal/dto"
	"github.com/SscSPs/erp_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// reportingHandler handles HTTP requests related to financial reports
type reportingHandler struct {
	reportingService portssvc.ReportingService
}

func newReportingHandler(rs portssvc.ReportingService) *reportingHandler {
	return &reportingHandler{reportingService: rs}
}

// RegisterReportingRoutes registers routes related to financial reports
func RegisterReportingRoutes(rg *gin.RouterGroup, reportingService portssvc.ReportingService) {
	h := newReportingHandler(reportingService)

	reports := rg.Group("/reports")
	{
		reports.GET("/aging/ar", h.aging("AR", reportingService.CalculateARAging))
		reports.GET("/aging/ap", h.aging("AP", reportingService.CalculateAPAging))
		reports.GET("/outstanding/receivables", h.outstanding(reportingService.GetOutstandingReceivables))
		reports.GET("/outstanding/payables", h.outstanding(reportingService.GetOutstandingPayables))
		reports.GET("/accounts/:id/balance", h.getAccountBalance)
		reports.GET("/trial-balance/:periodID", h.getTrialBalance)
		reports.GET("/unbalanced-groups", h.findUnbalancedGroups)
	}
}

type agingFunc func(ctx context.Context, asOf *time.Time) (*domain.AgingBuckets, error)

func (h *reportingHandler) aging(side string, calc agingFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := middleware.GetLoggerFromCtx(c.Request.Context())
		var params dto.AgingParams
		if err := c.ShouldBindQuery(&params); err != nil {
			badRequest(c, logger, err)
			return
		}
		asOf, err := parseAsOf(params.AsOf)
		if err != nil {
			respondError(c, logger, err, "calculate "+side+" aging")
			return
		}

		buckets, err := calc(c.Request.Context(), asOf)
		if err != nil {
			respondError(c, logger, err, "calculate "+side+" aging")
			return
		}
		logger.Debug("Aging calculated", slog.String("side", side), slog.String("total", buckets.Total.String()))
		c.JSON(http.StatusOK, buckets)
	}
}

type outstandingFunc func(ctx context.Context) ([]domain.Document, error)

func (h *reportingHandler) outstanding(list outstandingFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := middleware.GetLoggerFromCtx(c.Request.Context())
		docs, err := list(c.Request.Context())
		if err != nil {
			respondError(c, logger, err, "list outstanding documents")
			return
		}
		c.JSON(http.StatusOK, gin.H{"documents": docs})
	}
}

func (h *reportingHandler) getAccountBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.AccountBalanceParams
	if err := c.ShouldBindQuery(&params); err != nil {
		badRequest(c, logger, err)
		return
	}
	asOf, err := parseAsOf(params.AsOf)
	if err != nil {
		respondError(c, logger, err, "calculate account balance")
		return
	}
	if asOf == nil {
		now := time.Now().UTC()
		asOf = &now
	}

	balance, err := h.reportingService.GetAccountBalance(c.Request.Context(), c.Param("id"), *asOf)
	if err != nil {
		respondError(c, logger, err, "calculate account balance")
		return
	}
	c.JSON(http.StatusOK, balance)
}

func (h *reportingHandler) getTrialBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tb, err := h.reportingService.GetTrialBalance(c.Request.Context(), c.Param("periodID"))
	if err != nil {
		respondError(c, logger, err, "generate trial balance")
		return
	}
	c.JSON(http.StatusOK, tb)
}

func (h *reportingHandler) findUnbalancedGroups(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	groups, err := h.reportingService.FindUnbalancedGroups(c.Request.Context())
	if err != nil {
		respondError(c, logger, err, "verify ledger")
		return
	}
	if len(groups) > 0 {
		logger.Warn("Unbalanced entry groups found", slog.Int("count", len(groups)))
	}
	c.JSON(http.StatusOK, gin.H{"balanced": len(groups) == 0, "groups": groups})
}
