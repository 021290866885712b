package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/SscSPs/erp_ledger/internal/apperrors"
	"github.com/SscSPs/erp_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/erp_ledger/internal/core/ports/services"
	"github.com/SscSPs/erp_ledger/internal/dto"
	"github.com/SscSPs/erp_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

type fiscalPeriodHandler struct {
	periodService portssvc.FiscalPeriodSvcFacade
}

// RegisterFiscalPeriodRoutes registers the period lifecycle routes.
func RegisterFiscalPeriodRoutes(rg *gin.RouterGroup, periodService portssvc.FiscalPeriodSvcFacade) {
	h := &fiscalPeriodHandler{periodService: periodService}

	periods := rg.Group("/fiscal-periods")
	{
		periods.POST("", h.createPeriod)
		periods.GET("", h.listPeriods)
		periods.GET("/current", h.getCurrent)
		periods.GET("/locked", h.isLocked)
		periods.GET("/:id", h.getPeriod)
		periods.POST("/:id/close", h.transition("close", periodService.Close))
		periods.POST("/:id/lock", h.transition("lock", periodService.Lock))
		periods.POST("/:id/reopen", h.transition("reopen", periodService.Reopen))
	}
}

func (h *fiscalPeriodHandler) createPeriod(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateFiscalPeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, logger, err)
		return
	}
	actorID, ok := requireActor(c, logger)
	if !ok {
		return
	}

	period, err := h.periodService.CreatePeriod(c.Request.Context(), req, actorID)
	if err != nil {
		respondError(c, logger, err, "create fiscal period")
		return
	}
	c.JSON(http.StatusCreated, period)
}

func (h *fiscalPeriodHandler) listPeriods(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListFiscalPeriodsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		badRequest(c, logger, err)
		return
	}
	periods, err := h.periodService.ListPeriods(c.Request.Context(), params.FiscalYear)
	if err != nil {
		respondError(c, logger, err, "list fiscal periods")
		return
	}
	c.JSON(http.StatusOK, gin.H{"periods": periods})
}

func (h *fiscalPeriodHandler) getPeriod(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	period, err := h.periodService.GetPeriod(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, logger, err, "retrieve fiscal period")
		return
	}
	c.JSON(http.StatusOK, period)
}

func (h *fiscalPeriodHandler) getCurrent(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	period, err := h.periodService.GetCurrent(c.Request.Context())
	if err != nil {
		respondError(c, logger, err, "retrieve current fiscal period")
		return
	}
	c.JSON(http.StatusOK, period)
}

// isLocked handles GET /fiscal-periods/locked?date=YYYY-MM-DD.
func (h *fiscalPeriodHandler) isLocked(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	value := c.Query("date")
	date, err := time.ParseInLocation(dateLayout, value, time.UTC)
	if err != nil {
		respondError(c, logger, fmt.Errorf("%w: date must be a YYYY-MM-DD date", apperrors.ErrValidation), "check period lock")
		return
	}
	locked, err := h.periodService.IsLocked(c.Request.Context(), date)
	if err != nil {
		respondError(c, logger, err, "check period lock")
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": value, "locked": locked})
}

type periodTransitionFunc func(ctx context.Context, periodID string, actorID string) (*domain.FiscalPeriod, error)

func (h *fiscalPeriodHandler) transition(action string, fn periodTransitionFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := middleware.GetLoggerFromCtx(c.Request.Context())
		actorID, ok := requireActor(c, logger)
		if !ok {
			return
		}
		periodID := c.Param("id")
		logger.Info("Received request to "+action+" fiscal period", slog.String("period_id", periodID))

		period, err := fn(c.Request.Context(), periodID, actorID)
		if err != nil {
			respondError(c, logger, err, action+" fiscal period")
			return
		}
		c.JSON(http.StatusOK, period)
	}
}
