package handlers

import (
	"net/http"

	portssvc "github.com/SscSPs/erp_ledger/internal/core/ports/services"
	"github.com/SscSPs/erp_ledger/internal/dto"
	"github.com/SscSPs/erp_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

type paymentHandler struct {
	payments portssvc.PaymentSvc
}

// RegisterPaymentRoutes registers the cross-document payment routes.
// Recording a payment lives under the document it settles.
func RegisterPaymentRoutes(rg *gin.RouterGroup, payments portssvc.PaymentSvc) {
	h := &paymentHandler{payments: payments}

	g := rg.Group("/payments")
	{
		g.GET("", h.list(false))
		g.GET("/deleted", h.list(true))
		g.GET("/:id", h.get)
		g.DELETE("/:id", h.softDelete)
		g.POST("/:id/restore", h.restore)
	}
}

func (h *paymentHandler) list(includeDeleted bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := middleware.GetLoggerFromCtx(c.Request.Context())
		var params dto.ListPaymentsParams
		if err := c.ShouldBindQuery(&params); err != nil {
			badRequest(c, logger, err)
			return
		}

		list := h.payments.ListPayments
		if includeDeleted {
			list = h.payments.ListPaymentsIncludingDeleted
		}
		resp, err := list(c.Request.Context(), params)
		if err != nil {
			respondError(c, logger, err, "list payments")
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

func (h *paymentHandler) get(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	payment, err := h.payments.GetPayment(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, logger, err, "retrieve payment")
		return
	}
	c.JSON(http.StatusOK, payment)
}

// softDelete hides the payment. Its ledger lines stay posted.
func (h *paymentHandler) softDelete(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	actorID, ok := requireActor(c, logger)
	if !ok {
		return
	}
	if err := h.payments.SoftDeletePayment(c.Request.Context(), c.Param("id"), actorID); err != nil {
		respondError(c, logger, err, "delete payment")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *paymentHandler) restore(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	actorID, ok := requireActor(c, logger)
	if !ok {
		return
	}
	if err := h.payments.RestorePayment(c.Request.Context(), c.Param("id"), actorID); err != nil {
		respondError(c, logger, err, "restore payment")
		return
	}
	c.Status(http.StatusNoContent)
}
