package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/SscSPs/erp_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/erp_ledger/internal/core/ports/services"
	"github.com/SscSPs/erp_ledger/internal/dto"
	"github.com/SscSPs/erp_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// documentHandler serves one document kind. Invoices and bills share the
// same routes under different prefixes.
type documentHandler struct {
	kind        domain.DocumentKind
	receivables portssvc.ReceivablesSvcFacade
}

// RegisterReceivablesRoutes registers /invoices, /bills and the overdue sweep.
func RegisterReceivablesRoutes(rg *gin.RouterGroup, receivables portssvc.ReceivablesSvcFacade) {
	registerDocumentRoutes(rg.Group("/invoices"), &documentHandler{kind: domain.KindInvoice, receivables: receivables})
	registerDocumentRoutes(rg.Group("/bills"), &documentHandler{kind: domain.KindBill, receivables: receivables})

	sweep := &overdueHandler{receivables: receivables}
	rg.POST("/receivables/mark-overdue", sweep.markOverdue)
}

func registerDocumentRoutes(g *gin.RouterGroup, h *documentHandler) {
	g.POST("", h.create)
	g.GET("", h.list(false))
	g.GET("/deleted", h.list(true))
	g.GET("/:id", h.get)
	g.PATCH("/:id", h.update)
	g.POST("/:id/status", h.updateStatus)
	g.POST("/:id/void", h.void)
	g.DELETE("/:id", h.softDelete)
	g.POST("/:id/restore", h.restore)
	g.POST("/:id/payments", h.recordPayment)
	g.GET("/:id/payments", h.listPayments)
}

func (h *documentHandler) create(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, logger, err)
		return
	}
	actorID, ok := requireActor(c, logger)
	if !ok {
		return
	}

	doc, err := h.receivables.CreateDocument(c.Request.Context(), h.kind, req, actorID)
	if err != nil {
		respondError(c, logger, err, "create "+h.kind.Label())
		return
	}
	logger.Info("Document created", slog.String("kind", string(h.kind)), slog.String("number", doc.Number))
	c.JSON(http.StatusCreated, doc)
}

func (h *documentHandler) get(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	doc, err := h.receivables.GetDocument(c.Request.Context(), h.kind, c.Param("id"))
	if err != nil {
		respondError(c, logger, err, "retrieve "+h.kind.Label())
		return
	}
	c.JSON(http.StatusOK, doc)
}

// list serves both the live listing and the audit listing that also
// returns soft-deleted documents.
func (h *documentHandler) list(includeDeleted bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := middleware.GetLoggerFromCtx(c.Request.Context())
		var params dto.ListDocumentsParams
		if err := c.ShouldBindQuery(&params); err != nil {
			badRequest(c, logger, err)
			return
		}

		var (
			resp *dto.ListDocumentsResponse
			err  error
		)
		if includeDeleted {
			resp, err = h.receivables.ListDocumentsIncludingDeleted(c.Request.Context(), h.kind, params)
		} else {
			resp, err = h.receivables.ListDocuments(c.Request.Context(), h.kind, params)
		}
		if err != nil {
			respondError(c, logger, err, "list "+h.kind.Label()+"s")
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

func (h *documentHandler) update(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.UpdateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, logger, err)
		return
	}
	actorID, ok := requireActor(c, logger)
	if !ok {
		return
	}

	doc, err := h.receivables.UpdateDocument(c.Request.Context(), h.kind, c.Param("id"), req, actorID)
	if err != nil {
		respondError(c, logger, err, "update "+h.kind.Label())
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (h *documentHandler) updateStatus(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, logger, err)
		return
	}
	actorID, ok := requireActor(c, logger)
	if !ok {
		return
	}

	doc, err := h.receivables.UpdateStatus(c.Request.Context(), h.kind, c.Param("id"), req.Status, actorID)
	if err != nil {
		respondError(c, logger, err, "update "+h.kind.Label()+" status")
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (h *documentHandler) void(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	actorID, ok := requireActor(c, logger)
	if !ok {
		return
	}
	doc, err := h.receivables.VoidDocument(c.Request.Context(), h.kind, c.Param("id"), actorID)
	if err != nil {
		respondError(c, logger, err, "void "+h.kind.Label())
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (h *documentHandler) softDelete(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	actorID, ok := requireActor(c, logger)
	if !ok {
		return
	}
	if err := h.receivables.SoftDeleteDocument(c.Request.Context(), h.kind, c.Param("id"), actorID); err != nil {
		respondError(c, logger, err, "delete "+h.kind.Label())
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *documentHandler) restore(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	actorID, ok := requireActor(c, logger)
	if !ok {
		return
	}
	if err := h.receivables.RestoreDocument(c.Request.Context(), h.kind, c.Param("id"), actorID); err != nil {
		respondError(c, logger, err, "restore "+h.kind.Label())
		return
	}
	c.Status(http.StatusNoContent)
}

// recordPayment applies cash against the document and posts it to the ledger.
func (h *documentHandler) recordPayment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, logger, err)
		return
	}
	actorID, ok := requireActor(c, logger)
	if !ok {
		return
	}

	payment, err := h.receivables.RecordPayment(c.Request.Context(), h.kind, c.Param("id"), req, actorID)
	if err != nil {
		respondError(c, logger, err, "record payment")
		return
	}
	logger.Info("Payment recorded",
		slog.String("payment_number", payment.PaymentNumber),
		slog.String("amount", payment.Amount.String()))
	c.JSON(http.StatusCreated, payment)
}

func (h *documentHandler) listPayments(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	payments, err := h.receivables.PaymentsForDocument(c.Request.Context(), h.kind, c.Param("id"))
	if err != nil {
		respondError(c, logger, err, "list payments")
		return
	}
	c.JSON(http.StatusOK, gin.H{"payments": payments})
}

type overdueHandler struct {
	receivables portssvc.ReceivablesSvcFacade
}

type markOverdueRequest struct {
	AsOf string `json:"asOf" binding:"omitempty,datetime=2006-01-02"`
}

// markOverdue moves past-due invoices and bills to OVERDUE. The body is optional.
func (h *overdueHandler) markOverdue(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req markOverdueRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, logger, err)
			return
		}
	}
	actorID, ok := requireActor(c, logger)
	if !ok {
		return
	}

	asOf, err := parseAsOf(req.AsOf)
	if err != nil {
		respondError(c, logger, err, "mark overdue documents")
		return
	}
	if asOf == nil {
		now := time.Now().UTC()
		asOf = &now
	}

	resp, err := h.receivables.MarkOverdue(c.Request.Context(), *asOf, actorID)
	if err != nil {
		respondError(c, logger, err, "mark overdue documents")
		return
	}
	c.JSON(http.StatusOK, resp)
}
