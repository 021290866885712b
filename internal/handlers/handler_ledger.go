package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/erp_ledger/internal/core/ports/services"
	"github.com/SscSPs/erp_ledger/internal/dto"
	"github.com/SscSPs/erp_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

type ledgerHandler struct {
	postingService portssvc.PostingSvcFacade
}

// RegisterLedgerRoutes registers the posting and ledger query routes.
func RegisterLedgerRoutes(rg *gin.RouterGroup, postingService portssvc.PostingSvcFacade) {
	h := &ledgerHandler{postingService: postingService}

	rg.POST("/journal-entries", h.postJournalEntry)

	ledger := rg.Group("/ledger")
	{
		ledger.POST("/entries", h.postEntries)
		ledger.GET("/entries", h.listEntries)
		ledger.POST("/entries/reverse", h.reverseEntries)
		ledger.GET("/entries/:entryNumber", h.getEntryGroup)
	}
}

// postJournalEntry posts a manual two-line entry.
func (h *ledgerHandler) postJournalEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.JournalEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, logger, err)
		return
	}
	actorID, ok := requireActor(c, logger)
	if !ok {
		return
	}

	group, err := h.postingService.PostJournalEntry(c.Request.Context(), req, actorID)
	if err != nil {
		respondError(c, logger, err, "post journal entry")
		return
	}
	logger.Info("Journal entry posted", slog.String("entry_number", group.EntryNumber))
	c.JSON(http.StatusCreated, group)
}

func (h *ledgerHandler) postEntries(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.PostEntriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, logger, err)
		return
	}
	actorID, ok := requireActor(c, logger)
	if !ok {
		return
	}

	group, err := h.postingService.PostEntries(c.Request.Context(), req, actorID)
	if err != nil {
		respondError(c, logger, err, "post entries")
		return
	}
	c.JSON(http.StatusCreated, group)
}

func (h *ledgerHandler) reverseEntries(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.ReverseEntriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, logger, err)
		return
	}
	actorID, ok := requireActor(c, logger)
	if !ok {
		return
	}

	groups, err := h.postingService.ReverseEntries(c.Request.Context(), req, actorID)
	if err != nil {
		respondError(c, logger, err, "reverse entries")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"reversals": groups})
}

func (h *ledgerHandler) getEntryGroup(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	group, err := h.postingService.GetEntryGroup(c.Request.Context(), c.Param("entryNumber"))
	if err != nil {
		respondError(c, logger, err, "retrieve entry group")
		return
	}
	c.JSON(http.StatusOK, group)
}

func (h *ledgerHandler) listEntries(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListEntriesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		badRequest(c, logger, err)
		return
	}

	resp, err := h.postingService.ListEntries(c.Request.Context(), params)
	if err != nil {
		respondError(c, logger, err, "list entries")
		return
	}
	c.JSON(http.StatusOK, resp)
}
