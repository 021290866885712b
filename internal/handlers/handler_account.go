package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/erp_ledger/internal/core/ports/services"
	"github.com/SscSPs/erp_ledger/internal/dto"
	"github.com/SscSPs/erp_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// accountHandler handles HTTP requests for the chart of accounts.
type accountHandler struct {
	accountService portssvc.AccountSvcFacade
}

func newAccountHandler(as portssvc.AccountSvcFacade) *accountHandler {
	return &accountHandler{accountService: as}
}

// RegisterAccountRoutes registers routes related to accounts.
func RegisterAccountRoutes(rg *gin.RouterGroup, accountService portssvc.AccountSvcFacade) {
	h := newAccountHandler(accountService)

	accounts := rg.Group("/accounts")
	{
		accounts.POST("", h.createAccount)
		accounts.GET("", h.listAccounts)
		accounts.GET("/tree", h.getChartOfAccounts)
		accounts.POST("/seed", h.seedStandardAccounts)
		accounts.GET("/by-number/:number", h.getAccountByNumber)
		accounts.GET("/:id", h.getAccount)
		accounts.PATCH("/:id", h.updateAccount)
		accounts.DELETE("/:id", h.deactivateAccount)
	}
}

// createAccount handles POST /accounts.
func (h *accountHandler) createAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, logger, err)
		return
	}
	actorID, ok := requireActor(c, logger)
	if !ok {
		return
	}

	logger.Info("Received request to create account", slog.String("account_number", req.AccountNumber))
	account, err := h.accountService.CreateAccount(c.Request.Context(), req, actorID)
	if err != nil {
		respondError(c, logger, err, "create account")
		return
	}
	c.JSON(http.StatusCreated, dto.ToAccountResponse(account))
}

func (h *accountHandler) getAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	account, err := h.accountService.GetAccountByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, logger, err, "retrieve account")
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

func (h *accountHandler) getAccountByNumber(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	account, err := h.accountService.GetAccountByNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		respondError(c, logger, err, "retrieve account")
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

func (h *accountHandler) listAccounts(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListAccountsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		badRequest(c, logger, err)
		return
	}

	accounts, err := h.accountService.ListAccounts(c.Request.Context(), params.ActiveOnly)
	if err != nil {
		respondError(c, logger, err, "list accounts")
		return
	}
	c.JSON(http.StatusOK, gin.H{"accounts": dto.ToListAccountResponse(accounts)})
}

// getChartOfAccounts returns the account hierarchy.
func (h *accountHandler) getChartOfAccounts(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tree, err := h.accountService.GetChartOfAccounts(c.Request.Context())
	if err != nil {
		respondError(c, logger, err, "build chart of accounts")
		return
	}
	c.JSON(http.StatusOK, gin.H{"accounts": tree})
}

func (h *accountHandler) updateAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, logger, err)
		return
	}
	actorID, ok := requireActor(c, logger)
	if !ok {
		return
	}

	account, err := h.accountService.UpdateAccount(c.Request.Context(), c.Param("id"), req, actorID)
	if err != nil {
		respondError(c, logger, err, "update account")
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

// deactivateAccount handles DELETE /accounts/:id. Accounts are never removed.
func (h *accountHandler) deactivateAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	actorID, ok := requireActor(c, logger)
	if !ok {
		return
	}
	if err := h.accountService.DeactivateAccount(c.Request.Context(), c.Param("id"), actorID); err != nil {
		respondError(c, logger, err, "deactivate account")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *accountHandler) seedStandardAccounts(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	actorID, ok := requireActor(c, logger)
	if !ok {
		return
	}
	accounts, err := h.accountService.SeedStandardAccounts(c.Request.Context(), actorID)
	if err != nil {
		respondError(c, logger, err, "seed standard accounts")
		return
	}
	c.JSON(http.StatusOK, gin.H{"accounts": dto.ToListAccountResponse(accounts)})
}
