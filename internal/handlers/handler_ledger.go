package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/smart-chama/chama_backend/internal/core/ports/services"
	"github.com/smart-chama/chama_backend/internal/dto"
	"github.com/smart-chama/chama_backend/internal/middleware"
)

// ledgerHandler handles HTTP requests over the unified ledger.
type ledgerHandler struct {
	ledgerService portssvc.LedgerSvcFacade
}

func newLedgerHandler(ls portssvc.LedgerSvcFacade) *ledgerHandler {
	return &ledgerHandler{ledgerService: ls}
}

// registerLedgerRoutes registers all ledger-related routes.
func registerLedgerRoutes(rg *gin.RouterGroup, ledgerService portssvc.LedgerSvcFacade) {
	h := newLedgerHandler(ledgerService)

	ledger := rg.Group("/ledger")
	{
		ledger.GET("/entries", h.listEntries) // Admin only
		ledger.GET("/entries/:id", h.getEntry)
		ledger.POST("/transactions", h.createTransaction) // Admin only
		ledger.PUT("/transactions/:id", h.updateTransaction)
		ledger.DELETE("/transactions/:id", h.deleteTransaction)
		ledger.POST("/entries/:id/approve", h.approveEntry)   // Admin only
		ledger.POST("/entries/:id/reject", h.rejectEntry)     // Admin only
		ledger.POST("/entries/:id/complete", h.completeEntry) // Admin only
	}
}

// listEntries godoc
// @Summary List ledger entries
// @Description Retrieves a filtered, paginated list of ledger entries across all kinds. Admin only.
// @Tags ledger
// @Produce json
// @Param limit query int false "Page size" default(20)
// @Param nextToken query string false "Pagination token"
// @Param kind query string false "Entry kind filter"
// @Param status query string false "Status filter"
// @Param memberID query string false "Member filter"
// @Param startDate query string false "Start date (YYYY-MM-DD)"
// @Param endDate query string false "End date (YYYY-MM-DD)"
// @Success 200 {object} dto.ListEntriesResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /api/ledger/entries [get]
func (h *ledgerHandler) listEntries(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	requesterID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		respondUnauthorized(c)
		return
	}

	var params dto.ListEntriesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err)
		return
	}

	resp, err := h.ledgerService.ListEntries(c.Request.Context(), requesterID, params)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// getEntry godoc
// @Summary Get a ledger entry
// @Description Retrieves a single ledger entry. Members may only read their own entries.
// @Tags ledger
// @Produce json
// @Param id path string true "Entry ID"
// @Success 200 {object} dto.EntryResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /api/ledger/entries/{id} [get]
func (h *ledgerHandler) getEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	requesterID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		respondUnauthorized(c)
		return
	}

	entry, err := h.ledgerService.GetEntryByID(c.Request.Context(), c.Param("id"), requesterID)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToEntryResponse(entry))
}

// createTransaction godoc
// @Summary Record a ledger transaction
// @Description Records a general ledger transaction (expense, fine, interest). Admin only.
// @Tags ledger
// @Accept json
// @Produce json
// @Param transaction body dto.CreateTransactionRequest true "Transaction details"
// @Success 201 {object} dto.EntryResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /api/ledger/transactions [post]
func (h *ledgerHandler) createTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	creatorID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		respondUnauthorized(c)
		return
	}

	var req dto.CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	entry, err := h.ledgerService.CreateTransaction(c.Request.Context(), req, creatorID)
	if err != nil {
		respondError(c, logger, err)
		return
	}

	logger.Info("Transaction recorded", slog.String("entry_id", entry.EntryID), slog.String("kind", string(entry.Kind)))
	c.JSON(http.StatusCreated, dto.ToEntryResponse(entry))
}

// updateTransaction godoc
// @Summary Update a pending transaction
// @Description Amends a pending ledger entry. Admin only.
// @Tags ledger
// @Accept json
// @Produce json
// @Param id path string true "Entry ID"
// @Param transaction body dto.UpdateTransactionRequest true "Fields to change"
// @Success 200 {object} dto.EntryResponse
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /api/ledger/transactions/{id} [put]
func (h *ledgerHandler) updateTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	requesterID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		respondUnauthorized(c)
		return
	}

	var req dto.UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	entry, err := h.ledgerService.UpdateTransaction(c.Request.Context(), c.Param("id"), req, requesterID)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToEntryResponse(entry))
}

// deleteTransaction godoc
// @Summary Delete a pending transaction
// @Description Soft-deletes a pending ledger entry. Admin only.
// @Tags ledger
// @Produce json
// @Param id path string true "Entry ID"
// @Success 204 "No Content"
// @Failure 404 {object} ErrorResponse
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /api/ledger/transactions/{id} [delete]
func (h *ledgerHandler) deleteTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	requesterID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		respondUnauthorized(c)
		return
	}

	if err := h.ledgerService.DeleteTransaction(c.Request.Context(), c.Param("id"), requesterID); err != nil {
		respondError(c, logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// approveEntry godoc
// @Summary Approve a ledger entry
// @Description Transitions a pending entry to approved. Admin only.
// @Tags ledger
// @Produce json
// @Param id path string true "Entry ID"
// @Success 200 {object} dto.EntryResponse
// @Failure 403 {object} ErrorResponse
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /api/ledger/entries/{id}/approve [post]
func (h *ledgerHandler) approveEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	approverID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		respondUnauthorized(c)
		return
	}

	entry, err := h.ledgerService.ApproveEntry(c.Request.Context(), c.Param("id"), approverID)
	if err != nil {
		respondError(c, logger, err)
		return
	}

	logger.Info("Entry approved", slog.String("entry_id", entry.EntryID), slog.String("approved_by", approverID))
	c.JSON(http.StatusOK, dto.ToEntryResponse(entry))
}

// rejectEntry godoc
// @Summary Reject a ledger entry
// @Description Transitions a pending entry to rejected with a reason. Admin only.
// @Tags ledger
// @Accept json
// @Produce json
// @Param id path string true "Entry ID"
// @Param rejection body dto.RejectEntryRequest true "Rejection reason"
// @Success 200 {object} dto.EntryResponse
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /api/ledger/entries/{id}/reject [post]
func (h *ledgerHandler) rejectEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	approverID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		respondUnauthorized(c)
		return
	}

	var req dto.RejectEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	entry, err := h.ledgerService.RejectEntry(c.Request.Context(), c.Param("id"), approverID, req.Reason)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToEntryResponse(entry))
}

// completeEntry godoc
// @Summary Complete a ledger entry
// @Description Transitions an approved entry to completed, settling it. Admin only.
// @Tags ledger
// @Produce json
// @Param id path string true "Entry ID"
// @Success 200 {object} dto.EntryResponse
// @Failure 403 {object} ErrorResponse
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /api/ledger/entries/{id}/complete [post]
func (h *ledgerHandler) completeEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	requesterID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		respondUnauthorized(c)
		return
	}

	entry, err := h.ledgerService.CompleteEntry(c.Request.Context(), c.Param("id"), requesterID)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToEntryResponse(entry))
}
