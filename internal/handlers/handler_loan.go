package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/smart-chama/chama_backend/internal/core/ports/services"
	"github.com/smart-chama/chama_backend/internal/dto"
	"github.com/smart-chama/chama_backend/internal/middleware"
)

// loanHandler handles HTTP requests related to loans.
type loanHandler struct {
	loanService portssvc.LoanSvcFacade
}

func newLoanHandler(ls portssvc.LoanSvcFacade) *loanHandler {
	return &loanHandler{loanService: ls}
}

// registerLoanRoutes registers all loan-related routes.
func registerLoanRoutes(rg *gin.RouterGroup, loanService portssvc.LoanSvcFacade) {
	h := newLoanHandler(loanService)

	loans := rg.Group("/loans")
	{
		loans.POST("/apply", h.applyForLoan)
		loans.GET("/my-loans", h.listMyLoans)
		loans.GET("", h.listLoans) // Admin only
		loans.GET("/stats", h.getLoanStats)
		loans.POST("", h.createLoan) // Admin only
		loans.GET("/:id", h.getLoan)
		loans.PUT("/:id", h.updateLoan)
		loans.DELETE("/:id", h.deleteLoan)
		loans.POST("/:id/approve", h.approveLoan) // Admin only
		loans.POST("/:id/reject", h.rejectLoan)   // Admin only
		loans.POST("/:id/repay", h.recordRepayment)
	}
}

// applyForLoan godoc
// @Summary Apply for a loan
// @Description Creates a pending loan application for the calling member. Principal is capped by the loan multiplier against settled contributions.
// @Tags loans
// @Accept json
// @Produce json
// @Param loan body dto.ApplyLoanRequest true "Loan application"
// @Success 201 {object} dto.LoanResponse
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /api/loans/apply [post]
func (h *loanHandler) applyForLoan(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	memberID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		respondUnauthorized(c)
		return
	}

	var req dto.ApplyLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	loan, err := h.loanService.ApplyForLoan(c.Request.Context(), memberID, req)
	if err != nil {
		respondError(c, logger, err)
		return
	}

	logger.Info("Loan application submitted", slog.String("loan_id", loan.LoanID), slog.String("member_id", memberID))
	c.JSON(http.StatusCreated, dto.ToLoanResponse(loan))
}

// createLoan godoc
// @Summary Record a loan for a member
// @Description Creates a loan on behalf of a member. Admin only.
// @Tags loans
// @Accept json
// @Produce json
// @Param loan body dto.CreateLoanRequest true "Loan details"
// @Success 201 {object} dto.LoanResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /api/loans [post]
func (h *loanHandler) createLoan(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	creatorID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		respondUnauthorized(c)
		return
	}

	var req dto.CreateLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	loan, err := h.loanService.CreateLoan(c.Request.Context(), req, creatorID)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToLoanResponse(loan))
}

// listMyLoans godoc
// @Summary List the caller's loans
// @Description Retrieves a paginated list of the calling member's loans.
// @Tags loans
// @Produce json
// @Param limit query int false "Page size" default(20)
// @Param nextToken query string false "Pagination token"
// @Success 200 {object} dto.ListLoansResponse
// @Failure 401 {object} ErrorResponse
// @Security BearerAuth
// @Router /api/loans/my-loans [get]
func (h *loanHandler) listMyLoans(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	memberID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		respondUnauthorized(c)
		return
	}

	var params dto.ListLoansParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err)
		return
	}

	resp, err := h.loanService.ListMemberLoans(c.Request.Context(), memberID, params)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// listLoans godoc
// @Summary List all loans
// @Description Retrieves a paginated list of all loans, optionally filtered by status. Admin only.
// @Tags loans
// @Produce json
// @Param limit query int false "Page size" default(20)
// @Param nextToken query string false "Pagination token"
// @Param status query string false "Loan status filter"
// @Success 200 {object} dto.ListLoansResponse
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /api/loans [get]
func (h *loanHandler) listLoans(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	requesterID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		respondUnauthorized(c)
		return
	}

	var params dto.ListLoansParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err)
		return
	}

	resp, err := h.loanService.ListLoans(c.Request.Context(), requesterID, params)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// getLoanStats godoc
// @Summary Loan statistics
// @Description Retrieves aggregate loan figures. Admin only.
// @Tags loans
// @Produce json
// @Success 200 {object} dto.LoanStatsResponse
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /api/loans/stats [get]
func (h *loanHandler) getLoanStats(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	requesterID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		respondUnauthorized(c)
		return
	}

	stats, err := h.loanService.GetLoanStats(c.Request.Context(), requesterID)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToLoanStatsResponse(stats))
}

// getLoan godoc
// @Summary Get a loan
// @Description Retrieves a loan with its repayments. Members may only read their own loans.
// @Tags loans
// @Produce json
// @Param id path string true "Loan ID"
// @Success 200 {object} dto.LoanResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /api/loans/{id} [get]
func (h *loanHandler) getLoan(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	requesterID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		respondUnauthorized(c)
		return
	}

	loan, err := h.loanService.GetLoanByID(c.Request.Context(), c.Param("id"), requesterID)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToLoanResponse(loan))
}

// updateLoan godoc
// @Summary Update a pending loan
// @Description Amends a pending loan application and recomputes its figures.
// @Tags loans
// @Accept json
// @Produce json
// @Param id path string true "Loan ID"
// @Param loan body dto.UpdateLoanRequest true "Fields to change"
// @Success 200 {object} dto.LoanResponse
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /api/loans/{id} [put]
func (h *loanHandler) updateLoan(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	requesterID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		respondUnauthorized(c)
		return
	}

	var req dto.UpdateLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	loan, err := h.loanService.UpdateLoan(c.Request.Context(), c.Param("id"), req, requesterID)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToLoanResponse(loan))
}

// deleteLoan godoc
// @Summary Delete a pending loan
// @Description Soft-deletes a pending loan application.
// @Tags loans
// @Produce json
// @Param id path string true "Loan ID"
// @Success 204 "No Content"
// @Failure 404 {object} ErrorResponse
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /api/loans/{id} [delete]
func (h *loanHandler) deleteLoan(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	requesterID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		respondUnauthorized(c)
		return
	}

	if err := h.loanService.DeleteLoan(c.Request.Context(), c.Param("id"), requesterID); err != nil {
		respondError(c, logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// approveLoan godoc
// @Summary Approve a loan
// @Description Transitions a pending loan to approved and opens it for repayment. Admin only.
// @Tags loans
// @Produce json
// @Param id path string true "Loan ID"
// @Success 200 {object} dto.LoanResponse
// @Failure 403 {object} ErrorResponse
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /api/loans/{id}/approve [post]
func (h *loanHandler) approveLoan(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	approverID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		respondUnauthorized(c)
		return
	}

	loan, err := h.loanService.ApproveLoan(c.Request.Context(), c.Param("id"), approverID)
	if err != nil {
		respondError(c, logger, err)
		return
	}

	logger.Info("Loan approved", slog.String("loan_id", loan.LoanID), slog.String("approved_by", approverID))
	c.JSON(http.StatusOK, dto.ToLoanResponse(loan))
}

// rejectLoan godoc
// @Summary Reject a loan
// @Description Transitions a pending loan to rejected with a reason. Admin only.
// @Tags loans
// @Accept json
// @Produce json
// @Param id path string true "Loan ID"
// @Param rejection body dto.RejectLoanRequest true "Rejection reason"
// @Success 200 {object} dto.LoanResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /api/loans/{id}/reject [post]
func (h *loanHandler) rejectLoan(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	approverID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		respondUnauthorized(c)
		return
	}

	var req dto.RejectLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	loan, err := h.loanService.RejectLoan(c.Request.Context(), c.Param("id"), approverID, req.Reason)
	if err != nil {
		respondError(c, logger, err)
		return
	}

	logger.Info("Loan rejected", slog.String("loan_id", loan.LoanID), slog.String("rejected_by", approverID))
	c.JSON(http.StatusOK, dto.ToLoanResponse(loan))
}

// recordRepayment godoc
// @Summary Record a loan repayment
// @Description Appends a repayment to an approved loan and completes the loan when the balance reaches zero. The owner or an admin may record repayments.
// @Tags loans
// @Accept json
// @Produce json
// @Param id path string true "Loan ID"
// @Param repayment body dto.RecordRepaymentRequest true "Repayment details"
// @Success 200 {object} dto.LoanResponse
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /api/loans/{id}/repay [post]
func (h *loanHandler) recordRepayment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	requesterID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		respondUnauthorized(c)
		return
	}

	var req dto.RecordRepaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	loan, err := h.loanService.RecordRepayment(c.Request.Context(), c.Param("id"), req, requesterID)
	if err != nil {
		respondError(c, logger, err)
		return
	}

	logger.Info("Repayment recorded",
		slog.String("loan_id", loan.LoanID),
		slog.String("status", string(loan.Status)),
		slog.String("balance", loan.Balance.String()))
	c.JSON(http.StatusOK, dto.ToLoanResponse(loan))
}
