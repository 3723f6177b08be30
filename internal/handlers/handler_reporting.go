package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	portssvc "github.com/smart-chama/chama_backend/internal/core/ports/services"
	"github.com/smart-chama/chama_backend/internal/dto"
	"github.com/smart-chama/chama_backend/internal/middleware"
)

// reportingHandler handles HTTP requests for financial reports and dashboards.
type reportingHandler struct {
	reportingService portssvc.ReportingService
}

func newReportingHandler(rs portssvc.ReportingService) *reportingHandler {
	return &reportingHandler{reportingService: rs}
}

// registerReportingRoutes registers reporting and dashboard routes.
func registerReportingRoutes(rg *gin.RouterGroup, reportingService portssvc.ReportingService) {
	h := newReportingHandler(reportingService)

	rg.GET("/finance/reports", h.getFinanceReport) // Admin only
	dashboard := rg.Group("/dashboard")
	{
		dashboard.GET("/summary", h.getDashboardSummary) // Admin only
		dashboard.GET("/member-summary", h.getMemberSummary)
	}
}

// parseReportDate parses a YYYY-MM-DD query value into a time pointer.
func parseReportDate(value *string) (*time.Time, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", *value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// getFinanceReport godoc
// @Summary Finance report
// @Description Generates the fund-level finance report, optionally bounded by a date window. Admin only.
// @Tags reports
// @Produce json
// @Param startDate query string false "Start date (YYYY-MM-DD)"
// @Param endDate query string false "End date (YYYY-MM-DD)"
// @Success 200 {object} dto.FinanceReportResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /api/finance/reports [get]
func (h *reportingHandler) getFinanceReport(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	requesterID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		respondUnauthorized(c)
		return
	}

	var params dto.FinanceReportParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err)
		return
	}

	from, err := parseReportDate(params.StartDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: http.StatusBadRequest, Message: "Invalid startDate. Use YYYY-MM-DD"})
		return
	}
	to, err := parseReportDate(params.EndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: http.StatusBadRequest, Message: "Invalid endDate. Use YYYY-MM-DD"})
		return
	}

	report, err := h.reportingService.FinanceReport(c.Request.Context(), requesterID, from, to)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToFinanceReportResponse(report))
}

// getDashboardSummary godoc
// @Summary Admin dashboard summary
// @Description Generates the admin landing-page rollup: member counts, pending approvals, contribution and loan totals. Admin only.
// @Tags reports
// @Produce json
// @Success 200 {object} dto.DashboardSummaryResponse
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /api/dashboard/summary [get]
func (h *reportingHandler) getDashboardSummary(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	requesterID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		respondUnauthorized(c)
		return
	}

	summary, err := h.reportingService.DashboardSummary(c.Request.Context(), requesterID)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToDashboardSummaryResponse(summary))
}

// getMemberSummary godoc
// @Summary Member dashboard summary
// @Description Generates the calling member's landing-page rollup.
// @Tags reports
// @Produce json
// @Success 200 {object} dto.MemberSummaryResponse
// @Failure 401 {object} ErrorResponse
// @Security BearerAuth
// @Router /api/dashboard/member-summary [get]
func (h *reportingHandler) getMemberSummary(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	memberID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		respondUnauthorized(c)
		return
	}

	summary, err := h.reportingService.MemberSummary(c.Request.Context(), memberID)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToMemberSummaryResponse(summary))
}
