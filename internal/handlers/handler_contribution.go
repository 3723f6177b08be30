package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/smart-chama/chama_backend/internal/core/ports/services"
	"github.com/smart-chama/chama_backend/internal/dto"
	"github.com/smart-chama/chama_backend/internal/middleware"
)

// contributionHandler handles HTTP requests related to contributions.
type contributionHandler struct {
	contributionService portssvc.ContributionSvcFacade
}

func newContributionHandler(cs portssvc.ContributionSvcFacade) *contributionHandler {
	return &contributionHandler{contributionService: cs}
}

// registerContributionRoutes registers all contribution-related routes.
func registerContributionRoutes(rg *gin.RouterGroup, contributionService portssvc.ContributionSvcFacade) {
	h := newContributionHandler(contributionService)

	contributions := rg.Group("/contributions")
	{
		contributions.POST("/contribute", h.recordContribution)
		contributions.POST("", h.addContribution) // Admin only
		contributions.GET("", h.listContributions) // Admin only
		contributions.GET("/my-contributions", h.listMyContributions)
		contributions.GET("/my-total", h.getMyTotal)
		contributions.GET("/stats", h.getStats) // Admin only
		contributions.GET("/:id", h.getContribution)
		contributions.PUT("/:id", h.updateContribution)
		contributions.DELETE("/:id", h.deleteContribution)
	}
}

// recordContribution godoc
// @Summary Record own contribution
// @Description Records a contribution for the calling member. The entry starts pending until an admin approves it.
// @Tags contributions
// @Accept json
// @Produce json
// @Param contribution body dto.RecordContributionRequest true "Contribution details"
// @Success 201 {object} dto.ContributionResponse
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /api/contributions/contribute [post]
func (h *contributionHandler) recordContribution(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	memberID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		respondUnauthorized(c)
		return
	}

	var req dto.RecordContributionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	entry, err := h.contributionService.RecordContribution(c.Request.Context(), memberID, req)
	if err != nil {
		respondError(c, logger, err)
		return
	}

	logger.Info("Contribution recorded", slog.String("contribution_id", entry.EntryID), slog.String("member_id", memberID))
	c.JSON(http.StatusCreated, dto.ToContributionResponse(entry))
}

// addContribution godoc
// @Summary Add a contribution for a member
// @Description Records a settled contribution on behalf of a member. Admin only.
// @Tags contributions
// @Accept json
// @Produce json
// @Param contribution body dto.AddContributionRequest true "Contribution details"
// @Success 201 {object} dto.ContributionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /api/contributions [post]
func (h *contributionHandler) addContribution(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	creatorID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		respondUnauthorized(c)
		return
	}

	var req dto.AddContributionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	entry, err := h.contributionService.AddContribution(c.Request.Context(), req, creatorID)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToContributionResponse(entry))
}

// listContributions godoc
// @Summary List contributions
// @Description Retrieves a filtered, paginated list of contributions. Admin only.
// @Tags contributions
// @Produce json
// @Param limit query int false "Page size" default(20)
// @Param nextToken query string false "Pagination token"
// @Param status query string false "Status filter"
// @Param memberID query string false "Member filter"
// @Success 200 {object} dto.ListContributionsResponse
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /api/contributions [get]
func (h *contributionHandler) listContributions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	requesterID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		respondUnauthorized(c)
		return
	}

	var params dto.ListContributionsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err)
		return
	}

	resp, err := h.contributionService.ListContributions(c.Request.Context(), requesterID, params)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// listMyContributions godoc
// @Summary List the caller's contributions
// @Description Retrieves a paginated list of the calling member's contributions.
// @Tags contributions
// @Produce json
// @Param limit query int false "Page size" default(20)
// @Param nextToken query string false "Pagination token"
// @Success 200 {object} dto.ListContributionsResponse
// @Failure 401 {object} ErrorResponse
// @Security BearerAuth
// @Router /api/contributions/my-contributions [get]
func (h *contributionHandler) listMyContributions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	memberID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		respondUnauthorized(c)
		return
	}

	var params dto.ListContributionsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err)
		return
	}

	resp, err := h.contributionService.ListMemberContributions(c.Request.Context(), memberID, params)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// getMyTotal godoc
// @Summary Caller's settled contribution total
// @Description Sums the calling member's settled contributions.
// @Tags contributions
// @Produce json
// @Success 200 {object} dto.MemberTotalResponse
// @Failure 401 {object} ErrorResponse
// @Security BearerAuth
// @Router /api/contributions/my-total [get]
func (h *contributionHandler) getMyTotal(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	memberID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		respondUnauthorized(c)
		return
	}

	total, err := h.contributionService.GetMemberTotal(c.Request.Context(), memberID, memberID)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.MemberTotalResponse{MemberID: memberID, Total: total})
}

// getStats godoc
// @Summary Contribution statistics
// @Description Retrieves aggregate contribution figures with monthly buckets. Admin only.
// @Tags contributions
// @Produce json
// @Success 200 {object} dto.ContributionStatsResponse
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /api/contributions/stats [get]
func (h *contributionHandler) getStats(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	requesterID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		respondUnauthorized(c)
		return
	}

	stats, err := h.contributionService.GetContributionStats(c.Request.Context(), requesterID)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToContributionStatsResponse(stats))
}

// getContribution godoc
// @Summary Get a contribution
// @Description Retrieves a single contribution entry. Members may only read their own.
// @Tags contributions
// @Produce json
// @Param id path string true "Contribution ID"
// @Success 200 {object} dto.ContributionResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /api/contributions/{id} [get]
func (h *contributionHandler) getContribution(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	requesterID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		respondUnauthorized(c)
		return
	}

	entry, err := h.contributionService.GetContributionByID(c.Request.Context(), c.Param("id"), requesterID)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToContributionResponse(entry))
}

// updateContribution godoc
// @Summary Update a pending contribution
// @Description Amends a pending contribution.
// @Tags contributions
// @Accept json
// @Produce json
// @Param id path string true "Contribution ID"
// @Param contribution body dto.UpdateContributionRequest true "Fields to change"
// @Success 200 {object} dto.ContributionResponse
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /api/contributions/{id} [put]
func (h *contributionHandler) updateContribution(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	requesterID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		respondUnauthorized(c)
		return
	}

	var req dto.UpdateContributionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	entry, err := h.contributionService.UpdateContribution(c.Request.Context(), c.Param("id"), req, requesterID)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToContributionResponse(entry))
}

// deleteContribution godoc
// @Summary Delete a pending contribution
// @Description Soft-deletes a pending contribution.
// @Tags contributions
// @Produce json
// @Param id path string true "Contribution ID"
// @Success 204 "No Content"
// @Failure 404 {object} ErrorResponse
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /api/contributions/{id} [delete]
func (h *contributionHandler) deleteContribution(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	requesterID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		respondUnauthorized(c)
		return
	}

	if err := h.contributionService.DeleteContribution(c.Request.Context(), c.Param("id"), requesterID); err != nil {
		respondError(c, logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
