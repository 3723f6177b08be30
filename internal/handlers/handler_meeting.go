package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/smart-chama/chama_backend/internal/core/ports/services"
	"github.com/smart-chama/chama_backend/internal/dto"
	"github.com/smart-chama/chama_backend/internal/middleware"
)

// meetingHandler handles HTTP requests related to meetings.
type meetingHandler struct {
	meetingService portssvc.MeetingSvcFacade
}

func newMeetingHandler(ms portssvc.MeetingSvcFacade) *meetingHandler {
	return &meetingHandler{meetingService: ms}
}

// registerMeetingRoutes registers all meeting-related routes.
func registerMeetingRoutes(rg *gin.RouterGroup, meetingService portssvc.MeetingSvcFacade) {
	h := newMeetingHandler(meetingService)

	meetings := rg.Group("/meetings")
	{
		meetings.POST("", h.scheduleMeeting) // Admin only
		meetings.GET("", h.listMeetings)
		meetings.GET("/:id", h.getMeeting)
		meetings.PUT("/:id", h.updateMeeting)           // Admin only
		meetings.POST("/:id/cancel", h.cancelMeeting)   // Admin only
		meetings.POST("/:id/rsvp", h.respondToMeeting)
		meetings.POST("/:id/attendance", h.markAttendance) // Admin only
		meetings.DELETE("/:id", h.deleteMeeting)           // Admin only
	}
}

// scheduleMeeting godoc
// @Summary Schedule a meeting
// @Description Schedules a meeting and invites the attendees; an empty attendee list invites every active member. Admin only.
// @Tags meetings
// @Accept json
// @Produce json
// @Param meeting body dto.CreateMeetingRequest true "Meeting details"
// @Success 201 {object} dto.MeetingResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /api/meetings [post]
func (h *meetingHandler) scheduleMeeting(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	creatorID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		respondUnauthorized(c)
		return
	}

	var req dto.CreateMeetingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	meeting, err := h.meetingService.ScheduleMeeting(c.Request.Context(), req, creatorID)
	if err != nil {
		respondError(c, logger, err)
		return
	}

	logger.Info("Meeting scheduled", slog.String("meeting_id", meeting.MeetingID), slog.String("scheduled_by", creatorID))
	c.JSON(http.StatusCreated, dto.ToMeetingResponse(meeting))
}

// listMeetings godoc
// @Summary List meetings
// @Description Retrieves a paginated list of meetings, most recent first.
// @Tags meetings
// @Produce json
// @Param limit query int false "Page size" default(20)
// @Param nextToken query string false "Pagination token"
// @Param status query string false "Status filter"
// @Success 200 {object} dto.ListMeetingsResponse
// @Failure 401 {object} ErrorResponse
// @Security BearerAuth
// @Router /api/meetings [get]
func (h *meetingHandler) listMeetings(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	requesterID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		respondUnauthorized(c)
		return
	}

	var params dto.ListMeetingsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err)
		return
	}

	resp, err := h.meetingService.ListMeetings(c.Request.Context(), requesterID, params)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// getMeeting godoc
// @Summary Get a meeting
// @Description Retrieves a meeting with its attendee roster.
// @Tags meetings
// @Produce json
// @Param id path string true "Meeting ID"
// @Success 200 {object} dto.MeetingResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /api/meetings/{id} [get]
func (h *meetingHandler) getMeeting(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	requesterID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		respondUnauthorized(c)
		return
	}

	meeting, err := h.meetingService.GetMeetingByID(c.Request.Context(), c.Param("id"), requesterID)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToMeetingResponse(meeting))
}

// updateMeeting godoc
// @Summary Update a meeting
// @Description Amends a scheduled meeting's details. Admin only.
// @Tags meetings
// @Accept json
// @Produce json
// @Param id path string true "Meeting ID"
// @Param meeting body dto.UpdateMeetingRequest true "Fields to change"
// @Success 200 {object} dto.MeetingResponse
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /api/meetings/{id} [put]
func (h *meetingHandler) updateMeeting(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	requesterID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		respondUnauthorized(c)
		return
	}

	var req dto.UpdateMeetingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	meeting, err := h.meetingService.UpdateMeeting(c.Request.Context(), c.Param("id"), req, requesterID)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToMeetingResponse(meeting))
}

// cancelMeeting godoc
// @Summary Cancel a meeting
// @Description Cancels a scheduled meeting and notifies attendees. Admin only.
// @Tags meetings
// @Produce json
// @Param id path string true "Meeting ID"
// @Success 200 {object} dto.MeetingResponse
// @Failure 403 {object} ErrorResponse
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /api/meetings/{id}/cancel [post]
func (h *meetingHandler) cancelMeeting(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	requesterID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		respondUnauthorized(c)
		return
	}

	meeting, err := h.meetingService.CancelMeeting(c.Request.Context(), c.Param("id"), requesterID)
	if err != nil {
		respondError(c, logger, err)
		return
	}

	logger.Info("Meeting cancelled", slog.String("meeting_id", meeting.MeetingID), slog.String("cancelled_by", requesterID))
	c.JSON(http.StatusOK, dto.ToMeetingResponse(meeting))
}

// respondToMeeting godoc
// @Summary RSVP to a meeting
// @Description Records the caller's response to a meeting invitation.
// @Tags meetings
// @Accept json
// @Produce json
// @Param id path string true "Meeting ID"
// @Param rsvp body dto.RSVPRequest true "RSVP response"
// @Success 204 "No Content"
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /api/meetings/{id}/rsvp [post]
func (h *meetingHandler) respondToMeeting(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		respondUnauthorized(c)
		return
	}

	var req dto.RSVPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := h.meetingService.RespondToInvitation(c.Request.Context(), c.Param("id"), userID, req); err != nil {
		respondError(c, logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// markAttendance godoc
// @Summary Record meeting attendance
// @Description Marks the listed members as having attended and completes the meeting. Admin only.
// @Tags meetings
// @Accept json
// @Produce json
// @Param id path string true "Meeting ID"
// @Param attendance body dto.AttendanceRequest true "Attended member IDs"
// @Success 200 {object} dto.MeetingResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /api/meetings/{id}/attendance [post]
func (h *meetingHandler) markAttendance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	requesterID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		respondUnauthorized(c)
		return
	}

	var req dto.AttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	meeting, err := h.meetingService.MarkAttendance(c.Request.Context(), c.Param("id"), req, requesterID)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToMeetingResponse(meeting))
}

// deleteMeeting godoc
// @Summary Delete a meeting
// @Description Soft-deletes a meeting. Admin only.
// @Tags meetings
// @Produce json
// @Param id path string true "Meeting ID"
// @Success 204 "No Content"
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /api/meetings/{id} [delete]
func (h *meetingHandler) deleteMeeting(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	requesterID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		respondUnauthorized(c)
		return
	}

	if err := h.meetingService.DeleteMeeting(c.Request.Context(), c.Param("id"), requesterID); err != nil {
		respondError(c, logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
