package services

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/smart-chama/chama_backend/internal/apperrors"
	"github.com/smart-chama/chama_backend/internal/core/domain"
	portsrepo "github.com/smart-chama/chama_backend/internal/core/ports/repositories"
	portssvc "github.com/smart-chama/chama_backend/internal/core/ports/services"
	"github.com/smart-chama/chama_backend/internal/dto"
)

const defaultMeetingDurationMinutes = 120

// meetingService schedules meetings and tracks attendee RSVPs.
type meetingService struct {
	BaseService
	meetingRepo portsrepo.MeetingRepositoryFacade
	notifier    portssvc.NotificationDispatcher
}

// NewMeetingService creates a new MeetingService.
func NewMeetingService(
	meetingRepo portsrepo.MeetingRepositoryFacade,
	userSvc portssvc.UserReaderSvc,
	notifier portssvc.NotificationDispatcher,
) portssvc.MeetingSvcFacade {
	return &meetingService{
		BaseService: BaseService{Users: userSvc},
		meetingRepo: meetingRepo,
		notifier:    notifier,
	}
}

// Ensure meetingService implements the portssvc.MeetingSvcFacade interface
var _ portssvc.MeetingSvcFacade = (*meetingService)(nil)

// ScheduleMeeting creates a meeting and invites the attendees. Admin only.
// Implements portssvc.MeetingWriterSvc
func (s *meetingService) ScheduleMeeting(ctx context.Context, req dto.CreateMeetingRequest, creatorUserID string) (*domain.Meeting, error) {
	logger := s.GetLogger(ctx)

	if _, err := s.RequireAdmin(ctx, creatorUserID); err != nil {
		return nil, err
	}
	if req.ScheduledAt.Before(time.Now()) {
		return nil, fmt.Errorf("%w: meetings cannot be scheduled in the past", apperrors.ErrValidation)
	}

	attendeeIDs := req.AttendeeIDs
	if len(attendeeIDs) == 0 {
		ids, err := s.Users.ListActiveMemberIDs(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list members for meeting invitation: %w", err)
		}
		attendeeIDs = ids
	}

	duration := req.DurationMinutes
	if duration <= 0 {
		duration = defaultMeetingDurationMinutes
	}

	now := time.Now().UTC()
	meeting := domain.Meeting{
		MeetingID:       uuid.NewString(),
		Title:           req.Title,
		Agenda:          req.Agenda,
		Location:        req.Location,
		ScheduledAt:     req.ScheduledAt.UTC(),
		DurationMinutes: duration,
		Status:          domain.MeetingScheduled,
		AuditFields:     domain.NewAuditFields(creatorUserID, now),
	}
	meeting.Attendees = make([]domain.MeetingAttendee, len(attendeeIDs))
	for i, id := range attendeeIDs {
		meeting.Attendees[i] = domain.MeetingAttendee{
			MeetingID: meeting.MeetingID,
			UserID:    id,
			RSVP:      domain.RSVPInvited,
		}
	}

	if err := s.meetingRepo.SaveMeeting(ctx, meeting); err != nil {
		logger.Error("failed to save meeting", slog.String("error", err.Error()), slog.String("title", req.Title))
		return nil, fmt.Errorf("failed to save meeting: %w", err)
	}

	logger.Info("meeting scheduled",
		slog.String("meeting_id", meeting.MeetingID),
		slog.Time("scheduled_at", meeting.ScheduledAt),
		slog.Int("attendees", len(attendeeIDs)))

	s.notifier.NotifyAll(ctx, attendeeIDs, domain.Notification{
		SenderID: &creatorUserID,
		Type:     domain.NotifyMeetingInvitation,
		Title:    "Meeting invitation",
		Message:  fmt.Sprintf("%s on %s at %s", meeting.Title, meeting.ScheduledAt.Format("Mon, 02 Jan 2006 15:04"), meeting.Location),
		Priority: domain.PriorityMedium,
	})

	return &meeting, nil
}

// GetMeetingByID retrieves a meeting with its attendee roster.
// Implements portssvc.MeetingReaderSvc
func (s *meetingService) GetMeetingByID(ctx context.Context, meetingID string, requestingUserID string) (*domain.Meeting, error) {
	meeting, err := s.meetingRepo.FindMeetingByID(ctx, meetingID)
	if err != nil {
		return nil, fmt.Errorf("failed to find meeting %s: %w", meetingID, err)
	}
	return meeting, nil
}

// ListMeetings retrieves a paginated list of meetings.
// Implements portssvc.MeetingReaderSvc
func (s *meetingService) ListMeetings(ctx context.Context, requestingUserID string, params dto.ListMeetingsParams) (*dto.ListMeetingsResponse, error) {
	var status *domain.MeetingStatus
	if params.Status != nil {
		st := domain.MeetingStatus(*params.Status)
		switch st {
		case domain.MeetingScheduled, domain.MeetingCancelled, domain.MeetingCompleted:
			status = &st
		default:
			return nil, fmt.Errorf("%w: unknown meeting status %q", apperrors.ErrValidation, *params.Status)
		}
	}

	meetings, nextToken, err := s.meetingRepo.ListMeetings(ctx, clampLimit(params.Limit), params.NextToken, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list meetings: %w", err)
	}
	resp := dto.ToListMeetingsResponse(meetings, nextToken)
	return &resp, nil
}

// UpdateMeeting amends a scheduled meeting. Admin only.
// Implements portssvc.MeetingWriterSvc
func (s *meetingService) UpdateMeeting(ctx context.Context, meetingID string, req dto.UpdateMeetingRequest, requestingUserID string) (*domain.Meeting, error) {
	if _, err := s.RequireAdmin(ctx, requestingUserID); err != nil {
		return nil, err
	}
	meeting, err := s.meetingRepo.FindMeetingByID(ctx, meetingID)
	if err != nil {
		return nil, fmt.Errorf("failed to find meeting %s: %w", meetingID, err)
	}
	if meeting.Status != domain.MeetingScheduled {
		return nil, fmt.Errorf("%w: meeting is %s, only %s meetings can be edited", apperrors.ErrInvalidState, meeting.Status, domain.MeetingScheduled)
	}

	if req.Title != nil {
		meeting.Title = *req.Title
	}
	if req.Agenda != nil {
		meeting.Agenda = *req.Agenda
	}
	if req.Location != nil {
		meeting.Location = *req.Location
	}
	if req.ScheduledAt != nil {
		if req.ScheduledAt.Before(time.Now()) {
			return nil, fmt.Errorf("%w: meetings cannot be rescheduled into the past", apperrors.ErrValidation)
		}
		meeting.ScheduledAt = req.ScheduledAt.UTC()
	}
	if req.DurationMinutes != nil {
		if *req.DurationMinutes <= 0 {
			return nil, fmt.Errorf("%w: duration must be positive", apperrors.ErrValidation)
		}
		meeting.DurationMinutes = *req.DurationMinutes
	}
	meeting.Touch(requestingUserID, time.Now().UTC())

	if err := s.meetingRepo.UpdateMeeting(ctx, *meeting); err != nil {
		return nil, fmt.Errorf("failed to update meeting %s: %w", meetingID, err)
	}
	return meeting, nil
}

// CancelMeeting cancels a scheduled meeting and notifies attendees. Admin only.
// Implements portssvc.MeetingWriterSvc
func (s *meetingService) CancelMeeting(ctx context.Context, meetingID string, requestingUserID string) (*domain.Meeting, error) {
	logger := s.GetLogger(ctx)

	if _, err := s.RequireAdmin(ctx, requestingUserID); err != nil {
		return nil, err
	}
	meeting, err := s.meetingRepo.FindMeetingByID(ctx, meetingID)
	if err != nil {
		return nil, fmt.Errorf("failed to find meeting %s: %w", meetingID, err)
	}
	if meeting.Status != domain.MeetingScheduled {
		return nil, fmt.Errorf("%w: meeting is %s, only %s meetings can be cancelled", apperrors.ErrInvalidState, meeting.Status, domain.MeetingScheduled)
	}

	now := time.Now().UTC()
	meeting.Status = domain.MeetingCancelled
	meeting.Touch(requestingUserID, now)
	if err := s.meetingRepo.UpdateMeetingStatus(ctx, meetingID, domain.MeetingCancelled, requestingUserID, now); err != nil {
		return nil, fmt.Errorf("failed to cancel meeting %s: %w", meetingID, err)
	}

	logger.Info("meeting cancelled", slog.String("meeting_id", meetingID), slog.String("cancelled_by", requestingUserID))

	attendeeIDs := make([]string, len(meeting.Attendees))
	for i, a := range meeting.Attendees {
		attendeeIDs[i] = a.UserID
	}
	s.notifier.NotifyAll(ctx, attendeeIDs, domain.Notification{
		SenderID: &requestingUserID,
		Type:     domain.NotifyMeetingCancelled,
		Title:    "Meeting cancelled",
		Message:  fmt.Sprintf("%s scheduled for %s has been cancelled", meeting.Title, meeting.ScheduledAt.Format("Mon, 02 Jan 2006 15:04")),
		Priority: domain.PriorityHigh,
	})

	return meeting, nil
}

// RespondToInvitation records the caller's RSVP for a meeting.
// Implements portssvc.MeetingWriterSvc
func (s *meetingService) RespondToInvitation(ctx context.Context, meetingID string, userID string, req dto.RSVPRequest) error {
	meeting, err := s.meetingRepo.FindMeetingByID(ctx, meetingID)
	if err != nil {
		return fmt.Errorf("failed to find meeting %s: %w", meetingID, err)
	}
	if meeting.Status != domain.MeetingScheduled {
		return fmt.Errorf("%w: meeting is %s, RSVPs are only valid while %s", apperrors.ErrInvalidState, meeting.Status, domain.MeetingScheduled)
	}

	invited := false
	for _, a := range meeting.Attendees {
		if a.UserID == userID {
			invited = true
			break
		}
	}
	if !invited {
		return fmt.Errorf("%w: user is not invited to this meeting", apperrors.ErrForbidden)
	}

	now := time.Now().UTC()
	attendee := domain.MeetingAttendee{
		MeetingID:   meetingID,
		UserID:      userID,
		RSVP:        domain.RSVPStatus(req.Response),
		RespondedAt: &now,
	}
	if err := s.meetingRepo.UpsertAttendee(ctx, attendee); err != nil {
		return fmt.Errorf("failed to record RSVP for meeting %s: %w", meetingID, err)
	}
	return nil
}

// MarkAttendance records who attended and completes the meeting. Admin only.
// Implements portssvc.MeetingWriterSvc
func (s *meetingService) MarkAttendance(ctx context.Context, meetingID string, req dto.AttendanceRequest, requestingUserID string) (*domain.Meeting, error) {
	if _, err := s.RequireAdmin(ctx, requestingUserID); err != nil {
		return nil, err
	}
	meeting, err := s.meetingRepo.FindMeetingByID(ctx, meetingID)
	if err != nil {
		return nil, fmt.Errorf("failed to find meeting %s: %w", meetingID, err)
	}
	if meeting.Status != domain.MeetingScheduled {
		return nil, fmt.Errorf("%w: meeting is %s, attendance applies to %s meetings", apperrors.ErrInvalidState, meeting.Status, domain.MeetingScheduled)
	}
	now := time.Now().UTC()
	if meeting.ScheduledAt.After(now) {
		return nil, fmt.Errorf("%w: attendance can only be recorded once the meeting has started", apperrors.ErrValidation)
	}

	invited := make(map[string]bool, len(meeting.Attendees))
	for _, a := range meeting.Attendees {
		invited[a.UserID] = true
	}
	for _, userID := range req.AttendedUserIDs {
		if !invited[userID] {
			return nil, fmt.Errorf("%w: user %s was not invited to this meeting", apperrors.ErrValidation, userID)
		}
	}

	for _, userID := range req.AttendedUserIDs {
		attendee := domain.MeetingAttendee{
			MeetingID:   meetingID,
			UserID:      userID,
			RSVP:        domain.RSVPAttended,
			RespondedAt: &now,
		}
		if err := s.meetingRepo.UpsertAttendee(ctx, attendee); err != nil {
			return nil, fmt.Errorf("failed to record attendance for meeting %s: %w", meetingID, err)
		}
	}

	meeting.Status = domain.MeetingCompleted
	meeting.Touch(requestingUserID, now)
	if err := s.meetingRepo.UpdateMeetingStatus(ctx, meetingID, domain.MeetingCompleted, requestingUserID, now); err != nil {
		return nil, fmt.Errorf("failed to complete meeting %s: %w", meetingID, err)
	}

	for i, a := range meeting.Attendees {
		if slices.Contains(req.AttendedUserIDs, a.UserID) {
			meeting.Attendees[i].RSVP = domain.RSVPAttended
			meeting.Attendees[i].RespondedAt = &now
		}
	}

	s.LogInfo(ctx, "meeting attendance recorded",
		slog.String("meeting_id", meetingID),
		slog.Int("attended", len(req.AttendedUserIDs)))
	return meeting, nil
}

// DeleteMeeting soft-deletes a meeting. Admin only.
// Implements portssvc.MeetingWriterSvc
func (s *meetingService) DeleteMeeting(ctx context.Context, meetingID string, requestingUserID string) error {
	if _, err := s.RequireAdmin(ctx, requestingUserID); err != nil {
		return err
	}
	if _, err := s.meetingRepo.FindMeetingByID(ctx, meetingID); err != nil {
		return fmt.Errorf("failed to find meeting %s: %w", meetingID, err)
	}

	now := time.Now().UTC()
	if err := s.meetingRepo.MarkMeetingDeleted(ctx, meetingID, now, requestingUserID); err != nil {
		return fmt.Errorf("failed to delete meeting %s: %w", meetingID, err)
	}
	s.LogInfo(ctx, "meeting deleted", slog.String("meeting_id", meetingID), slog.String("deleted_by", requestingUserID))
	return nil
}
