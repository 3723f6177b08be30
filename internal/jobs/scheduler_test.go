package jobs

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smart-chama/chama_backend/internal/apperrors"
	"github.com/smart-chama/chama_backend/internal/core/domain"
)

type stubLoanReader struct {
	loans []domain.Loan
	err   error
}

func (s *stubLoanReader) FindLoanByID(ctx context.Context, loanID string) (*domain.Loan, error) {
	return nil, apperrors.ErrNotFound
}

func (s *stubLoanReader) ListLoans(ctx context.Context, limit int, nextToken *string, status *domain.LoanStatus) ([]domain.Loan, *string, error) {
	return nil, nil, nil
}

func (s *stubLoanReader) ListLoansByMember(ctx context.Context, memberID string, limit int, nextToken *string) ([]domain.Loan, *string, error) {
	return nil, nil, nil
}

func (s *stubLoanReader) ListOpenLoans(ctx context.Context) ([]domain.Loan, error) {
	return s.loans, s.err
}

func (s *stubLoanReader) FindRepaymentsByLoanID(ctx context.Context, loanID string) ([]domain.Repayment, error) {
	return nil, nil
}

type stubMeetingReader struct {
	meetings []domain.Meeting
	err      error
}

func (s *stubMeetingReader) FindMeetingByID(ctx context.Context, meetingID string) (*domain.Meeting, error) {
	for i := range s.meetings {
		if s.meetings[i].MeetingID == meetingID {
			return &s.meetings[i], nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (s *stubMeetingReader) ListMeetings(ctx context.Context, limit int, nextToken *string, status *domain.MeetingStatus) ([]domain.Meeting, *string, error) {
	return nil, nil, nil
}

func (s *stubMeetingReader) ListMeetingsBetween(ctx context.Context, from time.Time, to time.Time) ([]domain.Meeting, error) {
	return s.meetings, s.err
}

type capturingNotifier struct {
	sent    []domain.Notification
	fanouts [][]string
}

func (c *capturingNotifier) Notify(ctx context.Context, notification domain.Notification) {
	c.sent = append(c.sent, notification)
}

func (c *capturingNotifier) NotifyAll(ctx context.Context, recipientIDs []string, notification domain.Notification) {
	c.fanouts = append(c.fanouts, recipientIDs)
	c.sent = append(c.sent, notification)
}

func approvedLoan(memberID string, monthsAgo int) domain.Loan {
	approvedAt := time.Now().AddDate(0, -monthsAgo, 0)
	loan := domain.Loan{
		LoanID:         uuid.NewString(),
		MemberID:       memberID,
		Principal:      decimal.NewFromInt(12000),
		InterestRate:   decimal.NewFromInt(10),
		DurationMonths: 12,
		Purpose:        "Stock purchase",
		Status:         domain.LoanApproved,
		ApprovedAt:     &approvedAt,
	}
	loan.ComputeDerived()
	return loan
}

func TestRunLoanReminders_OverdueLoanGetsHighPriority(t *testing.T) {
	memberID := uuid.NewString()
	// Two installments due, nothing paid.
	loan := approvedLoan(memberID, 2)

	notifier := &capturingNotifier{}
	s := NewScheduler(&stubLoanReader{loans: []domain.Loan{loan}}, &stubMeetingReader{}, notifier, slog.Default())

	s.RunLoanReminders()

	require.Len(t, notifier.sent, 1)
	assert.Equal(t, memberID, notifier.sent[0].RecipientID)
	assert.Equal(t, domain.NotifyLoanPaymentDue, notifier.sent[0].Type)
	assert.Equal(t, domain.PriorityHigh, notifier.sent[0].Priority)
	assert.Nil(t, notifier.sent[0].SenderID) // system notification
}

func TestRunLoanReminders_OnScheduleLoanSkipped(t *testing.T) {
	loan := approvedLoan(uuid.NewString(), 2)
	// Paid up for both elapsed installments; next one is weeks away.
	loan.TotalPaid = loan.MonthlyInstallment.Mul(decimal.NewFromInt(2))
	loan.RecalculateBalance()

	notifier := &capturingNotifier{}
	s := NewScheduler(&stubLoanReader{loans: []domain.Loan{loan}}, &stubMeetingReader{}, notifier, slog.Default())

	s.RunLoanReminders()

	assert.Empty(t, notifier.sent)
}

func TestRunLoanReminders_RepoErrorIsSwallowed(t *testing.T) {
	notifier := &capturingNotifier{}
	s := NewScheduler(&stubLoanReader{err: assert.AnError}, &stubMeetingReader{}, notifier, slog.Default())

	s.RunLoanReminders()

	assert.Empty(t, notifier.sent)
}

func TestRunMeetingReminders_SkipsDeclinedAttendees(t *testing.T) {
	confirmed := uuid.NewString()
	declined := uuid.NewString()
	invited := uuid.NewString()

	meeting := domain.Meeting{
		MeetingID:   uuid.NewString(),
		Title:       "Monthly general meeting",
		Location:    "Community hall",
		ScheduledAt: time.Now().Add(6 * time.Hour),
		Status:      domain.MeetingScheduled,
		Attendees: []domain.MeetingAttendee{
			{UserID: confirmed, RSVP: domain.RSVPConfirmed},
			{UserID: declined, RSVP: domain.RSVPDeclined},
			{UserID: invited, RSVP: domain.RSVPInvited},
		},
	}

	notifier := &capturingNotifier{}
	s := NewScheduler(&stubLoanReader{}, &stubMeetingReader{meetings: []domain.Meeting{meeting}}, notifier, slog.Default())

	s.RunMeetingReminders()

	require.Len(t, notifier.fanouts, 1)
	assert.ElementsMatch(t, []string{confirmed, invited}, notifier.fanouts[0])
	require.Len(t, notifier.sent, 1)
	assert.Equal(t, domain.NotifyMeetingReminder, notifier.sent[0].Type)
}

func TestRunMeetingReminders_NoUpcomingMeetings(t *testing.T) {
	notifier := &capturingNotifier{}
	s := NewScheduler(&stubLoanReader{}, &stubMeetingReader{}, notifier, slog.Default())

	s.RunMeetingReminders()

	assert.Empty(t, notifier.sent)
}
