package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jasonlvhit/gocron"

	"github.com/smart-chama/chama_backend/internal/core/domain"
	portsrepo "github.com/smart-chama/chama_backend/internal/core/ports/repositories"
	portssvc "github.com/smart-chama/chama_backend/internal/core/ports/services"
)

// Scheduler runs the recurring background jobs: loan payment-due reminders
// and meeting reminders. Jobs are read-only over the repositories and
// dispatch notifications best-effort.
type Scheduler struct {
	loanRepo    portsrepo.LoanReader
	meetingRepo portsrepo.MeetingReader
	notifier    portssvc.NotificationDispatcher
	logger      *slog.Logger

	cron *gocron.Scheduler
	quit chan bool
}

func NewScheduler(
	loanRepo portsrepo.LoanReader,
	meetingRepo portsrepo.MeetingReader,
	notifier portssvc.NotificationDispatcher,
	logger *slog.Logger,
) *Scheduler {
	return &Scheduler{
		loanRepo:    loanRepo,
		meetingRepo: meetingRepo,
		notifier:    notifier,
		logger:      logger,
		cron:        gocron.NewScheduler(),
	}
}

// Start schedules the jobs and runs the scheduler in the background.
func (s *Scheduler) Start() {
	s.cron.Every(1).Day().At("08:00").Do(s.RunLoanReminders)
	s.cron.Every(1).Day().At("08:00").Do(s.RunMeetingReminders)
	s.quit = s.cron.Start()
	s.logger.Info("Background job scheduler started")
}

// Stop halts the scheduler.
func (s *Scheduler) Stop() {
	if s.quit != nil {
		close(s.quit)
		s.quit = nil
	}
	s.logger.Info("Background job scheduler stopped")
}

// RunLoanReminders notifies members whose open loans have an installment due
// or overdue.
func (s *Scheduler) RunLoanReminders() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	loans, err := s.loanRepo.ListOpenLoans(ctx)
	if err != nil {
		s.logger.Error("Loan reminder job failed to list open loans", slog.String("error", err.Error()))
		return
	}

	now := time.Now()
	reminded := 0
	for i := range loans {
		loan := &loans[i]

		var title string
		var priority domain.NotificationPriority
		switch {
		case loan.IsOverdue(now):
			title = "Loan payment overdue"
			priority = domain.PriorityHigh
		case loan.InstallmentsDue(now.AddDate(0, 0, 3)) > loan.InstallmentsDue(now) && !loan.Balance.IsZero():
			// Next installment lands within three days.
			title = "Loan payment due"
			priority = domain.PriorityMedium
		default:
			continue
		}
		s.notifier.Notify(ctx, domain.Notification{
			RecipientID: loan.MemberID,
			Type:        domain.NotifyLoanPaymentDue,
			Title:       title,
			Message:     fmt.Sprintf("Your loan has an outstanding balance of %s; the monthly installment is %s", loan.Balance, loan.MonthlyInstallment),
			Priority:    priority,
		})
		reminded++
	}

	s.logger.Info("Loan reminder job finished",
		slog.Int("open_loans", len(loans)),
		slog.Int("reminders_sent", reminded))
}

// RunMeetingReminders notifies invited members about meetings scheduled in
// the next 24 hours.
func (s *Scheduler) RunMeetingReminders() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	now := time.Now()
	meetings, err := s.meetingRepo.ListMeetingsBetween(ctx, now, now.Add(24*time.Hour))
	if err != nil {
		s.logger.Error("Meeting reminder job failed to list meetings", slog.String("error", err.Error()))
		return
	}

	for i := range meetings {
		meeting := &meetings[i]

		// ListMeetingsBetween does not load attendees; fetch the full meeting.
		full, err := s.meetingRepo.FindMeetingByID(ctx, meeting.MeetingID)
		if err != nil {
			s.logger.Error("Meeting reminder job failed to load attendees",
				slog.String("meeting_id", meeting.MeetingID),
				slog.String("error", err.Error()))
			continue
		}

		recipientIDs := make([]string, 0, len(full.Attendees))
		for _, attendee := range full.Attendees {
			if attendee.RSVP == domain.RSVPDeclined {
				continue
			}
			recipientIDs = append(recipientIDs, attendee.UserID)
		}

		s.notifier.NotifyAll(ctx, recipientIDs, domain.Notification{
			Type:     domain.NotifyMeetingReminder,
			Title:    "Meeting reminder",
			Message:  fmt.Sprintf("%s is scheduled for %s at %s", full.Title, full.ScheduledAt.Format("Mon, 02 Jan 15:04"), full.Location),
			Priority: domain.PriorityMedium,
		})
	}

	s.logger.Info("Meeting reminder job finished", slog.Int("meetings", len(meetings)))
}
