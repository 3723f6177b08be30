package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/smart-chama/chama_backend/internal/core/ports/repositories"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	userRepo := newPgxUserRepository(dbPool)
	ledgerRepo := newPgxLedgerRepository(dbPool)
	loanRepo := newPgxLoanRepository(dbPool)
	meetingRepo := newPgxMeetingRepository(dbPool)
	notificationRepo := newPgxNotificationRepository(dbPool)
	settingRepo := newPgxSettingRepository(dbPool)
	reportingRepo := newPgxReportingRepository(dbPool)

	return portsrepo.RepositoryProvider{
		UserRepo:         userRepo,
		LoanRepo:         loanRepo,
		LedgerRepo:       ledgerRepo,
		MeetingRepo:      meetingRepo,
		NotificationRepo: notificationRepo,
		SettingRepo:      settingRepo,
		ReportingRepo:    reportingRepo,
	}
}
