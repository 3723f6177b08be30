package services

import (
	"github.com/redis/go-redis/v9"

	portsrepo "github.com/smart-chama/chama_backend/internal/core/ports/repositories"
	portssvc "github.com/smart-chama/chama_backend/internal/core/ports/services"
	"github.com/smart-chama/chama_backend/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies.
// The publisher and reportCache are optional; passing nil disables event publishing
// and report caching respectively.
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, publisher portssvc.EventPublisher, reportCache *redis.Client) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// User service first since nearly everything else authorizes through it.
	container.User = NewUserService(repos.UserRepo)

	container.Settings = NewSettingsService(repos.SettingRepo, container.User)
	container.Notification = NewNotificationService(repos.NotificationRepo, container.User, publisher)

	var notifier portssvc.NotificationDispatcher = container.Notification

	container.Loan = NewLoanService(
		repos.LoanRepo,
		repos.LedgerRepo,
		repos.ReportingRepo,
		container.User,
		container.Settings,
		notifier,
	)
	container.Contribution = NewContributionService(
		repos.LedgerRepo,
		repos.ReportingRepo,
		container.User,
		notifier,
	)
	container.Ledger = NewLedgerService(repos.LedgerRepo, container.User, notifier)
	container.Meeting = NewMeetingService(repos.MeetingRepo, container.User, notifier)

	reportingOpts := []ReportingServiceOption{}
	if reportCache != nil {
		reportingOpts = append(reportingOpts, WithReportCache(reportCache, cfg.ReportCacheTTL))
	}
	container.Reporting = NewReportingService(
		repos.ReportingRepo,
		repos.NotificationRepo,
		container.User,
		reportingOpts...,
	)

	container.Token = NewTokenService(cfg, container.User)
	container.GoogleOAuth = NewGoogleOAuthHandlerService(cfg)

	return container
}
