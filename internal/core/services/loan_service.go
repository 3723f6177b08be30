package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/smart-chama/chama_backend/internal/apperrors"
	"github.com/smart-chama/chama_backend/internal/core/domain"
	portsrepo "github.com/smart-chama/chama_backend/internal/core/ports/repositories"
	portssvc "github.com/smart-chama/chama_backend/internal/core/ports/services"
	"github.com/smart-chama/chama_backend/internal/dto"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// clampLimit normalizes a caller-supplied page size.
func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}

// loanService owns the loan economics and the loan approval state machine.
// Every code path that mutates a loan balance goes through here, and balance
// updates themselves are delegated to the repository so they happen under a
// row lock.
type loanService struct {
	BaseService
	loanRepo      portsrepo.LoanRepositoryFacade
	contribRepo   portsrepo.ContributionReader
	reportingRepo portsrepo.ReportingRepository
	settingsSvc   portssvc.SettingsSvcFacade
	notifier      portssvc.NotificationDispatcher
}

// NewLoanService creates a new LoanService.
func NewLoanService(
	loanRepo portsrepo.LoanRepositoryFacade,
	contribRepo portsrepo.ContributionReader,
	reportingRepo portsrepo.ReportingRepository,
	userSvc portssvc.UserReaderSvc,
	settingsSvc portssvc.SettingsSvcFacade,
	notifier portssvc.NotificationDispatcher,
) portssvc.LoanSvcFacade {
	return &loanService{
		BaseService:   BaseService{Users: userSvc},
		loanRepo:      loanRepo,
		contribRepo:   contribRepo,
		reportingRepo: reportingRepo,
		settingsSvc:   settingsSvc,
		notifier:      notifier,
	}
}

// Ensure loanService implements the portssvc.LoanSvcFacade interface
var _ portssvc.LoanSvcFacade = (*loanService)(nil)

// buildLoan assembles a pending loan and its paired ledger entry from an
// application, applying the chama settings for defaults and caps.
func (s *loanService) buildLoan(ctx context.Context, memberID string, principal decimal.Decimal, durationMonths int, purpose string, rateOverride *decimal.Decimal, creatorUserID string) (*domain.Loan, *domain.LedgerEntry, error) {
	settings, err := s.settingsSvc.GetSettings(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load settings for loan application: %w", err)
	}

	rate := settings.DefaultInterestRate
	if rateOverride != nil {
		rate = *rateOverride
	}

	now := time.Now().UTC()
	loan := domain.Loan{
		LoanID:         uuid.NewString(),
		MemberID:       memberID,
		Principal:      principal,
		InterestRate:   rate,
		DurationMonths: durationMonths,
		Purpose:        purpose,
		Status:         domain.LoanPending,
		Version:        1,
		AuditFields:    domain.NewAuditFields(creatorUserID, now),
	}
	if err := loan.Validate(settings.MaxLoanDurationMonths); err != nil {
		return nil, nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err)
	}

	// Principal is capped at a multiple of the member's settled contributions.
	if settings.LoanMultiplier.IsPositive() {
		contributed, err := s.contribRepo.SumContributionsByMember(ctx, memberID)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to sum contributions for loan cap: %w", err)
		}
		maxPrincipal := contributed.Mul(settings.LoanMultiplier)
		if loan.Principal.GreaterThan(maxPrincipal) {
			return nil, nil, fmt.Errorf("%w: principal %s exceeds the allowed %s (%sx of contributions %s)",
				apperrors.ErrValidation, loan.Principal, maxPrincipal, settings.LoanMultiplier, contributed)
		}
	}

	loan.ComputeDerived()

	entry := domain.LedgerEntry{
		EntryID:     loan.LoanID,
		MemberID:    memberID,
		Kind:        domain.KindLoan,
		Amount:      loan.Principal,
		Status:      domain.StatusPending,
		EntryDate:   now,
		AuditFields: loan.AuditFields,
	}
	return &loan, &entry, nil
}

// ApplyForLoan creates a pending loan application for the calling member.
// Implements portssvc.LoanWriterSvc
func (s *loanService) ApplyForLoan(ctx context.Context, memberID string, req dto.ApplyLoanRequest) (*domain.Loan, error) {
	logger := s.GetLogger(ctx)

	member, err := s.Users.GetUserByID(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to load applicant %s: %w", memberID, err)
	}
	if !member.IsActive() {
		return nil, fmt.Errorf("%w: inactive members cannot apply for loans", apperrors.ErrForbidden)
	}

	loan, entry, err := s.buildLoan(ctx, memberID, req.Amount, req.DurationMonths, req.Purpose, req.InterestRate, memberID)
	if err != nil {
		return nil, err
	}

	if err := s.loanRepo.SaveLoan(ctx, *loan, *entry); err != nil {
		logger.Error("failed to save loan application", slog.String("error", err.Error()), slog.String("member_id", memberID))
		return nil, fmt.Errorf("failed to save loan application: %w", err)
	}

	logger.Info("loan application created",
		slog.String("loan_id", loan.LoanID),
		slog.String("member_id", memberID),
		slog.String("principal", loan.Principal.String()))

	s.notifyAdmins(ctx, domain.Notification{
		SenderID: &memberID,
		Type:     domain.NotifyLoanRequest,
		Title:    "New loan application",
		Message:  fmt.Sprintf("%s applied for a loan of %s over %d months", member.Name, loan.Principal, loan.DurationMonths),
		Priority: domain.PriorityHigh,
	})

	return loan, nil
}

// CreateLoan records a loan on behalf of a member. Admin only.
// Implements portssvc.LoanWriterSvc
func (s *loanService) CreateLoan(ctx context.Context, req dto.CreateLoanRequest, creatorUserID string) (*domain.Loan, error) {
	logger := s.GetLogger(ctx)

	if _, err := s.RequireAdmin(ctx, creatorUserID); err != nil {
		return nil, err
	}
	member, err := s.Users.GetUserByID(ctx, req.MemberID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: member %s does not exist", apperrors.ErrValidation, req.MemberID)
		}
		return nil, fmt.Errorf("failed to load member %s: %w", req.MemberID, err)
	}

	loan, entry, err := s.buildLoan(ctx, member.UserID, req.Amount, req.DurationMonths, req.Purpose, req.InterestRate, creatorUserID)
	if err != nil {
		return nil, err
	}

	if err := s.loanRepo.SaveLoan(ctx, *loan, *entry); err != nil {
		logger.Error("failed to save loan", slog.String("error", err.Error()), slog.String("member_id", member.UserID))
		return nil, fmt.Errorf("failed to save loan: %w", err)
	}

	logger.Info("loan recorded for member",
		slog.String("loan_id", loan.LoanID),
		slog.String("member_id", member.UserID),
		slog.String("created_by", creatorUserID))

	s.notifier.Notify(ctx, domain.Notification{
		RecipientID: member.UserID,
		SenderID:    &creatorUserID,
		Type:        domain.NotifyLoanRequest,
		Title:       "Loan application recorded",
		Message:     fmt.Sprintf("A loan application of %s over %d months was recorded on your behalf", loan.Principal, loan.DurationMonths),
		Priority:    domain.PriorityMedium,
	})

	return loan, nil
}

// GetLoanByID retrieves a loan with its repayments.
// Implements portssvc.LoanReaderSvc
func (s *loanService) GetLoanByID(ctx context.Context, loanID string, requestingUserID string) (*domain.Loan, error) {
	loan, err := s.loanRepo.FindLoanByID(ctx, loanID)
	if err != nil {
		return nil, fmt.Errorf("failed to find loan %s: %w", loanID, err)
	}
	if err := s.RequireOwnerOrAdmin(ctx, requestingUserID, loan.MemberID); err != nil {
		return nil, err
	}

	repayments, err := s.loanRepo.FindRepaymentsByLoanID(ctx, loanID)
	if err != nil {
		s.LogError(ctx, err, "failed to fetch repayments for loan", slog.String("loan_id", loanID))
		return nil, fmt.Errorf("failed to fetch repayments for loan %s: %w", loanID, apperrors.ErrInternal)
	}
	loan.Repayments = repayments
	return loan, nil
}

// ListLoans retrieves a paginated list of all loans. Admin only.
// Implements portssvc.LoanReaderSvc
func (s *loanService) ListLoans(ctx context.Context, requestingUserID string, params dto.ListLoansParams) (*dto.ListLoansResponse, error) {
	if _, err := s.RequireAdmin(ctx, requestingUserID); err != nil {
		return nil, err
	}

	var status *domain.LoanStatus
	if params.Status != nil {
		st := domain.LoanStatus(*params.Status)
		switch st {
		case domain.LoanPending, domain.LoanApproved, domain.LoanRejected, domain.LoanCompleted:
			status = &st
		default:
			return nil, fmt.Errorf("%w: unknown loan status %q", apperrors.ErrValidation, *params.Status)
		}
	}

	loans, nextToken, err := s.loanRepo.ListLoans(ctx, clampLimit(params.Limit), params.NextToken, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list loans: %w", err)
	}
	resp := dto.ToListLoansResponse(loans, nextToken)
	return &resp, nil
}

// ListMemberLoans retrieves a member's own loans.
// Implements portssvc.LoanReaderSvc
func (s *loanService) ListMemberLoans(ctx context.Context, memberID string, params dto.ListLoansParams) (*dto.ListLoansResponse, error) {
	loans, nextToken, err := s.loanRepo.ListLoansByMember(ctx, memberID, clampLimit(params.Limit), params.NextToken)
	if err != nil {
		return nil, fmt.Errorf("failed to list loans for member %s: %w", memberID, err)
	}
	resp := dto.ToListLoansResponse(loans, nextToken)
	return &resp, nil
}

// GetLoanStats retrieves aggregate loan figures. Admin only.
// Implements portssvc.LoanReaderSvc
func (s *loanService) GetLoanStats(ctx context.Context, requestingUserID string) (*domain.LoanStats, error) {
	if _, err := s.RequireAdmin(ctx, requestingUserID); err != nil {
		return nil, err
	}
	stats, err := s.reportingRepo.GetLoanStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate loan stats: %w", err)
	}
	return stats, nil
}

// ApproveLoan transitions a pending loan to approved. Admin only.
// Implements portssvc.LoanApprovalSvc
func (s *loanService) ApproveLoan(ctx context.Context, loanID string, approverID string) (*domain.Loan, error) {
	logger := s.GetLogger(ctx)

	if _, err := s.RequireAdmin(ctx, approverID); err != nil {
		return nil, err
	}
	loan, err := s.loanRepo.FindLoanByID(ctx, loanID)
	if err != nil {
		return nil, fmt.Errorf("failed to find loan %s: %w", loanID, err)
	}
	if loan.Status != domain.LoanPending {
		return nil, fmt.Errorf("%w: loan is %s, approval is only valid from %s", apperrors.ErrInvalidState, loan.Status, domain.LoanPending)
	}

	now := time.Now().UTC()
	loan.Status = domain.LoanApproved
	loan.ApprovedBy = &approverID
	loan.ApprovedAt = &now
	loan.Touch(approverID, now)

	if err := s.loanRepo.UpdateLoanStatus(ctx, *loan); err != nil {
		logger.Error("failed to approve loan", slog.String("error", err.Error()), slog.String("loan_id", loanID))
		return nil, fmt.Errorf("failed to approve loan %s: %w", loanID, err)
	}

	logger.Info("loan approved", slog.String("loan_id", loanID), slog.String("approved_by", approverID))

	s.notifier.Notify(ctx, domain.Notification{
		RecipientID: loan.MemberID,
		SenderID:    &approverID,
		Type:        domain.NotifyLoanApproved,
		Title:       "Loan approved",
		Message:     fmt.Sprintf("Your loan of %s was approved; repay %s monthly over %d months", loan.Principal, loan.MonthlyInstallment, loan.DurationMonths),
		Priority:    domain.PriorityHigh,
	})

	return loan, nil
}

// RejectLoan transitions a pending loan to rejected. Admin only.
// Implements portssvc.LoanApprovalSvc
func (s *loanService) RejectLoan(ctx context.Context, loanID string, approverID string, reason string) (*domain.Loan, error) {
	logger := s.GetLogger(ctx)

	if _, err := s.RequireAdmin(ctx, approverID); err != nil {
		return nil, err
	}
	if reason == "" {
		return nil, fmt.Errorf("%w: rejection reason is required", apperrors.ErrValidation)
	}
	loan, err := s.loanRepo.FindLoanByID(ctx, loanID)
	if err != nil {
		return nil, fmt.Errorf("failed to find loan %s: %w", loanID, err)
	}
	if loan.Status != domain.LoanPending {
		return nil, fmt.Errorf("%w: loan is %s, rejection is only valid from %s", apperrors.ErrInvalidState, loan.Status, domain.LoanPending)
	}

	now := time.Now().UTC()
	loan.Status = domain.LoanRejected
	loan.RejectedBy = &approverID
	loan.RejectedAt = &now
	loan.RejectionReason = &reason
	loan.Touch(approverID, now)

	if err := s.loanRepo.UpdateLoanStatus(ctx, *loan); err != nil {
		logger.Error("failed to reject loan", slog.String("error", err.Error()), slog.String("loan_id", loanID))
		return nil, fmt.Errorf("failed to reject loan %s: %w", loanID, err)
	}

	logger.Info("loan rejected", slog.String("loan_id", loanID), slog.String("rejected_by", approverID))

	s.notifier.Notify(ctx, domain.Notification{
		RecipientID: loan.MemberID,
		SenderID:    &approverID,
		Type:        domain.NotifyLoanRejected,
		Title:       "Loan rejected",
		Message:     fmt.Sprintf("Your loan application of %s was rejected: %s", loan.Principal, reason),
		Priority:    domain.PriorityHigh,
	})

	return loan, nil
}

// RecordRepayment appends a repayment to an approved loan. The balance update
// happens in the repository under a row lock, so concurrent repayments
// against the same loan serialize instead of losing updates.
// Implements portssvc.LoanRepaymentSvc
func (s *loanService) RecordRepayment(ctx context.Context, loanID string, req dto.RecordRepaymentRequest, requestingUserID string) (*domain.Loan, error) {
	logger := s.GetLogger(ctx)

	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: repayment amount must be positive, got %s", apperrors.ErrValidation, req.Amount)
	}
	method := domain.PaymentMethod(req.PaymentMethod)
	if method == "" {
		method = domain.PaymentCash
	}
	if !domain.ValidPaymentMethod(method) {
		return nil, fmt.Errorf("%w: unknown payment method %q", apperrors.ErrValidation, req.PaymentMethod)
	}

	loan, err := s.loanRepo.FindLoanByID(ctx, loanID)
	if err != nil {
		return nil, fmt.Errorf("failed to find loan %s: %w", loanID, err)
	}
	if err := s.RequireOwnerOrAdmin(ctx, requestingUserID, loan.MemberID); err != nil {
		return nil, err
	}
	// Early check for a friendly error; the repository re-checks under the
	// row lock, which is the authoritative one.
	if !loan.IsRepayable() {
		return nil, fmt.Errorf("%w: loan is %s, repayments require %s", apperrors.ErrInvalidState, loan.Status, domain.LoanApproved)
	}

	now := time.Now().UTC()
	repayment := domain.Repayment{
		RepaymentID:   uuid.NewString(),
		LoanID:        loanID,
		Amount:        domain.RoundMoney(req.Amount),
		PaymentMethod: method,
		Reference:     req.Reference,
		Status:        domain.RepaymentCompleted,
		PaidAt:        now,
		AuditFields:   domain.NewAuditFields(requestingUserID, now),
	}

	updated, err := s.loanRepo.RecordRepayment(ctx, loanID, repayment)
	if err != nil {
		logger.Error("failed to record repayment", slog.String("error", err.Error()), slog.String("loan_id", loanID))
		return nil, fmt.Errorf("failed to record repayment on loan %s: %w", loanID, err)
	}

	logger.Info("repayment recorded",
		slog.String("loan_id", loanID),
		slog.String("amount", repayment.Amount.String()),
		slog.String("balance", updated.Balance.String()))

	notification := domain.Notification{
		RecipientID: updated.MemberID,
		Type:        domain.NotifyLoanPaymentReceived,
		Title:       "Loan payment received",
		Message:     fmt.Sprintf("Payment of %s received; outstanding balance is %s", repayment.Amount, updated.Balance),
		Priority:    domain.PriorityMedium,
	}
	if updated.Status == domain.LoanCompleted {
		notification.Title = "Loan fully repaid"
		notification.Message = fmt.Sprintf("Payment of %s received; your loan of %s is now fully repaid", repayment.Amount, updated.Principal)
	}
	s.notifier.Notify(ctx, notification)

	return updated, nil
}

// UpdateLoan amends a pending loan application and recomputes its figures.
// Implements portssvc.LoanWriterSvc
func (s *loanService) UpdateLoan(ctx context.Context, loanID string, req dto.UpdateLoanRequest, requestingUserID string) (*domain.Loan, error) {
	loan, err := s.loanRepo.FindLoanByID(ctx, loanID)
	if err != nil {
		return nil, fmt.Errorf("failed to find loan %s: %w", loanID, err)
	}
	if err := s.RequireOwnerOrAdmin(ctx, requestingUserID, loan.MemberID); err != nil {
		return nil, err
	}
	if loan.Status != domain.LoanPending {
		return nil, fmt.Errorf("%w: loan is %s, only %s loans can be edited", apperrors.ErrInvalidState, loan.Status, domain.LoanPending)
	}

	if req.Amount != nil {
		loan.Principal = *req.Amount
	}
	if req.DurationMonths != nil {
		loan.DurationMonths = *req.DurationMonths
	}
	if req.Purpose != nil {
		loan.Purpose = *req.Purpose
	}
	if req.InterestRate != nil {
		loan.InterestRate = *req.InterestRate
	}

	settings, err := s.settingsSvc.GetSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings for loan update: %w", err)
	}
	if err := loan.Validate(settings.MaxLoanDurationMonths); err != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err)
	}
	loan.ComputeDerived()
	loan.Touch(requestingUserID, time.Now().UTC())

	if err := s.loanRepo.UpdateLoan(ctx, *loan); err != nil {
		return nil, fmt.Errorf("failed to update loan %s: %w", loanID, err)
	}
	return loan, nil
}

// DeleteLoan soft-deletes a pending loan application.
// Implements portssvc.LoanWriterSvc
func (s *loanService) DeleteLoan(ctx context.Context, loanID string, requestingUserID string) error {
	loan, err := s.loanRepo.FindLoanByID(ctx, loanID)
	if err != nil {
		return fmt.Errorf("failed to find loan %s: %w", loanID, err)
	}
	if err := s.RequireOwnerOrAdmin(ctx, requestingUserID, loan.MemberID); err != nil {
		return err
	}
	if loan.Status != domain.LoanPending {
		return fmt.Errorf("%w: loan is %s, only %s loans can be deleted", apperrors.ErrInvalidState, loan.Status, domain.LoanPending)
	}

	now := time.Now().UTC()
	if err := s.loanRepo.MarkLoanDeleted(ctx, loanID, now, requestingUserID); err != nil {
		return fmt.Errorf("failed to delete loan %s: %w", loanID, err)
	}
	s.LogInfo(ctx, "loan deleted", slog.String("loan_id", loanID), slog.String("deleted_by", requestingUserID))
	return nil
}

// notifyAdmins fans a notification out to every active admin. Failures to
// resolve the admin list are logged and swallowed like any other
// notification failure.
func (s *loanService) notifyAdmins(ctx context.Context, notification domain.Notification) {
	admins, err := s.Users.ListAdmins(ctx)
	if err != nil {
		s.LogError(ctx, err, "failed to list admins for notification")
		return
	}
	ids := make([]string, len(admins))
	for i, a := range admins {
		ids[i] = a.UserID
	}
	s.notifier.NotifyAll(ctx, ids, notification)
}
