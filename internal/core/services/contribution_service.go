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

// contributionService records contribution entries and serves their rollups.
// Member self-service contributions start pending and settle through the
// approval workflow; admin-entered contributions settle immediately.
type contributionService struct {
	BaseService
	ledgerRepo    portsrepo.LedgerRepositoryFacade
	reportingRepo portsrepo.ReportingRepository
	notifier      portssvc.NotificationDispatcher
}

// NewContributionService creates a new ContributionService.
func NewContributionService(
	ledgerRepo portsrepo.LedgerRepositoryFacade,
	reportingRepo portsrepo.ReportingRepository,
	userSvc portssvc.UserReaderSvc,
	notifier portssvc.NotificationDispatcher,
) portssvc.ContributionSvcFacade {
	return &contributionService{
		BaseService:   BaseService{Users: userSvc},
		ledgerRepo:    ledgerRepo,
		reportingRepo: reportingRepo,
		notifier:      notifier,
	}
}

// Ensure contributionService implements the portssvc.ContributionSvcFacade interface
var _ portssvc.ContributionSvcFacade = (*contributionService)(nil)

// buildContribution assembles a contribution ledger entry from a request.
func buildContribution(memberID string, req dto.RecordContributionRequest, status domain.EntryStatus, creatorUserID string) (*domain.LedgerEntry, error) {
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: contribution amount must be positive, got %s", apperrors.ErrValidation, req.Amount)
	}

	ctype := domain.ContributionType(req.Type)
	if ctype == "" {
		ctype = domain.ContributionRegular
	}
	if !domain.ValidContributionType(ctype) {
		return nil, fmt.Errorf("%w: unknown contribution type %q", apperrors.ErrValidation, req.Type)
	}
	method := domain.PaymentMethod(req.PaymentMethod)
	if method == "" {
		method = domain.PaymentCash
	}
	if !domain.ValidPaymentMethod(method) {
		return nil, fmt.Errorf("%w: unknown payment method %q", apperrors.ErrValidation, req.PaymentMethod)
	}

	now := time.Now().UTC()
	entryDate := now
	if req.EntryDate != nil {
		entryDate = req.EntryDate.UTC()
	}

	entry := domain.LedgerEntry{
		EntryID:          uuid.NewString(),
		MemberID:         memberID,
		Kind:             domain.KindContribution,
		ContributionType: ctype,
		Amount:           domain.RoundMoney(req.Amount),
		Status:           status,
		EntryDate:        entryDate,
		PaymentMethod:    method,
		Reference:        req.Reference,
		Notes:            req.Notes,
		AuditFields:      domain.NewAuditFields(creatorUserID, now),
	}
	return &entry, nil
}

// RecordContribution records a member's own contribution, pending approval.
// Implements portssvc.ContributionWriterSvc
func (s *contributionService) RecordContribution(ctx context.Context, memberID string, req dto.RecordContributionRequest) (*domain.LedgerEntry, error) {
	logger := s.GetLogger(ctx)

	member, err := s.Users.GetUserByID(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to load member %s: %w", memberID, err)
	}
	if !member.IsActive() {
		return nil, fmt.Errorf("%w: inactive members cannot record contributions", apperrors.ErrForbidden)
	}

	entry, err := buildContribution(memberID, req, domain.StatusPending, memberID)
	if err != nil {
		return nil, err
	}

	if err := s.ledgerRepo.SaveEntry(ctx, *entry); err != nil {
		logger.Error("failed to save contribution", slog.String("error", err.Error()), slog.String("member_id", memberID))
		return nil, fmt.Errorf("failed to save contribution: %w", err)
	}

	logger.Info("contribution recorded",
		slog.String("entry_id", entry.EntryID),
		slog.String("member_id", memberID),
		slog.String("amount", entry.Amount.String()))

	return entry, nil
}

// AddContribution records a settled contribution on behalf of a member. Admin only.
// Implements portssvc.ContributionWriterSvc
func (s *contributionService) AddContribution(ctx context.Context, req dto.AddContributionRequest, creatorUserID string) (*domain.LedgerEntry, error) {
	logger := s.GetLogger(ctx)

	admin, err := s.RequireAdmin(ctx, creatorUserID)
	if err != nil {
		return nil, err
	}
	member, err := s.Users.GetUserByID(ctx, req.MemberID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: member %s does not exist", apperrors.ErrValidation, req.MemberID)
		}
		return nil, fmt.Errorf("failed to load member %s: %w", req.MemberID, err)
	}

	entry, err := buildContribution(member.UserID, req.RecordContributionRequest, domain.StatusCompleted, creatorUserID)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	entry.ApprovedBy = &admin.UserID
	entry.ApprovedAt = &now

	if err := s.ledgerRepo.SaveEntry(ctx, *entry); err != nil {
		logger.Error("failed to save contribution", slog.String("error", err.Error()), slog.String("member_id", member.UserID))
		return nil, fmt.Errorf("failed to save contribution: %w", err)
	}

	logger.Info("contribution added by admin",
		slog.String("entry_id", entry.EntryID),
		slog.String("member_id", member.UserID),
		slog.String("created_by", creatorUserID))

	s.notifier.Notify(ctx, domain.Notification{
		RecipientID: member.UserID,
		SenderID:    &creatorUserID,
		Type:        domain.NotifyContributionReceived,
		Title:       "Contribution received",
		Message:     fmt.Sprintf("Your contribution of %s was recorded", entry.Amount),
		Priority:    domain.PriorityMedium,
	})

	return entry, nil
}

// GetContributionByID retrieves a single contribution entry.
// Implements portssvc.ContributionReaderSvc
func (s *contributionService) GetContributionByID(ctx context.Context, contributionID string, requestingUserID string) (*domain.LedgerEntry, error) {
	entry, err := s.ledgerRepo.FindEntryByID(ctx, contributionID)
	if err != nil {
		return nil, fmt.Errorf("failed to find contribution %s: %w", contributionID, err)
	}
	if entry.Kind != domain.KindContribution {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("contribution %s not found", contributionID))
	}
	if err := s.RequireOwnerOrAdmin(ctx, requestingUserID, entry.MemberID); err != nil {
		return nil, err
	}
	return entry, nil
}

// ListContributions retrieves a filtered page of contributions. Admin only.
// Implements portssvc.ContributionReaderSvc
func (s *contributionService) ListContributions(ctx context.Context, requestingUserID string, params dto.ListContributionsParams) (*dto.ListContributionsResponse, error) {
	if _, err := s.RequireAdmin(ctx, requestingUserID); err != nil {
		return nil, err
	}

	kind := domain.KindContribution
	filter := portsrepo.LedgerEntryFilter{Kind: &kind, MemberID: params.MemberID}
	if params.Status != nil {
		st := domain.EntryStatus(*params.Status)
		switch st {
		case domain.StatusPending, domain.StatusApproved, domain.StatusRejected, domain.StatusCompleted:
			filter.Status = &st
		default:
			return nil, fmt.Errorf("%w: unknown status %q", apperrors.ErrValidation, *params.Status)
		}
	}

	entries, nextToken, err := s.ledgerRepo.ListEntries(ctx, clampLimit(params.Limit), params.NextToken, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list contributions: %w", err)
	}
	resp := dto.ToListContributionsResponse(entries, nextToken)
	return &resp, nil
}

// ListMemberContributions retrieves a member's own contributions.
// Implements portssvc.ContributionReaderSvc
func (s *contributionService) ListMemberContributions(ctx context.Context, memberID string, params dto.ListContributionsParams) (*dto.ListContributionsResponse, error) {
	entries, nextToken, err := s.ledgerRepo.ListContributionsByMember(ctx, memberID, clampLimit(params.Limit), params.NextToken)
	if err != nil {
		return nil, fmt.Errorf("failed to list contributions for member %s: %w", memberID, err)
	}
	resp := dto.ToListContributionsResponse(entries, nextToken)
	return &resp, nil
}

// GetMemberTotal sums a member's settled contributions. An empty contribution
// history yields zero, not an error.
// Implements portssvc.ContributionReaderSvc
func (s *contributionService) GetMemberTotal(ctx context.Context, memberID string, requestingUserID string) (decimal.Decimal, error) {
	if err := s.RequireOwnerOrAdmin(ctx, requestingUserID, memberID); err != nil {
		return decimal.Zero, err
	}
	total, err := s.ledgerRepo.SumContributionsByMember(ctx, memberID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum contributions for member %s: %w", memberID, err)
	}
	return total, nil
}

// GetContributionStats retrieves aggregate contribution figures. Admin only.
// Implements portssvc.ContributionReaderSvc
func (s *contributionService) GetContributionStats(ctx context.Context, requestingUserID string) (*domain.ContributionStats, error) {
	if _, err := s.RequireAdmin(ctx, requestingUserID); err != nil {
		return nil, err
	}
	stats, err := s.reportingRepo.GetContributionStats(ctx, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate contribution stats: %w", err)
	}
	return stats, nil
}

// UpdateContribution amends a pending contribution.
// Implements portssvc.ContributionWriterSvc
func (s *contributionService) UpdateContribution(ctx context.Context, contributionID string, req dto.UpdateContributionRequest, requestingUserID string) (*domain.LedgerEntry, error) {
	entry, err := s.ledgerRepo.FindEntryByID(ctx, contributionID)
	if err != nil {
		return nil, fmt.Errorf("failed to find contribution %s: %w", contributionID, err)
	}
	if entry.Kind != domain.KindContribution {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("contribution %s not found", contributionID))
	}
	if err := s.RequireOwnerOrAdmin(ctx, requestingUserID, entry.MemberID); err != nil {
		return nil, err
	}
	if entry.Status != domain.StatusPending {
		return nil, fmt.Errorf("%w: contribution is %s, only %s contributions can be edited", apperrors.ErrInvalidState, entry.Status, domain.StatusPending)
	}

	if req.Amount != nil {
		if req.Amount.LessThanOrEqual(decimal.Zero) {
			return nil, fmt.Errorf("%w: contribution amount must be positive, got %s", apperrors.ErrValidation, *req.Amount)
		}
		entry.Amount = domain.RoundMoney(*req.Amount)
	}
	if req.Type != nil {
		ctype := domain.ContributionType(*req.Type)
		if !domain.ValidContributionType(ctype) {
			return nil, fmt.Errorf("%w: unknown contribution type %q", apperrors.ErrValidation, *req.Type)
		}
		entry.ContributionType = ctype
	}
	if req.PaymentMethod != nil {
		method := domain.PaymentMethod(*req.PaymentMethod)
		if !domain.ValidPaymentMethod(method) {
			return nil, fmt.Errorf("%w: unknown payment method %q", apperrors.ErrValidation, *req.PaymentMethod)
		}
		entry.PaymentMethod = method
	}
	if req.Reference != nil {
		entry.Reference = *req.Reference
	}
	if req.Notes != nil {
		entry.Notes = *req.Notes
	}
	if req.EntryDate != nil {
		entry.EntryDate = req.EntryDate.UTC()
	}
	entry.Touch(requestingUserID, time.Now().UTC())

	if err := s.ledgerRepo.UpdateEntry(ctx, *entry); err != nil {
		return nil, fmt.Errorf("failed to update contribution %s: %w", contributionID, err)
	}
	return entry, nil
}

// DeleteContribution soft-deletes a pending contribution.
// Implements portssvc.ContributionWriterSvc
func (s *contributionService) DeleteContribution(ctx context.Context, contributionID string, requestingUserID string) error {
	entry, err := s.ledgerRepo.FindEntryByID(ctx, contributionID)
	if err != nil {
		return fmt.Errorf("failed to find contribution %s: %w", contributionID, err)
	}
	if entry.Kind != domain.KindContribution {
		return apperrors.NewNotFoundError(fmt.Sprintf("contribution %s not found", contributionID))
	}
	if err := s.RequireOwnerOrAdmin(ctx, requestingUserID, entry.MemberID); err != nil {
		return err
	}
	if entry.Status != domain.StatusPending {
		return fmt.Errorf("%w: contribution is %s, only %s contributions can be deleted", apperrors.ErrInvalidState, entry.Status, domain.StatusPending)
	}

	now := time.Now().UTC()
	if err := s.ledgerRepo.MarkEntryDeleted(ctx, contributionID, now, requestingUserID); err != nil {
		return fmt.Errorf("failed to delete contribution %s: %w", contributionID, err)
	}
	s.LogInfo(ctx, "contribution deleted", slog.String("entry_id", contributionID), slog.String("deleted_by", requestingUserID))
	return nil
}
