package services

import (
	"context"
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

// entryDateLayout is the wire format for date filters.
const entryDateLayout = "2006-01-02"

// ledgerService owns the unified ledger and the shared approval workflow.
// Loan entries are the one exception: their lifecycle is driven through the
// loan service so the loan economics stay in step, and the workflow here
// refuses to transition them directly.
type ledgerService struct {
	BaseService
	ledgerRepo portsrepo.LedgerRepositoryFacade
	notifier   portssvc.NotificationDispatcher
}

// NewLedgerService creates a new LedgerService.
func NewLedgerService(
	ledgerRepo portsrepo.LedgerRepositoryFacade,
	userSvc portssvc.UserReaderSvc,
	notifier portssvc.NotificationDispatcher,
) portssvc.LedgerSvcFacade {
	return &ledgerService{
		BaseService: BaseService{Users: userSvc},
		ledgerRepo:  ledgerRepo,
		notifier:    notifier,
	}
}

// Ensure ledgerService implements the portssvc.LedgerSvcFacade interface
var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

// CreateTransaction records a general ledger transaction. Admin only.
// Implements portssvc.LedgerWriterSvc
func (s *ledgerService) CreateTransaction(ctx context.Context, req dto.CreateTransactionRequest, creatorUserID string) (*domain.LedgerEntry, error) {
	logger := s.GetLogger(ctx)

	if _, err := s.RequireAdmin(ctx, creatorUserID); err != nil {
		return nil, err
	}

	kind := domain.EntryKind(req.Kind)
	if !domain.ValidEntryKind(kind) {
		return nil, fmt.Errorf("%w: unknown entry kind %q", apperrors.ErrValidation, req.Kind)
	}
	// Contributions and loans have dedicated entry points that maintain
	// their extra invariants.
	if kind == domain.KindContribution || kind == domain.KindLoan {
		return nil, fmt.Errorf("%w: %s entries must be created through their own endpoints", apperrors.ErrValidation, kind)
	}
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: amount must be positive, got %s", apperrors.ErrValidation, req.Amount)
	}
	method := domain.PaymentMethod(req.PaymentMethod)
	if method == "" {
		method = domain.PaymentCash
	}
	if !domain.ValidPaymentMethod(method) {
		return nil, fmt.Errorf("%w: unknown payment method %q", apperrors.ErrValidation, req.PaymentMethod)
	}

	if _, err := s.Users.GetUserByID(ctx, req.MemberID); err != nil {
		return nil, fmt.Errorf("%w: member %s does not exist", apperrors.ErrValidation, req.MemberID)
	}

	now := time.Now().UTC()
	entryDate := now
	if req.EntryDate != nil {
		entryDate = req.EntryDate.UTC()
	}

	entry := domain.LedgerEntry{
		EntryID:       uuid.NewString(),
		MemberID:      req.MemberID,
		Kind:          kind,
		Amount:        domain.RoundMoney(req.Amount),
		Status:        domain.StatusPending,
		EntryDate:     entryDate,
		PaymentMethod: method,
		Reference:     req.Reference,
		Notes:         req.Notes,
		AuditFields:   domain.NewAuditFields(creatorUserID, now),
	}

	if err := s.ledgerRepo.SaveEntry(ctx, entry); err != nil {
		logger.Error("failed to save ledger entry", slog.String("error", err.Error()), slog.String("kind", string(kind)))
		return nil, fmt.Errorf("failed to save ledger entry: %w", err)
	}

	logger.Info("ledger entry created",
		slog.String("entry_id", entry.EntryID),
		slog.String("kind", string(kind)),
		slog.String("amount", entry.Amount.String()))

	return &entry, nil
}

// GetEntryByID retrieves a ledger entry.
// Implements portssvc.LedgerReaderSvc
func (s *ledgerService) GetEntryByID(ctx context.Context, entryID string, requestingUserID string) (*domain.LedgerEntry, error) {
	entry, err := s.ledgerRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to find ledger entry %s: %w", entryID, err)
	}
	if err := s.RequireOwnerOrAdmin(ctx, requestingUserID, entry.MemberID); err != nil {
		return nil, err
	}
	return entry, nil
}

// ListEntries retrieves a filtered, paginated list of ledger entries. Admin only.
// Implements portssvc.LedgerReaderSvc
func (s *ledgerService) ListEntries(ctx context.Context, requestingUserID string, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error) {
	if _, err := s.RequireAdmin(ctx, requestingUserID); err != nil {
		return nil, err
	}

	filter := portsrepo.LedgerEntryFilter{MemberID: params.MemberID}
	if params.Kind != nil {
		kind := domain.EntryKind(*params.Kind)
		if !domain.ValidEntryKind(kind) {
			return nil, fmt.Errorf("%w: unknown entry kind %q", apperrors.ErrValidation, *params.Kind)
		}
		filter.Kind = &kind
	}
	if params.Status != nil {
		st := domain.EntryStatus(*params.Status)
		switch st {
		case domain.StatusPending, domain.StatusApproved, domain.StatusRejected, domain.StatusCompleted:
			filter.Status = &st
		default:
			return nil, fmt.Errorf("%w: unknown status %q", apperrors.ErrValidation, *params.Status)
		}
	}
	if params.StartDate != nil {
		from, err := time.Parse(entryDateLayout, *params.StartDate)
		if err != nil {
			return nil, fmt.Errorf("%w: startDate must be YYYY-MM-DD", apperrors.ErrValidation)
		}
		filter.FromDate = &from
	}
	if params.EndDate != nil {
		to, err := time.Parse(entryDateLayout, *params.EndDate)
		if err != nil {
			return nil, fmt.Errorf("%w: endDate must be YYYY-MM-DD", apperrors.ErrValidation)
		}
		// Make the end date inclusive of the whole day.
		to = to.AddDate(0, 0, 1)
		filter.ToDate = &to
	}

	entries, nextToken, err := s.ledgerRepo.ListEntries(ctx, clampLimit(params.Limit), params.NextToken, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger entries: %w", err)
	}
	resp := dto.ToListEntriesResponse(entries, nextToken)
	return &resp, nil
}

// transition loads an entry, enforces the workflow, and persists the change.
func (s *ledgerService) transition(ctx context.Context, entryID string, target domain.EntryStatus, actorID string, reason *string) (*domain.LedgerEntry, error) {
	logger := s.GetLogger(ctx)

	admin, err := s.RequireAdmin(ctx, actorID)
	if err != nil {
		return nil, err
	}
	entry, err := s.ledgerRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to find ledger entry %s: %w", entryID, err)
	}
	if entry.Kind == domain.KindLoan {
		return nil, fmt.Errorf("%w: loan entries transition through the loan endpoints", apperrors.ErrValidation)
	}
	if !entry.CanTransitionTo(target) {
		return nil, fmt.Errorf("%w: entry is %s, cannot transition to %s", apperrors.ErrInvalidState, entry.Status, target)
	}

	now := time.Now().UTC()
	entry.Status = target
	entry.Touch(actorID, now)
	var approverID *string
	if target == domain.StatusApproved || target == domain.StatusCompleted {
		approverID = &admin.UserID
		entry.ApprovedBy = approverID
		entry.ApprovedAt = &now
	}
	if target == domain.StatusRejected {
		entry.RejectionReason = reason
	}

	if err := s.ledgerRepo.UpdateEntryStatus(ctx, entryID, target, approverID, reason, actorID, now); err != nil {
		logger.Error("failed to transition ledger entry", slog.String("error", err.Error()), slog.String("entry_id", entryID), slog.String("target", string(target)))
		return nil, fmt.Errorf("failed to transition ledger entry %s to %s: %w", entryID, target, err)
	}

	logger.Info("ledger entry transitioned",
		slog.String("entry_id", entryID),
		slog.String("status", string(target)),
		slog.String("actor", actorID))

	return entry, nil
}

// ApproveEntry transitions a pending entry to approved. Admin only.
// Implements portssvc.LedgerApprovalSvc
func (s *ledgerService) ApproveEntry(ctx context.Context, entryID string, approverID string) (*domain.LedgerEntry, error) {
	entry, err := s.transition(ctx, entryID, domain.StatusApproved, approverID, nil)
	if err != nil {
		return nil, err
	}
	if entry.Kind == domain.KindContribution {
		s.notifier.Notify(ctx, domain.Notification{
			RecipientID: entry.MemberID,
			SenderID:    &approverID,
			Type:        domain.NotifyContributionReceived,
			Title:       "Contribution approved",
			Message:     fmt.Sprintf("Your contribution of %s was approved", entry.Amount),
			Priority:    domain.PriorityMedium,
		})
	}
	return entry, nil
}

// RejectEntry transitions a pending entry to rejected. Admin only.
// Implements portssvc.LedgerApprovalSvc
func (s *ledgerService) RejectEntry(ctx context.Context, entryID string, approverID string, reason string) (*domain.LedgerEntry, error) {
	if reason == "" {
		return nil, fmt.Errorf("%w: rejection reason is required", apperrors.ErrValidation)
	}
	return s.transition(ctx, entryID, domain.StatusRejected, approverID, &reason)
}

// CompleteEntry transitions an approved entry to completed. Admin only.
// Implements portssvc.LedgerApprovalSvc
func (s *ledgerService) CompleteEntry(ctx context.Context, entryID string, requestingUserID string) (*domain.LedgerEntry, error) {
	return s.transition(ctx, entryID, domain.StatusCompleted, requestingUserID, nil)
}

// UpdateTransaction amends a pending ledger entry. Admin only.
// Implements portssvc.LedgerWriterSvc
func (s *ledgerService) UpdateTransaction(ctx context.Context, entryID string, req dto.UpdateTransactionRequest, requestingUserID string) (*domain.LedgerEntry, error) {
	if _, err := s.RequireAdmin(ctx, requestingUserID); err != nil {
		return nil, err
	}
	entry, err := s.ledgerRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to find ledger entry %s: %w", entryID, err)
	}
	if entry.Kind == domain.KindContribution || entry.Kind == domain.KindLoan {
		return nil, fmt.Errorf("%w: %s entries are edited through their own endpoints", apperrors.ErrValidation, entry.Kind)
	}
	if entry.Status != domain.StatusPending {
		return nil, fmt.Errorf("%w: entry is %s, only %s entries can be edited", apperrors.ErrInvalidState, entry.Status, domain.StatusPending)
	}

	if req.Amount != nil {
		if req.Amount.LessThanOrEqual(decimal.Zero) {
			return nil, fmt.Errorf("%w: amount must be positive, got %s", apperrors.ErrValidation, *req.Amount)
		}
		entry.Amount = domain.RoundMoney(*req.Amount)
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
		return nil, fmt.Errorf("failed to update ledger entry %s: %w", entryID, err)
	}
	return entry, nil
}

// DeleteTransaction soft-deletes a pending ledger entry. Admin only.
// Implements portssvc.LedgerWriterSvc
func (s *ledgerService) DeleteTransaction(ctx context.Context, entryID string, requestingUserID string) error {
	if _, err := s.RequireAdmin(ctx, requestingUserID); err != nil {
		return err
	}
	entry, err := s.ledgerRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		return fmt.Errorf("failed to find ledger entry %s: %w", entryID, err)
	}
	if entry.Status != domain.StatusPending {
		return fmt.Errorf("%w: entry is %s, only %s entries can be deleted", apperrors.ErrInvalidState, entry.Status, domain.StatusPending)
	}

	now := time.Now().UTC()
	if err := s.ledgerRepo.MarkEntryDeleted(ctx, entryID, now, requestingUserID); err != nil {
		return fmt.Errorf("failed to delete ledger entry %s: %w", entryID, err)
	}
	s.LogInfo(ctx, "ledger entry deleted", slog.String("entry_id", entryID), slog.String("deleted_by", requestingUserID))
	return nil
}
