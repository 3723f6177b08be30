package services

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/smart-chama/chama_backend/internal/core/domain"
	"github.com/smart-chama/chama_backend/internal/dto"
)

// ContributionReaderSvc defines read operations for contribution data
type ContributionReaderSvc interface {
	// GetContributionByID retrieves a single contribution entry. Members may
	// only read their own; admins may read any.
	GetContributionByID(ctx context.Context, contributionID string, requestingUserID string) (*domain.LedgerEntry, error)

	// ListContributions retrieves a paginated list of contributions. Admin only.
	ListContributions(ctx context.Context, requestingUserID string, params dto.ListContributionsParams) (*dto.ListContributionsResponse, error)

	// ListMemberContributions retrieves a member's own contributions.
	ListMemberContributions(ctx context.Context, memberID string, params dto.ListContributionsParams) (*dto.ListContributionsResponse, error)

	// GetMemberTotal sums a member's settled contributions. Returns zero for
	// members with no contributions.
	GetMemberTotal(ctx context.Context, memberID string, requestingUserID string) (decimal.Decimal, error)

	// GetContributionStats retrieves aggregate contribution figures. Admin only.
	GetContributionStats(ctx context.Context, requestingUserID string) (*domain.ContributionStats, error)
}

// ContributionWriterSvc defines write operations for contribution data
type ContributionWriterSvc interface {
	// RecordContribution records a member's own contribution, which starts
	// pending until an admin approves it.
	RecordContribution(ctx context.Context, memberID string, req dto.RecordContributionRequest) (*domain.LedgerEntry, error)

	// AddContribution records a contribution on behalf of a member, settled
	// immediately. Admin only.
	AddContribution(ctx context.Context, req dto.AddContributionRequest, creatorUserID string) (*domain.LedgerEntry, error)

	// UpdateContribution amends a pending contribution.
	UpdateContribution(ctx context.Context, contributionID string, req dto.UpdateContributionRequest, requestingUserID string) (*domain.LedgerEntry, error)

	// DeleteContribution soft-deletes a pending contribution.
	DeleteContribution(ctx context.Context, contributionID string, requestingUserID string) error
}

// ContributionSvcFacade combines all contribution-related service interfaces
type ContributionSvcFacade interface {
	ContributionReaderSvc
	ContributionWriterSvc
}
