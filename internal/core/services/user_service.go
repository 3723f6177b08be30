package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/smart-chama/chama_backend/internal/apperrors"
	"github.com/smart-chama/chama_backend/internal/core/domain"
	portsrepo "github.com/smart-chama/chama_backend/internal/core/ports/repositories"
	portssvc "github.com/smart-chama/chama_backend/internal/core/ports/services"
	"github.com/smart-chama/chama_backend/internal/dto"
	"github.com/smart-chama/chama_backend/internal/utils"
)

// userService manages member identity, credentials and role assignment.
type userService struct {
	BaseService
	userRepo portsrepo.UserRepositoryFacade
}

// NewUserService creates a new user service.
func NewUserService(userRepo portsrepo.UserRepositoryFacade) portssvc.UserSvcFacade {
	s := &userService{userRepo: userRepo}
	s.BaseService = BaseService{Users: s}
	return s
}

var _ portssvc.UserSvcFacade = (*userService)(nil)

// CreateUser registers a new member with a locally managed password.
func (s *userService) CreateUser(ctx context.Context, req dto.CreateUserRequest) (*domain.User, error) {
	existing, err := s.userRepo.FindUserByEmail(ctx, req.Email)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to check for existing user: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: email %s is already registered", apperrors.ErrDuplicate, req.Email)
	}

	passwordHash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	// The very first registered user administers the chama.
	role := domain.RoleMember
	count, err := s.userRepo.CountUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	if count == 0 {
		role = domain.RoleAdmin
	}

	now := time.Now()
	newUserID := uuid.NewString()
	user := domain.User{
		UserID:       newUserID,
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		Role:         role,
		Status:       domain.UserActive,
		PasswordHash: &passwordHash,
		AuthProvider: domain.ProviderLocal,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     newUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: newUserID,
		},
	}

	if err := s.userRepo.SaveUser(ctx, user); err != nil {
		s.LogError(ctx, err, "failed to save new user", "email", req.Email)
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.LogInfo(ctx, "user registered", "user_id", user.UserID)
	return &user, nil
}

// CreateOrLinkGoogleUser resolves a Google identity to a local user account.
// An existing account with the same verified email is linked rather than duplicated.
func (s *userService) CreateOrLinkGoogleUser(ctx context.Context, info domain.GoogleUserInfo) (*domain.User, error) {
	user, err := s.userRepo.FindUserByProviderID(ctx, domain.ProviderGoogle, info.Sub)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up google identity: %w", err)
	}

	if !info.EmailVerified {
		return nil, fmt.Errorf("%w: google account email is not verified", apperrors.ErrUnauthorized)
	}

	existing, err := s.userRepo.FindUserByEmail(ctx, info.Email)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up user by email: %w", err)
	}
	if existing != nil {
		sub := info.Sub
		existing.ProviderUserID = &sub
		existing.IsVerified = true
		existing.LastUpdatedAt = time.Now()
		existing.LastUpdatedBy = existing.UserID
		if err := s.userRepo.UpdateUser(ctx, *existing); err != nil {
			s.LogError(ctx, err, "failed to link google identity", "user_id", existing.UserID)
			return nil, fmt.Errorf("failed to link google identity: %w", err)
		}
		s.LogInfo(ctx, "google identity linked", "user_id", existing.UserID)
		return existing, nil
	}

	now := time.Now()
	newUserID := uuid.NewString()
	sub := info.Sub
	newUser := domain.User{
		UserID:         newUserID,
		Name:           info.Name,
		Email:          info.Email,
		Role:           domain.RoleMember,
		Status:         domain.UserActive,
		AuthProvider:   domain.ProviderGoogle,
		ProviderUserID: &sub,
		IsVerified:     true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     newUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: newUserID,
		},
	}
	if err := s.userRepo.SaveUser(ctx, newUser); err != nil {
		s.LogError(ctx, err, "failed to save google user", "email", info.Email)
		return nil, fmt.Errorf("failed to create user from google identity: %w", err)
	}
	s.LogInfo(ctx, "user registered via google", "user_id", newUser.UserID)
	return &newUser, nil
}

// GetUserByID retrieves a user by ID.
func (s *userService) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GetUserByEmail retrieves a user by email address.
func (s *userService) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// ListUsers retrieves a paginated list of users.
func (s *userService) ListUsers(ctx context.Context, limit, offset int) ([]domain.User, error) {
	limit = clampLimit(limit)
	if offset < 0 {
		offset = 0
	}
	return s.userRepo.FindUsers(ctx, limit, offset)
}

// ListAdmins retrieves all active admin users.
func (s *userService) ListAdmins(ctx context.Context) ([]domain.User, error) {
	return s.userRepo.FindAdmins(ctx)
}

// ListActiveMemberIDs retrieves the IDs of all active users.
func (s *userService) ListActiveMemberIDs(ctx context.Context) ([]string, error) {
	return s.userRepo.FindActiveMemberIDs(ctx)
}

// UpdateUser applies profile changes. Role and status changes are admin only,
// and members may only edit their own profile.
func (s *userService) UpdateUser(ctx context.Context, userID string, req dto.UpdateUserRequest, requestingUserID string) (*domain.User, error) {
	requester, err := s.userRepo.FindUserByID(ctx, requestingUserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown requesting user", apperrors.ErrForbidden)
		}
		return nil, fmt.Errorf("failed to load requesting user: %w", err)
	}
	if requestingUserID != userID && !requester.IsAdmin() {
		return nil, fmt.Errorf("%w: cannot modify another user", apperrors.ErrForbidden)
	}
	if (req.Role != nil || req.Status != nil) && !requester.IsAdmin() {
		return nil, fmt.Errorf("%w: only admins can change role or status", apperrors.ErrForbidden)
	}

	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	if req.Role != nil {
		user.Role = domain.UserRole(*req.Role)
	}
	if req.Status != nil {
		user.Status = domain.UserStatus(*req.Status)
	}
	user.LastUpdatedAt = time.Now()
	user.LastUpdatedBy = requestingUserID

	if err := s.userRepo.UpdateUser(ctx, *user); err != nil {
		s.LogError(ctx, err, "failed to update user", "user_id", userID)
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

// UpdateRefreshToken stores the hashed refresh token details for a user.
func (s *userService) UpdateRefreshToken(ctx context.Context, userID string, refreshTokenHash string, refreshTokenExpiryTime time.Time) error {
	return s.userRepo.UpdateRefreshTokenDetails(ctx, userID, &refreshTokenHash, &refreshTokenExpiryTime)
}

// ClearRefreshToken removes the stored refresh token for a user, ending the session.
func (s *userService) ClearRefreshToken(ctx context.Context, userID string) error {
	return s.userRepo.UpdateRefreshTokenDetails(ctx, userID, nil, nil)
}

// DeleteUser soft deletes a user. Admin only.
func (s *userService) DeleteUser(ctx context.Context, userID string, requestingUserID string) error {
	if _, err := s.RequireAdmin(ctx, requestingUserID); err != nil {
		return err
	}
	if userID == requestingUserID {
		return fmt.Errorf("%w: admins cannot delete their own account", apperrors.ErrValidation)
	}
	if _, err := s.userRepo.FindUserByID(ctx, userID); err != nil {
		return err
	}
	if err := s.userRepo.MarkUserDeleted(ctx, userID, time.Now(), requestingUserID); err != nil {
		s.LogError(ctx, err, "failed to delete user", "user_id", userID)
		return fmt.Errorf("failed to delete user: %w", err)
	}
	s.LogInfo(ctx, "user deleted", "user_id", userID, "deleted_by", requestingUserID)
	return nil
}

// AuthenticateUser verifies email/password credentials.
func (s *userService) AuthenticateUser(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: invalid credentials", apperrors.ErrUnauthorized)
		}
		return nil, fmt.Errorf("failed to look up user for authentication: %w", err)
	}
	if user.PasswordHash == nil || !utils.CheckPasswordHash(password, *user.PasswordHash) {
		return nil, fmt.Errorf("%w: invalid credentials", apperrors.ErrUnauthorized)
	}
	if !user.IsActive() {
		return nil, fmt.Errorf("%w: account is not active", apperrors.ErrForbidden)
	}
	return user, nil
}
