package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/smart-chama/chama_backend/internal/apperrors"
	"github.com/smart-chama/chama_backend/internal/core/domain"
	portssvc "github.com/smart-chama/chama_backend/internal/core/ports/services"
	"github.com/smart-chama/chama_backend/internal/core/services"
	"github.com/smart-chama/chama_backend/internal/dto"
	"github.com/smart-chama/chama_backend/internal/utils"
)

// --- Mock UserRepository (based on UserService usage) ---
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	var user *domain.User
	if args.Get(0) != nil {
		user = args.Get(0).(*domain.User)
	}
	return user, args.Error(1)
}

func (m *MockUserRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	var user *domain.User
	if args.Get(0) != nil {
		user = args.Get(0).(*domain.User)
	}
	return user, args.Error(1)
}

func (m *MockUserRepository) FindUserByProviderID(ctx context.Context, provider string, providerUserID string) (*domain.User, error) {
	args := m.Called(ctx, provider, providerUserID)
	var user *domain.User
	if args.Get(0) != nil {
		user = args.Get(0).(*domain.User)
	}
	return user, args.Error(1)
}

func (m *MockUserRepository) FindUsers(ctx context.Context, limit int, offset int) ([]domain.User, error) {
	args := m.Called(ctx, limit, offset)
	var users []domain.User
	if args.Get(0) != nil {
		users = args.Get(0).([]domain.User)
	}
	return users, args.Error(1)
}

func (m *MockUserRepository) FindAdmins(ctx context.Context) ([]domain.User, error) {
	args := m.Called(ctx)
	var users []domain.User
	if args.Get(0) != nil {
		users = args.Get(0).([]domain.User)
	}
	return users, args.Error(1)
}

func (m *MockUserRepository) FindActiveMemberIDs(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	var ids []string
	if args.Get(0) != nil {
		ids = args.Get(0).([]string)
	}
	return ids, args.Error(1)
}

func (m *MockUserRepository) CountUsers(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) SaveUser(ctx context.Context, user domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateUser(ctx context.Context, user domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateRefreshTokenDetails(ctx context.Context, userID string, refreshTokenHash *string, refreshTokenExpiryTime *time.Time) error {
	args := m.Called(ctx, userID, refreshTokenHash, refreshTokenExpiryTime)
	return args.Error(0)
}

func (m *MockUserRepository) MarkUserDeleted(ctx context.Context, userID string, deletedAt time.Time, deletedBy string) error {
	args := m.Called(ctx, userID, deletedAt, deletedBy)
	return args.Error(0)
}

// --- Test Suite ---
type UserServiceTestSuite struct {
	suite.Suite
	mockUserRepo *MockUserRepository
	service      portssvc.UserSvcFacade
}

func (suite *UserServiceTestSuite) SetupTest() {
	suite.mockUserRepo = new(MockUserRepository)
	suite.service = services.NewUserService(suite.mockUserRepo)
}

func activeUser(role domain.UserRole) *domain.User {
	return &domain.User{
		UserID: uuid.NewString(),
		Name:   "Some User",
		Email:  uuid.NewString() + "@chama.local",
		Role:   role,
		Status: domain.UserActive,
	}
}

// --- CreateUser Tests ---

func (suite *UserServiceTestSuite) TestCreateUser_Success() {
	ctx := context.Background()
	req := dto.CreateUserRequest{
		Name:     "Jane Wanjiku",
		Email:    "jane@example.com",
		Phone:    "+254700000001",
		Password: "password123",
	}

	suite.mockUserRepo.On("FindUserByEmail", ctx, req.Email).Return(nil, apperrors.ErrNotFound).Once()
	suite.mockUserRepo.On("CountUsers", ctx).Return(int64(4), nil).Once()
	suite.mockUserRepo.On("SaveUser", ctx, mock.MatchedBy(func(u domain.User) bool {
		return u.Email == req.Email &&
			u.Role == domain.RoleMember &&
			u.Status == domain.UserActive &&
			u.AuthProvider == domain.ProviderLocal &&
			u.PasswordHash != nil && *u.PasswordHash != req.Password
	})).Return(nil).Once()

	user, err := suite.service.CreateUser(ctx, req)

	suite.Require().NoError(err)
	suite.Require().NotNil(user)
	suite.NotEmpty(user.UserID)
	suite.Require().NotNil(user.PasswordHash)
	suite.True(utils.CheckPasswordHash(req.Password, *user.PasswordHash))
	suite.mockUserRepo.AssertExpectations(suite.T())
}

func (suite *UserServiceTestSuite) TestCreateUser_FirstUserBecomesAdmin() {
	ctx := context.Background()
	req := dto.CreateUserRequest{Name: "Founder", Email: "founder@example.com", Password: "password123"}

	suite.mockUserRepo.On("FindUserByEmail", ctx, req.Email).Return(nil, apperrors.ErrNotFound).Once()
	suite.mockUserRepo.On("CountUsers", ctx).Return(int64(0), nil).Once()
	suite.mockUserRepo.On("SaveUser", ctx, mock.MatchedBy(func(u domain.User) bool {
		return u.Role == domain.RoleAdmin
	})).Return(nil).Once()

	user, err := suite.service.CreateUser(ctx, req)

	suite.Require().NoError(err)
	suite.Equal(domain.RoleAdmin, user.Role)
	suite.mockUserRepo.AssertExpectations(suite.T())
}

func (suite *UserServiceTestSuite) TestCreateUser_DuplicateEmail() {
	ctx := context.Background()
	existing := activeUser(domain.RoleMember)
	req := dto.CreateUserRequest{Name: "Dup", Email: existing.Email, Password: "password123"}

	suite.mockUserRepo.On("FindUserByEmail", ctx, existing.Email).Return(existing, nil).Once()

	user, err := suite.service.CreateUser(ctx, req)

	suite.Require().Error(err)
	suite.Nil(user)
	suite.ErrorIs(err, apperrors.ErrDuplicate)
	suite.mockUserRepo.AssertNotCalled(suite.T(), "SaveUser", mock.Anything, mock.Anything)
}

func (suite *UserServiceTestSuite) TestCreateUser_SaveError() {
	ctx := context.Background()
	req := dto.CreateUserRequest{Name: "Jane", Email: "jane2@example.com", Password: "password123"}
	expectedErr := assert.AnError

	suite.mockUserRepo.On("FindUserByEmail", ctx, req.Email).Return(nil, apperrors.ErrNotFound).Once()
	suite.mockUserRepo.On("CountUsers", ctx).Return(int64(1), nil).Once()
	suite.mockUserRepo.On("SaveUser", ctx, mock.AnythingOfType("domain.User")).Return(expectedErr).Once()

	user, err := suite.service.CreateUser(ctx, req)

	suite.Require().Error(err)
	suite.Nil(user)
	suite.ErrorIs(err, expectedErr)
	suite.mockUserRepo.AssertExpectations(suite.T())
}

// --- AuthenticateUser Tests ---

func (suite *UserServiceTestSuite) TestAuthenticateUser_Success() {
	ctx := context.Background()
	password := "password123"
	hash, err := utils.HashPassword(password)
	suite.Require().NoError(err)

	user := activeUser(domain.RoleMember)
	user.PasswordHash = &hash

	suite.mockUserRepo.On("FindUserByEmail", ctx, user.Email).Return(user, nil).Once()

	authed, err := suite.service.AuthenticateUser(ctx, user.Email, password)

	suite.Require().NoError(err)
	suite.Equal(user.UserID, authed.UserID)
}

func (suite *UserServiceTestSuite) TestAuthenticateUser_WrongPassword() {
	ctx := context.Background()
	hash, err := utils.HashPassword("correct-password")
	suite.Require().NoError(err)

	user := activeUser(domain.RoleMember)
	user.PasswordHash = &hash

	suite.mockUserRepo.On("FindUserByEmail", ctx, user.Email).Return(user, nil).Once()

	authed, err := suite.service.AuthenticateUser(ctx, user.Email, "wrong-password")

	suite.Require().Error(err)
	suite.Nil(authed)
	suite.ErrorIs(err, apperrors.ErrUnauthorized)
}

func (suite *UserServiceTestSuite) TestAuthenticateUser_UnknownEmailIsUnauthorized() {
	ctx := context.Background()

	suite.mockUserRepo.On("FindUserByEmail", ctx, "nobody@example.com").Return(nil, apperrors.ErrNotFound).Once()

	authed, err := suite.service.AuthenticateUser(ctx, "nobody@example.com", "whatever")

	suite.Require().Error(err)
	suite.Nil(authed)
	// Unknown email and wrong password are indistinguishable to the caller.
	suite.ErrorIs(err, apperrors.ErrUnauthorized)
}

func (suite *UserServiceTestSuite) TestAuthenticateUser_GoogleOnlyAccount() {
	ctx := context.Background()
	user := activeUser(domain.RoleMember)
	user.AuthProvider = domain.ProviderGoogle
	user.PasswordHash = nil

	suite.mockUserRepo.On("FindUserByEmail", ctx, user.Email).Return(user, nil).Once()

	authed, err := suite.service.AuthenticateUser(ctx, user.Email, "anything")

	suite.Require().Error(err)
	suite.Nil(authed)
	suite.ErrorIs(err, apperrors.ErrUnauthorized)
}

func (suite *UserServiceTestSuite) TestAuthenticateUser_InactiveAccount() {
	ctx := context.Background()
	password := "password123"
	hash, err := utils.HashPassword(password)
	suite.Require().NoError(err)

	user := activeUser(domain.RoleMember)
	user.Status = domain.UserInactive
	user.PasswordHash = &hash

	suite.mockUserRepo.On("FindUserByEmail", ctx, user.Email).Return(user, nil).Once()

	authed, err := suite.service.AuthenticateUser(ctx, user.Email, password)

	suite.Require().Error(err)
	suite.Nil(authed)
	suite.ErrorIs(err, apperrors.ErrForbidden)
}

// --- CreateOrLinkGoogleUser Tests ---

func (suite *UserServiceTestSuite) TestCreateOrLinkGoogleUser_ExistingGoogleIdentity() {
	ctx := context.Background()
	user := activeUser(domain.RoleMember)
	info := domain.GoogleUserInfo{Sub: "google-sub-1", Email: user.Email, EmailVerified: true}

	suite.mockUserRepo.On("FindUserByProviderID", ctx, domain.ProviderGoogle, info.Sub).Return(user, nil).Once()

	resolved, err := suite.service.CreateOrLinkGoogleUser(ctx, info)

	suite.Require().NoError(err)
	suite.Equal(user.UserID, resolved.UserID)
	suite.mockUserRepo.AssertNotCalled(suite.T(), "SaveUser", mock.Anything, mock.Anything)
}

func (suite *UserServiceTestSuite) TestCreateOrLinkGoogleUser_LinksExistingEmail() {
	ctx := context.Background()
	user := activeUser(domain.RoleMember)
	info := domain.GoogleUserInfo{Sub: "google-sub-2", Email: user.Email, EmailVerified: true}

	suite.mockUserRepo.On("FindUserByProviderID", ctx, domain.ProviderGoogle, info.Sub).Return(nil, apperrors.ErrNotFound).Once()
	suite.mockUserRepo.On("FindUserByEmail", ctx, user.Email).Return(user, nil).Once()
	suite.mockUserRepo.On("UpdateUser", ctx, mock.MatchedBy(func(u domain.User) bool {
		return u.UserID == user.UserID &&
			u.ProviderUserID != nil && *u.ProviderUserID == info.Sub &&
			u.IsVerified
	})).Return(nil).Once()

	resolved, err := suite.service.CreateOrLinkGoogleUser(ctx, info)

	suite.Require().NoError(err)
	suite.Equal(user.UserID, resolved.UserID)
	suite.mockUserRepo.AssertExpectations(suite.T())
}

func (suite *UserServiceTestSuite) TestCreateOrLinkGoogleUser_CreatesNewUser() {
	ctx := context.Background()
	info := domain.GoogleUserInfo{Sub: "google-sub-3", Email: "new@example.com", EmailVerified: true, Name: "New Member"}

	suite.mockUserRepo.On("FindUserByProviderID", ctx, domain.ProviderGoogle, info.Sub).Return(nil, apperrors.ErrNotFound).Once()
	suite.mockUserRepo.On("FindUserByEmail", ctx, info.Email).Return(nil, apperrors.ErrNotFound).Once()
	suite.mockUserRepo.On("SaveUser", ctx, mock.MatchedBy(func(u domain.User) bool {
		return u.Email == info.Email &&
			u.AuthProvider == domain.ProviderGoogle &&
			u.PasswordHash == nil &&
			u.IsVerified
	})).Return(nil).Once()

	resolved, err := suite.service.CreateOrLinkGoogleUser(ctx, info)

	suite.Require().NoError(err)
	suite.Equal(info.Name, resolved.Name)
	suite.mockUserRepo.AssertExpectations(suite.T())
}

func (suite *UserServiceTestSuite) TestCreateOrLinkGoogleUser_UnverifiedEmail() {
	ctx := context.Background()
	info := domain.GoogleUserInfo{Sub: "google-sub-4", Email: "unverified@example.com", EmailVerified: false}

	suite.mockUserRepo.On("FindUserByProviderID", ctx, domain.ProviderGoogle, info.Sub).Return(nil, apperrors.ErrNotFound).Once()

	resolved, err := suite.service.CreateOrLinkGoogleUser(ctx, info)

	suite.Require().Error(err)
	suite.Nil(resolved)
	suite.ErrorIs(err, apperrors.ErrUnauthorized)
}

// --- UpdateUser Tests ---

func (suite *UserServiceTestSuite) TestUpdateUser_MemberEditsOwnProfile() {
	ctx := context.Background()
	user := activeUser(domain.RoleMember)
	newName := "Updated Name"

	suite.mockUserRepo.On("FindUserByID", ctx, user.UserID).Return(user, nil).Twice()
	suite.mockUserRepo.On("UpdateUser", ctx, mock.MatchedBy(func(u domain.User) bool {
		return u.Name == newName
	})).Return(nil).Once()

	updated, err := suite.service.UpdateUser(ctx, user.UserID, dto.UpdateUserRequest{Name: &newName}, user.UserID)

	suite.Require().NoError(err)
	suite.Equal(newName, updated.Name)
	suite.mockUserRepo.AssertExpectations(suite.T())
}

func (suite *UserServiceTestSuite) TestUpdateUser_MemberCannotChangeRole() {
	ctx := context.Background()
	user := activeUser(domain.RoleMember)
	role := "ADMIN"

	suite.mockUserRepo.On("FindUserByID", ctx, user.UserID).Return(user, nil).Once()

	updated, err := suite.service.UpdateUser(ctx, user.UserID, dto.UpdateUserRequest{Role: &role}, user.UserID)

	suite.Require().Error(err)
	suite.Nil(updated)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.mockUserRepo.AssertNotCalled(suite.T(), "UpdateUser", mock.Anything, mock.Anything)
}

func (suite *UserServiceTestSuite) TestUpdateUser_MemberCannotEditOthers() {
	ctx := context.Background()
	requester := activeUser(domain.RoleMember)
	targetID := uuid.NewString()
	newName := "Hijacked"

	suite.mockUserRepo.On("FindUserByID", ctx, requester.UserID).Return(requester, nil).Once()

	updated, err := suite.service.UpdateUser(ctx, targetID, dto.UpdateUserRequest{Name: &newName}, requester.UserID)

	suite.Require().Error(err)
	suite.Nil(updated)
	suite.ErrorIs(err, apperrors.ErrForbidden)
}

func (suite *UserServiceTestSuite) TestUpdateUser_AdminDeactivatesMember() {
	ctx := context.Background()
	admin := activeUser(domain.RoleAdmin)
	member := activeUser(domain.RoleMember)
	status := "INACTIVE"

	suite.mockUserRepo.On("FindUserByID", ctx, admin.UserID).Return(admin, nil).Once()
	suite.mockUserRepo.On("FindUserByID", ctx, member.UserID).Return(member, nil).Once()
	suite.mockUserRepo.On("UpdateUser", ctx, mock.MatchedBy(func(u domain.User) bool {
		return u.UserID == member.UserID && u.Status == domain.UserInactive
	})).Return(nil).Once()

	updated, err := suite.service.UpdateUser(ctx, member.UserID, dto.UpdateUserRequest{Status: &status}, admin.UserID)

	suite.Require().NoError(err)
	suite.Equal(domain.UserInactive, updated.Status)
	suite.mockUserRepo.AssertExpectations(suite.T())
}

// --- DeleteUser Tests ---

func (suite *UserServiceTestSuite) TestDeleteUser_AdminOnly() {
	ctx := context.Background()
	member := activeUser(domain.RoleMember)

	suite.mockUserRepo.On("FindUserByID", ctx, member.UserID).Return(member, nil).Once()

	err := suite.service.DeleteUser(ctx, uuid.NewString(), member.UserID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
}

func (suite *UserServiceTestSuite) TestDeleteUser_CannotDeleteSelf() {
	ctx := context.Background()
	admin := activeUser(domain.RoleAdmin)

	suite.mockUserRepo.On("FindUserByID", ctx, admin.UserID).Return(admin, nil).Once()

	err := suite.service.DeleteUser(ctx, admin.UserID, admin.UserID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockUserRepo.AssertNotCalled(suite.T(), "MarkUserDeleted", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *UserServiceTestSuite) TestDeleteUser_Success() {
	ctx := context.Background()
	admin := activeUser(domain.RoleAdmin)
	member := activeUser(domain.RoleMember)

	suite.mockUserRepo.On("FindUserByID", ctx, admin.UserID).Return(admin, nil).Once()
	suite.mockUserRepo.On("FindUserByID", ctx, member.UserID).Return(member, nil).Once()
	suite.mockUserRepo.On("MarkUserDeleted", ctx, member.UserID, mock.AnythingOfType("time.Time"), admin.UserID).Return(nil).Once()

	err := suite.service.DeleteUser(ctx, member.UserID, admin.UserID)

	suite.Require().NoError(err)
	suite.mockUserRepo.AssertExpectations(suite.T())
}

// --- ListUsers Tests ---

func (suite *UserServiceTestSuite) TestListUsers_ClampsLimit() {
	ctx := context.Background()

	suite.mockUserRepo.On("FindUsers", ctx, 100, 0).Return([]domain.User{}, nil).Once()

	_, err := suite.service.ListUsers(ctx, 5000, -3)

	suite.Require().NoError(err)
	suite.mockUserRepo.AssertExpectations(suite.T())
}

func TestUserServiceTestSuite(t *testing.T) {
	suite.Run(t, new(UserServiceTestSuite))
}
