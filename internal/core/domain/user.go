package domain

import "time"

// UserRole defines the application-wide role of a user.
type UserRole string

const (
	RoleAdmin  UserRole = "ADMIN"
	RoleMember UserRole = "MEMBER"
)

// UserStatus indicates whether a member is currently active in the chama.
type UserStatus string

const (
	UserActive   UserStatus = "ACTIVE"
	UserInactive UserStatus = "INACTIVE"
)

// Auth provider identifiers.
const (
	ProviderLocal  = "local"
	ProviderGoogle = "google"
)

// User represents a chama member (or administrator) in the domain.
// It is the single member identity; ownership of ledger entries, loans and
// meeting attendance all reference UserID.
type User struct {
	UserID         string     `json:"userID"` // Primary Key (UUID)
	Name           string     `json:"name"`
	Email          string     `json:"email"`
	Phone          string     `json:"phone"`
	Role           UserRole   `json:"role"`
	Status         UserStatus `json:"status"`
	PasswordHash   *string    `json:"-"` // nil for external-provider users
	AuthProvider   string     `json:"authProvider"`
	ProviderUserID *string    `json:"-"` // Subject ID at the external provider
	IsVerified     bool       `json:"isVerified"`
	AuditFields
	DeletedAt *time.Time `json:"deletedAt,omitempty"` // Soft delete

	// Refresh token state; only the hash is ever stored.
	RefreshTokenHash       string     `json:"-"`
	RefreshTokenExpiryTime *time.Time `json:"-"`
}

// GoogleUserInfo holds the identity claims returned by Google after OAuth.
type GoogleUserInfo struct {
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsActive reports whether the user may transact (active and not deleted).
func (u *User) IsActive() bool {
	return u.Status == UserActive && u.DeletedAt == nil
}
