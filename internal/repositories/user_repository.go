package repositories

import (
	"context"
	"errors"

	"tradedesk/internal/models"
	"tradedesk/internal/utils/pagination"

	"gorm.io/gorm"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrEmailTaken        = errors.New("email already taken")
	ErrPhoneTaken        = errors.New("phone number already taken")
	ErrRoleNotFound      = errors.New("role not found")
	ErrDatabaseOperation = errors.New("database operation failed")
)

// AuthState is the cached slice of a user the auth middleware checks on every request.
type AuthState struct {
	UserID       uint   `json:"user_id"`
	Status       string `json:"status"`
	TokenVersion int    `json:"token_version"`
}

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	// Create creates a new user and attaches the named roles
	Create(ctx context.Context, user *models.User, roles ...string) error

	// GetByID retrieves a user with roles and permissions loaded
	GetByID(ctx context.Context, id uint) (*models.User, error)

	// GetByLogin retrieves a user by email or phone number
	GetByLogin(ctx context.Context, identifier string) (*models.User, error)

	GetByReferralCode(ctx context.Context, code string) (*models.User, error)

	// GetAuthState is served from cache when possible
	GetAuthState(ctx context.Context, id uint) (*AuthState, error)

	Update(ctx context.Context, user *models.User) error
	UpdateStatus(ctx context.Context, userID uint, status string) error
	UpdatePassword(ctx context.Context, userID uint, hashedPassword string) error
	IncrementTokenVersion(ctx context.Context, userID uint) error

	// List retrieves users with pagination and filters
	List(ctx context.Context, q pagination.Query) ([]models.User, int64, error)

	// SetRoles replaces the user's roles
	SetRoles(ctx context.Context, userID uint, roles []string) error

	// WithTx binds the repository to an open transaction
	WithTx(tx *gorm.DB) UserRepository
}
