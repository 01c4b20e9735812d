package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/techvault/identity-service/internal/domain"
)

// AccountRepository handles account-related database operations
type AccountRepository struct {
	db *gorm.DB
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *gorm.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// Create inserts a new account. A unique-index violation on email or
// provider subject surfaces as a ConflictError, so two concurrent
// registrations for the same new email cannot both succeed even though
// both passed the preceding lookup.
func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) error {
	err := r.db.WithContext(ctx).Create(account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return &domain.ConflictError{Message: "account already exists"}
		}
		return &domain.InternalError{Message: "failed to create account", Err: err}
	}
	return nil
}

// GetByEmail retrieves an account by email
func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	var account domain.Account
	err := r.db.WithContext(ctx).
		Where("email = ?", email).
		First(&account).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &domain.NotFoundError{Message: "account not found"}
		}
		return nil, &domain.InternalError{Message: "failed to get account", Err: err}
	}

	return &account, nil
}

// GetByID retrieves an account by ID
func (r *AccountRepository) GetByID(ctx context.Context, accountID uuid.UUID) (*domain.Account, error) {
	var account domain.Account
	err := r.db.WithContext(ctx).
		Where("id = ?", accountID).
		First(&account).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &domain.NotFoundError{Message: "account not found"}
		}
		return nil, &domain.InternalError{Message: "failed to get account", Err: err}
	}

	return &account, nil
}

// Update applies a partial update to an account
func (r *AccountRepository) Update(ctx context.Context, accountID uuid.UUID, fields map[string]interface{}) error {
	err := r.db.WithContext(ctx).
		Model(&domain.Account{}).
		Where("id = ?", accountID).
		Updates(fields).Error

	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return &domain.ConflictError{Message: "account already exists"}
		}
		return &domain.InternalError{Message: "failed to update account", Err: err}
	}
	return nil
}

// ClearExpiredVerificationCodes nulls out verification codes whose expiry has passed
func (r *AccountRepository) ClearExpiredVerificationCodes(ctx context.Context, now time.Time) error {
	err := r.db.WithContext(ctx).
		Model(&domain.Account{}).
		Where("verification_expiry IS NOT NULL AND verification_expiry < ?", now).
		Updates(map[string]interface{}{
			"verification_code":   nil,
			"verification_expiry": nil,
		}).Error

	if err != nil {
		return &domain.InternalError{Message: "failed to clear expired verification codes", Err: err}
	}
	return nil
}
