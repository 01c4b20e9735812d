package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/techvault/identity-service/internal/domain"
)

// IAccountRepository defines the interface for account repository operations
type IAccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	GetByID(ctx context.Context, accountID uuid.UUID) (*domain.Account, error)
	Update(ctx context.Context, accountID uuid.UUID, fields map[string]interface{}) error
	ClearExpiredVerificationCodes(ctx context.Context, now time.Time) error
}

// Compile-time check to ensure the struct implements its interface
var _ IAccountRepository = (*AccountRepository)(nil)
