package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/techvault/identity-service/internal/domain"
	"github.com/techvault/identity-service/internal/federation"
)

// MockAccountRepository is a mock implementation of IAccountRepository
type MockAccountRepository struct {
	CreateFunc                        func(ctx context.Context, account *domain.Account) error
	GetByEmailFunc                    func(ctx context.Context, email string) (*domain.Account, error)
	GetByIDFunc                       func(ctx context.Context, accountID uuid.UUID) (*domain.Account, error)
	UpdateFunc                        func(ctx context.Context, accountID uuid.UUID, fields map[string]interface{}) error
	ClearExpiredVerificationCodesFunc func(ctx context.Context, now time.Time) error
}

func (m *MockAccountRepository) Create(ctx context.Context, account *domain.Account) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, account)
	}
	return nil
}

func (m *MockAccountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, &domain.NotFoundError{Message: "account not found"}
}

func (m *MockAccountRepository) GetByID(ctx context.Context, accountID uuid.UUID) (*domain.Account, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, accountID)
	}
	return nil, &domain.NotFoundError{Message: "account not found"}
}

func (m *MockAccountRepository) Update(ctx context.Context, accountID uuid.UUID, fields map[string]interface{}) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, accountID, fields)
	}
	return nil
}

func (m *MockAccountRepository) ClearExpiredVerificationCodes(ctx context.Context, now time.Time) error {
	if m.ClearExpiredVerificationCodesFunc != nil {
		return m.ClearExpiredVerificationCodesFunc(ctx, now)
	}
	return nil
}

// MockMailer records notification dispatches without sending anything
type MockMailer struct {
	mu              sync.Mutex
	VerificationTos []string
	Codes           []string
	ResetTos        []string
	ResetURLs       []string
}

func (m *MockMailer) SendVerificationCode(email, name, code string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.VerificationTos = append(m.VerificationTos, email)
	m.Codes = append(m.Codes, code)
}

func (m *MockMailer) SendPasswordResetLink(email, name, url string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ResetTos = append(m.ResetTos, email)
	m.ResetURLs = append(m.ResetURLs, url)
}

// MockVerifier is a mock federated identity verifier
type MockVerifier struct {
	VerifyFunc func(ctx context.Context, externalToken string) (*federation.Identity, error)
}

func (m *MockVerifier) Verify(ctx context.Context, externalToken string) (*federation.Identity, error) {
	if m.VerifyFunc != nil {
		return m.VerifyFunc(ctx, externalToken)
	}
	return nil, federation.ErrVerificationFailed
}
