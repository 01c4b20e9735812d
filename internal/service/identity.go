package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/techvault/identity-service/internal/domain"
	"github.com/techvault/identity-service/internal/federation"
	"github.com/techvault/identity-service/internal/repository"
	"github.com/techvault/identity-service/internal/token"
	"github.com/techvault/identity-service/internal/utils"
	"github.com/techvault/identity-service/internal/worker"
)

// IdentityService handles authentication and account lifecycle business logic
type IdentityService struct {
	accountRepo repository.IAccountRepository
	hasher      *utils.PasswordHasher
	issuer      *token.Issuer
	mailer      worker.IMailer
	verifier    federation.IVerifier
	config      IdentityServiceConfig
}

// IdentityServiceConfig holds configuration for the identity service
type IdentityServiceConfig struct {
	OTPExpiry    time.Duration
	ResetURLBase string
}

// NewIdentityService creates a new identity service
func NewIdentityService(
	accountRepo repository.IAccountRepository,
	hasher *utils.PasswordHasher,
	issuer *token.Issuer,
	mailer worker.IMailer,
	verifier federation.IVerifier,
	config IdentityServiceConfig,
) *IdentityService {
	return &IdentityService{
		accountRepo: accountRepo,
		hasher:      hasher,
		issuer:      issuer,
		mailer:      mailer,
		verifier:    verifier,
		config:      config,
	}
}

// RegisterRequest represents registration input
type RegisterRequest struct {
	Name     string
	Email    string
	Password string
}

// RegisterResponse represents registration output. Registration never
// returns tokens: the email must be verified before a session exists.
type RegisterResponse struct {
	Message string
	Account domain.SanitizedAccount
}

// Register creates an unverified account and dispatches a verification code.
// A repeat registration against a still-unverified account overwrites the
// abandoned signup with fresh credentials and a fresh code instead of
// erroring; only a verified account is a conflict.
func (s *IdentityService) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	email := normalizeEmail(req.Email)

	existing, err := s.accountRepo.GetByEmail(ctx, email)
	if err != nil && !domain.IsNotFound(err) {
		return nil, err
	}
	if existing != nil && existing.EmailVerified {
		return nil, &domain.ConflictError{Message: "email already registered"}
	}

	passwordHash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, &domain.InternalError{Message: "failed to process password", Err: err}
	}

	otp, err := utils.GenerateOTP()
	if err != nil {
		return nil, &domain.InternalError{Message: "failed to generate otp", Err: err}
	}
	expiry := time.Now().Add(s.config.OTPExpiry)

	var account *domain.Account
	if existing != nil {
		fields := map[string]interface{}{
			"display_name":        req.Name,
			"password_hash":       passwordHash,
			"verification_code":   otp,
			"verification_expiry": expiry,
		}
		if err := s.accountRepo.Update(ctx, existing.ID, fields); err != nil {
			return nil, err
		}
		existing.DisplayName = req.Name
		existing.PasswordHash = &passwordHash
		existing.VerificationCode = &otp
		existing.VerificationExpiry = &expiry
		account = existing
	} else {
		account = &domain.Account{
			DisplayName:        req.Name,
			Email:              email,
			PasswordHash:       &passwordHash,
			Role:               domain.RoleCustomer,
			Provider:           domain.ProviderNative,
			EmailVerified:      false,
			VerificationCode:   &otp,
			VerificationExpiry: &expiry,
		}
		if err := s.accountRepo.Create(ctx, account); err != nil {
			// Lost a race against a concurrent registration for the same
			// email; the unique index is the source of truth.
			if domain.IsConflict(err) {
				return nil, &domain.ConflictError{Message: "email already registered"}
			}
			return nil, err
		}
	}

	s.mailer.SendVerificationCode(email, req.Name, otp)

	return &RegisterResponse{
		Message: "registration successful, check your email for the verification code",
		Account: account.Sanitize(),
	}, nil
}

// LoginRequest represents login input
type LoginRequest struct {
	Email    string
	Password string
}

// LoginResponse represents login output
type LoginResponse struct {
	Account      domain.SanitizedAccount
	AccessToken  string
	RefreshToken string
}

// Login authenticates an account with email and password. Missing account,
// missing credential hash and wrong password all collapse to the same
// generic message so callers cannot probe which emails exist.
func (s *IdentityService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	email := normalizeEmail(req.Email)

	account, err := s.accountRepo.GetByEmail(ctx, email)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, &domain.UnauthorizedError{Message: "invalid email or password"}
		}
		return nil, err
	}

	if account.PasswordHash == nil || !s.hasher.Verify(*account.PasswordHash, req.Password) {
		return nil, &domain.UnauthorizedError{Message: "invalid email or password"}
	}

	if !account.EmailVerified {
		return nil, &domain.ForbiddenError{Message: "verify your email before logging in"}
	}

	access, refresh, err := s.issuer.IssuePair(account)
	if err != nil {
		return nil, &domain.InternalError{Message: "failed to issue tokens", Err: err}
	}

	return &LoginResponse{
		Account:      account.Sanitize(),
		AccessToken:  access,
		RefreshToken: refresh,
	}, nil
}

// RefreshRequest represents token refresh input
type RefreshRequest struct {
	RefreshToken string
}

// RefreshResponse represents token refresh output
type RefreshResponse struct {
	AccessToken  string
	RefreshToken string
}

// Refresh exchanges a valid refresh token for a fresh token pair. Claims
// are re-derived from the live account record, so a role change since the
// old token was issued shows up in the new pair.
func (s *IdentityService) Refresh(ctx context.Context, req RefreshRequest) (*RefreshResponse, error) {
	claims, err := s.issuer.VerifyRefresh(req.RefreshToken)
	if err != nil {
		return nil, &domain.UnauthorizedError{Message: "invalid refresh token"}
	}

	accountID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, &domain.UnauthorizedError{Message: "invalid refresh token"}
	}

	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, &domain.UnauthorizedError{Message: "user no longer exists"}
		}
		return nil, err
	}

	access, refresh, err := s.issuer.IssuePair(account)
	if err != nil {
		return nil, &domain.InternalError{Message: "failed to issue tokens", Err: err}
	}

	return &RefreshResponse{
		AccessToken:  access,
		RefreshToken: refresh,
	}, nil
}

// GetProfileRequest represents profile lookup input
type GetProfileRequest struct {
	AccountID uuid.UUID
}

// GetProfileResponse represents profile lookup output
type GetProfileResponse struct {
	Account domain.SanitizedAccount
}

// GetProfile retrieves the sanitized account for an ID
func (s *IdentityService) GetProfile(ctx context.Context, req GetProfileRequest) (*GetProfileResponse, error) {
	account, err := s.accountRepo.GetByID(ctx, req.AccountID)
	if err != nil {
		return nil, err
	}

	return &GetProfileResponse{Account: account.Sanitize()}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
