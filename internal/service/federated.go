package service

import (
	"context"
	"time"

	"github.com/techvault/identity-service/internal/domain"
	"github.com/techvault/identity-service/internal/utils"
)

// LoginWithGoogleRequest represents federated login input
type LoginWithGoogleRequest struct {
	IDToken string
}

// LoginWithGoogle verifies a Google identity token and signs the account
// in, provisioning or linking as needed:
//
//   - no account for the email: a new verified account is created with a
//     random placeholder password
//   - account exists but is not linked: the Google subject is attached and
//     the email is marked verified; the credential hash, role and display
//     name are left untouched, so a native login keeps working
//   - account already linked: no mutation
//
// Linking happens on email match alone, with no re-authentication of the
// native password. The verifier is trusted to prove control of the email.
func (s *IdentityService) LoginWithGoogle(ctx context.Context, req LoginWithGoogleRequest) (*LoginResponse, error) {
	if s.verifier == nil {
		return nil, &domain.InternalError{Message: "federated identity verifier is not configured"}
	}

	identity, err := s.verifier.Verify(ctx, req.IDToken)
	if err != nil {
		return nil, &domain.UnauthorizedError{Message: err.Error()}
	}
	if identity.Email == "" {
		return nil, &domain.UnauthorizedError{Message: "external identity has no email claim"}
	}

	email := normalizeEmail(identity.Email)

	account, err := s.accountRepo.GetByEmail(ctx, email)
	if err != nil {
		if !domain.IsNotFound(err) {
			return nil, err
		}
		account, err = s.provisionFederatedAccount(ctx, email, identity.Subject, identity.Name, identity.AvatarURL)
		if err != nil {
			return nil, err
		}
	} else if account.Provider != domain.ProviderGoogle {
		if err := s.linkFederatedIdentity(ctx, account, identity.Subject, identity.AvatarURL); err != nil {
			return nil, err
		}
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

func (s *IdentityService) provisionFederatedAccount(ctx context.Context, email, subject, name, avatarURL string) (*domain.Account, error) {
	// The placeholder password is random and never shown anywhere; it only
	// keeps the credential hash non-null for accounts born federated.
	randomPassword, err := utils.GenerateRandomPassword()
	if err != nil {
		return nil, &domain.InternalError{Message: "failed to generate placeholder password", Err: err}
	}
	passwordHash, err := s.hasher.Hash(randomPassword)
	if err != nil {
		return nil, &domain.InternalError{Message: "failed to process placeholder password", Err: err}
	}

	displayName := name
	if displayName == "" {
		displayName = utils.GetEmailPrefix(email)
	}

	account := &domain.Account{
		DisplayName:     displayName,
		Email:           email,
		PasswordHash:    &passwordHash,
		Role:            domain.RoleCustomer,
		Provider:        domain.ProviderGoogle,
		ProviderSubject: &subject,
		EmailVerified:   true,
	}
	if avatarURL != "" {
		account.AvatarURL = &avatarURL
	}

	if err := s.accountRepo.Create(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

func (s *IdentityService) linkFederatedIdentity(ctx context.Context, account *domain.Account, subject, avatarURL string) error {
	fields := map[string]interface{}{
		"provider":         domain.ProviderGoogle,
		"provider_subject": subject,
		"email_verified":   true,
		"updated_at":       time.Now(),
	}
	if avatarURL != "" {
		fields["avatar_url"] = avatarURL
	}

	if err := s.accountRepo.Update(ctx, account.ID, fields); err != nil {
		return err
	}

	account.Provider = domain.ProviderGoogle
	account.ProviderSubject = &subject
	account.EmailVerified = true
	if avatarURL != "" {
		account.AvatarURL = &avatarURL
	}
	return nil
}
