package service

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/techvault/identity-service/internal/domain"
)

// Reset responses are deliberately identical for existing and unknown
// emails, and for every flavor of bad token, to avoid account enumeration.
const (
	forgotPasswordMessage = "if an account with that email exists, a password reset link has been sent"
	invalidResetMessage   = "invalid or expired reset link"
)

// ForgotPasswordRequest represents forgot-password input
type ForgotPasswordRequest struct {
	Email string
}

// MessageResponse carries an informational message
type MessageResponse struct {
	Message string
}

// ForgotPassword dispatches a reset link if the account exists and has a
// credential hash; it is a silent no-op otherwise. The reset token is
// signed with a secret derived from the current hash, so any password
// change invalidates every outstanding link without a revocation store.
func (s *IdentityService) ForgotPassword(ctx context.Context, req ForgotPasswordRequest) (*MessageResponse, error) {
	email := normalizeEmail(req.Email)

	account, err := s.accountRepo.GetByEmail(ctx, email)
	if err != nil {
		if domain.IsNotFound(err) {
			return &MessageResponse{Message: forgotPasswordMessage}, nil
		}
		return nil, err
	}

	if account.PasswordHash == nil {
		return &MessageResponse{Message: forgotPasswordMessage}, nil
	}

	resetToken, err := s.issuer.IssueResetToken(account)
	if err != nil {
		return nil, &domain.InternalError{Message: "failed to issue reset token", Err: err}
	}

	resetURL := fmt.Sprintf("%s?token=%s&email=%s",
		s.config.ResetURLBase, url.QueryEscape(resetToken), url.QueryEscape(email))
	s.mailer.SendPasswordResetLink(email, account.DisplayName, resetURL)

	return &MessageResponse{Message: forgotPasswordMessage}, nil
}

// ResetPasswordRequest represents reset-password input
type ResetPasswordRequest struct {
	Email       string
	Token       string
	NewPassword string
}

// ResetPassword replaces the credential hash after verifying a reset token
// against the secret derived from the current hash. Unknown email, missing
// hash, bad signature, expiry, purpose mismatch and subject mismatch all
// collapse to the same message.
func (s *IdentityService) ResetPassword(ctx context.Context, req ResetPasswordRequest) (*MessageResponse, error) {
	email := normalizeEmail(req.Email)

	account, err := s.accountRepo.GetByEmail(ctx, email)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, &domain.BadRequestError{Message: invalidResetMessage}
		}
		return nil, err
	}

	if account.PasswordHash == nil {
		return nil, &domain.BadRequestError{Message: invalidResetMessage}
	}

	claims, err := s.issuer.VerifyReset(req.Token, *account.PasswordHash)
	if err != nil {
		return nil, &domain.BadRequestError{Message: invalidResetMessage}
	}
	if claims.Subject != account.ID.String() {
		return nil, &domain.BadRequestError{Message: invalidResetMessage}
	}

	newHash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return nil, &domain.InternalError{Message: "failed to process password", Err: err}
	}

	fields := map[string]interface{}{
		"password_hash": newHash,
		"updated_at":    time.Now(),
	}
	if err := s.accountRepo.Update(ctx, account.ID, fields); err != nil {
		return nil, err
	}

	return &MessageResponse{Message: "password has been reset successfully"}, nil
}
