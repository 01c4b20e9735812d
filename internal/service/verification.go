package service

import (
	"context"
	"time"

	"github.com/techvault/identity-service/internal/domain"
	"github.com/techvault/identity-service/internal/utils"
)

const resendVerificationMessage = "if an unverified account with that email exists, a new verification code has been sent"

// VerifyEmailRequest represents email verification input
type VerifyEmailRequest struct {
	Email string
	Code  string
}

// VerifyEmail checks the pending verification code and marks the account
// verified. Verifying an already-verified account is an idempotent success.
func (s *IdentityService) VerifyEmail(ctx context.Context, req VerifyEmailRequest) (*MessageResponse, error) {
	email := normalizeEmail(req.Email)

	account, err := s.accountRepo.GetByEmail(ctx, email)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, &domain.BadRequestError{Message: "invalid email or OTP code"}
		}
		return nil, err
	}

	if account.EmailVerified {
		return &MessageResponse{Message: "email already verified"}, nil
	}

	if account.VerificationCode == nil || *account.VerificationCode != req.Code {
		return nil, &domain.BadRequestError{Message: "invalid OTP code"}
	}

	if account.VerificationExpiry == nil || time.Now().After(*account.VerificationExpiry) {
		return nil, &domain.BadRequestError{Message: "OTP code has expired"}
	}

	fields := map[string]interface{}{
		"email_verified":      true,
		"verification_code":   nil,
		"verification_expiry": nil,
		"updated_at":          time.Now(),
	}
	if err := s.accountRepo.Update(ctx, account.ID, fields); err != nil {
		return nil, err
	}

	return &MessageResponse{Message: "email verified successfully"}, nil
}

// ResendVerificationRequest represents resend-verification input
type ResendVerificationRequest struct {
	Email string
}

// ResendVerification issues a fresh verification code for an unverified
// account. Unknown and already-verified emails get the same generic
// message with no mutation.
func (s *IdentityService) ResendVerification(ctx context.Context, req ResendVerificationRequest) (*MessageResponse, error) {
	email := normalizeEmail(req.Email)

	account, err := s.accountRepo.GetByEmail(ctx, email)
	if err != nil {
		if domain.IsNotFound(err) {
			return &MessageResponse{Message: resendVerificationMessage}, nil
		}
		return nil, err
	}

	if account.EmailVerified {
		return &MessageResponse{Message: resendVerificationMessage}, nil
	}

	otp, err := utils.GenerateOTP()
	if err != nil {
		return nil, &domain.InternalError{Message: "failed to generate otp", Err: err}
	}
	expiry := time.Now().Add(s.config.OTPExpiry)

	fields := map[string]interface{}{
		"verification_code":   otp,
		"verification_expiry": expiry,
	}
	if err := s.accountRepo.Update(ctx, account.ID, fields); err != nil {
		return nil, err
	}

	s.mailer.SendVerificationCode(email, account.DisplayName, otp)

	return &MessageResponse{Message: resendVerificationMessage}, nil
}
