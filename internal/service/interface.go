package service

import "context"

// IIdentityService defines the interface for identity service operations
type IIdentityService interface {
	Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error)
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	Refresh(ctx context.Context, req RefreshRequest) (*RefreshResponse, error)
	GetProfile(ctx context.Context, req GetProfileRequest) (*GetProfileResponse, error)
	LoginWithGoogle(ctx context.Context, req LoginWithGoogleRequest) (*LoginResponse, error)
	ForgotPassword(ctx context.Context, req ForgotPasswordRequest) (*MessageResponse, error)
	ResetPassword(ctx context.Context, req ResetPasswordRequest) (*MessageResponse, error)
	VerifyEmail(ctx context.Context, req VerifyEmailRequest) (*MessageResponse, error)
	ResendVerification(ctx context.Context, req ResendVerificationRequest) (*MessageResponse, error)
}

// Compile-time check to ensure the struct implements its interface
var _ IIdentityService = (*IdentityService)(nil)
