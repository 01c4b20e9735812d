// Package controller exposes the identity service over JSON HTTP. It
// decodes and validates transport payloads, delegates to the service, and
// maps typed failures to status codes; all business rules live below it.
package controller

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/techvault/identity-service/internal/domain"
	"github.com/techvault/identity-service/internal/middleware"
	"github.com/techvault/identity-service/internal/service"
	"github.com/techvault/identity-service/internal/token"
	"github.com/techvault/identity-service/internal/utils"
)

// Handler wires HTTP endpoints to the identity service
type Handler struct {
	identity  service.IIdentityService
	validator *utils.Validator
	issuer    *token.Issuer
}

// NewHandler creates a new HTTP handler
func NewHandler(identity service.IIdentityService, validator *utils.Validator, issuer *token.Issuer) *Handler {
	return &Handler{
		identity:  identity,
		validator: validator,
		issuer:    issuer,
	}
}

// Routes assembles the identity endpoints with middleware applied
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /auth/register", h.Register)
	mux.HandleFunc("POST /auth/login", h.Login)
	mux.HandleFunc("POST /auth/refresh", h.Refresh)
	mux.HandleFunc("POST /auth/google", h.LoginWithGoogle)
	mux.HandleFunc("POST /auth/forgot-password", h.ForgotPassword)
	mux.HandleFunc("POST /auth/reset-password", h.ResetPassword)
	mux.HandleFunc("POST /auth/verify-email", h.VerifyEmail)
	mux.HandleFunc("POST /auth/resend-verification", h.ResendVerification)

	auth := middleware.Auth(h.issuer)
	mux.Handle("GET /profile", auth(http.HandlerFunc(h.GetProfile)))

	return middleware.Recovery(middleware.Logging(mux))
}

type registerPayload struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// Register handles account registration
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var payload registerPayload
	if !h.decode(w, r, &payload) {
		return
	}

	resp, err := h.identity.Register(r.Context(), service.RegisterRequest{
		Name:     payload.Name,
		Email:    payload.Email,
		Password: payload.Password,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": resp.Message,
		"account": resp.Account,
	})
}

type loginPayload struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login handles password login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var payload loginPayload
	if !h.decode(w, r, &payload) {
		return
	}

	resp, err := h.identity.Login(r.Context(), service.LoginRequest{
		Email:    payload.Email,
		Password: payload.Password,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"account":       resp.Account,
		"access_token":  resp.AccessToken,
		"refresh_token": resp.RefreshToken,
	})
}

type refreshPayload struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// Refresh handles token refresh
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var payload refreshPayload
	if !h.decode(w, r, &payload) {
		return
	}

	resp, err := h.identity.Refresh(r.Context(), service.RefreshRequest{
		RefreshToken: payload.RefreshToken,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"access_token":  resp.AccessToken,
		"refresh_token": resp.RefreshToken,
	})
}

type googleLoginPayload struct {
	IDToken string `json:"id_token" validate:"required"`
}

// LoginWithGoogle handles federated login
func (h *Handler) LoginWithGoogle(w http.ResponseWriter, r *http.Request) {
	var payload googleLoginPayload
	if !h.decode(w, r, &payload) {
		return
	}

	resp, err := h.identity.LoginWithGoogle(r.Context(), service.LoginWithGoogleRequest{
		IDToken: payload.IDToken,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"account":       resp.Account,
		"access_token":  resp.AccessToken,
		"refresh_token": resp.RefreshToken,
	})
}

type forgotPasswordPayload struct {
	Email string `json:"email" validate:"required,email"`
}

// ForgotPassword handles reset link requests
func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var payload forgotPasswordPayload
	if !h.decode(w, r, &payload) {
		return
	}

	resp, err := h.identity.ForgotPassword(r.Context(), service.ForgotPasswordRequest{
		Email: payload.Email,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": resp.Message})
}

type resetPasswordPayload struct {
	Email       string `json:"email" validate:"required,email"`
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

// ResetPassword handles password resets
func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var payload resetPasswordPayload
	if !h.decode(w, r, &payload) {
		return
	}

	resp, err := h.identity.ResetPassword(r.Context(), service.ResetPasswordRequest{
		Email:       payload.Email,
		Token:       payload.Token,
		NewPassword: payload.NewPassword,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": resp.Message})
}

type verifyEmailPayload struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,len=6,numeric"`
}

// VerifyEmail handles OTP verification
func (h *Handler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var payload verifyEmailPayload
	if !h.decode(w, r, &payload) {
		return
	}

	resp, err := h.identity.VerifyEmail(r.Context(), service.VerifyEmailRequest{
		Email: payload.Email,
		Code:  payload.Code,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": resp.Message})
}

type resendVerificationPayload struct {
	Email string `json:"email" validate:"required,email"`
}

// ResendVerification handles verification code resends
func (h *Handler) ResendVerification(w http.ResponseWriter, r *http.Request) {
	var payload resendVerificationPayload
	if !h.decode(w, r, &payload) {
		return
	}

	resp, err := h.identity.ResendVerification(r.Context(), service.ResendVerificationRequest{
		Email: payload.Email,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": resp.Message})
}

// GetProfile returns the sanitized account of the authenticated caller
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing or invalid authorization token")
		return
	}

	accountID, err := uuid.Parse(claims.Subject)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "missing or invalid authorization token")
		return
	}

	resp, err := h.identity.GetProfile(r.Context(), service.GetProfileRequest{AccountID: accountID})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"account": resp.Account})
}

// decode parses and validates the JSON body, writing a 400 on failure
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, payload interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	if err := h.validator.Validate(payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var internal *domain.InternalError
	if errors.As(err, &internal) {
		zap.L().Error("service error", zap.String("path", r.URL.Path), zap.Error(err))
	} else {
		zap.L().Warn("request rejected", zap.String("path", r.URL.Path), zap.Error(err))
	}

	status, message := middleware.ErrorToStatus(err)
	writeError(w, status, message)
}
