// Package federation validates third-party identity assertions and returns
// the trusted claims they carry.
package federation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Identity holds the trusted claims extracted from a verified external token
type Identity struct {
	Subject   string
	Email     string
	Name      string
	AvatarURL string
}

// IVerifier validates an external identity token and returns its claims
type IVerifier interface {
	Verify(ctx context.Context, externalToken string) (*Identity, error)
}

// ErrVerificationFailed is returned when the provider rejects the token
var ErrVerificationFailed = errors.New("failed to verify external identity token")

const googleTokenInfoURL = "https://oauth2.googleapis.com/tokeninfo"

// GoogleVerifier validates Google ID tokens against the tokeninfo endpoint
type GoogleVerifier struct {
	clientID   string
	endpoint   string
	httpClient *http.Client
}

var _ IVerifier = (*GoogleVerifier)(nil)

// NewGoogleVerifier creates a verifier for the given OAuth client ID
func NewGoogleVerifier(clientID string) *GoogleVerifier {
	return &GoogleVerifier{
		clientID: clientID,
		endpoint: googleTokenInfoURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// NewGoogleVerifierWithEndpoint creates a verifier against a custom
// tokeninfo endpoint (used in tests)
func NewGoogleVerifierWithEndpoint(clientID, endpoint string) *GoogleVerifier {
	v := NewGoogleVerifier(clientID)
	v.endpoint = endpoint
	return v
}

// Verify checks an ID token with Google and returns the identity claims
func (v *GoogleVerifier) Verify(ctx context.Context, externalToken string) (*Identity, error) {
	query := url.Values{}
	query.Set("id_token", externalToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build tokeninfo request: %w", err)
	}

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tokeninfo request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, ErrVerificationFailed
	}

	var payload struct {
		Sub           string `json:"sub"`
		Aud           string `json:"aud"`
		Email         string `json:"email"`
		EmailVerified string `json:"email_verified"`
		Name          string `json:"name"`
		Picture       string `json:"picture"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode tokeninfo response: %w", err)
	}

	if payload.Sub == "" {
		return nil, ErrVerificationFailed
	}
	if v.clientID != "" && payload.Aud != v.clientID {
		return nil, ErrVerificationFailed
	}

	return &Identity{
		Subject:   payload.Sub,
		Email:     payload.Email,
		Name:      payload.Name,
		AvatarURL: payload.Picture,
	}, nil
}
