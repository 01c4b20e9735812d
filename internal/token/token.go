package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/techvault/identity-service/internal/domain"
)

// ErrInvalidToken is returned for any verification failure. Malformed,
// badly signed, and expired tokens are deliberately indistinguishable to
// callers.
var ErrInvalidToken = errors.New("invalid or expired token")

// PurposePasswordReset marks single-use password reset tokens
const PurposePasswordReset = "password-reset"

// Claims carries the signed account identity inside a token
type Claims struct {
	jwt.RegisteredClaims
	Email   string      `json:"email"`
	Role    domain.Role `json:"role,omitempty"`
	Purpose string      `json:"purpose,omitempty"`
}

// Config holds the signing material and lifetimes for all token families
type Config struct {
	AccessSecret  string
	AccessTTL     time.Duration
	RefreshSecret string
	RefreshTTL    time.Duration
	ResetSecret   string
	ResetTTL      time.Duration
}

// Issuer creates and verifies the three token families. Access and refresh
// tokens are signed with independent secrets so leaking one does not
// compromise the other. Reset tokens are signed with a secret derived from
// the account's current credential hash, which invalidates them the moment
// the password changes.
type Issuer struct {
	config Config
}

// NewIssuer creates a token issuer
func NewIssuer(cfg Config) (*Issuer, error) {
	if cfg.AccessSecret == "" || cfg.RefreshSecret == "" || cfg.ResetSecret == "" {
		return nil, errors.New("token secrets must not be empty")
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 || cfg.ResetTTL <= 0 {
		return nil, errors.New("token lifetimes must be positive")
	}
	return &Issuer{config: cfg}, nil
}

// IssuePair mints a fresh access and refresh token for an account
func (i *Issuer) IssuePair(account *domain.Account) (access string, refresh string, err error) {
	access, err = i.sign(account, "", i.config.AccessSecret, i.config.AccessTTL)
	if err != nil {
		return "", "", err
	}
	refresh, err = i.sign(account, "", i.config.RefreshSecret, i.config.RefreshTTL)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

// IssueResetToken mints a password reset token bound to the account's
// current credential hash
func (i *Issuer) IssueResetToken(account *domain.Account) (string, error) {
	if account.PasswordHash == nil {
		return "", errors.New("account has no credential hash")
	}
	secret := i.config.ResetSecret + *account.PasswordHash
	return i.sign(account, PurposePasswordReset, secret, i.config.ResetTTL)
}

// VerifyAccess verifies an access token and returns its claims
func (i *Issuer) VerifyAccess(tokenString string) (*Claims, error) {
	return i.verify(tokenString, i.config.AccessSecret)
}

// VerifyRefresh verifies a refresh token and returns its claims
func (i *Issuer) VerifyRefresh(tokenString string) (*Claims, error) {
	return i.verify(tokenString, i.config.RefreshSecret)
}

// VerifyReset verifies a reset token against the secret derived from the
// given current credential hash. A token issued before a password change
// fails here because the derivation input has moved.
func (i *Issuer) VerifyReset(tokenString, passwordHash string) (*Claims, error) {
	claims, err := i.verify(tokenString, i.config.ResetSecret+passwordHash)
	if err != nil {
		return nil, err
	}
	if claims.Purpose != PurposePasswordReset {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (i *Issuer) sign(account *domain.Account, purpose, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   account.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Email:   account.Email,
		Purpose: purpose,
	}
	if purpose == "" {
		claims.Role = account.Role
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func (i *Issuer) verify(tokenString, secret string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
