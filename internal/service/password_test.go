package service_test

import (
	"context"
	"net/url"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techvault/identity-service/internal/domain"
	"github.com/techvault/identity-service/internal/service"
)

func TestIdentityService_ForgotPassword(t *testing.T) {
	t.Run("responses for known and unknown emails are identical", func(t *testing.T) {
		env := newTestEnv(t)
		account := verifiedAccount(t, env, "ana@x.com", "Secret1!")
		env.repo.GetByEmailFunc = func(ctx context.Context, email string) (*domain.Account, error) {
			if email == "ana@x.com" {
				return account, nil
			}
			return nil, &domain.NotFoundError{Message: "account not found"}
		}

		known, err := env.svc.ForgotPassword(context.Background(), service.ForgotPasswordRequest{Email: "ana@x.com"})
		require.NoError(t, err)
		unknown, err := env.svc.ForgotPassword(context.Background(), service.ForgotPasswordRequest{Email: "ghost@x.com"})
		require.NoError(t, err)

		assert.Equal(t, known.Message, unknown.Message)
		// Only the existing account actually received mail.
		assert.Equal(t, []string{"ana@x.com"}, env.mailer.ResetTos)
	})

	t.Run("account without credential hash is a silent no-op", func(t *testing.T) {
		env := newTestEnv(t)
		account := verifiedAccount(t, env, "ana@x.com", "Secret1!")
		account.PasswordHash = nil
		env.repo.GetByEmailFunc = func(ctx context.Context, email string) (*domain.Account, error) {
			return account, nil
		}

		resp, err := env.svc.ForgotPassword(context.Background(), service.ForgotPasswordRequest{Email: "ana@x.com"})
		require.NoError(t, err)
		assert.NotEmpty(t, resp.Message)
		assert.Empty(t, env.mailer.ResetTos)
	})

	t.Run("reset url embeds a verifiable token and the email", func(t *testing.T) {
		env := newTestEnv(t)
		account := verifiedAccount(t, env, "ana@x.com", "Secret1!")
		env.repo.GetByEmailFunc = func(ctx context.Context, email string) (*domain.Account, error) {
			return account, nil
		}

		_, err := env.svc.ForgotPassword(context.Background(), service.ForgotPasswordRequest{Email: "ana@x.com"})
		require.NoError(t, err)

		require.Len(t, env.mailer.ResetURLs, 1)
		parsed, err := url.Parse(env.mailer.ResetURLs[0])
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(env.mailer.ResetURLs[0], "http://localhost:3000/reset-password"))
		assert.Equal(t, "ana@x.com", parsed.Query().Get("email"))

		claims, err := env.issuer.VerifyReset(parsed.Query().Get("token"), *account.PasswordHash)
		require.NoError(t, err)
		assert.Equal(t, account.ID.String(), claims.Subject)
	})
}

func TestIdentityService_ResetPassword(t *testing.T) {
	t.Run("valid token replaces the credential hash", func(t *testing.T) {
		env := newTestEnv(t)
		account := verifiedAccount(t, env, "ana@x.com", "Secret1!")
		resetToken, err := env.issuer.IssueResetToken(account)
		require.NoError(t, err)

		var updatedFields map[string]interface{}
		env.repo.GetByEmailFunc = func(ctx context.Context, email string) (*domain.Account, error) {
			return account, nil
		}
		env.repo.UpdateFunc = func(ctx context.Context, accountID uuid.UUID, fields map[string]interface{}) error {
			assert.Equal(t, account.ID, accountID)
			updatedFields = fields
			return nil
		}

		resp, err := env.svc.ResetPassword(context.Background(), service.ResetPasswordRequest{
			Email:       "ana@x.com",
			Token:       resetToken,
			NewPassword: "Brand3new!",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, resp.Message)

		require.NotNil(t, updatedFields)
		newHash, ok := updatedFields["password_hash"].(string)
		require.True(t, ok)
		assert.True(t, env.hasher.Verify(newHash, "Brand3new!"))
		assert.False(t, env.hasher.Verify(newHash, "Secret1!"))
	})

	t.Run("token issued before a password change is rejected", func(t *testing.T) {
		env := newTestEnv(t)
		account := verifiedAccount(t, env, "ana@x.com", "Secret1!")
		staleToken, err := env.issuer.IssueResetToken(account)
		require.NoError(t, err)

		// Intervening password change: the stored hash has moved.
		account.PasswordHash = env.hash(t, "Changed4!now")
		env.repo.GetByEmailFunc = func(ctx context.Context, email string) (*domain.Account, error) {
			return account, nil
		}

		_, err = env.svc.ResetPassword(context.Background(), service.ResetPasswordRequest{
			Email:       "ana@x.com",
			Token:       staleToken,
			NewPassword: "Another5!one",
		})
		require.Error(t, err)
		assert.True(t, domain.IsBadRequest(err))
		assert.Contains(t, err.Error(), "invalid or expired reset link")
	})

	t.Run("unknown email collapses to the same message", func(t *testing.T) {
		env := newTestEnv(t)
		env.repo.GetByEmailFunc = func(ctx context.Context, email string) (*domain.Account, error) {
			return nil, &domain.NotFoundError{Message: "account not found"}
		}

		_, err := env.svc.ResetPassword(context.Background(), service.ResetPasswordRequest{
			Email:       "ghost@x.com",
			Token:       "anything",
			NewPassword: "Brand3new!",
		})
		require.Error(t, err)
		assert.True(t, domain.IsBadRequest(err))
		assert.Contains(t, err.Error(), "invalid or expired reset link")
	})

	t.Run("token for a different account is rejected", func(t *testing.T) {
		env := newTestEnv(t)
		victim := verifiedAccount(t, env, "ana@x.com", "Secret1!")
		other := verifiedAccount(t, env, "bob@x.com", "Secret1!")
		// Same hash so the signature verifies; the subject claim must not.
		other.PasswordHash = victim.PasswordHash
		otherToken, err := env.issuer.IssueResetToken(other)
		require.NoError(t, err)

		env.repo.GetByEmailFunc = func(ctx context.Context, email string) (*domain.Account, error) {
			return victim, nil
		}

		_, err = env.svc.ResetPassword(context.Background(), service.ResetPasswordRequest{
			Email:       "ana@x.com",
			Token:       otherToken,
			NewPassword: "Brand3new!",
		})
		require.Error(t, err)
		assert.True(t, domain.IsBadRequest(err))
	})
}
