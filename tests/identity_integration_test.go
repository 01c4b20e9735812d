package tests

import (
	"context"
	"fmt"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/techvault/identity-service/internal/domain"
	"github.com/techvault/identity-service/internal/federation"
	"github.com/techvault/identity-service/internal/repository"
	"github.com/techvault/identity-service/internal/service"
	"github.com/techvault/identity-service/internal/token"
	"github.com/techvault/identity-service/internal/utils"
	"github.com/techvault/identity-service/tests/mocks"
)

// IdentitySuite exercises the identity service against a real Postgres
// instance, with only mail delivery and the federated verifier mocked.
type IdentitySuite struct {
	suite.Suite
	Container testcontainers.Container
	DB        *gorm.DB
	Ctx       context.Context
	Repo      *repository.AccountRepository
	Issuer    *token.Issuer
	Hasher    *utils.PasswordHasher
	Mailer    *mocks.MockMailer
	Verifier  *mocks.MockVerifier
	Service   *service.IdentityService
}

func (s *IdentitySuite) SetupSuite() {
	ctx := context.Background()
	s.Ctx = ctx

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "testuser",
			"POSTGRES_PASSWORD": "testpass",
			"POSTGRES_DB":       "test_identity",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	s.Require().NoError(err, "Failed to start PostgreSQL container")
	s.Container = container

	host, err := container.Host(ctx)
	s.Require().NoError(err, "Failed to get container host")

	port, err := container.MappedPort(ctx, "5432")
	s.Require().NoError(err, "Failed to get container port")

	dsn := fmt.Sprintf(
		"host=%s port=%s user=testuser password=testpass dbname=test_identity sslmode=disable",
		host, port.Port(),
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	s.Require().NoError(err, "Failed to connect to database")
	s.DB = db

	err = domain.AutoMigrate(db)
	s.Require().NoError(err, "Failed to run migrations")

	s.Repo = repository.NewAccountRepository(db)
	s.Hasher = utils.NewPasswordHasher(4)
	s.Mailer = &mocks.MockMailer{}
	s.Verifier = &mocks.MockVerifier{}

	s.Issuer, err = token.NewIssuer(token.Config{
		AccessSecret:  "access-secret-for-integration",
		AccessTTL:     15 * time.Minute,
		RefreshSecret: "refresh-secret-for-integration",
		RefreshTTL:    7 * 24 * time.Hour,
		ResetSecret:   "reset-secret-for-integration",
		ResetTTL:      time.Hour,
	})
	s.Require().NoError(err)

	s.Service = service.NewIdentityService(s.Repo, s.Hasher, s.Issuer, s.Mailer, s.Verifier, service.IdentityServiceConfig{
		OTPExpiry:    15 * time.Minute,
		ResetURLBase: "http://localhost:3000/reset-password",
	})
}

func (s *IdentitySuite) TearDownSuite() {
	if s.Container != nil {
		_ = s.Container.Terminate(s.Ctx)
	}
}

func (s *IdentitySuite) SetupTest() {
	s.Require().NoError(s.DB.Exec("TRUNCATE accounts").Error)
	s.Mailer.VerificationTos = nil
	s.Mailer.Codes = nil
	s.Mailer.ResetTos = nil
	s.Mailer.ResetURLs = nil
}

func extractToken(t *testing.T, resetURL string) string {
	t.Helper()
	parsed, err := url.Parse(resetURL)
	if err != nil {
		t.Fatalf("failed to parse reset URL %q: %v", resetURL, err)
	}
	return parsed.Query().Get("token")
}

func (s *IdentitySuite) lastCode() string {
	s.Require().NotEmpty(s.Mailer.Codes)
	return s.Mailer.Codes[len(s.Mailer.Codes)-1]
}

func (s *IdentitySuite) TestRegistrationOverwritesAbandonedSignup() {
	_, err := s.Service.Register(s.Ctx, service.RegisterRequest{
		Name: "Ana", Email: "ana@x.com", Password: "Secret1!",
	})
	s.Require().NoError(err)
	firstCode := s.lastCode()

	// Same email before verification: the abandoned signup is overwritten.
	resp, err := s.Service.Register(s.Ctx, service.RegisterRequest{
		Name: "Ana Maria", Email: "ana@x.com", Password: "Other2!pass",
	})
	s.Require().NoError(err)
	s.Equal("Ana Maria", resp.Account.DisplayName)
	s.False(resp.Account.EmailVerified)
	s.NotEqual(firstCode, s.lastCode())

	var count int64
	s.Require().NoError(s.DB.Model(&domain.Account{}).Count(&count).Error)
	s.Equal(int64(1), count)

	// Verify and try again: now it is a conflict.
	_, err = s.Service.VerifyEmail(s.Ctx, service.VerifyEmailRequest{Email: "ana@x.com", Code: s.lastCode()})
	s.Require().NoError(err)

	_, err = s.Service.Register(s.Ctx, service.RegisterRequest{
		Name: "Mallory", Email: "ana@x.com", Password: "Evil3!pass",
	})
	s.Require().Error(err)
	s.True(domain.IsConflict(err))
}

func (s *IdentitySuite) TestLoginGatedOnVerification() {
	_, err := s.Service.Register(s.Ctx, service.RegisterRequest{
		Name: "Ana", Email: "ana@x.com", Password: "Secret1!",
	})
	s.Require().NoError(err)

	_, err = s.Service.Login(s.Ctx, service.LoginRequest{Email: "ana@x.com", Password: "Secret1!"})
	s.Require().Error(err)
	s.True(domain.IsForbidden(err))

	_, err = s.Service.VerifyEmail(s.Ctx, service.VerifyEmailRequest{Email: "ana@x.com", Code: s.lastCode()})
	s.Require().NoError(err)

	// Verification is idempotent.
	again, err := s.Service.VerifyEmail(s.Ctx, service.VerifyEmailRequest{Email: "ana@x.com", Code: s.lastCode()})
	s.Require().NoError(err)
	s.Equal("email already verified", again.Message)

	resp, err := s.Service.Login(s.Ctx, service.LoginRequest{Email: "ana@x.com", Password: "Secret1!"})
	s.Require().NoError(err)
	s.NotEmpty(resp.AccessToken)
	s.NotEmpty(resp.RefreshToken)
	s.True(resp.Account.EmailVerified)
}

func (s *IdentitySuite) TestPasswordResetFlow() {
	_, err := s.Service.Register(s.Ctx, service.RegisterRequest{
		Name: "Ana", Email: "ana@x.com", Password: "Secret1!",
	})
	s.Require().NoError(err)
	_, err = s.Service.VerifyEmail(s.Ctx, service.VerifyEmailRequest{Email: "ana@x.com", Code: s.lastCode()})
	s.Require().NoError(err)

	known, err := s.Service.ForgotPassword(s.Ctx, service.ForgotPasswordRequest{Email: "ana@x.com"})
	s.Require().NoError(err)
	unknown, err := s.Service.ForgotPassword(s.Ctx, service.ForgotPasswordRequest{Email: "ghost@x.com"})
	s.Require().NoError(err)
	s.Equal(known.Message, unknown.Message)
	s.Require().Len(s.Mailer.ResetURLs, 1)

	staleToken := extractToken(s.T(), s.Mailer.ResetURLs[0])

	// An intervening reset moves the hash, invalidating the earlier link.
	_, err = s.Service.ForgotPassword(s.Ctx, service.ForgotPasswordRequest{Email: "ana@x.com"})
	s.Require().NoError(err)
	freshToken := extractToken(s.T(), s.Mailer.ResetURLs[1])

	_, err = s.Service.ResetPassword(s.Ctx, service.ResetPasswordRequest{
		Email: "ana@x.com", Token: freshToken, NewPassword: "Brand3new!",
	})
	s.Require().NoError(err)

	_, err = s.Service.ResetPassword(s.Ctx, service.ResetPasswordRequest{
		Email: "ana@x.com", Token: staleToken, NewPassword: "Another5!one",
	})
	s.Require().Error(err)
	s.True(domain.IsBadRequest(err))

	// Old password dead, new password works.
	_, err = s.Service.Login(s.Ctx, service.LoginRequest{Email: "ana@x.com", Password: "Secret1!"})
	s.Require().Error(err)
	_, err = s.Service.Login(s.Ctx, service.LoginRequest{Email: "ana@x.com", Password: "Brand3new!"})
	s.Require().NoError(err)
}

func (s *IdentitySuite) TestFederatedLinkingKeepsNativePassword() {
	_, err := s.Service.Register(s.Ctx, service.RegisterRequest{
		Name: "Ana", Email: "ana@x.com", Password: "Secret1!",
	})
	s.Require().NoError(err)

	s.Verifier.VerifyFunc = func(ctx context.Context, externalToken string) (*federation.Identity, error) {
		return &federation.Identity{Subject: "g-123", Email: "ana@x.com", Name: "Ana G"}, nil
	}

	resp, err := s.Service.LoginWithGoogle(s.Ctx, service.LoginWithGoogleRequest{IDToken: "tok"})
	s.Require().NoError(err)
	s.True(resp.Account.EmailVerified)
	s.Equal(domain.ProviderGoogle, resp.Account.Provider)

	stored, err := s.Repo.GetByEmail(s.Ctx, "ana@x.com")
	s.Require().NoError(err)
	s.Require().NotNil(stored.ProviderSubject)
	s.Equal("g-123", *stored.ProviderSubject)

	// Linking forced verification, so the native login now works too.
	_, err = s.Service.Login(s.Ctx, service.LoginRequest{Email: "ana@x.com", Password: "Secret1!"})
	s.Require().NoError(err)
}

func (s *IdentitySuite) TestRefreshReflectsRoleChange() {
	_, err := s.Service.Register(s.Ctx, service.RegisterRequest{
		Name: "Ana", Email: "ana@x.com", Password: "Secret1!",
	})
	s.Require().NoError(err)
	_, err = s.Service.VerifyEmail(s.Ctx, service.VerifyEmailRequest{Email: "ana@x.com", Code: s.lastCode()})
	s.Require().NoError(err)

	login, err := s.Service.Login(s.Ctx, service.LoginRequest{Email: "ana@x.com", Password: "Secret1!"})
	s.Require().NoError(err)

	account, err := s.Repo.GetByEmail(s.Ctx, "ana@x.com")
	s.Require().NoError(err)
	s.Require().NoError(s.Repo.Update(s.Ctx, account.ID, map[string]interface{}{"role": domain.RoleSeller}))

	refreshed, err := s.Service.Refresh(s.Ctx, service.RefreshRequest{RefreshToken: login.RefreshToken})
	s.Require().NoError(err)

	claims, err := s.Issuer.VerifyAccess(refreshed.AccessToken)
	s.Require().NoError(err)
	s.Equal(domain.RoleSeller, claims.Role)
}

func TestIdentitySuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}
	suite.Run(t, new(IdentitySuite))
}
