package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/civix-service/internal/config"
	"github.com/spec-kit/civix-service/internal/domain"
	"github.com/spec-kit/civix-service/internal/repository"
	"github.com/spec-kit/civix-service/internal/session"
	apperrors "github.com/spec-kit/civix-service/pkg/util"
)

func newTestService(t *testing.T) (*AuthService, *repository.MemoryUserRepository) {
	t.Helper()

	cfg := config.Config{
		Auth: config.AuthConfig{
			JWTSecret:             "test-secret",
			AccessTokenTTLMinutes: 60,
			BcryptCost:            bcrypt.MinCost,
			MinPasswordLength:     8,
		},
	}
	repo := repository.NewMemoryUserRepository()
	svc := NewAuthService(cfg, AuthDependencies{
		UserRepo: repo,
		Sessions: session.NewMemoryStore(),
	})
	return svc, repo
}

func registerJane(t *testing.T, svc *AuthService) (*domain.User, string) {
	t.Helper()

	user, token, sess, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Jane Doe",
		Email:    "jane@example.com",
		Password: "Secret123",
		Role:     domain.UserRoleCitizen,
		Location: "Chennai",
	})
	require.NoError(t, err)
	require.NotNil(t, sess)
	return user, token
}

func TestRegister_Success(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	user, token := registerJane(t, svc)

	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "jane@example.com", user.Email)
	assert.Equal(t, domain.UserRoleCitizen, user.Role)
	assert.Equal(t, "Chennai", user.Location)
	assert.False(t, user.Verified)
	assert.NotEmpty(t, token)
	assert.NotEqual(t, "Secret123", user.PasswordHash)
}

func TestRegister_NormalizesEmailAndDefaultsRole(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	user, _, _, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Ravi",
		Email:    "  Ravi@Example.COM ",
		Password: "Secret123",
	})
	require.NoError(t, err)
	assert.Equal(t, "ravi@example.com", user.Email)
	assert.Equal(t, domain.UserRoleCitizen, user.Role)
}

func TestRegister_Validation(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)

	tests := []struct {
		name  string
		input RegisterInput
	}{
		{"missing name", RegisterInput{Email: "a@b.com", Password: "Secret123"}},
		{"missing email", RegisterInput{Name: "A", Password: "Secret123"}},
		{"malformed email", RegisterInput{Name: "A", Email: "not-an-email", Password: "Secret123"}},
		{"short password", RegisterInput{Name: "A", Email: "a@b.com", Password: "short"}},
		{"unknown role", RegisterInput{Name: "A", Email: "a@b.com", Password: "Secret123", Role: "admin"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, _, _, err := svc.Register(context.Background(), tc.input)
			require.Error(t, err)
			domainErr := apperrors.ToDomainError(err)
			assert.Equal(t, 400, domainErr.HTTPStatus)
		})
	}
}

func TestRegister_DuplicateEmailCaseInsensitive(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	registerJane(t, svc)

	_, _, _, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Jane Clone",
		Email:    "JANE@Example.com",
		Password: "Another123",
	})
	require.Error(t, err)
	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, 409, domainErr.HTTPStatus)

	// First account is untouched and still able to log in.
	user, _, _, err := svc.Login(context.Background(), "jane@example.com", "Secret123")
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", user.Name)
}

func TestLogin_FailuresAreIndistinguishable(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	registerJane(t, svc)

	_, _, _, errWrongPassword := svc.Login(context.Background(), "jane@example.com", "wrongpassword")
	_, _, _, errUnknownEmail := svc.Login(context.Background(), "nosuchuser@example.com", "anything")

	require.Error(t, errWrongPassword)
	require.Error(t, errUnknownEmail)

	wrongPw := apperrors.ToDomainError(errWrongPassword)
	unknown := apperrors.ToDomainError(errUnknownEmail)
	assert.Equal(t, wrongPw.HTTPStatus, unknown.HTTPStatus)
	assert.Equal(t, wrongPw.Message, unknown.Message)
	assert.Equal(t, 401, wrongPw.HTTPStatus)
}

func TestCurrentUser_RoundTrip(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	registered, token := registerJane(t, svc)

	current, err := svc.CurrentUser(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, current.ID)
	assert.Equal(t, registered.Email, current.Email)
}

func TestCurrentUser_InvalidArtifacts(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)

	for _, artifact := range []string{"", "garbage", "a.b.c"} {
		_, err := svc.CurrentUser(context.Background(), artifact)
		require.Error(t, err)
		assert.Equal(t, 401, apperrors.ToDomainError(err).HTTPStatus)
	}
}

func TestCurrentUser_DeletedUserFails(t *testing.T) {
	t.Parallel()

	svc, repo := newTestService(t)
	user, token := registerJane(t, svc)

	require.NoError(t, repo.Delete(context.Background(), user.ID))

	_, err := svc.CurrentUser(context.Background(), token)
	require.Error(t, err)
	assert.Equal(t, 401, apperrors.ToDomainError(err).HTTPStatus)
}

func TestLogout_RevokesSessionAndIsIdempotent(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	_, token := registerJane(t, svc)

	ctx := context.Background()

	_, err := svc.CurrentUser(ctx, token)
	require.NoError(t, err)

	svc.Logout(ctx, token)

	_, err = svc.CurrentUser(ctx, token)
	require.Error(t, err)
	assert.Equal(t, 401, apperrors.ToDomainError(err).HTTPStatus)

	// Second logout with the already-invalidated artifact must not blow up.
	svc.Logout(ctx, token)
	svc.Logout(ctx, "")
	svc.Logout(ctx, "garbage")
}

func TestLogin_TokensAreIndependentSessions(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	registerJane(t, svc)

	ctx := context.Background()

	_, first, _, err := svc.Login(ctx, "jane@example.com", "Secret123")
	require.NoError(t, err)
	_, second, _, err := svc.Login(ctx, "jane@example.com", "Secret123")
	require.NoError(t, err)

	svc.Logout(ctx, first)

	_, err = svc.CurrentUser(ctx, first)
	assert.Error(t, err)

	_, err = svc.CurrentUser(ctx, second)
	assert.NoError(t, err)
}
