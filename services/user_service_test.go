package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"oauth-backend/domain"
	"oauth-backend/inmem"
	"oauth-backend/internal/auth"
	"oauth-backend/services"
)

func newTestService() *services.UserService {
	return services.NewUserService(
		inmem.NewUserRepository(),
		auth.NewBcryptPasswordHasher(bcrypt.MinCost),
		"keycloak",
	)
}

func TestRegister(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	user, err := svc.Register(ctx, "Alice", "alice@example.com", "s3cret")
	require.NoError(t, err)

	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "Alice", user.Name)
	assert.Equal(t, domain.AuthProviderLocal, user.AuthProvider)
	assert.NotEmpty(t, user.PasswordHash)
	assert.NotEqual(t, "s3cret", user.PasswordHash, "plaintext must never be stored")
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "Alice", "alice@example.com", "s3cret")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "Other Alice", "alice@example.com", "different")
	assert.ErrorIs(t, err, domain.ErrDuplicateEmail)
}

func TestAuthenticate(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	registered, err := svc.Register(ctx, "Alice", "alice@example.com", "s3cret")
	require.NoError(t, err)

	user, err := svc.Authenticate(ctx, "alice@example.com", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
}

func TestAuthenticate_Uniform_Failure(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "Alice", "alice@example.com", "s3cret")
	require.NoError(t, err)

	_, wrongPassword := svc.Authenticate(ctx, "alice@example.com", "nope")
	_, unknownEmail := svc.Authenticate(ctx, "bob@example.com", "nope")

	assert.ErrorIs(t, wrongPassword, domain.ErrInvalidCredentials)
	assert.ErrorIs(t, unknownEmail, domain.ErrInvalidCredentials)
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error(),
		"responses must not distinguish unknown email from wrong password")
}

func TestAuthenticate_OAuthUserHasNoPassword(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	user, err := svc.ReconcileOAuthUser(ctx, "Alice", "alice@example.com", "ext-1")
	require.NoError(t, err)
	assert.Empty(t, user.PasswordHash)

	_, err = svc.Authenticate(ctx, "alice@example.com", "anything")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestReconcileOAuthUser_CreatesOnFirstLogin(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	user, err := svc.ReconcileOAuthUser(ctx, "Alice", "alice@example.com", "ext-1")
	require.NoError(t, err)

	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "keycloak", user.AuthProvider)
	assert.Equal(t, "ext-1", user.ExternalID)
	assert.Empty(t, user.PasswordHash)
}

func TestReconcileOAuthUser_UpdatesOnLaterLogins(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	first, err := svc.ReconcileOAuthUser(ctx, "Alice", "alice@example.com", "ext-1")
	require.NoError(t, err)

	second, err := svc.ReconcileOAuthUser(ctx, "Alice Smith", "alice.smith@example.com", "ext-1")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID, "same external id must map to one user")
	assert.Equal(t, "Alice Smith", second.Name)
	assert.Equal(t, "alice.smith@example.com", second.Email)
}

func TestReconcileOAuthUser_LinksExistingEmail(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	registered, err := svc.Register(ctx, "Alice", "alice@example.com", "s3cret")
	require.NoError(t, err)

	reconciled, err := svc.ReconcileOAuthUser(ctx, "Alice K", "alice@example.com", "ext-1")
	require.NoError(t, err)

	assert.Equal(t, registered.ID, reconciled.ID, "matching email links to the existing record")
	assert.Equal(t, "ext-1", reconciled.ExternalID)
}

func TestReconcileOAuthUser_MissingSubject(t *testing.T) {
	svc := newTestService()

	_, err := svc.ReconcileOAuthUser(context.Background(), "Alice", "alice@example.com", "")
	assert.ErrorIs(t, err, domain.ErrReconciliation)
}
