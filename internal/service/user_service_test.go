package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/intermeet/backend/internal/repository"
	"github.com/intermeet/backend/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newUserService(t *testing.T) (*service.UserService, *repository.InMemoryUserRepository) {
	t.Helper()

	users := repository.NewInMemoryUserRepository()
	svc, err := service.NewUserService(users, nil, "test-secret", time.Hour)
	require.NoError(t, err)
	return svc, users
}

func TestUserService_Register(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "Alice", "Alice@Example.COM", "longenough")
	require.NoError(t, err)

	assert.Equal(t, "Alice", user.Name)
	assert.Equal(t, "alice@example.com", user.Email, "email is normalized to lower case")
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("longenough")))
	assert.False(t, user.IsGuest)
}

func TestUserService_Register_ShortPassword(t *testing.T) {
	svc, _ := newUserService(t)

	_, err := svc.Register(context.Background(), "Alice", "alice@example.com", "short")
	assert.Error(t, err)
}

func TestUserService_Register_DuplicateEmail(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "Alice", "alice@example.com", "longenough")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "Imposter", "alice@example.com", "longenough")
	assert.ErrorIs(t, err, repository.ErrUserEmailExists)
}

func TestUserService_Login(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, "Alice", "alice@example.com", "longenough")
	require.NoError(t, err)

	token, user, err := svc.Login(ctx, "alice@example.com", "longenough")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, registered.ID, user.ID)

	_, _, err = svc.Login(ctx, "alice@example.com", "wrongpass")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)

	_, _, err = svc.Login(ctx, "nobody@example.com", "longenough")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestUserService_RegisterGuest(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()

	token, user, err := svc.RegisterGuest(ctx, "  Drop-in Dave  ")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "Drop-in Dave", user.Name)
	assert.True(t, user.IsGuest)
	assert.Empty(t, user.Email)

	// Guests can be nameless; several of them may coexist.
	_, first, err := svc.RegisterGuest(ctx, "")
	require.NoError(t, err)
	_, second, err := svc.RegisterGuest(ctx, "   ")
	require.NoError(t, err)
	assert.Equal(t, "Guest", first.Name)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestUserService_UpdateProfile(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "Alice", "alice@example.com", "longenough")
	require.NoError(t, err)

	updated, err := svc.UpdateProfile(ctx, user.ID, "Alice B", "https://cdn.example.com/a.png")
	require.NoError(t, err)
	assert.Equal(t, "Alice B", updated.Name)
	assert.Equal(t, "https://cdn.example.com/a.png", updated.AvatarURL)

	// Blank fields leave the stored values untouched.
	updated, err = svc.UpdateProfile(ctx, user.ID, "", "")
	require.NoError(t, err)
	assert.Equal(t, "Alice B", updated.Name)
	assert.Equal(t, "https://cdn.example.com/a.png", updated.AvatarURL)
}
