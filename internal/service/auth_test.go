package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notableapp/notable-server/internal/errors"
)

func TestRegister(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user, pair, err := env.auth.Register(ctx, RegisterInput{
		Email:       "  Alice@Example.COM ",
		Password:    "password123",
		DisplayName: "Alice",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email, "email is normalized")
	assert.Equal(t, "Alice", user.DisplayName)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)

	claims, err := env.auth.VerifyAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.registerUser(t, "alice@example.com")

	_, _, err := env.auth.Register(ctx, RegisterInput{
		Email:    "ALICE@example.com",
		Password: "password123",
	})
	assert.True(t, errors.Is(err, errors.ErrAlreadyExists))
}

func TestRegister_EmptyPassword(t *testing.T) {
	env := newTestEnv(t)

	_, _, err := env.auth.Register(context.Background(), RegisterInput{
		Email:    "alice@example.com",
		Password: "",
	})
	assert.True(t, errors.Is(err, errors.ErrValidation))
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	registered := env.registerUser(t, "alice@example.com")

	user, pair, err := env.auth.Login(ctx, "alice@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
	assert.False(t, user.LastLoginAt.IsZero())
	assert.NotEmpty(t, pair.AccessToken)
}

func TestLogin_IndistinguishableFailures(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.registerUser(t, "alice@example.com")

	_, _, wrongPassword := env.auth.Login(ctx, "alice@example.com", "nope")
	_, _, unknownEmail := env.auth.Login(ctx, "nobody@example.com", "password123")

	require.Error(t, wrongPassword)
	require.Error(t, unknownEmail)
	assert.True(t, errors.Is(wrongPassword, errors.ErrInvalidCredentials))
	assert.True(t, errors.Is(unknownEmail, errors.ErrInvalidCredentials))
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error(), "wrong password and unknown email must read the same")
}

func TestRefresh_RotatesSession(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, pair, err := env.auth.Register(ctx, RegisterInput{
		Email:    "alice@example.com",
		Password: "password123",
	})
	require.NoError(t, err)

	_, rotated, err := env.auth.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, pair.RefreshToken, rotated.RefreshToken)

	// The old token was consumed by the rotation.
	_, _, err = env.auth.Refresh(ctx, pair.RefreshToken)
	assert.True(t, errors.Is(err, errors.ErrUnauthorized))

	// The new one works.
	_, _, err = env.auth.Refresh(ctx, rotated.RefreshToken)
	assert.NoError(t, err)
}

func TestRefresh_UnknownToken(t *testing.T) {
	env := newTestEnv(t)

	_, _, err := env.auth.Refresh(context.Background(), "not-a-token")
	assert.True(t, errors.Is(err, errors.ErrUnauthorized))
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, pair, err := env.auth.Register(ctx, RegisterInput{
		Email:    "alice@example.com",
		Password: "password123",
	})
	require.NoError(t, err)

	require.NoError(t, env.auth.Logout(ctx, pair.RefreshToken))

	_, _, err = env.auth.Refresh(ctx, pair.RefreshToken)
	assert.True(t, errors.Is(err, errors.ErrUnauthorized))

	// Logging out twice is fine.
	assert.NoError(t, env.auth.Logout(ctx, pair.RefreshToken))
}

func TestVerifyAccessToken_Garbage(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.auth.VerifyAccessToken("v4.local.garbage")
	assert.True(t, errors.Is(err, errors.ErrUnauthorized))
}

func TestGetUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.registerUser(t, "alice@example.com")

	got, err := env.auth.GetUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, alice.Email, got.Email)

	_, err = env.auth.GetUser(ctx, "user-missing")
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}
