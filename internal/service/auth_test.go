package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodgram/backend/internal/testhelpers"
)

func TestRegisterAndLogin(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := NewAuthService(db, nil, "test-secret")
	ctx := context.Background()

	token, err := svc.Register(ctx, "alice@example.com", "alice", "Alice", "Smith", "s3cret")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)

	loginToken, err := svc.Login(ctx, "alice@example.com", "s3cret")
	require.NoError(t, err)

	loginClaims, err := svc.ValidateToken(loginToken)
	require.NoError(t, err)
	assert.Equal(t, claims.UserID, loginClaims.UserID)

	user, err := svc.GetUser(ctx, claims.UserID)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.NotEqual(t, "s3cret", user.PasswordHash)
}

func TestRegisterDuplicate(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := NewAuthService(db, nil, "test-secret")
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice@example.com", "alice", "Alice", "", "s3cret")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "alice@example.com", "alice2", "Alice", "", "s3cret")
	assert.ErrorIs(t, err, ErrAlreadyExists)

	_, err = svc.Register(ctx, "other@example.com", "alice", "Alice", "", "s3cret")
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestLoginWrongPassword(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := NewAuthService(db, nil, "test-secret")
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice@example.com", "alice", "Alice", "", "s3cret")
	require.NoError(t, err)

	_, err = svc.Login(ctx, "alice@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody@example.com", "s3cret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := NewAuthService(db, nil, "test-secret")

	token, err := svc.Register(context.Background(), "alice@example.com", "alice", "Alice", "", "s3cret")
	require.NoError(t, err)

	other := NewAuthService(db, nil, "another-secret")
	_, err = other.ValidateToken(token)
	assert.Error(t, err)
}
