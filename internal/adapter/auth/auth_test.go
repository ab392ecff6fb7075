package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"

	apperrors "wallet-account-service/pkg/errors"
)

func setupTestService(t *testing.T) (*Service, *miniredis.Miniredis) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&IdentitySchema{}))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	svc := NewService(db, rdb, time.Hour, zaptest.NewLogger(t))
	return svc, mr
}

func TestCreateIdentity(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()

	id, err := svc.CreateIdentity(ctx, "alice@example.com", "s3cretpass")
	require.NoError(t, err)
	assert.NotEmpty(t, id)
}

func TestCreateIdentity_DuplicateEmail(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()

	_, err := svc.CreateIdentity(ctx, "alice@example.com", "s3cretpass")
	require.NoError(t, err)

	_, err = svc.CreateIdentity(ctx, "alice@example.com", "otherpass")
	var pErr *apperrors.PersistenceError
	assert.ErrorAs(t, err, &pErr)
}

func TestDeleteIdentity(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()

	id, err := svc.CreateIdentity(ctx, "alice@example.com", "s3cretpass")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteIdentity(ctx, id))

	// Deleted identities can no longer log in.
	_, err = svc.Login(ctx, "alice@example.com", "s3cretpass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestDeleteIdentity_Missing(t *testing.T) {
	svc, _ := setupTestService(t)

	err := svc.DeleteIdentity(context.Background(), "missing")
	var nfErr *apperrors.NotFoundError
	assert.ErrorAs(t, err, &nfErr)
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()

	_, err := svc.CreateIdentity(ctx, "alice@example.com", "s3cretpass")
	require.NoError(t, err)

	token, err := svc.Login(ctx, "alice@example.com", "wrong")
	assert.Empty(t, token)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_UnknownEmail(t *testing.T) {
	svc, _ := setupTestService(t)

	token, err := svc.Login(context.Background(), "ghost@example.com", "whatever")
	assert.Empty(t, token)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginResolveLogout_Roundtrip(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()

	id, err := svc.CreateIdentity(ctx, "alice@example.com", "s3cretpass")
	require.NoError(t, err)

	token, err := svc.Login(ctx, "alice@example.com", "s3cretpass")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	session, err := svc.ResolveSession(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, id, session.UserID)
	assert.Equal(t, "alice@example.com", session.Email)

	require.NoError(t, svc.Logout(ctx, token))

	_, err = svc.ResolveSession(ctx, token)
	var nfErr *apperrors.NotFoundError
	assert.ErrorAs(t, err, &nfErr)
}

func TestResolveSession_EmptyToken(t *testing.T) {
	svc, _ := setupTestService(t)

	session, err := svc.ResolveSession(context.Background(), "")
	assert.Nil(t, session)
	var nfErr *apperrors.NotFoundError
	assert.ErrorAs(t, err, &nfErr)
}

func TestResolveSession_ExpiredToken(t *testing.T) {
	svc, mr := setupTestService(t)
	ctx := context.Background()

	_, err := svc.CreateIdentity(ctx, "alice@example.com", "s3cretpass")
	require.NoError(t, err)

	token, err := svc.Login(ctx, "alice@example.com", "s3cretpass")
	require.NoError(t, err)

	mr.FastForward(2 * time.Hour)

	_, err = svc.ResolveSession(ctx, token)
	var nfErr *apperrors.NotFoundError
	assert.ErrorAs(t, err, &nfErr)
}

func TestLogout_UnknownTokenIgnored(t *testing.T) {
	svc, _ := setupTestService(t)

	assert.NoError(t, svc.Logout(context.Background(), "never-issued"))
	assert.NoError(t, svc.Logout(context.Background(), ""))
}
