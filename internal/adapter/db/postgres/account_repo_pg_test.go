package postgres

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"

	"wallet-account-service/internal/domain/account"
	apperrors "wallet-account-service/pkg/errors"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&ProfileSchema{}, &NotificationSchema{})
	require.NoError(t, err)

	return db
}

func seedProfile(t *testing.T, repo *AccountRepoPG, id, email, username string, balance int64) *account.Account {
	a := &account.Account{
		ID:       id,
		Email:    email,
		FullName: "Test User",
		Username: username,
		Balance:  balance,
	}
	require.NoError(t, repo.Insert(context.Background(), a))
	return a
}

func TestAccountRepo_InsertAndGetByID(t *testing.T) {
	repo := NewAccountRepoPG(setupTestDB(t), zaptest.NewLogger(t))
	ctx := context.Background()

	seedProfile(t, repo, "id-1", "alice@example.com", "alice", 13000000)

	got, err := repo.GetByID(ctx, "id-1")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", got.Email)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, int64(13000000), got.Balance)
	assert.False(t, got.IsAdmin)
}

func TestAccountRepo_InsertNil(t *testing.T) {
	repo := NewAccountRepoPG(setupTestDB(t), zaptest.NewLogger(t))

	err := repo.Insert(context.Background(), nil)
	assert.Error(t, err)
}

func TestAccountRepo_InsertDuplicateEmail(t *testing.T) {
	repo := NewAccountRepoPG(setupTestDB(t), zaptest.NewLogger(t))
	ctx := context.Background()

	seedProfile(t, repo, "id-1", "alice@example.com", "alice", 0)

	err := repo.Insert(ctx, &account.Account{ID: "id-2", Email: "alice@example.com", Username: "alice2"})
	var pErr *apperrors.PersistenceError
	assert.ErrorAs(t, err, &pErr)
}

func TestAccountRepo_GetByID_NotFound(t *testing.T) {
	repo := NewAccountRepoPG(setupTestDB(t), zaptest.NewLogger(t))

	got, err := repo.GetByID(context.Background(), "missing")
	assert.Nil(t, got)
	var nfErr *apperrors.NotFoundError
	assert.ErrorAs(t, err, &nfErr)
}

func TestAccountRepo_ListAll_OrderedByUsername(t *testing.T) {
	repo := NewAccountRepoPG(setupTestDB(t), zaptest.NewLogger(t))
	ctx := context.Background()

	seedProfile(t, repo, "id-1", "zoe@example.com", "zoe", 100)
	seedProfile(t, repo, "id-2", "bob@example.com", "bob", 200)
	seedProfile(t, repo, "id-3", "amy@example.com", "amy", 300)

	accounts, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, accounts, 3)
	assert.Equal(t, "amy", accounts[0].Username)
	assert.Equal(t, "bob", accounts[1].Username)
	assert.Equal(t, "zoe", accounts[2].Username)
}

func TestAccountRepo_ListAll_Empty(t *testing.T) {
	repo := NewAccountRepoPG(setupTestDB(t), zaptest.NewLogger(t))

	accounts, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, accounts)
}

func TestAccountRepo_UpdateProfile_PartialFields(t *testing.T) {
	repo := NewAccountRepoPG(setupTestDB(t), zaptest.NewLogger(t))
	ctx := context.Background()

	seedProfile(t, repo, "id-1", "alice@example.com", "alice", 500)

	newName := "Alice Cooper"
	verified := true
	err := repo.UpdateProfile(ctx, "id-1", account.ProfileUpdate{
		FullName:   &newName,
		IsVerified: &verified,
	})
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, "id-1")
	require.NoError(t, err)
	assert.Equal(t, "Alice Cooper", got.FullName)
	assert.True(t, got.IsVerified)
	// Untouched fields keep their values.
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, int64(500), got.Balance)
}

func TestAccountRepo_UpdateProfile_EmptyIsNoop(t *testing.T) {
	repo := NewAccountRepoPG(setupTestDB(t), zaptest.NewLogger(t))

	err := repo.UpdateProfile(context.Background(), "missing", account.ProfileUpdate{})
	assert.NoError(t, err)
}

func TestAccountRepo_UpdateProfile_MissingRow(t *testing.T) {
	repo := NewAccountRepoPG(setupTestDB(t), zaptest.NewLogger(t))

	name := "Nobody"
	err := repo.UpdateProfile(context.Background(), "missing", account.ProfileUpdate{FullName: &name})
	var nfErr *apperrors.NotFoundError
	assert.ErrorAs(t, err, &nfErr)
}

func TestAccountRepo_UpdateBalance(t *testing.T) {
	repo := NewAccountRepoPG(setupTestDB(t), zaptest.NewLogger(t))
	ctx := context.Background()

	seedProfile(t, repo, "id-1", "alice@example.com", "alice", 13000000)

	err := repo.UpdateBalance(ctx, "id-1", 13005000)
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, "id-1")
	require.NoError(t, err)
	assert.Equal(t, int64(13005000), got.Balance)
}

func TestAccountRepo_UpdateBalance_RejectsNegative(t *testing.T) {
	repo := NewAccountRepoPG(setupTestDB(t), zaptest.NewLogger(t))
	ctx := context.Background()

	seedProfile(t, repo, "id-1", "alice@example.com", "alice", 100)

	err := repo.UpdateBalance(ctx, "id-1", -1)
	assert.Error(t, err)

	got, err := repo.GetByID(ctx, "id-1")
	require.NoError(t, err)
	assert.Equal(t, int64(100), got.Balance, "a rejected write must leave the row untouched")
}

func TestAccountRepo_UpdateBalance_MissingRow(t *testing.T) {
	repo := NewAccountRepoPG(setupTestDB(t), zaptest.NewLogger(t))

	err := repo.UpdateBalance(context.Background(), "missing", 100)
	var nfErr *apperrors.NotFoundError
	assert.ErrorAs(t, err, &nfErr)
}

func TestAccountRepo_UpdateBalance_ZeroAllowed(t *testing.T) {
	repo := NewAccountRepoPG(setupTestDB(t), zaptest.NewLogger(t))
	ctx := context.Background()

	seedProfile(t, repo, "id-1", "alice@example.com", "alice", 100)

	err := repo.UpdateBalance(ctx, "id-1", 0)
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, "id-1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), got.Balance)
}

func TestAccountRepo_UpdateBalance_ScopedToOneRow(t *testing.T) {
	repo := NewAccountRepoPG(setupTestDB(t), zaptest.NewLogger(t))
	ctx := context.Background()

	seedProfile(t, repo, "id-1", "alice@example.com", "alice", 100)
	seedProfile(t, repo, "id-2", "bob@example.com", "bob", 200)

	require.NoError(t, repo.UpdateBalance(ctx, "id-1", 150))

	other, err := repo.GetByID(ctx, "id-2")
	require.NoError(t, err)
	assert.Equal(t, int64(200), other.Balance)
}
