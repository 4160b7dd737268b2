package accountd_test

import (
	"context"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	accountd "github.com/venzell/accountd"
)

func newUnconfirmedAccount(t *testing.T, email, token string, expiresAt time.Time) *accountd.Account {
	t.Helper()

	hash, err := accountd.HashPasswordWithCost("password123!", 4)
	require.NoError(t, err)

	return &accountd.Account{
		Email:                      email,
		PasswordHash:               hash,
		ConfirmationToken:          &token,
		ConfirmationTokenExpiresAt: &expiresAt,
	}
}

func TestCreateAccount(t *testing.T) {
	_, repo := setupTestDB(t)
	ctx := context.Background()

	record := newUnconfirmedAccount(t, "new@example.com", "tok-create", time.Now().Add(time.Hour))

	created, err := repo.Accounts().CreateAccount(ctx, record)
	require.NoError(t, err)
	assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", created.ID.String())
	assert.Equal(t, "new@example.com", created.Email)
	assert.False(t, created.IsConfirmed)
}

func TestCreateAccountDuplicateEmail(t *testing.T) {
	db, repo := setupTestDB(t)
	ctx := context.Background()

	first := newUnconfirmedAccount(t, "taken@example.com", "tok-one", time.Now().Add(time.Hour))
	_, err := repo.Accounts().CreateAccount(ctx, first)
	require.NoError(t, err)

	second := newUnconfirmedAccount(t, "taken@example.com", "tok-two", time.Now().Add(time.Hour))
	_, err = repo.Accounts().CreateAccount(ctx, second)
	require.Error(t, err)
	assert.True(t, accountd.IsDuplicateEmail(err))

	var richErr *goerrors.Error
	require.True(t, goerrors.As(err, &richErr))
	assert.Equal(t, "taken@example.com", richErr.Metadata["email"])

	count, err := db.NewSelect().Model((*accountd.Account)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count, "failed insert must not leave a partial row")
}

func TestFindPasswordHashByEmail(t *testing.T) {
	_, repo := setupTestDB(t)
	ctx := context.Background()

	record := newUnconfirmedAccount(t, "lookup@example.com", "tok-lookup", time.Now().Add(time.Hour))
	created, err := repo.Accounts().CreateAccount(ctx, record)
	require.NoError(t, err)

	found, err := repo.Accounts().FindPasswordHashByEmail(ctx, "lookup@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
	assert.Equal(t, created.PasswordHash, found.PasswordHash)
	assert.False(t, found.IsConfirmed)
}

func TestFindPasswordHashByEmailNotFound(t *testing.T) {
	_, repo := setupTestDB(t)

	_, err := repo.Accounts().FindPasswordHashByEmail(context.Background(), "ghost@example.com")
	require.Error(t, err)
	assert.True(t, repository.IsRecordNotFound(err))
}

func TestConfirmByToken(t *testing.T) {
	_, repo := setupTestDB(t)
	ctx := context.Background()

	record := newUnconfirmedAccount(t, "confirm@example.com", "tok-confirm", time.Now().Add(time.Hour))
	created, err := repo.Accounts().CreateAccount(ctx, record)
	require.NoError(t, err)

	confirmed, err := repo.Accounts().ConfirmByToken(ctx, "tok-confirm", time.Now())
	require.NoError(t, err)
	assert.Equal(t, created.ID, confirmed.ID)
	assert.True(t, confirmed.IsConfirmed)
	assert.Nil(t, confirmed.ConfirmationToken)
	assert.Nil(t, confirmed.ConfirmationTokenExpiresAt)

	// The token is single use.
	_, err = repo.Accounts().ConfirmByToken(ctx, "tok-confirm", time.Now())
	require.Error(t, err)
	assert.True(t, isInvalidOrExpiredToken(err))
}

func TestConfirmByTokenExpired(t *testing.T) {
	_, repo := setupTestDB(t)
	ctx := context.Background()

	record := newUnconfirmedAccount(t, "late@example.com", "tok-late", time.Now().Add(-time.Minute))
	_, err := repo.Accounts().CreateAccount(ctx, record)
	require.NoError(t, err)

	_, err = repo.Accounts().ConfirmByToken(ctx, "tok-late", time.Now())
	require.Error(t, err)
	assert.True(t, isInvalidOrExpiredToken(err))
}

func TestConfirmByTokenUnknownOrEmpty(t *testing.T) {
	_, repo := setupTestDB(t)
	ctx := context.Background()

	_, err := repo.Accounts().ConfirmByToken(ctx, "never-issued", time.Now())
	require.Error(t, err)
	assert.True(t, isInvalidOrExpiredToken(err))

	_, err = repo.Accounts().ConfirmByToken(ctx, "", time.Now())
	require.Error(t, err)
	assert.True(t, isInvalidOrExpiredToken(err))
}

func isInvalidOrExpiredToken(err error) bool {
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr.TextCode == accountd.ErrInvalidOrExpiredToken.TextCode
	}
	return false
}
