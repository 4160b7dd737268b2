package accountd_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	accountd "github.com/venzell/accountd"
)

func TestSignupHandler(t *testing.T) {
	db, repo := setupTestDB(t)
	ctx := context.Background()

	mailer := &capturingMailer{}
	handler := accountd.NewSignupHandler(repo, mailer, 24*time.Hour, 4)

	var res *accountd.SignupResponse
	err := handler.Execute(ctx, accountd.SignupMessage{
		Email:    "new@example.com",
		Password: "securePassword123!",
		BaseURL:  "http://localhost:3000",
		OnResponse: func(r *accountd.SignupResponse) {
			res = r
		},
	})
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, "new@example.com", res.Email)

	record := &accountd.Account{}
	err = db.NewSelect().Model(record).Where("email = ?", "new@example.com").Scan(ctx)
	require.NoError(t, err)
	assert.Equal(t, res.AccountID, record.ID)
	assert.False(t, record.IsConfirmed)
	require.NotNil(t, record.ConfirmationToken)
	require.NotNil(t, record.ConfirmationTokenExpiresAt)
	assert.True(t, record.ConfirmationTokenExpiresAt.After(time.Now()))

	// The stored password is hashed, never the plaintext.
	assert.NotEqual(t, "securePassword123!", record.PasswordHash)
	assert.NoError(t, accountd.ComparePasswordAndHash("securePassword123!", record.PasswordHash))

	sent := mailer.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "new@example.com", sent[0].To)
	assert.Contains(t, sent[0].TextBody, accountd.ConfirmationLink("http://localhost:3000", *record.ConfirmationToken))
}

func TestSignupHandlerDuplicateEmail(t *testing.T) {
	_, repo := setupTestDB(t)
	ctx := context.Background()

	mailer := &capturingMailer{}
	handler := accountd.NewSignupHandler(repo, mailer, 24*time.Hour, 4)

	msg := accountd.SignupMessage{
		Email:    "taken@example.com",
		Password: "securePassword123!",
		BaseURL:  "http://localhost:3000",
	}

	require.NoError(t, handler.Execute(ctx, msg))

	err := handler.Execute(ctx, msg)
	require.Error(t, err)
	assert.True(t, accountd.IsDuplicateEmail(err))

	// Only the first signup dispatched an email.
	assert.Len(t, mailer.Sent(), 1)
}

func TestSignupHandlerMailerFailureRollsBack(t *testing.T) {
	db, repo := setupTestDB(t)
	ctx := context.Background()

	mailer := &MockMailer{}
	mailer.On("Send", mock.Anything, mock.Anything).Return(errors.New("smtp unreachable"))

	handler := accountd.NewSignupHandler(repo, mailer, 24*time.Hour, 4)

	err := handler.Execute(ctx, accountd.SignupMessage{
		Email:    "unlucky@example.com",
		Password: "securePassword123!",
		BaseURL:  "http://localhost:3000",
	})
	require.Error(t, err)

	count, err := db.NewSelect().Model((*accountd.Account)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count, "mailer failure must roll back the account row")

	mailer.AssertExpectations(t)
}

func TestSignupHandlerRejectsCancelledContext(t *testing.T) {
	_, repo := setupTestDB(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	handler := accountd.NewSignupHandler(repo, &capturingMailer{}, 24*time.Hour, 4)
	err := handler.Execute(ctx, accountd.SignupMessage{
		Email:    "never@example.com",
		Password: "securePassword123!",
	})
	assert.Error(t, err)
}
