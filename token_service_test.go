package accountd_test

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	accountd "github.com/venzell/accountd"
)

func newTestTokenService() accountd.TokenService {
	return accountd.NewTokenService(
		testSigningKey(),
		"accountd",
		24*time.Hour,
		30*24*time.Hour,
		nil,
	)
}

func TestTokenServiceGenerateAndValidate(t *testing.T) {
	ts := newTestTokenService()

	token, expiresAt, err := ts.Generate("account-123", "user@example.com", false)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	assert.WithinDuration(t, time.Now().Add(24*time.Hour), expiresAt, 5*time.Second)

	claims, err := ts.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "account-123", claims.AccountID())
	assert.Equal(t, "user@example.com", claims.Email)
	assert.Equal(t, "accountd", claims.Issuer)
}

func TestTokenServiceGenerateExtended(t *testing.T) {
	ts := newTestTokenService()

	_, expiresAt, err := ts.Generate("account-123", "user@example.com", true)
	require.NoError(t, err)

	assert.WithinDuration(t, time.Now().Add(30*24*time.Hour), expiresAt, 5*time.Second)
}

func TestTokenServiceValidateTampered(t *testing.T) {
	ts := newTestTokenService()

	token, _, err := ts.Generate("account-123", "user@example.com", false)
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	tampered := parts[0] + "." + parts[1] + ".AAAAAAAAAAAAAAAAAAAAAA"

	_, err = ts.Validate(tampered)
	assert.Error(t, err)

	var richErr *goerrors.Error
	require.True(t, goerrors.As(err, &richErr))
	assert.Equal(t, accountd.ErrTokenMalformed.TextCode, richErr.TextCode)
}

func TestTokenServiceValidateWrongKey(t *testing.T) {
	ts := newTestTokenService()
	other := accountd.NewTokenService([]byte("another-signing-key-for-testing!"), "accountd", time.Hour, time.Hour, nil)

	token, _, err := other.Generate("account-123", "user@example.com", false)
	require.NoError(t, err)

	_, err = ts.Validate(token)
	assert.Error(t, err)
}

func TestTokenServiceValidateExpired(t *testing.T) {
	ts := newTestTokenService()

	claims := &accountd.SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "accountd",
			Subject:   "account-123",
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
		Email: "user@example.com",
	}

	token, err := ts.SignClaims(claims)
	require.NoError(t, err)

	_, err = ts.Validate(token)
	assert.ErrorIs(t, err, accountd.ErrTokenExpired)
}

func TestTokenServiceValidateWrongIssuer(t *testing.T) {
	ts := newTestTokenService()
	other := accountd.NewTokenService(testSigningKey(), "someone-else", time.Hour, time.Hour, nil)

	token, _, err := other.Generate("account-123", "user@example.com", false)
	require.NoError(t, err)

	_, err = ts.Validate(token)
	assert.Error(t, err)
}
