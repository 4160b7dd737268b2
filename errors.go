package accountd

import (
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun/driver/pgdriver"
)

// ErrDuplicateEmail is returned when the email uniqueness invariant
// would be violated. It is the one deliberately caller-visible failure
// that reveals account existence.
var ErrDuplicateEmail = goerrors.New("an account with this email already exists", goerrors.CategoryConflict).
	WithTextCode("DUPLICATE_EMAIL").
	WithCode(goerrors.CodeConflict)

// ErrInvalidCredentials is the uniform login failure: wrong password and
// unknown email are indistinguishable to the caller.
var ErrInvalidCredentials = goerrors.New("invalid email or password", goerrors.CategoryAuth).
	WithTextCode("INVALID_CREDENTIALS").
	WithCode(goerrors.CodeBadRequest)

// ErrInvalidOrExpiredToken is the uniform verification failure: wrong,
// expired, and already-used confirmation tokens all report the same way.
var ErrInvalidOrExpiredToken = goerrors.New("invalid or expired token provided", goerrors.CategoryValidation).
	WithTextCode("INVALID_OR_EXPIRED_TOKEN").
	WithCode(goerrors.CodeBadRequest)

// ErrMismatchedHashAndPassword reports a failed password comparison.
var ErrMismatchedHashAndPassword = goerrors.New("password does not match", goerrors.CategoryAuth).
	WithTextCode("PASSWORD_MISMATCH").
	WithCode(goerrors.CodeUnauthorized)

// ErrNoEmptyString rejects empty input to the credential hasher.
var ErrNoEmptyString = goerrors.New("value must not be empty", goerrors.CategoryBadInput).
	WithTextCode("EMPTY_VALUE").
	WithCode(goerrors.CodeBadRequest)

// ErrTokenExpired is returned for session tokens past their embedded expiry.
var ErrTokenExpired = goerrors.New("token is expired", goerrors.CategoryAuth).
	WithTextCode("TOKEN_EXPIRED").
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenMalformed is returned for session tokens that fail to parse or verify.
var ErrTokenMalformed = goerrors.New("token is malformed", goerrors.CategoryAuth).
	WithTextCode("TOKEN_MALFORMED").
	WithCode(goerrors.CodeUnauthorized)

// ErrUnableToFindSession is returned when a request carries no session token.
var ErrUnableToFindSession = goerrors.New("unable to find session", goerrors.CategoryAuth).
	WithTextCode("SESSION_NOT_FOUND").
	WithCode(goerrors.CodeUnauthorized)

// IsUniqueViolation reports whether err is the store's unique-constraint
// error. Postgres surfaces SQLSTATE 23505 through pgdriver; sqlite (used
// in tests and local dev) only exposes the message text.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}

	var pgErr pgdriver.Error
	if goerrors.As(err, &pgErr) {
		return pgErr.Field('C') == "23505"
	}

	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value violates unique constraint")
}

// IsDuplicateEmail reports whether err carries the DUPLICATE_EMAIL code.
func IsDuplicateEmail(err error) bool {
	if err == nil {
		return false
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr.TextCode == ErrDuplicateEmail.TextCode
	}

	return false
}
