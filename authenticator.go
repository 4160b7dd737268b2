package accountd

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
)

// Auther is the session issuer: it verifies credentials against the
// account store and mints a signed, time-bounded session token.
type Auther struct {
	repo   RepositoryManager
	tokens TokenService
	logger Logger
}

var _ SessionAuthenticator = (*Auther)(nil)

// NewAuthenticator returns a new session authenticator
func NewAuthenticator(repo RepositoryManager, tokens TokenService) *Auther {
	return &Auther{
		repo:   repo,
		tokens: tokens,
		logger: defLogger{},
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// TokenService returns the TokenService instance used by this authenticator
func (s *Auther) TokenService() TokenService {
	return s.tokens
}

// Login verifies the credentials and mints a session token. An unknown
// email and a wrong password produce the identical ErrInvalidCredentials;
// nothing in the result reveals which check failed. Confirmation status
// does not gate login.
func (s *Auther) Login(ctx context.Context, email, password string, rememberMe bool) (string, time.Time, error) {
	account, err := s.repo.Accounts().FindPasswordHashByEmail(ctx, email)
	if err != nil {
		if goerrors.IsNotFound(err) || repository.IsRecordNotFound(err) {
			// Burn a comparison anyway so the missing-account path does
			// not return measurably faster than a wrong password.
			_ = ComparePasswordAndHash(password, burnHash)
			return "", time.Time{}, ErrInvalidCredentials
		}
		return "", time.Time{}, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve account during login")
	}

	if err := ComparePasswordAndHash(password, account.PasswordHash); err != nil {
		if !goerrors.Is(err, ErrMismatchedHashAndPassword) {
			s.logger.Error("login hit a malformed password digest", "account_id", account.ID, "error", err)
		}
		return "", time.Time{}, ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.Generate(account.ID.String(), account.Email, rememberMe)
	if err != nil {
		s.logger.Error("login failed to mint session token", "error", err)
		return "", time.Time{}, err
	}

	return token, expiresAt, nil
}

// burnHash is a throwaway bcrypt digest compared against when no account
// matches, keeping both negative paths on the same cost curve.
var burnHash = func() string {
	h, err := HashPassword("accountd.burn-in")
	if err != nil {
		return "$2a$12$C6UzMDM.H6dfI/f/IKcEeO7ZBpCtfbsUy1sDOqVngPWVmybwVbMwG"
	}
	return h
}()
