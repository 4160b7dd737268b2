package accountd

import (
	"context"
	"fmt"
	"time"
)

// Logger is the minimal logging surface the package depends on. The
// process entrypoint injects a glog-backed implementation; components
// fall back to defLogger when none is provided.
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Error(format string, args ...any)
}

// Mailer delivers a single message. Implementations may fail
// independently of the database; the signup workflow runs the send
// inside the store transaction so both commit or abort together.
type Mailer interface {
	Send(ctx context.Context, email Email) error
}

// Email is the message handed to a Mailer.
type Email struct {
	To       string
	Subject  string
	TextBody string
}

// TokenService mints and validates signed session tokens.
type TokenService interface {
	Generate(accountID, email string, extended bool) (string, time.Time, error)
	SignClaims(claims *SessionClaims) (string, error)
	Validate(tokenString string) (*SessionClaims, error)
}

// SessionAuthenticator verifies credentials and mints session tokens.
type SessionAuthenticator interface {
	Login(ctx context.Context, email, password string, rememberMe bool) (string, time.Time, error)
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] ACCOUNTD "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] ACCOUNTD "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] ACCOUNTD "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
