package accountd

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// SignupMessage carries a pre-validated signup request: syntactically
// valid email, 8-255 char password.
type SignupMessage struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	// BaseURL is the caller's scheme and host, used to build the
	// confirmation link.
	BaseURL string `json:"-"`
	// UseHashid derives the account id deterministically from the email
	// instead of generating a random one.
	UseHashid  bool
	OnResponse func(*SignupResponse)
}

func (e SignupMessage) Type() string { return "account.signup" }

// SignupResponse is handed to OnResponse after the transaction commits.
type SignupResponse struct {
	AccountID uuid.UUID `json:"userId"`
	Email     string    `json:"email"`
}

// SignupHandler runs the confirmation workflow: hash the password,
// generate a confirmation token, and inside one store transaction create
// the account row and dispatch the confirmation email. A mailer failure
// aborts the transaction, so the row and the email succeed or fail
// together from the caller's point of view.
type SignupHandler struct {
	repo     RepositoryManager
	mailer   Mailer
	tokenTTL time.Duration
	cost     int
}

// NewSignupHandler wires the workflow's collaborators.
func NewSignupHandler(repo RepositoryManager, mailer Mailer, tokenTTL time.Duration, bcryptCost int) *SignupHandler {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &SignupHandler{
		repo:     repo,
		mailer:   mailer,
		tokenTTL: tokenTTL,
		cost:     bcryptCost,
	}
}

func (h *SignupHandler) Execute(ctx context.Context, event SignupMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during signup",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *SignupHandler) execute(ctx context.Context, event SignupMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	hash, err := HashPasswordWithCost(event.Password, h.cost)
	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return goerrors.Wrap(richErr, goerrors.CategoryValidation, "invalid password provided")
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
	}

	token, err := GenerateToken(ConfirmationTokenBytes)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to generate confirmation token")
	}

	expiresAt := time.Now().Add(h.tokenTTL)

	account := &Account{
		Email:                      event.Email,
		PasswordHash:               hash,
		ConfirmationToken:          &token,
		ConfirmationTokenExpiresAt: &expiresAt,
	}

	if event.UseHashid {
		if id, err := hashid.NewUUID(event.Email); err == nil {
			account.ID = id
		}
	}

	err = h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		created, err := h.repo.Accounts().CreateAccountTx(ctx, tx, account)
		if err != nil {
			return err
		}
		account = created

		email := NewConfirmationEmail(account.Email, ConfirmationLink(event.BaseURL, token))
		if err := h.mailer.Send(ctx, email); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryOperation, "failed to dispatch confirmation email")
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "signup transaction failed")
	}

	if event.OnResponse != nil {
		event.OnResponse(&SignupResponse{
			AccountID: account.ID,
			Email:     account.Email,
		})
	}

	return nil
}
