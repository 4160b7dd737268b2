package accountd

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// VerifyMessage carries a raw confirmation token from the email link.
type VerifyMessage struct {
	Token      string `json:"token"`
	OnResponse func(*VerifyResponse)
}

func (e VerifyMessage) Type() string { return "account.verify" }

// VerifyResponse reports the confirmed account.
type VerifyResponse struct {
	AccountID uuid.UUID `json:"userId"`
}

// VerifyHandler confirms an account by token. Wrong, expired, and
// already-used tokens are deliberately indistinguishable to the caller.
type VerifyHandler struct {
	repo RepositoryManager
	now  func() time.Time
}

// NewVerifyHandler builds the handler; now is overridable for tests.
func NewVerifyHandler(repo RepositoryManager) *VerifyHandler {
	return &VerifyHandler{
		repo: repo,
		now:  time.Now,
	}
}

func (h *VerifyHandler) WithClock(now func() time.Time) *VerifyHandler {
	if now != nil {
		h.now = now
	}
	return h
}

func (h *VerifyHandler) Execute(ctx context.Context, event VerifyMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(ctx.Err(), goerrors.CategoryOperation, "context cancelled during verification")
	default:
		return h.execute(ctx, event)
	}
}

func (h *VerifyHandler) execute(ctx context.Context, event VerifyMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	var account *Account

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var err error
		account, err = h.repo.Accounts().ConfirmByTokenTx(ctx, tx, event.Token, h.now())
		return err
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "verification transaction failed")
	}

	if event.OnResponse != nil {
		event.OnResponse(&VerifyResponse{AccountID: account.ID})
	}

	return nil
}
