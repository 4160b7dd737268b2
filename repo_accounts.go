package accountd

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ConfirmAccountSQL flips is_confirmed and clears both token columns in
// a single statement. The is_confirmed = FALSE guard is the
// compare-and-set that keeps two concurrent confirmations with the same
// token from both succeeding.
var ConfirmAccountSQL = `UPDATE "users" AS "usr"
SET
	"is_confirmed" = TRUE,
	"confirmation_token" = NULL,
	"confirmation_token_expires_at" = NULL
WHERE
	"usr"."confirmation_token" = ?
AND "usr"."confirmation_token_expires_at" > ?
AND "usr"."is_confirmed" = FALSE
RETURNING *;`

// Accounts is the account store contract the core requires.
type Accounts interface {
	repository.Repository[*Account]

	CreateAccount(ctx context.Context, record *Account) (*Account, error)
	CreateAccountTx(ctx context.Context, tx bun.IDB, record *Account) (*Account, error)

	FindPasswordHashByEmail(ctx context.Context, email string) (*Account, error)

	ConfirmByToken(ctx context.Context, token string, now time.Time) (*Account, error)
	ConfirmByTokenTx(ctx context.Context, tx bun.IDB, token string, now time.Time) (*Account, error)
}

type accounts struct {
	repository.Repository[*Account]
	db *bun.DB
}

var (
	_ Accounts                        = (*accounts)(nil)
	_ repository.Repository[*Account] = (*accounts)(nil)
)

// NewAccountsRepository builds the bun-backed Accounts repository.
func NewAccountsRepository(db *bun.DB) Accounts {
	repo := repository.NewRepository[*Account](db, repository.ModelHandlers[*Account]{
		NewRecord: func() *Account { return &Account{} },
		GetID: func(a *Account) uuid.UUID {
			if a == nil {
				return uuid.Nil
			}
			return a.ID
		},
		SetID: func(a *Account, id uuid.UUID) {
			if a != nil {
				a.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &accounts{
		Repository: repo,
		db:         db,
	}
}

func (a *accounts) CreateAccount(ctx context.Context, record *Account) (*Account, error) {
	return a.CreateAccountTx(ctx, a.db, record)
}

// CreateAccountTx inserts the account row, mapping the store's
// unique-constraint error to ErrDuplicateEmail. The insert either fully
// succeeds or leaves no partial row.
func (a *accounts) CreateAccountTx(ctx context.Context, tx bun.IDB, record *Account) (*Account, error) {
	prepareAccountDefaults(record)

	created, err := a.Repository.CreateTx(ctx, tx, record)
	if err != nil {
		if IsUniqueViolation(err) {
			return nil, goerrors.New(ErrDuplicateEmail.Message, goerrors.CategoryConflict).
				WithTextCode(ErrDuplicateEmail.TextCode).
				WithCode(goerrors.CodeConflict).
				WithMetadata(map[string]any{
					"email": record.Email,
				})
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create account")
	}

	return created, nil
}

// FindPasswordHashByEmail selects only the columns the login path needs.
// A missing row surfaces as a record-not-found error the caller must
// collapse into the uniform credentials failure.
func (a *accounts) FindPasswordHashByEmail(ctx context.Context, email string) (*Account, error) {
	record := &Account{}

	err := a.db.NewSelect().
		Model(record).
		Column("id", "email", "password_hash", "is_confirmed").
		Where("?TableAlias.email = ?", email).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"email": email,
				})
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to look up account by email")
	}

	return record, nil
}

func (a *accounts) ConfirmByToken(ctx context.Context, token string, now time.Time) (*Account, error) {
	return a.ConfirmByTokenTx(ctx, a.db, token, now)
}

// ConfirmByTokenTx atomically confirms the account matching token. A
// wrong token, an expired token, and an already confirmed account are
// indistinguishable: all return ErrInvalidOrExpiredToken.
func (a *accounts) ConfirmByTokenTx(ctx context.Context, tx bun.IDB, token string, now time.Time) (*Account, error) {
	if token == "" {
		return nil, ErrInvalidOrExpiredToken
	}

	res, err := a.Repository.RawTx(ctx, tx, ConfirmAccountSQL, token, now)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to confirm account")
	}

	if len(res) == 0 {
		return nil, ErrInvalidOrExpiredToken
	}

	return res[0], nil
}

func prepareAccountDefaults(record *Account) {
	if record == nil {
		return
	}

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
}
