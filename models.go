package accountd

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Account is the users row. Invariants the store enforces:
//   - at most one account per email
//   - confirmation_token is present only while the account is
//     unconfirmed; a successful confirmation clears both token columns
//     permanently
type Account struct {
	bun.BaseModel              `bun:"table:users,alias:usr"`
	ID                         uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Email                      string     `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash               string     `bun:"password_hash,notnull" json:"-"`
	IsConfirmed                bool       `bun:"is_confirmed" json:"is_confirmed,omitempty"`
	ConfirmationToken          *string    `bun:"confirmation_token,nullzero" json:"-"`
	ConfirmationTokenExpiresAt *time.Time `bun:"confirmation_token_expires_at,nullzero" json:"-"`
	CreatedAt                  *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt                  *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}
