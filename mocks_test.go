package accountd_test

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	accountd "github.com/venzell/accountd"
)

// setupTestDB spins up an in-memory sqlite database with the users
// schema derived from the Account model.
func setupTestDB(t *testing.T) (*bun.DB, accountd.RepositoryManager) {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, "file::memory:?cache=shared")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())

	err = db.ResetModel(context.Background(), (*accountd.Account)(nil))
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = db.Close()
	})

	repo := accountd.NewRepositoryManager(db)
	require.NoError(t, repo.Validate())

	return db, repo
}

// capturingMailer records every message instead of delivering it.
type capturingMailer struct {
	mu   sync.Mutex
	sent []accountd.Email
}

func (m *capturingMailer) Send(ctx context.Context, email accountd.Email) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, email)
	return nil
}

func (m *capturingMailer) Sent() []accountd.Email {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]accountd.Email, len(m.sent))
	copy(out, m.sent)
	return out
}

// MockMailer is a testify mock for failure injection.
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(ctx context.Context, email accountd.Email) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

func testSigningKey() []byte {
	return []byte("test-signing-key-0123456789abcdef")
}
