package store

import (
	"context"
	"errors"

	"github.com/driftlock/identity/internal/identity/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface, implemented by concrete
// drivers (sqlite today). It exposes sub-repositories to keep concerns
// tidy and testable, and to stop callers from accidentally nesting
// transactions.
type Store interface {
	Users() Users

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error
	// the transaction is rolled back, otherwise it is committed. This
	// is the recommended way to run multi-step atomic operations.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetByID returns a user by id.
	GetByID(ctx context.Context, id string) (domain.User, error)

	// GetByEmail looks a user up by email, case-insensitively. Used
	// during login and duplicate checks.
	GetByEmail(ctx context.Context, email string) (domain.User, error)

	// Create inserts a new user (id is provided by the app via ULID).
	// A duplicate email returns ErrAlreadyExists.
	Create(ctx context.Context, u domain.User) error

	// List returns all users, newest first.
	List(ctx context.Context) ([]domain.User, error)

	// Search returns users whose name or email contains q,
	// case-insensitively, newest first.
	Search(ctx context.Context, q string) ([]domain.User, error)

	// Update mutates name and email and bumps updated_at. A clash with
	// another user's email returns ErrAlreadyExists.
	Update(ctx context.Context, u domain.User) error

	// Delete removes the user.
	Delete(ctx context.Context, id string) error

	// IsEmpty returns true if there are no users.
	IsEmpty(ctx context.Context) (bool, error)
}
