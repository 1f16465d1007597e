package storage

import (
	"context"

	"github.com/chris/imagegen-credits/pkg/models"
)

// LedgerStore defines the interface for account balances and their atomic
// mutation. Account rows are the only entities mutated by more than one
// component, so every caller goes through these primitives and inherits the
// same concurrency guarantee.
type LedgerStore interface {
	// GetAccount retrieves an account by its user ID.
	GetAccount(ctx context.Context, userID int64) (*models.Account, error)

	// CreateAccount creates a new account with the given starting balance.
	// Returns ErrAccountExists if one already exists for the user.
	CreateAccount(ctx context.Context, account *models.Account) (*models.Account, error)

	// Debit atomically decrements an account's balance and returns the new
	// balance. Returns ErrInsufficientFunds, without mutating anything, if
	// the balance does not cover the amount. For the debit that pays for a
	// generation task use TaskWriter.DebitForTask, which commits the debit
	// and the task row as one unit.
	Debit(ctx context.Context, userID int64, amount int64) (int64, error)

	// Credit atomically increments an account's balance and returns the new
	// balance. Idempotency is the caller's responsibility: the caller must
	// have already proven, via the owning record's state, that this credit
	// has not been applied.
	Credit(ctx context.Context, userID int64, amount int64) (int64, error)

	// Refund is semantically identical to Credit. It exists as a distinct
	// name to document intent: compensating a prior debit.
	Refund(ctx context.Context, userID int64, amount int64) (int64, error)
}
