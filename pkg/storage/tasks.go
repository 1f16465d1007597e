package storage

import (
	"context"
	"time"

	"github.com/chris/imagegen-credits/pkg/models"
)

// TaskReader defines the interface for reading generation tasks.
type TaskReader interface {
	// GetTaskByRequestID retrieves a task by its provider-issued request ID.
	// Returns ErrTaskNotFound if no such task exists.
	GetTaskByRequestID(ctx context.Context, requestID string) (*models.GenerationTask, error)

	// ListStalePendingTasks retrieves tasks that have sat in the pending
	// state for longer than maxAge. Pending is a valid indefinite state;
	// this exists for operational inspection only.
	ListStalePendingTasks(ctx context.Context, maxAge time.Duration) ([]models.GenerationTask, error)
}

// TaskWriter defines the interface for creating tasks and driving their
// lifecycle. The terminal transitions are the only mutations permitted after
// creation, and each is atomic with its ledger effect.
type TaskWriter interface {
	// DebitForTask atomically debits the task's cost from the owning account
	// and creates the task row in state pending. Both commit or both abort.
	// Returns ErrInsufficientFunds if the balance does not cover the cost and
	// ErrDuplicateRequestID if the request id is already recorded.
	DebitForTask(ctx context.Context, task *models.GenerationTask) (*models.GenerationTask, error)

	// CompleteTask atomically transitions a pending task to success with the
	// given result reference. Returns ErrTaskAlreadyTerminal if the task has
	// already reached a terminal state; the ledger is never touched.
	CompleteTask(ctx context.Context, requestID, resultURL string) (*models.GenerationTask, error)

	// FailTask atomically transitions a pending task to failed and refunds
	// the task's cost to the owning account in the same unit, so that no
	// interleaving of concurrent deliveries can refund twice. Returns
	// ErrTaskAlreadyTerminal if the task has already reached a terminal
	// state, in which case nothing is refunded.
	FailTask(ctx context.Context, task *models.GenerationTask) (*models.GenerationTask, error)
}

// TaskStore combines the reader and writer interfaces.
type TaskStore interface {
	TaskReader
	TaskWriter
}
