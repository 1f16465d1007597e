// Package notify delivers results and messages to users. Delivery is
// best-effort: every implementation's failure is logged by the caller and
// never rolls back a committed state or ledger mutation.
package notify

import (
	"context"
)

// Notifier defines the interface to the messaging collaborator.
type Notifier interface {
	// SendResult delivers a finished image to the chat the task came from.
	SendResult(ctx context.Context, chatID int64, resultURL string) error

	// SendMessage delivers a plain text message to a user.
	SendMessage(ctx context.Context, userID int64, text string) error
}
