package notify

import "context"

// NoOpNotifier is a notifier that does nothing. Useful in tests and for
// running without a configured bot.
type NoOpNotifier struct{}

// SendResult does nothing.
func (n *NoOpNotifier) SendResult(ctx context.Context, chatID int64, resultURL string) error {
	return nil
}

// SendMessage does nothing.
func (n *NoOpNotifier) SendMessage(ctx context.Context, userID int64, text string) error {
	return nil
}
