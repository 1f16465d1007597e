package notify

import (
	"context"
	"fmt"

	tele "gopkg.in/telebot.v3"
)

// TelegramSender is the subset of the telebot API the notifier uses.
type TelegramSender interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
}

// TelegramNotifier delivers notifications directly through the Telegram Bot
// API.
type TelegramNotifier struct {
	bot TelegramSender
}

// NewTelegramNotifier creates a new TelegramNotifier.
func NewTelegramNotifier(bot TelegramSender) *TelegramNotifier {
	return &TelegramNotifier{bot: bot}
}

// Make sure we conform to the interface
var _ Notifier = (*TelegramNotifier)(nil)

// SendResult sends the finished image as a photo with a ready caption.
func (n *TelegramNotifier) SendResult(ctx context.Context, chatID int64, resultURL string) error {
	photo := &tele.Photo{File: tele.FromURL(resultURL), Caption: "✅ Your image is ready!"}
	if _, err := n.bot.Send(tele.ChatID(chatID), photo); err != nil {
		return fmt.Errorf("failed to send result to chat %d: %w", chatID, err)
	}
	return nil
}

// SendMessage sends a plain text message to the user's private chat.
func (n *TelegramNotifier) SendMessage(ctx context.Context, userID int64, text string) error {
	if _, err := n.bot.Send(tele.ChatID(userID), text); err != nil {
		return fmt.Errorf("failed to send message to user %d: %w", userID, err)
	}
	return nil
}
