package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	tele "gopkg.in/telebot.v3"
)

type mockSender struct {
	mock.Mock
}

func (m *mockSender) Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error) {
	args := m.Called(to, what)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tele.Message), args.Error(1)
}

func TestTelegramNotifier(t *testing.T) {
	t.Run("SendResult Sends Photo", func(t *testing.T) {
		sender := new(mockSender)
		notifier := NewTelegramNotifier(sender)

		sender.On("Send", tele.ChatID(42), mock.MatchedBy(func(what interface{}) bool {
			photo, ok := what.(*tele.Photo)
			return ok && photo.File.FileURL == "https://cdn.example.com/result.png"
		})).Once().Return(&tele.Message{}, nil)

		err := notifier.SendResult(context.Background(), 42, "https://cdn.example.com/result.png")

		assert.NoError(t, err)
		sender.AssertExpectations(t)
	})

	t.Run("SendMessage Sends Text", func(t *testing.T) {
		sender := new(mockSender)
		notifier := NewTelegramNotifier(sender)

		sender.On("Send", tele.ChatID(42), "hello").Once().Return(&tele.Message{}, nil)

		err := notifier.SendMessage(context.Background(), 42, "hello")

		assert.NoError(t, err)
		sender.AssertExpectations(t)
	})

	t.Run("Send Failure Surfaces", func(t *testing.T) {
		sender := new(mockSender)
		notifier := NewTelegramNotifier(sender)

		sender.On("Send", mock.Anything, mock.Anything).Return(nil, errors.New("blocked by user"))

		err := notifier.SendMessage(context.Background(), 42, "hello")

		assert.Error(t, err)
	})
}
