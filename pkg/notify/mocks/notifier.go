// Package mocks provides a testify mock of the Notifier interface.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// Notifier is a mock implementation of notify.Notifier.
type Notifier struct {
	mock.Mock
}

func (m *Notifier) SendResult(ctx context.Context, chatID int64, resultURL string) error {
	args := m.Called(ctx, chatID, resultURL)
	return args.Error(0)
}

func (m *Notifier) SendMessage(ctx context.Context, userID int64, text string) error {
	args := m.Called(ctx, userID, text)
	return args.Error(0)
}
