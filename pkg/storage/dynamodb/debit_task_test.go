package dynamodb

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/imagegen-credits/pkg/models"
	"github.com/chris/imagegen-credits/pkg/storage"
	"github.com/chris/imagegen-credits/pkg/storage/dynamodb/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestDebitForTask(t *testing.T) {
	newTask := func() *models.GenerationTask {
		return &models.GenerationTask{
			RequestID: "req-123",
			UserID:    42,
			ChatID:    42,
			Prompt:    "a red bicycle",
			Model:     "gpt-image-1",
			Size:      "1024x1024",
			Cost:      2,
		}
	}

	t.Run("Success", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := New(mockClient, "accounts", "tasks", "payments")

		mockClient.On("TransactWriteItems", mock.Anything, mock.Anything).Once().Return(&dynamodb.TransactWriteItemsOutput{}, nil)

		result, err := store.DebitForTask(context.Background(), newTask())

		assert.NoError(t, err)
		assert.Equal(t, models.TaskPending, result.Status)
		assert.False(t, result.CreatedAt.IsZero())
		mockClient.AssertExpectations(t)
	})

	t.Run("Insufficient Funds", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := New(mockClient, "accounts", "tasks", "payments")

		// The first transact item is the account debit.
		cancellationReasons := []types.CancellationReason{
			{Code: aws.String("ConditionalCheckFailed")},
			{Code: aws.String("None")},
		}
		mockClient.On("TransactWriteItems", mock.Anything, mock.Anything).Return(nil, &types.TransactionCanceledException{CancellationReasons: cancellationReasons})

		_, err := store.DebitForTask(context.Background(), newTask())

		assert.ErrorIs(t, err, storage.ErrInsufficientFunds)
		mockClient.AssertExpectations(t)
	})

	t.Run("Duplicate Request ID", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := New(mockClient, "accounts", "tasks", "payments")

		// The second transact item is the task creation.
		cancellationReasons := []types.CancellationReason{
			{Code: aws.String("None")},
			{Code: aws.String("ConditionalCheckFailed")},
		}
		mockClient.On("TransactWriteItems", mock.Anything, mock.Anything).Return(nil, &types.TransactionCanceledException{CancellationReasons: cancellationReasons})

		_, err := store.DebitForTask(context.Background(), newTask())

		assert.ErrorIs(t, err, storage.ErrDuplicateRequestID)
		mockClient.AssertExpectations(t)
	})

	t.Run("Transaction Fails", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := New(mockClient, "accounts", "tasks", "payments")

		mockClient.On("TransactWriteItems", mock.Anything, mock.Anything).Return(nil, errors.New("transaction failed"))

		_, err := store.DebitForTask(context.Background(), newTask())

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to execute debit transaction")
		mockClient.AssertExpectations(t)
	})
}
