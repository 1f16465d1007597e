package dynamodb

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/imagegen-credits/pkg/models"
	"github.com/chris/imagegen-credits/pkg/storage"
	"github.com/chris/imagegen-credits/pkg/storage/dynamodb/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestFailTask(t *testing.T) {
	task := &models.GenerationTask{
		RequestID: "req-123",
		UserID:    42,
		Status:    models.TaskPending,
		Cost:      2,
	}

	t.Run("Success", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := New(mockClient, "accounts", "tasks", "payments")

		mockClient.On("TransactWriteItems", mock.Anything, mock.MatchedBy(func(input *dynamodb.TransactWriteItemsInput) bool {
			// The status transition and the refund must ride the same transaction.
			return len(input.TransactItems) == 2
		})).Once().Return(&dynamodb.TransactWriteItemsOutput{}, nil)

		result, err := store.FailTask(context.Background(), task)

		assert.NoError(t, err)
		assert.Equal(t, models.TaskFailed, result.Status)
		mockClient.AssertExpectations(t)
	})

	t.Run("Already Terminal", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := New(mockClient, "accounts", "tasks", "payments")

		cancellationReasons := []types.CancellationReason{
			{Code: aws.String("ConditionalCheckFailed")},
			{Code: aws.String("None")},
		}
		mockClient.On("TransactWriteItems", mock.Anything, mock.Anything).Return(nil, &types.TransactionCanceledException{CancellationReasons: cancellationReasons})

		// The current record is fetched so the caller can see the settled state.
		current := &models.GenerationTask{RequestID: "req-123", UserID: 42, Status: models.TaskSuccess, Cost: 2}
		currentAV, _ := attributevalue.MarshalMap(current)
		mockClient.On("GetItem", mock.Anything, mock.Anything).Once().Return(&dynamodb.GetItemOutput{Item: currentAV}, nil)

		result, err := store.FailTask(context.Background(), task)

		assert.ErrorIs(t, err, storage.ErrTaskAlreadyTerminal)
		assert.Equal(t, models.TaskSuccess, result.Status)
		mockClient.AssertExpectations(t)
	})

	t.Run("Transaction Fails", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := New(mockClient, "accounts", "tasks", "payments")

		mockClient.On("TransactWriteItems", mock.Anything, mock.Anything).Return(nil, errors.New("transaction failed"))

		_, err := store.FailTask(context.Background(), task)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to execute fail-and-refund transaction")
		mockClient.AssertExpectations(t)
	})
}
