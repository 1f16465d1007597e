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

func TestSettlePayment(t *testing.T) {
	payment := &models.Payment{
		PaymentID: "pay-abc",
		UserID:    42,
		Amount:    200,
		Credits:   10,
		Status:    models.PaymentPending,
	}

	t.Run("Success", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := New(mockClient, "accounts", "tasks", "payments")

		mockClient.On("TransactWriteItems", mock.Anything, mock.MatchedBy(func(input *dynamodb.TransactWriteItemsInput) bool {
			// The payment transition and the credit must ride the same transaction.
			return len(input.TransactItems) == 2
		})).Once().Return(&dynamodb.TransactWriteItemsOutput{}, nil)

		result, err := store.SettlePayment(context.Background(), payment)

		assert.NoError(t, err)
		assert.Equal(t, models.PaymentSucceeded, result.Status)
		mockClient.AssertExpectations(t)
	})

	t.Run("Already Succeeded", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := New(mockClient, "accounts", "tasks", "payments")

		cancellationReasons := []types.CancellationReason{
			{Code: aws.String("ConditionalCheckFailed")},
			{Code: aws.String("None")},
		}
		mockClient.On("TransactWriteItems", mock.Anything, mock.Anything).Return(nil, &types.TransactionCanceledException{CancellationReasons: cancellationReasons})

		_, err := store.SettlePayment(context.Background(), payment)

		assert.ErrorIs(t, err, storage.ErrPaymentAlreadySucceeded)
		mockClient.AssertExpectations(t)
	})

	t.Run("Transaction Fails", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := New(mockClient, "accounts", "tasks", "payments")

		mockClient.On("TransactWriteItems", mock.Anything, mock.Anything).Return(nil, errors.New("transaction failed"))

		_, err := store.SettlePayment(context.Background(), payment)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to execute settle-and-credit transaction")
		mockClient.AssertExpectations(t)
	})
}
