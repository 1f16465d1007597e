package dynamodb

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/imagegen-credits/pkg/models"
	"github.com/chris/imagegen-credits/pkg/storage"
	"github.com/chris/imagegen-credits/pkg/storage/dynamodb/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestGetPaymentByPaymentID(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := New(mockClient, "accounts", "tasks", "payments")

		payment := &models.Payment{PaymentID: "pay-abc", UserID: 42, Amount: 200, Credits: 10, Status: models.PaymentPending}
		paymentAV, _ := attributevalue.MarshalMap(payment)
		mockClient.On("GetItem", mock.Anything, mock.Anything).Once().Return(&dynamodb.GetItemOutput{Item: paymentAV}, nil)

		result, err := store.GetPaymentByPaymentID(context.Background(), "pay-abc")

		assert.NoError(t, err)
		assert.Equal(t, "pay-abc", result.PaymentID)
		assert.Equal(t, int64(10), result.Credits)
		mockClient.AssertExpectations(t)
	})

	t.Run("Not Found", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := New(mockClient, "accounts", "tasks", "payments")

		mockClient.On("GetItem", mock.Anything, mock.Anything).Return(&dynamodb.GetItemOutput{Item: nil}, nil)

		_, err := store.GetPaymentByPaymentID(context.Background(), "pay-missing")

		assert.ErrorIs(t, err, storage.ErrPaymentNotFound)
		mockClient.AssertExpectations(t)
	})
}

func TestCreatePayment(t *testing.T) {
	payment := &models.Payment{PaymentID: "pay-abc", UserID: 42, Amount: 200, Credits: 10}

	t.Run("Success", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := New(mockClient, "accounts", "tasks", "payments")

		mockClient.On("PutItem", mock.Anything, mock.Anything).Once().Return(&dynamodb.PutItemOutput{}, nil)

		result, err := store.CreatePayment(context.Background(), payment)

		assert.NoError(t, err)
		assert.Equal(t, models.PaymentPending, result.Status)
		assert.False(t, result.CreatedAt.IsZero())
		mockClient.AssertExpectations(t)
	})

	t.Run("Duplicate Payment ID", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := New(mockClient, "accounts", "tasks", "payments")

		mockClient.On("PutItem", mock.Anything, mock.Anything).Return(nil, &types.ConditionalCheckFailedException{})

		_, err := store.CreatePayment(context.Background(), payment)

		assert.ErrorIs(t, err, storage.ErrDuplicatePaymentID)
		mockClient.AssertExpectations(t)
	})
}
