package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/chris/imagegen-credits/pkg/models"
	"github.com/chris/imagegen-credits/pkg/storage"
)

// GetPaymentByPaymentID retrieves a payment from DynamoDB by its provider id.
func (s *Store) GetPaymentByPaymentID(ctx context.Context, paymentID string) (*models.Payment, error) {
	input := &dynamodb.GetItemInput{
		TableName: aws.String(s.PaymentsTableName),
		Key:       paymentKey(paymentID),
	}

	result, err := s.Client.GetItem(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to get payment from DynamoDB: %w", err)
	}

	if result.Item == nil {
		return nil, storage.ErrPaymentNotFound
	}

	var payment models.Payment
	if err := attributevalue.UnmarshalMap(result.Item, &payment); err != nil {
		return nil, fmt.Errorf("failed to unmarshal payment: %w", err)
	}

	return &payment, nil
}

// CreatePayment records a new pending payment before the user is redirected
// to the provider's checkout page.
func (s *Store) CreatePayment(ctx context.Context, payment *models.Payment) (*models.Payment, error) {
	now := time.Now()
	payment.Status = models.PaymentPending
	payment.CreatedAt = now
	payment.UpdatedAt = now

	paymentAV, err := attributevalue.MarshalMap(payment)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payment: %w", err)
	}

	input := &dynamodb.PutItemInput{
		TableName:           aws.String(s.PaymentsTableName),
		Item:                paymentAV,
		ConditionExpression: aws.String("attribute_not_exists(payment_id)"),
	}

	_, err = s.Client.PutItem(ctx, input)
	if err != nil {
		var condCheckFailed *types.ConditionalCheckFailedException
		if errors.As(err, &condCheckFailed) {
			return nil, storage.ErrDuplicatePaymentID
		}
		return nil, fmt.Errorf("failed to create payment in DynamoDB: %w", err)
	}

	return payment, nil
}

func paymentKey(paymentID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"payment_id": &types.AttributeValueMemberS{Value: paymentID},
	}
}
