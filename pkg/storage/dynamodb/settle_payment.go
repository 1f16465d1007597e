package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/chris/imagegen-credits/pkg/models"
	"github.com/chris/imagegen-credits/pkg/storage"
)

// SettlePayment transitions a pending payment to succeeded and credits the
// grant to the owning account in a single transaction. The status condition
// is the idempotency guard: two concurrent deliveries of the same payment
// callback serialize on it, so only one can observe pending and credit. A
// missing account row is created with the grant as its initial balance
// (payment-before-start bootstrap).
func (s *Store) SettlePayment(ctx context.Context, payment *models.Payment) (*models.Payment, error) {
	now := time.Now()
	nowAV, err := attributevalue.Marshal(now)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal timestamp: %w", err)
	}

	input := &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{
				// Operation 1: Transition the payment to succeeded.
				Update: &types.Update{
					TableName:           aws.String(s.PaymentsTableName),
					Key:                 paymentKey(payment.PaymentID),
					UpdateExpression:    aws.String("SET #status = :succeeded, updated_at = :now"),
					ConditionExpression: aws.String("#status = :pending"),
					ExpressionAttributeNames: map[string]string{
						"#status": "status",
					},
					ExpressionAttributeValues: map[string]types.AttributeValue{
						":succeeded": &types.AttributeValueMemberS{Value: string(models.PaymentSucceeded)},
						":pending":   &types.AttributeValueMemberS{Value: string(models.PaymentPending)},
						":now":       nowAV,
					},
				},
			},
			{
				// Operation 2: Credit the grant, creating the account if absent.
				Update: &types.Update{
					TableName:        aws.String(s.AccountsTableName),
					Key:              accountKey(payment.UserID),
					UpdateExpression: aws.String("SET balance = if_not_exists(balance, :zero) + :credits, created_at = if_not_exists(created_at, :now), updated_at = :now"),
					ExpressionAttributeValues: map[string]types.AttributeValue{
						":credits": &types.AttributeValueMemberN{Value: strconv.FormatInt(payment.Credits, 10)},
						":zero":    &types.AttributeValueMemberN{Value: "0"},
						":now":     nowAV,
					},
				},
			},
		},
	}

	_, err = s.Client.TransactWriteItems(ctx, input)
	if err != nil {
		var tce *types.TransactionCanceledException
		if errors.As(err, &tce) {
			if len(tce.CancellationReasons) > 0 && tce.CancellationReasons[0].Code != nil &&
				*tce.CancellationReasons[0].Code == "ConditionalCheckFailed" {
				return payment, storage.ErrPaymentAlreadySucceeded
			}
		}
		return nil, fmt.Errorf("failed to execute settle-and-credit transaction: %w", err)
	}

	settled := *payment
	settled.Status = models.PaymentSucceeded
	settled.UpdatedAt = now
	return &settled, nil
}
