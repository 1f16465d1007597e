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

// FailTask transitions a pending task to failed and refunds its cost to the
// owning account in a single transaction. The status condition serializes
// concurrent deliveries of the same callback: only one observes pending, and
// only that one's refund commits. Of two possible crash anomalies, the
// refunded-but-still-pending one is the dangerous direction (a redelivery
// would refund again); the single transaction rules out both.
func (s *Store) FailTask(ctx context.Context, task *models.GenerationTask) (*models.GenerationTask, error) {
	now := time.Now()
	nowAV, err := attributevalue.Marshal(now)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal timestamp: %w", err)
	}

	input := &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{
				// Operation 1: Transition the task to failed.
				Update: &types.Update{
					TableName:           aws.String(s.TasksTableName),
					Key:                 taskKey(task.RequestID),
					UpdateExpression:    aws.String("SET #status = :failed, updated_at = :now"),
					ConditionExpression: aws.String("#status = :pending"),
					ExpressionAttributeNames: map[string]string{
						"#status": "status",
					},
					ExpressionAttributeValues: map[string]types.AttributeValue{
						":failed":  &types.AttributeValueMemberS{Value: string(models.TaskFailed)},
						":pending": &types.AttributeValueMemberS{Value: string(models.TaskPending)},
						":now":     nowAV,
					},
				},
			},
			{
				// Operation 2: Refund the cost to the owning account.
				Update: &types.Update{
					TableName:        aws.String(s.AccountsTableName),
					Key:              accountKey(task.UserID),
					UpdateExpression: aws.String("SET balance = if_not_exists(balance, :zero) + :cost, updated_at = :now"),
					ExpressionAttributeValues: map[string]types.AttributeValue{
						":cost": &types.AttributeValueMemberN{Value: strconv.FormatInt(task.Cost, 10)},
						":zero": &types.AttributeValueMemberN{Value: "0"},
						":now":  nowAV,
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
				current, getErr := s.GetTaskByRequestID(ctx, task.RequestID)
				if getErr != nil {
					return nil, fmt.Errorf("task transition blocked and current state unreadable: %w", getErr)
				}
				return current, storage.ErrTaskAlreadyTerminal
			}
		}
		return nil, fmt.Errorf("failed to execute fail-and-refund transaction: %w", err)
	}

	failed := *task
	failed.Status = models.TaskFailed
	failed.UpdatedAt = now
	return &failed, nil
}
