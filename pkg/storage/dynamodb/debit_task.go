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

// DebitForTask atomically debits the generation cost from the owning account
// and creates the task record in state pending. A crash or concurrent debit
// can never leave credits spent with no corresponding task row: both writes
// commit or both abort.
func (s *Store) DebitForTask(ctx context.Context, task *models.GenerationTask) (*models.GenerationTask, error) {
	// 1. Complete the task object with server-side details.
	now := time.Now()
	task.Status = models.TaskPending
	task.CreatedAt = now
	task.UpdatedAt = now

	taskAV, err := attributevalue.MarshalMap(task)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal task: %w", err)
	}

	nowAV, err := attributevalue.Marshal(now)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal timestamp: %w", err)
	}

	// 2. Construct the TransactWriteItems input.
	input := &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{
				// Operation 1: Debit the owning account.
				Update: &types.Update{
					TableName:           aws.String(s.AccountsTableName),
					Key:                 accountKey(task.UserID),
					UpdateExpression:    aws.String("SET balance = balance - :cost, updated_at = :now"),
					ConditionExpression: aws.String("attribute_exists(user_id) AND balance >= :cost"),
					ExpressionAttributeValues: map[string]types.AttributeValue{
						":cost": &types.AttributeValueMemberN{Value: strconv.FormatInt(task.Cost, 10)},
						":now":  nowAV,
					},
				},
			},
			{
				// Operation 2: Create the task record.
				Put: &types.Put{
					TableName:           aws.String(s.TasksTableName),
					Item:                taskAV,
					ConditionExpression: aws.String("attribute_not_exists(request_id)"),
				},
			},
		},
	}

	// 3. Execute the transaction.
	_, err = s.Client.TransactWriteItems(ctx, input)
	if err != nil {
		var tce *types.TransactionCanceledException
		if errors.As(err, &tce) {
			for i, reason := range tce.CancellationReasons {
				if reason.Code == nil || *reason.Code != "ConditionalCheckFailed" {
					continue
				}
				if i == 0 {
					return nil, storage.ErrInsufficientFunds
				}
				return nil, storage.ErrDuplicateRequestID
			}
		}
		return nil, fmt.Errorf("failed to execute debit transaction: %w", err)
	}

	return task, nil
}
