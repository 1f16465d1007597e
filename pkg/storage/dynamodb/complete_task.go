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

// CompleteTask transitions a pending task to success and records the result
// reference. The condition on the current status is the idempotency guard: a
// second delivery of the same callback fails the condition and gets
// ErrTaskAlreadyTerminal together with the current record. The ledger is
// never touched on this path.
func (s *Store) CompleteTask(ctx context.Context, requestID, resultURL string) (*models.GenerationTask, error) {
	now := time.Now()
	nowAV, err := attributevalue.Marshal(now)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal timestamp: %w", err)
	}

	input := &dynamodb.UpdateItemInput{
		TableName:           aws.String(s.TasksTableName),
		Key:                 taskKey(requestID),
		UpdateExpression:    aws.String("SET #status = :success, result_url = :result_url, updated_at = :now"),
		ConditionExpression: aws.String("#status = :pending"),
		ExpressionAttributeNames: map[string]string{
			"#status": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":success":    &types.AttributeValueMemberS{Value: string(models.TaskSuccess)},
			":pending":    &types.AttributeValueMemberS{Value: string(models.TaskPending)},
			":result_url": &types.AttributeValueMemberS{Value: resultURL},
			":now":        nowAV,
		},
		ReturnValues: types.ReturnValueAllNew,
	}

	result, err := s.Client.UpdateItem(ctx, input)
	if err != nil {
		var condCheckFailed *types.ConditionalCheckFailedException
		if errors.As(err, &condCheckFailed) {
			current, getErr := s.GetTaskByRequestID(ctx, requestID)
			if getErr != nil {
				return nil, fmt.Errorf("task transition blocked and current state unreadable: %w", getErr)
			}
			return current, storage.ErrTaskAlreadyTerminal
		}
		return nil, fmt.Errorf("failed to complete task: %w", err)
	}

	var task models.GenerationTask
	if err := attributevalue.UnmarshalMap(result.Attributes, &task); err != nil {
		return nil, fmt.Errorf("failed to unmarshal completed task: %w", err)
	}

	return &task, nil
}
