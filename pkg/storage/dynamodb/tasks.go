package dynamodb

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/chris/imagegen-credits/pkg/models"
	"github.com/chris/imagegen-credits/pkg/storage"
)

const stalePendingGSI = "status-created_at-index"

// GetTaskByRequestID retrieves a task from DynamoDB by its provider request ID.
func (s *Store) GetTaskByRequestID(ctx context.Context, requestID string) (*models.GenerationTask, error) {
	input := &dynamodb.GetItemInput{
		TableName: aws.String(s.TasksTableName),
		Key:       taskKey(requestID),
	}

	result, err := s.Client.GetItem(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to get task from DynamoDB: %w", err)
	}

	if result.Item == nil {
		return nil, storage.ErrTaskNotFound
	}

	var task models.GenerationTask
	if err := attributevalue.UnmarshalMap(result.Item, &task); err != nil {
		return nil, fmt.Errorf("failed to unmarshal task: %w", err)
	}

	return &task, nil
}

// ListStalePendingTasks retrieves tasks that have sat in the pending state
// for longer than maxAge. Used for operational inspection only; pending is a
// valid indefinite state and nothing here mutates it.
func (s *Store) ListStalePendingTasks(ctx context.Context, maxAge time.Duration) ([]models.GenerationTask, error) {
	cutoffTime := time.Now().Add(-maxAge)
	cutoffTimeStr, err := cutoffTime.MarshalText()
	if err != nil {
		return nil, fmt.Errorf("failed to marshal cutoff time: %w", err)
	}

	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.TasksTableName),
		IndexName:              aws.String(stalePendingGSI),
		KeyConditionExpression: aws.String("#status = :status"),
		FilterExpression:       aws.String("created_at < :cutoff"),
		ExpressionAttributeNames: map[string]string{
			"#status": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":status": &types.AttributeValueMemberS{Value: string(models.TaskPending)},
			":cutoff": &types.AttributeValueMemberS{Value: string(cutoffTimeStr)},
		},
	}

	result, err := s.Client.Query(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to query for stale pending tasks: %w", err)
	}

	var tasks []models.GenerationTask
	if err := attributevalue.UnmarshalListOfMaps(result.Items, &tasks); err != nil {
		return nil, fmt.Errorf("failed to unmarshal stale pending tasks: %w", err)
	}

	return tasks, nil
}

func taskKey(requestID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"request_id": &types.AttributeValueMemberS{Value: requestID},
	}
}
