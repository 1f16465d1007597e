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

// GetAccount retrieves an account from DynamoDB by its user ID.
func (s *Store) GetAccount(ctx context.Context, userID int64) (*models.Account, error) {
	input := &dynamodb.GetItemInput{
		TableName: aws.String(s.AccountsTableName),
		Key:       accountKey(userID),
	}

	result, err := s.Client.GetItem(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to get account from DynamoDB: %w", err)
	}

	if result.Item == nil {
		return nil, storage.ErrAccountNotFound
	}

	var account models.Account
	if err := attributevalue.UnmarshalMap(result.Item, &account); err != nil {
		return nil, fmt.Errorf("failed to unmarshal account: %w", err)
	}

	return &account, nil
}

// CreateAccount creates a new account record with its starting balance.
func (s *Store) CreateAccount(ctx context.Context, account *models.Account) (*models.Account, error) {
	now := time.Now()
	account.CreatedAt = now
	account.UpdatedAt = now

	accountAV, err := attributevalue.MarshalMap(account)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal account: %w", err)
	}

	input := &dynamodb.PutItemInput{
		TableName:           aws.String(s.AccountsTableName),
		Item:                accountAV,
		ConditionExpression: aws.String("attribute_not_exists(user_id)"), // Prevent overwriting existing accounts.
	}

	_, err = s.Client.PutItem(ctx, input)
	if err != nil {
		var condCheckFailed *types.ConditionalCheckFailedException
		if errors.As(err, &condCheckFailed) {
			return nil, storage.ErrAccountExists
		}
		return nil, fmt.Errorf("failed to create account in DynamoDB: %w", err)
	}

	return account, nil
}

// Debit atomically decrements an account's balance and returns the new
// balance. The balance condition rejects the update outright when funds are
// insufficient, so no mutation occurs on failure.
func (s *Store) Debit(ctx context.Context, userID int64, amount int64) (int64, error) {
	nowAV, err := attributevalue.Marshal(time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to marshal timestamp: %w", err)
	}

	input := &dynamodb.UpdateItemInput{
		TableName:           aws.String(s.AccountsTableName),
		Key:                 accountKey(userID),
		UpdateExpression:    aws.String("SET balance = balance - :amount, updated_at = :now"),
		ConditionExpression: aws.String("attribute_exists(user_id) AND balance >= :amount"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":amount": &types.AttributeValueMemberN{Value: strconv.FormatInt(amount, 10)},
			":now":    nowAV,
		},
		ReturnValues: types.ReturnValueUpdatedNew,
	}

	result, err := s.Client.UpdateItem(ctx, input)
	if err != nil {
		var condCheckFailed *types.ConditionalCheckFailedException
		if errors.As(err, &condCheckFailed) {
			return 0, storage.ErrInsufficientFunds
		}
		return 0, fmt.Errorf("failed to debit account: %w", err)
	}

	var updated struct {
		Balance int64 `dynamodbav:"balance"`
	}
	if err := attributevalue.UnmarshalMap(result.Attributes, &updated); err != nil {
		return 0, fmt.Errorf("failed to unmarshal updated balance: %w", err)
	}

	return updated.Balance, nil
}

// Credit atomically increments an account's balance and returns the new
// balance. The caller must have already established, via the owning record's
// state transition, that this credit has not been applied.
func (s *Store) Credit(ctx context.Context, userID int64, amount int64) (int64, error) {
	return s.adjustBalance(ctx, userID, amount)
}

// Refund compensates a prior debit. Same mechanics as Credit; the distinct
// name documents intent at call sites.
func (s *Store) Refund(ctx context.Context, userID int64, amount int64) (int64, error) {
	return s.adjustBalance(ctx, userID, amount)
}

func (s *Store) adjustBalance(ctx context.Context, userID int64, amount int64) (int64, error) {
	nowAV, err := attributevalue.Marshal(time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to marshal timestamp: %w", err)
	}

	input := &dynamodb.UpdateItemInput{
		TableName:           aws.String(s.AccountsTableName),
		Key:                 accountKey(userID),
		UpdateExpression:    aws.String("SET balance = balance + :amount, updated_at = :now"),
		ConditionExpression: aws.String("attribute_exists(user_id)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":amount": &types.AttributeValueMemberN{Value: strconv.FormatInt(amount, 10)},
			":now":    nowAV,
		},
		ReturnValues: types.ReturnValueUpdatedNew,
	}

	result, err := s.Client.UpdateItem(ctx, input)
	if err != nil {
		var condCheckFailed *types.ConditionalCheckFailedException
		if errors.As(err, &condCheckFailed) {
			return 0, storage.ErrAccountNotFound
		}
		return 0, fmt.Errorf("failed to update account balance: %w", err)
	}

	var updated struct {
		Balance int64 `dynamodbav:"balance"`
	}
	if err := attributevalue.UnmarshalMap(result.Attributes, &updated); err != nil {
		return 0, fmt.Errorf("failed to unmarshal updated balance: %w", err)
	}

	return updated.Balance, nil
}

func accountKey(userID int64) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"user_id": &types.AttributeValueMemberN{Value: strconv.FormatInt(userID, 10)},
	}
}
