package dynamodb

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/chris/imagegen-credits/pkg/storage"
)

// DynamoDBAPI defines the subset of the DynamoDB client used by the store.
// It exists so tests can substitute a mock for the real client.
type DynamoDBAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	TransactWriteItems(ctx context.Context, params *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// Store implements the Storage interface using AWS DynamoDB.
// Every multi-step sequence (debit+create, transition+refund,
// transition+credit) is a single TransactWriteItems call guarded by condition
// expressions, which is what serializes concurrent deliveries of the same
// callback.
type Store struct {
	Client            DynamoDBAPI
	AccountsTableName string
	TasksTableName    string
	PaymentsTableName string
}

// New creates a new Store.
func New(client DynamoDBAPI, accountsTable, tasksTable, paymentsTable string) *Store {
	return &Store{
		Client:            client,
		AccountsTableName: accountsTable,
		TasksTableName:    tasksTable,
		PaymentsTableName: paymentsTable,
	}
}

// Make sure we conform to the interface
var _ storage.Storage = (*Store)(nil)
