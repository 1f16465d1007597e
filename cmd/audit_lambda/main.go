package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/chris/imagegen-credits/pkg/storage"
	dydbstore "github.com/chris/imagegen-credits/pkg/storage/dynamodb"
	"github.com/joho/godotenv"
)

var store storage.Storage

const stalePendingThreshold = 30 * time.Minute

func init() {
	// Load environment variables for local testing.
	godotenv.Load()

	cfg, err := config.LoadDefaultConfig(context.TODO())
	if err != nil {
		log.Fatalf("unable to load SDK config, %v", err)
	}

	dbClient := dynamodb.NewFromConfig(cfg)

	accountsTable := os.Getenv("DYNAMODB_ACCOUNTS_TABLE_NAME")
	tasksTable := os.Getenv("DYNAMODB_TASKS_TABLE_NAME")
	paymentsTable := os.Getenv("DYNAMODB_PAYMENTS_TABLE_NAME")

	store = dydbstore.New(dbClient, accountsTable, tasksTable, paymentsTable)
}

// HandleRequest is triggered by an EventBridge Schedule. It reports tasks
// whose provider callback never arrived. Pending tasks have no timeout, so
// this only surfaces them for operators; it never fails or refunds them.
func HandleRequest(ctx context.Context) error {
	log.Println("Starting audit for stale pending tasks...")

	staleTasks, err := store.ListStalePendingTasks(ctx, stalePendingThreshold)
	if err != nil {
		log.Printf("ERROR: failed to list stale pending tasks: %v", err)
		return err
	}

	if len(staleTasks) == 0 {
		log.Println("No stale pending tasks found.")
		return nil
	}

	log.Printf("Found %d stale pending tasks", len(staleTasks))

	for _, task := range staleTasks {
		log.Printf("Stale pending task %s: user %d, created %s, cost %d",
			task.RequestID, task.UserID, task.CreatedAt.Format(time.RFC3339), task.Cost)
	}

	log.Println("Audit finished.")
	return nil
}

func main() {
	lambda.Start(HandleRequest)
}
