package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/chris/imagegen-credits/pkg/bot"
	"github.com/chris/imagegen-credits/pkg/genapi"
	"github.com/chris/imagegen-credits/pkg/handlers"
	"github.com/chris/imagegen-credits/pkg/middleware"
	"github.com/chris/imagegen-credits/pkg/notify"
	"github.com/chris/imagegen-credits/pkg/payments"
	"github.com/chris/imagegen-credits/pkg/reconcile"
	dydbstore "github.com/chris/imagegen-credits/pkg/storage/dynamodb"
	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
)

const (
	defaultStartCredits   = 10
	defaultGenerationCost = 2
)

func main() {
	// Load environment variables from .env file
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// AWS Session
	cfg, err := config.LoadDefaultConfig(context.TODO())
	if err != nil {
		log.Fatalf("unable to load SDK config, %v", err)
	}

	dbClient := dynamodb.NewFromConfig(cfg)
	accountsTable := os.Getenv("DYNAMODB_ACCOUNTS_TABLE_NAME")
	tasksTable := os.Getenv("DYNAMODB_TASKS_TABLE_NAME")
	paymentsTable := os.Getenv("DYNAMODB_PAYMENTS_TABLE_NAME")

	if accountsTable == "" || tasksTable == "" || paymentsTable == "" {
		log.Fatal("One or more DynamoDB table name environment variables are not set")
	}

	// Create our storage implementation
	store := dydbstore.New(dbClient, accountsTable, tasksTable, paymentsTable)

	// Telegram bot with the generation and payment providers
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		log.Fatal("TELEGRAM_BOT_TOKEN environment variable not set")
	}

	genClient := genapi.NewClient(
		mustGetenv("GEN_API_URL"),
		mustGetenv("GEN_API_KEY"),
		mustGetenv("GEN_CALLBACK_URL"),
	)

	payClient := payments.NewClient(
		getenvDefault("YOOKASSA_API_URL", "https://api.yookassa.ru/v3"),
		mustGetenv("YOOKASSA_SHOP_ID"),
		mustGetenv("YOOKASSA_SECRET_KEY"),
		mustGetenv("PAYMENT_RETURN_URL"),
	)

	tgBot, err := bot.New(token, store, genClient, payClient,
		getenvInt64("START_CREDITS", defaultStartCredits),
		getenvInt64("GENERATION_COST", defaultGenerationCost),
	)
	if err != nil {
		log.Fatalf("failed to create telegram bot: %v", err)
	}

	// Notifications go through SQS when a queue is configured, so webhook
	// latency stays independent of the Telegram API. Without a queue the
	// reconcilers send directly through the bot.
	var notifier notify.Notifier
	if queueURL := os.Getenv("SQS_NOTIFICATIONS_QUEUE_URL"); queueURL != "" {
		notifier = notify.NewQueueNotifier(sqs.NewFromConfig(cfg), queueURL)
	} else {
		notifier = notify.NewTelegramNotifier(tgBot.B)
	}

	// Create the reconcilers and the webhook handler
	handler := handlers.NewWebhookHandler(
		reconcile.NewGenerationReconciler(store, notifier),
		reconcile.NewPaymentReconciler(store, store, notifier),
	)

	// Create a new Chi router
	router := chi.NewRouter()
	router.Use(middleware.NewStructuredLogger(slog.Default()))
	handler.Routes(router)

	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = "8080" // Default port if not specified
	}

	go tgBot.Start()
	defer tgBot.Stop()

	log.Printf("Starting server on port %s", port)

	// Start the server
	err = http.ListenAndServe(":"+port, router)
	if err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func mustGetenv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Fatalf("%s environment variable not set", key)
	}
	return v
}

func getenvDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		log.Fatalf("invalid %s value %q: %v", key, v, err)
	}
	return n
}
