package main

import (
	"context"
	"encoding/json"
	"log"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/chris/imagegen-credits/pkg/models"
	"github.com/chris/imagegen-credits/pkg/notify"
	"github.com/joho/godotenv"
	tele "gopkg.in/telebot.v3"
)

var notifier notify.Notifier

func init() {
	// Load environment variables from .env file (useful for local testing).
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Initialize dependencies once.
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		log.Fatal("TELEGRAM_BOT_TOKEN environment variable not set")
	}

	// The delivery lambda only sends, it never polls for updates.
	bot, err := tele.NewBot(tele.Settings{Token: token, Synchronous: true})
	if err != nil {
		log.Fatalf("failed to create telegram bot: %v", err)
	}

	notifier = notify.NewTelegramNotifier(bot)
}

// HandleRequest delivers queued notifications to Telegram.
func HandleRequest(ctx context.Context, sqsEvent events.SQSEvent) error {
	for _, message := range sqsEvent.Records {
		log.Printf("Processing message %s", message.MessageId)

		var n models.Notification
		if err := json.Unmarshal([]byte(message.Body), &n); err != nil {
			log.Printf("ERROR: failed to unmarshal notification from SQS message %s: %v", message.MessageId, err)
			// Returning an error will cause SQS to retry the message, which is appropriate here.
			return err
		}

		var err error
		switch n.Kind {
		case models.NotifyResult:
			err = notifier.SendResult(ctx, n.ChatID, n.ResultURL)
		case models.NotifyMessage:
			err = notifier.SendMessage(ctx, n.ChatID, n.Text)
		default:
			log.Printf("ERROR: unknown notification kind %q in message %s", n.Kind, message.MessageId)
			continue
		}
		if err != nil {
			log.Printf("ERROR: failed to deliver notification %s: %v", n.ID, err)
			// Persistent failures end up in the DLQ after the redrive limit.
			return err
		}

		log.Printf("Successfully delivered notification %s", n.ID)
	}

	return nil
}

func main() {
	lambda.Start(HandleRequest)
}
