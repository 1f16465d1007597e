package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/google/uuid"

	"github.com/chris/imagegen-credits/pkg/models"
)

// SQSAPI is the subset of the SQS client used by the queue notifier.
type SQSAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// QueueNotifier enqueues notification jobs on SQS instead of delivering them
// inline. A separate worker drains the queue and performs the actual Telegram
// sends, keeping provider webhook requests free of messaging latency.
type QueueNotifier struct {
	Client   SQSAPI
	QueueURL string
}

// NewQueueNotifier creates a new QueueNotifier.
func NewQueueNotifier(client SQSAPI, queueURL string) *QueueNotifier {
	return &QueueNotifier{Client: client, QueueURL: queueURL}
}

// Make sure we conform to the interface
var _ Notifier = (*QueueNotifier)(nil)

// SendResult enqueues a result delivery job.
func (n *QueueNotifier) SendResult(ctx context.Context, chatID int64, resultURL string) error {
	return n.enqueue(ctx, models.Notification{
		ID:        uuid.New().String(),
		Kind:      models.NotifyResult,
		ChatID:    chatID,
		ResultURL: resultURL,
	})
}

// SendMessage enqueues a text delivery job.
func (n *QueueNotifier) SendMessage(ctx context.Context, userID int64, text string) error {
	return n.enqueue(ctx, models.Notification{
		ID:     uuid.New().String(),
		Kind:   models.NotifyMessage,
		ChatID: userID,
		Text:   text,
	})
}

func (n *QueueNotifier) enqueue(ctx context.Context, notification models.Notification) error {
	body, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("failed to marshal notification for SQS: %w", err)
	}

	_, err = n.Client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(n.QueueURL),
		MessageBody: aws.String(string(body)),
	})
	if err != nil {
		return fmt.Errorf("failed to send notification to SQS: %w", err)
	}

	return nil
}
