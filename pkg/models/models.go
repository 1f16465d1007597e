package models

import (
	"time"
)

// TaskStatus defines the possible states of a generation task.
type TaskStatus string

const (
	TaskPending TaskStatus = "pending"
	TaskSuccess TaskStatus = "success"
	TaskFailed  TaskStatus = "failed"
)

// IsTerminal reports whether no further transition is permitted.
func (s TaskStatus) IsTerminal() bool {
	return s == TaskSuccess || s == TaskFailed
}

// PaymentStatus defines the possible states of a payment.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentSucceeded PaymentStatus = "succeeded"
)

// Account represents a user's prepaid credit balance.
// Balance is an integer credit count and never goes negative; all mutations
// go through the store's conditional updates.
type Account struct {
	UserID    int64     `dynamodbav:"user_id" json:"user_id"`
	Username  string    `dynamodbav:"username,omitempty" json:"username,omitempty"`
	FirstName string    `dynamodbav:"first_name,omitempty" json:"first_name,omitempty"`
	Balance   int64     `dynamodbav:"balance" json:"balance"`
	CreatedAt time.Time `dynamodbav:"created_at" json:"created_at"`
	UpdatedAt time.Time `dynamodbav:"updated_at" json:"updated_at"`
}

// GenerationTask represents one submitted image-generation job, keyed by the
// provider-issued request id. It is bound 1:1 to the debit that paid for it:
// Cost is the amount refunded if the task fails.
type GenerationTask struct {
	RequestID string     `dynamodbav:"request_id" json:"request_id"`
	UserID    int64      `dynamodbav:"user_id" json:"user_id"`
	ChatID    int64      `dynamodbav:"chat_id" json:"chat_id"`
	Status    TaskStatus `dynamodbav:"status" json:"status"`
	Prompt    string     `dynamodbav:"prompt,omitempty" json:"prompt,omitempty"`
	Model     string     `dynamodbav:"model" json:"model"`
	Size      string     `dynamodbav:"size" json:"size"`
	Cost      int64      `dynamodbav:"cost" json:"cost"`
	ResultURL string     `dynamodbav:"result_url,omitempty" json:"result_url,omitempty"`
	CreatedAt time.Time  `dynamodbav:"created_at" json:"created_at"`
	UpdatedAt time.Time  `dynamodbav:"updated_at" json:"updated_at"`
}

// Payment represents one payment-provider checkout, keyed by the
// provider-issued payment id. Credits is the grant applied to the owning
// account when the payment succeeds.
type Payment struct {
	PaymentID string        `dynamodbav:"payment_id" json:"payment_id"`
	UserID    int64         `dynamodbav:"user_id" json:"user_id"`
	Amount    int64         `dynamodbav:"amount" json:"amount"`
	Credits   int64         `dynamodbav:"credits" json:"credits"`
	Status    PaymentStatus `dynamodbav:"status" json:"status"`
	CreatedAt time.Time     `dynamodbav:"created_at" json:"created_at"`
	UpdatedAt time.Time     `dynamodbav:"updated_at" json:"updated_at"`
}

// NotificationKind distinguishes the two delivery shapes the bot can send.
type NotificationKind string

const (
	NotifyResult  NotificationKind = "result"
	NotifyMessage NotificationKind = "message"
)

// Notification is a fire-and-forget delivery job for the messaging
// collaborator. Result notifications carry an image URL for the chat;
// message notifications carry plain text for the user.
type Notification struct {
	ID        string           `json:"id"`
	Kind      NotificationKind `json:"kind"`
	ChatID    int64            `json:"chat_id"`
	ResultURL string           `json:"result_url,omitempty"`
	Text      string           `json:"text,omitempty"`
}
