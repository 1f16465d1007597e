package storage

import "errors"

// ErrInsufficientFunds is returned when an account's balance does not cover a debit.
// No mutation occurs; the caller surfaces it to the user.
var ErrInsufficientFunds = errors.New("insufficient funds")

// ErrAccountNotFound is returned when no account exists for a user id.
var ErrAccountNotFound = errors.New("account not found")

// ErrAccountExists is returned when creating an account that already exists.
var ErrAccountExists = errors.New("account already exists")

// ErrTaskNotFound is returned when no generation task exists for a request id.
var ErrTaskNotFound = errors.New("generation task not found")

// ErrDuplicateRequestID is returned when creating a task whose provider
// request id has already been recorded. Under correct provider behavior this
// is a collision and fatal to the creating operation.
var ErrDuplicateRequestID = errors.New("duplicate request id")

// ErrTaskAlreadyTerminal is returned when transitioning a task that is
// already in a terminal state. This is the idempotency guard for retried
// generation callbacks and is expected, not exceptional.
var ErrTaskAlreadyTerminal = errors.New("task already in a terminal state")

// ErrPaymentNotFound is returned when no payment exists for a payment id.
var ErrPaymentNotFound = errors.New("payment not found")

// ErrDuplicatePaymentID is returned when creating a payment whose provider
// payment id has already been recorded.
var ErrDuplicatePaymentID = errors.New("duplicate payment id")

// ErrPaymentAlreadySucceeded is returned when settling a payment that has
// already succeeded. This is the idempotency guard for retried payment
// callbacks.
var ErrPaymentAlreadySucceeded = errors.New("payment already succeeded")
