package storage

import (
	"context"

	"github.com/chris/imagegen-credits/pkg/models"
)

// PaymentStore defines the interface for payment records and their lifecycle.
// There is no failed terminal state: an unresolved payment stays pending
// indefinitely.
type PaymentStore interface {
	// GetPaymentByPaymentID retrieves a payment by its provider-issued id.
	// Returns ErrPaymentNotFound if no such payment exists.
	GetPaymentByPaymentID(ctx context.Context, paymentID string) (*models.Payment, error)

	// CreatePayment records a new pending payment. Returns
	// ErrDuplicatePaymentID if the payment id is already recorded.
	CreatePayment(ctx context.Context, payment *models.Payment) (*models.Payment, error)

	// SettlePayment atomically transitions a pending payment to succeeded and
	// credits the grant to the owning account in the same unit. A missing
	// account row is created with the grant as its initial balance. Returns
	// ErrPaymentAlreadySucceeded if the payment has already been settled, in
	// which case nothing is credited.
	SettlePayment(ctx context.Context, payment *models.Payment) (*models.Payment, error)
}
