package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/chris/imagegen-credits/pkg/models"
	"github.com/chris/imagegen-credits/pkg/notify"
	"github.com/chris/imagegen-credits/pkg/storage"
)

// ErrUnknownPayment is returned for a callback naming a payment we never
// created. Unlike an unknown generation request this is not acknowledged: it
// is surfaced as a client error and logged as a possible attack.
var ErrUnknownPayment = errors.New("unknown payment")

// ErrMalformedCallback is returned when the callback is missing the payment
// id or the account id.
var ErrMalformedCallback = errors.New("missing payment id or account id")

// PaymentReconciler consumes payment-provider callbacks and drives the
// payment lifecycle, crediting the ledger on success.
type PaymentReconciler struct {
	store    storage.PaymentStore
	ledger   storage.LedgerStore
	notifier notify.Notifier
}

// NewPaymentReconciler creates a new PaymentReconciler.
func NewPaymentReconciler(store storage.PaymentStore, ledger storage.LedgerStore, notifier notify.Notifier) *PaymentReconciler {
	return &PaymentReconciler{store: store, ledger: ledger, notifier: notifier}
}

// Handle applies one payment callback delivery. The store's
// status-conditioned settlement guarantees at most one credit per payment
// under concurrent redelivery.
func (r *PaymentReconciler) Handle(ctx context.Context, cb *models.PaymentCallback) (*Ack, error) {
	if cb.Event != models.PaymentEventSucceeded {
		slog.Info("ignoring payment event", "event", cb.Event)
		return &Ack{OK: true}, nil
	}

	userID := int64(cb.Object.Metadata.AccountID)
	if cb.Object.ID == "" || userID == 0 {
		return nil, ErrMalformedCallback
	}

	payment, err := r.store.GetPaymentByPaymentID(ctx, cb.Object.ID)
	if err != nil {
		if errors.Is(err, storage.ErrPaymentNotFound) {
			slog.Error("callback for unknown payment", "payment_id", cb.Object.ID, "user_id", userID)
			return nil, fmt.Errorf("%w: %s", ErrUnknownPayment, cb.Object.ID)
		}
		return nil, fmt.Errorf("failed to look up payment %s: %w", cb.Object.ID, err)
	}

	if payment.Status == models.PaymentSucceeded {
		slog.Info("payment already processed", "payment_id", payment.PaymentID)
		return &Ack{OK: true}, nil
	}

	settled, err := r.store.SettlePayment(ctx, payment)
	if err != nil {
		if errors.Is(err, storage.ErrPaymentAlreadySucceeded) {
			// A concurrent delivery won the settlement.
			return &Ack{OK: true}, nil
		}
		return nil, fmt.Errorf("failed to settle payment %s: %w", payment.PaymentID, err)
	}

	text := fmt.Sprintf("✅ Payment received! %d credits have been added to your balance.", settled.Credits)
	if account, err := r.ledger.GetAccount(ctx, settled.UserID); err == nil {
		text = fmt.Sprintf("%s\n\n💳 Current balance: %d credits", text, account.Balance)
	}
	if err := r.notifier.SendMessage(ctx, settled.UserID, text); err != nil {
		slog.Error("failed to deliver payment notification", "payment_id", settled.PaymentID, "user_id", settled.UserID, "error", err)
	}

	return &Ack{OK: true, UserID: settled.UserID, Credits: settled.Credits}, nil
}
