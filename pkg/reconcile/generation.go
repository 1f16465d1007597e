// Package reconcile applies external callbacks to local state exactly once
// per logical event. Both reconcilers are constructed with their store and
// notifier dependencies; there is no process-wide bot reference.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/chris/imagegen-credits/pkg/extract"
	"github.com/chris/imagegen-credits/pkg/models"
	"github.com/chris/imagegen-credits/pkg/notify"
	"github.com/chris/imagegen-credits/pkg/storage"
)

// Ack is the reconciler's answer to a callback delivery. It maps directly to
// the JSON body the webhook returns to the provider.
type Ack struct {
	OK        bool   `json:"ok"`
	RequestID string `json:"request_id,omitempty"`
	Status    string `json:"status,omitempty"`
	UserID    int64  `json:"user_id,omitempty"`
	Credits   int64  `json:"credits,omitempty"`
	Error     string `json:"error,omitempty"`
}

// GenerationReconciler consumes generation-provider callbacks and drives the
// task lifecycle, refunding the ledger when a task fails.
type GenerationReconciler struct {
	store    storage.TaskStore
	notifier notify.Notifier
}

// NewGenerationReconciler creates a new GenerationReconciler.
func NewGenerationReconciler(store storage.TaskStore, notifier notify.Notifier) *GenerationReconciler {
	return &GenerationReconciler{store: store, notifier: notifier}
}

// Handle applies one generation callback delivery. Deliveries are
// at-least-once and may race; the store's status-conditioned transitions
// guarantee at most one state change and at most one refund per task no
// matter how this is interleaved. A returned error means an internal failure
// the provider should retry; every domain outcome is an Ack.
func (r *GenerationReconciler) Handle(ctx context.Context, cb *models.GenerationCallback) (*Ack, error) {
	task, err := r.store.GetTaskByRequestID(ctx, cb.RequestID)
	if err != nil {
		if errors.Is(err, storage.ErrTaskNotFound) {
			// Not retriable from the provider's point of view: acknowledge so
			// it stops, but flag the anomaly.
			slog.Error("generation callback for unknown request", "request_id", cb.RequestID)
			return &Ack{OK: false, Error: "unknown request_id"}, nil
		}
		return nil, fmt.Errorf("failed to look up task %s: %w", cb.RequestID, err)
	}

	if task.Status.IsTerminal() {
		slog.Info("generation callback already processed, ignoring", "request_id", cb.RequestID, "status", task.Status)
		return &Ack{OK: true}, nil
	}

	if cb.Status == models.GenerationStatusSuccess {
		resultURL, err := extract.ResultRef(cb)
		if err != nil {
			slog.Error("failed to extract result reference, treating as failure", "request_id", cb.RequestID, "error", err)
			if err := r.fail(ctx, task); err != nil {
				return nil, err
			}
			return &Ack{OK: false, Error: "result reference not found"}, nil
		}
		return r.complete(ctx, task, resultURL)
	}

	// Any non-success status, recognized or not, fails the task and refunds.
	slog.Warn("generation finished without success", "request_id", cb.RequestID, "status", cb.Status)
	if err := r.fail(ctx, task); err != nil {
		return nil, err
	}
	return &Ack{OK: false, Status: cb.Status}, nil
}

func (r *GenerationReconciler) complete(ctx context.Context, task *models.GenerationTask, resultURL string) (*Ack, error) {
	if _, err := r.store.CompleteTask(ctx, task.RequestID, resultURL); err != nil {
		if errors.Is(err, storage.ErrTaskAlreadyTerminal) {
			// A concurrent delivery won the transition.
			return &Ack{OK: true}, nil
		}
		return nil, fmt.Errorf("failed to complete task %s: %w", task.RequestID, err)
	}

	if err := r.notifier.SendResult(ctx, task.ChatID, resultURL); err != nil {
		// The debit already happened and the task outcome is authoritative
		// regardless of delivery failure.
		slog.Error("failed to deliver result", "request_id", task.RequestID, "chat_id", task.ChatID, "error", err)
	}

	return &Ack{OK: true, RequestID: task.RequestID}, nil
}

func (r *GenerationReconciler) fail(ctx context.Context, task *models.GenerationTask) error {
	if _, err := r.store.FailTask(ctx, task); err != nil {
		if errors.Is(err, storage.ErrTaskAlreadyTerminal) {
			return nil
		}
		return fmt.Errorf("failed to fail task %s: %w", task.RequestID, err)
	}
	slog.Info("task failed, cost refunded", "request_id", task.RequestID, "user_id", task.UserID, "cost", task.Cost)
	return nil
}
