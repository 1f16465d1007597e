// Package handlers exposes the two inbound provider webhooks over HTTP. The
// handlers only decode payloads, delegate to the reconcilers, and translate
// the error taxonomy into status codes: acknowledgements for everything a
// provider retry could make worse, client errors for malformed or suspicious
// input, 500 only for genuine internal failures.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/chris/imagegen-credits/pkg/models"
	"github.com/chris/imagegen-credits/pkg/reconcile"
)

// WebhookHandler holds the reconcilers behind the webhook endpoints.
type WebhookHandler struct {
	Generation *reconcile.GenerationReconciler
	Payment    *reconcile.PaymentReconciler
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(generation *reconcile.GenerationReconciler, payment *reconcile.PaymentReconciler) *WebhookHandler {
	return &WebhookHandler{Generation: generation, Payment: payment}
}

// Routes mounts the webhook endpoints on a router.
func (h *WebhookHandler) Routes(r chi.Router) {
	r.Post("/gen/callback", h.GenerationCallback)
	r.Post("/payments/webhook", h.PaymentCallback)
}

// GenerationCallback handles a generation-provider callback delivery.
func (h *WebhookHandler) GenerationCallback(w http.ResponseWriter, r *http.Request) {
	var cb models.GenerationCallback
	if err := json.NewDecoder(r.Body).Decode(&cb); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	if cb.RequestID == "" {
		http.Error(w, "Missing request_id", http.StatusBadRequest)
		return
	}

	ack, err := h.Generation.Handle(r.Context(), &cb)
	if err != nil {
		slog.Error("generation callback failed", "request_id", cb.RequestID, "error", err)
		http.Error(w, fmt.Sprintf("Failed to process callback: %v", err), http.StatusInternalServerError)
		return
	}

	writeAck(w, http.StatusOK, ack)
}

// PaymentCallback handles a payment-provider callback delivery.
func (h *WebhookHandler) PaymentCallback(w http.ResponseWriter, r *http.Request) {
	var cb models.PaymentCallback
	if err := json.NewDecoder(r.Body).Decode(&cb); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	ack, err := h.Payment.Handle(r.Context(), &cb)
	if err != nil {
		if errors.Is(err, reconcile.ErrUnknownPayment) || errors.Is(err, reconcile.ErrMalformedCallback) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		slog.Error("payment callback failed", "payment_id", cb.Object.ID, "error", err)
		http.Error(w, fmt.Sprintf("Failed to process callback: %v", err), http.StatusInternalServerError)
		return
	}

	writeAck(w, http.StatusOK, ack)
}

func writeAck(w http.ResponseWriter, status int, ack *reconcile.Ack) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(ack); err != nil {
		slog.Error("failed to write webhook response", "error", err)
	}
}
