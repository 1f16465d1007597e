// Package payments is the outbound client for the payment provider. It
// creates redirect checkouts carrying the account id and credit grant in
// metadata; the provider echoes that metadata back through the payment
// webhook.
package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// LinkCreator defines the interface the bot uses to create a checkout.
type LinkCreator interface {
	// CreatePayment creates a provider checkout for a plan amount and returns
	// the provider-assigned payment id plus the URL to send the user to.
	CreatePayment(ctx context.Context, userID int64, amount int64) (paymentID, paymentURL string, err error)
}

// Client calls the payment provider's HTTP API.
type Client struct {
	APIURL     string
	ShopID     string
	SecretKey  string
	ReturnURL  string
	Currency   string
	HTTPClient *http.Client
}

// NewClient creates a new Client.
func NewClient(apiURL, shopID, secretKey, returnURL string) *Client {
	return &Client{
		APIURL:     apiURL,
		ShopID:     shopID,
		SecretKey:  secretKey,
		ReturnURL:  returnURL,
		Currency:   "RUB",
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Make sure we conform to the interface
var _ LinkCreator = (*Client)(nil)

type createPaymentRequest struct {
	Amount       amountSpec        `json:"amount"`
	Confirmation confirmationSpec  `json:"confirmation"`
	Description  string            `json:"description"`
	Metadata     map[string]string `json:"metadata"`
	Capture      bool              `json:"capture"`
}

type amountSpec struct {
	Value    string `json:"value"`
	Currency string `json:"currency"`
}

type confirmationSpec struct {
	Type            string `json:"type"`
	ReturnURL       string `json:"return_url,omitempty"`
	ConfirmationURL string `json:"confirmation_url,omitempty"`
}

type createPaymentResponse struct {
	ID           string           `json:"id"`
	Confirmation confirmationSpec `json:"confirmation"`
}

// CreatePayment creates a redirect checkout for one of the fixed plans.
func (c *Client) CreatePayment(ctx context.Context, userID int64, amount int64) (string, string, error) {
	credits, ok := CreditsFor(amount)
	if !ok {
		return "", "", fmt.Errorf("unsupported plan amount: %d", amount)
	}

	payload := createPaymentRequest{
		Amount:       amountSpec{Value: fmt.Sprintf("%d.00", amount), Currency: c.Currency},
		Confirmation: confirmationSpec{Type: "redirect", ReturnURL: c.ReturnURL},
		Description:  fmt.Sprintf("Purchase of %d credits for user %d", credits, userID),
		Metadata: map[string]string{
			"account_id": fmt.Sprintf("%d", userID),
			"credits":    fmt.Sprintf("%d", credits),
			"amount":     fmt.Sprintf("%d", amount),
		},
		Capture: true,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", "", fmt.Errorf("failed to marshal payment request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.APIURL, bytes.NewReader(body))
	if err != nil {
		return "", "", fmt.Errorf("failed to build payment request: %w", err)
	}
	httpReq.SetBasicAuth(c.ShopID, c.SecretKey)
	httpReq.Header.Set("Content-Type", "application/json")
	// The provider deduplicates create calls on this key, so a client retry
	// cannot open two checkouts.
	httpReq.Header.Set("Idempotence-Key", uuid.New().String())

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return "", "", fmt.Errorf("failed to call payment API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errText, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", "", fmt.Errorf("payment API returned %d: %s", resp.StatusCode, errText)
	}

	var created createPaymentResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", "", fmt.Errorf("failed to decode payment API response: %w", err)
	}
	if created.ID == "" || created.Confirmation.ConfirmationURL == "" {
		return "", "", fmt.Errorf("payment API response missing id or confirmation url")
	}

	return created.ID, created.Confirmation.ConfirmationURL, nil
}
