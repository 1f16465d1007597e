// Package genapi is the outbound client for the image-generation provider.
// Submission is the only blocking provider call in the system; the result
// arrives later through the generation callback webhook.
package genapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

// Submitter defines the interface the bot uses to start a generation job.
type Submitter interface {
	// Submit sends a generation request and returns the provider-assigned
	// request id the callback will be keyed by.
	Submit(ctx context.Context, req *SubmitRequest) (string, error)
}

// SubmitRequest carries everything the provider needs to run a job.
type SubmitRequest struct {
	ImageBytes []byte
	Prompt     string
	Model      string
	Size       string
}

// Client calls the generation provider's HTTP API.
type Client struct {
	APIURL      string
	APIKey      string
	CallbackURL string
	HTTPClient  *http.Client
}

// NewClient creates a new Client.
func NewClient(apiURL, apiKey, callbackURL string) *Client {
	return &Client{
		APIURL:      apiURL,
		APIKey:      apiKey,
		CallbackURL: callbackURL,
		HTTPClient:  &http.Client{Timeout: 30 * time.Second},
	}
}

// Make sure we conform to the interface
var _ Submitter = (*Client)(nil)

type submitResponse struct {
	RequestID string `json:"request_id"`
}

// Submit sends the multipart generation request and returns the provider's
// request id.
func (c *Client) Submit(ctx context.Context, req *SubmitRequest) (string, error) {
	var body bytes.Buffer
	form := multipart.NewWriter(&body)

	part, err := form.CreateFormFile("image[]", "input.png")
	if err != nil {
		return "", fmt.Errorf("failed to create image form part: %w", err)
	}
	if _, err := part.Write(req.ImageBytes); err != nil {
		return "", fmt.Errorf("failed to write image bytes: %w", err)
	}

	fields := map[string]string{
		"prompt":        req.Prompt,
		"model":         req.Model,
		"size":          req.Size,
		"quality":       "low",
		"n":             "1",
		"output_format": "png",
		"background":    "auto",
		"moderation":    "auto",
		"callback_url":  c.CallbackURL,
	}
	for name, value := range fields {
		if err := form.WriteField(name, value); err != nil {
			return "", fmt.Errorf("failed to write form field %s: %w", name, err)
		}
	}
	if err := form.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize form: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.APIURL, &body)
	if err != nil {
		return "", fmt.Errorf("failed to build submit request: %w", err)
	}
	httpReq.Header.Set("Content-Type", form.FormDataContentType())
	httpReq.Header.Set("Authorization", "Bearer "+c.APIKey)
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to call generation API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errText, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("generation API returned %d: %s", resp.StatusCode, errText)
	}

	var submitted submitResponse
	if err := json.NewDecoder(resp.Body).Decode(&submitted); err != nil {
		return "", fmt.Errorf("failed to decode generation API response: %w", err)
	}
	if submitted.RequestID == "" {
		return "", fmt.Errorf("generation API response missing request_id")
	}

	return submitted.RequestID, nil
}
