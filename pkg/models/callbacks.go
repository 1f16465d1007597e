package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// GenerationCallback is the inbound payload delivered by the generation
// provider when a job finishes. Result and FullResponse are kept raw because
// the provider is inconsistent about their shape; pkg/extract owns the
// documented precedence for pulling a result reference out of them.
type GenerationCallback struct {
	RequestID    string          `json:"request_id"`
	Status       string          `json:"status"`
	Result       json.RawMessage `json:"result,omitempty"`
	FullResponse json.RawMessage `json:"full_response,omitempty"`
}

// GenerationStatusSuccess is the only status string that counts as success.
// Every other value, recognized or not, takes the failed path.
const GenerationStatusSuccess = "success"

// PaymentEventSucceeded is the only payment event that triggers settlement.
const PaymentEventSucceeded = "payment.succeeded"

// PaymentCallback is the inbound payload delivered by the payment provider.
type PaymentCallback struct {
	Event  string        `json:"event"`
	Object PaymentObject `json:"object"`
}

// PaymentObject carries the provider's payment id and the metadata we
// attached at payment-link creation time.
type PaymentObject struct {
	ID       string          `json:"id"`
	Metadata PaymentMetadata `json:"metadata"`
}

// PaymentMetadata echoes back the values set when the payment was created.
type PaymentMetadata struct {
	AccountID FlexInt64 `json:"account_id"`
	Credits   FlexInt64 `json:"credits"`
	Amount    FlexInt64 `json:"amount"`
}

// FlexInt64 decodes from either a JSON number or a numeric JSON string. The
// payment provider round-trips metadata values as strings.
type FlexInt64 int64

func (f *FlexInt64) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = 0
		return nil
	}
	n, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid numeric value %q: %w", data, err)
	}
	*f = FlexInt64(n)
	return nil
}
