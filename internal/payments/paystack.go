// Package payments verifies gateway transactions. The gateway is an external
// collaborator reached through a narrow HTTP client; nothing here touches
// marketplace state.
package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// DefaultBaseURL is the production Paystack API endpoint.
const DefaultBaseURL = "https://api.paystack.co"

// Client verifies Paystack transaction references.
type Client struct {
	BaseURL   string
	SecretKey string
	HTTP      *http.Client
}

// NewClient creates a Paystack client with the given secret key.
func NewClient(secretKey string) *Client {
	return &Client{
		BaseURL:   DefaultBaseURL,
		SecretKey: secretKey,
		HTTP:      &http.Client{Timeout: 15 * time.Second},
	}
}

// Verification is the outcome of a transaction verification.
type Verification struct {
	Verified  bool   `json:"verified"`
	Status    string `json:"status"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	Reference string `json:"reference"`
}

// verifyResponse mirrors the fields of the Paystack verify payload we use.
type verifyResponse struct {
	Status bool `json:"status"`
	Data   struct {
		Status    string `json:"status"`
		Amount    int64  `json:"amount"`
		Currency  string `json:"currency"`
		Reference string `json:"reference"`
	} `json:"data"`
}

// Verify checks a transaction reference with the gateway. Verified is true
// only when the gateway reports the transaction as successful.
func (c *Client) Verify(ctx context.Context, reference string) (*Verification, error) {
	endpoint := fmt.Sprintf("%s/transaction/verify/%s", c.BaseURL, url.PathEscape(reference))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("building verify request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.SecretKey)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("verifying transaction: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gateway returned status %d", resp.StatusCode)
	}

	var payload verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decoding verify response: %w", err)
	}

	return &Verification{
		Verified:  payload.Status && payload.Data.Status == "success",
		Status:    payload.Data.Status,
		Amount:    payload.Data.Amount,
		Currency:  payload.Data.Currency,
		Reference: payload.Data.Reference,
	}, nil
}
