package payments

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/mesterwork/worksite-api/internal/config"
	"go.uber.org/zap"
)

// Session is a hosted checkout or portal session
type Session struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// WebhookEvent is a verified event pushed by the payment processor
type WebhookEvent struct {
	Type          string `json:"type"`
	CustomerEmail string `json:"customerEmail"`
	Subscription  string `json:"subscription,omitempty"`
}

// Client wraps the subscription payment processor
type Client struct {
	httpClient    *http.Client
	baseURL       string
	apiKey        string
	webhookSecret string
	successURL    string
	cancelURL     string
	logger        *zap.Logger
}

func NewClient(cfg *config.PaymentsConfig, logger *zap.Logger) *Client {
	return &Client{
		httpClient:    &http.Client{Timeout: 20 * time.Second},
		baseURL:       cfg.BaseURL,
		apiKey:        cfg.APIKey,
		webhookSecret: cfg.WebhookSecret,
		successURL:    cfg.SuccessURL,
		cancelURL:     cfg.CancelURL,
		logger:        logger,
	}
}

// CreateCheckoutSession starts a hosted subscription checkout for the customer
func (c *Client) CreateCheckoutSession(ctx context.Context, customerEmail, priceID string) (*Session, error) {
	return c.createSession(ctx, "/v1/checkout/sessions", map[string]string{
		"customerEmail": customerEmail,
		"priceId":       priceID,
		"successUrl":    c.successURL,
		"cancelUrl":     c.cancelURL,
	})
}

// CreatePortalSession opens the hosted billing portal for an existing customer
func (c *Client) CreatePortalSession(ctx context.Context, customerEmail string) (*Session, error) {
	return c.createSession(ctx, "/v1/portal/sessions", map[string]string{
		"customerEmail": customerEmail,
		"returnUrl":     c.successURL,
	})
}

func (c *Client) createSession(ctx context.Context, path string, payload map[string]string) (*Session, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal session request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("session request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("payment processor returned status %d", resp.StatusCode)
	}

	var session Session
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, fmt.Errorf("malformed session response: %w", err)
	}
	if session.URL == "" {
		return nil, fmt.Errorf("session response missing url")
	}
	return &session, nil
}

// VerifyWebhook checks the HMAC signature on a webhook payload and
// decodes the event. The signature header carries a hex-encoded
// SHA-256 HMAC of the raw body.
func (c *Client) VerifyWebhook(payload []byte, signature string) (*WebhookEvent, error) {
	mac := hmac.New(sha256.New, []byte(c.webhookSecret))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return nil, fmt.Errorf("invalid webhook signature")
	}

	var event WebhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("malformed webhook payload: %w", err)
	}
	return &event, nil
}
