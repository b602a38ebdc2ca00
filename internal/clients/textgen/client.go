package textgen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mesterwork/worksite-api/internal/config"
	"go.uber.org/zap"
)

// PriceHint is a saved tenant price passed to the generator so known
// tasks come back with the tenant's own prices
type PriceHint struct {
	Task              string  `json:"task"`
	Unit              string  `json:"unit,omitempty"`
	UnitPrice         float64 `json:"unitPrice"`
	MaterialUnitPrice float64 `json:"materialUnitPrice"`
}

// OfferPrompt is the input for structured offer generation
type OfferPrompt struct {
	Title      string      `json:"title"`
	Text       string      `json:"text"`
	PriceHints []PriceHint `json:"priceHints,omitempty"`
}

// DraftItem is one generated offer line
type DraftItem struct {
	Name              string  `json:"name"`
	Quantity          float64 `json:"quantity"`
	Unit              string  `json:"unit"`
	UnitPrice         float64 `json:"unitPrice"`
	MaterialUnitPrice float64 `json:"materialUnitPrice"`
}

// OfferDraft is the structured result of a generation call. Raw keeps
// the upstream response verbatim for audit.
type OfferDraft struct {
	Items []DraftItem     `json:"items"`
	Raw   json.RawMessage `json:"-"`
}

// Client calls the text generation provider that turns free-form job
// descriptions into structured offer items
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
	maxRetries int
	logger     *zap.Logger
}

func NewClient(cfg *config.TextGenConfig, logger *zap.Logger) *Client {
	timeout := cfg.TimeoutDuration()
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		maxRetries: cfg.MaxRetries,
		logger:     logger,
	}
}

// GenerateOfferItems asks the provider for structured offer items.
// A malformed response is retried up to maxRetries times before the
// error surfaces to the caller.
func (c *Client) GenerateOfferItems(ctx context.Context, prompt OfferPrompt) (*OfferDraft, error) {
	var lastErr error
	attempts := c.maxRetries + 1
	for attempt := 1; attempt <= attempts; attempt++ {
		draft, err := c.generate(ctx, prompt)
		if err == nil {
			return draft, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.logger.Warn("text generation attempt failed",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", attempts),
			zap.Error(err),
		)
	}
	return nil, fmt.Errorf("text generation failed after %d attempts: %w", attempts, lastErr)
}

func (c *Client) generate(ctx context.Context, prompt OfferPrompt) (*OfferDraft, error) {
	payload := struct {
		Model string `json:"model"`
		OfferPrompt
	}{Model: c.model, OfferPrompt: prompt}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal prompt: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/generate/offer", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("generation request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("generator returned status %d: %s", resp.StatusCode, truncate(raw, 200))
	}

	var draft OfferDraft
	if err := json.Unmarshal(raw, &draft); err != nil {
		return nil, fmt.Errorf("malformed generator response: %w", err)
	}
	if len(draft.Items) == 0 {
		return nil, fmt.Errorf("generator returned no items")
	}
	draft.Raw = raw
	return &draft, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
