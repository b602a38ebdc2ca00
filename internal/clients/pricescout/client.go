package pricescout

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/mesterwork/worksite-api/internal/config"
	"go.uber.org/zap"
)

// MaterialQuery names one material to look up vendor prices for
type MaterialQuery struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Unit string `json:"unit,omitempty"`
}

// VendorQuote is one scraped vendor price
type VendorQuote struct {
	Vendor   string  `json:"vendor"`
	Price    float64 `json:"price"`
	Currency string  `json:"currency"`
	URL      string  `json:"url,omitempty"`
}

// QuoteResult maps a queried material to its vendor quotes
type QuoteResult struct {
	MaterialID string        `json:"materialId"`
	Quotes     []VendorQuote `json:"quotes"`
}

// Client wraps the web-scraping price lookup provider
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	logger     *zap.Logger
}

func NewClient(cfg *config.PriceScoutConfig, logger *zap.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		logger:     logger,
	}
}

// QuoteBatch fetches vendor quotes for one batch of materials. Batching
// and throttling across batches are the caller's job.
func (c *Client) QuoteBatch(ctx context.Context, queries []MaterialQuery) ([]QuoteResult, error) {
	body, err := json.Marshal(struct {
		Materials []MaterialQuery `json:"materials"`
	}{Materials: queries})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal queries: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/quotes", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("quote request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("price scout returned status %d", resp.StatusCode)
	}

	var result struct {
		Results []QuoteResult `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("malformed price scout response: %w", err)
	}
	return result.Results, nil
}
