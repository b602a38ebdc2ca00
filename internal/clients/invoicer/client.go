package invoicer

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

// InvoiceLine is one line on the issued invoice
type InvoiceLine struct {
	Name       string  `json:"name"`
	Quantity   float64 `json:"quantity"`
	Unit       string  `json:"unit,omitempty"`
	UnitPrice  float64 `json:"unitPrice"`
	TotalPrice float64 `json:"totalPrice"`
}

// InvoiceRequest asks the invoicing provider to issue a legal invoice
type InvoiceRequest struct {
	SellerEmail    string        `json:"sellerEmail"`
	BuyerName      string        `json:"buyerName"`
	Title          string        `json:"title"`
	Currency       string        `json:"currency"`
	BankAccount    string        `json:"bankAccount,omitempty"`
	Lines          []InvoiceLine `json:"lines"`
	PaymentDueDays int           `json:"paymentDueDays"`
}

// InvoiceResult is the issued invoice returned by the provider
type InvoiceResult struct {
	InvoiceNumber string `json:"invoiceNumber"`
	PDFURL        string `json:"pdfUrl"`
}

// Client wraps the external invoicing provider
type Client struct {
	httpClient  *http.Client
	baseURL     string
	apiKey      string
	bankAccount string
	logger      *zap.Logger
}

func NewClient(cfg *config.InvoicerConfig, logger *zap.Logger) *Client {
	return &Client{
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		baseURL:     cfg.BaseURL,
		apiKey:      cfg.APIKey,
		bankAccount: cfg.BankAccount,
		logger:      logger,
	}
}

// IssueInvoice issues an invoice and returns the assigned number and
// document URL. Issuing is not retried: the provider assigns sequential
// invoice numbers and a blind retry could double-issue.
func (c *Client) IssueInvoice(ctx context.Context, req InvoiceRequest) (*InvoiceResult, error) {
	if req.BankAccount == "" {
		req.BankAccount = c.bankAccount
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal invoice request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/invoices", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("invoice request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("invoicer returned status %d", resp.StatusCode)
	}

	var result InvoiceResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("malformed invoicer response: %w", err)
	}
	if result.InvoiceNumber == "" {
		return nil, fmt.Errorf("invoicer response missing invoice number")
	}
	return &result, nil
}
