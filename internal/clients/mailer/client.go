package mailer

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

// Message is an outbound transactional email
type Message struct {
	To            string `json:"to"`
	Subject       string `json:"subject"`
	HTMLBody      string `json:"htmlBody"`
	AttachmentURL string `json:"attachmentUrl,omitempty"`
}

// Client sends transactional email through the mail provider. Callers
// treat delivery as fire-and-forget; a failed send is logged, never
// propagated into the business flow.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	apiKey      string
	senderEmail string
	senderName  string
	logger      *zap.Logger
}

func NewClient(cfg *config.MailerConfig, logger *zap.Logger) *Client {
	return &Client{
		httpClient:  &http.Client{Timeout: 15 * time.Second},
		baseURL:     cfg.BaseURL,
		apiKey:      cfg.APIKey,
		senderEmail: cfg.SenderEmail,
		senderName:  cfg.SenderName,
		logger:      logger,
	}
}

// Send delivers a single message
func (c *Client) Send(ctx context.Context, msg Message) error {
	payload := struct {
		FromEmail string `json:"fromEmail"`
		FromName  string `json:"fromName"`
		Message
	}{FromEmail: c.senderEmail, FromName: c.senderName, Message: msg}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("mail request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("mailer returned status %d", resp.StatusCode)
	}
	return nil
}

// SendAsync delivers a message in the background and logs the outcome.
// Uses a detached context so the send survives the request that
// triggered it.
func (c *Client) SendAsync(msg Message) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := c.Send(ctx, msg); err != nil {
			c.logger.Warn("background mail delivery failed",
				zap.String("to", msg.To),
				zap.String("subject", msg.Subject),
				zap.Error(err),
			)
			return
		}
		c.logger.Info("mail delivered",
			zap.String("to", msg.To),
			zap.String("subject", msg.Subject),
		)
	}()
}
