// Package notify delivers operator notifications over a chat webhook.
//
// When no webhook URL is configured a noop implementation is returned, so
// callers never branch on configuration. Delivery failures are returned to
// the caller for logging and are never retried.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"labelspool/internal/config"
	"labelspool/internal/label"
	"labelspool/internal/textutil"
)

const userAgent = "labelspool/0.1.0"

// Service is the notification surface exposed to the agent.
type Service interface {
	// OrderReceived posts a formatted summary of one order to the
	// configured recipient.
	OrderReceived(ctx context.Context, order label.Order) error
}

// NewService builds a webhook notifier when configured, a noop otherwise.
func NewService(cfg *config.Config) Service {
	endpoint := strings.TrimSpace(cfg.Notify.WebhookURL)
	if endpoint == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notify.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &webhookService{
		endpoint:  endpoint,
		token:     cfg.Notify.Token,
		recipient: cfg.Notify.RecipientID,
		client:    &http.Client{Timeout: timeout},
	}
}

type webhookService struct {
	endpoint  string
	token     string
	recipient string
	client    *http.Client
}

type messagePayload struct {
	Recipient recipientRef `json:"recipient"`
	Message   messageText  `json:"message"`
}

type recipientRef struct {
	ID string `json:"id"`
}

type messageText struct {
	Text string `json:"text"`
}

func (s *webhookService) OrderReceived(ctx context.Context, order label.Order) error {
	return s.send(ctx, formatOrder(order))
}

func (s *webhookService) send(ctx context.Context, text string) error {
	body, err := json.Marshal(messagePayload{
		Recipient: recipientRef{ID: s.recipient},
		Message:   messageText{Text: text},
	})
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build notification request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("send notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("webhook returned %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func formatOrder(order label.Order) string {
	var builder strings.Builder
	builder.WriteString("📦 New order from: ")
	builder.WriteString(orDash(order.CustomerName))
	builder.WriteString("\n🛒 Products:\n")
	for _, product := range order.Products {
		fmt.Fprintf(&builder, "- %s (x%d)\n", textutil.ShortenProductName(product.Name), product.Quantity)
	}
	builder.WriteString("🚚 Shipping: ")
	builder.WriteString(orDash(order.ShippingMethod))
	builder.WriteString("\n🌐 Platform: ")
	builder.WriteString(textutil.DisplayTitle(order.Platform))
	builder.WriteString("\n📎 ID: ")
	builder.WriteString(orDash(order.ID))
	return builder.String()
}

func orDash(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}

type noopService struct{}

func (noopService) OrderReceived(context.Context, label.Order) error { return nil }
