package objectstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"clouddrive/internal/domain/services"
)

const (
	// DefaultWebhookTimeout is the HTTP timeout for purge notifications
	DefaultWebhookTimeout = 30 * time.Second
	// maxKeysPerRequest keeps webhook bodies bounded on large purges
	maxKeysPerRequest = 1000
)

// WebhookDeleter posts purged keys to the storage service that owns the bytes.
type WebhookDeleter struct {
	url        string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewWebhookDeleter creates a deleter that notifies url
func NewWebhookDeleter(url string, logger *slog.Logger) services.ObjectDeleter {
	return NewWebhookDeleterWithClient(url, &http.Client{Timeout: DefaultWebhookTimeout}, logger)
}

// NewWebhookDeleterWithClient creates a deleter with a custom HTTP client.
func NewWebhookDeleterWithClient(url string, client *http.Client, logger *slog.Logger) *WebhookDeleter {
	return &WebhookDeleter{url: url, httpClient: client, logger: logger}
}

type purgeRequest struct {
	OwnerID string   `json:"owner_id"`
	Keys    []string `json:"keys"`
}

// DeleteObjects sends the keys in batches. The first failing batch stops the run.
func (d *WebhookDeleter) DeleteObjects(ctx context.Context, ownerID string, keys []string) error {
	for start := 0; start < len(keys); start += maxKeysPerRequest {
		end := min(start+maxKeysPerRequest, len(keys))
		if err := d.post(ctx, &purgeRequest{OwnerID: ownerID, Keys: keys[start:end]}); err != nil {
			return fmt.Errorf("purge batch %d-%d: %w", start, end, err)
		}
	}
	if len(keys) > 0 {
		d.logger.Info("purge webhook delivered", "owner_id", ownerID, "count", len(keys))
	}
	return nil
}

func (d *WebhookDeleter) post(ctx context.Context, payload *purgeRequest) error {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.url, bytes.NewReader(payloadBytes))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("webhook error (status %d): %s", resp.StatusCode, string(body))
	}
	return nil
}
