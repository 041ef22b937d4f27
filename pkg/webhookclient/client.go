package webhookclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fr0stylo/hooksig/pkg/webhooksig"
)

const maxResponseBytes = 64 << 10

// Client sends signed webhook deliveries to one receiver endpoint.
type Client struct {
	Endpoint    string
	Secrets     []string
	ContentType string
	Timeout     time.Duration
	HTTPClient  *http.Client
}

// Result describes one completed delivery attempt.
type Result struct {
	MessageID    string
	StatusCode   int
	Duration     time.Duration
	ResponseBody string
}

// Send signs body with every configured secret and posts it once.
func (c Client) Send(ctx context.Context, body []byte) (Result, error) {
	return c.SendWithID(ctx, webhooksig.NewMessageID(), body)
}

// SendWithID is Send with a caller-chosen message id.
func (c Client) SendWithID(ctx context.Context, messageID string, body []byte) (Result, error) {
	endpoint := strings.TrimSpace(c.Endpoint)
	if endpoint == "" {
		return Result{}, fmt.Errorf("endpoint is required")
	}
	sig, err := webhooksig.Sign(messageID, body, c.Secrets...)
	if err != nil {
		return Result{}, fmt.Errorf("sign delivery: %w", err)
	}

	httpClient := c.HTTPClient
	if httpClient == nil {
		timeout := c.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("build request: %w", err)
	}
	sig.Apply(req.Header)
	contentType := strings.TrimSpace(c.ContentType)
	if contentType == "" {
		contentType = "application/json"
	}
	req.Header.Set("Content-Type", contentType)

	started := time.Now()
	resp, err := httpClient.Do(req)
	if err != nil {
		return Result{MessageID: sig.MessageID}, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	payload, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	result := Result{
		MessageID:    sig.MessageID,
		StatusCode:   resp.StatusCode,
		Duration:     time.Since(started),
		ResponseBody: strings.TrimSpace(string(payload)),
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return result, fmt.Errorf("webhook rejected: status=%s body=%s", resp.Status, result.ResponseBody)
	}
	return result, nil
}
