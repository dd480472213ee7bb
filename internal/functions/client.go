// Package functions calls the serverless image and allergen functions over HTTP.
package functions

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RemoteError is a non-2xx answer from a function. Message carries the
// function's own explanation when it sent one.
type RemoteError struct {
	StatusCode int
	Message    string
}

func (e *RemoteError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("function returned status %d", e.StatusCode)
}

// Client posts JSON to function endpoints, retrying transport errors and
// 5xx answers with exponential backoff.
type Client struct {
	httpClient      *http.Client
	maxRetries      uint64
	initialInterval time.Duration
}

func NewClient(timeout time.Duration, maxRetries int) *Client {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &Client{
		httpClient:      &http.Client{Timeout: timeout},
		maxRetries:      uint64(maxRetries),
		initialInterval: 250 * time.Millisecond,
	}
}

func (c *Client) newBackoff(ctx context.Context) backoff.BackOff {
	// BackOff implementations are stateful; always build a fresh one.
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.initialInterval
	bo.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(bo, c.maxRetries), ctx)
}

// PostJSON sends body to endpoint and decodes a 2xx answer into out when out
// is not nil.
func (c *Client) PostJSON(ctx context.Context, endpoint string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	attempt := 0
	return backoff.Retry(func() error {
		attempt++
		err := c.post(ctx, endpoint, payload, out)
		if err == nil {
			return nil
		}
		var remote *RemoteError
		if errors.As(err, &remote) && remote.StatusCode < http.StatusInternalServerError {
			return backoff.Permanent(err)
		}
		if ctx.Err() != nil {
			return backoff.Permanent(err)
		}
		log.Printf("[FunctionsClient] Attempt %d to %s failed: %v", attempt, endpoint, err)
		return err
	}, c.newBackoff(ctx))
}

func (c *Client) post(ctx context.Context, endpoint string, payload []byte, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &RemoteError{StatusCode: resp.StatusCode, Message: remoteMessage(data)}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return backoff.Permanent(fmt.Errorf("failed to decode response: %w", err))
	}
	return nil
}

// remoteMessage pulls the explanation out of an error body shaped as
// {"message": ...}, {"error": ...} or a bare JSON string.
func remoteMessage(data []byte) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err == nil {
		if body.Message != "" {
			return body.Message
		}
		return body.Error
	}
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		return text
	}
	msg := strings.TrimSpace(string(data))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}
