package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Client talks JSON over HTTP to the motor telemetry backend. Every call is
// best-effort from the engine's point of view: callers log and discard
// failures instead of retrying.
type Client struct {
	base string
	http *http.Client
	log  *zap.Logger
}

// NewClient creates a backend client rooted at baseURL.
func NewClient(baseURL string, log *zap.Logger) *Client {
	return &Client{
		base: baseURL,
		http: &http.Client{Timeout: 10 * time.Second},
		log:  log,
	}
}

// PostTrace delivers a batch of pointer samples.
func (c *Client) PostTrace(ctx context.Context, payload TracePayload) error {
	return c.do(ctx, http.MethodPost, "/motor/trace", payload)
}

// PostAttempts delivers a batch of attempt records.
func (c *Client) PostAttempts(ctx context.Context, payload AttemptsPayload) error {
	return c.do(ctx, http.MethodPost, "/motor/attempts", payload)
}

// RequestRoundSummary asks the backend to compute the round's aggregates.
func (c *Client) RequestRoundSummary(ctx context.Context, sessionID, participantID string, round int) error {
	body := map[string]any{
		"sessionId":     sessionID,
		"participantId": participantID,
		"round":         round,
	}
	return c.do(ctx, http.MethodPost, "/motor/summary/round", body)
}

// RequestSessionSummary asks the backend to compute the session's aggregates.
func (c *Client) RequestSessionSummary(ctx context.Context, sessionID, participantID string) error {
	body := map[string]any{
		"sessionId":     sessionID,
		"participantId": participantID,
	}
	return c.do(ctx, http.MethodPost, "/motor/summary/session", body)
}

// PatchPerformance attaches frame/performance metrics to the session.
func (c *Client) PatchPerformance(ctx context.Context, sessionID string, perf FrameMetrics) error {
	body := map[string]any{
		"sessionId": sessionID,
		"perf":      perf,
	}
	return c.do(ctx, http.MethodPatch, "/results/session/performance", body)
}

func (c *Client) do(ctx context.Context, method, path string, body any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("build %s request: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("%s %s: unexpected status %d", method, path, resp.StatusCode)
	}
	return nil
}
