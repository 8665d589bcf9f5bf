// Package engine is the HTTP client for the external automation engine:
// full workflow runs, per-node step execution, window-title suggestions and
// health checks. The engine performs the actual mouse/keyboard/file/screen
// operations; this package only speaks its request/response contract.
package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	workflow "github.com/caojiachen1/CommandFlow-rs-sub000"
)

// Client talks to one engine instance.
type Client struct {
	baseURL string
	http    *http.Client
	log     *zap.SugaredLogger
}

// NewClient creates a client for the engine at baseURL. A nil logger is
// replaced with a no-op logger.
func NewClient(baseURL string, log *zap.SugaredLogger) *Client {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 5 * time.Minute},
		log:     log,
	}
}

type runResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// Run submits a whole workflow for execution and returns the engine's
// human-readable completion message.
func (c *Client) Run(ctx context.Context, g *workflow.Graph) (string, error) {
	var out runResponse
	if err := c.post(ctx, "/run", FromGraph(g), &out); err != nil {
		return "", err
	}
	if out.Error != "" {
		return "", fmt.Errorf("engine: run rejected: %s", out.Error)
	}
	return out.Message, nil
}

// Stop requests cancellation of the in-flight run.
func (c *Client) Stop(ctx context.Context) error {
	return c.post(ctx, "/stop", struct{}{}, nil)
}

// ExecuteNode runs a single node and returns once the engine acknowledges
// completion. Implements step.Engine.
func (c *Client) ExecuteNode(ctx context.Context, node workflow.Node) error {
	var out runResponse
	if err := c.post(ctx, "/step", fromNode(&node), &out); err != nil {
		return err
	}
	if out.Error != "" {
		return fmt.Errorf("engine: node %s rejected: %s", node.ID, out.Error)
	}
	return nil
}

// Health pings the engine.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("engine: build request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("engine: health: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("engine: health: unexpected status %s", resp.Status)
	}
	return nil
}

// ListWindows returns title suggestions for window-targeting fields. The
// lookup is best-effort: failures log a warning and return an empty list.
func (c *Client) ListWindows(ctx context.Context) []string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/windows", nil)
	if err != nil {
		c.log.Warnw("window lookup failed", "error", err)
		return []string{}
	}
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warnw("window lookup failed", "error", err)
		return []string{}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		c.log.Warnw("window lookup failed", "status", resp.Status)
		return []string{}
	}
	var titles []string
	if err := json.NewDecoder(resp.Body).Decode(&titles); err != nil {
		c.log.Warnw("window lookup returned malformed body", "error", err)
		return []string{}
	}
	if titles == nil {
		titles = []string{}
	}
	return titles
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("engine: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("engine: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("engine: %s: %w", path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("engine: %s: read response: %w", path, err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		var fail runResponse
		if json.Unmarshal(raw, &fail) == nil && fail.Error != "" {
			return fmt.Errorf("engine: %s: %s", path, fail.Error)
		}
		return fmt.Errorf("engine: %s: unexpected status %s", path, resp.Status)
	}
	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("engine: %s: decode response: %w", path, err)
		}
	}
	return nil
}
