// Package gateway talks to an OpenAI-compatible chat-completion endpoint
// such as OpenRouter.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/vsarchitect/vsa/internal/completion"
)

// Defaults for the OpenRouter gateway.
const (
	DefaultBaseURL  = "https://openrouter.ai/api/v1"
	DefaultSiteURL  = "http://localhost:3000"
	DefaultAppTitle = "Virtual Service Architect"
)

// Config describes the upstream endpoint and the informational headers sent with every call.
type Config struct {
	BaseURL  string
	SiteURL  string
	AppTitle string
	// Timeout bounds a single call. Zero leaves the transport default (no timeout).
	Timeout time.Duration
}

// Client forwards completion requests with the caller's API key.
// It holds no per-request state.
type Client struct {
	baseURL  string
	siteURL  string
	appTitle string
	logger   *slog.Logger
	http     *http.Client
}

var _ completion.Sender = (*Client)(nil)

// NewClient creates a gateway client, filling unset config fields with defaults.
func NewClient(log *slog.Logger, cfg Config) *Client {
	if log == nil {
		log = slog.Default()
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	siteURL := strings.TrimSpace(cfg.SiteURL)
	if siteURL == "" {
		siteURL = DefaultSiteURL
	}
	appTitle := strings.TrimSpace(cfg.AppTitle)
	if appTitle == "" {
		appTitle = DefaultAppTitle
	}
	return &Client{
		baseURL:  baseURL,
		siteURL:  siteURL,
		appTitle: appTitle,
		logger:   log.With(slog.String("client", "gateway")),
		http:     &http.Client{Timeout: cfg.Timeout},
	}
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage *completion.Usage `json:"usage"`
}

// Send performs one chat-completion call. Every failure is returned as a
// *completion.Failure, except a missing API key which is a validation error.
func (c *Client) Send(ctx context.Context, apiKey string, req completion.Request, failureMessage string) (completion.Result, error) {
	if strings.TrimSpace(apiKey) == "" {
		return completion.Result{}, &completion.ValidationError{Message: completion.MsgAPIKeyRequired}
	}
	body, err := json.Marshal(req)
	if err != nil {
		return completion.Result{}, completion.TransportFailure(err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return completion.Result{}, completion.TransportFailure(err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+apiKey)
	httpReq.Header.Set("HTTP-Referer", c.siteURL)
	httpReq.Header.Set("X-Title", c.appTitle)

	started := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.logger.Warn("gateway request failed", slog.String("model", req.Model), slog.Any("error", err))
		return completion.Result{}, completion.TransportFailure(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		details := parseErrorBody(resp.Body)
		c.logger.Warn("gateway returned error",
			slog.String("model", req.Model),
			slog.Int("status", resp.StatusCode),
			slog.Duration("latency", time.Since(started)),
		)
		return completion.Result{}, completion.UpstreamFailure(resp.StatusCode, failureMessage, details)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return completion.Result{}, completion.TransportFailure(fmt.Errorf("decode completion: %w", err))
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return completion.Result{}, completion.EmptyResultFailure()
	}
	c.logger.Debug("gateway completion",
		slog.String("model", req.Model),
		slog.Duration("latency", time.Since(started)),
	)
	model := parsed.Model
	if model == "" {
		model = req.Model
	}
	return completion.Result{
		Content: parsed.Choices[0].Message.Content,
		Model:   model,
		Usage:   parsed.Usage,
	}, nil
}

// parseErrorBody decodes an upstream error payload, falling back to an empty
// object when the body is not JSON.
func parseErrorBody(r io.Reader) any {
	data, err := io.ReadAll(io.LimitReader(r, 1<<20))
	if err != nil {
		return map[string]any{}
	}
	var payload any
	if err := json.Unmarshal(data, &payload); err != nil || payload == nil {
		return map[string]any{}
	}
	return payload
}
