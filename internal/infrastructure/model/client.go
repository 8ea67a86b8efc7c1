package model

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/labelscan/backend/internal/domain"
	"go.uber.org/zap"
)

// Config holds generative-model client configuration.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
}

// Client talks to an OpenAI-compatible chat-completions endpoint.
// Upstream failures are classified here, at the boundary, into the
// domain sentinels so callers branch on errors.Is rather than matching
// message text.
type Client struct {
	http   *resty.Client
	cfg    Config
	logger *zap.Logger
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// NewClient creates a model client.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetHeader("Content-Type", "application/json")

	return &Client{http: httpClient, cfg: cfg, logger: logger}
}

// Generate sends one prompt and returns the model's raw text reply.
func (c *Client) Generate(ctx context.Context, prompt string, opts domain.GenerateOptions) (string, error) {
	if c.cfg.APIKey == "" {
		return "", domain.ErrMissingCredential
	}

	body := chatRequest{
		Model:       c.cfg.Model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxOutputTokens,
	}

	var out chatResponse
	var apiErr apiError
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+c.cfg.APIKey).
		SetBody(body).
		SetResult(&out).
		SetError(&apiErr).
		Post("/chat/completions")
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrModelFailure, err)
	}

	if resp.IsError() {
		return "", c.classifyStatus(resp.StatusCode(), apiErr)
	}

	if len(out.Choices) == 0 || strings.TrimSpace(out.Choices[0].Message.Content) == "" {
		return "", domain.ErrMalformedResponse
	}
	return out.Choices[0].Message.Content, nil
}

// classifyStatus maps an upstream error to a typed sentinel. Overload
// can arrive either as a status code or only as message text; both are
// folded into one sentinel here so nothing downstream ever inspects
// message strings.
func (c *Client) classifyStatus(status int, apiErr apiError) error {
	message := apiErr.Error.Message
	c.logger.Warn("model API error",
		zap.Int("status", status),
		zap.String("type", apiErr.Error.Type),
	)

	switch status {
	case http.StatusTooManyRequests, http.StatusServiceUnavailable, http.StatusBadGateway:
		return fmt.Errorf("%w: status %d", domain.ErrModelOverloaded, status)
	case http.StatusUnauthorized, http.StatusForbidden:
		return domain.ErrMissingCredential
	}

	lower := strings.ToLower(message)
	if strings.Contains(lower, "overloaded") || strings.Contains(lower, "rate limit") {
		return fmt.Errorf("%w: status %d", domain.ErrModelOverloaded, status)
	}

	return fmt.Errorf("%w: status %d", domain.ErrModelFailure, status)
}
