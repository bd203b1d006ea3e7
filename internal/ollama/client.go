// Package ollama is a minimal client for the Ollama chat and model-listing endpoints.
package ollama

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	apperrors "formbricks-seeder/internal/common/errors"
	httpclient "formbricks-seeder/internal/common/http"
	"formbricks-seeder/internal/common/logger"
	"formbricks-seeder/internal/common/retry"
)

const serviceName = "ollama"

type Config struct {
	BaseURL     string
	Model       string
	Temperature float64
	NumPredict  int
	Timeout     time.Duration
	MaxAttempts int
}

// DefaultRetryPolicy retries transport failures and rate limits with a 2s..10s backoff.
func DefaultRetryPolicy(maxAttempts int) retry.Policy {
	p := retry.New("ollama chat", maxAttempts, 2*time.Second, 10*time.Second)
	p.RateLimitCooldown = 5 * time.Second
	return p
}

type Client struct {
	baseURL     string
	model       string
	temperature float64
	numPredict  int
	http        *httpclient.Client
	retry       retry.Policy
	log         logger.Logger
}

func NewClient(cfg Config, policy retry.Policy, log logger.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:11434"
	}
	if cfg.Model == "" {
		cfg.Model = "llama2"
	}
	if cfg.NumPredict <= 0 {
		cfg.NumPredict = 2000
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 120 * time.Second
	}
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = cfg.MaxAttempts
	}
	if policy.Logger == nil {
		policy.Logger = log
	}

	return &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		numPredict:  cfg.NumPredict,
		http:        httpclient.NewClient(cfg.Timeout),
		retry:       policy,
		log:         log,
	}
}

// Model returns the model name used for chat requests.
func (c *Client) Model() string {
	return c.model
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// ListModels returns the names of locally available models.
func (c *Client) ListModels(ctx context.Context) ([]string, error) {
	resp, err := c.http.SendJSON(ctx, http.MethodGet, c.baseURL+"/api/tags", nil, nil)
	if err != nil {
		return nil, apperrors.NewServiceUnavailableError(serviceName, err)
	}
	if !resp.IsSuccess() {
		return nil, apperrors.NewServiceUnavailableError(serviceName,
			fmt.Errorf("ollama returned status %d", resp.StatusCode))
	}

	var tags tagsResponse
	if err := resp.DecodeJSON(&tags); err != nil {
		return nil, apperrors.NewMalformedContentError("model list", err)
	}
	names := make([]string, 0, len(tags.Models))
	for _, m := range tags.Models {
		names = append(names, m.Name)
	}
	return names, nil
}

// Ping checks that the service answers the model-listing endpoint.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.ListModels(ctx)
	return err
}

// ResolveModel matches the configured model against the available ones,
// e.g. "llama2" becomes "llama2:latest". When nothing matches, the first
// available model is used.
func (c *Client) ResolveModel(ctx context.Context) (string, error) {
	names, err := c.ListModels(ctx)
	if err != nil {
		return "", err
	}
	if len(names) == 0 {
		return "", apperrors.NewServiceUnavailableError(serviceName,
			fmt.Errorf("no models available, pull one first: 'ollama pull %s'", c.model))
	}

	for _, name := range names {
		if strings.Contains(name, c.model) {
			c.model = name
			return name, nil
		}
	}

	c.log.Warn("Model not found, using first available model", map[string]interface{}{
		"requested": c.model,
		"available": names,
		"using":     names[0],
	})
	c.model = names[0]
	return c.model, nil
}

// Chat sends a non-streaming chat request and returns the assistant message.
func (c *Client) Chat(ctx context.Context, system, prompt string) (string, error) {
	messages := make([]chatMessage, 0, 2)
	if system != "" {
		messages = append(messages, chatMessage{Role: "system", Content: system})
	}
	messages = append(messages, chatMessage{Role: "user", Content: prompt})

	req := chatRequest{
		Model:    c.model,
		Messages: messages,
		Stream:   false,
		Options: chatOptions{
			Temperature: c.temperature,
			NumPredict:  c.numPredict,
		},
	}

	var content string
	err := c.retry.Do(ctx, func(ctx context.Context) error {
		out, err := c.chatOnce(ctx, req)
		if err != nil {
			return err
		}
		content = out
		return nil
	})
	if err != nil {
		return "", err
	}
	return content, nil
}

func (c *Client) chatOnce(ctx context.Context, req chatRequest) (string, error) {
	resp, err := c.http.SendJSON(ctx, http.MethodPost, c.baseURL+"/api/chat", nil, req)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", apperrors.NewServiceUnavailableError(serviceName, err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", apperrors.NewRateLimitedError(serviceName)
	case resp.StatusCode >= 500:
		return "", apperrors.NewServiceUnavailableError(serviceName,
			fmt.Errorf("ollama returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(resp.Body))))
	case !resp.IsSuccess():
		return "", apperrors.NewAPINoResultError(resp.StatusCode, string(resp.Body))
	}

	var out chatResponse
	if err := resp.DecodeJSON(&out); err != nil {
		return "", apperrors.NewMalformedContentError("chat response", err)
	}
	if out.Error != "" {
		return "", apperrors.NewServiceUnavailableError(serviceName, fmt.Errorf("ollama error: %s", out.Error))
	}
	return out.Message.Content, nil
}
