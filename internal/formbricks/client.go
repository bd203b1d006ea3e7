// Package formbricks talks to the Formbricks management and client REST APIs.
package formbricks

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

// API surfaces, also used as metric labels.
const (
	SurfaceManagement = "management"
	SurfaceClient     = "client"
)

const healthTimeout = 5 * time.Second

type Config struct {
	BaseURL     string
	APIKey      string
	HealthPath  string
	Timeout     time.Duration
	MaxAttempts int
}

// Recorder receives per-request metrics. *metrics.Registry implements it.
type Recorder interface {
	RecordRequest(surface string, status int)
	RecordRetry(surface string)
}

type nopRecorder struct{}

func (nopRecorder) RecordRequest(string, int) {}
func (nopRecorder) RecordRetry(string)        {}

// ManagementRetryPolicy backs off 4s..10s and adds a 5s cool-down after a 429.
func ManagementRetryPolicy(maxAttempts int) retry.Policy {
	p := retry.New("formbricks management request", maxAttempts, 4*time.Second, 10*time.Second)
	p.RateLimitCooldown = 5 * time.Second
	return p
}

// ClientRetryPolicy backs off 2s..5s and adds a 5s cool-down after a 429.
func ClientRetryPolicy(maxAttempts int) retry.Policy {
	p := retry.New("formbricks client request", maxAttempts, 2*time.Second, 5*time.Second)
	p.RateLimitCooldown = 5 * time.Second
	return p
}

type Client struct {
	baseURL    string
	apiKey     string
	healthPath string
	http       *httpclient.Client
	health     *httpclient.Client
	management retry.Policy
	client     retry.Policy
	recorder   Recorder
	log        logger.Logger
}

type Option func(*Client)

// WithRetryPolicies overrides the per-surface retry policies.
func WithRetryPolicies(management, client retry.Policy) Option {
	return func(c *Client) {
		c.management = management
		c.client = client
	}
}

func WithRecorder(r Recorder) Option {
	return func(c *Client) {
		if r != nil {
			c.recorder = r
		}
	}
}

func NewClient(cfg Config, log logger.Logger, opts ...Option) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:3000"
	}
	if cfg.HealthPath == "" {
		cfg.HealthPath = "/api/health"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}

	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		healthPath: cfg.HealthPath,
		http:       httpclient.NewClient(cfg.Timeout),
		health:     httpclient.NewClient(healthTimeout),
		management: ManagementRetryPolicy(cfg.MaxAttempts),
		client:     ClientRetryPolicy(cfg.MaxAttempts),
		recorder:   nopRecorder{},
		log:        log,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.management = c.instrument(c.management, SurfaceManagement)
	c.client = c.instrument(c.client, SurfaceClient)
	return c
}

func (c *Client) instrument(p retry.Policy, surface string) retry.Policy {
	if p.Logger == nil {
		p.Logger = c.log
	}
	next := p.OnRetry
	p.OnRetry = func(attempt int, err error, wait time.Duration) {
		c.recorder.RecordRetry(surface)
		if next != nil {
			next(attempt, err, wait)
		}
	}
	return p
}

// SetAPIKey sets the key sent in the x-api-key header of management requests.
func (c *Client) SetAPIKey(key string) {
	c.apiKey = key
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// ManagementRequest calls {base}/api/v1/management{path} with the API key.
func (c *Client) ManagementRequest(ctx context.Context, method, path string, body interface{}) (Result, error) {
	url := fmt.Sprintf("%s/api/v1/management%s", c.baseURL, path)
	headers := map[string]string{"x-api-key": c.apiKey}
	return c.do(ctx, c.management, SurfaceManagement, method, url, headers, body)
}

// ClientRequest calls the unauthenticated {base}/api/v1/client{path}.
func (c *Client) ClientRequest(ctx context.Context, method, path string, body interface{}) (Result, error) {
	url := fmt.Sprintf("%s/api/v1/client%s", c.baseURL, path)
	return c.do(ctx, c.client, SurfaceClient, method, url, nil, body)
}

func (c *Client) do(ctx context.Context, policy retry.Policy, surface, method, url string, headers map[string]string, body interface{}) (Result, error) {
	var result Result
	err := policy.Do(ctx, func(ctx context.Context) error {
		c.log.Debug("Formbricks request", map[string]interface{}{
			"surface": surface,
			"method":  method,
			"url":     url,
		})

		resp, err := c.http.SendJSON(ctx, method, url, headers, body)
		if err != nil {
			c.recorder.RecordRequest(surface, 0)
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return apperrors.NewServiceUnavailableError("formbricks", err)
		}
		c.recorder.RecordRequest(surface, resp.StatusCode)

		switch {
		case resp.IsSuccess():
			result = Result{}
			if len(strings.TrimSpace(string(resp.Body))) == 0 {
				return nil
			}
			if err := resp.DecodeJSON(&result); err != nil {
				return apperrors.NewMalformedContentError("formbricks response", err)
			}
			return nil
		case resp.StatusCode == http.StatusUnauthorized:
			return apperrors.NewAuthenticationError(fmt.Sprintf("%s %s returned 401", method, url))
		case resp.StatusCode == http.StatusTooManyRequests:
			c.log.Warn("Rate limited. Waiting before retry...", map[string]interface{}{"surface": surface})
			return apperrors.NewRateLimitedError("formbricks")
		default:
			return apperrors.NewAPINoResultError(resp.StatusCode, string(resp.Body))
		}
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// --- Management API ---

func (c *Client) CreateSurvey(ctx context.Context, payload SurveyPayload) (Result, error) {
	return c.ManagementRequest(ctx, http.MethodPost, "/surveys", payload)
}

// GetSurveys returns the "data" array of the survey listing.
func (c *Client) GetSurveys(ctx context.Context) ([]Result, error) {
	res, err := c.ManagementRequest(ctx, http.MethodGet, "/surveys", nil)
	if err != nil {
		return nil, err
	}
	raw, _ := res["data"].([]interface{})
	surveys := make([]Result, 0, len(raw))
	for _, item := range raw {
		if m, ok := item.(map[string]interface{}); ok {
			surveys = append(surveys, Result(m))
		}
	}
	return surveys, nil
}

func (c *Client) GetSurvey(ctx context.Context, surveyID string) (Result, error) {
	return c.ManagementRequest(ctx, http.MethodGet, "/surveys/"+surveyID, nil)
}

// InviteUser sends an invitation; Formbricks has no direct user creation.
func (c *Client) InviteUser(ctx context.Context, payload InvitePayload) (Result, error) {
	return c.ManagementRequest(ctx, http.MethodPost, "/users/invite", payload)
}

// CreateAPIKey creates a management key and returns its secret.
func (c *Client) CreateAPIKey(ctx context.Context, name string) (string, error) {
	if name == "" {
		name = "Seeder API Key"
	}
	res, err := c.ManagementRequest(ctx, http.MethodPost, "/api-keys", apiKeyRequest{Name: name, Type: "management"})
	if err != nil {
		return "", err
	}
	key, _ := res["key"].(string)
	if key == "" {
		return "", apperrors.NewMalformedContentError("create api key response has no key", nil)
	}
	return key, nil
}

// --- Client API ---

func (c *Client) SubmitResponse(ctx context.Context, surveyID string, payload ResponsePayload) (Result, error) {
	return c.ClientRequest(ctx, http.MethodPost, fmt.Sprintf("/surveys/%s/responses", surveyID), payload)
}

func (c *Client) GetSurveyForResponse(ctx context.Context, surveyID string) (Result, error) {
	return c.ClientRequest(ctx, http.MethodGet, "/surveys/"+surveyID, nil)
}

// HealthCheck reports whether the health endpoint answers 200. It never retries.
func (c *Client) HealthCheck(ctx context.Context) bool {
	resp, err := c.health.SendJSON(ctx, http.MethodGet, c.baseURL+c.healthPath, nil, nil)
	if err != nil {
		return false
	}
	return resp.StatusCode == http.StatusOK
}
