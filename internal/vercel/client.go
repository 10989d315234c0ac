// Package vercel proxies dashboard intents to the Vercel REST API and
// reshapes responses into the dashboard's normalized project and deployment
// representations.
package vercel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	apperrors "github.com/p-blackswan/deploy-dashboard/internal/errors"
	"github.com/p-blackswan/deploy-dashboard/internal/metrics"
)

const (
	defaultBaseURL = "https://api.vercel.com"
	serviceName    = "vercel"
)

// HTTPClient abstracts HTTP calls for testing.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client wraps the Vercel REST API. The zero credential case is legal: every
// operation fails fast with a not-configured error before any network call.
type Client struct {
	baseURL    string
	token      string
	teamID     string
	timeout    time.Duration
	enrichCap  int
	httpClient HTTPClient
	metrics    *metrics.Metrics
	logger     zerolog.Logger
}

// ClientConfig holds construction parameters for the Vercel client.
type ClientConfig struct {
	Token             string
	TeamID            string
	Timeout           time.Duration
	EnrichConcurrency int
}

// NewClient creates a new Vercel API client. Metrics may be nil.
func NewClient(cfg ClientConfig, m *metrics.Metrics, logger zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	enrichCap := cfg.EnrichConcurrency
	if enrichCap < 1 {
		enrichCap = 10
	}
	return &Client{
		baseURL:    defaultBaseURL,
		token:      cfg.Token,
		teamID:     cfg.TeamID,
		timeout:    timeout,
		enrichCap:  enrichCap,
		httpClient: &http.Client{Timeout: timeout},
		metrics:    m,
		logger:     logger.With().Str("component", "vercel").Logger(),
	}
}

// SetBaseURL overrides the API base URL (for testing).
func (c *Client) SetBaseURL(u string) {
	c.baseURL = strings.TrimSuffix(u, "/")
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(hc HTTPClient) {
	c.httpClient = hc
}

// Enabled returns true when a token is configured.
func (c *Client) Enabled() bool { return c.token != "" }

// Ping makes a cheap authenticated call, for readiness checks.
func (c *Client) Ping(ctx context.Context) error {
	if !c.Enabled() {
		return apperrors.NotConfigured(serviceName)
	}
	resp, err := c.do(ctx, "ping", http.MethodGet, "/v2/user", nil, nil)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// do executes one authenticated API request. Non-2xx responses are mapped to
// the domain error taxonomy, carrying upstream's own message verbatim.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body any) (*http.Response, error) {
	if !c.Enabled() {
		return nil, apperrors.NotConfigured(serviceName)
	}

	q := url.Values{}
	for k, vs := range query {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	if c.teamID != "" {
		q.Set("teamId", c.teamID)
	}
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
		reqBody = bytes.NewReader(buf)
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, method, u, reqBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if c.metrics != nil {
		c.metrics.ObserveUpstream(serviceName, op, time.Since(start).Seconds())
	}
	if err != nil {
		if c.metrics != nil {
			c.metrics.RecordUpstreamError(serviceName, "transport")
		}
		return nil, &apperrors.UpstreamError{
			Service: serviceName,
			Message: "request failed",
			Err:     err,
		}
	}

	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		return nil, c.mapError(op, resp)
	}
	return resp, nil
}

// mapError turns an upstream rejection into a domain error. Explicit
// rejections keep upstream's message word for word; anything else becomes an
// UpstreamError.
func (c *Client) mapError(op string, resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	msg := ""
	var we wireError
	if err := json.Unmarshal(raw, &we); err == nil {
		msg = we.Error.Message
	}
	if msg == "" {
		msg = strings.TrimSpace(string(raw))
	}
	if msg == "" {
		msg = resp.Status
	}

	c.logger.Debug().
		Str("operation", op).
		Int("status", resp.StatusCode).
		Str("message", msg).
		Msg("vercel rejected request")

	switch resp.StatusCode {
	case http.StatusBadRequest:
		return apperrors.Invalid("%s", msg)
	case http.StatusNotFound:
		return apperrors.NotFoundf("%s", msg)
	case http.StatusConflict:
		return apperrors.Conflictf("%s", msg)
	}
	if c.metrics != nil {
		c.metrics.RecordUpstreamError(serviceName, "status")
	}
	return apperrors.NewUpstreamError(serviceName, resp.StatusCode, msg)
}

// decodeResponse reads and decodes a JSON response body.
func decodeResponse(resp *http.Response, v any) error {
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return &apperrors.UpstreamError{
			Service: serviceName,
			Message: "malformed response body",
			Err:     err,
		}
	}
	return nil
}
