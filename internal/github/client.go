// Package github proxies dashboard file-explorer intents to the GitHub
// contents API: repository listing, path-addressed reads and listings, and
// hash-guarded writes.
package github

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v60/github"
	"github.com/rs/zerolog"

	apperrors "github.com/p-blackswan/deploy-dashboard/internal/errors"
	"github.com/p-blackswan/deploy-dashboard/internal/metrics"
)

const serviceName = "github"

// Client wraps the GitHub REST API with token auth. As with the Vercel
// client, a missing token is legal at construction and fails fast per call.
type Client struct {
	gh      *gh.Client
	enabled bool
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// NewClient creates a new GitHub client. Metrics may be nil.
func NewClient(token string, m *metrics.Metrics, logger zerolog.Logger) *Client {
	c := &Client{
		enabled: token != "",
		metrics: m,
		logger:  logger.With().Str("component", "github").Logger(),
	}
	if c.enabled {
		c.gh = gh.NewClient(nil).WithAuthToken(token)
	} else {
		c.gh = gh.NewClient(nil)
	}
	return c
}

// SetBaseURL points the client at a test server. The URL must end in a
// trailing slash per go-github convention; one is appended if missing.
func (c *Client) SetBaseURL(raw string) error {
	if !strings.HasSuffix(raw, "/") {
		raw += "/"
	}
	base, err := url.Parse(raw)
	if err != nil {
		return err
	}
	c.gh.BaseURL = base
	return nil
}

// Enabled returns true when a token is configured.
func (c *Client) Enabled() bool { return c.enabled }

func (c *Client) checkConfigured() error {
	if !c.enabled {
		return apperrors.NotConfigured(serviceName)
	}
	return nil
}

// Ping makes a cheap authenticated call, for readiness checks.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.checkConfigured(); err != nil {
		return err
	}
	start := time.Now()
	_, _, err := c.gh.Users.Get(ctx, "")
	c.observe("ping", start)
	if err != nil {
		return c.mapError("ping", err)
	}
	return nil
}

func (c *Client) observe(op string, start time.Time) {
	if c.metrics != nil {
		c.metrics.ObserveUpstream(serviceName, op, time.Since(start).Seconds())
	}
}

// mapError translates go-github errors into the domain taxonomy. GitHub
// reports a stale content hash as 409 (and some contents-API mismatches as
// 422); both are conflicts the caller resolves by re-reading. The upstream
// message rides along verbatim.
func (c *Client) mapError(op string, err error) error {
	var ghErr *gh.ErrorResponse
	if apperrors.As(err, &ghErr) && ghErr.Response != nil {
		status := ghErr.Response.StatusCode
		msg := ghErr.Message
		if msg == "" {
			msg = ghErr.Response.Status
		}
		c.logger.Debug().
			Str("operation", op).
			Int("status", status).
			Str("message", msg).
			Msg("github rejected request")

		switch status {
		case http.StatusNotFound:
			return apperrors.NotFoundf("%s", msg)
		case http.StatusConflict, http.StatusUnprocessableEntity:
			return apperrors.Conflictf("%s", msg)
		case http.StatusBadRequest:
			return apperrors.Invalid("%s", msg)
		}
		if c.metrics != nil {
			c.metrics.RecordUpstreamError(serviceName, "status")
		}
		return apperrors.NewUpstreamError(serviceName, status, msg)
	}

	if c.metrics != nil {
		c.metrics.RecordUpstreamError(serviceName, "transport")
	}
	return &apperrors.UpstreamError{
		Service: serviceName,
		Message: "request failed",
		Err:     err,
	}
}
