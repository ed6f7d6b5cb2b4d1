package progress

import (
	"context"
	"fmt"
	"time"

	"github.com/MACantara/Phalanx-Cyber-Academy-sub002/internal/infrastructure/config"
	"github.com/MACantara/Phalanx-Cyber-Academy-sub002/internal/infrastructure/logging"
	"github.com/MACantara/Phalanx-Cyber-Academy-sub002/internal/infrastructure/resilience"
	"github.com/MACantara/Phalanx-Cyber-Academy-sub002/internal/shared/types"
	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"
)

// Client posts lifecycle telemetry to the external progression service.
// Every report is fire-and-forget: callers treat errors as advisory.
type Client struct {
	resty   *resty.Client
	limiter *rate.Limiter
	breaker *resilience.Breaker
	log     *logging.Logger
	enabled bool
}

// New creates a progression client with retries, rate limiting, and circuit breaker
func New(cfg config.ProgressConfig, log *logging.Logger) *Client {
	if log == nil {
		log = logging.NewNop()
	}

	// Create underlying retryable client
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 2
	retryClient.RetryWaitMin = 500 * time.Millisecond
	retryClient.RetryWaitMax = 5 * time.Second
	retryClient.Logger = nil // Disable logging

	// Create resty client with retry support
	restyClient := resty.New()
	restyClient.
		SetBaseURL(cfg.Address).
		SetTimeout(10*time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500*time.Millisecond).
		SetRetryMaxWaitTime(5*time.Second).
		SetHeader("User-Agent", "Phalanx-Desktop/1.0")

	// Configure transport settings
	restyClient.SetTransport(retryClient.HTTPClient.Transport)

	// Create circuit breaker for the progression service
	breaker := resilience.New("progress", resilience.Settings{
		MaxRequests: 5,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts resilience.Counts) bool {
			// Telemetry is optional, so trip late
			// Trip if 10+ consecutive failures OR >70% failure rate with 20+ requests
			return counts.ConsecutiveFailures >= 10 ||
				(counts.Requests >= 20 && float64(counts.TotalFailures)/float64(counts.Requests) > 0.7)
		},
	})

	return &Client{
		resty:   restyClient,
		limiter: rate.NewLimiter(rate.Limit(5), 10),
		breaker: breaker,
		log:     log.Scope("progress"),
		enabled: cfg.Enabled,
	}
}

// Enabled reports whether telemetry posting is active
func (c *Client) Enabled() bool {
	return c.enabled
}

// BreakerState returns the current circuit breaker state
func (c *Client) BreakerState() resilience.State {
	return c.breaker.State()
}

// ReportLevel posts a level transition
func (c *Client) ReportLevel(ctx context.Context, level types.Level) error {
	return c.post(ctx, "/api/progress/level", map[string]interface{}{
		"level": level.String(),
		"at":    time.Now().UTC().Format(time.RFC3339),
	})
}

// ReportAppOpened posts an application launch
func (c *Client) ReportAppOpened(ctx context.Context, appID, title string) error {
	return c.post(ctx, "/api/progress/app-opened", map[string]interface{}{
		"app_id": appID,
		"title":  title,
		"at":     time.Now().UTC().Format(time.RFC3339),
	})
}

// ReportAppClosed posts an application close
func (c *Client) ReportAppClosed(ctx context.Context, appID string) error {
	return c.post(ctx, "/api/progress/app-closed", map[string]interface{}{
		"app_id": appID,
		"at":     time.Now().UTC().Format(time.RFC3339),
	})
}

// ReportTimeUp posts a mission clock expiry
func (c *Client) ReportTimeUp(ctx context.Context, level string) error {
	return c.post(ctx, "/api/progress/time-up", map[string]interface{}{
		"level": level,
		"at":    time.Now().UTC().Format(time.RFC3339),
	})
}

// post sends one JSON payload with rate limiting and circuit breaker protection
func (c *Client) post(ctx context.Context, path string, body map[string]interface{}) error {
	if !c.enabled {
		return nil
	}

	// Check circuit breaker state first
	if c.breaker.State() == resilience.StateOpen {
		return resilience.ErrCircuitOpen
	}

	// Wait for rate limiter
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit error: %w", err)
	}

	_, err := c.breaker.Execute(func() (interface{}, error) {
		resp, err := c.resty.R().
			SetContext(ctx).
			SetBody(body).
			Post(path)
		if err != nil {
			return nil, err
		}
		if resp.IsError() {
			return nil, fmt.Errorf("progression service returned %d", resp.StatusCode())
		}
		return resp, nil
	})
	return err
}
