package leetcode

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/CodeGrind-Team/CodeGrind-Bot-sub000/internal/domain/shared"
	"github.com/CodeGrind-Team/CodeGrind-Bot-sub000/internal/domain/user"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// DefaultBaseURL is the public LeetCode GraphQL endpoint.
const DefaultBaseURL = "https://leetcode.com"

// ClientConfig contains configuration for the LeetCode client.
type ClientConfig struct {
	// BaseURL is the API base URL (without /graphql).
	BaseURL string

	// Timeout is the HTTP request timeout.
	Timeout time.Duration

	// RateLimiterConfig for outbound rate limiting.
	RateLimiterConfig RateLimiterConfig

	// CircuitBreakerConfig for fault tolerance.
	CircuitBreakerConfig CircuitBreakerConfig

	// RetryConfig for retry behavior.
	RetryConfig RetryConfig

	// Logger for structured logging.
	Logger *slog.Logger

	// Debug enables request-level debug logging.
	Debug bool
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig(baseURL string) ClientConfig {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return ClientConfig{
		BaseURL:              baseURL,
		Timeout:              30 * time.Second,
		RateLimiterConfig:    DefaultRateLimiterConfig(),
		CircuitBreakerConfig: DefaultCircuitBreakerConfig(),
		RetryConfig:          DefaultRetryConfig(),
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// CLIENT
// ══════════════════════════════════════════════════════════════════════════════

// Client is the LeetCode GraphQL API client. It implements
// user.StatsProvider.
type Client struct {
	config         ClientConfig
	httpClient     *http.Client
	logger         *slog.Logger
	rateLimiter    *RateLimiter
	circuitBreaker *CircuitBreaker
	mapper         *Mapper
}

// NewClient creates a new LeetCode client.
func NewClient(config ClientConfig) *Client {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		logger:         config.Logger,
		rateLimiter:    NewRateLimiter(config.RateLimiterConfig),
		circuitBreaker: NewCircuitBreaker(config.CircuitBreakerConfig),
		mapper:         NewMapper(),
	}
}

// FetchUserStats fetches the cumulative accepted-solve counters for a
// LeetCode username. Returns shared.ErrHandleNotFound when the
// username does not exist.
func (c *Client) FetchUserStats(ctx context.Context, handle user.Handle) (user.SubmissionCounts, error) {
	req := graphQLRequest{
		Query: userProfileQuery,
		Variables: map[string]any{
			"username": handle.String(),
		},
	}

	var resp userProfileResponse
	if err := c.doRequest(ctx, req, &resp); err != nil {
		return user.SubmissionCounts{}, c.classify(err)
	}

	if len(resp.Errors) > 0 {
		// LeetCode reports unknown users both as errors and as a
		// null matchedUser depending on the endpoint revision.
		if resp.Data.MatchedUser == nil {
			return user.SubmissionCounts{}, shared.ErrHandleNotFound
		}
		return user.SubmissionCounts{}, shared.WrapError("leetcode", "FetchUserStats",
			shared.ErrExternalService, resp.Errors[0].Message, nil)
	}

	if resp.Data.MatchedUser == nil {
		return user.SubmissionCounts{}, shared.ErrHandleNotFound
	}

	counts, err := c.mapper.ToSubmissionCounts(resp.Data.MatchedUser)
	if err != nil {
		return user.SubmissionCounts{}, shared.WrapError("leetcode", "FetchUserStats",
			shared.ErrJudgeInvalidResponse, "malformed stats response", err)
	}
	return counts, nil
}

// IsHealthy checks whether the endpoint responds.
func (c *Client) IsHealthy(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL, nil)
	if err != nil {
		return false
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode < 500
}

// Reset clears the rate limiter and circuit breaker state.
func (c *Client) Reset() {
	c.rateLimiter.Reset()
	c.circuitBreaker.Reset()
}

// ══════════════════════════════════════════════════════════════════════════════
// HTTP REQUEST HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// doRequest performs a GraphQL request with rate limiting, circuit
// breaking and retries.
func (c *Client) doRequest(ctx context.Context, body graphQLRequest, result any) error {
	if err := c.circuitBreaker.Allow(); err != nil {
		return err
	}

	var lastErr error
	for attempt := 0; attempt <= c.config.RetryConfig.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := c.config.RetryConfig.CalculateBackoff(attempt)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}

		if err := c.rateLimiter.Allow(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}

		err := c.doSingleRequest(ctx, body, result)
		if err == nil {
			c.circuitBreaker.RecordSuccess()
			return nil
		}
		lastErr = err

		if !c.isRetryable(err) {
			c.circuitBreaker.RecordFailure()
			return err
		}

		var rateLimitErr *RateLimitError
		if errors.As(err, &rateLimitErr) {
			c.rateLimiter.RecordRateLimitHit()
		}
	}

	c.circuitBreaker.RecordFailure()
	return fmt.Errorf("request failed after %d retries: %w", c.config.RetryConfig.MaxRetries, lastErr)
}

// doSingleRequest performs one GraphQL POST.
func (c *Client) doSingleRequest(ctx context.Context, body graphQLRequest, result any) error {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/graphql", bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	// LeetCode rejects requests without a Referer.
	req.Header.Set("Referer", c.config.BaseURL)

	if c.config.Debug {
		c.logger.Debug("leetcode api request", "variables", body.Variables)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		retryAfter := 60 * time.Second
		if ra := resp.Header.Get("Retry-After"); ra != "" {
			if seconds, err := strconv.Atoi(ra); err == nil {
				retryAfter = time.Duration(seconds) * time.Second
			}
		}
		return &RateLimitError{
			RetryAfter: retryAfter,
			Message:    "rate limit exceeded",
		}
	}

	if resp.StatusCode >= 400 {
		return &APIErrorDTO{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(respBody)),
		}
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}
	return nil
}

// isRetryable checks if an error is worth another attempt.
func (c *Client) isRetryable(err error) bool {
	if err == nil {
		return false
	}

	var rateLimitErr *RateLimitError
	if errors.As(err, &rateLimitErr) {
		return true
	}

	var apiErr *APIErrorDTO
	if errors.As(err, &apiErr) {
		return apiErr.Retryable()
	}

	errStr := err.Error()
	for _, marker := range []string{"timeout", "connection refused", "temporary", "reset", "EOF"} {
		if strings.Contains(errStr, marker) {
			return true
		}
	}
	return false
}

// classify maps transport-level failures onto the domain taxonomy so
// callers can branch on sentinel errors rather than string matching.
func (c *Client) classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrCircuitOpen):
		return shared.WrapError("leetcode", "FetchUserStats", shared.ErrJudgeUnavailable,
			"judge temporarily unavailable", err)
	case errors.Is(err, &RateLimitError{}):
		return shared.WrapError("leetcode", "FetchUserStats", shared.ErrJudgeRateLimited,
			"judge rate limit", err)
	case errors.Is(err, context.DeadlineExceeded):
		return shared.WrapError("leetcode", "FetchUserStats", shared.ErrJudgeTimeout,
			"judge request timed out", err)
	default:
		return shared.WrapError("leetcode", "FetchUserStats", shared.ErrExternalService,
			"judge request failed", err)
	}
}
