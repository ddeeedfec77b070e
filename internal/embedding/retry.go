package embedding

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// doWithRetry wraps an HTTP call with retry logic.
// It will attempt the request up to MaxRetries+1 times (initial + retries).
// - Retries only on transient network errors, 429, and 5xx statuses.
// - Respects Retry-After headers from rate limiting responses.
// - Uses exponential backoff with full jitter to prevent thundering herd.
// - Respects the provided ctx (deadline / cancellation).
func (c *Client) doWithRetry(
	ctx context.Context,
	body []byte,
	do func(ctx context.Context, body []byte) (*http.Response, error),
) (*http.Response, error) {
	var lastErr error
	maxAttempts := c.cfg.MaxRetries + 1
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	for attempt := 0; attempt < maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		start := time.Now()
		resp, err := do(ctx, body)
		duration := time.Since(start)

		status := 0
		if resp != nil {
			status = resp.StatusCode
		}

		c.logger.Debug("embedding upstream request",
			zap.Int("attempt", attempt+1),
			zap.Int("max_attempts", maxAttempts),
			zap.Int("status", status),
			zap.Duration("duration", duration),
			zap.Error(err),
		)

		if err != nil {
			// Context errors → never retry
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			if !isTransientNetError(err) {
				return nil, err
			}
			lastErr = err
		} else if !shouldRetryStatus(status) {
			// Success or non-retryable HTTP status (e.g., 4xx)
			return resp, nil
		} else {
			// Retryable HTTP status (429, 5xx)
			lastErr = fmt.Errorf("upstream status %d", status)

			// Check for Retry-After before closing the body
			retryAfter := parseRetryAfter(resp)

			// Important: close body before retrying so connection can be reused
			if resp != nil && resp.Body != nil {
				resp.Body.Close()
			}

			if retryAfter > 0 && attempt < maxAttempts-1 {
				c.logger.Info("honoring Retry-After header",
					zap.Duration("wait", retryAfter),
					zap.Int("status", status),
				)
				select {
				case <-ctx.Done():
					return nil, ctx.Err()
				case <-time.After(retryAfter):
					continue
				}
			}
		}

		if attempt == maxAttempts-1 {
			break
		}

		backoff := computeBackoff(c.cfg.BaseBackoff, attempt)
		c.logger.Debug("backing off before retry",
			zap.Duration("backoff", backoff),
			zap.Int("next_attempt", attempt+2),
		)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}

	c.logger.Warn("embedding request exhausted all retries",
		zap.Int("attempts", maxAttempts),
		zap.Error(lastErr),
	)

	if lastErr == nil {
		lastErr = errors.New("unknown upstream error")
	}
	return nil, fmt.Errorf("embedclient: max retries (%d) exceeded: %w", maxAttempts, lastErr)
}

// isTransientNetError determines whether a network error is worth retrying.
func isTransientNetError(err error) bool {
	if err == nil {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return dnsErr.IsTimeout || dnsErr.IsTemporary
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if opErr.Op == "dial" || opErr.Op == "read" || opErr.Op == "write" {
			return true
		}
	}

	// Sometimes necessary for wrapped errors
	errStr := strings.ToLower(err.Error())
	transientPatterns := []string{
		"connection refused",
		"connection reset",
		"broken pipe",
		"no such host",
		"temporary failure",
	}
	for _, pattern := range transientPatterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}

	return false
}

// shouldRetryStatus returns true if the HTTP status code indicates
// the request should be retried.
func shouldRetryStatus(status int) bool {
	switch {
	case status == 0:
		// No response received (network error)
		return true
	case status == http.StatusTooManyRequests:
		return true
	case status == http.StatusRequestTimeout:
		return true
	case status >= 500 && status <= 599:
		return true
	default:
		// 2xx success, 3xx redirects, 4xx client errors
		return false
	}
}

// parseRetryAfter extracts the retry delay from a Retry-After header.
// Returns 0 if the header is missing or invalid. The header can be a
// number of seconds or an HTTP date.
func parseRetryAfter(resp *http.Response) time.Duration {
	if resp == nil {
		return 0
	}

	retryAfter := resp.Header.Get("Retry-After")
	if retryAfter == "" {
		return 0
	}

	const maxRetryAfter = 5 * time.Minute

	if seconds, err := strconv.Atoi(strings.TrimSpace(retryAfter)); err == nil && seconds > 0 {
		d := time.Duration(seconds) * time.Second
		if d > maxRetryAfter {
			d = maxRetryAfter
		}
		return d
	}

	if t, err := http.ParseTime(retryAfter); err == nil {
		if d := time.Until(t); d > 0 {
			if d > maxRetryAfter {
				d = maxRetryAfter
			}
			return d
		}
	}

	return 0
}

// computeBackoff calculates exponential backoff with full jitter:
// a random value between 0 and base * 2^attempt, capped.
func computeBackoff(base time.Duration, attempt int) time.Duration {
	if base <= 0 {
		base = 100 * time.Millisecond
	}

	// Cap the exponent to prevent overflow
	const maxExponent = 10
	if attempt > maxExponent {
		attempt = maxExponent
	}

	maxBackoff := time.Duration(float64(base) * math.Pow(2, float64(attempt)))

	const maxAllowed = 60 * time.Second
	if maxBackoff > maxAllowed {
		maxBackoff = maxAllowed
	}

	return time.Duration(rand.Float64() * float64(maxBackoff))
}
