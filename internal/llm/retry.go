package llm

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	maxBackoff    = 30 * time.Second
	maxRetryAfter = 2 * time.Minute
)

// doWithRetry runs do up to MaxRetries+1 times.
//
// Only transient network errors, 408, 429 and 5xx are retried. A Retry-After
// header replaces the computed backoff. Context errors end the loop at once.
// Whenever a response is returned its body is open, whatever the status.
func (c *client) doWithRetry(
	ctx context.Context,
	body []byte,
	do func(ctx context.Context, body []byte) (*http.Response, error),
) (*http.Response, error) {
	attempts := c.cfg.MaxRetries + 1
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		start := time.Now()
		resp, err := do(ctx, body)

		status := 0
		if resp != nil {
			status = resp.StatusCode
		}
		c.logger.Debug("upstream attempt",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", attempts),
			zap.Int("status", status),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)

		var wait time.Duration
		switch {
		case err != nil:
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			if !isTransientNetError(err) {
				return nil, err
			}
			lastErr = err

		case !shouldRetryStatus(status):
			return resp, nil

		case attempt == attempts:
			// out of attempts: let the caller decode the error body
			return resp, nil

		default:
			lastErr = fmt.Errorf("upstream status %d", status)
			wait = parseRetryAfter(resp)
			// close before retrying so the connection can be reused
			resp.Body.Close()
		}

		if attempt == attempts {
			break
		}

		if wait <= 0 {
			wait = computeBackoff(c.cfg.BaseBackoff, attempt-1)
		}
		c.logger.Info("retrying upstream request",
			zap.Int("next_attempt", attempt+1),
			zap.Duration("wait", wait),
			zap.Error(lastErr),
		)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = errors.New("unknown upstream error")
	}
	if attempts == 1 {
		return nil, fmt.Errorf("llmclient: %w", lastErr)
	}
	c.logger.Warn("upstream request exhausted all retries",
		zap.Int("attempts", attempts),
		zap.Error(lastErr),
	)
	return nil, fmt.Errorf("llmclient: max retries (%d) exceeded: %w", attempts, lastErr)
}

// isTransientNetError reports whether err looks like a network hiccup that
// a retry might get past.
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
		switch opErr.Op {
		case "dial", "read", "write":
			return true
		}
	}

	// wrapped errors sometimes only survive as text
	msg := strings.ToLower(err.Error())
	for _, pattern := range []string{
		"connection refused",
		"connection reset",
		"broken pipe",
		"temporary failure",
	} {
		if strings.Contains(msg, pattern) {
			return true
		}
	}

	return false
}

func shouldRetryStatus(status int) bool {
	switch {
	case status == 0,
		status == http.StatusRequestTimeout,
		status == http.StatusTooManyRequests:
		return true
	case status >= 500 && status <= 599:
		return true
	default:
		return false
	}
}

// parseRetryAfter reads Retry-After as seconds or an HTTP date.
// Returns 0 if the header is missing or unusable.
func parseRetryAfter(resp *http.Response) time.Duration {
	if resp == nil {
		return 0
	}

	v := strings.TrimSpace(resp.Header.Get("Retry-After"))
	if v == "" {
		return 0
	}

	var d time.Duration
	if seconds, err := strconv.Atoi(v); err == nil {
		d = time.Duration(seconds) * time.Second
	} else if t, err := http.ParseTime(v); err == nil {
		d = time.Until(t)
	}

	if d <= 0 {
		return 0
	}
	return min(d, maxRetryAfter)
}

// computeBackoff returns a random duration in [0, base*2^attempt), capped at
// maxBackoff (full jitter).
func computeBackoff(base time.Duration, attempt int) time.Duration {
	if base <= 0 {
		base = 100 * time.Millisecond
	}
	if attempt > 10 {
		attempt = 10
	}

	ceiling := min(base<<attempt, maxBackoff)
	return time.Duration(rand.Float64() * float64(ceiling))
}
