package ratelimit

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-fusionauth/core"
	"golang.org/x/time/rate"
)

// Limiter paces outbound API calls. A nil Limiter or a zero rate never blocks.
type Limiter struct {
	limiter *rate.Limiter
}

func NewLimiter(cfg core.RateLimitConfig) *Limiter {
	if cfg.RequestsPerSecond <= 0 {
		return nil
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = max(1, int(cfg.RequestsPerSecond))
	}
	return &Limiter{limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)}
}

func (l *Limiter) Wait(ctx context.Context) error {
	if l == nil || l.limiter == nil {
		return nil
	}
	if err := l.limiter.Wait(ctx); err != nil {
		return ThrottledError{Scope: "client", Cause: err}.ToServiceError()
	}
	return nil
}

// Allow reports whether a call may proceed right now without waiting.
func (l *Limiter) Allow() bool {
	if l == nil || l.limiter == nil {
		return true
	}
	return l.limiter.Allow()
}

type ThrottledError struct {
	Scope      string
	Endpoint   string
	RetryAfter time.Duration
	Cause      error
}

func (e ThrottledError) Error() string {
	scope := strings.TrimSpace(e.Scope)
	if scope == "" {
		scope = "api"
	}
	msg := fmt.Sprintf("ratelimit: %s throttled", scope)
	if endpoint := strings.TrimSpace(e.Endpoint); endpoint != "" {
		msg += fmt.Sprintf(" on %s", endpoint)
	}
	if e.RetryAfter > 0 {
		msg += fmt.Sprintf(" for %s", e.RetryAfter)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e ThrottledError) Unwrap() error {
	return e.Cause
}

func (e ThrottledError) ToServiceError() *goerrors.Error {
	metadata := map[string]any{
		"scope": strings.TrimSpace(e.Scope),
	}
	if endpoint := strings.TrimSpace(e.Endpoint); endpoint != "" {
		metadata["endpoint"] = endpoint
	}
	if e.RetryAfter > 0 {
		metadata["retry_after_ms"] = e.RetryAfter.Milliseconds()
	}
	return goerrors.New(e.Error(), goerrors.CategoryRateLimit).
		WithCode(http.StatusTooManyRequests).
		WithTextCode(core.ErrorRateLimited).
		WithMetadata(metadata)
}

// ParseRetryAfter reads a Retry-After value given either as delay seconds or
// as an HTTP date relative to now.
func ParseRetryAfter(raw string, now time.Time) (time.Duration, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	if seconds, err := strconv.Atoi(raw); err == nil {
		if seconds <= 0 {
			return 0, false
		}
		return time.Duration(seconds) * time.Second, true
	}
	if retryAt, err := httpDate(raw); err == nil && retryAt.After(now) {
		return retryAt.Sub(now), true
	}
	return 0, false
}

func httpDate(value string) (time.Time, error) {
	for _, layout := range []string{time.RFC1123, time.RFC1123Z, http.TimeFormat} {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("ratelimit: invalid http date")
}
