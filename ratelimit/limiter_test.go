package ratelimit

import (
	"context"
	"net/http"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-fusionauth/core"
)

func TestThrottledError_ToServiceError(t *testing.T) {
	err := ThrottledError{
		Scope:      "api",
		Endpoint:   "/api/user/search",
		RetryAfter: 3 * time.Second,
	}

	mapped := err.ToServiceError()
	if mapped == nil {
		t.Fatalf("expected mapped error")
	}
	if mapped.TextCode != core.ErrorRateLimited {
		t.Fatalf("expected %q text code, got %q", core.ErrorRateLimited, mapped.TextCode)
	}
	if mapped.Code != http.StatusTooManyRequests {
		t.Fatalf("expected status code 429, got %d", mapped.Code)
	}
	if mapped.Metadata["retry_after_ms"] != int64(3000) {
		t.Fatalf("expected retry metadata, got %#v", mapped.Metadata)
	}
}

func TestNewLimiter_DisabledWithoutRate(t *testing.T) {
	limiter := NewLimiter(core.RateLimitConfig{})
	if limiter != nil {
		t.Fatalf("expected nil limiter for zero rate")
	}
	if err := limiter.Wait(context.Background()); err != nil {
		t.Fatalf("nil limiter should not block: %v", err)
	}
	if !limiter.Allow() {
		t.Fatalf("nil limiter should allow")
	}
}

func TestLimiter_WaitHonoursContext(t *testing.T) {
	limiter := NewLimiter(core.RateLimitConfig{RequestsPerSecond: 0.001, Burst: 1})
	if err := limiter.Wait(context.Background()); err != nil {
		t.Fatalf("first call should use burst: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err := limiter.Wait(ctx)
	if err == nil {
		t.Fatalf("expected wait to fail once burst is spent")
	}
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) || rich.Category != goerrors.CategoryRateLimit {
		t.Fatalf("expected rate limit error, got %v", err)
	}
}

func TestParseRetryAfter(t *testing.T) {
	now := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	if got, ok := ParseRetryAfter("5", now); !ok || got != 5*time.Second {
		t.Fatalf("expected 5s, got %s ok=%v", got, ok)
	}
	if got, ok := ParseRetryAfter(now.Add(time.Minute).Format(http.TimeFormat), now); !ok || got != time.Minute {
		t.Fatalf("expected 1m, got %s ok=%v", got, ok)
	}
	for _, raw := range []string{"", "0", "-3", "later"} {
		if _, ok := ParseRetryAfter(raw, now); ok {
			t.Fatalf("expected %q to be rejected", raw)
		}
	}
}
