package dataflows

import (
	"errors"
	"testing"
	"time"
)

func TestCacheRoundTrip(t *testing.T) {
	cm := NewCacheManager(t.TempDir(), time.Hour, true)

	in := []string{"a", "b", "c"}
	if err := cm.Set("test", "items", "k1", in); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	var out []string
	if !cm.Get("test", "items", "k1", &out) {
		t.Fatal("expected cache hit")
	}
	if len(out) != 3 || out[0] != "a" {
		t.Errorf("unexpected cached value: %v", out)
	}
}

func TestCacheExpiry(t *testing.T) {
	cm := NewCacheManager(t.TempDir(), time.Nanosecond, true)

	if err := cm.Set("test", "items", "k1", "value"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	var out string
	if cm.Get("test", "items", "k1", &out) {
		t.Error("expected expired entry to miss")
	}
}

func TestCacheDisabled(t *testing.T) {
	cm := NewCacheManager(t.TempDir(), time.Hour, false)

	cm.Set("test", "items", "k1", "value")
	var out string
	if cm.Get("test", "items", "k1", &out) {
		t.Error("disabled cache should never hit")
	}
}

func TestCacheInvalidate(t *testing.T) {
	cm := NewCacheManager(t.TempDir(), time.Hour, true)

	cm.Set("test", "items", "k1", "value")
	cm.Invalidate("test", "items", "k1")

	var out string
	if cm.Get("test", "items", "k1", &out) {
		t.Error("expected invalidated entry to miss")
	}
}

func TestWithRetryEventuallySucceeds(t *testing.T) {
	cfg := &RetryConfig{MaxRetries: 3, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond, Multiplier: 2.0}

	attempts := 0
	err := WithRetry(cfg, func() error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
}

func TestWithRetryStopsOnRateLimit(t *testing.T) {
	cfg := &RetryConfig{MaxRetries: 5, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond, Multiplier: 2.0}

	attempts := 0
	err := WithRetry(cfg, func() error {
		attempts++
		return ErrRateLimited
	})
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
	if attempts != 1 {
		t.Errorf("rate limit should not be retried, got %d attempts", attempts)
	}
}

func TestValidateSymbol(t *testing.T) {
	if err := ValidateSymbol("FSLR"); err != nil {
		t.Errorf("FSLR should validate: %v", err)
	}
	if err := ValidateSymbol(""); err == nil {
		t.Error("empty symbol should fail")
	}
	if err := ValidateSymbol("bad symbol!"); err == nil {
		t.Error("symbol with spaces should fail")
	}
}
