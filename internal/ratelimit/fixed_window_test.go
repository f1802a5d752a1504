package ratelimit

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func TestRedisLimiterEnforcesQuota(t *testing.T) {
	mr := miniredis.RunT(t)
	l, err := NewRedisFixedWindowLimiter(mr.Addr(), "", "test:ratelimit", 3, time.Minute)
	if err != nil {
		t.Fatalf("NewRedisFixedWindowLimiter: %v", err)
	}

	for i := 0; i < 3; i++ {
		if !l.Allow("1.2.3.4") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if l.Allow("1.2.3.4") {
		t.Fatal("fourth request should be denied")
	}
	// Separate keys get separate windows.
	if !l.Allow("5.6.7.8") {
		t.Fatal("other key should still be allowed")
	}
}

func TestRedisLimiterFailsClosed(t *testing.T) {
	mr := miniredis.RunT(t)
	l, err := NewRedisFixedWindowLimiter(mr.Addr(), "", "test:ratelimit", 3, time.Minute)
	if err != nil {
		t.Fatalf("NewRedisFixedWindowLimiter: %v", err)
	}
	mr.Close()
	if l.Allow("1.2.3.4") {
		t.Fatal("expected deny when redis is unreachable")
	}
}

func TestLocalLimiterEnforcesQuota(t *testing.T) {
	l, err := NewLocalFixedWindowLimiter(2, time.Minute)
	if err != nil {
		t.Fatalf("NewLocalFixedWindowLimiter: %v", err)
	}
	if !l.Allow("k") || !l.Allow("k") {
		t.Fatal("first two requests should be allowed")
	}
	if l.Allow("k") {
		t.Fatal("third request should be denied")
	}
}

func TestLimiterRejectsBadConfig(t *testing.T) {
	if _, err := NewLocalFixedWindowLimiter(0, time.Minute); err == nil {
		t.Fatal("expected error for zero limit")
	}
	if _, err := NewRedisFixedWindowLimiter("", "", "", 1, time.Minute); err == nil {
		t.Fatal("expected error for empty addr")
	}
}
