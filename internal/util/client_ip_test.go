package util

import (
	"net/http/httptest"
	"testing"
)

func TestClientIPIgnoresForwardedFromUntrustedPeer(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "203.0.113.9:51442"
	r.Header.Set("X-Forwarded-For", "198.51.100.7")

	if got := ClientIP(r, nil); got != "203.0.113.9" {
		t.Fatalf("ClientIP = %q, want peer address", got)
	}
}

func TestClientIPWalksForwardedChainFromTrustedProxy(t *testing.T) {
	trusted, err := NewTrustedProxies([]string{"10.0.0.0/8", "172.16.0.1"})
	if err != nil {
		t.Fatalf("NewTrustedProxies: %v", err)
	}

	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "10.1.2.3:443"
	r.Header.Set("X-Forwarded-For", "198.51.100.7, 172.16.0.1, 10.9.8.7")

	if got := ClientIP(r, trusted); got != "198.51.100.7" {
		t.Fatalf("ClientIP = %q, want first untrusted hop", got)
	}
}

func TestClientIPFallsBackToRealIPHeader(t *testing.T) {
	trusted, err := NewTrustedProxies([]string{"10.0.0.0/8"})
	if err != nil {
		t.Fatalf("NewTrustedProxies: %v", err)
	}

	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "10.1.2.3:443"
	r.Header.Set("X-Real-IP", "198.51.100.44")

	if got := ClientIP(r, trusted); got != "198.51.100.44" {
		t.Fatalf("ClientIP = %q, want X-Real-IP value", got)
	}
}

func TestNewTrustedProxiesRejectsGarbage(t *testing.T) {
	if _, err := NewTrustedProxies([]string{"not-an-ip"}); err == nil {
		t.Fatal("expected error for invalid entry")
	}
	trusted, err := NewTrustedProxies([]string{"", "  "})
	if err != nil {
		t.Fatalf("blank entries: %v", err)
	}
	if trusted != nil {
		t.Fatal("expected nil allowlist for blank input")
	}
}
