package util

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSecurityHeadersAreSet(t *testing.T) {
	h := WithSecurityHeaders(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	for name, want := range apiSecurityHeaders {
		if got := rec.Header().Get(name); got != want {
			t.Fatalf("%s = %q, want %q", name, got, want)
		}
	}
	if rec.Header().Get("Strict-Transport-Security") != "" {
		t.Fatal("HSTS should not be set for plain HTTP")
	}
}

func TestSecurityHeadersHSTSBehindTLSProxy(t *testing.T) {
	h := WithSecurityHeaders(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	rec := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set("X-Forwarded-Proto", "HTTPS")
	h.ServeHTTP(rec, r)

	if rec.Header().Get("Strict-Transport-Security") == "" {
		t.Fatal("expected HSTS behind a TLS-terminating proxy")
	}
}
