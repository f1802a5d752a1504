package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies provider failures by their HTTP status family.
type Kind int

const (
	KindNetwork Kind = iota
	KindRateLimited
	KindAuth
	KindBadRequest
	KindServer
)

func (k Kind) String() string {
	switch k {
	case KindRateLimited:
		return "rate_limited"
	case KindAuth:
		return "auth"
	case KindBadRequest:
		return "bad_request"
	case KindServer:
		return "server_error"
	default:
		return "network"
	}
}

// ProviderError is a classified failure from a completion backend.
type ProviderError struct {
	Provider Provider
	Kind     Kind
	Status   int
	Message  string
}

func (e *ProviderError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s: %s (%d): %s", e.Provider, e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Provider, e.Kind, e.Message)
}

// Retryable reports whether the same call may succeed later.
// Rate limits, server errors and network failures are retryable; auth and
// bad-request failures are not.
func (e *ProviderError) Retryable() bool {
	switch e.Kind {
	case KindRateLimited, KindServer, KindNetwork:
		return true
	default:
		return false
	}
}

func classifyStatus(status int) Kind {
	switch {
	case status == http.StatusTooManyRequests:
		return KindRateLimited
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return KindAuth
	case status >= 400 && status < 500:
		return KindBadRequest
	default:
		return KindServer
	}
}

// wrapTransportError classifies non-HTTP failures. Deadline expiry counts
// as a server-class failure so callers treat it as retryable.
func wrapTransportError(p Provider, err error) *ProviderError {
	kind := KindNetwork
	if errors.Is(err, context.DeadlineExceeded) {
		kind = KindServer
	}
	return &ProviderError{Provider: p, Kind: kind, Message: err.Error()}
}
