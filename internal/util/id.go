package util

import (
	"crypto/rand"
	"encoding/hex"
)

// NewID returns a short random hex identifier, used for request ids.
// Record ids come from the store and are UUIDs.
func NewID() string {
	var b [12]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
