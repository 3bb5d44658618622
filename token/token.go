package token

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"io"
	"time"
)

const (
	// DefaultByteLength yields 256 bits of entropy (64 hex characters).
	DefaultByteLength = 32

	maxByteLength = 256
)

var errInvalidByteLength = errors.New("token byte length must be in (0, 256]")

// Issued pairs a freshly generated token with its absolute expiry.
type Issued struct {
	Token     string
	ExpiresAt time.Time
}

// Generate returns a hex-encoded token of byteLength random bytes read
// from crypto/rand. byteLength must be positive and at most 256.
func Generate(byteLength int) (string, error) {
	if byteLength <= 0 || byteLength > maxByteLength {
		return "", errInvalidByteLength
	}

	raw := make([]byte, byteLength)
	if _, err := io.ReadFull(rand.Reader, raw); err != nil {
		return "", err
	}

	return hex.EncodeToString(raw), nil
}

// GenerateWithExpiry generates a token whose expiry is ttl from now.
// Non-positive ttl is rejected; a zero expiry would make every lookup
// fail and usually indicates a configuration mistake upstream.
func GenerateWithExpiry(ttl time.Duration, byteLength int) (Issued, error) {
	if ttl <= 0 {
		return Issued{}, errors.New("token ttl must be positive")
	}

	tok, err := Generate(byteLength)
	if err != nil {
		return Issued{}, err
	}

	return Issued{
		Token:     tok,
		ExpiresAt: time.Now().Add(ttl),
	}, nil
}

// IsExpired reports whether expiresAt lies strictly in the past. A
// token expiring exactly now is still accepted.
func IsExpired(expiresAt time.Time) bool {
	return time.Now().After(expiresAt)
}
