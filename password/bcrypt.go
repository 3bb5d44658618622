package password

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the bcrypt cost factor used when none is configured.
const DefaultCost = 10

// Hasher computes and verifies bcrypt password hashes at a fixed cost
// factor. The cost is embedded in every hash it produces, which lets
// NeedsRehash detect hashes minted under an older configuration.
type Hasher struct {
	cost int
}

// NewHasher creates a Hasher with the given cost factor. A cost of 0
// selects DefaultCost. Costs outside bcrypt's supported range are
// rejected rather than silently clamped.
func NewHasher(cost int) (*Hasher, error) {
	if cost == 0 {
		cost = DefaultCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, errors.New("bcrypt cost out of range")
	}

	return &Hasher{cost: cost}, nil
}

// Cost returns the configured cost factor.
func (h *Hasher) Cost() int {
	return h.cost
}

// Hash derives a salted bcrypt hash from plaintext. The call is
// CPU-bound; callers on latency-sensitive paths should run it on a
// worker goroutine.
func (h *Hasher) Hash(plaintext string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Verify reports whether plaintext matches the stored hash. The
// comparison is performed by bcrypt itself and is resistant to timing
// attacks; any malformed hash simply fails verification.
func (h *Hasher) Verify(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}

// NeedsRehash reports whether the stored hash was produced under a
// different cost factor than the one currently configured. Hashes that
// do not parse as bcrypt at all also report true, so unrecognized
// legacy formats are upgraded on the next successful login.
func (h *Hasher) NeedsRehash(hash string) bool {
	cost, err := bcrypt.Cost([]byte(hash))
	if err != nil {
		return true
	}
	return cost != h.cost
}
