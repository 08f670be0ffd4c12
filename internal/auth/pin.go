package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
	"time"
)

const (
	pinMin  = 100000
	pinSpan = 900000 // pinMin + pinSpan - 1 == 999999

	// DefaultPinTTL is how long a freshly issued PIN stays valid
	DefaultPinTTL = 24 * time.Hour
)

// PinGenerator issues six-digit MFA PINs and computes their expiration
type PinGenerator struct {
	ttl time.Duration
	now func() time.Time
}

// NewPinGenerator creates a new PinGenerator. A non-positive ttl uses DefaultPinTTL.
func NewPinGenerator(ttl time.Duration) *PinGenerator {
	if ttl <= 0 {
		ttl = DefaultPinTTL
	}
	return &PinGenerator{ttl: ttl, now: time.Now}
}

// Generate returns a uniformly random PIN in [100000, 999999]
func (g *PinGenerator) Generate() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(pinSpan))
	if err != nil {
		return "", fmt.Errorf("failed to generate pin: %w", err)
	}
	return fmt.Sprintf("%d", pinMin+n.Int64()), nil
}

// Expiration returns the expiry instant for a PIN issued now
func (g *PinGenerator) Expiration() time.Time {
	return g.now().Add(g.ttl)
}

// IsExpired reports whether a PIN with the given expiry is no longer valid.
// A missing expiry counts as expired.
func (g *PinGenerator) IsExpired(expiresAt *time.Time) bool {
	if expiresAt == nil {
		return true
	}
	return g.now().After(*expiresAt)
}

// PinsEqual compares a submitted PIN with the stored one in constant time
func PinsEqual(stored, submitted string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(submitted)) == 1
}
