package pwhash

import (
	"crypto/rand"
	"fmt"
	"io"
)

// SaltBounds declares a scheme's salt-length policy.
//
// Bounds are enforced at record construction, for both freshly assembled
// settings and values decoded from an existing hash string; violations are
// reported with [ErrInvalidSetting], never clamped. Defaults are applied
// only when no salt was supplied at all.
type SaltBounds struct {
	// Min is the smallest accepted salt length in bytes.
	Min int
	// Max is the largest accepted salt length in bytes.
	// A negative value means unbounded above.
	Max int
	// Default is the length of autogenerated salts.
	Default int
}

// Validate checks that len(salt) falls within the declared bounds.
func (b SaltBounds) Validate(salt []byte) error {
	n := len(salt)
	if n < b.Min {
		return fmt.Errorf("%w: salt length %d below minimum %d", ErrInvalidSetting, n, b.Min)
	}
	if b.Max >= 0 && n > b.Max {
		return fmt.Errorf("%w: salt length %d above maximum %d", ErrInvalidSetting, n, b.Max)
	}
	return nil
}

// Generate returns a fresh salt of the default length, drawn from the
// operating system CSPRNG.
func (b SaltBounds) Generate() ([]byte, error) {
	return randomSalt(b.Default)
}

// RoundsBounds declares a scheme's rounds (cost factor) policy.
// The cost is linear: doubling Rounds doubles the work.
type RoundsBounds struct {
	// Min is the smallest accepted rounds value.
	Min uint32
	// Max is the largest accepted rounds value.
	Max uint32
	// Default is substituted when rounds are not supplied (zero).
	Default uint32
}

// Validate checks that rounds falls within the declared bounds.
func (b RoundsBounds) Validate(rounds uint32) error {
	if rounds < b.Min {
		return fmt.Errorf("%w: rounds %d below minimum %d", ErrInvalidSetting, rounds, b.Min)
	}
	if rounds > b.Max {
		return fmt.Errorf("%w: rounds %d above maximum %d", ErrInvalidSetting, rounds, b.Max)
	}
	return nil
}

// checkChecksumLen enforces the checksum-length invariant: a present
// checksum must be exactly the digest length of the resolved variant.
// Mismatch is a construction-time error, never truncation or padding.
func checkChecksumLen(checksum []byte, want int) error {
	if checksum == nil {
		return nil
	}
	if len(checksum) != want {
		return fmt.Errorf("%w: checksum length %d, digest produces %d",
			ErrInvalidSetting, len(checksum), want)
	}
	return nil
}

// randomSalt returns n cryptographically random bytes.
// n == 0 yields an empty, non-nil slice.
func randomSalt(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return nil, fmt.Errorf("pwhash: failed to generate salt: %w", err)
	}
	return b, nil
}
