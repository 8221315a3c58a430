package pwhash

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"

	"golang.org/x/crypto/bcrypt"
)

const (
	// DefaultBcryptCost is the recommended work factor for bcrypt.
	// At cost 12, hashing takes approximately 250 ms on a modern server
	// CPU, which satisfies OWASP ASVS Level 1 (≥ 10) and Level 2 (≥ 12).
	DefaultBcryptCost = 12
)

// bcryptIdents maps a [Record] variant index to the bcrypt minor version
// encoded in the hash prefix. x/crypto emits "2a" for new hashes; "2b" and
// "2y" appear in hashes imported from OpenBSD and crypt_blowfish systems
// and verify identically.
var bcryptIdents = [...]string{"2a", "2b", "2y"}

// bcryptRe is the Modular Crypt Format grammar for bcrypt:
//
//	$2a$12$<22-char salt><31-char checksum>
//
// using bcrypt's ./A-Za-z0-9 base64 alphabet.
var bcryptRe = regexp.MustCompile(`^\$(2[aby])\$(\d{2})\$([./A-Za-z0-9]{22})([./A-Za-z0-9]{31})$`)

// BcryptOptions configures a [BcryptHandler].
type BcryptOptions struct {
	// Cost is the bcrypt work factor (logarithmic).
	// Valid range: [bcrypt.MinCost (4), bcrypt.MaxCost (31)].
	// Default: [DefaultBcryptCost] (12).
	Cost int
}

// DefaultBcryptOptions returns BcryptOptions with [DefaultBcryptCost].
func DefaultBcryptOptions() BcryptOptions {
	return BcryptOptions{Cost: DefaultBcryptCost}
}

// BcryptHandler implements bcrypt in Modular Crypt Format, delegating the
// key derivation to golang.org/x/crypto/bcrypt.
//
// Bcrypt generates and embeds its own 128-bit salt, so [BcryptHandler.MakeWith]
// rejects records that carry an explicit salt rather than silently ignoring
// it. Salt and checksum in a parsed [Record] are the literal bcrypt-base64
// characters — the textual form is the wire form.
//
// # Thread safety
//
// BcryptHandler is immutable after construction and safe for concurrent use.
type BcryptHandler struct {
	cost   int
	rounds RoundsBounds
}

// NewBcryptHandler constructs a BcryptHandler with the provided options.
// Returns [ErrInvalidSetting] if Cost is outside [bcrypt.MinCost, bcrypt.MaxCost].
func NewBcryptHandler(opts BcryptOptions) (*BcryptHandler, error) {
	if opts.Cost < bcrypt.MinCost || opts.Cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("%w: bcrypt cost %d must be in [%d, %d]",
			ErrInvalidSetting, opts.Cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	return &BcryptHandler{
		cost:   opts.Cost,
		rounds: RoundsBounds{Min: uint32(bcrypt.MinCost), Max: uint32(bcrypt.MaxCost), Default: uint32(opts.Cost)},
	}, nil
}

// Scheme returns [SchemeBcrypt].
func (h *BcryptHandler) Scheme() SchemeName { return SchemeBcrypt }

// Cost returns the configured work factor.
func (h *BcryptHandler) Cost() int { return h.cost }

// Identify reports whether hash starts with a bcrypt version prefix
// ($2a$, $2b$, or $2y$).
func (h *BcryptHandler) Identify(hash string) bool {
	for _, ident := range bcryptIdents {
		if len(hash) >= len(ident)+2 && hash[0] == '$' &&
			hash[1:1+len(ident)] == ident && hash[1+len(ident)] == '$' {
			return true
		}
	}
	return false
}

// Parse decodes a bcrypt hash. The minor version maps to the record's
// variant index, the cost to its rounds.
func (h *BcryptHandler) Parse(hash string) (Record, error) {
	if !h.Identify(hash) {
		return Record{}, fmt.Errorf("%w: not a bcrypt hash", ErrInvalidHash)
	}
	m := bcryptRe.FindStringSubmatch(hash)
	if m == nil {
		return Record{}, fmt.Errorf("%w: bad bcrypt field layout", ErrMalformedHash)
	}
	variant := -1
	for i, ident := range bcryptIdents {
		if m[1] == ident {
			variant = i
			break
		}
	}
	cost, err := strconv.Atoi(m[2])
	if err != nil {
		return Record{}, fmt.Errorf("%w: bad bcrypt cost %q", ErrMalformedHash, m[2])
	}
	if err := h.rounds.Validate(uint32(cost)); err != nil {
		return Record{}, err
	}
	return Record{
		Variant:  variant,
		Rounds:   uint32(cost),
		Salt:     []byte(m[3]),
		Checksum: []byte(m[4]),
	}, nil
}

// Render reassembles the Modular Crypt Format string. A config-only record
// renders with an all-zero stub checksum ("." encodes value 0).
func (h *BcryptHandler) Render(rec Record) (string, error) {
	if rec.Variant < 0 || rec.Variant >= len(bcryptIdents) {
		return "", fmt.Errorf("%w: unknown bcrypt variant %d", ErrInvalidSetting, rec.Variant)
	}
	if err := h.rounds.Validate(rec.Rounds); err != nil {
		return "", err
	}
	if len(rec.Salt) != 22 || !isHash64(rec.Salt) {
		return "", fmt.Errorf("%w: bcrypt salt must be 22 base64 characters", ErrInvalidSetting)
	}
	chk := rec.Checksum
	if chk == nil {
		chk = []byte("...............................")
	}
	if len(chk) != 31 || !isHash64(chk) {
		return "", fmt.Errorf("%w: bcrypt checksum must be 31 base64 characters",
			ErrInvalidSetting)
	}
	return fmt.Sprintf("$%s$%02d$%s%s",
		bcryptIdents[rec.Variant], rec.Rounds, rec.Salt, chk), nil
}

// Make hashes secret with the configured cost. A fresh 128-bit salt is
// generated internally by the bcrypt implementation.
//
// Bcrypt truncates secrets longer than 72 bytes.
func (h *BcryptHandler) Make(secret string) (string, error) {
	return h.MakeWith(secret, Record{})
}

// MakeWith hashes secret using rec.Rounds as the cost (zero falls back to
// the configured cost). Bcrypt owns salt generation: a record carrying an
// explicit salt or a non-default variant is rejected rather than ignored.
func (h *BcryptHandler) MakeWith(secret string, rec Record) (string, error) {
	if rec.Salt != nil {
		return "", fmt.Errorf("%w: bcrypt generates its own salt", ErrInvalidSetting)
	}
	if rec.Variant != 0 {
		return "", fmt.Errorf("%w: bcrypt minor version is fixed by the implementation",
			ErrInvalidSetting)
	}
	cost := int(rec.Rounds)
	if cost == 0 {
		cost = h.cost
	}
	if err := h.rounds.Validate(uint32(cost)); err != nil {
		return "", err
	}
	out, err := bcrypt.GenerateFromPassword([]byte(secret), cost)
	if err != nil {
		return "", fmt.Errorf("pwhash: bcrypt: %w", err)
	}
	return string(out), nil
}

// Check verifies secret against the bcrypt hash.
// Returns (false, nil) on a well-formed mismatch.
func (h *BcryptHandler) Check(secret, hash string) (bool, error) {
	if _, err := h.Parse(hash); err != nil {
		return false, err
	}
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("pwhash: bcrypt: %w", err)
	}
	return true, nil
}
