package pwhash

import (
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-pwhash/pwhash/kdf"
)

// ──────────────────────────────────────────────────────────────────────────────
// Variants
// ──────────────────────────────────────────────────────────────────────────────

// Variant selects a member of the FSHP algorithm family. The variant index
// is encoded directly into the hash string ({FSHP1|...}).
type Variant int

const (
	// VariantSHA1 is FSHP variant 0 (SHA-1, 20-byte digest). Deprecated by
	// the format itself; supported for verifying existing hashes.
	VariantSHA1 Variant = 0
	// VariantSHA256 is FSHP variant 1 (SHA-256, 32-byte digest).
	VariantSHA256 Variant = 1
	// VariantSHA384 is FSHP variant 2 (SHA-384, 48-byte digest).
	VariantSHA384 Variant = 2
	// VariantSHA512 is FSHP variant 3 (SHA-512, 64-byte digest).
	VariantSHA512 Variant = 3

	// DefaultVariant is used by [DefaultFSHPOptions].
	DefaultVariant = VariantSHA256
)

// variantInfo is the per-variant (algorithm, digest size) table.
// Indexed by Variant; read-only after initialization.
var variantInfo = [...]struct {
	alg  kdf.Alg
	size int
}{
	VariantSHA1:   {kdf.SHA1, 20},
	VariantSHA256: {kdf.SHA256, 32},
	VariantSHA384: {kdf.SHA384, 48},
	VariantSHA512: {kdf.SHA512, 64},
}

// Valid reports whether v is a registered FSHP variant.
func (v Variant) Valid() bool { return v >= 0 && int(v) < len(variantInfo) }

// Alg returns the digest algorithm backing v. Panics on an invalid variant;
// callers validate with [Variant.Valid] or [ParseVariant] first.
func (v Variant) Alg() kdf.Alg { return variantInfo[v].alg }

// Size returns the digest output size in bytes for v.
func (v Variant) Size() int { return variantInfo[v].size }

// String returns the canonical algorithm name for v, or "invalid".
func (v Variant) String() string {
	if !v.Valid() {
		return "invalid"
	}
	return string(variantInfo[v].alg)
}

// ParseVariant resolves a variant alias: the decimal form of the index
// ("0".."3") or the canonical algorithm name ("sha1", "sha256", "sha384",
// "sha512"). Unknown aliases return [ErrInvalidSetting].
func ParseVariant(s string) (Variant, error) {
	if n, err := strconv.Atoi(s); err == nil {
		v := Variant(n)
		if !v.Valid() {
			return 0, fmt.Errorf("%w: unknown fshp variant %d", ErrInvalidSetting, n)
		}
		return v, nil
	}
	for i, info := range variantInfo {
		if string(info.alg) == s {
			return Variant(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown fshp variant alias %q", ErrInvalidSetting, s)
}

// ──────────────────────────────────────────────────────────────────────────────
// Options
// ──────────────────────────────────────────────────────────────────────────────

const (
	// DefaultFSHPSaltSize is the default autogenerated salt length in bytes.
	// The FSHP reference implementation uses 8; 16 is the modern default.
	DefaultFSHPSaltSize = 16

	// DefaultFSHPRounds is the default rounds count. The FSHP reference
	// implementation uses 4096; 16384 is the modern default.
	DefaultFSHPRounds uint32 = 16384

	// MinFSHPRounds is the smallest rounds value the format permits.
	MinFSHPRounds uint32 = 1

	// MaxFSHPRounds is the largest rounds value the format permits
	// (the rounds field is a 32-bit integer on the wire).
	MaxFSHPRounds uint32 = math.MaxUint32
)

// FSHPOptions configures an [FSHPHandler].
type FSHPOptions struct {
	// Variant selects the digest family member for new hashes.
	// Default: [DefaultVariant] (SHA-256). Note that the zero value selects
	// variant 0 (SHA-1); use [DefaultFSHPOptions] as the starting point.
	Variant Variant

	// SaltSize is the length in bytes of autogenerated salts.
	// Any non-negative value is accepted. Default: [DefaultFSHPSaltSize].
	SaltSize int

	// Rounds is the cost factor for new hashes.
	// Valid range: [MinFSHPRounds, MaxFSHPRounds]. Default: [DefaultFSHPRounds].
	Rounds uint32
}

// DefaultFSHPOptions returns FSHPOptions with the recommended defaults.
func DefaultFSHPOptions() FSHPOptions {
	return FSHPOptions{
		Variant:  DefaultVariant,
		SaltSize: DefaultFSHPSaltSize,
		Rounds:   DefaultFSHPRounds,
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Handler
// ──────────────────────────────────────────────────────────────────────────────

// fshpRe is the anchored grammar for the FSHP family:
//
//	{FSHP<variant>|<salt_size>|<rounds>}<base64(salt || checksum)>
//
// The base64 payload uses the standard alphabet with 0-3 '=' padding chars.
var fshpRe = regexp.MustCompile(`^\{FSHP(\d+)\|(\d+)\|(\d+)\}([a-zA-Z0-9+/]+={0,3})$`)

// FSHPHandler implements the Fairly Secure Hashed Password format.
//
// FSHP is a self-describing iterated-digest format: variant, salt length,
// and rounds are all carried in the hash string, so verification never
// depends on the handler's configured options.
//
// # Thread safety
//
// FSHPHandler is immutable after construction and safe for concurrent use.
type FSHPHandler struct {
	opts   FSHPOptions
	salts  SaltBounds
	rounds RoundsBounds
}

// NewFSHPHandler constructs an FSHPHandler with the given options.
// Use [DefaultFSHPOptions] for recommended defaults.
func NewFSHPHandler(opts FSHPOptions) (*FSHPHandler, error) {
	if !opts.Variant.Valid() {
		return nil, fmt.Errorf("%w: unknown fshp variant %d", ErrInvalidSetting, opts.Variant)
	}
	if opts.SaltSize < 0 {
		return nil, fmt.Errorf("%w: fshp salt size %d must be >= 0", ErrInvalidSetting, opts.SaltSize)
	}
	h := &FSHPHandler{
		opts:   opts,
		salts:  SaltBounds{Min: 0, Max: -1, Default: opts.SaltSize},
		rounds: RoundsBounds{Min: MinFSHPRounds, Max: MaxFSHPRounds, Default: opts.Rounds},
	}
	if err := h.rounds.Validate(opts.Rounds); err != nil {
		return nil, err
	}
	return h, nil
}

// Scheme returns [SchemeFSHP].
func (h *FSHPHandler) Scheme() SchemeName { return SchemeFSHP }

// Options returns the configured settings for new hashes.
func (h *FSHPHandler) Options() FSHPOptions { return h.opts }

// Identify reports whether hash starts with the FSHP identifier token.
func (h *FSHPHandler) Identify(hash string) bool {
	return strings.HasPrefix(hash, "{FSHP")
}

// Parse decodes an FSHP hash string.
//
// The payload is salt || checksum, split at the salt-length field carried in
// the string — the encoded field is authoritative, never a configured
// constant.
func (h *FSHPHandler) Parse(hash string) (Record, error) {
	m := fshpRe.FindStringSubmatch(hash)
	if m == nil {
		return Record{}, fmt.Errorf("%w: not an fshp hash", ErrInvalidHash)
	}
	vn, err := strconv.Atoi(m[1])
	if err != nil || !Variant(vn).Valid() {
		return Record{}, fmt.Errorf("%w: unknown fshp variant %q", ErrInvalidSetting, m[1])
	}
	variant := Variant(vn)
	saltSize, err := strconv.Atoi(m[2])
	if err != nil {
		return Record{}, fmt.Errorf("%w: salt size %q out of range", ErrInvalidSetting, m[2])
	}
	rounds64, err := strconv.ParseUint(m[3], 10, 32)
	if err != nil {
		return Record{}, fmt.Errorf("%w: rounds %q out of range", ErrInvalidSetting, m[3])
	}
	// Reject zero-padded fields so every accepted string is canonical and
	// re-renders byte for byte.
	if m[1] != strconv.Itoa(vn) || m[2] != strconv.Itoa(saltSize) ||
		m[3] != strconv.FormatUint(rounds64, 10) {
		return Record{}, fmt.Errorf("%w: zero-padded numeric field", ErrMalformedHash)
	}
	// Strict decoding rejects non-canonical trailing bits, so every string
	// Parse accepts re-renders byte for byte.
	data, err := base64.StdEncoding.Strict().DecodeString(m[4])
	if err != nil {
		return Record{}, fmt.Errorf("%w: invalid fshp base64: %v", ErrMalformedHash, err)
	}
	if saltSize > len(data) {
		return Record{}, fmt.Errorf("%w: salt size %d exceeds %d-byte payload",
			ErrMalformedHash, saltSize, len(data))
	}
	rec := Record{
		Variant:  int(variant),
		Salt:     data[:saltSize],
		Rounds:   uint32(rounds64),
		Checksum: data[saltSize:],
	}
	if err := h.validate(rec); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// Render serializes rec into canonical FSHP form. A config-only record is
// rendered with an all-zero stub checksum of the variant's digest length,
// producing a complete, correctly sized string whose cost parameters are
// fixed before the real checksum is known.
func (h *FSHPHandler) Render(rec Record) (string, error) {
	if err := h.validate(rec); err != nil {
		return "", err
	}
	chk := rec.Checksum
	if chk == nil {
		chk = make([]byte, Variant(rec.Variant).Size())
	}
	payload := make([]byte, 0, len(rec.Salt)+len(chk))
	payload = append(payload, rec.Salt...)
	payload = append(payload, chk...)
	return fmt.Sprintf("{FSHP%d|%d|%d}%s",
		rec.Variant, len(rec.Salt), rec.Rounds,
		base64.StdEncoding.EncodeToString(payload)), nil
}

// Make hashes secret with the configured variant, rounds, and a fresh
// random salt of the configured size.
func (h *FSHPHandler) Make(secret string) (string, error) {
	salt, err := h.salts.Generate()
	if err != nil {
		return "", err
	}
	return h.MakeWith(secret, Record{
		Variant: int(h.opts.Variant),
		Salt:    salt,
		Rounds:  h.opts.Rounds,
	})
}

// MakeWith hashes secret with the explicit settings in rec. A nil Salt is
// autogenerated at the configured size and zero Rounds falls back to the
// configured default; Variant is always taken as given (variant 0 is a
// valid scheme member, not an absence marker). rec.Checksum is ignored.
func (h *FSHPHandler) MakeWith(secret string, rec Record) (string, error) {
	if rec.Salt == nil {
		salt, err := h.salts.Generate()
		if err != nil {
			return "", err
		}
		rec.Salt = salt
	}
	if rec.Rounds == 0 {
		rec.Rounds = h.rounds.Default
	}
	rec.Checksum = nil
	if err := h.validate(rec); err != nil {
		return "", err
	}
	chk, err := h.calcChecksum([]byte(secret), rec)
	if err != nil {
		return "", err
	}
	rec.Checksum = chk
	return h.Render(rec)
}

// Check verifies secret against an FSHP hash string. The salt, rounds, and
// variant are taken from the hash itself, so hashes produced under any
// options remain verifiable.
func (h *FSHPHandler) Check(secret, hash string) (bool, error) {
	rec, err := h.Parse(hash)
	if err != nil {
		return false, err
	}
	computed, err := h.calcChecksum([]byte(secret), rec)
	if err != nil {
		return false, err
	}
	// Fail closed on length mismatch; the length invariant makes this
	// unreachable, but a truncated compare must never be the fallback.
	if len(computed) != len(rec.Checksum) {
		return false, fmt.Errorf("%w: checksum length diverged", ErrMalformedHash)
	}
	return subtle.ConstantTimeCompare(computed, rec.Checksum) == 1, nil
}

// calcChecksum runs the FSHP key derivation for rec over secret.
//
// NOTE: FSHP feeds pbkdf1 with password and salt reversed — the record's
// salt is the KDF secret and the caller's password is the KDF salt. This is
// an odd deviation from convention but it is what the wire format does;
// swapping the arguments back would break every deployed FSHP hash.
func (h *FSHPHandler) calcChecksum(secret []byte, rec Record) ([]byte, error) {
	if secret == nil {
		return nil, ErrMissingSecret
	}
	v := Variant(rec.Variant)
	salt := rec.Salt
	if salt == nil {
		salt = []byte{}
	}
	return kdf.PBKDF1(salt, secret, rec.Rounds, v.Size(), v.Alg())
}

// validate applies the construction-time invariants to rec.
func (h *FSHPHandler) validate(rec Record) error {
	v := Variant(rec.Variant)
	if !v.Valid() {
		return fmt.Errorf("%w: unknown fshp variant %d", ErrInvalidSetting, rec.Variant)
	}
	if err := h.salts.Validate(rec.Salt); err != nil {
		return err
	}
	if err := h.rounds.Validate(rec.Rounds); err != nil {
		return err
	}
	return checkChecksumLen(rec.Checksum, v.Size())
}
