package pwhash

import (
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-pwhash/pwhash/kdf"
)

// This file implements the RFC 2307 userPassword digest formats:
//
//	{MD5}<b64(digest)>            {SHA}<b64(digest)>
//	{SMD5}<b64(digest || salt)>   {SSHA}<b64(digest || salt)>
//
// Note the salted payload order is checksum-then-salt — the reverse of the
// FSHP family — and the salt length is not encoded in the string: it is
// whatever remains after the fixed digest length.

// ──────────────────────────────────────────────────────────────────────────────
// Plain digests: {MD5}, {SHA}
// ──────────────────────────────────────────────────────────────────────────────

// DigestHandler implements an unsalted, non-iterated digest scheme. The
// checksum is a single digest of the UTF-8 secret bytes; there are no
// tunable settings.
//
// # Thread safety
//
// DigestHandler is immutable after construction and safe for concurrent use.
type DigestHandler struct {
	scheme SchemeName
	ident  string
	alg    kdf.Alg
	size   int
	re     *regexp.Regexp
}

// NewLDAPMD5Handler constructs the {MD5} handler (16-byte digest).
func NewLDAPMD5Handler() *DigestHandler {
	return &DigestHandler{
		scheme: SchemeLDAPMD5,
		ident:  "{MD5}",
		alg:    kdf.MD5,
		size:   16,
		re:     regexp.MustCompile(`^\{MD5\}([+/a-zA-Z0-9]{22}==)$`),
	}
}

// NewLDAPSHA1Handler constructs the {SHA} handler (20-byte digest).
func NewLDAPSHA1Handler() *DigestHandler {
	return &DigestHandler{
		scheme: SchemeLDAPSHA1,
		ident:  "{SHA}",
		alg:    kdf.SHA1,
		size:   20,
		re:     regexp.MustCompile(`^\{SHA\}([+/a-zA-Z0-9]{27}=)$`),
	}
}

// Scheme returns the handler's scheme name.
func (h *DigestHandler) Scheme() SchemeName { return h.scheme }

// Identify reports whether hash starts with the scheme's identifier token.
func (h *DigestHandler) Identify(hash string) bool {
	return strings.HasPrefix(hash, h.ident)
}

// Parse decodes the hash into a checksum-only record.
func (h *DigestHandler) Parse(hash string) (Record, error) {
	m := h.re.FindStringSubmatch(hash)
	if m == nil {
		return Record{}, fmt.Errorf("%w: not a %s hash", ErrInvalidHash, h.ident)
	}
	chk, err := base64.StdEncoding.Strict().DecodeString(m[1])
	if err != nil {
		return Record{}, fmt.Errorf("%w: invalid %s base64: %v", ErrMalformedHash, h.ident, err)
	}
	if err := checkChecksumLen(chk, h.size); err != nil {
		return Record{}, err
	}
	return Record{Checksum: chk}, nil
}

// Render serializes rec. The scheme is unsalted and non-iterated; a record
// carrying a salt or rounds is rejected rather than silently dropped.
func (h *DigestHandler) Render(rec Record) (string, error) {
	if len(rec.Salt) > 0 || rec.Rounds != 0 || rec.Variant != 0 {
		return "", fmt.Errorf("%w: %s accepts no salt, rounds, or variant",
			ErrInvalidSetting, h.ident)
	}
	if err := checkChecksumLen(rec.Checksum, h.size); err != nil {
		return "", err
	}
	chk := rec.Checksum
	if chk == nil {
		chk = make([]byte, h.size)
	}
	return h.ident + base64.StdEncoding.EncodeToString(chk), nil
}

// Make hashes secret and returns the canonical string.
func (h *DigestHandler) Make(secret string) (string, error) {
	return h.MakeWith(secret, Record{})
}

// MakeWith hashes secret; rec carries no usable settings for this scheme
// and is validated exactly as in [DigestHandler.Render].
func (h *DigestHandler) MakeWith(secret string, rec Record) (string, error) {
	rec.Checksum = nil
	if _, err := h.Render(rec); err != nil {
		return "", err
	}
	chk, err := kdf.Digest(h.alg, []byte(secret))
	if err != nil {
		return "", err
	}
	rec.Checksum = chk
	return h.Render(rec)
}

// Check verifies secret against the hash.
func (h *DigestHandler) Check(secret, hash string) (bool, error) {
	rec, err := h.Parse(hash)
	if err != nil {
		return false, err
	}
	computed, err := kdf.Digest(h.alg, []byte(secret))
	if err != nil {
		return false, err
	}
	if len(computed) != len(rec.Checksum) {
		return false, fmt.Errorf("%w: checksum length diverged", ErrMalformedHash)
	}
	return subtle.ConstantTimeCompare(computed, rec.Checksum) == 1, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Salted digests: {SMD5}, {SSHA}
// ──────────────────────────────────────────────────────────────────────────────

const (
	// MinLDAPSaltSize is the smallest accepted salt for the salted digest
	// schemes. OpenLDAP writes 4-byte salts.
	MinLDAPSaltSize = 4
	// MaxLDAPSaltSize is the largest accepted salt. Some servers write
	// larger salts; RFC 3112 recommends tolerating up to 16 bytes.
	MaxLDAPSaltSize = 16
	// DefaultLDAPSaltSize is the autogenerated salt length, matching the
	// OpenLDAP default.
	DefaultLDAPSaltSize = 4
)

// SaltedDigestOptions configures a [SaltedDigestHandler].
type SaltedDigestOptions struct {
	// SaltSize is the length of autogenerated salts in bytes.
	// Valid range: [MinLDAPSaltSize, MaxLDAPSaltSize].
	// Default: [DefaultLDAPSaltSize].
	SaltSize int
}

// DefaultSaltedDigestOptions returns SaltedDigestOptions with the
// OpenLDAP-compatible defaults.
func DefaultSaltedDigestOptions() SaltedDigestOptions {
	return SaltedDigestOptions{SaltSize: DefaultLDAPSaltSize}
}

// SaltedDigestHandler implements a salted, non-iterated digest scheme:
// checksum = digest(secret || salt), rendered as ident + b64(checksum||salt).
//
// # Thread safety
//
// SaltedDigestHandler is immutable after construction and safe for
// concurrent use.
type SaltedDigestHandler struct {
	scheme SchemeName
	ident  string
	alg    kdf.Alg
	size   int
	re     *regexp.Regexp
	salts  SaltBounds
}

// NewLDAPSaltedMD5Handler constructs the {SMD5} handler (16-byte digest).
func NewLDAPSaltedMD5Handler(opts SaltedDigestOptions) (*SaltedDigestHandler, error) {
	return newSaltedDigestHandler(SchemeLDAPSaltedMD5, "{SMD5}", kdf.MD5, 16,
		regexp.MustCompile(`^\{SMD5\}([+/a-zA-Z0-9]{27,}={0,2})$`), opts)
}

// NewLDAPSaltedSHA1Handler constructs the {SSHA} handler (20-byte digest).
func NewLDAPSaltedSHA1Handler(opts SaltedDigestOptions) (*SaltedDigestHandler, error) {
	return newSaltedDigestHandler(SchemeLDAPSaltedSHA1, "{SSHA}", kdf.SHA1, 20,
		regexp.MustCompile(`^\{SSHA\}([+/a-zA-Z0-9]{32,}={0,2})$`), opts)
}

func newSaltedDigestHandler(scheme SchemeName, ident string, alg kdf.Alg, size int,
	re *regexp.Regexp, opts SaltedDigestOptions) (*SaltedDigestHandler, error) {
	if opts.SaltSize < MinLDAPSaltSize || opts.SaltSize > MaxLDAPSaltSize {
		return nil, fmt.Errorf("%w: %s salt size %d must be in [%d, %d]",
			ErrInvalidSetting, ident, opts.SaltSize, MinLDAPSaltSize, MaxLDAPSaltSize)
	}
	return &SaltedDigestHandler{
		scheme: scheme,
		ident:  ident,
		alg:    alg,
		size:   size,
		re:     re,
		salts:  SaltBounds{Min: MinLDAPSaltSize, Max: MaxLDAPSaltSize, Default: opts.SaltSize},
	}, nil
}

// Scheme returns the handler's scheme name.
func (h *SaltedDigestHandler) Scheme() SchemeName { return h.scheme }

// Identify reports whether hash starts with the scheme's identifier token.
func (h *SaltedDigestHandler) Identify(hash string) bool {
	return strings.HasPrefix(hash, h.ident)
}

// Parse decodes the hash. The payload splits at the fixed digest length:
// the first size bytes are the checksum, the remainder is the salt.
func (h *SaltedDigestHandler) Parse(hash string) (Record, error) {
	m := h.re.FindStringSubmatch(hash)
	if m == nil {
		return Record{}, fmt.Errorf("%w: not a %s hash", ErrInvalidHash, h.ident)
	}
	// Strict decoding keeps Parse/Render a byte-exact round trip.
	data, err := base64.StdEncoding.Strict().DecodeString(m[1])
	if err != nil {
		return Record{}, fmt.Errorf("%w: invalid %s base64: %v", ErrMalformedHash, h.ident, err)
	}
	if len(data) < h.size {
		return Record{}, fmt.Errorf("%w: %d-byte payload shorter than %d-byte checksum",
			ErrMalformedHash, len(data), h.size)
	}
	rec := Record{Checksum: data[:h.size], Salt: data[h.size:]}
	if err := h.salts.Validate(rec.Salt); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// Render serializes rec as ident + b64(checksum || salt). A config-only
// record renders with an all-zero stub checksum.
func (h *SaltedDigestHandler) Render(rec Record) (string, error) {
	if rec.Rounds != 0 || rec.Variant != 0 {
		return "", fmt.Errorf("%w: %s accepts no rounds or variant",
			ErrInvalidSetting, h.ident)
	}
	if err := h.salts.Validate(rec.Salt); err != nil {
		return "", err
	}
	if err := checkChecksumLen(rec.Checksum, h.size); err != nil {
		return "", err
	}
	chk := rec.Checksum
	if chk == nil {
		chk = make([]byte, h.size)
	}
	payload := make([]byte, 0, len(chk)+len(rec.Salt))
	payload = append(payload, chk...)
	payload = append(payload, rec.Salt...)
	return h.ident + base64.StdEncoding.EncodeToString(payload), nil
}

// Make hashes secret with a fresh random salt of the configured size.
func (h *SaltedDigestHandler) Make(secret string) (string, error) {
	return h.MakeWith(secret, Record{})
}

// MakeWith hashes secret with the salt in rec; a nil salt is autogenerated
// at the configured size. rec.Checksum is ignored.
func (h *SaltedDigestHandler) MakeWith(secret string, rec Record) (string, error) {
	if rec.Salt == nil {
		salt, err := h.salts.Generate()
		if err != nil {
			return "", err
		}
		rec.Salt = salt
	}
	rec.Checksum = nil
	if _, err := h.Render(rec); err != nil {
		return "", err
	}
	chk, err := h.calcChecksum([]byte(secret), rec.Salt)
	if err != nil {
		return "", err
	}
	rec.Checksum = chk
	return h.Render(rec)
}

// Check verifies secret against the hash using the salt carried in it.
func (h *SaltedDigestHandler) Check(secret, hash string) (bool, error) {
	rec, err := h.Parse(hash)
	if err != nil {
		return false, err
	}
	computed, err := h.calcChecksum([]byte(secret), rec.Salt)
	if err != nil {
		return false, err
	}
	if len(computed) != len(rec.Checksum) {
		return false, fmt.Errorf("%w: checksum length diverged", ErrMalformedHash)
	}
	return subtle.ConstantTimeCompare(computed, rec.Checksum) == 1, nil
}

// calcChecksum computes digest(secret || salt) — direct-digest mode, a
// single hash call with no iteration.
func (h *SaltedDigestHandler) calcChecksum(secret, salt []byte) ([]byte, error) {
	if secret == nil {
		return nil, ErrMissingSecret
	}
	input := make([]byte, 0, len(secret)+len(salt))
	input = append(input, secret...)
	input = append(input, salt...)
	return kdf.Digest(h.alg, input)
}
