package pwhash

import (
	"crypto/subtle"
	"fmt"
	"regexp"
)

// schemeTokenRe matches the RFC 2307 {token} identifier prefix shared by
// every named scheme in this package.
var schemeTokenRe = regexp.MustCompile(`^\{\w+\}`)

// PlaintextHandler stores passwords as-is.
//
// It identifies any non-empty string that does NOT begin with a {token}
// prefix, which makes it the catch-all, lowest-priority scheme during
// format auto-detection: every {token}-prefixed scheme refuses such
// strings, and PlaintextHandler refuses theirs.
//
// # Thread safety
//
// PlaintextHandler is stateless and safe for concurrent use.
type PlaintextHandler struct{}

// NewPlaintextHandler constructs the plaintext catch-all handler.
func NewPlaintextHandler() *PlaintextHandler { return &PlaintextHandler{} }

// Scheme returns [SchemeLDAPPlaintext].
func (h *PlaintextHandler) Scheme() SchemeName { return SchemeLDAPPlaintext }

// Identify reports whether hash is non-empty and carries no {token} prefix.
func (h *PlaintextHandler) Identify(hash string) bool {
	return hash != "" && !schemeTokenRe.MatchString(hash)
}

// Parse wraps the stored string in a checksum-only record.
func (h *PlaintextHandler) Parse(hash string) (Record, error) {
	if !h.Identify(hash) {
		return Record{}, fmt.Errorf("%w: not a plaintext hash", ErrInvalidHash)
	}
	return Record{Checksum: []byte(hash)}, nil
}

// Render returns the stored string unchanged. A config-only record renders
// as the empty string: plaintext has no settings to stage.
func (h *PlaintextHandler) Render(rec Record) (string, error) {
	if len(rec.Salt) > 0 || rec.Rounds != 0 || rec.Variant != 0 {
		return "", fmt.Errorf("%w: plaintext accepts no salt, rounds, or variant",
			ErrInvalidSetting)
	}
	return string(rec.Checksum), nil
}

// Make returns secret unchanged. A secret that itself starts with a {token}
// prefix is rejected: storing it would make the value indistinguishable
// from a hash of a named scheme.
func (h *PlaintextHandler) Make(secret string) (string, error) {
	return h.MakeWith(secret, Record{})
}

// MakeWith behaves as [PlaintextHandler.Make]; rec carries no usable
// settings for this scheme.
func (h *PlaintextHandler) MakeWith(secret string, rec Record) (string, error) {
	if rec.Checksum != nil || len(rec.Salt) > 0 || rec.Rounds != 0 || rec.Variant != 0 {
		return "", fmt.Errorf("%w: plaintext accepts no settings", ErrInvalidSetting)
	}
	if schemeTokenRe.MatchString(secret) {
		return "", fmt.Errorf("%w: plaintext secret must not start with a {token} prefix",
			ErrInvalidSetting)
	}
	return secret, nil
}

// Check compares secret against the stored string in constant time.
func (h *PlaintextHandler) Check(secret, hash string) (bool, error) {
	if _, err := h.Parse(hash); err != nil {
		return false, err
	}
	return subtle.ConstantTimeCompare([]byte(secret), []byte(hash)) == 1, nil
}
