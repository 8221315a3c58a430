package pwhash

// SchemeName identifies a password-hash scheme.
// Using a named string type prevents accidental confusion with plain strings.
type SchemeName string

const (
	// SchemeFSHP selects the Fairly Secure Hashed Password family
	// ({FSHP0}..{FSHP3}).
	SchemeFSHP SchemeName = "fshp"
	// SchemeLDAPMD5 selects the RFC 2307 plain MD5 format ({MD5}).
	SchemeLDAPMD5 SchemeName = "ldap_md5"
	// SchemeLDAPSHA1 selects the RFC 2307 plain SHA-1 format ({SHA}).
	SchemeLDAPSHA1 SchemeName = "ldap_sha1"
	// SchemeLDAPSaltedMD5 selects the RFC 2307 salted MD5 format ({SMD5}).
	SchemeLDAPSaltedMD5 SchemeName = "ldap_salted_md5"
	// SchemeLDAPSaltedSHA1 selects the RFC 2307 salted SHA-1 format ({SSHA}).
	SchemeLDAPSaltedSHA1 SchemeName = "ldap_salted_sha1"
	// SchemeLDAPPlaintext selects the catch-all plaintext scheme, which
	// identifies any string that does NOT carry a {token} prefix.
	SchemeLDAPPlaintext SchemeName = "ldap_plaintext"
	// SchemeDESCrypt selects traditional Unix DES crypt(3).
	SchemeDESCrypt SchemeName = "des_crypt"
	// SchemeBcrypt selects bcrypt in Modular Crypt Format.
	SchemeBcrypt SchemeName = "bcrypt"
	// SchemeLDAPDESCrypt selects DES crypt wrapped under the {CRYPT} prefix.
	SchemeLDAPDESCrypt SchemeName = "ldap_des_crypt"
	// SchemeLDAPBcrypt selects bcrypt wrapped under the {CRYPT} prefix.
	SchemeLDAPBcrypt SchemeName = "ldap_bcrypt"
)

// Record is the structured form of a parsed hash string.
//
// A Record is produced either by [Handler.Parse] (fully populated, checksum
// present) or assembled by a caller to stage settings for a new hash
// (checksum nil until computed — a "config-only" record). Records are plain
// values: handlers never mutate one after construction, and recomputing a
// checksum for new settings means building a new Record.
//
// Fields a scheme does not use are left at their zero value and ignored by
// that scheme's codec.
type Record struct {
	// Variant selects the member of an algorithm family (e.g. FSHP 0-3,
	// bcrypt minor version). Zero for single-algorithm schemes.
	Variant int

	// Salt is the raw salt bytes. Length is constrained per scheme.
	Salt []byte

	// Rounds is the linear cost factor. Zero for non-iterated schemes.
	Rounds uint32

	// Checksum is the raw checksum bytes. When present its length always
	// equals the digest length of the resolved variant. Nil marks a
	// config-only record; [Handler.Render] substitutes an all-zero stub of
	// the correct length so config-only records still serialize to a
	// complete, same-length string.
	Checksum []byte
}

// IsConfig reports whether r is a config-only record (no checksum yet).
func (r Record) IsConfig() bool { return r.Checksum == nil }

// Handler is the core interface satisfied by every password-hash scheme.
//
// All implementations are immutable after construction and safe for
// concurrent use by multiple goroutines.
type Handler interface {
	// Scheme returns the SchemeName implemented by this handler.
	Scheme() SchemeName

	// Identify reports whether hash plausibly belongs to this scheme.
	// It is a cheap prefix/shape check only — it never fully parses the
	// string — so it can be used to auto-detect a scheme across many
	// handlers before parsing is attempted. False positives are resolved
	// by Parse; false negatives on well-formed hashes are a bug.
	Identify(hash string) bool

	// Parse decodes hash into a structured Record.
	// Returns [ErrInvalidHash] when the string does not match the scheme
	// grammar, [ErrMalformedHash] when the grammar matched but the payload
	// would not decode, and [ErrInvalidSetting] when decoded fields violate
	// the scheme's bounds.
	Parse(hash string) (Record, error)

	// Render serializes rec into the scheme's canonical string form.
	// Parse and Render are exact inverses on valid input. A config-only
	// record renders with an all-zero stub checksum of the correct length.
	Render(rec Record) (string, error)

	// Make hashes secret using the handler's configured settings and a
	// fresh random salt, returning the canonical hash string.
	Make(secret string) (string, error)

	// MakeWith hashes secret using the explicit settings carried by rec
	// (salt, rounds, variant as the scheme supports them); rec's Checksum
	// is ignored. Settings left at their zero value fall back to the
	// handler's configured defaults.
	MakeWith(secret string, rec Record) (string, error)

	// Check verifies that secret matches the previously encoded hash.
	// Returns (true, nil) on match and (false, nil) on a well-formed
	// mismatch; it never errors merely because the password is wrong.
	// Malformed or wrong-scheme input returns the Parse errors.
	//
	// Comparison is length-checked and performed in constant time with
	// respect to secret-dependent content.
	Check(secret, hash string) (bool, error)
}
