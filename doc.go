// Package pwhash encodes, parses, and verifies password hashes stored as
// self-describing text strings — {FSHP1|16|16384}<b64>, {SSHA}<b64>,
// {CRYPT}<crypt-string>, and friends. Callers turn a secret plus tunable
// settings into a canonical hash string and later verify candidates against
// it, without knowing the wire format of each scheme.
//
// # Architecture
//
// The central abstraction is the [Handler] interface: one implementation
// per scheme, each combining a format codec (Parse/Render, exact inverses),
// bounds validation for salt and rounds, and a checksum step backed by the
// pwhash/kdf package. Family schemes such as FSHP dispatch on a [Variant]
// whose (algorithm, digest length) pairs live in a fixed table.
//
// The [Registry] is a named handler registry and dispatcher. Register one
// or more [Handler] implementations, designate a default scheme, then
// delegate hashing through the Registry; [Registry.Check] auto-detects the
// scheme of a stored hash from its identifier prefix, walking handlers in
// registration order with the plaintext catch-all last.
//
// [PrefixWrapper] exposes an existing handler under a namespaced scheme by
// adding or stripping a literal envelope prefix, e.g. {CRYPT} around
// des_crypt or bcrypt.
//
// # Quick start
//
//	r, err := pwhash.NewDefaultRegistry() // FSHP default, all schemes registered
//	if err != nil { log.Fatal(err) }
//
//	hash, _ := r.Make("my-secret-password")
//	ok, _   := r.Check("my-secret-password", hash) // true
//
// # Errors
//
// Handlers distinguish "not this scheme" ([ErrInvalidHash]) from "this
// scheme, corrupted payload" ([ErrMalformedHash]); settings outside a
// scheme's declared bounds are rejected at construction with
// [ErrInvalidSetting], never clamped. A wrong password is not an error:
// Check returns (false, nil).
//
// # Interoperability
//
// String grammars are byte-for-byte compatible with the formats as
// deployed: RFC 2307 userPassword values ({MD5}, {SHA}, {SMD5}, {SSHA},
// {CRYPT}), the FSHP reference implementation, and Python's passlib.
// Compatibility quirks of the formats — FSHP's reversed password/salt
// order in its key derivation, the salted-digest family's checksum-first
// payload order — are preserved deliberately; see the handler docs.
package pwhash
