package pwhash

import "errors"

// Sentinel errors returned by scheme handlers and the registry.
//
// Use [errors.Is] for comparisons:
//
//	_, err := h.Parse(hash)
//	if errors.Is(err, pwhash.ErrMalformedHash) {
//	    // right scheme, corrupted payload
//	}
var (
	// ErrInvalidHash is returned when a hash string does not match the
	// scheme's grammar at all — i.e. "this is not one of mine".
	ErrInvalidHash = errors.New("pwhash: hash does not match scheme format")

	// ErrMalformedHash is returned when the grammar matched but the payload
	// could not be decoded (bad base64, impossible field split). It signals
	// a corrupted value of the right scheme, as opposed to [ErrInvalidHash]
	// which signals the wrong scheme entirely.
	ErrMalformedHash = errors.New("pwhash: malformed hash payload")

	// ErrInvalidSetting is returned at record-construction time when a
	// setting falls outside the scheme's declared bounds: rounds or salt
	// length out of range, an unknown variant or alias, or a checksum whose
	// length does not equal the resolved variant's digest length. Values are
	// never silently clamped or truncated.
	ErrInvalidSetting = errors.New("pwhash: invalid scheme setting")

	// ErrMissingSecret is returned when a checksum operation is invoked
	// without a secret (a nil byte slice). An empty password is legal and
	// is not reported as missing.
	ErrMissingSecret = errors.New("pwhash: no secret supplied")

	// ErrSchemeNotFound is returned by [Registry.Handler] or indirectly by
	// [Registry.Make] / [Registry.Check] when the requested scheme has not
	// been registered, or when no registered scheme identifies a hash.
	ErrSchemeNotFound = errors.New("pwhash: scheme not found")

	// ErrEmptySchemeName is returned by [Registry.Register] when the
	// supplied scheme name is an empty string.
	ErrEmptySchemeName = errors.New("pwhash: scheme name must not be empty")

	// ErrNilHandler is returned by [Registry.Register] when a nil [Handler]
	// is supplied.
	ErrNilHandler = errors.New("pwhash: handler must not be nil")
)
