// Package kdf supplies the digest and key-derivation primitives consumed by
// the pwhash scheme handlers.
//
// Handlers never touch crypto/* directly; they name an algorithm with [Alg]
// and call [Digest] or [PBKDF1] through this package. Keeping the boundary
// here means a scheme codec can be tested and reasoned about independently
// of the primitive backing it.
//
// # Thread safety
//
// All functions are pure and safe for concurrent use.
package kdf

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"errors"
	"fmt"
	"hash"
)

// Alg names a supported digest algorithm.
// Using a named string type prevents accidental confusion with plain strings.
type Alg string

const (
	// MD5 selects the MD5 digest (16-byte output). Legacy formats only.
	MD5 Alg = "md5"
	// SHA1 selects the SHA-1 digest (20-byte output). Legacy formats only.
	SHA1 Alg = "sha1"
	// SHA256 selects the SHA-256 digest (32-byte output).
	SHA256 Alg = "sha256"
	// SHA384 selects the SHA-384 digest (48-byte output).
	SHA384 Alg = "sha384"
	// SHA512 selects the SHA-512 digest (64-byte output).
	SHA512 Alg = "sha512"
)

// Sentinel errors returned by kdf operations.
// Use [errors.Is] for comparisons.
var (
	// ErrUnknownAlgorithm is returned when an [Alg] value names no
	// registered digest.
	ErrUnknownAlgorithm = errors.New("kdf: unknown digest algorithm")

	// ErrInvalidRounds is returned by [PBKDF1] when rounds is zero.
	ErrInvalidRounds = errors.New("kdf: rounds must be >= 1")

	// ErrKeyLength is returned by [PBKDF1] when the requested key length
	// is zero or exceeds the digest output size.
	ErrKeyLength = errors.New("kdf: invalid derived key length")

	// ErrMissingSecret is returned when a nil secret is supplied to a
	// derivation call. An empty (zero-length, non-nil) secret is legal.
	ErrMissingSecret = errors.New("kdf: no secret supplied")
)

// algInfo associates each algorithm name with its constructor and output size.
// Built once at init, read-only thereafter.
var algInfo = map[Alg]struct {
	new  func() hash.Hash
	size int
}{
	MD5:    {md5.New, md5.Size},
	SHA1:   {sha1.New, sha1.Size},
	SHA256: {sha256.New, sha256.Size},
	SHA384: {sha512.New384, sha512.Size384},
	SHA512: {sha512.New, sha512.Size},
}

// New returns a fresh hash.Hash for alg, or [ErrUnknownAlgorithm].
func New(alg Alg) (hash.Hash, error) {
	info, ok := algInfo[alg]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, alg)
	}
	return info.new(), nil
}

// Size returns the digest output size in bytes for alg.
func Size(alg Alg) (int, error) {
	info, ok := algInfo[alg]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, alg)
	}
	return info.size, nil
}

// Digest computes a single digest of input with alg.
func Digest(alg Alg, input []byte) ([]byte, error) {
	h, err := New(alg)
	if err != nil {
		return nil, err
	}
	h.Write(input)
	return h.Sum(nil), nil
}

// PBKDF1 derives keyLen bytes from secret and salt using the PKCS#5 v1.5
// iterated construction:
//
//	T1 = H(secret || salt)
//	Ti = H(Ti-1)          for i in 2..rounds
//	key = T_rounds[:keyLen]
//
// keyLen must be between 1 and the digest output size of alg, inclusive.
// A nil secret returns [ErrMissingSecret]; an empty non-nil secret is valid.
func PBKDF1(secret, salt []byte, rounds uint32, keyLen int, alg Alg) ([]byte, error) {
	if secret == nil {
		return nil, ErrMissingSecret
	}
	if rounds < 1 {
		return nil, ErrInvalidRounds
	}
	info, ok := algInfo[alg]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, alg)
	}
	if keyLen < 1 || keyLen > info.size {
		return nil, fmt.Errorf("%w: %d not in [1, %d] for %s",
			ErrKeyLength, keyLen, info.size, alg)
	}

	h := info.new()
	h.Write(secret)
	h.Write(salt)
	block := h.Sum(nil)
	for i := uint32(1); i < rounds; i++ {
		h.Reset()
		h.Write(block)
		block = h.Sum(block[:0])
	}
	return block[:keyLen], nil
}
