package kdf_test

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"testing"

	"github.com/go-pwhash/pwhash/kdf"
)

// ──────────────────────────────────────────────────────────────────────────────
// Digest / Size
// ──────────────────────────────────────────────────────────────────────────────

func TestDigest_KnownVectors(t *testing.T) {
	cases := []struct {
		alg   kdf.Alg
		input string
		hex   string
	}{
		{kdf.MD5, "test", "098f6bcd4621d373cade4e832627b4f6"},
		{kdf.SHA1, "test", "a94a8fe5ccb19ba61c4c0873d391e987982fbbd3"},
		{kdf.SHA256, "", "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"},
	}
	for _, tc := range cases {
		got, err := kdf.Digest(tc.alg, []byte(tc.input))
		if err != nil {
			t.Fatalf("Digest(%s): %v", tc.alg, err)
		}
		want, _ := hex.DecodeString(tc.hex)
		if !bytes.Equal(got, want) {
			t.Errorf("Digest(%s, %q) = %x, want %s", tc.alg, tc.input, got, tc.hex)
		}
	}
}

func TestSize(t *testing.T) {
	cases := []struct {
		alg  kdf.Alg
		size int
	}{
		{kdf.MD5, 16},
		{kdf.SHA1, 20},
		{kdf.SHA256, 32},
		{kdf.SHA384, 48},
		{kdf.SHA512, 64},
	}
	for _, tc := range cases {
		got, err := kdf.Size(tc.alg)
		if err != nil {
			t.Fatalf("Size(%s): %v", tc.alg, err)
		}
		if got != tc.size {
			t.Errorf("Size(%s) = %d, want %d", tc.alg, got, tc.size)
		}
	}
}

func TestDigest_UnknownAlgorithm(t *testing.T) {
	_, err := kdf.Digest("whirlpool", []byte("x"))
	if !errors.Is(err, kdf.ErrUnknownAlgorithm) {
		t.Errorf("expected ErrUnknownAlgorithm, got %v", err)
	}
	if _, err := kdf.Size("whirlpool"); !errors.Is(err, kdf.ErrUnknownAlgorithm) {
		t.Errorf("expected ErrUnknownAlgorithm from Size, got %v", err)
	}
	if _, err := kdf.New("whirlpool"); !errors.Is(err, kdf.ErrUnknownAlgorithm) {
		t.Errorf("expected ErrUnknownAlgorithm from New, got %v", err)
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// PBKDF1
// ──────────────────────────────────────────────────────────────────────────────

// A single round is exactly one digest of secret || salt.
func TestPBKDF1_SingleRound(t *testing.T) {
	for _, alg := range []kdf.Alg{kdf.MD5, kdf.SHA1, kdf.SHA256, kdf.SHA384, kdf.SHA512} {
		size, _ := kdf.Size(alg)
		got, err := kdf.PBKDF1([]byte("secret"), []byte("salt"), 1, size, alg)
		if err != nil {
			t.Fatalf("PBKDF1(%s): %v", alg, err)
		}
		want, _ := kdf.Digest(alg, []byte("secretsalt"))
		if !bytes.Equal(got, want) {
			t.Errorf("%s: single round does not equal digest(secret||salt)", alg)
		}
	}
}

// Round i applies the digest to the previous round's full output.
func TestPBKDF1_Iteration(t *testing.T) {
	const rounds = 7
	got, err := kdf.PBKDF1([]byte("secret"), []byte("salt"), rounds, sha1.Size, kdf.SHA1)
	if err != nil {
		t.Fatalf("PBKDF1: %v", err)
	}
	block := sha1.Sum([]byte("secretsalt"))
	for i := 1; i < rounds; i++ {
		block = sha1.Sum(block[:])
	}
	if !bytes.Equal(got, block[:]) {
		t.Error("iterated output does not match manual iteration")
	}
}

// A shorter keyLen is a strict prefix of the full-length derivation.
func TestPBKDF1_Truncation(t *testing.T) {
	full, err := kdf.PBKDF1([]byte("secret"), []byte("salt"), 10, 32, kdf.SHA256)
	if err != nil {
		t.Fatalf("PBKDF1 full: %v", err)
	}
	short, err := kdf.PBKDF1([]byte("secret"), []byte("salt"), 10, 12, kdf.SHA256)
	if err != nil {
		t.Fatalf("PBKDF1 short: %v", err)
	}
	if len(short) != 12 || !bytes.Equal(short, full[:12]) {
		t.Error("truncated key is not a prefix of the full key")
	}
}

func TestPBKDF1_EmptySecretIsLegal(t *testing.T) {
	got, err := kdf.PBKDF1([]byte{}, []byte("test"), 1, sha1.Size, kdf.SHA1)
	if err != nil {
		t.Fatalf("PBKDF1 with empty secret: %v", err)
	}
	want := sha1.Sum([]byte("test"))
	if !bytes.Equal(got, want[:]) {
		t.Error("empty secret: output should be digest(salt)")
	}
}

func TestPBKDF1_Errors(t *testing.T) {
	cases := []struct {
		name    string
		secret  []byte
		rounds  uint32
		keyLen  int
		alg     kdf.Alg
		wantErr error
	}{
		{"nil secret", nil, 1, 20, kdf.SHA1, kdf.ErrMissingSecret},
		{"zero rounds", []byte("s"), 0, 20, kdf.SHA1, kdf.ErrInvalidRounds},
		{"zero key length", []byte("s"), 1, 0, kdf.SHA1, kdf.ErrKeyLength},
		{"key longer than digest", []byte("s"), 1, 21, kdf.SHA1, kdf.ErrKeyLength},
		{"unknown algorithm", []byte("s"), 1, 20, "whirlpool", kdf.ErrUnknownAlgorithm},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := kdf.PBKDF1(tc.secret, []byte("salt"), tc.rounds, tc.keyLen, tc.alg)
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("got %v, want %v", err, tc.wantErr)
			}
		})
	}
}
