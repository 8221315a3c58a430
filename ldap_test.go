package pwhash_test

import (
	"bytes"
	"crypto/sha1"
	"encoding/base64"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/go-pwhash/pwhash"
)

func newTestSSHA(t testing.TB) *pwhash.SaltedDigestHandler {
	t.Helper()
	h, err := pwhash.NewLDAPSaltedSHA1Handler(pwhash.DefaultSaltedDigestOptions())
	if err != nil {
		t.Fatalf("NewLDAPSaltedSHA1Handler: %v", err)
	}
	return h
}

// ──────────────────────────────────────────────────────────────────────────────
// Plain digests: {MD5}, {SHA}
// ──────────────────────────────────────────────────────────────────────────────

func TestLDAPDigest_KnownVectors(t *testing.T) {
	cases := []struct {
		h      pwhash.Handler
		hash   string
		secret string
	}{
		{pwhash.NewLDAPSHA1Handler(), "{SHA}qUqP5cyxm6YcTAhz05Hph5gvu9M=", "test"},
		{pwhash.NewLDAPMD5Handler(), "{MD5}CY9rzUYh03PK3k6DJie09g==", "test"},
	}
	for _, tc := range cases {
		ok, err := tc.h.Check(tc.secret, tc.hash)
		if err != nil {
			t.Fatalf("%s: Check: %v", tc.h.Scheme(), err)
		}
		if !ok {
			t.Errorf("%s: known vector did not verify", tc.h.Scheme())
		}
		if ok, _ := tc.h.Check("wrong", tc.hash); ok {
			t.Errorf("%s: wrong secret verified", tc.h.Scheme())
		}
	}
}

func TestLDAPDigest_MakeCheckRoundTrip(t *testing.T) {
	for _, h := range []pwhash.Handler{pwhash.NewLDAPMD5Handler(), pwhash.NewLDAPSHA1Handler()} {
		hash, err := h.Make("hunter2")
		if err != nil {
			t.Fatalf("%s: Make: %v", h.Scheme(), err)
		}
		if !h.Identify(hash) {
			t.Errorf("%s: Identify rejects own output %q", h.Scheme(), hash)
		}
		if ok, err := h.Check("hunter2", hash); err != nil || !ok {
			t.Errorf("%s: Check = (%v, %v), want (true, nil)", h.Scheme(), ok, err)
		}

		rec, err := h.Parse(hash)
		if err != nil {
			t.Fatalf("%s: Parse: %v", h.Scheme(), err)
		}
		again, err := h.Render(rec)
		if err != nil {
			t.Fatalf("%s: Render: %v", h.Scheme(), err)
		}
		if again != hash {
			t.Errorf("%s: round trip %q != %q", h.Scheme(), again, hash)
		}
	}
}

func TestLDAPDigest_RejectsSettings(t *testing.T) {
	h := pwhash.NewLDAPSHA1Handler()
	if _, err := h.Render(pwhash.Record{Salt: []byte{1}}); !errors.Is(err, pwhash.ErrInvalidSetting) {
		t.Errorf("salted record: got %v, want ErrInvalidSetting", err)
	}
	if _, err := h.MakeWith("x", pwhash.Record{Rounds: 10}); !errors.Is(err, pwhash.ErrInvalidSetting) {
		t.Errorf("rounds: got %v, want ErrInvalidSetting", err)
	}
}

func TestLDAPDigest_ParseErrors(t *testing.T) {
	h := pwhash.NewLDAPSHA1Handler()
	for _, hash := range []string{
		"",
		"{SSHA}qUqP5cyxm6YcTAhz05Hph5gvu9M=",
		"{SHA}tooshort=",
		"{SHA}qUqP5cyxm6YcTAhz05Hph5gvu9M==", // wrong padding shape
	} {
		if _, err := h.Parse(hash); !errors.Is(err, pwhash.ErrInvalidHash) {
			t.Errorf("Parse(%q): got %v, want ErrInvalidHash", hash, err)
		}
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Salted digests: {SMD5}, {SSHA}
// ──────────────────────────────────────────────────────────────────────────────

func TestSaltedDigest_InvalidSaltSize(t *testing.T) {
	for _, size := range []int{0, 3, 17, -1} {
		_, err := pwhash.NewLDAPSaltedSHA1Handler(pwhash.SaltedDigestOptions{SaltSize: size})
		if !errors.Is(err, pwhash.ErrInvalidSetting) {
			t.Errorf("salt size %d: expected ErrInvalidSetting, got %v", size, err)
		}
	}
}

// The payload order is checksum || salt — the reverse of FSHP.
func TestSSHA_PayloadLayout(t *testing.T) {
	h := newTestSSHA(t)
	salt := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	hash, err := h.MakeWith("secret", pwhash.Record{Salt: salt})
	if err != nil {
		t.Fatalf("MakeWith: %v", err)
	}

	// Independent construction of the expected string.
	sum := sha1.Sum(append([]byte("secret"), salt...))
	want := "{SSHA}" + base64.StdEncoding.EncodeToString(append(sum[:], salt...))
	if hash != want {
		t.Fatalf("hash %q, want %q", hash, want)
	}

	rec, err := h.Parse(hash)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !bytes.Equal(rec.Salt, salt) || !bytes.Equal(rec.Checksum, sum[:]) {
		t.Errorf("parsed record diverges: %+v", rec)
	}
}

func TestSaltedDigest_KnownVectors(t *testing.T) {
	ssha := newTestSSHA(t)
	smd5, err := pwhash.NewLDAPSaltedMD5Handler(pwhash.DefaultSaltedDigestOptions())
	if err != nil {
		t.Fatalf("NewLDAPSaltedMD5Handler: %v", err)
	}

	salt := []byte{0x00, 0x01, 0x02, 0x03}
	vectors := []struct {
		h    pwhash.Handler
		hash string
	}{
		{ssha, "{SSHA}ewIbWCO252vJWP6fGbIFAwQcAnsAAQID"},
		{smd5, "{SMD5}+koJIMJ4P+u6U+dwqRDuywABAgM="},
	}
	for _, tc := range vectors {
		got, err := tc.h.MakeWith("test", pwhash.Record{Salt: salt})
		if err != nil {
			t.Fatalf("%s MakeWith: %v", tc.h.Scheme(), err)
		}
		if got != tc.hash {
			t.Errorf("%s MakeWith = %q, want %q", tc.h.Scheme(), got, tc.hash)
		}
		if ok, err := tc.h.Check("test", tc.hash); err != nil || !ok {
			t.Errorf("%s Check = (%v, %v), want (true, nil)", tc.h.Scheme(), ok, err)
		}
	}
}

func TestSSHA_MakeCheck(t *testing.T) {
	h := newTestSSHA(t)
	hash, err := h.Make("password")
	if err != nil {
		t.Fatalf("Make: %v", err)
	}
	if !strings.HasPrefix(hash, "{SSHA}") {
		t.Fatalf("hash %q lacks {SSHA} prefix", hash)
	}
	if ok, err := h.Check("password", hash); err != nil || !ok {
		t.Fatalf("Check(correct) = (%v, %v), want (true, nil)", ok, err)
	}
	if ok, err := h.Check("wrong", hash); err != nil || ok {
		t.Fatalf("Check(wrong) = (%v, %v), want (false, nil)", ok, err)
	}
}

// Truncating the payload of a valid hash must surface as a malformed-hash
// error, not as a silent mismatch.
func TestSSHA_TruncatedPayload(t *testing.T) {
	h, err := pwhash.NewLDAPSaltedSHA1Handler(pwhash.SaltedDigestOptions{SaltSize: 5})
	if err != nil {
		t.Fatalf("NewLDAPSaltedSHA1Handler: %v", err)
	}
	hash, err := h.Make("secret")
	if err != nil {
		t.Fatalf("Make: %v", err)
	}
	_, err = h.Check("secret", hash[:len(hash)-1])
	if !errors.Is(err, pwhash.ErrMalformedHash) {
		t.Errorf("truncated hash: got %v, want ErrMalformedHash", err)
	}
}

func TestSSHA_SaltBoundsOnParse(t *testing.T) {
	h := newTestSSHA(t)
	// 20-byte checksum plus a 17-byte salt: grammar matches, bounds do not.
	payload := base64.StdEncoding.EncodeToString(make([]byte, 20+17))
	if _, err := h.Parse("{SSHA}" + payload); !errors.Is(err, pwhash.ErrInvalidSetting) {
		t.Errorf("oversized salt: got %v, want ErrInvalidSetting", err)
	}
}

func TestSSHA_LargeSaltTolerated(t *testing.T) {
	h := newTestSSHA(t)
	// Verification tolerates any salt within [4, 16] regardless of the
	// handler's configured generation size.
	hash, err := h.MakeWith("secret", pwhash.Record{Salt: bytes.Repeat([]byte{0x42}, 16)})
	if err != nil {
		t.Fatalf("MakeWith: %v", err)
	}
	if ok, err := h.Check("secret", hash); err != nil || !ok {
		t.Fatalf("Check = (%v, %v), want (true, nil)", ok, err)
	}
}

func TestSSHA_RenderStubChecksum(t *testing.T) {
	h := newTestSSHA(t)
	s, err := h.Render(pwhash.Record{Salt: []byte{1, 2, 3, 4}})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	data, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(s, "{SSHA}"))
	if err != nil {
		t.Fatalf("payload base64: %v", err)
	}
	if len(data) != 24 || !bytes.Equal(data[:20], make([]byte, 20)) {
		t.Errorf("stub payload wrong: % x", data)
	}
}

func TestSMD5_RoundTrip(t *testing.T) {
	h, err := pwhash.NewLDAPSaltedMD5Handler(pwhash.DefaultSaltedDigestOptions())
	if err != nil {
		t.Fatalf("NewLDAPSaltedMD5Handler: %v", err)
	}
	hash, err := h.Make("password")
	if err != nil {
		t.Fatalf("Make: %v", err)
	}
	rec, err := h.Parse(hash)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	again, err := h.Render(rec)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if again != hash {
		t.Errorf("round trip %q != %q", again, hash)
	}
	rec2, err := h.Parse(again)
	if err != nil {
		t.Fatalf("re-Parse: %v", err)
	}
	if !reflect.DeepEqual(rec, rec2) {
		t.Error("records diverge after round trip")
	}
	if ok, _ := h.Check("password", hash); !ok {
		t.Error("correct password did not verify")
	}
}
