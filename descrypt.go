package pwhash

import (
	"crypto/subtle"
	"fmt"
	"regexp"

	descrypt "github.com/digitive/crypt"
)

// hash64 is the traditional crypt(3) alphabet. Its length is exactly 64,
// so masking a random byte with 0x3f selects a character without bias.
const hash64 = "./0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// desCryptRe is the traditional DES crypt(3) grammar: a 2-character salt
// followed by an 11-character checksum, all from the hash64 alphabet.
var desCryptRe = regexp.MustCompile(`^([./0-9A-Za-z]{2})([./0-9A-Za-z]{11})$`)

// DESCryptHandler implements traditional Unix DES crypt(3).
//
// The algorithm truncates secrets to 8 bytes and offers a 12-bit salt; it
// exists here to verify legacy stores (and to back the {CRYPT} envelope),
// not for new hashes. The DES computation is delegated to
// github.com/digitive/crypt.
//
// Salt and checksum in a DES crypt [Record] are the literal hash64
// characters, not decoded bits — the textual form is the wire form.
//
// # Thread safety
//
// DESCryptHandler is stateless and safe for concurrent use.
type DESCryptHandler struct{}

// NewDESCryptHandler constructs the des_crypt handler.
func NewDESCryptHandler() *DESCryptHandler { return &DESCryptHandler{} }

// Scheme returns [SchemeDESCrypt].
func (h *DESCryptHandler) Scheme() SchemeName { return SchemeDESCrypt }

// Identify reports whether hash has the 13-character crypt(3) shape.
// The format carries no identifier token, so this check is loose; keep
// des_crypt late in any auto-detection order.
func (h *DESCryptHandler) Identify(hash string) bool {
	return desCryptRe.MatchString(hash)
}

// Parse splits the hash into its 2-character salt and 11-character checksum.
func (h *DESCryptHandler) Parse(hash string) (Record, error) {
	m := desCryptRe.FindStringSubmatch(hash)
	if m == nil {
		return Record{}, fmt.Errorf("%w: not a des_crypt hash", ErrInvalidHash)
	}
	return Record{Salt: []byte(m[1]), Checksum: []byte(m[2])}, nil
}

// Render reassembles salt + checksum. A config-only record renders with an
// all-zero stub checksum ("." encodes value 0 in the hash64 alphabet).
func (h *DESCryptHandler) Render(rec Record) (string, error) {
	if rec.Rounds != 0 || rec.Variant != 0 {
		return "", fmt.Errorf("%w: des_crypt accepts no rounds or variant", ErrInvalidSetting)
	}
	if err := h.validateSalt(rec.Salt); err != nil {
		return "", err
	}
	chk := rec.Checksum
	if chk == nil {
		chk = []byte("...........")
	}
	if len(chk) != 11 || !isHash64(chk) {
		return "", fmt.Errorf("%w: des_crypt checksum must be 11 hash64 characters",
			ErrInvalidSetting)
	}
	return string(rec.Salt) + string(chk), nil
}

// Make hashes secret with a fresh random 2-character salt.
func (h *DESCryptHandler) Make(secret string) (string, error) {
	return h.MakeWith(secret, Record{})
}

// MakeWith hashes secret with the salt in rec; a nil salt is autogenerated.
// rec.Checksum is ignored.
func (h *DESCryptHandler) MakeWith(secret string, rec Record) (string, error) {
	if rec.Rounds != 0 || rec.Variant != 0 {
		return "", fmt.Errorf("%w: des_crypt accepts no rounds or variant", ErrInvalidSetting)
	}
	salt := rec.Salt
	if salt == nil {
		raw, err := randomSalt(2)
		if err != nil {
			return "", err
		}
		salt = []byte{hash64[raw[0]&0x3f], hash64[raw[1]&0x3f]}
	}
	if err := h.validateSalt(salt); err != nil {
		return "", err
	}
	out, err := descrypt.Crypt(secret, string(salt))
	if err != nil {
		return "", fmt.Errorf("pwhash: des_crypt: %w", err)
	}
	return out, nil
}

// Check verifies secret against the hash by recomputing with its salt.
func (h *DESCryptHandler) Check(secret, hash string) (bool, error) {
	rec, err := h.Parse(hash)
	if err != nil {
		return false, err
	}
	computed, err := descrypt.Crypt(secret, string(rec.Salt))
	if err != nil {
		return false, fmt.Errorf("pwhash: des_crypt: %w", err)
	}
	if len(computed) != len(hash) {
		return false, fmt.Errorf("%w: checksum length diverged", ErrMalformedHash)
	}
	return subtle.ConstantTimeCompare([]byte(computed), []byte(hash)) == 1, nil
}

func (h *DESCryptHandler) validateSalt(salt []byte) error {
	if len(salt) != 2 || !isHash64(salt) {
		return fmt.Errorf("%w: des_crypt salt must be 2 hash64 characters", ErrInvalidSetting)
	}
	return nil
}

func isHash64(b []byte) bool {
	for _, c := range b {
		switch {
		case c == '.' || c == '/':
		case c >= '0' && c <= '9':
		case c >= 'A' && c <= 'Z':
		case c >= 'a' && c <= 'z':
		default:
			return false
		}
	}
	return true
}
