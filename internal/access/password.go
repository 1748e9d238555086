package access

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

// Stored hashes are "saltHex:derivedKeyHex" with a random 16-byte salt and
// PBKDF2-HMAC-SHA256 at 120k iterations.
const (
	saltLength    = 16
	keyLength     = 32
	kdfIterations = 120000
)

// HashPassword derives a stored hash from a plaintext password. The
// plaintext is never retained.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("%w: password is required", ErrInvalidInput)
	}
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	key := pbkdf2.Key([]byte(password), salt, kdfIterations, keyLength, sha256.New)
	return hex.EncodeToString(salt) + ":" + hex.EncodeToString(key), nil
}

// VerifyPassword reports whether password matches the stored hash. Malformed
// hashes verify as false rather than erroring; a corrupt record must read as
// a failed login, not a crash. The comparison is constant time.
func VerifyPassword(password, stored string) bool {
	saltHex, keyHex, ok := strings.Cut(stored, ":")
	if !ok {
		return false
	}
	salt, err := hex.DecodeString(saltHex)
	if err != nil || len(salt) != saltLength {
		return false
	}
	expected, err := hex.DecodeString(keyHex)
	if err != nil || len(expected) != keyLength {
		return false
	}
	derived := pbkdf2.Key([]byte(password), salt, kdfIterations, keyLength, sha256.New)
	return subtle.ConstantTimeCompare(derived, expected) == 1
}
