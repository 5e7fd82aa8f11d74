// Package cryptox wraps the one-way hashes used by the identity layer:
// bcrypt for login secrets, argon2id for confirmation PINs and SHA-256 digests
// for consumed tokens.
package cryptox

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/businessecom2026-code/Safe360co-sub000/internal/common"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// MinBcryptCost is the lowest work factor accepted for password hashes.
const MinBcryptCost = 10

const pinSaltSize = 16

// HashPassword returns a salted bcrypt hash of raw. Costs below
// MinBcryptCost are raised to it.
func HashPassword(raw string, cost int) (string, error) {
	if cost < MinBcryptCost {
		cost = MinBcryptCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(raw), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether raw matches the stored bcrypt hash.
// An empty or malformed hash never matches.
func CheckPassword(hash, raw string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(raw)) == nil
}

func derivePINKey(pin string, salt []byte) []byte {
	return argon2.IDKey([]byte(pin), salt, 1, 64*1024, 4, 32)
}

// HashPIN returns "<salt hex>$<key hex>" for pin.
func HashPIN(pin string) string {
	salt := common.GenerateRandByteArray(pinSaltSize)
	key := derivePINKey(pin, salt)
	return hex.EncodeToString(salt) + "$" + hex.EncodeToString(key)
}

// VerifyPIN compares pin against a digest produced by HashPIN in constant time.
func VerifyPIN(digest, pin string) (bool, error) {
	saltHex, keyHex, ok := strings.Cut(digest, "$")
	if !ok {
		return false, errors.New("malformed pin digest")
	}
	salt, err := hex.DecodeString(saltHex)
	if err != nil {
		return false, fmt.Errorf("decode pin salt: %w", err)
	}
	want, err := hex.DecodeString(keyHex)
	if err != nil {
		return false, fmt.Errorf("decode pin key: %w", err)
	}
	got := derivePINKey(pin, salt)
	return subtle.ConstantTimeCompare(want, got) == 1, nil
}

// TokenDigest returns the hex SHA-256 of an opaque token.
func TokenDigest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// TokensEqual compares two opaque tokens in constant time.
func TokensEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
