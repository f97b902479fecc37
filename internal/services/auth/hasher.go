package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/symptomcheck/internal/model"
)

// Hasher produces and verifies password hashes for one scheme
type Hasher interface {
	Scheme() model.HashScheme
	Hash(password string) (string, error)
	Verify(hash, password string) bool
}

// BcryptHasher hashes the raw password with bcrypt.
// bcrypt only accepts 72 bytes of input, so it is kept for verifying existing credentials.
type BcryptHasher struct {
	Cost int
}

func (h BcryptHasher) Scheme() model.HashScheme {
	return model.HashSchemeBcrypt
}

func (h BcryptHasher) Hash(password string) (string, error) {
	return bcryptHash([]byte(password), h.Cost)
}

func (h BcryptHasher) Verify(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// BcryptSHA256Hasher bcrypts the base64 SHA-256 digest of the password.
// The digest is always 44 bytes, under the bcrypt input limit.
type BcryptSHA256Hasher struct {
	Cost int
}

func (h BcryptSHA256Hasher) Scheme() model.HashScheme {
	return model.HashSchemeBcryptSHA256
}

func (h BcryptSHA256Hasher) Hash(password string) (string, error) {
	return bcryptHash(prehash(password), h.Cost)
}

func (h BcryptSHA256Hasher) Verify(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), prehash(password)) == nil
}

func prehash(password string) []byte {
	sum := sha256.Sum256([]byte(password))
	out := make([]byte, base64.StdEncoding.EncodedLen(len(sum)))
	base64.StdEncoding.Encode(out, sum[:])
	return out
}

func bcryptHash(input []byte, cost int) (string, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword(input, cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt: %w", err)
	}
	return string(hash), nil
}

// SHA256Hasher is a single unsalted SHA-256 hex digest of the password.
// It is weak against precomputed tables; only use it to stay compatible with existing stores.
type SHA256Hasher struct{}

func (SHA256Hasher) Scheme() model.HashScheme {
	return model.HashSchemeSHA256
}

func (SHA256Hasher) Hash(password string) (string, error) {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:]), nil
}

func (h SHA256Hasher) Verify(hash, password string) bool {
	expected, _ := h.Hash(password)
	return subtle.ConstantTimeCompare([]byte(hash), []byte(expected)) == 1
}

// NewHasher returns the hasher used for new credentials under a scheme.
// Plain bcrypt is refused: it cannot hash passwords longer than 72 bytes.
func NewHasher(scheme model.HashScheme, bcryptCost int) (Hasher, error) {
	switch scheme {
	case model.HashSchemeBcryptSHA256, "":
		return BcryptSHA256Hasher{Cost: bcryptCost}, nil
	case model.HashSchemeSHA256:
		return SHA256Hasher{}, nil
	case model.HashSchemeBcrypt:
		return nil, fmt.Errorf("password hash scheme %q is verify only, use %q", scheme, model.HashSchemeBcryptSHA256)
	default:
		return nil, fmt.Errorf("unknown password hash scheme %q", scheme)
	}
}

// newVerifiers returns a verifier for every scheme a stored credential may carry
func newVerifiers(bcryptCost int) map[model.HashScheme]Hasher {
	return map[model.HashScheme]Hasher{
		model.HashSchemeBcryptSHA256: BcryptSHA256Hasher{Cost: bcryptCost},
		model.HashSchemeBcrypt:       BcryptHasher{Cost: bcryptCost},
		model.HashSchemeSHA256:       SHA256Hasher{},
	}
}
