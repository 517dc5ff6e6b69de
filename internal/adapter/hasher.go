package adapter

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"quiz-runner/internal/config"
	"quiz-runner/internal/domain"

	"golang.org/x/crypto/bcrypt"
)

// SHA256Hasher stores the unsalted hex SHA-256 digest of a password. It is the
// format existing account files already contain.
type SHA256Hasher struct{}

func (SHA256Hasher) Hash(password string) (string, error) {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:]), nil
}

func (h SHA256Hasher) Verify(hash, password string) bool {
	digest, _ := h.Hash(password)
	return subtle.ConstantTimeCompare([]byte(strings.ToLower(hash)), []byte(digest)) == 1
}

// BcryptHasher stores bcrypt hashes.
type BcryptHasher struct {
	Cost int
}

func (h BcryptHasher) Hash(password string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", domain.NewInternalError("failed to hash password", err)
	}
	return string(b), nil
}

func (BcryptHasher) Verify(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// MultiFormatHasher hashes new passwords with Primary and verifies digests of
// either format. Stored digests are never rewritten.
type MultiFormatHasher struct {
	Primary domain.PasswordHasher
	legacy  SHA256Hasher
	bcrypt  BcryptHasher
}

func (m MultiFormatHasher) Hash(password string) (string, error) {
	return m.Primary.Hash(password)
}

func (m MultiFormatHasher) Verify(hash, password string) bool {
	if isBcryptHash(hash) {
		return m.bcrypt.Verify(hash, password)
	}
	return m.legacy.Verify(hash, password)
}

func isBcryptHash(hash string) bool {
	return strings.HasPrefix(hash, "$2a$") || strings.HasPrefix(hash, "$2b$") || strings.HasPrefix(hash, "$2y$")
}

// NewPasswordHasher returns the hasher selected by auth.password_hash.
func NewPasswordHasher(algorithm string) (domain.PasswordHasher, error) {
	switch algorithm {
	case "", config.PasswordHashSHA256:
		return MultiFormatHasher{Primary: SHA256Hasher{}}, nil
	case config.PasswordHashBcrypt:
		return MultiFormatHasher{Primary: BcryptHasher{}}, nil
	default:
		return nil, fmt.Errorf("unsupported password hash algorithm %q", algorithm)
	}
}
