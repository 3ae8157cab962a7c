package auth

import (
	"crypto/subtle"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

var ErrPasswordMismatch = errors.New("incorrect password")

// Hasher turns a password into its stored form and checks attempts against
// it. The plain scheme keeps the legacy behavior the seed accounts rely on;
// bcrypt is the opt-in replacement (Config.PasswordScheme).
type Hasher interface {
	Hash(pwd string) (string, error)
	Compare(stored, attempt string) error
}

type plainHasher struct{}

func (plainHasher) Hash(pwd string) (string, error) { return pwd, nil }

func (plainHasher) Compare(stored, attempt string) error {
	if subtle.ConstantTimeCompare([]byte(stored), []byte(attempt)) != 1 {
		return ErrPasswordMismatch
	}
	return nil
}

type bcryptHasher struct{}

func (bcryptHasher) Hash(pwd string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return "", errors.Wrap(err, "hashing password")
	}
	return string(hash), nil
}

func (bcryptHasher) Compare(stored, attempt string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(stored), []byte(attempt)); err != nil {
		return ErrPasswordMismatch
	}
	return nil
}

// NewHasher returns the hasher for the configured scheme; anything other
// than "bcrypt" falls back to plain.
func NewHasher(scheme string) Hasher {
	if scheme == "bcrypt" {
		return bcryptHasher{}
	}
	return plainHasher{}
}
