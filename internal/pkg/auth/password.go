package auth

import (
	"errors"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/aman-gurjar-dev/TechnoHack/internal/pkg/apperrors"
)

// BcryptCost is the work factor used for every stored password.
const BcryptCost = 10

var (
	dummyOnce sync.Once
	dummyHash []byte
)

// MaxPasswordBytes is the longest password bcrypt accepts.
const MaxPasswordBytes = 72

// HashPassword hashes a plaintext password for storage. Passwords over
// MaxPasswordBytes are rejected with a validation error.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", apperrors.NewValidationError("Password is too long",
				map[string]string{"password": "must be at most 72 bytes"})
		}
		return "", err
	}
	return string(bytes), nil
}

// CheckPassword compares a plaintext password against a stored hash.
func CheckPassword(hashedPassword, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	return err == nil
}

// BurnPasswordCheck spends the same time as a real comparison. Login calls it when
// the email is unknown so that response time does not reveal which emails exist.
func BurnPasswordCheck(password string) {
	dummyOnce.Do(func() {
		dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), BcryptCost)
	})
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
}
