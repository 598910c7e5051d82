package auth

import (
	"crypto/subtle"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned for any username or password mismatch
var ErrInvalidCredentials = errors.New("invalid username or password")

// HashPassword returns a bcrypt hash of password
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("password cannot be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Credentials verifies the single administrator account
type Credentials struct {
	username     string
	passwordHash []byte
}

// NewCredentials creates a verifier for username and bcrypt hash
func NewCredentials(username, passwordHash string) *Credentials {
	return &Credentials{username: username, passwordHash: []byte(passwordHash)}
}

// Verify checks username and password. The bcrypt comparison runs even for
// a wrong username so both failures take similar time.
func (c *Credentials) Verify(username, password string) error {
	if len(c.passwordHash) == 0 {
		return ErrInvalidCredentials
	}
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(c.username)) == 1
	passErr := bcrypt.CompareHashAndPassword(c.passwordHash, []byte(password))
	if !userOK || passErr != nil {
		return ErrInvalidCredentials
	}
	return nil
}
