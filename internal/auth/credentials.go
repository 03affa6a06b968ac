// Package auth checks API credentials.
package auth

import (
	"crypto/sha256"
	"crypto/subtle"
)

// Credentials holds the digests of the configured user and password.
type Credentials struct {
	user     [sha256.Size]byte
	password [sha256.Size]byte
}

// NewCredentials returns nil when user is empty, meaning auth is disabled.
func NewCredentials(user, password string) *Credentials {
	if user == "" {
		return nil
	}
	return &Credentials{
		user:     sha256.Sum256([]byte(user)),
		password: sha256.Sum256([]byte(password)),
	}
}

// Match compares in constant time. Both fields are always compared.
func (c *Credentials) Match(user, password string) bool {
	u := sha256.Sum256([]byte(user))
	p := sha256.Sum256([]byte(password))
	userOK := subtle.ConstantTimeCompare(u[:], c.user[:])
	passwordOK := subtle.ConstantTimeCompare(p[:], c.password[:])
	return userOK&passwordOK == 1
}
