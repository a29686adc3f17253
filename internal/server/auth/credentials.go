package auth

import (
	"fmt"
	"strings"

	"github.com/duogallery/duogallery/internal/common"
	"golang.org/x/crypto/bcrypt"
)

// Credentials holds the gallery's configured users: username to bcrypt
// password hash. The deployment has exactly two, but nothing here depends
// on the count.
type Credentials map[string]string

// ParseCredentials reads the "user:bcryptHash,user:bcryptHash" form used in
// configuration.
func ParseCredentials(s string) (Credentials, error) {
	creds := Credentials{}
	if strings.TrimSpace(s) == "" {
		return creds, nil
	}
	for _, pair := range strings.Split(s, ",") {
		name, hash, ok := strings.Cut(strings.TrimSpace(pair), ":")
		if !ok || name == "" || hash == "" {
			return nil, fmt.Errorf("invalid credentials entry %q", pair)
		}
		creds[name] = hash
	}
	return creds, nil
}

// Check verifies username/password against the configured hashes. Unknown
// users and wrong passwords are indistinguishable to the caller.
func (c Credentials) Check(username, password string) error {
	hash, ok := c[username]
	if !ok {
		// burn comparable time so user enumeration is no cheaper
		_ = bcrypt.CompareHashAndPassword([]byte("$2a$10$0000000000000000000000000000000000000000000000000000"), []byte(password))
		return common.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return common.ErrUnauthorized
	}
	return nil
}
