package auth

import "time"

// TokenCodec abstracts token creation and verification (e.g., JWT).
// It allows use cases to stay framework-agnostic.
type TokenCodec interface {
	Issue(subject string, userID int64, now time.Time) (AccessToken, error)
	Verify(token string, now time.Time) (Claims, error)
}

// PasswordHasher hashes and checks secrets.
type PasswordHasher interface {
	Hash(plaintext []byte) (string, error)
	Verify(plaintext []byte, encoded string) bool
}
