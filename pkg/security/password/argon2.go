// Package password hashes user secrets with Argon2id in PHC string format.
package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// MaxPasswordBytes bounds the work an attacker can force per request.
const MaxPasswordBytes = 1024

var (
	ErrEmptyPassword   = errors.New("password: empty input")
	ErrPasswordTooLong = errors.New("password: input too long")
)

// Params are Argon2id cost parameters.
type Params struct {
	Memory      uint32 // KiB
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultParams match the argon2 defaults used by passlib.
var DefaultParams = Params{
	Memory:      64 * 1024,
	Iterations:  3,
	Parallelism: 4,
	SaltLength:  16,
	KeyLength:   32,
}

// upper bounds accepted when reading parameters back out of a stored hash
const (
	maxMemory      = 256 * 1024
	maxIterations  = 16
	maxParallelism = 16
	minSaltLen     = 8
	minKeyLen      = 16
	maxKeyLen      = 64
)

var b64 = base64.RawStdEncoding

// Argon2idHasher implements auth.PasswordHasher.
type Argon2idHasher struct {
	params Params
}

func NewArgon2idHasher(p Params) *Argon2idHasher {
	return &Argon2idHasher{params: p}
}

// Hash returns $argon2id$v=19$m=...,t=...,p=...$salt$key with a fresh salt.
func (h *Argon2idHasher) Hash(plaintext []byte) (string, error) {
	if err := checkLength(plaintext); err != nil {
		return "", err
	}
	salt := make([]byte, h.params.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("password: read salt: %w", err)
	}
	key := argon2.IDKey(plaintext, salt, h.params.Iterations, h.params.Memory, h.params.Parallelism, h.params.KeyLength)
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, h.params.Memory, h.params.Iterations, h.params.Parallelism,
		b64.EncodeToString(salt), b64.EncodeToString(key)), nil
}

// Verify recomputes the key with the parameters stored in encoded.
// Any malformed or out-of-range hash yields false.
func (h *Argon2idHasher) Verify(plaintext []byte, encoded string) bool {
	if checkLength(plaintext) != nil {
		return false
	}
	p, salt, key, ok := decode(encoded)
	if !ok {
		return false
	}
	other := argon2.IDKey(plaintext, salt, p.Iterations, p.Memory, p.Parallelism, uint32(len(key)))
	return subtle.ConstantTimeCompare(other, key) == 1
}

func checkLength(plaintext []byte) error {
	switch {
	case len(plaintext) == 0:
		return ErrEmptyPassword
	case len(plaintext) > MaxPasswordBytes:
		return ErrPasswordTooLong
	}
	return nil
}

func decode(encoded string) (Params, []byte, []byte, bool) {
	var p Params
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return p, nil, nil, false
	}
	var version int
	if n, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || n != 1 || version != argon2.Version {
		return p, nil, nil, false
	}
	if n, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.Memory, &p.Iterations, &p.Parallelism); err != nil || n != 3 {
		return p, nil, nil, false
	}
	if p.Iterations < 1 || p.Iterations > maxIterations ||
		p.Parallelism < 1 || p.Parallelism > maxParallelism ||
		p.Memory < 8*uint32(p.Parallelism) || p.Memory > maxMemory {
		return p, nil, nil, false
	}
	salt, err := b64.DecodeString(parts[4])
	if err != nil || len(salt) < minSaltLen {
		return p, nil, nil, false
	}
	key, err := b64.DecodeString(parts[5])
	if err != nil || len(key) < minKeyLen || len(key) > maxKeyLen {
		return p, nil, nil, false
	}
	return p, salt, key, true
}
