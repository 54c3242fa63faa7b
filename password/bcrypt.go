package password

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// Bcrypt is a [Hasher] backed by golang.org/x/crypto/bcrypt. It is the
// engine's default hashing capability.
//
// Bcrypt instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Bcrypt struct {
	cost int
}

// NewBcrypt creates a [Bcrypt] hasher with the given cost. A cost of 0
// selects bcrypt.DefaultCost.
func NewBcrypt(cost int) (*Bcrypt, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, errors.New("bcrypt cost out of range")
	}
	return &Bcrypt{cost: cost}, nil
}

// Hash returns the bcrypt hash of plaintext in the standard $2a$ encoding.
func (b *Bcrypt) Hash(plaintext string) (string, error) {
	if len(plaintext) < minPassBytes {
		return "", ErrPasswordTooShort
	}
	// bcrypt truncates at 72 bytes; reject instead of silently weakening.
	if len(plaintext) > 72 {
		return "", errors.New("password exceeds bcrypt 72-byte limit")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), b.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Compare reports whether plaintext matches the encoded bcrypt hash.
// A well-formed hash that does not match yields (false, nil); a malformed
// hash yields an error.
func (b *Bcrypt) Compare(plaintext, encoded string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(encoded), []byte(plaintext))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, err
}
