package password

import "errors"

// ErrPasswordTooShort is returned by Hash when the plaintext is below the
// minimum byte length.
var ErrPasswordTooShort = errors.New("password too short")

const minPassBytes = 8

// Hasher is the hashing capability consumed by the engine. Hash returns an
// encoded, self-describing hash string; Compare reports whether plaintext
// matches it. Compare must run in constant time with respect to the hash.
//
// Hasher instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Hasher interface {
	Hash(plaintext string) (string, error)
	Compare(plaintext, encoded string) (bool, error)
}
