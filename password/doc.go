// Package password provides credential hashing behind the [Hasher] capability
// interface consumed by the engine's sign-up and sign-in flows.
//
// Two implementations are shipped: [Bcrypt] (the default) and [Argon2], an
// argon2id hasher emitting PHC-formatted strings. Both compare in constant
// time. Callers that need a different algorithm implement [Hasher] themselves
// and hand it to the engine builder.
//
// # Architecture boundaries
//
// This package owns hashing and verification only. It does NOT read user
// records, enforce password policy beyond minimum length, or decide when a
// hash is compared — those responsibilities belong to the Engine.
//
// # What this package must NOT do
//
//   - Import authgate or any sibling package (no upward imports).
//   - Persist or log plaintext passwords.
//   - Perform I/O outside of reading crypto/rand for salts.
package password
