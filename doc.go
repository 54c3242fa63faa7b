// Package authgate provides an embeddable authentication engine with JWT access
// tokens, rotating refresh tokens, and a Redis-backed single-active-session store.
//
// The package is designed for concurrent server workloads: Engine methods are safe
// to call from multiple goroutines after initialization through [Builder.Build].
//
// # Architecture boundaries
//
// authgate is the public surface. It exposes [Engine], [Builder], [Config], and
// value types (TokenPair, User, MetricsSnapshot, etc.). Token signing lives in
// the token package, session state in the session package, credential hashing in
// the password package, and HTTP request guarding in the middleware package.
// Audit dispatch and metrics accounting live under internal/ and are never
// exported directly.
//
// # What this package must NOT do
//
//   - Persist user records. The [UserRepository] collaborator owns durable user
//     storage; the engine only reads and creates through it.
//   - Own the Redis connection lifecycle. The caller opens the client before
//     Build and closes it after [Engine.Close].
//   - Import any sub-package that re-imports authgate (no import cycles).
//
// # Performance contract
//
// Authorize is the hot path. It verifies the access token locally and must not
// touch Redis. SignIn, Refresh, and SignOut are allowed one Redis round-trip
// per call.
package authgate
