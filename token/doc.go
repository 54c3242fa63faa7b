// Package token manages issuance and verification of the two signed token
// kinds used by the engine: short-lived access tokens carrying identity
// claims, and longer-lived refresh tokens carrying a rotation-tracking id.
//
// Both kinds are HMAC-SHA256 JWTs signed with a shared secret and validated
// with pinned signing methods, issuer, and audience. The [Issuer] is
// stateless: it never touches the session store, so a single instance is
// safe for unbounded concurrent use.
//
// # Architecture boundaries
//
// This package owns token construction and parsing. It does NOT decide
// whether a refresh-token id is still the active one — that is the session
// store's contract — and it does NOT read user records.
//
// # What this package must NOT do
//
//   - Import authgate or any sibling package (no upward imports).
//   - Perform network or store I/O.
//   - Accept a refresh token where an access token is required, or vice versa.
package token
