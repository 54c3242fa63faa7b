// Package session tracks the single currently-valid refresh-token id per
// user in Redis.
//
// The store holds one key per user (default layout "user-<id>") whose value
// is the rotation id embedded in the user's most recent refresh token.
// Inserting unconditionally overwrites, which is what limits each user to
// one active session: a sign-in elsewhere, or any successful rotation,
// invalidates every other outstanding refresh token for that user.
//
// # Rotation
//
// [Store.Rotate] is a Lua compare-and-swap executed server-side: it reads
// the stored id, compares against the id presented by the caller, and only
// on an exact match swaps in the next id. Two concurrent rotations with the
// same refresh token therefore race inside Redis, and exactly one wins.
//
// # Architecture boundaries
//
// This package owns Redis key layout and store operations. It does NOT
// parse tokens or make authentication decisions — a mismatch is reported as
// [ErrTokenIDMismatch] and the Engine decides what that means.
//
// # What this package must NOT do
//
//   - Import authgate, token, or password (no upward imports).
//   - Return success on a transport failure; Redis errors wrap
//     [ErrStoreUnavailable].
//   - Treat a missing key as anything other than a mismatch.
package session
