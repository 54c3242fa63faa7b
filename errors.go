package authgate

import (
	"errors"

	"github.com/dkotelnik/authgate/session"
)

var (
	// ErrUnauthorized is returned when an access token fails verification.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidCredentials is returned on sign-in when the account does not
	// exist or the password does not match. The two cases are deliberately
	// indistinguishable to the caller.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrEmailTaken is returned on sign-up when the email is already registered.
	ErrEmailTaken = errors.New("user already exists")
	// ErrEmailRequired is returned on sign-up with an empty email.
	ErrEmailRequired = errors.New("email required")
	// ErrUserNotFound is returned by [UserRepository] implementations when no
	// record matches the lookup.
	ErrUserNotFound = errors.New("user not found")
	// ErrRefreshInvalid is returned when a refresh token fails verification.
	ErrRefreshInvalid = errors.New("invalid refresh token")
	// ErrRefreshReuse is returned when a refresh token that was already
	// rotated (or never issued for the current session) is presented again.
	// The user's session is revoked as containment.
	ErrRefreshReuse = errors.New("refresh token reuse detected")
	// ErrEngineNotReady is returned when an Engine method is called before
	// [Builder.Build] completed.
	ErrEngineNotReady = errors.New("engine not initialized")
)

// ErrStoreUnavailable marks session-store transport failures. It is re-exported
// from the session package so callers can branch without importing it.
var ErrStoreUnavailable = session.ErrStoreUnavailable
