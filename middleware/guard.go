package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/dkotelnik/authgate/token"
)

// Policy selects how a guarded route treats the Authorization header.
type Policy int

const (
	// PolicyBearer requires a verifiable bearer access token. It is the zero
	// value on purpose: unset means authenticated.
	PolicyBearer Policy = iota
	// PolicyNoAuth passes the request through untouched.
	PolicyNoAuth
)

// AccessVerifier verifies an access token and returns its claims.
// *authgate.Engine satisfies it.
type AccessVerifier interface {
	Authorize(ctx context.Context, accessToken string) (*token.AccessClaims, error)
}

type claimsContextKey struct{}

// ClaimsFromContext returns the access claims attached by [Guard], if any.
func ClaimsFromContext(ctx context.Context) (*token.AccessClaims, bool) {
	claims, ok := ctx.Value(claimsContextKey{}).(*token.AccessClaims)
	return claims, ok
}

// Guard wraps next according to policy. Under [PolicyBearer] the request must
// carry "Authorization: Bearer <token>"; a missing header or a failed
// verification is answered with 401 and next is never invoked. On success the
// claims are attached to the request context for [ClaimsFromContext].
func Guard(verifier AccessVerifier, policy Policy, next http.Handler) http.Handler {
	if policy == PolicyNoAuth {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := bearerToken(r)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		claims, err := verifier.Authorize(r.Context(), raw)
		if err != nil {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), claimsContextKey{}, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireBearer is shorthand for [Guard] with [PolicyBearer].
func RequireBearer(verifier AccessVerifier, next http.Handler) http.Handler {
	return Guard(verifier, PolicyBearer, next)
}

// AllowAnonymous is shorthand for [Guard] with [PolicyNoAuth].
func AllowAnonymous(next http.Handler) http.Handler {
	return Guard(nil, PolicyNoAuth, next)
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}

	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}
