// Package middleware provides net/http request guards backed by the engine's
// access-token verification.
//
// Each route carries a [Policy]. The zero value is [PolicyBearer], so a route
// that forgets to declare a policy fails closed: an unauthenticated request is
// rejected rather than let through.
package middleware
