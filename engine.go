package authgate

import (
	"context"
	"errors"
	"time"

	"github.com/dkotelnik/authgate/password"
	"github.com/dkotelnik/authgate/session"
	"github.com/dkotelnik/authgate/token"
)

// Engine is the authentication facade. It verifies credentials, mints and
// rotates token pairs, and enforces the single-active-session rule through
// the Redis session store.
//
// Engine instances are intended to be configured during initialization and
// then treated as immutable unless documented otherwise.
type Engine struct {
	config   Config
	issuer   *token.Issuer
	sessions *session.Store
	users    UserRepository
	hasher   password.Hasher
	audit    *auditDispatcher
	metrics  *Metrics
}

// Close flushes and stops the audit dispatcher. It does not close the Redis
// client; the caller owns that connection.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped reports how many audit events were dropped because the
// dispatcher buffer was full.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot returns a point-in-time copy of all counters and histograms.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

func (e *Engine) ready() error {
	if e == nil || e.issuer == nil || e.sessions == nil || e.users == nil || e.hasher == nil {
		return ErrEngineNotReady
	}
	return nil
}

// SignUp registers a new account. The password is hashed before it reaches
// the repository; the returned User carries no hash. A duplicate email fails
// with [ErrEmailTaken] and writes nothing.
func (e *Engine) SignUp(ctx context.Context, req SignUpRequest) (User, error) {
	if err := e.ready(); err != nil {
		return User{}, err
	}

	if req.Email == "" {
		e.metricInc(MetricSignUpFailure)
		e.emitAudit(ctx, auditEventSignUpFailure, false, "", "", ErrEmailRequired, func() map[string]string {
			return map[string]string{"reason": "empty_email"}
		})
		return User{}, ErrEmailRequired
	}

	hash, err := e.hasher.Hash(req.Password)
	if err != nil {
		e.metricInc(MetricSignUpFailure)
		e.emitAudit(ctx, auditEventSignUpFailure, false, "", req.Email, err, nil)
		return User{}, err
	}

	role := RoleUser

	// The repository enforces email uniqueness; a pre-check here would race
	// with concurrent sign-ups.
	user, err := e.users.Create(ctx, CreateUserInput{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         role,
	})
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			e.metricInc(MetricSignUpConflict)
			e.emitAudit(ctx, auditEventSignUpConflict, false, "", req.Email, ErrEmailTaken, nil)
			return User{}, ErrEmailTaken
		}
		e.metricInc(MetricSignUpFailure)
		e.emitAudit(ctx, auditEventSignUpFailure, false, "", req.Email, err, nil)
		return User{}, err
	}

	e.metricInc(MetricSignUpSuccess)
	e.emitAudit(ctx, auditEventSignUpSuccess, true, user.ID, user.Email, nil, nil)

	user.PasswordHash = ""
	return user, nil
}

// SignIn verifies the credentials, mints a token pair, and records the new
// refresh-token id as the user's single active session. An unknown email and
// a wrong password both fail with [ErrInvalidCredentials]; nothing is written
// to the session store on failure.
func (e *Engine) SignIn(ctx context.Context, email, pass string) (TokenPair, error) {
	if err := e.ready(); err != nil {
		return TokenPair{}, err
	}

	user, err := e.users.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, ErrUserNotFound) {
			e.metricInc(MetricSignInFailure)
			e.emitAudit(ctx, auditEventSignInFailure, false, "", email, err, nil)
			return TokenPair{}, err
		}
		e.metricInc(MetricSignInFailure)
		e.emitAudit(ctx, auditEventSignInFailure, false, "", email, ErrInvalidCredentials, func() map[string]string {
			return map[string]string{"reason": "user_not_found"}
		})
		return TokenPair{}, ErrInvalidCredentials
	}

	ok, err := e.hasher.Compare(pass, user.PasswordHash)
	if err != nil || !ok {
		e.metricInc(MetricSignInFailure)
		e.emitAudit(ctx, auditEventSignInFailure, false, user.ID, email, ErrInvalidCredentials, func() map[string]string {
			return map[string]string{"reason": "password_mismatch"}
		})
		return TokenPair{}, ErrInvalidCredentials
	}

	rtid := token.NewRefreshTokenID()
	pair, err := e.issuer.IssuePairWithID(identityOf(user), rtid)
	if err != nil {
		e.metricInc(MetricSignInFailure)
		e.emitAudit(ctx, auditEventSignInFailure, false, user.ID, email, err, nil)
		return TokenPair{}, err
	}

	// Unconditional insert: any prior session for this user is superseded.
	if err := e.sessions.Insert(ctx, user.ID, rtid, e.config.Token.RefreshTTL); err != nil {
		e.metricInc(MetricSignInFailure)
		e.emitAudit(ctx, auditEventSignInFailure, false, user.ID, email, err, nil)
		return TokenPair{}, err
	}

	e.metricInc(MetricSignInSuccess)
	e.metricInc(MetricSessionCreated)
	e.emitAudit(ctx, auditEventSignInSuccess, true, user.ID, email, nil, nil)

	return TokenPair{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, nil
}

// Refresh exchanges a valid refresh token for a fresh pair. Rotation is
// atomic: presented concurrently, the same token redeems at most once.
// Presenting an already-rotated token fails with [ErrRefreshReuse] and
// revokes the user's session.
func (e *Engine) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	if err := e.ready(); err != nil {
		return TokenPair{}, err
	}

	claims, err := e.issuer.ParseRefresh(refreshToken)
	if err != nil {
		e.metricInc(MetricRefreshFailure)
		e.emitAudit(ctx, auditEventRefreshInvalid, false, "", "", ErrRefreshInvalid, nil)
		return TokenPair{}, ErrRefreshInvalid
	}
	userID := claims.Subject

	nextID := token.NewRefreshTokenID()
	if err := e.sessions.Rotate(ctx, userID, claims.TokenID, nextID, e.config.Token.RefreshTTL); err != nil {
		if errors.Is(err, session.ErrTokenIDMismatch) {
			// The store revoked the session on a stale id; every outstanding
			// token for this user is now dead.
			e.metricInc(MetricRefreshReuseDetected)
			e.metricInc(MetricSessionInvalidated)
			e.emitAudit(ctx, auditEventRefreshReuseDetected, false, userID, "", ErrRefreshReuse, nil)
			return TokenPair{}, ErrRefreshReuse
		}
		e.metricInc(MetricRefreshFailure)
		e.emitAudit(ctx, auditEventRefreshInvalid, false, userID, "", err, nil)
		return TokenPair{}, err
	}

	user, err := e.users.FindByID(ctx, userID)
	if err != nil {
		e.metricInc(MetricRefreshFailure)
		e.emitAudit(ctx, auditEventRefreshInvalid, false, userID, "", err, func() map[string]string {
			return map[string]string{"reason": "user_lookup_failed"}
		})
		if errors.Is(err, ErrUserNotFound) {
			return TokenPair{}, ErrRefreshInvalid
		}
		return TokenPair{}, err
	}

	pair, err := e.issuer.IssuePairWithID(identityOf(user), nextID)
	if err != nil {
		e.metricInc(MetricRefreshFailure)
		e.emitAudit(ctx, auditEventRefreshInvalid, false, userID, user.Email, err, nil)
		return TokenPair{}, err
	}

	e.metricInc(MetricRefreshSuccess)
	e.emitAudit(ctx, auditEventRefreshSuccess, true, userID, user.Email, nil, nil)

	return TokenPair{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, nil
}

// SignOut revokes the caller's active session. The access token must still
// verify; afterwards no refresh token for the user is redeemable.
func (e *Engine) SignOut(ctx context.Context, accessToken string) error {
	if err := e.ready(); err != nil {
		return err
	}

	claims, err := e.issuer.ParseAccess(accessToken)
	if err != nil {
		e.emitAudit(ctx, auditEventSignOut, false, "", "", ErrUnauthorized, nil)
		return ErrUnauthorized
	}

	if err := e.sessions.Invalidate(ctx, claims.Subject); err != nil {
		e.emitAudit(ctx, auditEventSignOut, false, claims.Subject, claims.Email, err, nil)
		return err
	}

	e.metricInc(MetricSignOut)
	e.metricInc(MetricSessionInvalidated)
	e.emitAudit(ctx, auditEventSignOut, true, claims.Subject, claims.Email, nil, nil)

	return nil
}

// Authorize verifies an access token and returns its claims. This is the hot
// path: verification is local and never touches the session store.
func (e *Engine) Authorize(ctx context.Context, accessToken string) (*token.AccessClaims, error) {
	if e == nil || e.issuer == nil {
		return nil, ErrEngineNotReady
	}

	start := time.Time{}
	if e.metrics.LatencyEnabled() {
		start = time.Now()
	}

	claims, err := e.issuer.ParseAccess(accessToken)

	if !start.IsZero() {
		e.metrics.Observe(MetricAuthorizeLatency, time.Since(start))
	}

	if err != nil {
		return nil, ErrUnauthorized
	}
	return claims, nil
}

// StorePing checks session-store reachability and reports the round-trip
// time. Intended for startup and liveness probes.
func (e *Engine) StorePing(ctx context.Context) (time.Duration, error) {
	if e == nil || e.sessions == nil {
		return 0, ErrEngineNotReady
	}
	return e.sessions.Ping(ctx)
}

func identityOf(u User) token.Identity {
	return token.Identity{
		UserID: u.ID,
		Email:  u.Email,
		Role:   string(u.Role),
	}
}
