package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrTokenInvalid is returned for any token that fails signature, issuer,
// audience, expiry, or kind checks. Callers must treat it as an
// authentication failure without further distinction.
var ErrTokenInvalid = errors.New("invalid token")

const minSecretBytes = 32

// Config carries the signing secret and claim parameters, loaded once at
// startup and immutable thereafter.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Secret     []byte
	Issuer     string
	Audience   string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	Leeway     time.Duration
}

// Identity is the claim payload embedded in an access token, derived from a
// user record at issuance time and never persisted independently.
type Identity struct {
	UserID string
	Email  string
	Role   string
}

// AccessClaims is the wire form of an access token payload. The subject
// registered claim carries the user id.
type AccessClaims struct {
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// RefreshClaims is the wire form of a refresh token payload. TokenID is the
// rotation-tracking id validated against the session store.
type RefreshClaims struct {
	TokenID string `json:"rtid"`
	jwt.RegisteredClaims
}

// Pair is the issued access/refresh token pair. RefreshTokenID is the
// rotation id embedded in the refresh token; the caller records it in the
// session store.
type Pair struct {
	AccessToken    string
	RefreshToken   string
	RefreshTokenID string
}

// Issuer mints and verifies both token kinds.
//
// Issuer instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Issuer struct {
	config Config
}

// NewIssuer validates cfg and returns an [Issuer].
func NewIssuer(cfg Config) (*Issuer, error) {
	if len(cfg.Secret) < minSecretBytes {
		return nil, errors.New("signing secret must be at least 32 bytes")
	}
	if cfg.Issuer == "" || cfg.Audience == "" {
		return nil, errors.New("issuer and audience are required")
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("invalid TTL configuration")
	}
	if cfg.AccessTTL >= cfg.RefreshTTL {
		return nil, errors.New("access TTL must be shorter than refresh TTL")
	}
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("invalid leeway configuration")
	}

	return &Issuer{config: cfg}, nil
}

// NewRefreshTokenID mints a fresh rotation-tracking id. Every issued pair
// carries a distinct id; ids are never reused.
func NewRefreshTokenID() string {
	return uuid.NewString()
}

// IssuePair mints a signed access/refresh pair for id with a freshly
// generated refresh-token id. It performs no store writes — recording the
// new id is the caller's responsibility.
func (i *Issuer) IssuePair(id Identity) (Pair, error) {
	return i.IssuePairWithID(id, NewRefreshTokenID())
}

// IssuePairWithID mints a pair whose refresh token carries refreshTokenID.
// Rotation flows reserve the id in the session store first, then mint.
func (i *Issuer) IssuePairWithID(id Identity, refreshTokenID string) (Pair, error) {
	if id.UserID == "" {
		return Pair{}, errors.New("identity requires a user id")
	}
	if refreshTokenID == "" {
		return Pair{}, errors.New("refresh token id required")
	}

	now := time.Now()

	access, err := i.sign(AccessClaims{
		Email:            id.Email,
		Role:             id.Role,
		RegisteredClaims: i.registered(id.UserID, now, i.config.AccessTTL),
	})
	if err != nil {
		return Pair{}, err
	}

	refresh, err := i.sign(RefreshClaims{
		TokenID:          refreshTokenID,
		RegisteredClaims: i.registered(id.UserID, now, i.config.RefreshTTL),
	})
	if err != nil {
		return Pair{}, err
	}

	return Pair{
		AccessToken:    access,
		RefreshToken:   refresh,
		RefreshTokenID: refreshTokenID,
	}, nil
}

// ParseAccess verifies an access token and returns its claims, or
// [ErrTokenInvalid] on any verification failure.
func (i *Issuer) ParseAccess(tokenStr string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := i.parse(tokenStr, claims); err != nil {
		return nil, err
	}
	// Refresh tokens carry no identity claims; they must not pass as access tokens.
	if claims.Email == "" {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// ParseRefresh verifies a refresh token and returns its claims, or
// [ErrTokenInvalid] on any verification failure.
func (i *Issuer) ParseRefresh(tokenStr string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := i.parse(tokenStr, claims); err != nil {
		return nil, err
	}
	// Access tokens carry no rotation id; they must not pass as refresh tokens.
	if claims.TokenID == "" {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

func (i *Issuer) registered(subject string, now time.Time, ttl time.Duration) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    i.config.Issuer,
		Audience:  jwt.ClaimStrings{i.config.Audience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
}

func (i *Issuer) sign(claims jwt.Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.config.Secret)
}

func (i *Issuer) parse(tokenStr string, claims jwt.Claims) error {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(i.config.Issuer),
		jwt.WithAudience(i.config.Audience),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
	}
	if i.config.Leeway > 0 {
		options = append(options, jwt.WithLeeway(i.config.Leeway))
	}

	parser := jwt.NewParser(options...)
	parsed, err := parser.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return i.config.Secret, nil
	})
	if err != nil || !parsed.Valid {
		return ErrTokenInvalid
	}

	return nil
}
