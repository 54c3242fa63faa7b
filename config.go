package authgate

import (
	"errors"
	"time"
)

// Config defines the engine configuration supplied to [Builder.WithConfig].
//
// Config instances are intended to be configured during initialization and then
// treated as immutable unless documented otherwise: [Builder.Build] clones the
// config, so later mutation by the caller has no effect on a built Engine.
type Config struct {
	Token    TokenConfig
	Session  SessionConfig
	Password PasswordConfig
	Audit    AuditConfig
	Metrics  MetricsConfig
}

/*
====================================
TOKEN CONFIG
====================================
*/

// TokenConfig carries the JWT signing material and claim parameters.
// Secret is the HS256 shared key and must be at least 32 bytes.
type TokenConfig struct {
	Secret     []byte
	Issuer     string
	Audience   string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	Leeway     time.Duration
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig controls the Redis session store. KeyPrefix is prepended to
// the user id to form the session key. OpTimeout bounds each store
// round-trip; zero disables the per-operation deadline.
type SessionConfig struct {
	KeyPrefix string
	OpTimeout time.Duration
}

/*
====================================
PASSWORD CONFIG
====================================
*/

// PasswordConfig selects the credential hashing algorithm used when no
// explicit [password.Hasher] is supplied through [Builder.WithHasher].
type PasswordConfig struct {
	Algorithm  string // "bcrypt" (default) or "argon2id"
	BcryptCost int    // 0 selects the bcrypt default cost

	Memory      uint32 // argon2id only, in KB
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// AuditConfig controls the asynchronous audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig controls the in-process metrics system.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

/*
====================================
DEFAULT CONFIG
====================================
*/

// DefaultConfig returns the baseline configuration. Token.Secret, Issuer,
// and Audience have no usable defaults and must be set by the caller.
func DefaultConfig() Config {
	return Config{
		Token: TokenConfig{
			AccessTTL:  1 * time.Hour,
			RefreshTTL: 24 * time.Hour,
			Leeway:     0,
		},
		Session: SessionConfig{
			KeyPrefix: "user-",
			OpTimeout: 2 * time.Second,
		},
		Password: PasswordConfig{
			Algorithm:   "bcrypt",
			BcryptCost:  0,
			Memory:      64 * 1024,
			Time:        3,
			Parallelism: 2,
			SaltLength:  16,
			KeyLength:   32,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Token.Secret = cloneBytes(cfg.Token.Secret)
	return out
}

func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

/*
====================================
VALIDATION
====================================
*/

// Validate checks cross-field consistency. Detailed bounds on the token
// secret and hashing parameters are re-checked by the token and password
// packages at construction.
func (c *Config) Validate() error {
	// Token
	if len(c.Token.Secret) == 0 {
		return errors.New("Token Secret is required")
	}
	if c.Token.Issuer == "" {
		return errors.New("Token Issuer is required")
	}
	if c.Token.Audience == "" {
		return errors.New("Token Audience is required")
	}
	if c.Token.AccessTTL <= 0 {
		return errors.New("Token AccessTTL must be > 0")
	}
	if c.Token.RefreshTTL <= c.Token.AccessTTL {
		return errors.New("Token RefreshTTL must be greater than AccessTTL")
	}
	if c.Token.Leeway < 0 {
		return errors.New("Token Leeway must be >= 0")
	}

	// Session
	if c.Session.KeyPrefix == "" {
		return errors.New("Session KeyPrefix is required")
	}
	if c.Session.OpTimeout < 0 {
		return errors.New("Session OpTimeout must be >= 0")
	}

	// Password
	switch c.Password.Algorithm {
	case "bcrypt", "argon2id":
	default:
		return errors.New("Password Algorithm must be 'bcrypt' or 'argon2id'")
	}

	// Audit
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when audit is enabled")
	}

	return nil
}
