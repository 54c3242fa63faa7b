package authgate

import (
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/dkotelnik/authgate/password"
	"github.com/dkotelnik/authgate/session"
	"github.com/dkotelnik/authgate/token"
)

// Builder assembles an [Engine]. Construction is allocation-only until
// [Builder.Build]; no I/O is performed against Redis or the user repository.
//
// A Builder is single-use: Build returns an error on the second call.
type Builder struct {
	config Config
	redis  redis.UniversalClient

	users  UserRepository
	hasher password.Hasher

	auditSink AuditSink

	built bool
}

// New returns a Builder seeded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig replaces the builder's configuration. The config is cloned, so
// the caller's copy may be reused or mutated afterwards.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis sets the Redis client backing the session store. The caller owns
// the client: open it before Build, close it after [Engine.Close].
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithUsers sets the user repository collaborator.
func (b *Builder) WithUsers(users UserRepository) *Builder {
	b.users = users
	return b
}

// WithHasher overrides the credential hasher selected by
// [PasswordConfig.Algorithm].
func (b *Builder) WithHasher(h password.Hasher) *Builder {
	b.hasher = h
	return b
}

// WithAuditSink sets the sink receiving audit events. Ignored unless
// [AuditConfig.Enabled] is true.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithMetricsEnabled toggles the in-process metrics counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles the authorize-latency histogram.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration, wires the sub-components, and returns
// the ready Engine.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if b.redis == nil {
		return nil, errors.New("redis client required")
	}
	if b.users == nil {
		return nil, errors.New("user repository required")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	issuer, err := token.NewIssuer(token.Config{
		Secret:     cloneBytes(cfg.Token.Secret),
		Issuer:     cfg.Token.Issuer,
		Audience:   cfg.Token.Audience,
		AccessTTL:  cfg.Token.AccessTTL,
		RefreshTTL: cfg.Token.RefreshTTL,
		Leeway:     cfg.Token.Leeway,
	})
	if err != nil {
		return nil, err
	}

	hasher := b.hasher
	if hasher == nil {
		hasher, err = newHasherFromConfig(cfg.Password)
		if err != nil {
			return nil, err
		}
	}

	engine := &Engine{
		config:   cfg,
		issuer:   issuer,
		sessions: session.NewStore(b.redis, cfg.Session.KeyPrefix, cfg.Session.OpTimeout),
		users:    b.users,
		hasher:   hasher,
		audit:    newAuditDispatcher(cfg.Audit, b.auditSink),
		metrics:  NewMetrics(cfg.Metrics),
	}

	b.built = true

	return engine, nil
}

func newHasherFromConfig(cfg PasswordConfig) (password.Hasher, error) {
	switch cfg.Algorithm {
	case "bcrypt":
		return password.NewBcrypt(cfg.BcryptCost)
	case "argon2id":
		return password.NewArgon2(password.Argon2Config{
			Memory:      cfg.Memory,
			Time:        cfg.Time,
			Parallelism: cfg.Parallelism,
			SaltLength:  cfg.SaltLength,
			KeyLength:   cfg.KeyLength,
		})
	default:
		return nil, errors.New("unsupported password algorithm")
	}
}
