package authgate

import (
	"context"
	"io"

	internalaudit "github.com/dkotelnik/authgate/internal/audit"
	internalmetrics "github.com/dkotelnik/authgate/internal/metrics"
)

// Role is the authorization role carried in access-token claims.
type Role string

const (
	// RoleUser is the default role assigned on sign-up.
	RoleUser Role = "user"
	// RoleAdmin marks administrative accounts.
	RoleAdmin Role = "admin"
)

// User is the account record exchanged with the [UserRepository]
// collaborator. PasswordHash is scrubbed before a User leaves the engine.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
}

// CreateUserInput is the input for [UserRepository.Create]. The engine fills
// PasswordHash; callers never see plaintext past the engine boundary.
type CreateUserInput struct {
	Name         string
	Email        string
	PasswordHash string
	Role         Role
}

// UserRepository is the interface callers must implement to integrate
// authgate with their user database. Implementations must return
// [ErrUserNotFound] when no record matches and [ErrEmailTaken] when a
// create collides with an existing email.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (User, error)
	FindByID(ctx context.Context, id string) (User, error)
	Create(ctx context.Context, input CreateUserInput) (User, error)
}

// SignUpRequest is the input for [Engine.SignUp].
type SignUpRequest struct {
	Name     string
	Email    string
	Password string
}

// TokenPair is returned by [Engine.SignIn] and [Engine.Refresh].
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// AuditEvent is a structured audit record emitted by the engine.
type AuditEvent = internalaudit.Event

// AuditSink receives [AuditEvent] values from the engine's audit dispatcher.
type AuditSink = internalaudit.Sink

// NoOpSink is an [AuditSink] that silently discards all events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink is a buffered channel-based [AuditSink].
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink is an [AuditSink] that writes JSON-encoded events to an
// [io.Writer].
type JSONWriterSink = internalaudit.JSONWriterSink

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] that writes to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}

// MetricID identifies a specific counter or histogram bucket in the
// in-process metrics system.
type MetricID = internalmetrics.MetricID

const (
	MetricSignUpSuccess        = MetricID(internalmetrics.MetricSignUpSuccess)
	MetricSignUpConflict       = MetricID(internalmetrics.MetricSignUpConflict)
	MetricSignUpFailure        = MetricID(internalmetrics.MetricSignUpFailure)
	MetricSignInSuccess        = MetricID(internalmetrics.MetricSignInSuccess)
	MetricSignInFailure        = MetricID(internalmetrics.MetricSignInFailure)
	MetricRefreshSuccess       = MetricID(internalmetrics.MetricRefreshSuccess)
	MetricRefreshFailure       = MetricID(internalmetrics.MetricRefreshFailure)
	MetricRefreshReuseDetected = MetricID(internalmetrics.MetricRefreshReuseDetected)
	MetricSignOut              = MetricID(internalmetrics.MetricSignOut)
	MetricSessionCreated       = MetricID(internalmetrics.MetricSessionCreated)
	MetricSessionInvalidated   = MetricID(internalmetrics.MetricSessionInvalidated)
	MetricAuthorizeLatency     = MetricID(internalmetrics.MetricAuthorizeLatency)
)

// Metrics holds atomic counters and the optional authorize-latency histogram.
type Metrics = internalmetrics.Metrics

// MetricsSnapshot is a point-in-time deep copy of all metrics.
type MetricsSnapshot = internalmetrics.Snapshot

// NewMetrics creates a new [Metrics] instance configured by the given
// [MetricsConfig]. When Enabled is false, all operations are no-ops.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return internalmetrics.New(internalmetrics.Config{
		Enabled:       cfg.Enabled,
		EnableLatency: cfg.EnableLatencyHistograms,
	})
}
