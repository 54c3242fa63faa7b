package authgate

import (
	"context"
	"errors"
	"time"

	"github.com/dkotelnik/authgate/password"
	"github.com/dkotelnik/authgate/session"
	"github.com/dkotelnik/authgate/token"
)

const (
	auditEventSignUpSuccess        = "sign_up_success"
	auditEventSignUpConflict       = "sign_up_conflict"
	auditEventSignUpFailure        = "sign_up_failure"
	auditEventSignInSuccess        = "sign_in_success"
	auditEventSignInFailure        = "sign_in_failure"
	auditEventRefreshSuccess       = "refresh_success"
	auditEventRefreshInvalid       = "refresh_invalid"
	auditEventRefreshReuseDetected = "refresh_reuse_detected"
	auditEventSignOut              = "sign_out"
)

// AuditErrorCode is the normalized error label carried in [AuditEvent.Error].
type AuditErrorCode string

const (
	auditErrUnauthorized       AuditErrorCode = "unauthorized"
	auditErrInvalidCredentials AuditErrorCode = "invalid_credentials"
	auditErrDuplicate          AuditErrorCode = "duplicate"
	auditErrUserNotFound       AuditErrorCode = "user_not_found"
	auditErrInvalidToken       AuditErrorCode = "invalid_token"
	auditErrRefreshReuse       AuditErrorCode = "refresh_reuse"
	auditErrPasswordPolicy     AuditErrorCode = "password_policy"
	auditErrInvalidRequest     AuditErrorCode = "invalid_request"
	auditErrUnavailable        AuditErrorCode = "store_unavailable"
	auditErrInternal           AuditErrorCode = "internal_error"
)

func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	userID string,
	email string,
	err error,
	metadataBuilder func() map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	event := AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		UserID:    userID,
		Email:     email,
		IP:        clientIPFromContext(ctx),
		Success:   success,
		Metadata:  metadata,
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	e.audit.Emit(ctx, event)
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return auditErrInvalidCredentials
	case errors.Is(err, ErrUnauthorized):
		return auditErrUnauthorized
	case errors.Is(err, ErrEmailTaken):
		return auditErrDuplicate
	case errors.Is(err, ErrUserNotFound):
		return auditErrUserNotFound
	case errors.Is(err, ErrRefreshReuse),
		errors.Is(err, session.ErrTokenIDMismatch):
		return auditErrRefreshReuse
	case errors.Is(err, ErrRefreshInvalid),
		errors.Is(err, token.ErrTokenInvalid):
		return auditErrInvalidToken
	case errors.Is(err, password.ErrPasswordTooShort):
		return auditErrPasswordPolicy
	case errors.Is(err, ErrEmailRequired):
		return auditErrInvalidRequest
	case errors.Is(err, session.ErrStoreUnavailable):
		return auditErrUnavailable
	default:
		return auditErrInternal
	}
}
