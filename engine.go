package ticketauth

import (
	"context"
	"strings"
	"time"

	"github.com/eventra/ticketauth/jwt"
	"github.com/eventra/ticketauth/password"
	"github.com/eventra/ticketauth/permission"
)

// Engine is the authentication core. Construct through [Builder.Build];
// all fields are read-only afterward and every method is safe for
// concurrent use.
type Engine struct {
	config      Config
	issuer      *jwt.Issuer
	hasher      *password.Hasher
	policy      password.Policy
	credentials CredentialStore
	tokens      TokenRepository
	audit       *auditDispatcher
	metrics     *Metrics
	dummyHash   string
}

// Close flushes and stops the audit dispatcher.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	e.audit.Close()
}

// AuditDropped returns the number of audit events discarded because
// the dispatch buffer was full.
func (e *Engine) AuditDropped() uint64 {
	if e == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot copies the engine counters. Zero-valued when metrics
// are disabled.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}}
	}
	return e.metrics.Snapshot()
}

// Policy returns the active password policy for client display.
func (e *Engine) Policy() password.Policy {
	return e.policy
}

// Login validates the credential and mints a token pair. The error is
// ErrInvalidCredentials for both unknown accounts and wrong passwords;
// the unknown-account path still performs a bcrypt comparison against
// a dummy hash so the two cases take comparable time.
func (e *Engine) Login(ctx context.Context, email, plaintext string) (*TokenPair, *Identity, error) {
	if e == nil {
		return nil, nil, ErrEngineNotReady
	}

	cred, err := e.credentials.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return nil, nil, storeErr("find credential", err)
	}

	if cred == nil {
		e.hasher.Verify(plaintext, e.dummyHash)
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLogin, "", false, ErrInvalidCredentials)
		return nil, nil, ErrInvalidCredentials
	}

	if !e.hasher.Verify(plaintext, cred.PasswordHash) {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLogin, cred.ID, false, ErrInvalidCredentials)
		return nil, nil, ErrInvalidCredentials
	}

	if !cred.IsActive {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLogin, cred.ID, false, ErrAccountDisabled)
		return nil, nil, ErrAccountDisabled
	}

	if e.config.Password.RehashOnLogin && e.hasher.NeedsRehash(cred.PasswordHash) {
		// Upgrade failures must not block an otherwise valid login;
		// the old hash keeps working until the next attempt.
		if newHash, hashErr := e.hasher.Hash(plaintext); hashErr == nil {
			if updErr := e.credentials.UpdatePasswordHash(ctx, cred.ID, newHash); updErr == nil {
				e.metricInc(MetricPasswordRehash)
			}
		}
	}

	identity := &Identity{SubjectID: cred.ID, Email: cred.Email, Role: cred.Role}

	pair, err := e.IssuePair(*identity)
	if err != nil {
		return nil, nil, err
	}

	e.metricInc(MetricLoginSuccess)
	e.emitAudit(ctx, auditEventLogin, cred.ID, true, nil)

	return pair, identity, nil
}

// IssuePair mints an access/refresh pair for an already-authenticated
// identity.
func (e *Engine) IssuePair(identity Identity) (*TokenPair, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}

	pair, err := e.issuer.IssuePair(jwt.Payload{
		SubjectID: identity.SubjectID,
		Email:     identity.Email,
		Role:      string(identity.Role),
	})
	if err != nil {
		return nil, err
	}

	e.metricInc(MetricPairIssued)

	return &TokenPair{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
	}, nil
}

// VerifyAccess verifies an access token and returns the identity it
// carries. The role claim is validated against the closed role enum
// right at the trust boundary; an unknown role is an authentication
// failure, not an empty permission set.
func (e *Engine) VerifyAccess(tokenStr string) (*Identity, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}

	claims, err := e.issuer.VerifyAccess(tokenStr)
	if err != nil {
		e.metricInc(MetricAccessRejected)
		return nil, ErrTokenInvalid
	}

	return e.identityFromClaims(claims, MetricAccessRejected)
}

// VerifyRefresh mirrors VerifyAccess for refresh tokens.
func (e *Engine) VerifyRefresh(tokenStr string) (*Identity, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}

	claims, err := e.issuer.VerifyRefresh(tokenStr)
	if err != nil {
		e.metricInc(MetricRefreshRejected)
		return nil, ErrTokenInvalid
	}

	return e.identityFromClaims(claims, MetricRefreshRejected)
}

// Refresh exchanges a valid refresh token for a new pair.
func (e *Engine) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}

	identity, err := e.VerifyRefresh(refreshToken)
	if err != nil {
		e.emitAudit(ctx, auditEventRefresh, "", false, err)
		return nil, err
	}

	pair, err := e.IssuePair(*identity)
	if err != nil {
		return nil, err
	}

	e.metricInc(MetricRefreshSuccess)
	e.emitAudit(ctx, auditEventRefresh, identity.SubjectID, true, nil)

	return pair, nil
}

// IsTokenExpired inspects a token's expiry without verifying its
// signature. Inspection only; never an authorization input.
func (e *Engine) IsTokenExpired(tokenStr string) bool {
	if e == nil {
		return true
	}
	return e.issuer.IsTokenExpired(tokenStr)
}

// Account loads the credential record for an authenticated subject.
// Used by the email verification guard; returns (nil, nil) when the
// account no longer exists.
func (e *Engine) Account(ctx context.Context, subjectID string) (*Credential, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}

	cred, err := e.credentials.FindByID(ctx, subjectID)
	if err != nil {
		return nil, storeErr("find credential", err)
	}
	return cred, nil
}

func (e *Engine) identityFromClaims(claims *jwt.Claims, rejectMetric MetricID) (*Identity, error) {
	role, ok := permission.ParseRole(claims.Role)
	if !ok {
		e.metricInc(rejectMetric)
		return nil, ErrTokenInvalid
	}

	return &Identity{
		SubjectID: claims.Subject,
		Email:     claims.Email,
		Role:      role,
	}, nil
}

func (e *Engine) metricInc(id MetricID) {
	e.metrics.inc(id)
}

func (e *Engine) emitAudit(ctx context.Context, eventType, subjectID string, success bool, cause error) {
	if e.audit == nil {
		return
	}

	event := AuditEvent{
		Timestamp: time.Now(),
		EventType: eventType,
		SubjectID: subjectID,
		Success:   success,
	}
	if cause != nil {
		event.Error = cause.Error()
	}

	e.audit.Emit(ctx, event)
}

// NormalizeEmail lowercases and trims an address. Every email entering
// the engine passes through here so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
