package ticketauth

import (
	"context"
	"errors"
	"time"

	"github.com/eventra/ticketauth/token"
	"github.com/google/uuid"
)

// ErrFlowDisabled is returned when a flow is invoked while switched
// off in configuration.
var ErrFlowDisabled = errors.New("flow disabled")

// RequestEmailVerification invalidates any pending verification tokens
// for the account and mints a fresh one. The returned token is handed
// to the delivery layer (email sending is out of scope here).
//
// When no account matches the address, the call returns ("", nil): the
// caller must answer with the same success shape it uses for known
// addresses so the endpoint cannot be used to enumerate accounts.
func (e *Engine) RequestEmailVerification(ctx context.Context, email string) (string, error) {
	if e == nil {
		return "", ErrEngineNotReady
	}
	if !e.config.EmailVerification.Enabled {
		return "", ErrFlowDisabled
	}

	cred, err := e.credentials.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return "", storeErr("find credential", err)
	}

	e.metricInc(MetricVerificationRequest)

	if cred == nil || cred.EmailVerified {
		e.emitAudit(ctx, auditEventVerificationRequest, "", cred != nil, nil)
		return "", nil
	}

	issued, err := e.mintOpaqueToken(ctx, cred.ID, KindEmailVerification,
		e.config.EmailVerification.TTL, e.config.EmailVerification.ByteLength)
	if err != nil {
		return "", err
	}

	e.emitAudit(ctx, auditEventVerificationRequest, cred.ID, true, nil)
	return issued, nil
}

// ConfirmEmailVerification consumes a verification token and marks the
// owning account's email as verified. Unknown, expired, and
// already-used tokens all yield ErrVerificationInvalid.
func (e *Engine) ConfirmEmailVerification(ctx context.Context, tok string) error {
	if e == nil {
		return ErrEngineNotReady
	}
	if !e.config.EmailVerification.Enabled {
		return ErrFlowDisabled
	}

	record, err := e.consumeOpaqueToken(ctx, tok, KindEmailVerification)
	if err != nil {
		e.emitAudit(ctx, auditEventVerificationConfirm, "", false, ErrVerificationInvalid)
		if errors.Is(err, errOpaqueTokenInvalid) {
			return ErrVerificationInvalid
		}
		return err
	}

	if err := e.credentials.MarkEmailVerified(ctx, record.OwnerID); err != nil {
		return storeErr("mark email verified", err)
	}

	e.metricInc(MetricVerificationConfirm)
	e.emitAudit(ctx, auditEventVerificationConfirm, record.OwnerID, true, nil)
	return nil
}

var errOpaqueTokenInvalid = errors.New("opaque token invalid")

// mintOpaqueToken implements the invalidate-then-mint lifecycle shared
// by the verification and reset flows. The two repository calls are
// not atomic; racing requests for the same owner resolve as last write
// wins.
func (e *Engine) mintOpaqueToken(ctx context.Context, ownerID string, kind TokenKind, ttl time.Duration, byteLength int) (string, error) {
	if err := e.tokens.InvalidateKind(ctx, ownerID, kind); err != nil {
		return "", storeErr("invalidate tokens", err)
	}

	issued, err := token.GenerateWithExpiry(ttl, byteLength)
	if err != nil {
		return "", err
	}

	record := OpaqueToken{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Kind:      kind,
		Token:     issued.Token,
		ExpiresAt: issued.ExpiresAt,
	}
	if err := e.tokens.Persist(ctx, record); err != nil {
		return "", storeErr("persist token", err)
	}

	return issued.Token, nil
}

// consumeOpaqueToken looks up a pending token and marks it used. The
// repository contract already rejects expired and used records; the
// expiry is re-checked here so a lax implementation cannot widen the
// window.
func (e *Engine) consumeOpaqueToken(ctx context.Context, tok string, kind TokenKind) (*OpaqueToken, error) {
	record, err := e.tokens.FindValid(ctx, tok, kind)
	if err != nil {
		return nil, storeErr("find token", err)
	}
	if record == nil || record.UsedAt != nil || token.IsExpired(record.ExpiresAt) {
		return nil, errOpaqueTokenInvalid
	}

	if err := e.tokens.MarkUsed(ctx, record.ID); err != nil {
		return nil, storeErr("mark token used", err)
	}

	return record, nil
}
