package ticketauth

import (
	"context"
	"errors"
)

// RequestPasswordReset invalidates pending reset tokens for the
// account and mints a fresh one for delivery.
//
// Like RequestEmailVerification, an unknown address returns ("", nil)
// and the caller answers with the uniform success shape, so the
// endpoint never confirms whether an account exists.
func (e *Engine) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	if e == nil {
		return "", ErrEngineNotReady
	}
	if !e.config.PasswordReset.Enabled {
		return "", ErrFlowDisabled
	}

	cred, err := e.credentials.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return "", storeErr("find credential", err)
	}

	e.metricInc(MetricResetRequest)

	if cred == nil {
		e.emitAudit(ctx, auditEventResetRequest, "", false, nil)
		return "", nil
	}

	issued, err := e.mintOpaqueToken(ctx, cred.ID, KindPasswordReset,
		e.config.PasswordReset.TTL, e.config.PasswordReset.ByteLength)
	if err != nil {
		return "", err
	}

	e.emitAudit(ctx, auditEventResetRequest, cred.ID, true, nil)
	return issued, nil
}

// ConfirmPasswordReset consumes a reset token and installs the new
// password. The policy check runs first so a weak password surfaces
// its specific rule before the token is burned; unknown, expired, and
// used tokens all yield ErrResetInvalid.
func (e *Engine) ConfirmPasswordReset(ctx context.Context, tok, newPassword string) error {
	if e == nil {
		return ErrEngineNotReady
	}
	if !e.config.PasswordReset.Enabled {
		return ErrFlowDisabled
	}

	if err := e.policy.Validate(newPassword); err != nil {
		return err
	}

	record, err := e.consumeOpaqueToken(ctx, tok, KindPasswordReset)
	if err != nil {
		e.emitAudit(ctx, auditEventResetConfirm, "", false, ErrResetInvalid)
		if errors.Is(err, errOpaqueTokenInvalid) {
			return ErrResetInvalid
		}
		return err
	}

	newHash, err := e.hasher.Hash(newPassword)
	if err != nil {
		return err
	}

	if err := e.credentials.UpdatePasswordHash(ctx, record.OwnerID, newHash); err != nil {
		return storeErr("update password hash", err)
	}

	e.metricInc(MetricResetConfirm)
	e.emitAudit(ctx, auditEventResetConfirm, record.OwnerID, true, nil)
	return nil
}
