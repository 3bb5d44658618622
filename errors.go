package ticketauth

import (
	"errors"
	"fmt"
)

var (
	// ErrEngineNotReady is returned by Engine methods invoked on a nil
	// or incompletely built engine.
	ErrEngineNotReady = errors.New("engine not ready")
	// ErrInvalidCredentials covers both unknown account and wrong
	// password; the two are never distinguished to the caller.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrTokenInvalid is the single generic error for every session
	// token verification failure.
	ErrTokenInvalid = errors.New("invalid or expired token")
	// ErrAccountDisabled is returned after successful credential
	// verification when the account is inactive.
	ErrAccountDisabled = errors.New("account disabled")
	// ErrAccountUnverified denies access to routes requiring a
	// verified email address.
	ErrAccountUnverified = errors.New("account email not verified")
	// ErrPermissionDenied denies access when the authenticated role is
	// not in a route's required set.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrVerificationInvalid is returned for unknown, expired, or
	// already-consumed email verification tokens.
	ErrVerificationInvalid = errors.New("verification challenge invalid")
	// ErrResetInvalid is the password reset counterpart of
	// ErrVerificationInvalid.
	ErrResetInvalid = errors.New("password reset challenge invalid")
)

// StoreError wraps a collaborator (persistence) failure. It is
// propagated, never swallowed, so callers can distinguish backend
// outages from authentication outcomes.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func storeErr(op string, err error) error {
	return &StoreError{Op: op, Err: err}
}

// IsAuthenticationError reports whether err denies a request for lack
// of valid credentials or a valid token. Guards map these to 401.
func IsAuthenticationError(err error) bool {
	return errors.Is(err, ErrInvalidCredentials) || errors.Is(err, ErrTokenInvalid)
}

// IsAuthorizationError reports whether err denies an authenticated
// request for insufficient role or verification state. Guards map
// these to 403.
func IsAuthorizationError(err error) bool {
	return errors.Is(err, ErrPermissionDenied) || errors.Is(err, ErrAccountUnverified)
}
