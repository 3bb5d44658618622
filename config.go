package ticketauth

import (
	"errors"
	"time"

	"github.com/eventra/ticketauth/jwt"
	"github.com/eventra/ticketauth/password"
)

// Config is the full engine configuration. Construct it once at
// process start (typically from environment material), pass it to
// [Builder.WithConfig], and treat it as read-only afterward; the engine
// never reads ambient state.
type Config struct {
	Session           SessionConfig
	Password          PasswordConfig
	EmailVerification EmailVerificationConfig
	PasswordReset     PasswordResetConfig
	Audit             AuditConfig
	Metrics           MetricsConfig
}

/*
====================================
SESSION TOKEN CONFIG
====================================
*/

// SessionConfig carries the signing secrets and token lifetimes.
// TTLs are strings so they can come straight from the environment:
// "15m", "7d", "30s", or a bare integer number of seconds. Anything
// unparseable falls back to the documented defaults (15m access,
// 7d refresh) rather than to zero.
type SessionConfig struct {
	// AccessSecret signs access tokens. Required.
	AccessSecret []byte
	// RefreshSecret signs refresh tokens. When empty, the access
	// secret is reused; see jwt.Config.RefreshSecret for the
	// trade-off.
	RefreshSecret []byte
	AccessTTL     string
	RefreshTTL    string
	Issuer        string
}

/*
====================================
PASSWORD CONFIG
====================================
*/

// PasswordConfig selects the bcrypt cost factor and the plaintext
// complexity policy.
type PasswordConfig struct {
	// Cost is the bcrypt cost factor; 0 selects password.DefaultCost.
	Cost int
	// Policy validates plaintexts before hashing.
	Policy password.Policy
	// RehashOnLogin lazily re-hashes a stored credential when its
	// embedded cost no longer matches Cost.
	RehashOnLogin bool
}

/*
====================================
OPAQUE TOKEN FLOWS
====================================
*/

// EmailVerificationConfig governs the email verification flow.
type EmailVerificationConfig struct {
	Enabled    bool
	TTL        time.Duration
	ByteLength int
}

// PasswordResetConfig governs the password reset flow.
type PasswordResetConfig struct {
	Enabled    bool
	TTL        time.Duration
	ByteLength int
}

/*
====================================
AUDIT / METRICS
====================================
*/

// AuditConfig controls the buffered audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	// DropIfFull drops events instead of blocking the request path
	// when the buffer is saturated. Dropped counts are observable via
	// Engine.AuditDropped.
	DropIfFull bool
}

// MetricsConfig toggles the in-process counters.
type MetricsConfig struct {
	Enabled bool
}

// DefaultConfig returns the documented defaults: 15 minute access
// tokens, 7 day refresh tokens, bcrypt cost 10, the default password
// policy, 32-byte opaque tokens, 24 hour verification expiry, and
// 1 hour reset expiry. Secrets must still be supplied by the caller.
func DefaultConfig() Config {
	return Config{
		Session: SessionConfig{
			AccessTTL:  "15m",
			RefreshTTL: "7d",
		},
		Password: PasswordConfig{
			Cost:          password.DefaultCost,
			Policy:        password.DefaultPolicy(),
			RehashOnLogin: true,
		},
		EmailVerification: EmailVerificationConfig{
			Enabled:    true,
			TTL:        24 * time.Hour,
			ByteLength: 32,
		},
		PasswordReset: PasswordResetConfig{
			Enabled:    true,
			TTL:        time.Hour,
			ByteLength: 32,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: false,
		},
	}
}

func validateConfig(cfg Config) error {
	if len(cfg.Session.AccessSecret) == 0 {
		return errors.New("session access secret is required")
	}
	if cfg.Password.Policy.MinLength <= 0 {
		return errors.New("password policy min length must be positive")
	}
	if cfg.EmailVerification.Enabled && cfg.EmailVerification.TTL <= 0 {
		return errors.New("email verification TTL must be positive")
	}
	if cfg.PasswordReset.Enabled && cfg.PasswordReset.TTL <= 0 {
		return errors.New("password reset TTL must be positive")
	}
	return nil
}

// normalizeConfig fills unset optional fields with their defaults.
func normalizeConfig(cfg Config) Config {
	if cfg.EmailVerification.ByteLength == 0 {
		cfg.EmailVerification.ByteLength = 32
	}
	if cfg.PasswordReset.ByteLength == 0 {
		cfg.PasswordReset.ByteLength = 32
	}
	if cfg.Audit.BufferSize <= 0 {
		cfg.Audit.BufferSize = 1024
	}
	return cfg
}

func (c SessionConfig) issuerConfig() jwt.Config {
	return jwt.Config{
		AccessSecret:  c.AccessSecret,
		RefreshSecret: c.RefreshSecret,
		AccessTTL:     jwt.ParseExpiry(c.AccessTTL, jwt.DefaultAccessTTL),
		RefreshTTL:    jwt.ParseExpiry(c.RefreshTTL, jwt.DefaultRefreshTTL),
		Issuer:        c.Issuer,
	}
}
