package jwt

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenType discriminates the two session token kinds. It is embedded
// in the signed claims and checked after signature verification.
type TokenType string

const (
	// TypeAccess marks short-lived tokens that authorize API calls.
	TypeAccess TokenType = "access"
	// TypeRefresh marks tokens used solely to mint new access tokens.
	TypeRefresh TokenType = "refresh"
)

const (
	// DefaultAccessTTL is the canonical access token lifetime.
	DefaultAccessTTL = 15 * time.Minute
	// DefaultRefreshTTL is the default refresh token lifetime.
	DefaultRefreshTTL = 7 * 24 * time.Hour
)

// ErrTokenInvalid is returned for every verification failure. The
// message is intentionally generic.
var ErrTokenInvalid = errors.New("invalid or expired token")

// Payload is the identity carried into a signed token.
type Payload struct {
	SubjectID string
	Email     string
	Role      string
}

// Claims is the verified content of a session token. Instances are
// immutable value objects reconstructed solely from a valid signature;
// they are never persisted.
type Claims struct {
	Email     string `json:"email,omitempty"`
	Role      string `json:"role"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// Pair is the result of issuing both token kinds at once. ExpiresIn is
// the access token lifetime in seconds, for client refresh scheduling.
type Pair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
}

// Config holds the signing material and lifetimes for an Issuer.
type Config struct {
	// AccessSecret signs and verifies access tokens. Required.
	AccessSecret []byte
	// RefreshSecret signs and verifies refresh tokens. When empty it
	// falls back to AccessSecret. The fallback trades cryptographic
	// separation for simpler deployment; set a distinct secret where
	// the two token kinds must not share key material.
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string
}

// Issuer signs and verifies session tokens. Safe for concurrent use;
// it holds no mutable state after construction.
type Issuer struct {
	config Config
}

// NewIssuer validates cfg and returns an Issuer. Zero TTLs take the
// package defaults; negative TTLs are rejected.
func NewIssuer(cfg Config) (*Issuer, error) {
	if len(cfg.AccessSecret) == 0 {
		return nil, errors.New("access secret is required")
	}
	if len(cfg.RefreshSecret) == 0 {
		cfg.RefreshSecret = cfg.AccessSecret
	}
	if cfg.AccessTTL == 0 {
		cfg.AccessTTL = DefaultAccessTTL
	}
	if cfg.RefreshTTL == 0 {
		cfg.RefreshTTL = DefaultRefreshTTL
	}
	if cfg.AccessTTL < 0 || cfg.RefreshTTL < 0 {
		return nil, errors.New("invalid TTL configuration")
	}

	return &Issuer{config: cfg}, nil
}

// AccessTTL returns the effective access token lifetime.
func (i *Issuer) AccessTTL() time.Duration {
	return i.config.AccessTTL
}

// SignAccess mints an access token for payload.
func (i *Issuer) SignAccess(payload Payload) (string, error) {
	return i.sign(payload, TypeAccess, i.config.AccessSecret, i.config.AccessTTL)
}

// SignRefresh mints a refresh token for payload.
func (i *Issuer) SignRefresh(payload Payload) (string, error) {
	return i.sign(payload, TypeRefresh, i.config.RefreshSecret, i.config.RefreshTTL)
}

// IssuePair mints both token kinds from one identity payload.
func (i *Issuer) IssuePair(payload Payload) (*Pair, error) {
	access, err := i.SignAccess(payload)
	if err != nil {
		return nil, err
	}

	refresh, err := i.SignRefresh(payload)
	if err != nil {
		return nil, err
	}

	return &Pair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(i.config.AccessTTL / time.Second),
	}, nil
}

// VerifyAccess verifies signature and expiry against the access secret
// and requires token_type=access. Any failure returns ErrTokenInvalid.
func (i *Issuer) VerifyAccess(tokenStr string) (*Claims, error) {
	return i.verify(tokenStr, TypeAccess, i.config.AccessSecret)
}

// VerifyRefresh mirrors VerifyAccess against the refresh secret and
// token_type=refresh.
func (i *Issuer) VerifyRefresh(tokenStr string) (*Claims, error) {
	return i.verify(tokenStr, TypeRefresh, i.config.RefreshSecret)
}

// DecodeUnsafe decodes a token without verifying its signature. It
// exists only for expiry inspection of otherwise-untrusted tokens and
// must never feed an authorization decision. Returns nil when the
// token does not even parse.
func (i *Issuer) DecodeUnsafe(tokenStr string) *Claims {
	claims := &Claims{}

	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(tokenStr, claims); err != nil {
		return nil
	}

	return claims
}

// IsTokenExpired reports whether a token's exp claim lies in the past.
// Unparseable tokens and tokens without an expiry count as expired.
func (i *Issuer) IsTokenExpired(tokenStr string) bool {
	claims := i.DecodeUnsafe(tokenStr)
	if claims == nil || claims.ExpiresAt == nil {
		return true
	}
	return time.Now().After(claims.ExpiresAt.Time)
}

func (i *Issuer) sign(payload Payload, typ TokenType, secret []byte, ttl time.Duration) (string, error) {
	if payload.SubjectID == "" {
		return "", errors.New("payload subject id is required")
	}

	now := time.Now()
	claims := Claims{
		Email:     payload.Email,
		Role:      payload.Role,
		TokenType: string(typ),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   payload.SubjectID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Issuer:    i.config.Issuer,
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func (i *Issuer) verify(tokenStr string, typ TokenType, secret []byte) (*Claims, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if i.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(i.config.Issuer))
	}

	parser := jwt.NewParser(options...)
	parsed, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	})
	if err != nil {
		return nil, ErrTokenInvalid
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrTokenInvalid
	}

	// Type confusion is rejected with the same generic error as a bad
	// signature so responses never reveal which check failed.
	if claims.TokenType != string(typ) {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}

// ParseExpiry converts an expiry string to a duration. Accepted forms:
// Go duration strings ("15m", "30s", "1h30m"), a day suffix ("7d"),
// and bare integers meaning seconds ("900"). Anything unparseable or
// non-positive yields fallback.
func ParseExpiry(s string, fallback time.Duration) time.Duration {
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback
	}

	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		if secs <= 0 {
			return fallback
		}
		return time.Duration(secs) * time.Second
	}

	if strings.HasSuffix(s, "d") {
		days, err := strconv.ParseInt(strings.TrimSuffix(s, "d"), 10, 64)
		if err != nil || days <= 0 {
			return fallback
		}
		return time.Duration(days) * 24 * time.Hour
	}

	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
