package ticketauth

import (
	"context"
	"time"

	"github.com/eventra/ticketauth/permission"
)

// Credential is the slice of the user-account aggregate this core
// needs. The account itself is owned elsewhere; ticketauth only reads
// it and, for password updates and verification marks, writes back
// through CredentialStore.
type Credential struct {
	ID            string
	Email         string
	PasswordHash  string
	Role          permission.Role
	IsActive      bool
	EmailVerified bool
}

// Identity is the authenticated principal attached to a request after
// access token verification. The role has already been validated
// against the closed role enum.
type Identity struct {
	SubjectID string
	Email     string
	Role      permission.Role
}

// TokenPair is returned once at issuance and never stored. ExpiresIn
// is the access token lifetime in seconds.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
}

// TokenKind labels the one-shot opaque token flows.
type TokenKind string

const (
	// KindEmailVerification tokens prove ownership of an address.
	KindEmailVerification TokenKind = "EMAIL_VERIFICATION"
	// KindPasswordReset tokens authorize a one-time password change.
	KindPasswordReset TokenKind = "PASSWORD_RESET"
)

// OpaqueToken is the persisted record backing a one-shot token. The
// lifecycle is pending, then used or expired; a record with UsedAt set
// or ExpiresAt in the past is never valid, regardless of lookup.
type OpaqueToken struct {
	ID        string
	OwnerID   string
	Kind      TokenKind
	Token     string
	ExpiresAt time.Time
	UsedAt    *time.Time
}

// CredentialStore is the collaborator interface for user credential
// lookup and the two writes this core performs. Lookups return
// (nil, nil) when no account matches; errors are reserved for backend
// failures and are wrapped into *StoreError by the engine.
type CredentialStore interface {
	FindByEmail(ctx context.Context, email string) (*Credential, error)
	FindByID(ctx context.Context, id string) (*Credential, error)
	UpdatePasswordHash(ctx context.Context, id, passwordHash string) error
	MarkEmailVerified(ctx context.Context, id string) error
}

// TokenRepository persists opaque token records. FindValid must reject
// records that are expired or already used, returning (nil, nil).
// InvalidateKind marks every pending token of the given kind and owner
// as used; it runs before each new mint so at most one token per
// kind+owner is live. The two calls carry no atomicity guarantee;
// concurrent requests for the same owner resolve as last write wins.
type TokenRepository interface {
	Persist(ctx context.Context, record OpaqueToken) error
	FindValid(ctx context.Context, tok string, kind TokenKind) (*OpaqueToken, error)
	MarkUsed(ctx context.Context, id string) error
	InvalidateKind(ctx context.Context, ownerID string, kind TokenKind) error
}
