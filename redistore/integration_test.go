package redistore

import (
	"context"
	"errors"
	"sync"
	"testing"

	ticketauth "github.com/eventra/ticketauth"
	"github.com/eventra/ticketauth/permission"
	"golang.org/x/crypto/bcrypt"
)

// memCredentials is the minimal credential collaborator needed to run
// engine flows against the Redis-backed token repository.
type memCredentials struct {
	mu    sync.Mutex
	creds map[string]*ticketauth.Credential
}

func (s *memCredentials) FindByEmail(_ context.Context, email string) (*ticketauth.Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, cred := range s.creds {
		if cred.Email == email {
			c := *cred
			return &c, nil
		}
	}
	return nil, nil
}

func (s *memCredentials) FindByID(_ context.Context, id string) (*ticketauth.Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cred, ok := s.creds[id]; ok {
		c := *cred
		return &c, nil
	}
	return nil, nil
}

func (s *memCredentials) UpdatePasswordHash(_ context.Context, id, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cred, ok := s.creds[id]; ok {
		cred.PasswordHash = hash
	}
	return nil
}

func (s *memCredentials) MarkEmailVerified(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cred, ok := s.creds[id]; ok {
		cred.EmailVerified = true
	}
	return nil
}

func TestEngineFlowsAgainstRedisStore(t *testing.T) {
	store, _ := testStore(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("Sufficient1!"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}

	creds := &memCredentials{creds: map[string]*ticketauth.Credential{
		"u1": {
			ID:           "u1",
			Email:        "alice@example.com",
			PasswordHash: string(hash),
			Role:         permission.RoleParticipant,
			IsActive:     true,
		},
	}}

	cfg := ticketauth.DefaultConfig()
	cfg.Session.AccessSecret = []byte("integration-secret")
	cfg.Password.Cost = bcrypt.MinCost

	engine, err := ticketauth.New().
		WithConfig(cfg).
		WithCredentialStore(creds).
		WithTokenRepository(store).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer engine.Close()

	ctx := context.Background()

	first, err := engine.RequestEmailVerification(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("first verification request: %v", err)
	}
	second, err := engine.RequestEmailVerification(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("second verification request: %v", err)
	}

	// The first token was invalidated in Redis by the second request.
	if err := engine.ConfirmEmailVerification(ctx, first); !errors.Is(err, ticketauth.ErrVerificationInvalid) {
		t.Fatalf("superseded token = %v, want ErrVerificationInvalid", err)
	}
	if err := engine.ConfirmEmailVerification(ctx, second); err != nil {
		t.Fatalf("ConfirmEmailVerification: %v", err)
	}

	verified, err := creds.FindByID(ctx, "u1")
	if err != nil || verified == nil || !verified.EmailVerified {
		t.Fatalf("account not verified: %+v (%v)", verified, err)
	}

	resetTok, err := engine.RequestPasswordReset(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("RequestPasswordReset: %v", err)
	}
	if err := engine.ConfirmPasswordReset(ctx, resetTok, "Replacement2@"); err != nil {
		t.Fatalf("ConfirmPasswordReset: %v", err)
	}
	if err := engine.ConfirmPasswordReset(ctx, resetTok, "Another3#pass"); !errors.Is(err, ticketauth.ErrResetInvalid) {
		t.Fatalf("reused reset token = %v, want ErrResetInvalid", err)
	}

	if _, _, err := engine.Login(ctx, "alice@example.com", "Replacement2@"); err != nil {
		t.Fatalf("login with reset password: %v", err)
	}
}
