package ticketauth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/eventra/ticketauth/password"
	"github.com/eventra/ticketauth/permission"
	"golang.org/x/crypto/bcrypt"
)

type memCredentialStore struct {
	mu      sync.Mutex
	byID    map[string]*Credential
	findErr error
}

func newMemCredentialStore() *memCredentialStore {
	return &memCredentialStore{byID: make(map[string]*Credential)}
}

func (s *memCredentialStore) put(cred Credential) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := cred
	s.byID[cred.ID] = &c
}

func (s *memCredentialStore) get(id string) Credential {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.byID[id]
}

func (s *memCredentialStore) FindByEmail(_ context.Context, email string) (*Credential, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, cred := range s.byID {
		if cred.Email == email {
			c := *cred
			return &c, nil
		}
	}
	return nil, nil
}

func (s *memCredentialStore) FindByID(_ context.Context, id string) (*Credential, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	cred, ok := s.byID[id]
	if !ok {
		return nil, nil
	}
	c := *cred
	return &c, nil
}

func (s *memCredentialStore) UpdatePasswordHash(_ context.Context, id, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cred, ok := s.byID[id]; ok {
		cred.PasswordHash = passwordHash
	}
	return nil
}

func (s *memCredentialStore) MarkEmailVerified(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cred, ok := s.byID[id]; ok {
		cred.EmailVerified = true
	}
	return nil
}

type memTokenRepo struct {
	mu      sync.Mutex
	records map[string]*OpaqueToken
}

func newMemTokenRepo() *memTokenRepo {
	return &memTokenRepo{records: make(map[string]*OpaqueToken)}
}

func (r *memTokenRepo) Persist(_ context.Context, record OpaqueToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec := record
	r.records[record.ID] = &rec
	return nil
}

func (r *memTokenRepo) FindValid(_ context.Context, tok string, kind TokenKind) (*OpaqueToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.records {
		if rec.Token == tok && rec.Kind == kind && rec.UsedAt == nil && time.Now().Before(rec.ExpiresAt) {
			out := *rec
			return &out, nil
		}
	}
	return nil, nil
}

func (r *memTokenRepo) MarkUsed(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rec, ok := r.records[id]; ok && rec.UsedAt == nil {
		now := time.Now()
		rec.UsedAt = &now
	}
	return nil
}

func (r *memTokenRepo) InvalidateKind(_ context.Context, ownerID string, kind TokenKind) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	for _, rec := range r.records {
		if rec.OwnerID == ownerID && rec.Kind == kind && rec.UsedAt == nil {
			rec.UsedAt = &now
		}
	}
	return nil
}

func (r *memTokenRepo) pending(ownerID string, kind TokenKind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, rec := range r.records {
		if rec.OwnerID == ownerID && rec.Kind == kind && rec.UsedAt == nil {
			count++
		}
	}
	return count
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Session.AccessSecret = []byte("test-access-secret")
	cfg.Password.Cost = bcrypt.MinCost
	return cfg
}

func newTestEngine(t *testing.T, cfg Config, creds *memCredentialStore, tokens *memTokenRepo) *Engine {
	t.Helper()

	engine, err := New().
		WithConfig(cfg).
		WithCredentialStore(creds).
		WithTokenRepository(tokens).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	t.Cleanup(engine.Close)

	return engine
}

func seedUser(t *testing.T, creds *memCredentialStore, id, email, plaintext string, role permission.Role) {
	t.Helper()

	hasher, err := password.NewHasher(bcrypt.MinCost)
	if err != nil {
		t.Fatalf("NewHasher: %v", err)
	}
	hash, err := hasher.Hash(plaintext)
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}

	creds.put(Credential{
		ID:            id,
		Email:         email,
		PasswordHash:  hash,
		Role:          role,
		IsActive:      true,
		EmailVerified: true,
	})
}
