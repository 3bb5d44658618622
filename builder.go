package ticketauth

import (
	"errors"

	"github.com/eventra/ticketauth/jwt"
	"github.com/eventra/ticketauth/password"
)

// Builder assembles an Engine. All dependencies are injected here;
// after Build the engine is immutable.
type Builder struct {
	config      Config
	credentials CredentialStore
	tokens      TokenRepository
	auditSink   AuditSink

	built bool
}

// New starts a Builder preloaded with DefaultConfig.
func New() *Builder {
	return &Builder{config: DefaultConfig()}
}

// WithConfig replaces the configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithCredentialStore sets the credential collaborator. Required.
func (b *Builder) WithCredentialStore(store CredentialStore) *Builder {
	b.credentials = store
	return b
}

// WithTokenRepository sets the opaque token collaborator. Required
// when either the email verification or password reset flow is
// enabled.
func (b *Builder) WithTokenRepository(repo TokenRepository) *Builder {
	b.tokens = repo
	return b
}

// WithAuditSink sets the audit destination. Ignored unless
// Config.Audit.Enabled is set.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// Build validates the configuration, constructs the token issuer and
// password hasher, and returns the ready engine. A builder can build
// at most once.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := normalizeConfig(b.config)
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	if b.credentials == nil {
		return nil, errors.New("credential store is required")
	}
	if b.tokens == nil && (cfg.EmailVerification.Enabled || cfg.PasswordReset.Enabled) {
		return nil, errors.New("token repository is required for verification and reset flows")
	}

	issuer, err := jwt.NewIssuer(cfg.Session.issuerConfig())
	if err != nil {
		return nil, err
	}

	hasher, err := password.NewHasher(cfg.Password.Cost)
	if err != nil {
		return nil, err
	}

	// Pre-hash a fixed plaintext so login can burn an equivalent
	// bcrypt comparison when the account does not exist.
	dummyHash, err := hasher.Hash("ticketauth-dummy-credential")
	if err != nil {
		return nil, err
	}

	b.built = true

	return &Engine{
		config:      cfg,
		issuer:      issuer,
		hasher:      hasher,
		policy:      cfg.Password.Policy,
		credentials: b.credentials,
		tokens:      b.tokens,
		audit:       newAuditDispatcher(cfg.Audit, b.auditSink),
		metrics:     newMetrics(cfg.Metrics),
		dummyHash:   dummyHash,
	}, nil
}
