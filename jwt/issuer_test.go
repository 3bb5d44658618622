package jwt

import (
	"errors"
	"testing"
	"time"
)

func testIssuer(t *testing.T, cfg Config) *Issuer {
	t.Helper()

	if cfg.AccessSecret == nil {
		cfg.AccessSecret = []byte("access-secret-for-tests")
	}
	issuer, err := NewIssuer(cfg)
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}
	return issuer
}

func testPayload() Payload {
	return Payload{SubjectID: "u1", Email: "alice@example.com", Role: "PARTICIPANT"}
}

func TestIssuePairEndToEnd(t *testing.T) {
	issuer := testIssuer(t, Config{})

	pair, err := issuer.IssuePair(testPayload())
	if err != nil {
		t.Fatalf("IssuePair: %v", err)
	}
	if pair.ExpiresIn != int64(DefaultAccessTTL/time.Second) {
		t.Fatalf("ExpiresIn = %d, want %d", pair.ExpiresIn, int64(DefaultAccessTTL/time.Second))
	}

	claims, err := issuer.VerifyAccess(pair.AccessToken)
	if err != nil {
		t.Fatalf("VerifyAccess: %v", err)
	}
	if claims.Subject != "u1" {
		t.Fatalf("Subject = %q, want u1", claims.Subject)
	}
	if claims.TokenType != string(TypeAccess) {
		t.Fatalf("TokenType = %q, want access", claims.TokenType)
	}
	if claims.Role != "PARTICIPANT" {
		t.Fatalf("Role = %q, want PARTICIPANT", claims.Role)
	}

	if _, err := issuer.VerifyRefresh(pair.RefreshToken); err != nil {
		t.Fatalf("VerifyRefresh: %v", err)
	}
}

func TestTypeConfusionRejectedBothDirections(t *testing.T) {
	// Shared secret so only the type discriminator can reject.
	issuer := testIssuer(t, Config{})

	access, err := issuer.SignAccess(testPayload())
	if err != nil {
		t.Fatalf("SignAccess: %v", err)
	}
	refresh, err := issuer.SignRefresh(testPayload())
	if err != nil {
		t.Fatalf("SignRefresh: %v", err)
	}

	if _, err := issuer.VerifyRefresh(access); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("VerifyRefresh(access token) = %v, want ErrTokenInvalid", err)
	}
	if _, err := issuer.VerifyAccess(refresh); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("VerifyAccess(refresh token) = %v, want ErrTokenInvalid", err)
	}
}

func TestWrongSecretNeverVerifies(t *testing.T) {
	signer := testIssuer(t, Config{AccessSecret: []byte("secret-a-secret-a")})
	verifier := testIssuer(t, Config{AccessSecret: []byte("secret-b-secret-b")})

	tok, err := signer.SignAccess(testPayload())
	if err != nil {
		t.Fatalf("SignAccess: %v", err)
	}

	claims, err := verifier.VerifyAccess(tok)
	if !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("VerifyAccess = %v, want ErrTokenInvalid", err)
	}
	if claims != nil {
		t.Fatal("claims returned despite signature failure")
	}
}

func TestDistinctRefreshSecretSeparatesKinds(t *testing.T) {
	issuer := testIssuer(t, Config{
		AccessSecret:  []byte("access-secret-access"),
		RefreshSecret: []byte("refresh-secret-refresh"),
	})

	refresh, err := issuer.SignRefresh(testPayload())
	if err != nil {
		t.Fatalf("SignRefresh: %v", err)
	}

	// Wrong secret fails before the type check ever runs.
	if _, err := issuer.VerifyAccess(refresh); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("VerifyAccess(refresh) = %v, want ErrTokenInvalid", err)
	}
	if _, err := issuer.VerifyRefresh(refresh); err != nil {
		t.Fatalf("VerifyRefresh: %v", err)
	}
}

func TestExpiredTokensRejectedAndFlagged(t *testing.T) {
	issuer := testIssuer(t, Config{})

	// Sign with a lifetime already in the past; no sleeping on the
	// one-second exp precision.
	access, err := issuer.sign(testPayload(), TypeAccess, issuer.config.AccessSecret, -time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	refresh, err := issuer.sign(testPayload(), TypeRefresh, issuer.config.RefreshSecret, -time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := issuer.VerifyAccess(access); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("VerifyAccess(expired) = %v, want ErrTokenInvalid", err)
	}
	if _, err := issuer.VerifyRefresh(refresh); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("VerifyRefresh(expired) = %v, want ErrTokenInvalid", err)
	}
	if !issuer.IsTokenExpired(access) {
		t.Fatal("IsTokenExpired(expired token) = false, want true")
	}
}

func TestIsTokenExpiredOnGarbage(t *testing.T) {
	issuer := testIssuer(t, Config{})

	if !issuer.IsTokenExpired("not.a.token") {
		t.Fatal("IsTokenExpired(garbage) = false, want true")
	}
	if issuer.DecodeUnsafe("not.a.token") != nil {
		t.Fatal("DecodeUnsafe(garbage) returned claims")
	}
}

func TestDecodeUnsafeSkipsSignature(t *testing.T) {
	signer := testIssuer(t, Config{AccessSecret: []byte("secret-a-secret-a")})
	other := testIssuer(t, Config{AccessSecret: []byte("secret-b-secret-b")})

	tok, err := signer.SignAccess(testPayload())
	if err != nil {
		t.Fatalf("SignAccess: %v", err)
	}

	claims := other.DecodeUnsafe(tok)
	if claims == nil || claims.Subject != "u1" {
		t.Fatal("DecodeUnsafe failed to decode a foreign-signed token")
	}
}

func TestMalformedTokensFailGenerically(t *testing.T) {
	issuer := testIssuer(t, Config{})

	for _, tok := range []string{"", "abc", "a.b", "a.b.c.d", "!!!.###.$$$"} {
		if _, err := issuer.VerifyAccess(tok); !errors.Is(err, ErrTokenInvalid) {
			t.Fatalf("VerifyAccess(%q) = %v, want ErrTokenInvalid", tok, err)
		}
	}
}

func TestParseExpiry(t *testing.T) {
	fallback := 42 * time.Second

	cases := []struct {
		in   string
		want time.Duration
	}{
		{"15m", 15 * time.Minute},
		{"30s", 30 * time.Second},
		{"1h30m", 90 * time.Minute},
		{"7d", 7 * 24 * time.Hour},
		{"900", 900 * time.Second},
		{" 15m ", 15 * time.Minute},
		{"", fallback},
		{"soon", fallback},
		{"-5m", fallback},
		{"0", fallback},
		{"-900", fallback},
		{"xd", fallback},
	}

	for _, tc := range cases {
		if got := ParseExpiry(tc.in, fallback); got != tc.want {
			t.Errorf("ParseExpiry(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestNewIssuerValidation(t *testing.T) {
	if _, err := NewIssuer(Config{}); err == nil {
		t.Fatal("NewIssuer without access secret = nil error, want error")
	}
	if _, err := NewIssuer(Config{AccessSecret: []byte("x"), AccessTTL: -time.Second}); err == nil {
		t.Fatal("NewIssuer with negative TTL = nil error, want error")
	}
}
