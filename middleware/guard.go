package middleware

import (
	"context"
	"net/http"
	"strings"

	ticketauth "github.com/eventra/ticketauth"
)

type identityContextKey struct{}

// IdentityFromContext returns the identity attached by the
// authentication guard.
func IdentityFromContext(ctx context.Context) (*ticketauth.Identity, bool) {
	identity, ok := ctx.Value(identityContextKey{}).(*ticketauth.Identity)
	return identity, ok
}

// AccessVerifier verifies bearer tokens. *ticketauth.Engine satisfies
// it.
type AccessVerifier interface {
	VerifyAccess(tokenStr string) (*ticketauth.Identity, error)
}

// AccountLoader fetches the account record behind an authenticated
// subject. *ticketauth.Engine satisfies it.
type AccountLoader interface {
	Account(ctx context.Context, subjectID string) (*ticketauth.Credential, error)
}

// Engine is the combined dependency of the full pipeline.
type Engine interface {
	AccessVerifier
	AccountLoader
}

// Guard composes the three checks in their required order:
// authentication, role, email verification.
func Guard(engine Engine, meta RouteMeta) func(http.Handler) http.Handler {
	authn := Authentication(engine, meta)
	role := RoleGuard(meta)
	verified := EmailVerification(engine, meta)

	return func(next http.Handler) http.Handler {
		return authn(role(verified(next)))
	}
}

// Authentication admits public routes unconditionally; otherwise it
// extracts the bearer token, verifies it, and attaches the resulting
// identity to the request context. Every failure answers the same 401
// so the response reveals nothing about why the token was rejected.
func Authentication(verifier AccessVerifier, meta RouteMeta) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if meta.Public {
				next.ServeHTTP(w, r)
				return
			}

			if verifier == nil {
				unauthorized(w)
				return
			}

			tok, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				unauthorized(w)
				return
			}

			identity, err := verifier.VerifyAccess(tok)
			if err != nil {
				unauthorized(w)
				return
			}

			ctx := context.WithValue(r.Context(), identityContextKey{}, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RoleGuard checks the authenticated identity against the route's
// required role set. An empty set passes. A missing identity fails
// closed with 401: it should be impossible when the guard is ordered
// after Authentication, but must never silently admit.
func RoleGuard(meta RouteMeta) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if meta.Public || len(meta.RequiredRoles) == 0 {
				next.ServeHTTP(w, r)
				return
			}

			identity, ok := IdentityFromContext(r.Context())
			if !ok || identity == nil {
				unauthorized(w)
				return
			}

			for _, required := range meta.RequiredRoles {
				if identity.Role.Equal(strings.TrimSpace(required)) {
					next.ServeHTTP(w, r)
					return
				}
			}

			forbidden(w)
		})
	}
}

// EmailVerification loads the account record and requires a verified
// email unless the route opts out. A missing record fails closed with
// 403; a store failure answers 500 rather than admitting the request.
func EmailVerification(loader AccountLoader, meta RouteMeta) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if meta.Public || meta.SkipEmailVerification {
				next.ServeHTTP(w, r)
				return
			}

			identity, ok := IdentityFromContext(r.Context())
			if !ok || identity == nil {
				unauthorized(w)
				return
			}

			if loader == nil {
				forbidden(w)
				return
			}

			account, err := loader.Account(r.Context(), identity.SubjectID)
			if err != nil {
				http.Error(w, "internal error", http.StatusInternalServerError)
				return
			}
			if account == nil || !account.EmailVerified {
				forbidden(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	tok := value[len(bearer):]
	if tok == "" {
		return "", false
	}

	return tok, true
}

func unauthorized(w http.ResponseWriter) {
	http.Error(w, "unauthorized", http.StatusUnauthorized)
}

func forbidden(w http.ResponseWriter) {
	http.Error(w, "forbidden", http.StatusForbidden)
}
