// Package ticketauth is the authentication and authorization core of
// the ticketing platform: signed session tokens (access + refresh),
// bcrypt credential hashing under an explicit complexity policy, a
// static role-to-permission model, opaque one-shot tokens for email
// verification and password reset, and the request guard pipeline in
// the middleware subpackage.
//
// The package is the public surface. [Engine] methods are safe to call
// from multiple goroutines once constructed through [Builder.Build];
// all configuration is loaded once and treated as read-only afterward.
//
// Persistence is a collaborator, not a concern of this package: user
// credentials arrive through [CredentialStore] and opaque token records
// through [TokenRepository]. The redistore subpackage ships a
// Redis-backed TokenRepository for deployments that want one.
//
// # What this package must NOT do
//
//   - Differentiate token verification failures in any caller-visible
//     way (expired, malformed, wrong signature, and wrong type are all
//     the same generic error).
//   - Log or audit raw tokens or passwords.
//   - Reveal whether an email address exists through the reset or
//     verification request flows.
package ticketauth
