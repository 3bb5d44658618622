// Package jwt mints and verifies the signed session tokens used by the
// ticketauth engine: short-lived access tokens and longer-lived refresh
// tokens, both HS256, each carrying a token-type discriminator so one
// kind can never be accepted where the other is required.
//
// Every verification failure (bad signature, expired, malformed, wrong
// type, wrong secret) surfaces as the single generic [ErrTokenInvalid].
// Callers must not attempt to tell those cases apart in responses; the
// uniformity is what prevents token-oracle probing.
package jwt
