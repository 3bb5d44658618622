// Package token generates high-entropy opaque tokens for one-shot
// flows such as email verification and password reset. Tokens are raw
// crypto/rand bytes, hex-encoded, and carry no structure; validity is
// established only by looking them up against a persisted record.
package token
