// Package password implements plaintext password policy validation and
// bcrypt-based credential hashing for the ticketauth engine.
//
// Policy checks are pure functions over the raw password bytes (no
// Unicode normalization). Hashing is CPU-bound and safe to call from
// concurrent goroutines; Hasher carries no mutable state after
// construction.
package password
