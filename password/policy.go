package password

import (
	"fmt"
	"strings"
	"unicode"
)

// specialChars is the character set accepted as "special" by the
// complexity rules. Kept in sync with the client-side hint strings.
const specialChars = `!@#$%^&*()_+-=[]{};':"\|,.<>/?~` + "`"

// Policy holds the password complexity rules. Instances are immutable
// configuration values; construct once and share freely.
type Policy struct {
	MinLength          int
	RequireUppercase   bool
	RequireNumber      bool
	RequireSpecialChar bool
}

// DefaultPolicy returns the platform default: at least 8 characters
// with one uppercase letter, one digit, and one special character.
func DefaultPolicy() Policy {
	return Policy{
		MinLength:          8,
		RequireUppercase:   true,
		RequireNumber:      true,
		RequireSpecialChar: true,
	}
}

// WeakPasswordError reports the first complexity rule a password
// violated. The reason is safe to show to end users verbatim.
type WeakPasswordError struct {
	Reason string
}

func (e *WeakPasswordError) Error() string {
	return "weak password: " + e.Reason
}

// Validate checks plaintext against the policy and returns nil or a
// *WeakPasswordError for the first violated rule. Rules are evaluated
// in a fixed order (length, uppercase, number, special character) so
// error messages are deterministic for a given input.
func (p Policy) Validate(plaintext string) error {
	if len(plaintext) < p.MinLength {
		return &WeakPasswordError{
			Reason: fmt.Sprintf("must be at least %d characters long", p.MinLength),
		}
	}

	if p.RequireUppercase && !containsUppercase(plaintext) {
		return &WeakPasswordError{Reason: "must contain at least one uppercase letter"}
	}

	if p.RequireNumber && !containsDigit(plaintext) {
		return &WeakPasswordError{Reason: "must contain at least one number"}
	}

	if p.RequireSpecialChar && !strings.ContainsAny(plaintext, specialChars) {
		return &WeakPasswordError{Reason: "must contain at least one special character"}
	}

	return nil
}

// IsValid is the non-erroring variant of Validate.
func (p Policy) IsValid(plaintext string) bool {
	return p.Validate(plaintext) == nil
}

// Requirements returns the active rules as human-readable strings for
// client display, in the same order Validate applies them.
func (p Policy) Requirements() []string {
	rules := []string{
		fmt.Sprintf("at least %d characters", p.MinLength),
	}

	if p.RequireUppercase {
		rules = append(rules, "at least one uppercase letter")
	}
	if p.RequireNumber {
		rules = append(rules, "at least one number")
	}
	if p.RequireSpecialChar {
		rules = append(rules, "at least one special character")
	}

	return rules
}

func containsUppercase(s string) bool {
	for _, r := range s {
		if unicode.IsUpper(r) {
			return true
		}
	}
	return false
}

func containsDigit(s string) bool {
	for _, r := range s {
		if r >= '0' && r <= '9' {
			return true
		}
	}
	return false
}
