package password

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateReportsFirstViolationInFixedOrder(t *testing.T) {
	policy := DefaultPolicy()

	cases := []struct {
		name       string
		plaintext  string
		wantReason string
	}{
		{
			name:       "too short beats every other failure",
			plaintext:  "a",
			wantReason: "must be at least 8 characters long",
		},
		{
			name:       "uppercase checked before number",
			plaintext:  "alllowercase",
			wantReason: "must contain at least one uppercase letter",
		},
		{
			name:       "number checked before special char",
			plaintext:  "NoNumbersHere",
			wantReason: "must contain at least one number",
		},
		{
			name:       "special char is the last rule",
			plaintext:  "Almost1Valid",
			wantReason: "must contain at least one special character",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := policy.Validate(tc.plaintext)
			if err == nil {
				t.Fatalf("Validate(%q) = nil, want weak password error", tc.plaintext)
			}

			var weak *WeakPasswordError
			if !errors.As(err, &weak) {
				t.Fatalf("Validate(%q) returned %T, want *WeakPasswordError", tc.plaintext, err)
			}
			if weak.Reason != tc.wantReason {
				t.Fatalf("reason = %q, want %q", weak.Reason, tc.wantReason)
			}
		})
	}
}

func TestValidateAcceptsCompliantPassword(t *testing.T) {
	policy := DefaultPolicy()

	if err := policy.Validate("Sufficient1!"); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}
	if !policy.IsValid("Sufficient1!") {
		t.Fatal("IsValid() = false, want true")
	}
}

func TestValidateRespectsDisabledRules(t *testing.T) {
	policy := Policy{MinLength: 4}

	if err := policy.Validate("weak"); err != nil {
		t.Fatalf("Validate() with all rules off = %v, want nil", err)
	}
}

func TestRequirementsMatchesActiveRules(t *testing.T) {
	rules := DefaultPolicy().Requirements()
	if len(rules) != 4 {
		t.Fatalf("len(Requirements()) = %d, want 4", len(rules))
	}
	if !strings.Contains(rules[0], "8 characters") {
		t.Fatalf("first rule = %q, want the length rule", rules[0])
	}

	minimal := Policy{MinLength: 6}
	if got := len(minimal.Requirements()); got != 1 {
		t.Fatalf("len(Requirements()) with rules off = %d, want 1", got)
	}
}
