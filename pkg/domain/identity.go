package domain

import (
	"strings"

	dErrors "carehub/pkg/domain-errors"
)

// Identity is the principal value that keys a caregiver profile and
// authenticates calls. It is an opaque address string: the platform does
// not interpret it beyond equality.
//
// Invariants enforced at parse time:
//   - non-empty
//   - no surrounding or embedded whitespace
//   - at most MaxIdentityLen bytes
type Identity string

// Zero is the absent identity. It is never a valid caller and never keys a
// profile; configuration slots (reputation updater) use it to mean "unset".
const Zero Identity = ""

// MaxIdentityLen bounds identity strings so storage keys stay sane.
const MaxIdentityLen = 128

// Parse validates and returns an Identity.
func Parse(s string) (Identity, error) {
	if s == "" {
		return Zero, dErrors.New(dErrors.CodeInvalidInput, "identity cannot be empty")
	}
	if len(s) > MaxIdentityLen {
		return Zero, dErrors.New(dErrors.CodeInvalidInput, "identity exceeds maximum length")
	}
	if strings.ContainsFunc(s, func(r rune) bool { return r == ' ' || r == '\t' || r == '\n' || r == '\r' }) {
		return Zero, dErrors.New(dErrors.CodeInvalidInput, "identity cannot contain whitespace")
	}
	return Identity(s), nil
}

// IsZero reports whether the identity is unset.
func (i Identity) IsZero() bool {
	return i == Zero
}

func (i Identity) String() string {
	return string(i)
}
