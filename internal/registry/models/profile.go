package models

import (
	"slices"
	"unicode/utf8"

	id "carehub/pkg/domain"
	dErrors "carehub/pkg/domain-errors"
)

// Field bounds for caregiver profiles. Enforced by the constructor and by
// every mutation, so a stored profile can never violate them.
const (
	MaxNameLen        = 50  // characters
	MaxBioBytes       = 500 // raw bytes
	MaxCertifications = 10  // list length
	MaxCertLen        = 100 // characters per entry
)

// Profile is the aggregate root for a caregiver.
//
// Invariants:
//   - keyed by a non-zero Identity; exactly one profile per identity
//   - Name ≤ 50 characters, Bio ≤ 500 bytes
//   - Certifications holds at most 10 entries of at most 100 characters,
//     order-preserving
//   - IsVerified transitions false→true at most once and never reverts
//   - ReputationScore and ReviewCount never decrease
//   - LastUpdated is refreshed on every successful mutation
//
// Reputation may only accrue on verified profiles; the check lives in
// CanAccrueReputation so the service and the model cannot drift.
type Profile struct {
	Identity        id.Identity `json:"identity"`
	Name            string      `json:"name"`
	Bio             []byte      `json:"bio"`
	ExperienceYears int         `json:"experience_years"`
	Certifications  []string    `json:"certifications"`
	IsAvailable     bool        `json:"is_available"`
	ReputationScore uint64      `json:"reputation_score"`
	ReviewCount     uint64      `json:"review_count"`
	IsVerified      bool        `json:"is_verified"`
	LastUpdated     uint64      `json:"last_updated"`
}

// NewProfile validates all field bounds and returns a fresh, unverified
// profile with zeroed reputation counters.
func NewProfile(identity id.Identity, name string, bio []byte, experienceYears int, certifications []string, available bool, height uint64) (*Profile, error) {
	if identity.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "profile identity cannot be zero")
	}
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	if err := ValidateBio(bio); err != nil {
		return nil, err
	}
	if experienceYears < 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "experience years cannot be negative")
	}
	if len(certifications) > MaxCertifications {
		return nil, dErrors.New(dErrors.CodeMaxCertifications, "too many certifications")
	}
	for _, cert := range certifications {
		if err := ValidateCertification(cert); err != nil {
			return nil, err
		}
	}
	return &Profile{
		Identity:        identity,
		Name:            name,
		Bio:             slices.Clone(bio),
		ExperienceYears: experienceYears,
		Certifications:  slices.Clone(certifications),
		IsAvailable:     available,
		LastUpdated:     height,
	}, nil
}

// ValidateName enforces the 50-character bound.
func ValidateName(name string) error {
	if utf8.RuneCountInString(name) > MaxNameLen {
		return dErrors.Newf(dErrors.CodeInvalidInput, "name exceeds %d characters", MaxNameLen)
	}
	return nil
}

// ValidateBio enforces the 500-byte bound.
func ValidateBio(bio []byte) error {
	if len(bio) > MaxBioBytes {
		return dErrors.Newf(dErrors.CodeInvalidInput, "bio exceeds %d bytes", MaxBioBytes)
	}
	return nil
}

// ValidateCertification enforces the 100-character bound on a single entry.
func ValidateCertification(cert string) error {
	if utf8.RuneCountInString(cert) > MaxCertLen {
		return dErrors.Newf(dErrors.CodeInvalidInput, "certification exceeds %d characters", MaxCertLen)
	}
	return nil
}

// AddCertification appends cert at the end of the list, preserving order.
func (p *Profile) AddCertification(cert string, height uint64) error {
	if err := ValidateCertification(cert); err != nil {
		return err
	}
	if len(p.Certifications) >= MaxCertifications {
		return dErrors.New(dErrors.CodeMaxCertifications, "certification list is at capacity")
	}
	p.Certifications = append(p.Certifications, cert)
	p.LastUpdated = height
	return nil
}

// RemoveCertification removes exactly one entry by position: the result is
// everything before index joined with everything after it, relative order
// intact. Never value-based filtering.
func (p *Profile) RemoveCertification(index int, height uint64) error {
	if index < 0 || index >= len(p.Certifications) {
		return dErrors.New(dErrors.CodeInvalidInput, "certification index out of range")
	}
	p.Certifications = append(p.Certifications[:index], p.Certifications[index+1:]...)
	p.LastUpdated = height
	return nil
}

// CanVerify checks the one-way verification transition.
func (p *Profile) CanVerify() error {
	if p.IsVerified {
		return dErrors.New(dErrors.CodeAlreadyVerified, "profile is already verified")
	}
	return nil
}

// ApplyVerification marks the profile verified. Call CanVerify first.
// No operation ever clears the flag.
func (p *Profile) ApplyVerification(height uint64) {
	p.IsVerified = true
	p.LastUpdated = height
}

// CanAccrueReputation checks preconditions for reputation accrual:
// a positive score increment and a verified profile.
func (p *Profile) CanAccrueReputation(scoreAdd int64) error {
	if scoreAdd <= 0 {
		return dErrors.New(dErrors.CodeInvalidReputation, "score increment must be positive")
	}
	if !p.IsVerified {
		return dErrors.New(dErrors.CodeNotVerified, "profile is not verified")
	}
	return nil
}

// ApplyReputation adds the increments to the monotone counters. Saturating,
// so a pathological increment cannot wrap a counter backwards.
func (p *Profile) ApplyReputation(scoreAdd, reviewAdd uint64, height uint64) {
	p.ReputationScore = saturatingAdd(p.ReputationScore, scoreAdd)
	p.ReviewCount = saturatingAdd(p.ReviewCount, reviewAdd)
	p.LastUpdated = height
}

func saturatingAdd(a, b uint64) uint64 {
	if sum := a + b; sum >= a {
		return sum
	}
	return ^uint64(0)
}

// Clone returns a deep copy so callers can stage changes against a snapshot
// and discard them if any precondition fails.
func (p *Profile) Clone() *Profile {
	clone := *p
	clone.Bio = slices.Clone(p.Bio)
	clone.Certifications = slices.Clone(p.Certifications)
	return &clone
}
