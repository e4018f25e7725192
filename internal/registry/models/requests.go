package models

import dErrors "carehub/pkg/domain-errors"

var errNegativeExperience = dErrors.New(dErrors.CodeInvalidInput, "experience years cannot be negative")

// UpdateProfileRequest carries the optional fields of a partial profile
// update. Nil means "retain the stored value". Certifications, reputation
// counters, and the verification flag are never touched by updates.
type UpdateProfileRequest struct {
	Name            *string `json:"name,omitempty"`
	Bio             *[]byte `json:"bio,omitempty"`
	ExperienceYears *int    `json:"experience_years,omitempty"`
	IsAvailable     *bool   `json:"is_available,omitempty"`
}

// Validate checks only the fields that were provided, against the same
// bounds the constructor enforces.
func (r *UpdateProfileRequest) Validate() error {
	if r.Name != nil {
		if err := ValidateName(*r.Name); err != nil {
			return err
		}
	}
	if r.Bio != nil {
		if err := ValidateBio(*r.Bio); err != nil {
			return err
		}
	}
	if r.ExperienceYears != nil && *r.ExperienceYears < 0 {
		return errNegativeExperience
	}
	return nil
}

// Apply merges the provided fields into p, field by field, and refreshes
// LastUpdated unconditionally. Call Validate first.
func (r *UpdateProfileRequest) Apply(p *Profile, height uint64) {
	if r.Name != nil {
		p.Name = *r.Name
	}
	if r.Bio != nil {
		p.Bio = append([]byte(nil), *r.Bio...)
	}
	if r.ExperienceYears != nil {
		p.ExperienceYears = *r.ExperienceYears
	}
	if r.IsAvailable != nil {
		p.IsAvailable = *r.IsAvailable
	}
	p.LastUpdated = height
}
