// Package profile persists caregiver profiles keyed by identity.
package profile

import (
	"context"

	"carehub/internal/registry/models"
	id "carehub/pkg/domain"
)

// Store is the persistence contract for caregiver profiles. Implementations
// return pkg/platform/sentinel errors for infrastructure facts; the service
// translates them into domain errors.
type Store interface {
	// Create inserts a new profile. Returns sentinel.ErrConflict if the
	// identity already has one.
	Create(ctx context.Context, p *models.Profile) error
	// FindByIdentity returns the profile for an identity, or
	// sentinel.ErrNotFound.
	FindByIdentity(ctx context.Context, identity id.Identity) (*models.Profile, error)
	// Update overwrites an existing profile. Returns sentinel.ErrNotFound if
	// the identity has none.
	Update(ctx context.Context, p *models.Profile) error
	// Count returns the number of stored profiles.
	Count(ctx context.Context) (int, error)
}
