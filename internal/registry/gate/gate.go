// Package gate holds the process-wide platform state: the admin identity,
// the pause flag, and the optional reputation-updater delegate.
//
// It is an explicit object injected into the service rather than a package
// global, so tests construct isolated instances.
package gate

import (
	"sync"

	id "carehub/pkg/domain"
	dErrors "carehub/pkg/domain-errors"
)

// Gate answers role questions and owns the three admin configuration
// operations. A mutex guards the scalars because the HTTP layer is
// concurrent even though each registry operation is logically one unit of
// work.
type Gate struct {
	mu      sync.RWMutex
	admin   id.Identity
	paused  bool
	updater id.Identity
}

// New constructs a Gate with the given bootstrap admin. The platform is
// unpaused and has no reputation updater until an admin configures one.
func New(admin id.Identity) (*Gate, error) {
	if admin.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "admin identity cannot be zero")
	}
	return &Gate{admin: admin}, nil
}

// TransferAdmin replaces the admin identity. Only the current admin may
// call, and the new admin must be a non-zero identity other than the caller.
func (g *Gate) TransferAdmin(caller, next id.Identity) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if caller != g.admin {
		return errNotAdmin
	}
	if next.IsZero() || next == caller {
		return dErrors.New(dErrors.CodeZeroAddress, "new admin must be a different, non-zero identity")
	}
	g.admin = next
	return nil
}

// SetReputationUpdater stores or clears the delegate allowed to accrue
// reputation. Admin only. The zero identity clears the slot, reopening
// accrual to any caller.
func (g *Gate) SetReputationUpdater(caller, updater id.Identity) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if caller != g.admin {
		return errNotAdmin
	}
	g.updater = updater
	return nil
}

// SetPaused toggles the global pause flag. Admin only. Deliberately not
// pause-gated itself, so an admin can always unpause.
func (g *Gate) SetPaused(caller id.Identity, paused bool) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if caller != g.admin {
		return errNotAdmin
	}
	g.paused = paused
	return nil
}

// RequireAdmin fails unless caller is the current admin.
func (g *Gate) RequireAdmin(caller id.Identity) error {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if caller != g.admin {
		return errNotAdmin
	}
	return nil
}

// RequireNotPaused fails while the platform is paused. Applied at the start
// of every mutating profile operation; the admin configuration calls skip it.
func (g *Gate) RequireNotPaused() error {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.paused {
		return dErrors.New(dErrors.CodePaused, "platform is paused")
	}
	return nil
}

// AuthorizeReputation decides whether caller may accrue reputation: either
// no updater is configured (accrual is open to anyone) or the caller is the
// configured updater. The open default is a bootstrap affordance inherited
// from the platform's launch configuration.
func (g *Gate) AuthorizeReputation(caller id.Identity) error {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.updater.IsZero() || caller == g.updater {
		return nil
	}
	return dErrors.New(dErrors.CodeNotAuthorized, "caller is not the reputation updater")
}

// Admin returns the current admin identity.
func (g *Gate) Admin() id.Identity {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.admin
}

// Paused reports the pause flag.
func (g *Gate) Paused() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.paused
}

// ReputationUpdater returns the configured delegate, or the zero identity
// when unset.
func (g *Gate) ReputationUpdater() id.Identity {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.updater
}

var errNotAdmin = dErrors.New(dErrors.CodeNotAuthorized, "caller is not the admin")
