package audit

import (
	"context"
	"time"

	id "carehub/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose.
// This enables different retention policies, storage backends, and routing.
type EventCategory string

const (
	// CategoryCompliance covers events with legal/regulatory significance.
	// Examples: verification decisions, admin transfers.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers events relevant to security monitoring.
	// Examples: pause toggles, delegate changes.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers routine activity useful for debugging and
	// operational visibility. These can be sampled.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic after every successful mutation. It is
// advisory for external observers and indexers, never part of queryable
// state. Keep it transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category  EventCategory
	Timestamp time.Time
	// Identity is the profile the operation affected.
	Identity id.Identity
	// Actor is the caller that performed the operation, when different from
	// Identity (admin and updater operations).
	Actor id.Identity
	Action string
	// Value carries the operation's relevant value, e.g. a certification
	// text or a score increment, formatted for human consumption.
	Value string
	// RequestID is the correlation ID from the HTTP request context.
	RequestID string
}

// AuditEvent names a registry mutation.
type AuditEvent string

const (
	// Profile events
	EventProfileRegistered    AuditEvent = "profile_registered"
	EventProfileUpdated       AuditEvent = "profile_updated"
	EventCertificationAdded   AuditEvent = "certification_added"
	EventCertificationRemoved AuditEvent = "certification_removed"
	EventProfileVerified      AuditEvent = "profile_verified"
	EventReputationUpdated    AuditEvent = "reputation_updated"

	// Platform events
	EventAdminTransferred     AuditEvent = "admin_transferred"
	EventReputationUpdaterSet AuditEvent = "reputation_updater_set"
	EventPlatformPauseToggled AuditEvent = "platform_pause_toggled"
)

// eventCategories maps each audit event to its category.
var eventCategories = map[AuditEvent]EventCategory{
	// Compliance events - decisions external parties rely on
	EventProfileVerified:  CategoryCompliance,
	EventAdminTransferred: CategoryCompliance,

	// Security events - control-plane changes
	EventPlatformPauseToggled: CategorySecurity,
	EventReputationUpdaterSet: CategorySecurity,

	// Operations events - routine registry activity
	EventProfileRegistered:    CategoryOperations,
	EventProfileUpdated:       CategoryOperations,
	EventCertificationAdded:   CategoryOperations,
	EventCertificationRemoved: CategoryOperations,
	EventReputationUpdated:    CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
}
