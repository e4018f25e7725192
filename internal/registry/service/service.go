// Package service implements the caregiver registry operations: profile
// registration and updates, certification management, admin verification,
// and delegated reputation accrual.
//
// Every mutating operation validates all of its preconditions against a
// snapshot before writing anything, so a failed operation leaves profile and
// platform state untouched. Ordering across operations is the caller's
// concern; each operation is one atomic unit of work.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"carehub/internal/platform/middleware"
	"carehub/internal/registry/gate"
	"carehub/internal/registry/metrics"
	"carehub/internal/registry/models"
	"carehub/internal/registry/store/profile"
	id "carehub/pkg/domain"
	dErrors "carehub/pkg/domain-errors"
	"carehub/pkg/platform/audit"
	"carehub/pkg/platform/sentinel"
)

// Clock supplies the logical timestamp recorded on every profile mutation.
// In production it mirrors an external block-height style counter; the
// default falls back to unix seconds.
type Clock func() uint64

// ScoreCache is the optional read cache consulted by ReputationScore.
// Failures degrade to store reads.
type ScoreCache interface {
	Score(ctx context.Context, identity id.Identity) (uint64, error)
	SetScore(ctx context.Context, identity id.Identity, score uint64) error
	Invalidate(ctx context.Context, identity id.Identity) error
}

// AuditPublisher receives an event after every successful mutation.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service orchestrates the profile registry behind the platform gate.
type Service struct {
	profiles       profile.Store
	gate           *gate.Gate
	clock          Clock
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
	scores         ScoreCache
	tracer         trace.Tracer
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithClock(clock Clock) Option {
	return func(s *Service) {
		s.clock = clock
	}
}

func WithScoreCache(cache ScoreCache) Option {
	return func(s *Service) {
		s.scores = cache
	}
}

// New constructs a Service.
func New(profiles profile.Store, g *gate.Gate, opts ...Option) *Service {
	s := &Service{
		profiles: profiles,
		gate:     g,
		clock:    func() uint64 { return uint64(time.Now().Unix()) },
		tracer:   otel.Tracer("carehub/registry"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RegisterProfile creates the caller's profile. The caller becomes the owner
// of the new record, which starts unverified with zeroed reputation.
func (s *Service) RegisterProfile(ctx context.Context, caller id.Identity, name string, bio []byte, experienceYears int, certifications []string, available bool) (*models.Profile, error) {
	ctx, span := s.tracer.Start(ctx, "registry.RegisterProfile")
	defer span.End()
	start := time.Now()

	if err := s.gate.RequireNotPaused(); err != nil {
		return nil, err
	}
	if _, err := s.profiles.FindByIdentity(ctx, caller); err == nil {
		return nil, dErrors.New(dErrors.CodeProfileExists, "profile already exists for identity")
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check existing profile")
	}

	p, err := models.NewProfile(caller, name, bio, experienceYears, certifications, available, s.clock())
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.New(dErrors.CodeValidation, err.Error())
		}
		return nil, err
	}

	if err := s.profiles.Create(ctx, p); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeProfileExists, "profile already exists for identity")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create profile")
	}

	s.logAudit(ctx, audit.EventProfileRegistered, caller, caller, "")
	if s.metrics != nil {
		s.metrics.IncrementProfilesRegistered()
		s.metrics.ObserveRegister(start)
	}
	return p, nil
}

// UpdateProfile applies a partial update to the caller's own profile.
// Omitted fields retain their stored values; certifications, reputation
// counters, and the verification flag are never touched here.
func (s *Service) UpdateProfile(ctx context.Context, caller id.Identity, req *models.UpdateProfileRequest) (*models.Profile, error) {
	ctx, span := s.tracer.Start(ctx, "registry.UpdateProfile")
	defer span.End()

	if err := s.gate.RequireNotPaused(); err != nil {
		return nil, err
	}
	p, err := s.findProfile(ctx, caller)
	if err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	req.Apply(p, s.clock())
	if err := s.saveProfile(ctx, p); err != nil {
		return nil, err
	}

	s.logAudit(ctx, audit.EventProfileUpdated, caller, caller, "")
	return p, nil
}

// AddCertification appends a certification to the caller's profile,
// preserving order and the capacity bound.
func (s *Service) AddCertification(ctx context.Context, caller id.Identity, cert string) (*models.Profile, error) {
	ctx, span := s.tracer.Start(ctx, "registry.AddCertification")
	defer span.End()

	if err := s.gate.RequireNotPaused(); err != nil {
		return nil, err
	}
	p, err := s.findProfile(ctx, caller)
	if err != nil {
		return nil, err
	}
	if err := p.AddCertification(cert, s.clock()); err != nil {
		return nil, err
	}
	if err := s.saveProfile(ctx, p); err != nil {
		return nil, err
	}

	s.logAudit(ctx, audit.EventCertificationAdded, caller, caller, cert)
	if s.metrics != nil {
		s.metrics.IncrementCertificationChanges()
	}
	return p, nil
}

// RemoveCertification removes the entry at index from the caller's profile.
// Removal is positional; remaining entries keep their relative order.
func (s *Service) RemoveCertification(ctx context.Context, caller id.Identity, index int) (*models.Profile, error) {
	ctx, span := s.tracer.Start(ctx, "registry.RemoveCertification")
	defer span.End()

	if err := s.gate.RequireNotPaused(); err != nil {
		return nil, err
	}
	p, err := s.findProfile(ctx, caller)
	if err != nil {
		return nil, err
	}
	if err := p.RemoveCertification(index, s.clock()); err != nil {
		return nil, err
	}
	if err := s.saveProfile(ctx, p); err != nil {
		return nil, err
	}

	s.logAudit(ctx, audit.EventCertificationRemoved, caller, caller, fmt.Sprintf("index=%d", index))
	if s.metrics != nil {
		s.metrics.IncrementCertificationChanges()
	}
	return p, nil
}

// VerifyProfile marks a caregiver's profile verified. Admin only; the
// transition is one-way and happens at most once per profile.
func (s *Service) VerifyProfile(ctx context.Context, caller, caregiver id.Identity) (*models.Profile, error) {
	ctx, span := s.tracer.Start(ctx, "registry.VerifyProfile")
	defer span.End()

	if err := s.gate.RequireNotPaused(); err != nil {
		return nil, err
	}
	if err := s.gate.RequireAdmin(caller); err != nil {
		return nil, err
	}
	p, err := s.findProfile(ctx, caregiver)
	if err != nil {
		return nil, err
	}
	if err := p.CanVerify(); err != nil {
		return nil, err
	}

	p.ApplyVerification(s.clock())
	if err := s.saveProfile(ctx, p); err != nil {
		return nil, err
	}

	s.logAudit(ctx, audit.EventProfileVerified, caregiver, caller, "")
	if s.metrics != nil {
		s.metrics.IncrementProfilesVerified()
	}
	return p, nil
}

// UpdateReputation accrues score and review increments on a verified
// profile. While no updater delegate is configured the operation is open to
// any caller; once configured, only the delegate may call.
func (s *Service) UpdateReputation(ctx context.Context, caller, caregiver id.Identity, scoreAdd int64, reviewAdd uint64) (*models.Profile, error) {
	ctx, span := s.tracer.Start(ctx, "registry.UpdateReputation")
	defer span.End()
	start := time.Now()

	if err := s.gate.RequireNotPaused(); err != nil {
		return nil, err
	}
	if err := s.gate.AuthorizeReputation(caller); err != nil {
		return nil, err
	}
	if scoreAdd <= 0 {
		return nil, dErrors.New(dErrors.CodeInvalidReputation, "score increment must be positive")
	}
	p, err := s.findProfile(ctx, caregiver)
	if err != nil {
		return nil, err
	}
	if err := p.CanAccrueReputation(scoreAdd); err != nil {
		return nil, err
	}

	p.ApplyReputation(uint64(scoreAdd), reviewAdd, s.clock())
	if err := s.saveProfile(ctx, p); err != nil {
		return nil, err
	}
	s.invalidateScore(ctx, caregiver)

	s.logAudit(ctx, audit.EventReputationUpdated, caregiver, caller,
		fmt.Sprintf("score_add=%d review_add=%d", scoreAdd, reviewAdd))
	if s.metrics != nil {
		s.metrics.IncrementReputationUpdates()
		s.metrics.ObserveReputation(start)
	}
	return p, nil
}

// TransferAdmin hands platform administration to a different identity.
func (s *Service) TransferAdmin(ctx context.Context, caller, next id.Identity) error {
	ctx, span := s.tracer.Start(ctx, "registry.TransferAdmin")
	defer span.End()

	if err := s.gate.TransferAdmin(caller, next); err != nil {
		return err
	}
	s.logAudit(ctx, audit.EventAdminTransferred, next, caller, "")
	return nil
}

// SetReputationUpdater stores or clears the reputation delegate. Clearing it
// reopens accrual to any caller.
func (s *Service) SetReputationUpdater(ctx context.Context, caller, updater id.Identity) error {
	ctx, span := s.tracer.Start(ctx, "registry.SetReputationUpdater")
	defer span.End()

	if err := s.gate.SetReputationUpdater(caller, updater); err != nil {
		return err
	}
	s.logAudit(ctx, audit.EventReputationUpdaterSet, updater, caller, "")
	return nil
}

// SetPaused toggles the pause switch. Admin only, and intentionally usable
// while paused so the platform can always be unpaused.
func (s *Service) SetPaused(ctx context.Context, caller id.Identity, paused bool) error {
	ctx, span := s.tracer.Start(ctx, "registry.SetPaused")
	defer span.End()

	if err := s.gate.SetPaused(caller, paused); err != nil {
		return err
	}
	s.logAudit(ctx, audit.EventPlatformPauseToggled, id.Zero, caller, fmt.Sprintf("paused=%t", paused))
	if s.metrics != nil {
		s.metrics.SetPaused(paused)
	}
	return nil
}

// GetProfile returns the profile for an identity. The bool reports whether
// one exists; only infrastructure failures produce an error.
func (s *Service) GetProfile(ctx context.Context, identity id.Identity) (*models.Profile, bool, error) {
	p, err := s.profiles.FindByIdentity(ctx, identity)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load profile")
	}
	return p, true, nil
}

// ReputationScore returns the identity's reputation score, or 0 when no
// profile exists. The cache is consulted first when configured; cache
// failures fall through to the store.
func (s *Service) ReputationScore(ctx context.Context, identity id.Identity) (uint64, error) {
	if s.scores != nil {
		if score, err := s.scores.Score(ctx, identity); err == nil {
			return score, nil
		}
	}

	p, err := s.profiles.FindByIdentity(ctx, identity)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return 0, nil
		}
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load profile")
	}

	if s.scores != nil {
		if err := s.scores.SetScore(ctx, identity, p.ReputationScore); err != nil {
			s.logWarn(ctx, "reputation cache write failed", "identity", identity.String(), "error", err)
		}
	}
	return p.ReputationScore, nil
}

// Admin returns the current platform admin.
func (s *Service) Admin() id.Identity {
	return s.gate.Admin()
}

// Paused reports the pause switch.
func (s *Service) Paused() bool {
	return s.gate.Paused()
}

// ReputationUpdater returns the configured delegate, or the zero identity.
func (s *Service) ReputationUpdater() id.Identity {
	return s.gate.ReputationUpdater()
}

func (s *Service) findProfile(ctx context.Context, identity id.Identity) (*models.Profile, error) {
	p, err := s.profiles.FindByIdentity(ctx, identity)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "profile not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load profile")
	}
	return p, nil
}

func (s *Service) saveProfile(ctx context.Context, p *models.Profile) error {
	if err := s.profiles.Update(ctx, p); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "profile not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save profile")
	}
	return nil
}

func (s *Service) invalidateScore(ctx context.Context, identity id.Identity) {
	if s.scores == nil {
		return
	}
	if err := s.scores.Invalidate(ctx, identity); err != nil {
		s.logWarn(ctx, "reputation cache invalidation failed", "identity", identity.String(), "error", err)
	}
}

func (s *Service) logAudit(ctx context.Context, event audit.AuditEvent, subject, actor id.Identity, value string) {
	requestID := middleware.GetRequestID(ctx)
	if s.logger != nil {
		s.logger.InfoContext(ctx, string(event),
			"identity", subject.String(),
			"actor", actor.String(),
			"value", value,
			"request_id", requestID,
			"event", string(event),
			"log_type", "audit",
		)
	}
	if s.auditPublisher == nil {
		return
	}
	_ = s.auditPublisher.Emit(ctx, audit.Event{
		Category:  event.Category(),
		Timestamp: time.Now(),
		Identity:  subject,
		Actor:     actor,
		Action:    string(event),
		Value:     value,
		RequestID: requestID,
	})
}

func (s *Service) logWarn(ctx context.Context, msg string, args ...any) {
	if s.logger != nil {
		s.logger.WarnContext(ctx, msg, args...)
	}
}
