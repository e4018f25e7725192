package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the registry module.
// Tracks profile lifecycle counts and critical path durations.
type Metrics struct {
	ProfilesRegistered   prometheus.Counter
	ProfilesVerified     prometheus.Counter
	ReputationUpdates    prometheus.Counter
	CertificationChanges prometheus.Counter
	PlatformPaused       prometheus.Gauge
	RegisterDuration     prometheus.Histogram
	ReputationDuration   prometheus.Histogram
}

// New creates a new Metrics instance with all registry module metrics registered.
func New() *Metrics {
	return &Metrics{
		ProfilesRegistered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "carehub_profiles_registered_total",
			Help: "Total number of caregiver profiles registered",
		}),
		ProfilesVerified: promauto.NewCounter(prometheus.CounterOpts{
			Name: "carehub_profiles_verified_total",
			Help: "Total number of profiles verified by an admin",
		}),
		ReputationUpdates: promauto.NewCounter(prometheus.CounterOpts{
			Name: "carehub_reputation_updates_total",
			Help: "Total number of successful reputation accruals",
		}),
		CertificationChanges: promauto.NewCounter(prometheus.CounterOpts{
			Name: "carehub_certification_changes_total",
			Help: "Total number of certification additions and removals",
		}),
		PlatformPaused: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "carehub_platform_paused",
			Help: "1 while the platform pause switch is on, 0 otherwise",
		}),
		RegisterDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "carehub_register_profile_duration_seconds",
			Help:    "Duration of RegisterProfile operations",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		ReputationDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "carehub_update_reputation_duration_seconds",
			Help:    "Duration of UpdateReputation operations (external updater path)",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// IncrementProfilesRegistered records a successful registration.
func (m *Metrics) IncrementProfilesRegistered() {
	m.ProfilesRegistered.Inc()
}

// IncrementProfilesVerified records a successful verification.
func (m *Metrics) IncrementProfilesVerified() {
	m.ProfilesVerified.Inc()
}

// IncrementReputationUpdates records a successful reputation accrual.
func (m *Metrics) IncrementReputationUpdates() {
	m.ReputationUpdates.Inc()
}

// IncrementCertificationChanges records a certification add or remove.
func (m *Metrics) IncrementCertificationChanges() {
	m.CertificationChanges.Inc()
}

// SetPaused mirrors the pause switch into the gauge.
func (m *Metrics) SetPaused(paused bool) {
	if paused {
		m.PlatformPaused.Set(1)
		return
	}
	m.PlatformPaused.Set(0)
}

// ObserveRegister records the duration of a RegisterProfile operation.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveRegister(start time.Time) {
	m.RegisterDuration.Observe(time.Since(start).Seconds())
}

// ObserveReputation records the duration of an UpdateReputation operation.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveReputation(start time.Time) {
	m.ReputationDuration.Observe(time.Since(start).Seconds())
}
