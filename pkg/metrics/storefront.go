package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Persistence outcomes.
const (
	ResultOK       = "ok"
	ResultError    = "error"
	ResultSkipped  = "skipped"
	ResultRestored = "restored"
	ResultEmpty    = "empty"
	ResultFallback = "fallback"
)

// StorefrontMetrics records engine activity, snapshot persistence and workspace churn.
// A nil receiver or one built without a registerer is a no-op.
type StorefrontMetrics struct {
	mutations     *prometheus.CounterVec
	writes        *prometheus.CounterVec
	writeDuration *prometheus.HistogramVec
	rehydrations  *prometheus.CounterVec
	workspaces    prometheus.Gauge
	evictions     prometheus.Counter
	discounts     *prometheus.CounterVec
	logins        *prometheus.CounterVec
}

// NewStorefrontMetrics registers the storefront metrics on the provided registerer.
func NewStorefrontMetrics(reg prometheus.Registerer) *StorefrontMetrics {
	if reg == nil {
		return &StorefrontMetrics{}
	}
	m := &StorefrontMetrics{
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "meaw_engine_mutations_total",
			Help: "State changes emitted by storefront engines.",
		}, []string{"store"}),
		writes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "meaw_snapshot_writes_total",
			Help: "Snapshot writes by store and result.",
		}, []string{"store", "result"}),
		writeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "meaw_snapshot_write_duration_seconds",
			Help:    "Duration of snapshot writes in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"store"}),
		rehydrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "meaw_snapshot_rehydrations_total",
			Help: "Snapshot loads at workspace start by store and result.",
		}, []string{"store", "result"}),
		workspaces: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "meaw_workspaces_active",
			Help: "Client workspaces currently held in memory.",
		}),
		evictions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "meaw_workspace_evictions_total",
			Help: "Client workspaces evicted from the registry.",
		}),
		discounts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "meaw_discount_attempts_total",
			Help: "Discount code applications by result.",
		}, []string{"result"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "meaw_login_attempts_total",
			Help: "Login and register attempts by result.",
		}, []string{"result"}),
	}
	reg.MustRegister(m.mutations, m.writes, m.writeDuration, m.rehydrations, m.workspaces, m.evictions, m.discounts, m.logins)
	return m
}

// IncMutation counts one emitted change for the named store.
func (m *StorefrontMetrics) IncMutation(store string) {
	if m == nil || m.mutations == nil {
		return
	}
	m.mutations.WithLabelValues(normalizeLabel(store)).Inc()
}

// ObserveWrite records a snapshot write and its outcome.
func (m *StorefrontMetrics) ObserveWrite(store, result string, duration time.Duration) {
	if m == nil || m.writes == nil {
		return
	}
	store = normalizeLabel(store)
	m.writes.WithLabelValues(store, normalizeLabel(result)).Inc()
	if result != ResultSkipped {
		m.writeDuration.WithLabelValues(store).Observe(duration.Seconds())
	}
}

// IncRehydration counts a snapshot load outcome.
func (m *StorefrontMetrics) IncRehydration(store, result string) {
	if m == nil || m.rehydrations == nil {
		return
	}
	m.rehydrations.WithLabelValues(normalizeLabel(store), normalizeLabel(result)).Inc()
}

// SetActiveWorkspaces publishes the registry size.
func (m *StorefrontMetrics) SetActiveWorkspaces(n int) {
	if m == nil || m.workspaces == nil {
		return
	}
	m.workspaces.Set(float64(n))
}

// IncEviction counts a workspace dropped by the registry.
func (m *StorefrontMetrics) IncEviction() {
	if m == nil || m.evictions == nil {
		return
	}
	m.evictions.Inc()
}

// IncDiscount counts a discount attempt outcome.
func (m *StorefrontMetrics) IncDiscount(result string) {
	if m == nil || m.discounts == nil {
		return
	}
	m.discounts.WithLabelValues(normalizeLabel(result)).Inc()
}

// IncLogin counts a login or register outcome.
func (m *StorefrontMetrics) IncLogin(result string) {
	if m == nil || m.logins == nil {
		return
	}
	m.logins.WithLabelValues(normalizeLabel(result)).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
