package ticketauth

import "sync/atomic"

// MetricID indexes the engine's counters.
type MetricID uint16

const (
	// MetricLoginSuccess counts successful credential validations.
	MetricLoginSuccess MetricID = iota
	// MetricLoginFailure counts rejected logins (unknown account,
	// wrong password, or disabled account).
	MetricLoginFailure
	// MetricPairIssued counts minted access/refresh pairs.
	MetricPairIssued
	// MetricAccessRejected counts access token verification failures.
	MetricAccessRejected
	// MetricRefreshSuccess counts successful refresh exchanges.
	MetricRefreshSuccess
	// MetricRefreshRejected counts refresh token verification failures.
	MetricRefreshRejected
	// MetricVerificationRequest counts email verification requests.
	MetricVerificationRequest
	// MetricVerificationConfirm counts consumed verification tokens.
	MetricVerificationConfirm
	// MetricResetRequest counts password reset requests.
	MetricResetRequest
	// MetricResetConfirm counts consumed reset tokens.
	MetricResetConfirm
	// MetricPasswordRehash counts lazy rehash-on-login upgrades.
	MetricPasswordRehash

	metricCount
)

// Metrics is a fixed array of atomic counters. Increment is lock-free
// and allocation-free on the request path.
type Metrics struct {
	counters [metricCount]atomic.Uint64
}

// MetricsSnapshot is a point-in-time copy of every counter.
type MetricsSnapshot struct {
	Counters map[MetricID]uint64
}

func newMetrics(cfg MetricsConfig) *Metrics {
	if !cfg.Enabled {
		return nil
	}
	return &Metrics{}
}

func (m *Metrics) inc(id MetricID) {
	if m == nil || id >= metricCount {
		return
	}
	m.counters[id].Add(1)
}

// Snapshot copies the current counter values.
func (m *Metrics) Snapshot() MetricsSnapshot {
	snap := MetricsSnapshot{Counters: make(map[MetricID]uint64, metricCount)}
	if m == nil {
		return snap
	}

	for id := MetricID(0); id < metricCount; id++ {
		snap.Counters[id] = m.counters[id].Load()
	}
	return snap
}
