package metrics

import "sync/atomic"

// MetricID identifies a counter.
type MetricID uint16

const (
	// SessionRestored counts startups that restored a session from a valid token.
	SessionRestored MetricID = iota
	// SessionAnonymous counts startups without a usable token.
	SessionAnonymous
	// SessionExpiredPurged counts startups that purged an expired token.
	SessionExpiredPurged
	// TokenDecodeFailure counts tokens that could not be turned into a user.
	TokenDecodeFailure
	// StorageFailure counts storage errors seen by the session store.
	StorageFailure
	Login
	Logout
	RegistrationSuccess
	RegistrationFailure
	// AutoLoginFailure counts registrations whose follow-up login did not produce a session.
	AutoLoginFailure
	// PaymentRedirectNoSession counts payment return pages reached without a session.
	PaymentRedirectNoSession
	metricIDCount
)

const cacheLineSize = 64

type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Config toggles metric collection.
type Config struct {
	Enabled bool
}

// Metrics is a fixed set of counters. A nil or disabled Metrics ignores writes.
type Metrics struct {
	enabled  bool
	counters [metricIDCount]paddedCounter
}

// Snapshot is a point-in-time copy of all counters.
type Snapshot struct {
	Counters map[MetricID]uint64
}

// New creates a [Metrics].
func New(cfg Config) *Metrics {
	return &Metrics{enabled: cfg.Enabled}
}

// Enabled reports whether writes are recorded.
func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

// Inc adds one to the counter.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Value returns the current counter value.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot copies all counters. A disabled Metrics returns an empty snapshot.
func (m *Metrics) Snapshot() Snapshot {
	if m == nil || !m.enabled {
		return Snapshot{Counters: map[MetricID]uint64{}}
	}

	s := Snapshot{Counters: make(map[MetricID]uint64, int(metricIDCount))}
	for id := MetricID(0); id < metricIDCount; id++ {
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}
	return s
}
