package authtrust

import (
	"sync/atomic"
	"time"
)

// MetricID identifies one engine counter or histogram.
type MetricID uint16

const (
	// MetricOTPIssued counts issued delivery challenges.
	MetricOTPIssued MetricID = iota
	// MetricOTPDeliveryFailure counts send attempts the sender rejected.
	MetricOTPDeliveryFailure
	// MetricOTPVerified counts successful challenge verifications.
	MetricOTPVerified
	// MetricOTPInvalid counts code mismatches.
	MetricOTPInvalid
	// MetricOTPExpired counts codes presented after their TTL.
	MetricOTPExpired
	// MetricOTPReplay counts re-use of an already consumed challenge.
	MetricOTPReplay
	// MetricTOTPSuccess counts accepted authenticator codes.
	MetricTOTPSuccess
	// MetricTOTPFailure counts rejected authenticator codes.
	MetricTOTPFailure
	// MetricBackupCodesGenerated counts generated recovery code batches.
	MetricBackupCodesGenerated
	// MetricBackupCodeUsed counts consumed recovery codes.
	MetricBackupCodeUsed
	// MetricBackupCodeFailed counts rejected recovery codes.
	MetricBackupCodeFailed
	// MetricAttemptRateLimited counts verifications denied by the budget.
	MetricAttemptRateLimited
	// MetricSessionTracked counts tracked sessions.
	MetricSessionTracked
	// MetricSessionTerminated counts terminated sessions.
	MetricSessionTerminated
	// MetricImpossibleTravel counts impossible-travel events.
	MetricImpossibleTravel
	// MetricMultipleDevices counts multiple-devices events.
	MetricMultipleDevices
	// MetricRapidLogins counts rapid-login events.
	MetricRapidLogins
	// MetricUnusualHours counts unusual-hours events.
	MetricUnusualHours
	// MetricEventEmitted counts all security events appended to the log.
	MetricEventEmitted
	// MetricEventDispatched counts events handed to the sink dispatcher.
	MetricEventDispatched
	// MetricGrantIssued counts issued verification grants.
	MetricGrantIssued
	// MetricGrantRejected counts grants that failed validation.
	MetricGrantRejected
	// MetricVerifyLatency is the verification latency histogram.
	MetricVerifyLatency
	metricIDCount
)

const (
	histBucketCount = 8
	cacheLineSize   = 64
)

type metricHistogram struct {
	buckets [histBucketCount]uint64
}

type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Metrics is the engine's in-process counter set. Counters are cache-line
// padded so hot-path increments on different IDs never share a line.
type Metrics struct {
	enabled       bool
	enableLatency bool
	counters      [metricIDCount]paddedCounter
	histograms    [metricIDCount]metricHistogram
}

// MetricsSnapshot is a point-in-time copy of all counters and histograms.
type MetricsSnapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}

// NewMetrics creates a metrics set. A disabled set is safe to use; all
// operations are no-ops.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{
		enabled:       cfg.Enabled,
		enableLatency: cfg.Enabled && cfg.EnableLatencyHistograms,
	}
}

// Enabled reports whether counters are being recorded.
func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

// LatencyEnabled reports whether the latency histogram is being recorded.
func (m *Metrics) LatencyEnabled() bool {
	return m != nil && m.enableLatency
}

// Inc adds one to a counter. Safe on a nil or disabled receiver.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Observe records a verification latency sample.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if m == nil || !m.enabled || !m.enableLatency || id >= metricIDCount {
		return
	}
	if id != MetricVerifyLatency {
		return
	}

	b := bucketIndex(d)
	atomic.AddUint64(&m.histograms[id].buckets[b], 1)
}

// Value returns the current value of one counter.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot copies all counters and, when latency recording is on, the
// verification histogram.
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil || !m.enabled {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}

	s := MetricsSnapshot{
		Counters:   make(map[MetricID]uint64, int(metricIDCount)),
		Histograms: make(map[MetricID][]uint64, 1),
	}

	for id := MetricID(0); id < metricIDCount; id++ {
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}

	if m.enableLatency {
		buckets := make([]uint64, histBucketCount)
		for i := 0; i < histBucketCount; i++ {
			buckets[i] = atomic.LoadUint64(&m.histograms[MetricVerifyLatency].buckets[i])
		}
		s.Histograms[MetricVerifyLatency] = buckets
	}

	return s
}

func bucketIndex(d time.Duration) int {
	ms := d.Milliseconds()

	switch {
	case ms <= 5:
		return 0
	case ms <= 10:
		return 1
	case ms <= 25:
		return 2
	case ms <= 50:
		return 3
	case ms <= 100:
		return 4
	case ms <= 250:
		return 5
	case ms <= 500:
		return 6
	default:
		return 7
	}
}
