package authtrust

import (
	"sync"
	"testing"
	"time"
)

func TestMetricsIncAndValue(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})

	m.Inc(MetricOTPIssued)
	m.Inc(MetricOTPIssued)
	m.Inc(MetricOTPVerified)

	if got := m.Value(MetricOTPIssued); got != 2 {
		t.Fatalf("expected 2, got %d", got)
	}
	if got := m.Value(MetricOTPVerified); got != 1 {
		t.Fatalf("expected 1, got %d", got)
	}
	if got := m.Value(MetricOTPExpired); got != 0 {
		t.Fatalf("expected untouched counter zero, got %d", got)
	}
}

func TestMetricsDisabledIsNoOp(t *testing.T) {
	m := NewMetrics(MetricsConfig{})

	m.Inc(MetricOTPIssued)
	m.Observe(MetricVerifyLatency, time.Millisecond)

	if m.Enabled() {
		t.Fatal("expected disabled set")
	}
	if got := m.Value(MetricOTPIssued); got != 0 {
		t.Fatalf("expected disabled counter to stay zero, got %d", got)
	}
	snap := m.Snapshot()
	if len(snap.Counters) != 0 || len(snap.Histograms) != 0 {
		t.Fatalf("expected empty snapshot, got %+v", snap)
	}
}

func TestMetricsNilReceiverSafe(t *testing.T) {
	var m *Metrics

	m.Inc(MetricOTPIssued)
	m.Observe(MetricVerifyLatency, time.Millisecond)
	if m.Value(MetricOTPIssued) != 0 || m.Enabled() {
		t.Fatal("nil receiver must read as zero and disabled")
	}
	if snap := m.Snapshot(); snap.Counters == nil {
		t.Fatal("expected non-nil maps from nil receiver snapshot")
	}
}

func TestMetricsObserveOnlyLatencyHistogram(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true, EnableLatencyHistograms: true})

	m.Observe(MetricVerifyLatency, 3*time.Millisecond)
	m.Observe(MetricVerifyLatency, 400*time.Millisecond)
	m.Observe(MetricOTPIssued, time.Millisecond)

	snap := m.Snapshot()
	buckets, ok := snap.Histograms[MetricVerifyLatency]
	if !ok {
		t.Fatal("expected latency histogram in snapshot")
	}
	if buckets[0] != 1 || buckets[6] != 1 {
		t.Fatalf("unexpected buckets: %v", buckets)
	}
	if _, ok := snap.Histograms[MetricOTPIssued]; ok {
		t.Fatal("counter IDs must not grow histograms")
	}
}

func TestMetricsObserveRequiresHistogramFlag(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})

	m.Observe(MetricVerifyLatency, time.Millisecond)
	if _, ok := m.Snapshot().Histograms[MetricVerifyLatency]; ok {
		t.Fatal("expected no histogram without the latency flag")
	}
}

func TestBucketIndexBoundaries(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want int
	}{
		{0, 0},
		{5 * time.Millisecond, 0},
		{6 * time.Millisecond, 1},
		{10 * time.Millisecond, 1},
		{25 * time.Millisecond, 2},
		{50 * time.Millisecond, 3},
		{100 * time.Millisecond, 4},
		{250 * time.Millisecond, 5},
		{500 * time.Millisecond, 6},
		{501 * time.Millisecond, 7},
		{time.Minute, 7},
	}

	for _, tc := range cases {
		if got := bucketIndex(tc.d); got != tc.want {
			t.Fatalf("bucketIndex(%v) = %d, want %d", tc.d, got, tc.want)
		}
	}
}

func TestMetricsSnapshotIsCopy(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})
	m.Inc(MetricOTPIssued)

	snap := m.Snapshot()
	m.Inc(MetricOTPIssued)

	if snap.Counters[MetricOTPIssued] != 1 {
		t.Fatalf("snapshot must not track later increments, got %d", snap.Counters[MetricOTPIssued])
	}
	if got := m.Value(MetricOTPIssued); got != 2 {
		t.Fatalf("expected live value 2, got %d", got)
	}
}

func TestMetricsConcurrentInc(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})

	const workers = 8
	const perWorker = 1000

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				m.Inc(MetricSessionTracked)
			}
		}()
	}
	wg.Wait()

	if got := m.Value(MetricSessionTracked); got != workers*perWorker {
		t.Fatalf("expected %d, got %d", workers*perWorker, got)
	}
}
