package telemetry

import (
	"sync"
	"sync/atomic"
	"time"
)

// Metrics collects runtime metrics
type Metrics struct {
	mu sync.RWMutex

	// Counters
	TracesRecorded int64
	TracesMerged   int64
	Recalls        int64

	// Gauges
	LiveTraces int64

	// Histograms (simplified)
	recallDurations []time.Duration
	encodeDurations []time.Duration

	// Exporter (optional)
	exporter MetricsExporter
}

// NewMetrics creates a new metrics collector
func NewMetrics() *Metrics {
	return &Metrics{
		recallDurations: make([]time.Duration, 0, 1000),
		encodeDurations: make([]time.Duration, 0, 1000),
	}
}

// IncTracesRecorded increments the traces recorded counter
func (m *Metrics) IncTracesRecorded() {
	atomic.AddInt64(&m.TracesRecorded, 1)
	atomic.AddInt64(&m.LiveTraces, 1)
}

// IncTracesMerged increments the traces merged counter
func (m *Metrics) IncTracesMerged() {
	atomic.AddInt64(&m.TracesMerged, 1)
}

// IncRecalls increments the recall counter
func (m *Metrics) IncRecalls() {
	atomic.AddInt64(&m.Recalls, 1)
}

// DecLiveTraces decrements the live traces gauge
func (m *Metrics) DecLiveTraces() {
	atomic.AddInt64(&m.LiveTraces, -1)
}

// RecordRecallDuration records a recall query duration
func (m *Metrics) RecordRecallDuration(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recallDurations = append(m.recallDurations, d)
}

// RecordEncodeDuration records a trace encoding duration
func (m *Metrics) RecordEncodeDuration(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.encodeDurations = append(m.encodeDurations, d)
}

// GetSummary returns a summary of collected metrics
func (m *Metrics) GetSummary() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	summary := map[string]interface{}{
		"traces_recorded": atomic.LoadInt64(&m.TracesRecorded),
		"traces_merged":   atomic.LoadInt64(&m.TracesMerged),
		"recalls":         atomic.LoadInt64(&m.Recalls),
		"live_traces":     atomic.LoadInt64(&m.LiveTraces),
	}

	// Add duration stats
	if len(m.recallDurations) > 0 {
		var total time.Duration
		for _, d := range m.recallDurations {
			total += d
		}
		summary["avg_recall_duration_us"] = total.Microseconds() / int64(len(m.recallDurations))
	}

	if len(m.encodeDurations) > 0 {
		var total time.Duration
		for _, d := range m.encodeDurations {
			total += d
		}
		summary["avg_encode_duration_us"] = total.Microseconds() / int64(len(m.encodeDurations))
	}

	return summary
}

// Reset resets all metrics
func (m *Metrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	atomic.StoreInt64(&m.TracesRecorded, 0)
	atomic.StoreInt64(&m.TracesMerged, 0)
	atomic.StoreInt64(&m.Recalls, 0)
	atomic.StoreInt64(&m.LiveTraces, 0)

	m.recallDurations = m.recallDurations[:0]
	m.encodeDurations = m.encodeDurations[:0]
}

// SetExporter attaches a metrics exporter.
func (m *Metrics) SetExporter(e MetricsExporter) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.exporter = e
}

// Flush exports the current metrics snapshot with the given event label.
func (m *Metrics) Flush(event string, labels map[string]string) {
	m.mu.RLock()
	exporter := m.exporter
	m.mu.RUnlock()

	if exporter == nil {
		return
	}

	snapshot := MetricsSnapshot{
		Timestamp: time.Now(),
		Event:     event,
		Metrics:   m.GetSummary(),
		Labels:    labels,
	}
	// Best-effort export.
	_ = exporter.Export(snapshot)
}
