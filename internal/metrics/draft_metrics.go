// Package metrics collects in-process counters and latency histograms for
// the capture pipeline and the command surface.
package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// DraftMetrics tracks the capture pipeline and voting activity.
type DraftMetrics struct {
	// Latency histograms (in milliseconds)
	ResolveLatency     *Histogram
	ObservationLatency *Histogram
	UploadLatency      *Histogram

	// Name resolution
	FragmentsResolved  atomic.Uint64
	FragmentsAmbiguous atomic.Uint64
	FragmentsUnmatched atomic.Uint64

	// Observations and records
	ObservationsAccepted atomic.Uint64
	ObservationsRejected atomic.Uint64
	RecordsWritten       atomic.Uint64
	RecordsSkipped       atomic.Uint64

	// Uploads
	Uploads      atomic.Uint64
	UploadErrors atomic.Uint64

	// Voting
	Votes   atomic.Uint64
	Commits atomic.Uint64

	startTime time.Time
	mu        sync.RWMutex
}

// NewDraftMetrics creates a new metrics collector.
func NewDraftMetrics() *DraftMetrics {
	return &DraftMetrics{
		ResolveLatency:     NewHistogram(10000),
		ObservationLatency: NewHistogram(10000),
		UploadLatency:      NewHistogram(1000),
		startTime:          time.Now(),
	}
}

// RecordResolve records one name resolution outcome and its duration.
// resolved is the number of fragments that matched, ambiguous and
// unmatched the ones dropped.
func (m *DraftMetrics) RecordResolve(d time.Duration, resolved, ambiguous, unmatched int) {
	m.ResolveLatency.Record(d)
	m.FragmentsResolved.Add(uint64(resolved))
	m.FragmentsAmbiguous.Add(uint64(ambiguous))
	m.FragmentsUnmatched.Add(uint64(unmatched))
}

// RecordObservation records the end-to-end handling of an observation.
func (m *DraftMetrics) RecordObservation(d time.Duration, accepted bool) {
	m.ObservationLatency.Record(d)
	if accepted {
		m.ObservationsAccepted.Add(1)
	} else {
		m.ObservationsRejected.Add(1)
	}
}

// RecordReconcile counts a write or a skip.
func (m *DraftMetrics) RecordReconcile(written bool) {
	if written {
		m.RecordsWritten.Add(1)
	} else {
		m.RecordsSkipped.Add(1)
	}
}

// RecordUpload records an artifact upload attempt.
func (m *DraftMetrics) RecordUpload(d time.Duration, err error) {
	m.UploadLatency.Record(d)
	m.Uploads.Add(1)
	if err != nil {
		m.UploadErrors.Add(1)
	}
}

// IncrementVotes increments the count of votes cast.
func (m *DraftMetrics) IncrementVotes() {
	m.Votes.Add(1)
}

// IncrementCommits increments the count of committed picks.
func (m *DraftMetrics) IncrementCommits() {
	m.Commits.Add(1)
}

// DraftStats contains the computed statistics from metrics.
type DraftStats struct {
	ResolveLatency     LatencyStats `json:"resolve_latency"`
	ObservationLatency LatencyStats `json:"observation_latency"`
	UploadLatency      LatencyStats `json:"upload_latency"`

	FragmentsResolved    uint64  `json:"fragments_resolved"`
	FragmentsAmbiguous   uint64  `json:"fragments_ambiguous"`
	FragmentsUnmatched   uint64  `json:"fragments_unmatched"`
	ResolveRate          float64 `json:"resolve_rate"` // percentage
	ObservationsAccepted uint64  `json:"observations_accepted"`
	ObservationsRejected uint64  `json:"observations_rejected"`
	RecordsWritten       uint64  `json:"records_written"`
	RecordsSkipped       uint64  `json:"records_skipped"`
	Uploads              uint64  `json:"uploads"`
	UploadErrors         uint64  `json:"upload_errors"`
	Votes                uint64  `json:"votes"`
	Commits              uint64  `json:"commits"`

	Uptime string `json:"uptime"`
}

// LatencyStats contains statistics for a latency histogram.
type LatencyStats struct {
	Mean  float64 `json:"mean"` // milliseconds
	P50   float64 `json:"p50"`
	P95   float64 `json:"p95"`
	P99   float64 `json:"p99"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Count int     `json:"count"`
}

// GetStats returns a snapshot of the current statistics.
func (m *DraftMetrics) GetStats() *DraftStats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	resolved := m.FragmentsResolved.Load()
	ambiguous := m.FragmentsAmbiguous.Load()
	unmatched := m.FragmentsUnmatched.Load()

	resolveRate := 0.0
	if total := resolved + ambiguous + unmatched; total > 0 {
		resolveRate = float64(resolved) / float64(total) * 100
	}

	return &DraftStats{
		ResolveLatency:       latencyStats(m.ResolveLatency),
		ObservationLatency:   latencyStats(m.ObservationLatency),
		UploadLatency:        latencyStats(m.UploadLatency),
		FragmentsResolved:    resolved,
		FragmentsAmbiguous:   ambiguous,
		FragmentsUnmatched:   unmatched,
		ResolveRate:          resolveRate,
		ObservationsAccepted: m.ObservationsAccepted.Load(),
		ObservationsRejected: m.ObservationsRejected.Load(),
		RecordsWritten:       m.RecordsWritten.Load(),
		RecordsSkipped:       m.RecordsSkipped.Load(),
		Uploads:              m.Uploads.Load(),
		UploadErrors:         m.UploadErrors.Load(),
		Votes:                m.Votes.Load(),
		Commits:              m.Commits.Load(),
		Uptime:               time.Since(m.startTime).Round(time.Second).String(),
	}
}

func latencyStats(h *Histogram) LatencyStats {
	return LatencyStats{
		Mean:  h.Mean(),
		P50:   h.Percentile(50),
		P95:   h.Percentile(95),
		P99:   h.Percentile(99),
		Min:   h.Min(),
		Max:   h.Max(),
		Count: h.Count(),
	}
}

// Reset clears all metrics.
func (m *DraftMetrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ResolveLatency.Reset()
	m.ObservationLatency.Reset()
	m.UploadLatency.Reset()

	for _, c := range []*atomic.Uint64{
		&m.FragmentsResolved, &m.FragmentsAmbiguous, &m.FragmentsUnmatched,
		&m.ObservationsAccepted, &m.ObservationsRejected,
		&m.RecordsWritten, &m.RecordsSkipped,
		&m.Uploads, &m.UploadErrors, &m.Votes, &m.Commits,
	} {
		c.Store(0)
	}

	m.startTime = time.Now()
}
