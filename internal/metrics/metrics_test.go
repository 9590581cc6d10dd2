package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHistogramPercentiles(t *testing.T) {
	h := NewHistogram(100)
	for i := 1; i <= 5; i++ {
		h.Record(time.Duration(i) * time.Millisecond)
	}

	assert.Equal(t, 5, h.Count())
	assert.InDelta(t, 3.0, h.Mean(), 0.001)
	assert.InDelta(t, 3.0, h.Percentile(50), 0.001)
	assert.InDelta(t, 1.0, h.Min(), 0.001)
	assert.InDelta(t, 5.0, h.Max(), 0.001)
	assert.InDelta(t, 4.6, h.Percentile(90), 0.001)

	h.Reset()
	assert.Equal(t, 0, h.Count())
	assert.Zero(t, h.Percentile(99))
}

func TestHistogramTrimsOldest(t *testing.T) {
	h := NewHistogram(10)
	for i := 0; i < 11; i++ {
		h.Record(time.Duration(i) * time.Millisecond)
	}
	assert.Equal(t, 9, h.Count())
	assert.InDelta(t, 2.0, h.Min(), 0.001)
}

func TestDraftMetricsStats(t *testing.T) {
	m := NewDraftMetrics()

	m.RecordResolve(time.Millisecond, 3, 1, 0)
	m.RecordObservation(2*time.Millisecond, true)
	m.RecordObservation(time.Millisecond, false)
	m.RecordReconcile(true)
	m.RecordReconcile(false)
	m.RecordUpload(time.Millisecond, nil)
	m.RecordUpload(time.Millisecond, errors.New("boom"))
	m.IncrementVotes()
	m.IncrementCommits()

	stats := m.GetStats()
	assert.Equal(t, uint64(3), stats.FragmentsResolved)
	assert.Equal(t, uint64(1), stats.FragmentsAmbiguous)
	assert.InDelta(t, 75.0, stats.ResolveRate, 0.001)
	assert.Equal(t, uint64(1), stats.ObservationsAccepted)
	assert.Equal(t, uint64(1), stats.ObservationsRejected)
	assert.Equal(t, uint64(1), stats.RecordsWritten)
	assert.Equal(t, uint64(1), stats.RecordsSkipped)
	assert.Equal(t, uint64(2), stats.Uploads)
	assert.Equal(t, uint64(1), stats.UploadErrors)
	assert.Equal(t, uint64(1), stats.Votes)
	assert.Equal(t, uint64(1), stats.Commits)
	assert.Equal(t, 2, stats.ObservationLatency.Count)

	m.Reset()
	stats = m.GetStats()
	assert.Zero(t, stats.FragmentsResolved)
	assert.Zero(t, stats.ResolveRate)
	assert.Zero(t, stats.ResolveLatency.Count)
}
