package monitoring

import "time"

// Snapshot returns a copy of the current counters
func (m *Metrics) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot
}

// AverageRequestDuration returns the mean HTTP request duration
func (m *Metrics) AverageRequestDuration() time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.snapshot.RequestCount == 0 {
		return 0
	}
	return time.Duration(m.snapshot.TotalDuration / float64(m.snapshot.RequestCount) * float64(time.Second))
}

// UptimeDuration returns the time since the collector was created
func (m *Metrics) UptimeDuration() time.Duration {
	return time.Since(m.startTime)
}
